package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDirectory(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "prompts", "voice")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "command.json"), []byte(`{
		"name": "Voice command",
		"system_prompt": "Return JSON.",
		"user_prompt_template": "Transcript: {{.Transcript}}"
	}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	r := NewRegistry()
	require.NoError(t, r.LoadDirectory(base))
	assert.Equal(t, []string{"voice.command"}, r.ListPrompts())

	pt := r.VoiceCommand()
	assert.Equal(t, "voice", pt.Category)
	assert.Equal(t, "Return JSON.", pt.SystemPrompt)

	out, err := RenderUserPrompt(pt, Variables{"Transcript": "comprei cimento"})
	require.NoError(t, err)
	assert.Equal(t, "Transcript: comprei cimento", out)

	_, err = RenderUserPrompt(pt, Variables{})
	assert.Error(t, err)
}

func TestLoadDirectoryMissing(t *testing.T) {
	assert.Error(t, NewRegistry().LoadDirectory(t.TempDir()))
}

func TestVoiceCommandFallback(t *testing.T) {
	pt := NewRegistry().VoiceCommand()
	assert.Equal(t, VoiceCommandID, pt.ID)
	assert.Contains(t, pt.SystemPrompt, "mark_unit_sold")

	_, err := NewRegistry().GetPrompt("nope")
	assert.Error(t, err)
	assert.Same(t, Get(), Get())
}

func TestRegisterRejectsEmptyID(t *testing.T) {
	assert.Error(t, NewRegistry().Register(&PromptTemplate{}))
}
