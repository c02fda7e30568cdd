package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"obra_tracker/pkg/core/llm"
	"obra_tracker/pkg/core/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	reply   string
	err     error
	options map[string]interface{}
}

func (s *stubProvider) GenerateResponse(_ context.Context, _ string, _ string, options map[string]interface{}) (string, error) {
	s.options = options
	return s.reply, s.err
}

func TestGetProviderResolution(t *testing.T) {
	gemini := &stubProvider{reply: "g"}
	openai := &stubProvider{reply: "o"}
	m := NewManagerWithProviders(Config{
		ActiveProvider: "gemini",
		Agents:         map[string]AgentConfig{VoiceCommand: {Provider: "openai", Model: "gpt-4o"}},
	}, map[string]llm.Provider{"gemini": gemini, "openai": openai})

	name, p := m.GetProvider(VoiceCommand)
	assert.Equal(t, "openai", name)
	assert.Same(t, openai, p)

	name, _ = m.GetProvider("report")
	assert.Equal(t, "gemini", name)

	out, err := m.ExecutePrompt(context.Background(), VoiceCommand, "hi", "sys", map[string]interface{}{llm.OptJSON: true})
	require.NoError(t, err)
	assert.Equal(t, "o", out)
	assert.Equal(t, "gpt-4o", openai.options[llm.OptModel])
	assert.Equal(t, true, openai.options[llm.OptJSON])
}

func TestExecutePromptWrapsProviderErrors(t *testing.T) {
	m := NewManagerWithProviders(Config{ActiveProvider: "gemini"},
		map[string]llm.Provider{"gemini": &stubProvider{err: errors.New("quota")}})
	_, err := m.ExecutePrompt(context.Background(), VoiceCommand, "hi", "", nil)
	assert.ErrorIs(t, err, utils.ErrExternalServiceFailure)

	empty := NewManagerWithProviders(Config{}, map[string]llm.Provider{})
	_, err = empty.ExecutePrompt(context.Background(), VoiceCommand, "hi", "", nil)
	assert.ErrorIs(t, err, utils.ErrExternalServiceFailure)
}

func TestSetGlobalProvider(t *testing.T) {
	m := NewManager(Config{ActiveProvider: "gemini"})
	assert.Equal(t, []string{"gemini", "openai"}, m.Available())
	require.NoError(t, m.SetGlobalProvider("openai"))
	assert.Equal(t, "openai", m.GetActiveProvider())
	assert.Error(t, m.SetGlobalProvider("kimi"))
	assert.Equal(t, "openai", m.GetActiveProvider())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
active_provider: gemini
agents:
  voice_command:
    provider: openai
    model: gpt-4o-mini
    description: Turns site voice notes into ledger actions
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.ActiveProvider)
	assert.Equal(t, "openai", cfg.Agents[VoiceCommand].Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Agents[VoiceCommand].Model)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
