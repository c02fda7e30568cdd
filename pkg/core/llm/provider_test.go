package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	opts := map[string]interface{}{OptModel: "gpt-4o", OptJSON: true}
	assert.Equal(t, "gpt-4o", stringOption(opts, OptModel, "x"))
	assert.Equal(t, "x", stringOption(nil, OptModel, "x"))
	assert.True(t, jsonMode(opts))
	assert.False(t, jsonMode(map[string]interface{}{OptJSON: "yes"}))
}

func TestProvidersRequireKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := (&GeminiProvider{}).GenerateResponse(context.Background(), "hi", "", nil)
	assert.ErrorContains(t, err, "GEMINI_API_KEY")

	_, err = (&OpenAIProvider{}).GenerateResponse(context.Background(), "hi", "", nil)
	assert.ErrorContains(t, err, "OPENAI_API_KEY")
}
