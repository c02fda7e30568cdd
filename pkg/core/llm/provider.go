package llm

import (
	"context"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// Option keys understood by the providers.
const (
	OptModel = "model"
	// OptJSON set to true asks the model for a bare JSON object.
	OptJSON = "json"
)

func stringOption(options map[string]interface{}, key, fallback string) string {
	if val, ok := options[key].(string); ok && val != "" {
		return val
	}
	return fallback
}

func jsonMode(options map[string]interface{}) bool {
	v, _ := options[OptJSON].(bool)
	return v
}
