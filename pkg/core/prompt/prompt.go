// Package prompt keeps LLM prompts as JSON files under resources/prompts so they can be tuned
// without a rebuild.
package prompt

// PromptTemplate is a system prompt plus a text/template for the user turn.
type PromptTemplate struct {
	ID             string           `json:"id"` // e.g. "voice.command"
	Name           string           `json:"name"`
	Category       string           `json:"category"`
	Description    string           `json:"description"`
	SystemPrompt   string           `json:"system_prompt"`
	UserPromptTmpl string           `json:"user_prompt_template"`
	Variables      []PromptVariable `json:"variables"`
	Version        string           `json:"version"`
}

// PromptVariable documents one template variable.
type PromptVariable struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     string `json:"default"`
}

// Variables holds the values substituted into a user prompt template.
type Variables map[string]interface{}
