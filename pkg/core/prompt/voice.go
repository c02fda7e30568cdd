package prompt

// VoiceCommandID is the prompt that turns a site transcript into one action.
const VoiceCommandID = "voice.command"

// VoiceCommand returns the registered voice prompt, or the built-in one when resources were
// not loaded.
func (r *Registry) VoiceCommand() *PromptTemplate {
	if pt, err := r.GetPrompt(VoiceCommandID); err == nil {
		return pt
	}
	return &builtinVoiceCommand
}

var builtinVoiceCommand = PromptTemplate{
	ID:       VoiceCommandID,
	Name:     "Voice command",
	Category: "voice",
	SystemPrompt: `You turn short voice notes from a construction site into exactly one JSON object.
Allowed actions:
- {"action":"add_expense","description":string,"value":number,"date":"YYYY-MM-DD"?,"macro":string?,"sub_macro":string?}
- {"action":"update_progress","progress":integer multiple of 10 between 0 and 100}
- {"action":"mark_unit_sold","unit":string,"sale_value":number,"sale_date":"YYYY-MM-DD"?}
- {"action":"add_diary","text":string}
Amounts are in BRL; "mil" means thousand. Answer with the JSON object only.`,
	UserPromptTmpl: `Today is {{.Today}}.
Project: {{.ProjectName}} (progress {{.Progress}}%).
Units: {{.Units}}
Expense categories in use: {{.Macros}}
Transcript: {{.Transcript}}`,
	Version: "1",
}
