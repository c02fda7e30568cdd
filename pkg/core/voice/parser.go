package voice

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"obra_tracker/pkg/core/agent"
	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/llm"
	"obra_tracker/pkg/core/prompt"
	"obra_tracker/pkg/core/utils"

	"github.com/sirupsen/logrus"
)

// Generator is the part of agent.Manager the parser needs.
type Generator interface {
	ExecutePrompt(ctx context.Context, agentType string, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

type Parser struct {
	llm     Generator
	prompts *prompt.Registry
	now     func() time.Time
}

func NewParser(gen Generator, prompts *prompt.Registry) *Parser {
	return &Parser{llm: gen, prompts: prompts, now: time.Now}
}

// Parse asks the model for the action described by transcript in the context of project.
func (p *Parser) Parse(ctx context.Context, transcript string, project finance.Project) (*Action, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, fmt.Errorf("%w: empty transcript", utils.ErrUnknownAction)
	}

	pt := p.prompts.VoiceCommand()
	userPrompt, err := prompt.RenderUserPrompt(pt, prompt.Variables{
		"Today":       p.now().Format(finance.DateLayout),
		"ProjectName": project.Name,
		"Progress":    project.Progress,
		"Units":       unitList(project.Units),
		"Macros":      macroList(project.Expenses),
		"Transcript":  transcript,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render voice prompt: %w", err)
	}

	reply, err := p.llm.ExecutePrompt(ctx, agent.VoiceCommand, userPrompt, pt.SystemPrompt,
		map[string]interface{}{llm.OptJSON: true})
	if err != nil {
		return nil, err
	}

	var action Action
	if _, err := utils.SmartParse(reply, &action); err != nil {
		utils.Logger.WithFields(logrus.Fields{
			"project_id": project.ID,
			"reply":      reply,
		}).Warn("Voice reply is not JSON")
		return nil, fmt.Errorf("%w: %v", utils.ErrUnknownAction, err)
	}
	if err := action.check(); err != nil {
		return nil, err
	}
	return &action, nil
}

func unitList(units []finance.Unit) string {
	if len(units) == 0 {
		return "none"
	}
	ids := make([]string, 0, len(units))
	for _, u := range units {
		label := u.Identifier
		if u.IsSold() {
			label += " (sold)"
		}
		ids = append(ids, label)
	}
	return strings.Join(ids, ", ")
}

func macroList(expenses []finance.Expense) string {
	seen := map[string]bool{}
	for _, e := range expenses {
		if m := strings.TrimSpace(e.Macro); m != "" {
			seen[m] = true
		}
	}
	if len(seen) == 0 {
		return "none"
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
