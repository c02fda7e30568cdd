// Package voice turns a site voice-note transcript into one structured action and applies it
// to a project.
package voice

import (
	"fmt"
	"strings"
	"time"

	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/utils"
)

const (
	ActionAddExpense     = "add_expense"
	ActionUpdateProgress = "update_progress"
	ActionMarkUnitSold   = "mark_unit_sold"
	ActionAddDiary       = "add_diary"
)

// Action is the JSON object the model must answer with. Fields not used by the action are
// ignored.
type Action struct {
	Action string `json:"action" validate:"required"`

	// add_expense
	Description string  `json:"description,omitempty" validate:"required_if=Action add_expense,max=500"`
	Value       float64 `json:"value,omitempty" validate:"gte=0"`
	Date        string  `json:"date,omitempty"`
	Macro       string  `json:"macro,omitempty" validate:"max=100"`
	SubMacro    string  `json:"sub_macro,omitempty" validate:"max=100"`

	// update_progress
	Progress *int `json:"progress,omitempty"`

	// mark_unit_sold
	Unit      string  `json:"unit,omitempty" validate:"required_if=Action mark_unit_sold"`
	SaleValue float64 `json:"sale_value,omitempty" validate:"gte=0"`
	SaleDate  string  `json:"sale_date,omitempty"`

	// add_diary
	Text string `json:"text,omitempty" validate:"required_if=Action add_diary,max=5000"`
}

// check normalises the action name and enforces the per-action rules the tags cannot express.
func (a *Action) check() error {
	a.Action = strings.ToLower(strings.TrimSpace(a.Action))
	switch a.Action {
	case ActionAddExpense, ActionUpdateProgress, ActionMarkUnitSold, ActionAddDiary:
	default:
		return fmt.Errorf("%w: %q", utils.ErrUnknownAction, a.Action)
	}
	if err := utils.Validate.Struct(a); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrUnknownAction, err)
	}

	switch a.Action {
	case ActionAddExpense:
		if a.Value <= 0 {
			return fmt.Errorf("%w: expense value must be positive", utils.ErrUnknownAction)
		}
		if _, err := optionalDate(a.Date, time.Time{}); err != nil {
			return err
		}
	case ActionUpdateProgress:
		if a.Progress == nil || !finance.ValidProgress(*a.Progress) {
			return utils.ErrInvalidProgress
		}
	case ActionMarkUnitSold:
		if a.SaleValue <= 0 {
			return fmt.Errorf("%w: sale value must be positive", utils.ErrUnknownAction)
		}
		if _, err := optionalDate(a.SaleDate, time.Time{}); err != nil {
			return err
		}
	}
	return nil
}

// optionalDate parses s, or returns today when s is empty.
func optionalDate(s string, today time.Time) (finance.Date, error) {
	if strings.TrimSpace(s) == "" {
		return finance.NewDate(today), nil
	}
	d, err := finance.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return finance.Date{}, fmt.Errorf("%w: bad date %q", utils.ErrUnknownAction, s)
	}
	return d, nil
}
