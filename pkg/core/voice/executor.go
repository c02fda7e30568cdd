package voice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/models"
	"obra_tracker/pkg/core/utils"
)

type ExpenseWriter interface {
	CreateExpense(ctx context.Context, e *finance.Expense) error
}

type ProgressWriter interface {
	UpdateProgress(ctx context.Context, id string, progress int) error
}

type UnitWriter interface {
	UpdateUnit(ctx context.Context, u *finance.Unit) error
}

type DiaryWriter interface {
	CreateDiaryEntry(ctx context.Context, e *models.DiaryEntry) error
}

type AuditWriter interface {
	RecordAudit(ctx context.Context, e *models.AuditEntry) error
}

// Executor applies parsed actions through the repositories.
type Executor struct {
	Expenses ExpenseWriter
	Projects ProgressWriter
	Units    UnitWriter
	Diary    DiaryWriter
	Audit    AuditWriter
	now      func() time.Time
}

func NewExecutor(expenses ExpenseWriter, projects ProgressWriter, units UnitWriter, diary DiaryWriter, audit AuditWriter) *Executor {
	return &Executor{Expenses: expenses, Projects: projects, Units: units, Diary: diary, Audit: audit, now: time.Now}
}

// Result reports what an action changed. Only the field matching the action is set.
type Result struct {
	Action   *Action            `json:"action"`
	Summary  string             `json:"summary"`
	Expense  *finance.Expense   `json:"expense,omitempty"`
	Unit     *finance.Unit      `json:"unit,omitempty"`
	Diary    *models.DiaryEntry `json:"diary,omitempty"`
	Progress *int               `json:"progress,omitempty"`
}

// Execute applies a to project on behalf of userID and writes one audit row.
func (x *Executor) Execute(ctx context.Context, project *finance.Project, userID string, a *Action) (*Result, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	today := x.now()
	res := &Result{Action: a}
	var auditAction string

	switch a.Action {
	case ActionAddExpense:
		date, _ := optionalDate(a.Date, today)
		e := &finance.Expense{
			ProjectID:   project.ID,
			Description: strings.TrimSpace(a.Description),
			Value:       a.Value,
			Date:        date,
			UserID:      userID,
			Macro:       strings.TrimSpace(a.Macro),
			SubMacro:    strings.TrimSpace(a.SubMacro),
		}
		if err := x.Expenses.CreateExpense(ctx, e); err != nil {
			return nil, err
		}
		res.Expense = e
		res.Summary = fmt.Sprintf("Expense %q of R$ %.2f recorded on %s", e.Description, e.Value, e.Date)
		auditAction = models.AuditExpenseCreated

	case ActionUpdateProgress:
		if err := x.Projects.UpdateProgress(ctx, project.ID, *a.Progress); err != nil {
			return nil, err
		}
		res.Summary = fmt.Sprintf("Progress changed from %d%% to %d%% (%s)", project.Progress, *a.Progress, finance.StageName(*a.Progress))
		project.Progress = *a.Progress
		p := *a.Progress
		res.Progress = &p
		auditAction = models.AuditProgressChanged

	case ActionMarkUnitSold:
		unit, err := findUnit(project.Units, a.Unit)
		if err != nil {
			return nil, err
		}
		if unit.IsSold() {
			return nil, fmt.Errorf("unit %s: %w", unit.Identifier, utils.ErrUnitAlreadySold)
		}
		saleDate, _ := optionalDate(a.SaleDate, today)
		sold := *unit
		sold.Status = finance.StatusSold
		value := a.SaleValue
		sold.SaleValue = &value
		sold.SaleDate = &saleDate
		if err := x.Units.UpdateUnit(ctx, &sold); err != nil {
			return nil, err
		}
		*unit = sold
		res.Unit = &sold
		res.Summary = fmt.Sprintf("Unit %s sold for R$ %.2f on %s", sold.Identifier, value, saleDate)
		auditAction = models.AuditUnitSold

	case ActionAddDiary:
		entry := &models.DiaryEntry{
			ProjectID: project.ID,
			UserID:    userID,
			Date:      finance.NewDate(today).Time,
			Body:      strings.TrimSpace(a.Text),
		}
		if err := x.Diary.CreateDiaryEntry(ctx, entry); err != nil {
			return nil, err
		}
		res.Diary = entry
		res.Summary = "Diary note added: " + utils.Excerpt(entry.Body, 80)
		auditAction = models.AuditDiaryCreated
	}

	if err := x.Audit.RecordAudit(ctx, &models.AuditEntry{
		ProjectID:   project.ID,
		UserID:      userID,
		Action:      auditAction,
		Description: "Voice: " + res.Summary,
	}); err != nil {
		utils.Logger.WithError(err).WithField("project_id", project.ID).Error("Failed to record audit entry")
	}
	return res, nil
}

// findUnit matches an identifier ignoring case and surrounding blanks; "apto 101" finds
// "Apto 101", and so does "101" when only one unit ends with it.
func findUnit(units []finance.Unit, ident string) (*finance.Unit, error) {
	want := strings.ToLower(strings.TrimSpace(ident))
	for i := range units {
		if strings.ToLower(strings.TrimSpace(units[i].Identifier)) == want {
			return &units[i], nil
		}
	}
	var match *finance.Unit
	for i := range units {
		if strings.HasSuffix(strings.ToLower(units[i].Identifier), want) {
			if match != nil {
				return nil, fmt.Errorf("unit %q is ambiguous: %w", ident, utils.ErrUnitNotFound)
			}
			match = &units[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("unit %q: %w", ident, utils.ErrUnitNotFound)
	}
	return match, nil
}
