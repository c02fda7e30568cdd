package store

import (
	"context"
	"fmt"

	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/models"
	"obra_tracker/pkg/core/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProjectStore is implemented by ProjectRepo and Memory.
type ProjectStore interface {
	ListProjects(ctx context.Context, ownerID string) ([]finance.Project, error)
	ListAllProjects(ctx context.Context) ([]finance.Project, error)
	GetProject(ctx context.Context, id string) (*finance.Project, error)
	CreateProject(ctx context.Context, p *finance.Project) error
	UpdateProject(ctx context.Context, p *finance.Project) error
	UpdateProgress(ctx context.Context, id string, progress int) error
	DeleteProject(ctx context.Context, id string) error
}

// UnitStore is implemented by UnitRepo and Memory.
type UnitStore interface {
	ListUnits(ctx context.Context, projectID string) ([]finance.Unit, error)
	GetUnit(ctx context.Context, projectID, unitID string) (*finance.Unit, error)
	CreateUnit(ctx context.Context, u *finance.Unit) error
	CreateUnits(ctx context.Context, units []finance.Unit) error
	UpdateUnit(ctx context.Context, u *finance.Unit) error
	DeleteUnit(ctx context.Context, projectID, unitID string) error
}

// ExpenseStore is implemented by ExpenseRepo and Memory.
type ExpenseStore interface {
	ListExpenses(ctx context.Context, projectID string) ([]finance.Expense, error)
	CreateExpense(ctx context.Context, e *finance.Expense) error
	DeleteExpense(ctx context.Context, projectID, expenseID string) error
	ListBudgetLines(ctx context.Context, projectID string) ([]finance.BudgetLine, error)
	ReplaceBudgetLines(ctx context.Context, projectID string, lines []finance.BudgetLine) error
}

// RecordStore is implemented by RecordRepo and Memory.
type RecordStore interface {
	ListDiary(ctx context.Context, projectID string) ([]models.DiaryEntry, error)
	CreateDiaryEntry(ctx context.Context, e *models.DiaryEntry) error
	ListDocuments(ctx context.Context, projectID string) ([]models.Document, error)
	CreateDocument(ctx context.Context, d *models.Document) error
	RecordAudit(ctx context.Context, e *models.AuditEntry) error
	ListAudit(ctx context.Context, projectID string, limit int) ([]models.AuditEntry, error)
	CreateNotification(ctx context.Context, n *models.Notification) (bool, error)
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id string) error
}

// Stores bundles the repositories the API needs.
type Stores struct {
	Projects ProjectStore
	Units    UnitStore
	Expenses ExpenseStore
	Records  RecordStore
}

// NewPostgresStores builds every repository on one pool.
func NewPostgresStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Projects: NewProjectRepo(pool),
		Units:    NewUnitRepo(pool),
		Expenses: NewExpenseRepo(pool),
		Records:  NewRecordRepo(pool),
	}
}

// NewMemoryStores backs every repository with the same Memory.
func NewMemoryStores(m *Memory) Stores {
	return Stores{Projects: m, Units: m, Expenses: m, Records: m}
}

// LoadOwnedProject loads a project and checks that userID owns it. Foreign projects return
// ErrForbidden, which the HTTP layer reports as a 404.
func LoadOwnedProject(ctx context.Context, projects ProjectStore, id, userID string) (*finance.Project, error) {
	p, err := projects.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != userID {
		return nil, fmt.Errorf("project %s: %w", id, utils.ErrForbidden)
	}
	return p, nil
}
