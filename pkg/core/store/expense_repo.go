package store

import (
	"context"
	"fmt"
	"time"

	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExpenseRepo persists the expense ledger and the planned budget lines.
type ExpenseRepo struct {
	pool *pgxpool.Pool
}

// NewExpenseRepo creates a repository on the given pool.
func NewExpenseRepo(pool *pgxpool.Pool) *ExpenseRepo {
	return &ExpenseRepo{pool: pool}
}

const expenseColumns = `id, project_id, description, value, date, user_id, macro, sub_macro`

func queryExpenses(ctx context.Context, q querier, where string, args ...any) ([]finance.Expense, error) {
	rows, err := q.Query(ctx, `SELECT `+expenseColumns+` FROM expenses `+where+` ORDER BY date, created_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []finance.Expense{}
	for rows.Next() {
		var (
			e    finance.Expense
			date time.Time
		)
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Description, &e.Value, &date, &e.UserID, &e.Macro, &e.SubMacro); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Date = finance.NewDate(date)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	return expenses, nil
}

// ListExpenses returns the project's ledger, oldest first.
func (r *ExpenseRepo) ListExpenses(ctx context.Context, projectID string) ([]finance.Expense, error) {
	return queryExpenses(ctx, r.pool, `WHERE project_id = $1`, projectID)
}

// CreateExpense inserts a ledger entry and assigns its ID.
func (r *ExpenseRepo) CreateExpense(ctx context.Context, e *finance.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO expenses (id, project_id, description, value, date, user_id, macro, sub_macro)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query, e.ID, e.ProjectID, e.Description, e.Value, e.Date.Time, e.UserID, e.Macro, e.SubMacro)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// DeleteExpense removes a ledger entry.
func (r *ExpenseRepo) DeleteExpense(ctx context.Context, projectID, expenseID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE project_id = $1 AND id = $2`, projectID, expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, utils.ErrNotFound)
	}
	return nil
}

// ListBudgetLines returns the planned amounts of a project.
func (r *ExpenseRepo) ListBudgetLines(ctx context.Context, projectID string) ([]finance.BudgetLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, project_id, macro, sub_macro, planned
		FROM budget_lines WHERE project_id = $1 ORDER BY macro, sub_macro
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget lines: %w", err)
	}
	defer rows.Close()

	lines := []finance.BudgetLine{}
	for rows.Next() {
		var l finance.BudgetLine
		if err := rows.Scan(&l.ID, &l.ProjectID, &l.Macro, &l.SubMacro, &l.Planned); err != nil {
			return nil, fmt.Errorf("failed to scan budget line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query budget lines: %w", err)
	}
	return lines, nil
}

// ReplaceBudgetLines swaps the project's whole plan in one transaction.
func (r *ExpenseRepo) ReplaceBudgetLines(ctx context.Context, projectID string, lines []finance.BudgetLine) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM budget_lines WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("failed to clear budget lines: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range lines {
		lines[i].ID = uuid.New().String()
		lines[i].ProjectID = projectID
		batch.Queue(`INSERT INTO budget_lines (id, project_id, macro, sub_macro, planned) VALUES ($1, $2, $3, $4, $5)`,
			lines[i].ID, projectID, lines[i].Macro, lines[i].SubMacro, lines[i].Planned)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert budget lines: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit budget lines: %w", err)
	}
	return nil
}
