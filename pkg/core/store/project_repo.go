package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProjectRepo persists projects and loads them with their units and expenses.
type ProjectRepo struct {
	pool *pgxpool.Pool
}

// NewProjectRepo creates a repository on the given pool.
func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

const projectColumns = `id, owner_id, name, progress, start_date, delivery_date`

func scanProject(row pgx.Row) (finance.Project, error) {
	var (
		p               finance.Project
		start, delivery *time.Time
	)
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Progress, &start, &delivery); err != nil {
		return p, err
	}
	p.StartDate = toDate(start)
	p.DeliveryDate = toDate(delivery)
	p.Units = []finance.Unit{}
	p.Expenses = []finance.Expense{}
	return p, nil
}

func toDate(t *time.Time) *finance.Date {
	if t == nil {
		return nil
	}
	return finance.DatePtr(*t)
}

func fromDate(d *finance.Date) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// ListProjects returns the owner's projects with units and expenses loaded.
func (r *ProjectRepo) ListProjects(ctx context.Context, ownerID string) ([]finance.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE owner_id = $1 ORDER BY created_at`
	return r.listWhere(ctx, query, ownerID)
}

// ListAllProjects returns every project regardless of owner, for background jobs.
func (r *ProjectRepo) ListAllProjects(ctx context.Context) ([]finance.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at`
	return r.listWhere(ctx, query)
}

func (r *ProjectRepo) listWhere(ctx context.Context, query string, args ...any) ([]finance.Project, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []finance.Project{}
	index := map[string]int{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		index[p.ID] = len(projects)
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	if len(projects) == 0 {
		return projects, nil
	}

	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}

	units, err := queryUnits(ctx, r.pool, `WHERE project_id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range units {
		i := index[u.ProjectID]
		projects[i].Units = append(projects[i].Units, u)
	}

	expenses, err := queryExpenses(ctx, r.pool, `WHERE project_id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		i := index[e.ProjectID]
		projects[i].Expenses = append(projects[i].Expenses, e)
	}
	return projects, nil
}

// GetProject loads one project with its units and expenses.
func (r *ProjectRepo) GetProject(ctx context.Context, id string) (*finance.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	p, err := scanProject(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("project %s: %w", id, utils.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	if p.Units, err = queryUnits(ctx, r.pool, `WHERE project_id = $1`, id); err != nil {
		return nil, err
	}
	if p.Expenses, err = queryExpenses(ctx, r.pool, `WHERE project_id = $1`, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject inserts the project and assigns its ID.
func (r *ProjectRepo) CreateProject(ctx context.Context, p *finance.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	query := `
		INSERT INTO projects (id, owner_id, name, progress, start_date, delivery_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query, p.ID, p.OwnerID, p.Name, p.Progress, fromDate(p.StartDate), fromDate(p.DeliveryDate))
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// UpdateProject rewrites the project's own columns (not its units or expenses).
func (r *ProjectRepo) UpdateProject(ctx context.Context, p *finance.Project) error {
	query := `
		UPDATE projects
		SET name = $2, progress = $3, start_date = $4, delivery_date = $5, updated_at = now()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, p.ID, p.Name, p.Progress, fromDate(p.StartDate), fromDate(p.DeliveryDate))
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", p.ID, utils.ErrNotFound)
	}
	return nil
}

// UpdateProgress moves the project to another construction stage.
func (r *ProjectRepo) UpdateProgress(ctx context.Context, id string, progress int) error {
	if !finance.ValidProgress(progress) {
		return utils.ErrInvalidProgress
	}
	tag, err := r.pool.Exec(ctx, `UPDATE projects SET progress = $2, updated_at = now() WHERE id = $1`, id, progress)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", id, utils.ErrNotFound)
	}
	return nil
}

// DeleteProject removes the project; units, expenses and records cascade.
func (r *ProjectRepo) DeleteProject(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", id, utils.ErrNotFound)
	}
	return nil
}
