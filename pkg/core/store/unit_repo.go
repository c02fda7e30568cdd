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

// UnitRepo persists the sellable units of projects.
type UnitRepo struct {
	pool *pgxpool.Pool
}

// NewUnitRepo creates a repository on the given pool.
func NewUnitRepo(pool *pgxpool.Pool) *UnitRepo {
	return &UnitRepo{pool: pool}
}

const unitColumns = `id, project_id, identifier, area, cost, status, estimated_sale_value, sale_value, sale_date`

func scanUnit(row pgx.Row) (finance.Unit, error) {
	var (
		u        finance.Unit
		status   string
		saleDate *time.Time
	)
	err := row.Scan(&u.ID, &u.ProjectID, &u.Identifier, &u.Area, &u.Cost, &status,
		&u.EstimatedSaleValue, &u.SaleValue, &saleDate)
	if err != nil {
		return u, err
	}
	u.Status = finance.UnitStatus(status)
	u.SaleDate = toDate(saleDate)
	return u, nil
}

func queryUnits(ctx context.Context, q querier, where string, args ...any) ([]finance.Unit, error) {
	rows, err := q.Query(ctx, `SELECT `+unitColumns+` FROM units `+where+` ORDER BY identifier`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	units := []finance.Unit{}
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	return units, nil
}

// ListUnits returns the project's units ordered by identifier.
func (r *UnitRepo) ListUnits(ctx context.Context, projectID string) ([]finance.Unit, error) {
	return queryUnits(ctx, r.pool, `WHERE project_id = $1`, projectID)
}

// GetUnit loads one unit of a project.
func (r *UnitRepo) GetUnit(ctx context.Context, projectID, unitID string) (*finance.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE project_id = $1 AND id = $2`
	u, err := scanUnit(r.pool.QueryRow(ctx, query, projectID, unitID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("unit %s: %w", unitID, utils.ErrUnitNotFound)
		}
		return nil, fmt.Errorf("failed to load unit: %w", err)
	}
	return &u, nil
}

const insertUnit = `
	INSERT INTO units (id, project_id, identifier, area, cost, status, estimated_sale_value, sale_value, sale_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

func unitArgs(u *finance.Unit) []any {
	return []any{u.ID, u.ProjectID, u.Identifier, u.Area, u.Cost, string(u.Status),
		u.EstimatedSaleValue, u.SaleValue, fromDate(u.SaleDate)}
}

// CreateUnit inserts a unit and assigns its ID.
func (r *UnitRepo) CreateUnit(ctx context.Context, u *finance.Unit) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if _, err := r.pool.Exec(ctx, insertUnit, unitArgs(u)...); err != nil {
		return fmt.Errorf("failed to create unit: %w", err)
	}
	return nil
}

// CreateUnits inserts a generated batch in one transaction; either all units land or none.
func (r *UnitRepo) CreateUnits(ctx context.Context, units []finance.Unit) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for i := range units {
		if units[i].ID == "" {
			units[i].ID = uuid.New().String()
		}
		batch.Queue(insertUnit, unitArgs(&units[i])...)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert units: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit units: %w", err)
	}
	return nil
}

// UpdateUnit rewrites every mutable column of the unit.
func (r *UnitRepo) UpdateUnit(ctx context.Context, u *finance.Unit) error {
	query := `
		UPDATE units
		SET identifier = $3, area = $4, cost = $5, status = $6,
		    estimated_sale_value = $7, sale_value = $8, sale_date = $9
		WHERE project_id = $2 AND id = $1
	`
	tag, err := r.pool.Exec(ctx, query, unitArgs(u)...)
	if err != nil {
		return fmt.Errorf("failed to update unit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("unit %s: %w", u.ID, utils.ErrUnitNotFound)
	}
	return nil
}

// DeleteUnit removes the unit from the active set. Audit rows keep their text.
func (r *UnitRepo) DeleteUnit(ctx context.Context, projectID, unitID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM units WHERE project_id = $1 AND id = $2`, projectID, unitID)
	if err != nil {
		return fmt.Errorf("failed to delete unit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("unit %s: %w", unitID, utils.ErrUnitNotFound)
	}
	return nil
}
