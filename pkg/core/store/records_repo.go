package store

import (
	"context"
	"fmt"
	"time"

	"obra_tracker/pkg/core/models"
	"obra_tracker/pkg/core/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RecordRepo persists the non-financial project records: diary, documents, audit trail and
// notifications.
type RecordRepo struct {
	pool *pgxpool.Pool
}

// NewRecordRepo creates a repository on the given pool.
func NewRecordRepo(pool *pgxpool.Pool) *RecordRepo {
	return &RecordRepo{pool: pool}
}

// ListDiary returns the project's diary, newest day first.
func (r *RecordRepo) ListDiary(ctx context.Context, projectID string) ([]models.DiaryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, project_id, user_id, date, body, created_at
		FROM diary_entries WHERE project_id = $1 ORDER BY date DESC, created_at DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query diary: %w", err)
	}
	defer rows.Close()

	entries := []models.DiaryEntry{}
	for rows.Next() {
		var e models.DiaryEntry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.UserID, &e.Date, &e.Body, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan diary entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query diary: %w", err)
	}
	return entries, nil
}

// CreateDiaryEntry inserts a diary note.
func (r *RecordRepo) CreateDiaryEntry(ctx context.Context, e *models.DiaryEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO diary_entries (id, project_id, user_id, date, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.ProjectID, e.UserID, e.Date, e.Body, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create diary entry: %w", err)
	}
	return nil
}

// ListDocuments returns the metadata of the project's files.
func (r *RecordRepo) ListDocuments(ctx context.Context, projectID string) ([]models.Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, project_id, user_id, name, storage_path, content_type, size_bytes, created_at
		FROM documents WHERE project_id = $1 ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.UserID, &d.Name, &d.StoragePath, &d.ContentType, &d.SizeBytes, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	return docs, nil
}

// CreateDocument records metadata for a file already uploaded to storage.
func (r *RecordRepo) CreateDocument(ctx context.Context, d *models.Document) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO documents (id, project_id, user_id, name, storage_path, content_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, d.ID, d.ProjectID, d.UserID, d.Name, d.StoragePath, d.ContentType, d.SizeBytes, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// RecordAudit appends an entry to the audit trail.
func (r *RecordRepo) RecordAudit(ctx context.Context, e *models.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_logs (id, project_id, user_id, action, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.ProjectID, e.UserID, e.Action, e.Description, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// ListAudit returns the project's audit trail, newest first.
func (r *RecordRepo) ListAudit(ctx context.Context, projectID string, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, project_id, user_id, action, description, created_at
		FROM audit_logs WHERE project_id = $1 ORDER BY created_at DESC LIMIT $2
	`, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.UserID, &e.Action, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	return entries, nil
}

// CreateNotification stores a reminder. It reports false when the same reminder was already
// issued for that project and day.
func (r *RecordRepo) CreateNotification(ctx context.Context, n *models.Notification) (bool, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, project_id, user_id, kind, message, day, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (project_id, kind, day) DO NOTHING
	`, n.ID, n.ProjectID, n.UserID, n.Kind, n.Message, n.Day, n.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to create notification: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListNotifications returns the user's reminders, newest first.
func (r *RecordRepo) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	query := `
		SELECT id, project_id, user_id, kind, message, day, created_at, read
		FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND NOT read`
	}
	query += ` ORDER BY created_at DESC LIMIT 200`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	list := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.ProjectID, &n.UserID, &n.Kind, &n.Message, &n.Day, &n.CreatedAt, &n.Read); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	return list, nil
}

// MarkNotificationRead flags a reminder as read by its owner.
func (r *RecordRepo) MarkNotificationRead(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification %s: %w", id, utils.ErrNotFound)
	}
	return nil
}
