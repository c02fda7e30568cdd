// Package models holds the project records that live next to the financial data:
// diary entries, document metadata, audit logs and notifications.
package models

import "time"

// DiaryEntry is a dated site-diary note written in Markdown.
type DiaryEntry struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Date      time.Time `json:"date"`
	Body      string    `json:"body"`
	HTML      string    `json:"html,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Document is the metadata of a file kept by the storage provider.
type Document struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	StoragePath string    `json:"storage_path"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// Audit actions.
const (
	AuditProjectCreated  = "project_created"
	AuditProjectUpdated  = "project_updated"
	AuditProgressChanged = "progress_changed"
	AuditUnitCreated     = "unit_created"
	AuditUnitsGenerated  = "units_generated"
	AuditUnitUpdated     = "unit_updated"
	AuditUnitSold        = "unit_sold"
	AuditUnitDeleted     = "unit_deleted"
	AuditExpenseCreated  = "expense_created"
	AuditExpenseDeleted  = "expense_deleted"
	AuditBudgetReplaced  = "budget_replaced"
	AuditDiaryCreated    = "diary_created"
	AuditDocumentAdded   = "document_added"
)

// AuditEntry records one mutation. Description is free text so it survives deletion of the
// record it talks about.
type AuditEntry struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	UserID      string    `json:"user_id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notification kinds.
const (
	NotifyDeliveryDue     = "delivery_due"
	NotifyDeliveryOverdue = "delivery_overdue"
	NotifyStaleLedger     = "stale_ledger"
)

// Notification is a reminder addressed to a project owner.
type Notification struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Day       time.Time `json:"day"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}
