package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/models"
	"obra_tracker/pkg/core/utils"

	"github.com/google/uuid"
)

// Memory keeps every record in process. It backs the server when no DATABASE_URL is set and
// the handler tests. Reads return copies, so callers may mutate what they get.
type Memory struct {
	mu            sync.RWMutex
	projects      map[string]finance.Project // without units and expenses
	projectOrder  []string
	units         map[string]finance.Unit
	expenses      []finance.Expense
	budget        map[string][]finance.BudgetLine
	diary         []models.DiaryEntry
	documents     []models.Document
	audit         []models.AuditEntry
	notifications []models.Notification
	now           func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		projects: map[string]finance.Project{},
		units:    map[string]finance.Unit{},
		budget:   map[string][]finance.BudgetLine{},
		now:      time.Now,
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, utils.ErrNotFound)
}

// ---- projects ----

func (m *Memory) loadLocked(id string) finance.Project {
	p := m.projects[id]
	p.Units = m.unitsLocked(id)
	p.Expenses = m.expensesLocked(id)
	return p
}

func (m *Memory) ListProjects(_ context.Context, ownerID string) ([]finance.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []finance.Project{}
	for _, id := range m.projectOrder {
		if m.projects[id].OwnerID == ownerID {
			out = append(out, m.loadLocked(id))
		}
	}
	return out, nil
}

func (m *Memory) ListAllProjects(_ context.Context) ([]finance.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]finance.Project, 0, len(m.projectOrder))
	for _, id := range m.projectOrder {
		out = append(out, m.loadLocked(id))
	}
	return out, nil
}

func (m *Memory) GetProject(_ context.Context, id string) (*finance.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.projects[id]; !ok {
		return nil, notFound("project", id)
	}
	p := m.loadLocked(id)
	return &p, nil
}

func (m *Memory) CreateProject(_ context.Context, p *finance.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[p.ID]; ok {
		return fmt.Errorf("failed to create project: duplicate id %s", p.ID)
	}
	stored := *p
	stored.Units, stored.Expenses = nil, nil
	m.projects[p.ID] = stored
	m.projectOrder = append(m.projectOrder, p.ID)
	return nil
}

func (m *Memory) UpdateProject(_ context.Context, p *finance.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.projects[p.ID]
	if !ok {
		return notFound("project", p.ID)
	}
	cur.Name = p.Name
	cur.Progress = p.Progress
	cur.StartDate = p.StartDate
	cur.DeliveryDate = p.DeliveryDate
	m.projects[p.ID] = cur
	return nil
}

func (m *Memory) UpdateProgress(_ context.Context, id string, progress int) error {
	if !finance.ValidProgress(progress) {
		return utils.ErrInvalidProgress
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.projects[id]
	if !ok {
		return notFound("project", id)
	}
	cur.Progress = progress
	m.projects[id] = cur
	return nil
}

// DeleteProject cascades like the foreign keys of schema.sql.
func (m *Memory) DeleteProject(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return notFound("project", id)
	}
	delete(m.projects, id)
	for i, pid := range m.projectOrder {
		if pid == id {
			m.projectOrder = append(m.projectOrder[:i], m.projectOrder[i+1:]...)
			break
		}
	}
	for uid, u := range m.units {
		if u.ProjectID == id {
			delete(m.units, uid)
		}
	}
	delete(m.budget, id)
	m.expenses = filter(m.expenses, func(e finance.Expense) bool { return e.ProjectID != id })
	m.diary = filter(m.diary, func(e models.DiaryEntry) bool { return e.ProjectID != id })
	m.documents = filter(m.documents, func(d models.Document) bool { return d.ProjectID != id })
	m.audit = filter(m.audit, func(a models.AuditEntry) bool { return a.ProjectID != id })
	m.notifications = filter(m.notifications, func(n models.Notification) bool { return n.ProjectID != id })
	return nil
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// ---- units ----

func (m *Memory) unitsLocked(projectID string) []finance.Unit {
	out := []finance.Unit{}
	for _, u := range m.units {
		if u.ProjectID == projectID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out
}

func (m *Memory) ListUnits(_ context.Context, projectID string) ([]finance.Unit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unitsLocked(projectID), nil
}

func (m *Memory) GetUnit(_ context.Context, projectID, unitID string) (*finance.Unit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.units[unitID]
	if !ok || u.ProjectID != projectID {
		return nil, fmt.Errorf("unit %s: %w", unitID, utils.ErrUnitNotFound)
	}
	return &u, nil
}

func (m *Memory) CreateUnit(_ context.Context, u *finance.Unit) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[u.ProjectID]; !ok {
		return fmt.Errorf("failed to create unit: %w", notFound("project", u.ProjectID))
	}
	m.units[u.ID] = *u
	return nil
}

func (m *Memory) CreateUnits(_ context.Context, units []finance.Unit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range units {
		if _, ok := m.projects[u.ProjectID]; !ok {
			return fmt.Errorf("failed to insert units: %w", notFound("project", u.ProjectID))
		}
	}
	for i := range units {
		if units[i].ID == "" {
			units[i].ID = uuid.New().String()
		}
		m.units[units[i].ID] = units[i]
	}
	return nil
}

func (m *Memory) UpdateUnit(_ context.Context, u *finance.Unit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.units[u.ID]
	if !ok || cur.ProjectID != u.ProjectID {
		return fmt.Errorf("unit %s: %w", u.ID, utils.ErrUnitNotFound)
	}
	m.units[u.ID] = *u
	return nil
}

func (m *Memory) DeleteUnit(_ context.Context, projectID, unitID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.units[unitID]
	if !ok || cur.ProjectID != projectID {
		return fmt.Errorf("unit %s: %w", unitID, utils.ErrUnitNotFound)
	}
	delete(m.units, unitID)
	return nil
}

// ---- expenses and budget ----

func (m *Memory) expensesLocked(projectID string) []finance.Expense {
	out := []finance.Expense{}
	for _, e := range m.expenses {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out
}

func (m *Memory) ListExpenses(_ context.Context, projectID string) ([]finance.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.expensesLocked(projectID), nil
}

func (m *Memory) CreateExpense(_ context.Context, e *finance.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[e.ProjectID]; !ok {
		return fmt.Errorf("failed to create expense: %w", notFound("project", e.ProjectID))
	}
	m.expenses = append(m.expenses, *e)
	return nil
}

func (m *Memory) DeleteExpense(_ context.Context, projectID, expenseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.expenses {
		if e.ID == expenseID && e.ProjectID == projectID {
			m.expenses = append(m.expenses[:i], m.expenses[i+1:]...)
			return nil
		}
	}
	return notFound("expense", expenseID)
}

func (m *Memory) ListBudgetLines(_ context.Context, projectID string) ([]finance.BudgetLine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lines := append([]finance.BudgetLine{}, m.budget[projectID]...)
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Macro != lines[j].Macro {
			return lines[i].Macro < lines[j].Macro
		}
		return lines[i].SubMacro < lines[j].SubMacro
	})
	return lines, nil
}

func (m *Memory) ReplaceBudgetLines(_ context.Context, projectID string, lines []finance.BudgetLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]finance.BudgetLine, len(lines))
	for i := range lines {
		lines[i].ID = uuid.New().String()
		lines[i].ProjectID = projectID
		stored[i] = lines[i]
	}
	m.budget[projectID] = stored
	return nil
}

// ---- records ----

func (m *Memory) stamp(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.New().String()
	}
	if createdAt.IsZero() {
		*createdAt = m.now().UTC()
	}
}

func (m *Memory) ListDiary(_ context.Context, projectID string) ([]models.DiaryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.DiaryEntry{}
	for _, e := range m.diary {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) CreateDiaryEntry(_ context.Context, e *models.DiaryEntry) error {
	m.stamp(&e.ID, &e.CreatedAt)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.diary = append(m.diary, *e)
	return nil
}

func (m *Memory) ListDocuments(_ context.Context, projectID string) ([]models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Document{}
	for _, d := range m.documents {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) CreateDocument(_ context.Context, d *models.Document) error {
	m.stamp(&d.ID, &d.CreatedAt)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents = append(m.documents, *d)
	return nil
}

func (m *Memory) RecordAudit(_ context.Context, e *models.AuditEntry) error {
	m.stamp(&e.ID, &e.CreatedAt)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, *e)
	return nil
}

// ListAudit returns newest first; entries with equal timestamps keep reverse insertion order.
func (m *Memory) ListAudit(_ context.Context, projectID string, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.AuditEntry{}
	for i := len(m.audit) - 1; i >= 0; i-- {
		if m.audit[i].ProjectID == projectID {
			out = append(out, m.audit[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) CreateNotification(_ context.Context, n *models.Notification) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.notifications {
		if cur.ProjectID == n.ProjectID && cur.Kind == n.Kind && sameDay(cur.Day, n.Day) {
			return false, nil
		}
	}
	m.stamp(&n.ID, &n.CreatedAt)
	m.notifications = append(m.notifications, *n)
	return true, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (m *Memory) ListNotifications(_ context.Context, userID string, unreadOnly bool) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Notification{}
	for i := len(m.notifications) - 1; i >= 0; i-- {
		n := m.notifications[i]
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) MarkNotificationRead(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications {
		if m.notifications[i].ID == id && m.notifications[i].UserID == userID {
			m.notifications[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", id, utils.ErrNotFound)
}
