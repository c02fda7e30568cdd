package notifications

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"obra_tracker/pkg/api/middleware"
	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/models"
	"obra_tracker/pkg/core/notify"
	"obra_tracker/pkg/core/store"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(method, path, user string, vars map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req.WithContext(middleware.WithUserID(req.Context(), user))
}

func TestNotificationsFromPlanner(t *testing.T) {
	m := store.NewMemory()
	ctx := t.Context()
	now := time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)
	p := &finance.Project{Name: "Aurora", OwnerID: "u1", Progress: 70,
		StartDate:    finance.DatePtr(now.AddDate(0, 0, -10)),
		DeliveryDate: finance.DatePtr(now.AddDate(0, 0, 10))}
	require.NoError(t, m.CreateProject(ctx, p))

	projects, err := m.ListAllProjects(ctx)
	require.NoError(t, err)
	for _, n := range notify.NewPlanner(30).Plan(projects, now) {
		n := n
		_, err := m.CreateNotification(ctx, &n)
		require.NoError(t, err)
	}

	h := NewHandler(m)
	rec := httptest.NewRecorder()
	h.HandleList(rec, request(http.MethodGet, "/notifications?unread=true", "u1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, models.NotifyDeliveryDue, list[0].Kind)

	rec = httptest.NewRecorder()
	h.HandleMarkRead(rec, request(http.MethodPost, "/notifications/"+list[0].ID+"/read", "u2", map[string]string{"id": list[0].ID}))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleMarkRead(rec, request(http.MethodPost, "/notifications/"+list[0].ID+"/read", "u1", map[string]string{"id": list[0].ID}))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleList(rec, request(http.MethodGet, "/notifications?unread=true", "u1", nil))
	list = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list)

	rec = httptest.NewRecorder()
	h.HandleList(rec, request(http.MethodGet, "/notifications", "u1", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}
