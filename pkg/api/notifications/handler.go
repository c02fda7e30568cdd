// Package notifications lists the reminders of the signed-in user.
package notifications

import (
	"context"
	"net/http"

	"obra_tracker/pkg/api/middleware"
	"obra_tracker/pkg/api/response"
	"obra_tracker/pkg/core/models"

	"github.com/gorilla/mux"
)

type Store interface {
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id string) error
}

type Handler struct {
	Store Store
}

func NewHandler(s Store) *Handler {
	return &Handler{Store: s}
}

// HandleList returns the caller's reminders, newest first; ?unread=true hides read ones.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	unread := r.URL.Query().Get("unread") == "true"
	list, err := h.Store.ListNotifications(ctx, middleware.UserID(ctx), unread)
	if err != nil {
		response.HandleAppError(w, err)
		return
	}
	response.RespondWithJSON(w, http.StatusOK, list)
}

func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.Store.MarkNotificationRead(ctx, middleware.UserID(ctx), mux.Vars(r)["id"]); err != nil {
		response.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
