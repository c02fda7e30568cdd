// Package projects serves the project, unit, expense, budget, diary, document, audit and
// metrics endpoints.
package projects

import (
	"context"
	"net/http"
	"time"

	"obra_tracker/pkg/api/middleware"
	"obra_tracker/pkg/api/response"
	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/inflation"
	"obra_tracker/pkg/core/models"
	"obra_tracker/pkg/core/store"
	"obra_tracker/pkg/core/utils"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Handler holds dependencies for project endpoints
type Handler struct {
	Stores           store.Stores
	Rates            inflation.RateSource
	DefaultInflation float64
	DaysPerMonth     float64
	now              func() time.Time
}

// NewHandler creates a new projects handler
func NewHandler(stores store.Stores, rates inflation.RateSource, defaultInflation, daysPerMonth float64) *Handler {
	if daysPerMonth <= 0 {
		daysPerMonth = finance.DefaultDaysPerMonth
	}
	return &Handler{
		Stores:           stores,
		Rates:            rates,
		DefaultInflation: defaultInflation,
		DaysPerMonth:     daysPerMonth,
		now:              time.Now,
	}
}

// Register mounts every route on r, which is expected to sit behind AuthMiddleware.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/projects", h.HandleListProjects).Methods(http.MethodGet)
	r.HandleFunc("/projects", h.HandleCreateProject).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}", h.HandleGetProject).Methods(http.MethodGet)
	r.HandleFunc("/projects/{id}", h.HandleUpdateProject).Methods(http.MethodPatch)
	r.HandleFunc("/projects/{id}", h.HandleDeleteProject).Methods(http.MethodDelete)
	r.HandleFunc("/projects/{id}/progress", h.HandleUpdateProgress).Methods(http.MethodPatch)

	r.HandleFunc("/projects/{id}/units", h.HandleListUnits).Methods(http.MethodGet)
	r.HandleFunc("/projects/{id}/units", h.HandleCreateUnit).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}/units/batch", h.HandleGenerateUnits).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}/units/{unitId}", h.HandleUpdateUnit).Methods(http.MethodPatch)
	r.HandleFunc("/projects/{id}/units/{unitId}", h.HandleDeleteUnit).Methods(http.MethodDelete)
	r.HandleFunc("/projects/{id}/units/{unitId}/sell", h.HandleSellUnit).Methods(http.MethodPost)

	r.HandleFunc("/projects/{id}/expenses", h.HandleListExpenses).Methods(http.MethodGet)
	r.HandleFunc("/projects/{id}/expenses", h.HandleCreateExpense).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}/expenses/{expenseId}", h.HandleDeleteExpense).Methods(http.MethodDelete)
	r.HandleFunc("/projects/{id}/budget", h.HandleGetBudget).Methods(http.MethodGet)
	r.HandleFunc("/projects/{id}/budget", h.HandleReplaceBudget).Methods(http.MethodPut)

	r.HandleFunc("/projects/{id}/diary", h.HandleListDiary).Methods(http.MethodGet)
	r.HandleFunc("/projects/{id}/diary", h.HandleCreateDiary).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}/documents", h.HandleListDocuments).Methods(http.MethodGet)
	r.HandleFunc("/projects/{id}/documents", h.HandleCreateDocument).Methods(http.MethodPost)
	r.HandleFunc("/projects/{id}/audit", h.HandleListAudit).Methods(http.MethodGet)

	r.HandleFunc("/projects/{id}/metrics", h.HandleMetrics).Methods(http.MethodGet)
}

// project loads the {id} project of the caller. On failure the reply is already written.
func (h *Handler) project(w http.ResponseWriter, r *http.Request) (*finance.Project, string, bool) {
	userID := middleware.UserID(r.Context())
	p, err := store.LoadOwnedProject(r.Context(), h.Stores.Projects, mux.Vars(r)["id"], userID)
	if err != nil {
		response.HandleAppError(w, err)
		return nil, "", false
	}
	return p, userID, true
}

// audit appends to the trail. A failed write does not undo the mutation it describes.
func (h *Handler) audit(ctx context.Context, projectID, userID, action, description string) {
	err := h.Stores.Records.RecordAudit(ctx, &models.AuditEntry{
		ProjectID:   projectID,
		UserID:      userID,
		Action:      action,
		Description: description,
	})
	if err != nil {
		utils.Logger.WithError(err).WithFields(logrus.Fields{
			"project_id": projectID,
			"action":     action,
		}).Error("Failed to record audit entry")
	}
}

func (h *Handler) inflationRate(ctx context.Context) float64 {
	return inflation.RateOrDefault(ctx, h.Rates, h.DefaultInflation)
}

func (h *Handler) today() finance.Date {
	return finance.NewDate(h.now())
}
