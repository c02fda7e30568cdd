package projects

import (
	"fmt"
	"net/http"
	"strings"

	"obra_tracker/pkg/api/middleware"
	"obra_tracker/pkg/api/response"
	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/models"
)

func (h *Handler) view(p finance.Project, inflation float64) ProjectView {
	return ProjectView{
		Project: p,
		Stage:   finance.StageName(p.Progress),
		Summary: finance.AggregateWithMonthLength(p.Units, p, inflation, h.DaysPerMonth),
	}
}

func (h *Handler) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := h.Stores.Projects.ListProjects(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		response.HandleAppError(w, err)
		return
	}
	rate := h.inflationRate(r.Context())
	views := make([]ProjectView, 0, len(list))
	for _, p := range list {
		views = append(views, h.view(p, rate))
	}
	response.RespondWithJSON(w, http.StatusOK, views)
}

func (h *Handler) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !response.DecodeAndValidate(w, r, &req) {
		return
	}
	userID := middleware.UserID(r.Context())
	p := &finance.Project{
		Name:         strings.TrimSpace(req.Name),
		OwnerID:      userID,
		Progress:     req.Progress,
		StartDate:    req.StartDate,
		DeliveryDate: req.DeliveryDate,
		Units:        []finance.Unit{},
		Expenses:     []finance.Expense{},
	}
	if err := h.Stores.Projects.CreateProject(r.Context(), p); err != nil {
		response.HandleAppError(w, err)
		return
	}
	h.audit(r.Context(), p.ID, userID, models.AuditProjectCreated, fmt.Sprintf("Project %q created", p.Name))
	response.RespondWithJSON(w, http.StatusCreated, h.view(*p, h.DefaultInflation))
}

func (h *Handler) HandleGetProject(w http.ResponseWriter, r *http.Request) {
	p, _, ok := h.project(w, r)
	if !ok {
		return
	}
	response.RespondWithJSON(w, http.StatusOK, h.view(*p, h.inflationRate(r.Context())))
}

func (h *Handler) HandleUpdateProject(w http.ResponseWriter, r *http.Request) {
	p, userID, ok := h.project(w, r)
	if !ok {
		return
	}
	var req UpdateProjectRequest
	if !response.DecodeAndValidate(w, r, &req) {
		return
	}

	var changes []string
	if req.Name != nil && strings.TrimSpace(*req.Name) != p.Name {
		changes = append(changes, fmt.Sprintf("name %q -> %q", p.Name, strings.TrimSpace(*req.Name)))
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Progress != nil && *req.Progress != p.Progress {
		changes = append(changes, fmt.Sprintf("progress %d%% -> %d%%", p.Progress, *req.Progress))
		p.Progress = *req.Progress
	}
	if req.StartDate != nil {
		changes = append(changes, "start date "+req.StartDate.String())
		p.StartDate = req.StartDate
	}
	if req.DeliveryDate != nil {
		changes = append(changes, "delivery date "+req.DeliveryDate.String())
		p.DeliveryDate = req.DeliveryDate
	}

	if len(changes) > 0 {
		if err := h.Stores.Projects.UpdateProject(r.Context(), p); err != nil {
			response.HandleAppError(w, err)
			return
		}
		h.audit(r.Context(), p.ID, userID, models.AuditProjectUpdated, "Project updated: "+strings.Join(changes, "; "))
	}
	response.RespondWithJSON(w, http.StatusOK, h.view(*p, h.inflationRate(r.Context())))
}

func (h *Handler) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	p, _, ok := h.project(w, r)
	if !ok {
		return
	}
	if err := h.Stores.Projects.DeleteProject(r.Context(), p.ID); err != nil {
		response.HandleAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	p, userID, ok := h.project(w, r)
	if !ok {
		return
	}
	var req ProgressRequest
	if !response.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := h.Stores.Projects.UpdateProgress(r.Context(), p.ID, *req.Progress); err != nil {
		response.HandleAppError(w, err)
		return
	}
	if *req.Progress != p.Progress {
		h.audit(r.Context(), p.ID, userID, models.AuditProgressChanged,
			fmt.Sprintf("Progress %d%% -> %d%% (%s)", p.Progress, *req.Progress, finance.StageName(*req.Progress)))
	}
	p.Progress = *req.Progress
	response.RespondWithJSON(w, http.StatusOK, h.view(*p, h.inflationRate(r.Context())))
}
