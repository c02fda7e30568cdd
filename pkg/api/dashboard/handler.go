// Package dashboard serves the cross-project summary of the signed-in user.
package dashboard

import (
	"net/http"

	"obra_tracker/pkg/api/middleware"
	"obra_tracker/pkg/api/response"
	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/inflation"
	"obra_tracker/pkg/core/store"
)

// ProjectRow is one project line of the dashboard.
type ProjectRow struct {
	ID            string                   `json:"id"`
	Name          string                   `json:"name"`
	Progress      int                      `json:"progress"`
	Stage         string                   `json:"stage"`
	TotalExpenses float64                  `json:"total_expenses"`
	Summary       finance.PortfolioSummary `json:"summary"`
}

type Response struct {
	InflationRate float64                  `json:"inflation_rate"`
	ProjectCount  int                      `json:"project_count"`
	TotalExpenses float64                  `json:"total_expenses"`
	Summary       finance.PortfolioSummary `json:"summary"`
	Projects      []ProjectRow             `json:"projects"`
}

type Handler struct {
	Projects         store.ProjectStore
	Rates            inflation.RateSource
	DefaultInflation float64
	DaysPerMonth     float64
}

func NewHandler(projects store.ProjectStore, rates inflation.RateSource, defaultInflation, daysPerMonth float64) *Handler {
	if daysPerMonth <= 0 {
		daysPerMonth = finance.DefaultDaysPerMonth
	}
	return &Handler{Projects: projects, Rates: rates, DefaultInflation: defaultInflation, DaysPerMonth: daysPerMonth}
}

// HandleDashboard aggregates every project the caller owns. Each sold unit counts once
// whatever project it belongs to.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projects, err := h.Projects.ListProjects(ctx, middleware.UserID(ctx))
	if err != nil {
		response.HandleAppError(w, err)
		return
	}
	rate := inflation.RateOrDefault(ctx, h.Rates, h.DefaultInflation)

	summary, err := finance.AggregateProjectsParallel(ctx, projects, rate, h.DaysPerMonth)
	if err != nil {
		response.HandleAppError(w, err)
		return
	}

	resp := Response{
		InflationRate: rate,
		ProjectCount:  len(projects),
		Summary:       summary,
		Projects:      make([]ProjectRow, 0, len(projects)),
	}
	for _, p := range projects {
		spent := finance.TotalExpenses(p.Expenses)
		resp.TotalExpenses += spent
		resp.Projects = append(resp.Projects, ProjectRow{
			ID:            p.ID,
			Name:          p.Name,
			Progress:      p.Progress,
			Stage:         finance.StageName(p.Progress),
			TotalExpenses: spent,
			Summary:       finance.AggregateWithMonthLength(p.Units, p, rate, h.DaysPerMonth),
		})
	}
	response.RespondWithJSON(w, http.StatusOK, resp)
}
