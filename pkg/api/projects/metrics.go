package projects

import (
	"net/http"

	"obra_tracker/pkg/api/response"
	"obra_tracker/pkg/core/finance"
)

// HandleMetrics recomputes the project's metrics from its current units and expenses.
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	p, _, ok := h.project(w, r)
	if !ok {
		return
	}
	rate := h.inflationRate(r.Context())
	response.RespondWithJSON(w, http.StatusOK, MetricsResponse{
		InflationRate: rate,
		DaysPerMonth:  h.DaysPerMonth,
		Metrics:       finance.Analyze(*p, rate, h.DaysPerMonth),
	})
}
