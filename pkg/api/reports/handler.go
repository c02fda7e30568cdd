// Package reports serves the printable project report and the portfolio spreadsheet.
package reports

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"obra_tracker/pkg/api/middleware"
	"obra_tracker/pkg/api/response"
	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/inflation"
	"obra_tracker/pkg/core/report"
	"obra_tracker/pkg/core/store"
	"obra_tracker/pkg/core/utils"

	"github.com/gorilla/mux"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	Projects         store.ProjectStore
	Budget           store.ExpenseStore
	Rates            inflation.RateSource
	DefaultInflation float64
	DaysPerMonth     float64
	now              func() time.Time
}

func NewHandler(projects store.ProjectStore, budget store.ExpenseStore, rates inflation.RateSource, defaultInflation, daysPerMonth float64) *Handler {
	if daysPerMonth <= 0 {
		daysPerMonth = finance.DefaultDaysPerMonth
	}
	return &Handler{
		Projects:         projects,
		Budget:           budget,
		Rates:            rates,
		DefaultInflation: defaultInflation,
		DaysPerMonth:     daysPerMonth,
		now:              time.Now,
	}
}

// HandleProjectReport renders the project report as HTML (default) or, with
// ?format=markdown, as Markdown.
func (h *Handler) HandleProjectReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format != "" && format != "html" && format != "markdown" && format != "md" {
		response.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "format must be html or markdown", nil)
		return
	}

	p, err := store.LoadOwnedProject(ctx, h.Projects, mux.Vars(r)["id"], middleware.UserID(ctx))
	if err != nil {
		response.HandleAppError(w, err)
		return
	}
	lines, err := h.Budget.ListBudgetLines(ctx, p.ID)
	if err != nil {
		response.HandleAppError(w, err)
		return
	}

	rate := inflation.RateOrDefault(ctx, h.Rates, h.DefaultInflation)
	md := report.BuildMarkdown(*p, finance.Analyze(*p, rate, h.DaysPerMonth), finance.RollupBudget(p.Expenses, lines), h.now())

	if format == "markdown" || format == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(md))
		return
	}
	page, err := report.RenderHTML(p.Name, md)
	if err != nil {
		response.HandleAppError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}

// HandlePortfolioXLSX exports every project of the caller as a workbook download.
func (h *Handler) HandlePortfolioXLSX(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projects, err := h.Projects.ListProjects(ctx, middleware.UserID(ctx))
	if err != nil {
		response.HandleAppError(w, err)
		return
	}
	rate := inflation.RateOrDefault(ctx, h.Rates, h.DefaultInflation)

	// Buffer first so a failed export still gets a JSON error instead of half a file.
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, projects, rate, h.DaysPerMonth); err != nil {
		response.HandleAppError(w, err)
		return
	}
	name := fmt.Sprintf("portfolio-%s.xlsx", h.now().Format(finance.DateLayout))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
