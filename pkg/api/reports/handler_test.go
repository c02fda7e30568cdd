package reports

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"obra_tracker/pkg/api/middleware"
	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/inflation"
	"obra_tracker/pkg/core/report"
	"obra_tracker/pkg/core/store"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setup(t *testing.T) (*Handler, *finance.Project) {
	t.Helper()
	m := store.NewMemory()
	ctx := t.Context()
	p := &finance.Project{Name: "Residencial Aurora", OwnerID: "u1", Progress: 60}
	require.NoError(t, m.CreateProject(ctx, p))
	require.NoError(t, m.CreateUnit(ctx, &finance.Unit{ProjectID: p.ID, Identifier: "Apto 101", Area: 50, Cost: 100000, Status: finance.StatusAvailable}))
	require.NoError(t, m.CreateExpense(ctx, &finance.Expense{ProjectID: p.ID, Description: "Steel", Value: 12000, Macro: "Structure",
		Date: finance.NewDate(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))}))
	require.NoError(t, m.ReplaceBudgetLines(ctx, p.ID, []finance.BudgetLine{{Macro: "Structure", Planned: 40000}}))

	h := NewHandler(m, m, inflation.Fixed(0.004), 0.005, 0)
	h.now = func() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) }
	return h, p
}

func get(h http.HandlerFunc, user, path string, vars map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	req = req.WithContext(middleware.WithUserID(req.Context(), user))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestProjectReportFormats(t *testing.T) {
	h, p := setup(t)
	vars := map[string]string{"id": p.ID}

	rec := get(h.HandleProjectReport, "u1", "/projects/"+p.ID+"/report", vars)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Residencial Aurora</title>")
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, "R$ 12.000,00")

	rec = get(h.HandleProjectReport, "u1", "/projects/"+p.ID+"/report?format=markdown", vars)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rec.Body.String(), "# Residencial Aurora")
	assert.Contains(t, rec.Body.String(), "## Budget")
	assert.Contains(t, rec.Body.String(), "_Generated on 2026-10-19_")

	rec = get(h.HandleProjectReport, "u1", "/projects/"+p.ID+"/report?format=pdf", vars)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(h.HandleProjectReport, "u2", "/projects/"+p.ID+"/report", vars)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPortfolioXLSX(t *testing.T) {
	h, _ := setup(t)

	rec := get(h.HandlePortfolioXLSX, "u1", "/reports/portfolio.xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "portfolio-2026-10-19.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	name, err := f.GetCellValue(report.PortfolioSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Residencial Aurora", name)
	unit, err := f.GetCellValue(report.UnitsSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Apto 101", unit)
}
