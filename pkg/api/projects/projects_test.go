package projects

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"obra_tracker/pkg/api/middleware"
	"obra_tracker/pkg/api/response"
	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/inflation"
	"obra_tracker/pkg/core/models"
	"obra_tracker/pkg/core/store"
	"obra_tracker/pkg/core/utils"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	mem    *store.Memory
	router *mux.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mem := store.NewMemory()
	h := NewHandler(store.NewMemoryStores(mem), inflation.Fixed(0.004), 0.005, 30)
	h.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }
	r := mux.NewRouter()
	h.Register(r)
	return &testEnv{mem: mem, router: r}
}

func (e *testEnv) do(t *testing.T, user, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req = req.WithContext(middleware.WithUserID(req.Context(), user))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (e *testEnv) createProject(t *testing.T, user string, progress int) ProjectView {
	t.Helper()
	rec := e.do(t, user, http.MethodPost, "/projects", map[string]any{"name": "Residencial Aurora", "progress": progress})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[ProjectView](t, rec)
}

func (e *testEnv) createUnit(t *testing.T, user, projectID, identifier string, area, cost float64) finance.Unit {
	t.Helper()
	rec := e.do(t, user, http.MethodPost, "/projects/"+projectID+"/units",
		map[string]any{"identifier": identifier, "area": area, "cost": cost})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[finance.Unit](t, rec)
}

func TestCreateProjectValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "u1", http.MethodPost, "/projects", map[string]any{"name": "Aurora", "progress": 35})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[response.ErrorResponse](t, rec)
	assert.Equal(t, utils.ErrCodeValidation, body.Code)
	assert.Equal(t, map[string]any{"Progress": "progress_step"}, body.Details)

	rec = env.do(t, "u1", http.MethodPost, "/projects", map[string]any{"progress": 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	p := env.createProject(t, "u1", 20)
	assert.Equal(t, "Foundation", p.Stage)
	assert.Equal(t, "u1", p.OwnerID)

	audit, err := env.mem.ListAudit(t.Context(), p.ID, 0)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, models.AuditProjectCreated, audit[0].Action)
}

func TestForeignProjectLooksMissing(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, "owner", 0)

	rec := env.do(t, "intruder", http.MethodGet, "/projects/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(t, "intruder", http.MethodDelete, "/projects/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, "owner", http.MethodGet, "/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]ProjectView](t, rec), 1)
	rec = env.do(t, "intruder", http.MethodGet, "/projects", nil)
	assert.Empty(t, decode[[]ProjectView](t, rec))
}

func TestCompletedProjectReallocatesCost(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, "u1", 90)
	small := env.createUnit(t, "u1", p.ID, "Apto 101", 100, 50000)
	big := env.createUnit(t, "u1", p.ID, "Apto 102", 200, 80000)

	rec := env.do(t, "u1", http.MethodPost, "/projects/"+p.ID+"/expenses",
		map[string]any{"description": "Total build", "value": 150000, "date": "2026-01-01", "macro": "Structure"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// At 90% the nominal cost is the basis.
	rec = env.do(t, "u1", http.MethodGet, "/projects/"+p.ID+"/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	m := decode[MetricsResponse](t, rec)
	assert.False(t, m.Metrics.ProportionalCost)
	assert.Equal(t, 0.004, m.InflationRate)
	assert.InDelta(t, 80000, m.Metrics.Units[1].CostBasis, 1e-6)

	rec = env.do(t, "u1", http.MethodPatch, "/projects/"+p.ID+"/progress", map[string]any{"progress": 100})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Completed", decode[ProjectView](t, rec).Stage)

	rec = env.do(t, "u1", http.MethodGet, "/projects/"+p.ID+"/metrics", nil)
	m = decode[MetricsResponse](t, rec)
	assert.True(t, m.Metrics.ProportionalCost)
	require.Len(t, m.Metrics.Units, 2)
	assert.Equal(t, small.ID, m.Metrics.Units[0].Unit.ID)
	assert.InDelta(t, 50000, m.Metrics.Units[0].CostBasis, 1e-6)
	assert.Equal(t, big.ID, m.Metrics.Units[1].Unit.ID)
	assert.InDelta(t, 100000, m.Metrics.Units[1].CostBasis, 1e-6)

	// Sold 300 days after the first expense: 10 months at 30 days per month.
	rec = env.do(t, "u1", http.MethodPost, "/projects/"+p.ID+"/units/"+big.ID+"/sell",
		map[string]any{"saleValue": 120000, "saleDate": "2026-10-28"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	row := decode[finance.UnitReport](t, rec)
	require.NotNil(t, row.Metrics)
	assert.InDelta(t, 20000, row.Metrics.Profit, 1e-6)
	assert.InDelta(t, 0.20, row.Metrics.NominalTotalROI, 1e-9)
	assert.InDelta(t, 0.02, row.Metrics.NominalMonthlyROI, 1e-9)
	assert.InDelta(t, 0.016, row.Metrics.RealMonthlyROI, 1e-9)

	rec = env.do(t, "u1", http.MethodPost, "/projects/"+p.ID+"/units/"+big.ID+"/sell", map[string]any{"saleValue": 1})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, "u1", http.MethodGet, "/projects/"+p.ID, nil)
	view := decode[ProjectView](t, rec)
	assert.Equal(t, 1, view.Summary.SoldCount)
	assert.Equal(t, 1, view.Summary.AvailableCount)
	assert.InDelta(t, 120000, view.Summary.RealizedRevenue, 1e-6)
}

func TestUnitEndpoints(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, "u1", 0)

	rec := env.do(t, "u1", http.MethodPost, "/projects/"+p.ID+"/units", map[string]any{"identifier": "X", "area": 0, "cost": 10})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(t, "u1", http.MethodPost, "/projects/"+p.ID+"/units", map[string]any{"identifier": "X", "area": 10, "cost": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, "u1", http.MethodPost, "/projects/"+p.ID+"/units/batch",
		map[string]any{"prefix": "Apto ", "first_floor": 1, "floors": 2, "units_per_floor": 2, "area": 60, "cost": 200000})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	units := decode[[]finance.Unit](t, rec)
	require.Len(t, units, 4)
	assert.Equal(t, "Apto 101", units[0].Identifier)
	assert.Equal(t, "Apto 202", units[3].Identifier)

	rec = env.do(t, "u1", http.MethodPatch, "/projects/"+p.ID+"/units/"+units[0].ID, map[string]any{"cost": 210000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 210000.0, decode[finance.Unit](t, rec).Cost)

	rec = env.do(t, "u1", http.MethodDelete, "/projects/"+p.ID+"/units/"+units[1].ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, "u1", http.MethodDelete, "/projects/"+p.ID+"/units/"+units[1].ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, "u1", http.MethodGet, "/projects/"+p.ID+"/units", nil)
	assert.Len(t, decode[[]finance.Unit](t, rec), 3)

	rec = env.do(t, "u1", http.MethodGet, "/projects/"+p.ID+"/audit", nil)
	audit := decode[[]models.AuditEntry](t, rec)
	require.Len(t, audit, 4)
	assert.Equal(t, models.AuditUnitDeleted, audit[0].Action)
	assert.Contains(t, audit[0].Description, "Apto 102")

	rec = env.do(t, "u1", http.MethodGet, "/projects/"+p.ID+"/audit?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExpensesAndBudget(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, "u1", 40)

	rec := env.do(t, "u1", http.MethodPost, "/projects/"+p.ID+"/expenses",
		map[string]any{"description": "Cement", "value": 3000, "macro": "Structure", "sub_macro": "Concrete"})
	require.Equal(t, http.StatusCreated, rec.Code)
	cement := decode[finance.Expense](t, rec)
	assert.Equal(t, "2026-10-19", cement.Date.String())
	assert.Equal(t, "u1", cement.UserID)

	rec = env.do(t, "u1", http.MethodPost, "/projects/"+p.ID+"/expenses", map[string]any{"description": "Paint", "value": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, "u1", http.MethodPut, "/projects/"+p.ID+"/budget", map[string]any{"lines": []map[string]any{
		{"macro": "Structure", "sub_macro": "Concrete", "planned": 10000},
		{"macro": "Finishing", "planned": 5000},
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, "u1", http.MethodGet, "/projects/"+p.ID+"/budget", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	budget := decode[BudgetResponse](t, rec)
	assert.Len(t, budget.Lines, 2)
	assert.InDelta(t, 15000, budget.Report.Total.Planned, 1e-6)
	assert.InDelta(t, 3000, budget.Report.Total.Spent, 1e-6)
	assert.InDelta(t, 0.2, budget.Report.Total.PercentUsed, 1e-9)

	rec = env.do(t, "u1", http.MethodPut, "/projects/"+p.ID+"/budget", map[string]any{"lines": []map[string]any{{"planned": 1}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, "u1", http.MethodDelete, "/projects/"+p.ID+"/expenses/"+cement.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, "u1", http.MethodDelete, "/projects/"+p.ID+"/expenses/"+cement.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDiaryAndDocuments(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, "u1", 30)

	rec := env.do(t, "u1", http.MethodPost, "/projects/"+p.ID+"/diary", map[string]any{"body": "Slab **poured** on level 3"})
	require.Equal(t, http.StatusCreated, rec.Code)
	entry := decode[models.DiaryEntry](t, rec)
	assert.Contains(t, entry.HTML, "<strong>poured</strong>")

	rec = env.do(t, "u1", http.MethodGet, "/projects/"+p.ID+"/diary", nil)
	entries := decode[[]models.DiaryEntry](t, rec)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].HTML, "<strong>")

	rec = env.do(t, "u1", http.MethodPost, "/projects/"+p.ID+"/documents", map[string]any{"name": "Alvará.pdf"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(t, "u1", http.MethodPost, "/projects/"+p.ID+"/documents",
		map[string]any{"name": "Alvará.pdf", "storage_path": "projects/p1/alvara.pdf", "content_type": "application/pdf", "size_bytes": 1024})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, "u1", http.MethodGet, "/projects/"+p.ID+"/documents", nil)
	docs := decode[[]models.Document](t, rec)
	require.Len(t, docs, 1)
	assert.Equal(t, "application/pdf", docs[0].ContentType)
}

func TestUpdateProject(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProject(t, "u1", 10)

	rec := env.do(t, "u1", http.MethodPatch, "/projects/"+p.ID, map[string]any{"name": "Aurora II", "delivery_date": "2027-06-30"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[ProjectView](t, rec)
	assert.Equal(t, "Aurora II", view.Name)
	assert.Equal(t, "2027-06-30", view.DeliveryDate.String())
	assert.Equal(t, 10, view.Progress)

	rec = env.do(t, "u1", http.MethodPatch, "/projects/"+p.ID, map[string]any{"progress": 15})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, "u1", http.MethodDelete, "/projects/"+p.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(t, "u1", http.MethodGet, "/projects/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
