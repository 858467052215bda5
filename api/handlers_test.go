/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Simulation requests with a gross wage or a contract
- Error status mapping per failure category
- Preset scenarios, assumptions, health and metrics
- Table reloads swapping the active engine
*/
package api_test

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kamio90/zus-retirement-simulator-sub000/api"
	"github.com/kamio90/zus-retirement-simulator-sub000/engine"
	"github.com/kamio90/zus-retirement-simulator-sub000/providers/demo"
	"github.com/kamio90/zus-retirement-simulator-sub000/providers/table"
)

const referenceBody = `{"birth_year": 1990, "gender": "M", "start_work_year": 2010, "gross_monthly": 6500}`

type simulateResponse struct {
	CalculationID string        `json:"calculation_id"`
	Result        engine.Output `json:"result"`
}

func newRouter(t *testing.T, p engine.Providers) (*api.Handler, http.Handler) {
	t.Helper()
	e, err := engine.New(p)
	require.NoError(t, err)
	h := api.NewHandler(e, zap.NewNop(), api.NewMetrics())
	return h, api.NewRouter(h, []string{"*"})
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// nanAnnual reports a non-finite index for every year.
type nanAnnual struct{}

func (nanAnnual) SourceID() string { return "nan-annual" }

func (nanAnnual) AnnualIndex(year int) (engine.Index, bool) {
	return engine.Index{Fraction: math.NaN(), ID: "nan"}, true
}

// =============================================================================
// SIMULATE
// =============================================================================

func TestSimulate_ReferenceWorker(t *testing.T) {
	// GIVEN: The demo bundle
	_, router := newRouter(t, demo.New())

	// WHEN: Simulating the reference worker
	rec := do(t, router, http.MethodPost, "/api/simulate", referenceBody)

	// THEN: The response carries a calculation id and the engine's result
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decode[simulateResponse](t, rec)
	_, err := uuid.Parse(resp.CalculationID)
	assert.NoError(t, err)

	want, err := engine.Calculate(engine.Input{
		BirthYear:     1990,
		Gender:        engine.Male,
		StartWorkYear: 2010,
		GrossMonthly:  engine.NewMoneyFromInt(6500),
	}, demo.New())
	require.NoError(t, err)

	assert.Equal(t, 2055, resp.Result.Scenario.RetirementYear)
	assert.Len(t, resp.Result.Trajectory, 45)
	assert.True(t, want.MonthlyNominal.Equal(resp.Result.MonthlyNominal), "got %s want %s", resp.Result.MonthlyNominal, want.MonthlyNominal)
	assert.True(t, want.MonthlyReal.Equal(resp.Result.MonthlyReal))
}

func TestSimulate_CalculationIDsAreUnique(t *testing.T) {
	_, router := newRouter(t, demo.New())

	first := decode[simulateResponse](t, do(t, router, http.MethodPost, "/api/simulate", referenceBody))
	second := decode[simulateResponse](t, do(t, router, http.MethodPost, "/api/simulate", referenceBody))

	assert.NotEqual(t, first.CalculationID, second.CalculationID)
	assert.True(t, first.Result.MonthlyNominal.Equal(second.Result.MonthlyNominal))
}

func TestSimulate_EmploymentContractMatchesGrossWage(t *testing.T) {
	// GIVEN: The same worker described by an employment contract
	_, router := newRouter(t, demo.New())

	gross := decode[simulateResponse](t, do(t, router, http.MethodPost, "/api/simulate", referenceBody))

	// WHEN: Simulating through the contract form
	rec := do(t, router, http.MethodPost, "/api/simulate",
		`{"birth_year": 1990, "gender": "M", "start_work_year": 2010,
		  "contract": {"type": "employment", "gross_monthly": 6500}}`)

	// THEN: The result is the same
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	viaContract := decode[simulateResponse](t, rec)
	assert.True(t, gross.Result.MonthlyNominal.Equal(viaContract.Result.MonthlyNominal))
}

func TestSimulate_GrossAndContractAreExclusive(t *testing.T) {
	_, router := newRouter(t, demo.New())

	rec := do(t, router, http.MethodPost, "/api/simulate",
		`{"birth_year": 1990, "gender": "M", "start_work_year": 2010, "gross_monthly": 6500,
		  "contract": {"type": "employment", "gross_monthly": 6500}}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[api.ErrorResponse](t, rec)
	assert.Equal(t, "validation_failed", resp.Code)
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "gross_monthly", resp.Fields[0].Field)
}

func TestSimulate_UnknownContractType(t *testing.T) {
	_, router := newRouter(t, demo.New())

	rec := do(t, router, http.MethodPost, "/api/simulate",
		`{"birth_year": 1990, "gender": "M", "start_work_year": 2010, "contract": {"type": "b2b"}}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[api.ErrorResponse](t, rec)
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "contract", resp.Fields[0].Field)
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestSimulate_ErrorStatusMapping(t *testing.T) {
	for _, tc := range []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{
			name:   "malformed json",
			body:   `{"birth_year": `,
			status: http.StatusBadRequest,
			code:   "malformed_json",
		},
		{
			name:   "invalid fields",
			body:   `{"birth_year": 0, "gender": "X", "start_work_year": 2010, "gross_monthly": 6500}`,
			status: http.StatusUnprocessableEntity,
			code:   "validation_failed",
		},
		{
			name:   "start after retirement",
			body:   `{"birth_year": 1990, "gender": "M", "start_work_year": 2060, "gross_monthly": 6500}`,
			status: http.StatusUnprocessableEntity,
			code:   "domain_constraint",
		},
		{
			name:   "years outside provider coverage",
			body:   `{"birth_year": 1920, "gender": "M", "start_work_year": 1940, "gross_monthly": 6500}`,
			status: http.StatusUnprocessableEntity,
			code:   "missing_data",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, router := newRouter(t, demo.New())

			rec := do(t, router, http.MethodPost, "/api/simulate", tc.body)

			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			resp := decode[api.ErrorResponse](t, rec)
			assert.Equal(t, tc.status, resp.Status)
			assert.Equal(t, tc.code, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestSimulate_ValidationListsEveryField(t *testing.T) {
	_, router := newRouter(t, demo.New())

	rec := do(t, router, http.MethodPost, "/api/simulate", `{"birth_year": 0, "gender": "X", "start_work_year": 2010}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[api.ErrorResponse](t, rec)

	var fields []string
	for _, f := range resp.Fields {
		fields = append(fields, f.Field)
	}
	assert.Contains(t, fields, "birth_year")
	assert.Contains(t, fields, "gender")
	assert.Contains(t, fields, "gross_monthly")
}

func TestSimulate_IntegrityFailureIsServerError(t *testing.T) {
	// GIVEN: A bundle whose annual index is not a number
	p := demo.New()
	p.Annual = nanAnnual{}
	_, router := newRouter(t, p)

	// WHEN: Simulating
	rec := do(t, router, http.MethodPost, "/api/simulate", referenceBody)

	// THEN: The calculation aborts with a 500
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "numeric_integrity", decode[api.ErrorResponse](t, rec).Code)
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenarios_EveryPresetRuns(t *testing.T) {
	_, router := newRouter(t, demo.New())

	rec := do(t, router, http.MethodGet, "/api/scenarios", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]api.ScenarioDTO](t, rec)
	require.NotEmpty(t, list)

	for _, s := range list {
		t.Run(s.ID, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/scenarios/"+s.ID+"/run", "")
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		})
	}
}

func TestScenarios_StudentPaysNoContributions(t *testing.T) {
	_, router := newRouter(t, demo.New())

	rec := do(t, router, http.MethodPost, "/api/scenarios/student-civil-law/run", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[simulateResponse](t, rec).Result.MonthlyNominal.IsZero())
}

func TestScenarios_Unknown(t *testing.T) {
	_, router := newRouter(t, demo.New())

	rec := do(t, router, http.MethodPost, "/api/scenarios/lottery-winner/run", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "scenario_not_found", decode[api.ErrorResponse](t, rec).Code)
}

// =============================================================================
// OPERATIONS
// =============================================================================

func TestAssumptions_ReportActiveBundle(t *testing.T) {
	_, router := newRouter(t, demo.New())

	rec := do(t, router, http.MethodGet, "/api/assumptions", "")

	require.Equal(t, http.StatusOK, rec.Code)
	a := decode[engine.Assumptions](t, rec)
	assert.Equal(t, "demo", a.ProviderKind)
	assert.Equal(t, "demo-annual-v1", a.AnnualIndexSet)
	assert.Equal(t, engine.EngineVersion, a.EngineVersion)
}

func TestHealth(t *testing.T) {
	_, router := newRouter(t, demo.New())

	rec := do(t, router, http.MethodGet, "/healthz", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, api.HealthResponse{Status: "ok", ProviderKind: "demo", EngineVersion: engine.EngineVersion},
		decode[api.HealthResponse](t, rec))
}

func TestMetrics_CountOutcomes(t *testing.T) {
	_, router := newRouter(t, demo.New())

	do(t, router, http.MethodPost, "/api/simulate", referenceBody)
	do(t, router, http.MethodPost, "/api/simulate", `{`)

	rec := do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `simulator_simulations_total{outcome="ok"} 1`)
	assert.Contains(t, body, `simulator_simulations_total{outcome="bad_request"} 1`)
	assert.Contains(t, body, "simulator_simulation_duration_seconds_count 1")
}

func TestCORS_Preflight(t *testing.T) {
	_, router := newRouter(t, demo.New())

	req := httptest.NewRequest(http.MethodOptions, "/api/simulate", nil)
	req.Header.Set("Origin", "https://calculator.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

// =============================================================================
// TABLE RELOADS
// =============================================================================

func TestTableReloader_SwapsEngine(t *testing.T) {
	// GIVEN: A server on the demo bundle and a stored table snapshot
	h, router := newRouter(t, demo.New())
	tables, err := table.Snapshot(demo.New(), 2000, 2070)
	require.NoError(t, err)
	reloader := api.NewTableReloader(table.NewMemory(tables), h, time.Minute)

	// WHEN: Reloading
	require.NoError(t, reloader.Reload(context.Background()))

	// THEN: Calculations use the table bundle
	rec := do(t, router, http.MethodGet, "/api/assumptions", "")
	assert.Equal(t, "table", decode[engine.Assumptions](t, rec).ProviderKind)

	rec = do(t, router, http.MethodGet, "/metrics", "")
	assert.Contains(t, rec.Body.String(), `simulator_table_reloads_total{result="ok"} 1`)
}

func TestTableReloader_FailureKeepsPreviousEngine(t *testing.T) {
	h, _ := newRouter(t, demo.New())
	before := h.Engine()

	err := api.NewTableReloader(table.NewMemory(nil), h, time.Minute).Reload(context.Background())

	assert.ErrorIs(t, err, table.ErrNoTables)
	assert.Same(t, before, h.Engine())
}

func TestTableReloader_StartStop(t *testing.T) {
	h, _ := newRouter(t, demo.New())
	tables, err := table.Snapshot(demo.New(), 2000, 2070)
	require.NoError(t, err)

	reloader := api.NewTableReloader(table.NewMemory(tables), h, 10*time.Millisecond)
	reloader.Start()
	defer reloader.Stop()

	assert.Eventually(t, func() bool {
		return h.Engine().Assumptions().ProviderKind == "table"
	}, 2*time.Second, 10*time.Millisecond)
}
