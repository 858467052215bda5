/*
handlers.go - HTTP API handlers for the pension simulator

PURPOSE:
  Exposes the calculation engine via a small REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the engine.

ENDPOINTS:
  POST   /api/simulate               Run one calculation
  GET    /api/assumptions            Source identifiers of the active bundle
  GET    /api/scenarios              List preset scenarios
  POST   /api/scenarios/{id}/run     Run a preset scenario
  GET    /healthz                    Liveness and active bundle kind
  GET    /metrics                    Prometheus metrics

ARCHITECTURE:
  Handler struct holds all dependencies:
  - engine: the active Engine, swapped atomically by the table reloader
  - Logger: zap logger for request-scoped events
  - Metrics: Prometheus collectors

ERROR HANDLING:
  Errors are returned as JSON {status, code, message, fields?}:
  - 400: Malformed JSON
  - 404: Unknown scenario
  - 422: Validation, domain constraint or missing provider data
  - 500: Numeric integrity and anything unexpected

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Preset scenarios
  - server.go: Router setup and middleware
*/
package api

import (
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kamio90/zus-retirement-simulator-sub000/engine"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Logger  *zap.Logger
	Metrics *Metrics

	engine atomic.Pointer[engine.Engine]
}

// NewHandler creates a handler serving calculations from e.
func NewHandler(e *engine.Engine, logger *zap.Logger, metrics *Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	h := &Handler{Logger: logger, Metrics: metrics}
	h.engine.Store(e)
	return h
}

// Engine returns the active engine.
func (h *Handler) Engine() *engine.Engine {
	return h.engine.Load()
}

// SetEngine replaces the active engine. In-flight requests finish on the
// engine they started with.
func (h *Handler) SetEngine(e *engine.Engine) {
	h.engine.Store(e)
}

// =============================================================================
// SIMULATION HANDLERS
// =============================================================================

// Simulate runs one calculation.
// POST /api/simulate
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		h.Metrics.observeSimulation(outcomeBadRequest, 0)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Status:  http.StatusBadRequest,
			Code:    "malformed_json",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}
	h.simulate(w, r, req)
}

func (h *Handler) simulate(w http.ResponseWriter, r *http.Request, req SimulateRequest) {
	start := time.Now()
	logger := h.Logger.With(zap.String("request_id", middleware.GetReqID(r.Context())))

	in, err := req.ToInput()
	var out *engine.Output
	if err == nil {
		out, err = h.Engine().Calculate(in)
	}
	if err != nil {
		resp := errorResponse(err)
		h.Metrics.observeSimulation(outcomeOf(err), time.Since(start))
		if resp.Status >= http.StatusInternalServerError {
			logger.Error("calculation failed", zap.Error(err))
		} else {
			logger.Info("calculation rejected", zap.String("code", resp.Code), zap.Error(err))
		}
		writeJSON(w, resp.Status, resp)
		return
	}

	elapsed := time.Since(start)
	h.Metrics.observeSimulation(outcomeOK, elapsed)

	id := uuid.NewString()
	logger.Info("calculation completed",
		zap.String("calculation_id", id),
		zap.Int("retirement_year", out.Scenario.RetirementYear),
		zap.Stringer("monthly_nominal", out.MonthlyNominal),
		zap.Duration("elapsed", elapsed),
	)
	writeJSON(w, http.StatusOK, SimulateResponse{CalculationID: id, Result: out})
}

// Assumptions returns the source identifiers of the active bundle.
// GET /api/assumptions
func (h *Handler) Assumptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Engine().Assumptions())
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns the preset scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// RunScenario runs a preset scenario.
// POST /api/scenarios/{id}/run
func (h *Handler) RunScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	scenario, ok := findScenario(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Status:  http.StatusNotFound,
			Code:    "scenario_not_found",
			Message: "Unknown scenario: " + id,
		})
		return
	}
	h.simulate(w, r, scenario.Request)
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Health reports liveness.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	a := h.Engine().Assumptions()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		ProviderKind:  a.ProviderKind,
		EngineVersion: a.EngineVersion,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// errorResponse maps an error category to its HTTP status and code.
func errorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Message: err.Error()}

	var verr *engine.ValidationError
	switch {
	case errors.As(err, &verr):
		resp.Status, resp.Code = http.StatusUnprocessableEntity, "validation_failed"
		resp.Fields = verr.Fields
	case errors.Is(err, engine.ErrValidation):
		resp.Status, resp.Code = http.StatusUnprocessableEntity, "validation_failed"
	case errors.Is(err, engine.ErrDomainConstraint):
		resp.Status, resp.Code = http.StatusUnprocessableEntity, "domain_constraint"
	case engine.IsMissingData(err):
		resp.Status, resp.Code = http.StatusUnprocessableEntity, "missing_data"
	case engine.IsIntegrity(err):
		resp.Status, resp.Code = http.StatusInternalServerError, "numeric_integrity"
	default:
		resp.Status, resp.Code = http.StatusInternalServerError, "internal"
		resp.Message = "Internal error"
	}
	return resp
}

func outcomeOf(err error) string {
	switch {
	case engine.IsClientError(err):
		return outcomeClientError
	case engine.IsMissingData(err):
		return outcomeMissingData
	case engine.IsIntegrity(err):
		return outcomeIntegrity
	default:
		return outcomeInternal
	}
}
