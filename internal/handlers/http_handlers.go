// Package handlers exposes the three-stage analysis pipeline over HTTP.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/resilink/disruption-engine/internal/config"
	"github.com/resilink/disruption-engine/internal/domain"
	"github.com/resilink/disruption-engine/internal/metrics"
	"github.com/resilink/disruption-engine/internal/scenario"
	"github.com/resilink/disruption-engine/internal/simulation"
	"github.com/resilink/disruption-engine/internal/strategy"
)

const (
	serviceName        = "disruption-engine"
	optimizationMethod = "weighted_normalized_ranking"
	maxVariationCount  = 10
)

// HTTPHandler handles HTTP requests for the disruption engine.
type HTTPHandler struct {
	config        config.Config
	logger        *slog.Logger
	scenarioStore ScenarioStore
	scenarioRead  ScenarioReader
	facilityStore FacilityStore
	generator     *scenario.Generator
	simulator     *simulation.Simulator
	optimizer     *strategy.Optimizer
	metrics       *metrics.Collector
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(
	cfg config.Config,
	logger *slog.Logger,
	scenarioStore ScenarioStore,
	scenarioRead ScenarioReader,
	facilityStore FacilityStore,
	generator *scenario.Generator,
	simulator *simulation.Simulator,
	optimizer *strategy.Optimizer,
	collector *metrics.Collector,
) *HTTPHandler {
	return &HTTPHandler{
		config:        cfg,
		logger:        logger,
		scenarioStore: scenarioStore,
		scenarioRead:  scenarioRead,
		facilityStore: facilityStore,
		generator:     generator,
		simulator:     simulator,
		optimizer:     optimizer,
		metrics:       collector,
	}
}

// RegisterRoutes registers HTTP routes.
func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.handleHealth).Methods("GET")
	router.HandleFunc("/status", h.handleStatus).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/scenarios", h.handleGenerateScenario).Methods("POST")
	api.HandleFunc("/scenarios", h.handleListScenarios).Methods("GET")
	api.HandleFunc("/scenarios/{id}", h.handleGetScenario).Methods("GET")
	api.HandleFunc("/scenarios/{id}", h.handleDeleteScenario).Methods("DELETE")

	api.HandleFunc("/simulations", h.handleSimulate).Methods("POST")
	api.HandleFunc("/optimizations", h.handleOptimize).Methods("POST")

	api.HandleFunc("/facilities", h.handleCreateFacility).Methods("POST")
	api.HandleFunc("/facilities", h.handleListFacilities).Methods("GET")
	api.HandleFunc("/facilities/{id}", h.handleGetFacility).Methods("GET")
	api.HandleFunc("/facilities/{id}/utilization", h.handleUpdateUtilization).Methods("PUT")
}

// Health and status handlers

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   serviceName,
		"timestamp": time.Now().UTC(),
	})
}

func (h *HTTPHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":     serviceName,
		"status":      "running",
		"environment": h.config.Environment,
		"timestamp":   time.Now().UTC(),
	})
}

// Scenario handlers

func (h *HTTPHandler) handleGenerateScenario(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req generateScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.NewValidationError("body", "invalid JSON payload"))
		return
	}

	genReq := toGeneratorRequest(&req)
	s, method, err := h.generator.Generate(r.Context(), genReq)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.scenarioStore.Create(r.Context(), s); err != nil {
		h.writeError(w, r, domain.NewInternalError("failed to persist scenario", err))
		return
	}
	h.metrics.RecordScenario(string(s.Type), string(method))

	resp := generateScenarioResponse{
		Scenario: s,
		Metadata: Metadata{
			CorrelationID:    CorrelationID(r.Context()),
			GenerationMethod: string(method),
		},
	}

	if req.GenerateVariations {
		count := req.VariationCount
		if count <= 0 {
			count = 3
		}
		if count > maxVariationCount {
			count = maxVariationCount
		}

		for _, v := range h.generator.GenerateVariations(r.Context(), genReq, count) {
			if err := h.scenarioStore.Create(r.Context(), v.Scenario); err != nil {
				h.logger.Warn("Failed to persist scenario variation",
					"scenario_id", v.Scenario.ID, "error", err)
				h.metrics.RecordVariationSkipped()
				continue
			}
			h.metrics.RecordScenario(string(v.Scenario.Type), string(v.Method))
			resp.Variations = append(resp.Variations, v.Scenario)
		}
	}

	resp.Metadata.ExecutionTimeMS = time.Since(start).Milliseconds()
	h.writeJSON(w, http.StatusCreated, resp)
}

func (h *HTTPHandler) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s, err := h.scenarioRead.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, s)
}

func (h *HTTPHandler) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	createdBy := r.URL.Query().Get("user_id")
	includePublic := r.URL.Query().Get("include_public") != "false"
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	scenarios, err := h.scenarioStore.List(r.Context(), createdBy, includePublic, limit, offset)
	if err != nil {
		h.writeError(w, r, domain.NewInternalError("failed to list scenarios", err))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"scenarios": scenarios,
		"count":     len(scenarios),
		"limit":     limit,
		"offset":    offset,
	})
}

func (h *HTTPHandler) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.scenarioStore.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Simulation handler

func (h *HTTPHandler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.NewValidationError("body", "invalid JSON payload"))
		return
	}
	if req.ScenarioID == "" {
		h.writeError(w, r, domain.NewValidationError("scenario_id", "is required"))
		return
	}

	s, err := h.scenarioRead.GetByID(r.Context(), req.ScenarioID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	facilities, err := h.facilityStore.GetByIDs(r.Context(), s.Parameters.AffectedNodes)
	if err != nil {
		h.writeError(w, r, domain.NewInternalError("failed to load facility snapshots", err))
		return
	}

	result, err := h.simulator.Simulate(r.Context(), s, facilities, req.SimulationIterations, req.IncludeSustainability)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.metrics.RecordSimulation(result.Iterations, time.Since(start))

	h.writeJSON(w, http.StatusOK, simulateResponse{
		ScenarioID:             s.ID,
		Impacts:                result.Impacts,
		DecisionTree:           result.Tree,
		NaturalLanguageSummary: result.Summary,
		Confidence:             result.Confidence,
		Metadata: Metadata{
			CorrelationID:        CorrelationID(r.Context()),
			ExecutionTimeMS:      time.Since(start).Milliseconds(),
			SimulationIterations: result.Iterations,
		},
	})
}

// Optimization handler

func (h *HTTPHandler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.NewValidationError("body", "invalid JSON payload"))
		return
	}
	if req.ScenarioID == "" {
		h.writeError(w, r, domain.NewValidationError("scenario_id", "is required"))
		return
	}
	if req.Impacts == nil {
		h.writeError(w, r, domain.NewValidationError("impacts", "is required"))
		return
	}

	s, err := h.scenarioRead.GetByID(r.Context(), req.ScenarioID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.optimizer.Optimize(r.Context(), s, req.Impacts, req.UserPreferences)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.metrics.RecordOptimization()

	h.writeJSON(w, http.StatusOK, optimizeResponse{
		Strategies:            result.Strategies,
		TradeoffVisualization: result.TradeOffs,
		Metadata: Metadata{
			CorrelationID:      CorrelationID(r.Context()),
			ExecutionTimeMS:    time.Since(start).Milliseconds(),
			OptimizationMethod: optimizationMethod,
		},
	})
}

// Facility handlers

func (h *HTTPHandler) handleCreateFacility(w http.ResponseWriter, r *http.Request) {
	var f domain.Facility
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		h.writeError(w, r, domain.NewValidationError("body", "invalid JSON payload"))
		return
	}
	if f.Capacity <= 0 {
		h.writeError(w, r, domain.NewValidationError("capacity", "must be greater than zero"))
		return
	}
	if f.UtilizationRate < 0 || f.UtilizationRate > 1 {
		h.writeError(w, r, domain.NewValidationError("utilization_rate", "must be between 0 and 1"))
		return
	}
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	f.UpdatedAt = time.Now().UTC()

	if err := h.facilityStore.Create(r.Context(), &f); err != nil {
		h.writeError(w, r, domain.NewInternalError("failed to persist facility", err))
		return
	}
	h.writeJSON(w, http.StatusCreated, f)
}

func (h *HTTPHandler) handleGetFacility(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	f, err := h.facilityStore.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, f)
}

func (h *HTTPHandler) handleListFacilities(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	facilities, err := h.facilityStore.List(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, r, domain.NewInternalError("failed to list facilities", err))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"facilities": facilities,
		"count":      len(facilities),
		"limit":      limit,
		"offset":     offset,
	})
}

func (h *HTTPHandler) handleUpdateUtilization(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req updateUtilizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.NewValidationError("body", "invalid JSON payload"))
		return
	}

	if err := h.facilityStore.UpdateUtilization(r.Context(), id, req.UtilizationRate); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Helpers

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", "error", err)
	}
}

// writeError maps the error taxonomy to HTTP statuses. Internal details are
// logged against the correlation id, never returned to the caller.
func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	correlationID := CorrelationID(r.Context())
	code := domain.CodeOf(err)

	status := http.StatusInternalServerError
	message := err.Error()
	switch code {
	case domain.CodeValidation:
		status = http.StatusBadRequest
	case domain.CodeNotFound:
		status = http.StatusNotFound
	case domain.CodeUpstreamUnavailable:
		status = http.StatusBadGateway
	default:
		message = "internal error"
		h.logger.Error("Request failed",
			"correlation_id", correlationID,
			"path", r.URL.Path,
			"error", err)
	}

	h.writeJSON(w, status, map[string]interface{}{
		"error":          message,
		"code":           code,
		"correlation_id": correlationID,
		"timestamp":      time.Now().UTC(),
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}
