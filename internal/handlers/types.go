package handlers

import (
	"context"

	"github.com/resilink/disruption-engine/internal/domain"
	"github.com/resilink/disruption-engine/internal/scenario"
	"github.com/resilink/disruption-engine/internal/strategy"
)

// ScenarioStore is the persistence surface the handlers write through.
type ScenarioStore interface {
	Create(ctx context.Context, s *domain.Scenario) error
	GetByID(ctx context.Context, id string) (*domain.Scenario, error)
	List(ctx context.Context, createdBy string, includePublic bool, limit, offset int) ([]*domain.Scenario, error)
	Delete(ctx context.Context, id string) error
}

// ScenarioReader is the read path, satisfied by both the repository and the
// Redis read-through cache.
type ScenarioReader interface {
	GetByID(ctx context.Context, id string) (*domain.Scenario, error)
}

// FacilityStore is the persistence surface for facility snapshots.
type FacilityStore interface {
	Create(ctx context.Context, f *domain.Facility) error
	GetByID(ctx context.Context, id string) (*domain.Facility, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Facility, error)
	List(ctx context.Context, limit, offset int) ([]domain.Facility, error)
	UpdateUtilization(ctx context.Context, id string, utilization float64) error
}

// Metadata is attached to every pipeline response for end-to-end tracing.
type Metadata struct {
	CorrelationID        string `json:"correlation_id"`
	ExecutionTimeMS      int64  `json:"execution_time_ms"`
	GenerationMethod     string `json:"generation_method,omitempty"`
	SimulationIterations int    `json:"simulation_iterations,omitempty"`
	OptimizationMethod   string `json:"optimization_method,omitempty"`
}

// generateScenarioRequest is the scenario generation payload.
type generateScenarioRequest struct {
	Type               domain.DisruptionType  `json:"type"`
	Location           domain.Location        `json:"location"`
	Severity           domain.Severity        `json:"severity"`
	Duration           float64                `json:"duration"`
	AffectedNodes      []string               `json:"affected_nodes"`
	UserID             string                 `json:"user_id"`
	IsPublic           bool                   `json:"is_public"`
	CustomParameters   map[string]interface{} `json:"custom_parameters,omitempty"`
	GenerateVariations bool                   `json:"generate_variations"`
	VariationCount     int                    `json:"variation_count"`
}

type generateScenarioResponse struct {
	Scenario   *domain.Scenario   `json:"scenario"`
	Variations []*domain.Scenario `json:"variations,omitempty"`
	Metadata   Metadata           `json:"metadata"`
}

// simulateRequest is the impact simulation payload.
type simulateRequest struct {
	ScenarioID            string `json:"scenario_id"`
	IncludeSustainability bool   `json:"include_sustainability"`
	SimulationIterations  int    `json:"simulation_iterations"`
}

type simulateResponse struct {
	ScenarioID             string                `json:"scenario_id"`
	Impacts                domain.ImpactAnalysis `json:"impacts"`
	DecisionTree           domain.DecisionTree   `json:"decision_tree"`
	NaturalLanguageSummary string                `json:"natural_language_summary"`
	Confidence             float64               `json:"confidence"`
	Metadata               Metadata              `json:"metadata"`
}

// optimizeRequest is the strategy optimization payload.
type optimizeRequest struct {
	ScenarioID      string                  `json:"scenario_id"`
	Impacts         *domain.ImpactAnalysis  `json:"impacts"`
	UserPreferences *domain.UserPreferences `json:"user_preferences,omitempty"`
}

type optimizeResponse struct {
	Strategies            []strategy.Ranked  `json:"strategies"`
	TradeoffVisualization strategy.TradeOffs `json:"tradeoff_visualization"`
	Metadata              Metadata           `json:"metadata"`
}

// updateUtilizationRequest refreshes a facility's utilization snapshot.
type updateUtilizationRequest struct {
	UtilizationRate float64 `json:"utilization_rate"`
}

func toGeneratorRequest(req *generateScenarioRequest) scenario.Request {
	return scenario.Request{
		Type:             req.Type,
		Location:         req.Location,
		Severity:         req.Severity,
		DurationHours:    req.Duration,
		AffectedNodes:    req.AffectedNodes,
		UserID:           req.UserID,
		IsPublic:         req.IsPublic,
		CustomParameters: req.CustomParameters,
	}
}
