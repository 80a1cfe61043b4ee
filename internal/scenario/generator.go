// Package scenario materializes disruption scenarios from request parameters,
// optionally enriched by the external narrative service.
package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/resilink/disruption-engine/internal/domain"
	"github.com/resilink/disruption-engine/internal/narrative"
)

// GenerationMethod records how a scenario's narrative content was produced.
type GenerationMethod string

const (
	MethodEnriched GenerationMethod = "llm_enriched"
	MethodTemplate GenerationMethod = "rule_based_template"
)

// Request carries the parameters of a scenario generation call.
type Request struct {
	Type             domain.DisruptionType  `json:"type"`
	Location         domain.Location        `json:"location"`
	Severity         domain.Severity        `json:"severity"`
	DurationHours    float64                `json:"duration_hours"`
	AffectedNodes    []string               `json:"affected_nodes"`
	UserID           string                 `json:"user_id"`
	IsPublic         bool                   `json:"is_public"`
	CustomParameters map[string]interface{} `json:"custom_parameters,omitempty"`
}

// Validate checks the request against the generation contract. The first
// offending field is reported as a validation error.
func (r *Request) Validate() error {
	if !r.Type.Valid() {
		return domain.NewValidationError("type", fmt.Sprintf("unknown disruption type %q", r.Type))
	}
	if !r.Severity.Valid() {
		return domain.NewValidationError("severity", fmt.Sprintf("unknown severity %q", r.Severity))
	}
	if r.Location.Latitude < -90 || r.Location.Latitude > 90 {
		return domain.NewValidationError("location.latitude", "must be between -90 and 90")
	}
	if r.Location.Longitude < -180 || r.Location.Longitude > 180 {
		return domain.NewValidationError("location.longitude", "must be between -180 and 180")
	}
	if r.DurationHours <= 0 {
		return domain.NewValidationError("duration_hours", "must be greater than zero")
	}
	if strings.TrimSpace(r.UserID) == "" {
		return domain.NewValidationError("user_id", "is required")
	}
	return nil
}

// Generator builds scenarios. Safe for concurrent use.
type Generator struct {
	logger    *slog.Logger
	narrative narrative.Generator

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand injects a seeded random source so tests can pin variation
// behavior.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		g.rng = rng
	}
}

// NewGenerator creates a scenario generator. The narrative generator may be
// a failing implementation; generation then degrades to the rule-based
// template.
func NewGenerator(logger *slog.Logger, n narrative.Generator, opts ...Option) *Generator {
	g := &Generator{
		logger:    logger,
		narrative: n,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate validates the request, materializes a scenario, and attempts
// narrative enrichment. Enrichment failure is never an error: the scenario
// falls back to a deterministic template description.
func (g *Generator) Generate(ctx context.Context, req Request) (*domain.Scenario, GenerationMethod, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	affected := req.AffectedNodes
	if affected == nil {
		affected = []string{}
	}

	custom := make(map[string]interface{}, len(req.CustomParameters)+4)
	for k, v := range req.CustomParameters {
		custom[k] = v
	}

	method := g.enrich(ctx, req, custom)

	scenario := &domain.Scenario{
		ID:   uuid.New().String(),
		Type: req.Type,
		Parameters: domain.ScenarioParameters{
			Location:         req.Location,
			Severity:         req.Severity,
			DurationHours:    req.DurationHours,
			AffectedNodes:    affected,
			CustomParameters: custom,
		},
		CreatedBy: req.UserID,
		IsPublic:  req.IsPublic,
		CreatedAt: time.Now().UTC(),
	}

	return scenario, method, nil
}

// enrichment is the JSON payload expected back from the narrative service.
type enrichment struct {
	Description         string   `json:"description"`
	RiskFactors         []string `json:"risk_factors"`
	Timeline            string   `json:"timeline"`
	DecisionPoints      []string `json:"decision_points"`
	EstimatedCostImpact float64  `json:"estimated_cost_impact"`
	Probability         float64  `json:"probability"`
}

// enrich merges service-provided narrative fields into custom, degrading to
// the template when the call fails or the payload is unusable.
func (g *Generator) enrich(ctx context.Context, req Request, custom map[string]interface{}) GenerationMethod {
	text, err := g.narrative.Generate(ctx, buildPrompt(req))
	if err == nil {
		if raw, ok := narrative.ExtractJSON(text); ok {
			var e enrichment
			if jsonErr := json.Unmarshal([]byte(raw), &e); jsonErr == nil && e.Description != "" {
				custom["description"] = e.Description
				if len(e.RiskFactors) > 0 {
					custom["risk_factors"] = e.RiskFactors
				}
				if e.Timeline != "" {
					custom["timeline"] = e.Timeline
				}
				if len(e.DecisionPoints) > 0 {
					custom["decision_points"] = e.DecisionPoints
				}
				if e.EstimatedCostImpact > 0 {
					custom["estimated_cost_impact"] = e.EstimatedCostImpact
				}
				if e.Probability > 0 {
					custom["probability"] = e.Probability
				}
				return MethodEnriched
			}
		}
		err = domain.NewUpstreamError("narrative response contained no usable enrichment", nil)
	}

	g.logger.Warn("Narrative enrichment unavailable, using template fallback", "type", req.Type, "error", err)
	custom["description"] = templateDescription(req)
	custom["risk_factors"] = defaultRiskFactors(req.Type)
	return MethodTemplate
}

// buildPrompt produces the structured enrichment prompt.
func buildPrompt(req Request) string {
	place := req.Location.City
	if req.Location.Country != "" {
		place = strings.TrimPrefix(place+", "+req.Location.Country, ", ")
	}
	return fmt.Sprintf(
		`You are a supply-chain risk analyst. Describe a %s disruption of %s severity near %s (lat %.4f, lon %.4f) lasting %.0f hours and affecting %d facilities.
Respond with a single JSON object with keys: description (string), risk_factors (array of strings), timeline (string), decision_points (array of strings), estimated_cost_impact (number, USD), probability (number in [0,1]).`,
		req.Type, req.Severity, place,
		req.Location.Latitude, req.Location.Longitude,
		req.DurationHours, len(req.AffectedNodes),
	)
}

// templateDescription synthesizes a one-line description when enrichment is
// unavailable.
func templateDescription(req Request) string {
	place := req.Location.City
	if place == "" {
		place = fmt.Sprintf("(%.2f, %.2f)", req.Location.Latitude, req.Location.Longitude)
	}
	if req.Location.Country != "" {
		place += ", " + req.Location.Country
	}
	return fmt.Sprintf("A %s severity %s disruption near %s lasting %.0f hours, affecting %d facilities.",
		req.Severity, strings.ToLower(strings.ReplaceAll(string(req.Type), "_", " ")),
		place, req.DurationHours, len(req.AffectedNodes))
}

// defaultRiskFactors returns the template risk factors per disruption type.
func defaultRiskFactors(t domain.DisruptionType) []string {
	switch t {
	case domain.NaturalDisaster:
		return []string{"infrastructure damage", "road and port closures", "extended recovery time"}
	case domain.SupplierFailure:
		return []string{"single-source dependency", "contract penalties", "qualification lead time for alternates"}
	case domain.TransportationDelay:
		return []string{"carrier capacity shortage", "customs backlog", "reroute cost premium"}
	case domain.DemandSpike:
		return []string{"stockout exposure", "expedited freight cost", "allocation conflicts"}
	case domain.QualityIssue:
		return []string{"recall exposure", "inspection backlog", "brand damage"}
	case domain.Geopolitical:
		return []string{"export restrictions", "tariff changes", "sanctions exposure"}
	case domain.CyberAttack:
		return []string{"system downtime", "data integrity loss", "manual process fallback"}
	case domain.LaborShortage:
		return []string{"reduced throughput", "overtime cost", "training lead time"}
	default:
		return []string{"operational uncertainty"}
	}
}
