package strategy

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/resilink/disruption-engine/internal/config"
	"github.com/resilink/disruption-engine/internal/domain"
)

// Ranking weights: every dimension starts neutral; explicitly prioritized
// dimensions are boosted, then the triple is renormalized to sum to one.
const (
	neutralWeight     = 0.2
	prioritizedWeight = 0.6
)

// Ranked is a mitigation strategy with its composite score attached.
type Ranked struct {
	domain.MitigationStrategy
	CompositeScore float64 `json:"composite_score"`
}

// TradeOffPoint is one candidate projected onto a two-metric plane for
// client-side scatter visualization.
type TradeOffPoint struct {
	Cost           *float64 `json:"cost,omitempty"`
	Risk           *float64 `json:"risk,omitempty"`
	Sustainability *float64 `json:"sustainability,omitempty"`
	StrategyID     string   `json:"strategy_id"`
}

// TradeOffs are the pairwise projections of the ranked strategies.
type TradeOffs struct {
	CostVsRisk           []TradeOffPoint `json:"cost_vs_risk"`
	CostVsSustainability []TradeOffPoint `json:"cost_vs_sustainability"`
	RiskVsSustainability []TradeOffPoint `json:"risk_vs_sustainability"`
}

// Result is the output of one optimization request.
type Result struct {
	Strategies []Ranked  `json:"strategies"`
	TradeOffs  TradeOffs `json:"tradeoff_visualization"`
}

// Optimizer instantiates, scores, and ranks mitigation strategies.
// Stateless; safe for concurrent use.
type Optimizer struct {
	cfg    config.OptimizerConfig
	logger *slog.Logger
}

// NewOptimizer creates a strategy optimizer.
func NewOptimizer(cfg config.OptimizerConfig, logger *slog.Logger) *Optimizer {
	return &Optimizer{cfg: cfg, logger: logger}
}

// Optimize generates candidates from the type's template catalog, scores
// them under the given preferences, and returns the configured top subset
// with pairwise trade-off data.
func (o *Optimizer) Optimize(ctx context.Context, scenario *domain.Scenario, impacts *domain.ImpactAnalysis, prefs *domain.UserPreferences) (*Result, error) {
	if scenario == nil {
		return nil, domain.NewValidationError("scenario", "is required")
	}
	if impacts == nil {
		return nil, domain.NewValidationError("impacts", "is required")
	}

	start := time.Now()
	candidates := o.instantiate(scenario, impacts)
	scores := o.score(candidates, prefs)

	// Stable sort keeps original template order on ties.
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	topN := o.cfg.TopStrategies
	if topN <= 0 || topN > len(order) {
		topN = len(order)
	}

	ranked := make([]Ranked, 0, topN)
	for _, idx := range order[:topN] {
		ranked = append(ranked, Ranked{
			MitigationStrategy: candidates[idx],
			CompositeScore:     scores[idx],
		})
	}

	o.logger.Info("Strategy optimization complete",
		"scenario_id", scenario.ID,
		"candidates", len(candidates),
		"returned", len(ranked),
		"duration", time.Since(start))

	return &Result{
		Strategies: ranked,
		TradeOffs:  buildTradeOffs(ranked),
	}, nil
}

// instantiate builds one candidate per template. The index-keyed
// perturbation guarantees that no two candidates share an identical
// (cost, risk, sustainability) triple, which preference-based ranking
// depends on.
func (o *Optimizer) instantiate(scenario *domain.Scenario, impacts *domain.ImpactAnalysis) []domain.MitigationStrategy {
	sev := scenario.Parameters.Severity.Factor()
	footprint := 0.0
	if impacts.Sustainability != nil {
		footprint = impacts.Sustainability.CarbonFootprintKg
	}

	templates := templatesFor(scenario.Type)
	candidates := make([]domain.MitigationStrategy, 0, len(templates))
	for i, t := range templates {
		signed := float64(i)
		if i%2 != 0 {
			signed = -signed
		}

		candidates = append(candidates, domain.MitigationStrategy{
			ID:          uuid.New().String(),
			Name:        t.Name,
			Description: t.Description,
			CostImpact:  impacts.CostImpact * t.CostMultiplier * sev * (1 + float64(i)*0.15),
			RiskReduction: clamp(
				t.RiskReductionMultiplier*(1-float64(i)*0.08), 0.1, 1.0),
			SustainabilityImpact: footprint * t.SustainabilityMultiplier * sev *
				math.Abs(1+signed*0.12),
			ImplementationTime: impacts.DeliveryTimeImpact * t.ImplementationTimeMultiplier * sev,
			TradeOffs:          t.TradeOffs,
		})
	}
	return candidates
}

// score normalizes every candidate metric to [0,1] and combines them under
// the preference-derived weights.
func (o *Optimizer) score(candidates []domain.MitigationStrategy, prefs *domain.UserPreferences) []float64 {
	costs := make([]float64, len(candidates))
	risks := make([]float64, len(candidates))
	sust := make([]float64, len(candidates))
	for i, c := range candidates {
		costs[i] = c.CostImpact
		risks[i] = c.RiskReduction
		sust[i] = c.SustainabilityImpact
	}

	normCost := normalize(costs, true)  // lower cost is better
	normRisk := normalize(risks, false) // higher risk reduction is better
	normSust := normalize(sust, true)   // lower sustainability impact is better

	wCost, wRisk, wSust := weights(prefs)

	scores := make([]float64, len(candidates))
	for i := range candidates {
		scores[i] = wCost*normCost[i] + wRisk*normRisk[i] + wSust*normSust[i]
	}
	return scores
}

// normalize min-max scales values into [0,1], inverting when lower raw
// values are preferable. A degenerate spread maps every candidate to a
// neutral 0.5 so no candidate is spuriously favored.
func normalize(values []float64, invert bool) []float64 {
	if len(values) == 0 {
		return nil
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	out := make([]float64, len(values))
	if max == min {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}
	for i, v := range values {
		n := (v - min) / (max - min)
		if invert {
			n = 1 - n
		}
		out[i] = n
	}
	return out
}

// weights derives the (cost, risk, sustainability) weight triple from user
// preferences, renormalized to sum to one.
func weights(prefs *domain.UserPreferences) (float64, float64, float64) {
	wCost, wRisk, wSust := neutralWeight, neutralWeight, neutralWeight
	if prefs != nil {
		if prefs.PrioritizeCost {
			wCost = prioritizedWeight
		}
		if prefs.PrioritizeRisk {
			wRisk = prioritizedWeight
		}
		if prefs.PrioritizeSustainability {
			wSust = prioritizedWeight
		}
	}
	total := wCost + wRisk + wSust
	return wCost / total, wRisk / total, wSust / total
}

// buildTradeOffs projects the ranked candidates onto the three metric pairs.
func buildTradeOffs(ranked []Ranked) TradeOffs {
	t := TradeOffs{
		CostVsRisk:           make([]TradeOffPoint, 0, len(ranked)),
		CostVsSustainability: make([]TradeOffPoint, 0, len(ranked)),
		RiskVsSustainability: make([]TradeOffPoint, 0, len(ranked)),
	}
	for _, r := range ranked {
		cost, risk, sust := r.CostImpact, r.RiskReduction, r.SustainabilityImpact
		t.CostVsRisk = append(t.CostVsRisk, TradeOffPoint{
			Cost: &cost, Risk: &risk, StrategyID: r.ID,
		})
		t.CostVsSustainability = append(t.CostVsSustainability, TradeOffPoint{
			Cost: &cost, Sustainability: &sust, StrategyID: r.ID,
		})
		t.RiskVsSustainability = append(t.RiskVsSustainability, TradeOffPoint{
			Risk: &risk, Sustainability: &sust, StrategyID: r.ID,
		})
	}
	return t
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
