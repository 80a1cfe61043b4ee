package strategy

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resilink/disruption-engine/internal/config"
	"github.com/resilink/disruption-engine/internal/domain"
)

func newTestOptimizer(topN int) *Optimizer {
	return NewOptimizer(
		config.OptimizerConfig{TopStrategies: topN},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func optScenario(dt domain.DisruptionType) *domain.Scenario {
	return &domain.Scenario{
		ID:   "scn-1",
		Type: dt,
		Parameters: domain.ScenarioParameters{
			Severity:      domain.SeverityHigh,
			DurationHours: 48,
		},
	}
}

func optImpacts() *domain.ImpactAnalysis {
	return &domain.ImpactAnalysis{
		CostImpact:         400000,
		DeliveryTimeImpact: 96,
		InventoryImpact:    9000,
		Sustainability: &domain.SustainabilityImpact{
			CarbonFootprintKg:   4000,
			SustainabilityScore: 96,
		},
	}
}

func TestOptimize(t *testing.T) {
	o := newTestOptimizer(3)

	result, err := o.Optimize(context.Background(), optScenario(domain.SupplierFailure), optImpacts(), nil)
	require.NoError(t, err)
	require.Len(t, result.Strategies, 3)

	t.Run("scores descend", func(t *testing.T) {
		for i := 1; i < len(result.Strategies); i++ {
			assert.GreaterOrEqual(t,
				result.Strategies[i-1].CompositeScore,
				result.Strategies[i].CompositeScore)
		}
	})

	t.Run("candidates are populated", func(t *testing.T) {
		for _, s := range result.Strategies {
			assert.NotEmpty(t, s.ID)
			assert.NotEmpty(t, s.Name)
			assert.NotEmpty(t, s.Description)
			assert.Greater(t, s.CostImpact, 0.0)
			assert.GreaterOrEqual(t, s.RiskReduction, 0.1)
			assert.LessOrEqual(t, s.RiskReduction, 1.0)
			assert.Greater(t, s.ImplementationTime, 0.0)
			assert.NotEmpty(t, s.TradeOffs)
		}
	})

	t.Run("metric triples are distinct", func(t *testing.T) {
		type triple struct{ c, r, s float64 }
		seen := make(map[triple]bool)
		for _, s := range result.Strategies {
			key := triple{s.CostImpact, s.RiskReduction, s.SustainabilityImpact}
			assert.False(t, seen[key], "duplicate metrics for %s", s.Name)
			seen[key] = true
		}
	})

	t.Run("tradeoff planes cover every ranked strategy", func(t *testing.T) {
		assert.Len(t, result.TradeOffs.CostVsRisk, 3)
		assert.Len(t, result.TradeOffs.CostVsSustainability, 3)
		assert.Len(t, result.TradeOffs.RiskVsSustainability, 3)
		for i, p := range result.TradeOffs.CostVsRisk {
			assert.Equal(t, result.Strategies[i].ID, p.StrategyID)
			require.NotNil(t, p.Cost)
			require.NotNil(t, p.Risk)
			assert.Nil(t, p.Sustainability)
			assert.Equal(t, result.Strategies[i].CostImpact, *p.Cost)
		}
	})
}

func TestOptimizeValidation(t *testing.T) {
	o := newTestOptimizer(3)

	_, err := o.Optimize(context.Background(), nil, optImpacts(), nil)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	_, err = o.Optimize(context.Background(), optScenario(domain.SupplierFailure), nil, nil)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestPreferencesChangeRanking(t *testing.T) {
	o := newTestOptimizer(5)
	scn := optScenario(domain.SupplierFailure)
	impacts := optImpacts()

	costFirst, err := o.Optimize(context.Background(), scn, impacts, &domain.UserPreferences{PrioritizeCost: true})
	require.NoError(t, err)
	riskFirst, err := o.Optimize(context.Background(), scn, impacts, &domain.UserPreferences{PrioritizeRisk: true})
	require.NoError(t, err)

	names := func(r *Result) []string {
		out := make([]string, len(r.Strategies))
		for i, s := range r.Strategies {
			out[i] = s.Name
		}
		return out
	}
	assert.NotEqual(t, names(costFirst), names(riskFirst))

	// Prioritizing cost must surface the cheapest candidate on top.
	cheapest := costFirst.Strategies[0].CostImpact
	for _, s := range costFirst.Strategies[1:] {
		assert.LessOrEqual(t, cheapest, s.CostImpact)
	}

	// Prioritizing risk must surface the strongest risk reduction on top.
	best := riskFirst.Strategies[0].RiskReduction
	for _, s := range riskFirst.Strategies[1:] {
		assert.GreaterOrEqual(t, best, s.RiskReduction)
	}
}

func TestUnknownTypeFallsBackToCatalog(t *testing.T) {
	o := newTestOptimizer(3)
	result, err := o.Optimize(context.Background(), optScenario(domain.DisruptionType("SOLAR_FLARE")), optImpacts(), nil)
	require.NoError(t, err)
	assert.Len(t, result.Strategies, 3)
}

func TestTopNCapping(t *testing.T) {
	t.Run("larger than catalog returns all", func(t *testing.T) {
		o := newTestOptimizer(50)
		result, err := o.Optimize(context.Background(), optScenario(domain.CyberAttack), optImpacts(), nil)
		require.NoError(t, err)
		assert.Len(t, result.Strategies, len(Catalog[domain.CyberAttack]))
	})

	t.Run("zero returns all", func(t *testing.T) {
		o := newTestOptimizer(0)
		result, err := o.Optimize(context.Background(), optScenario(domain.CyberAttack), optImpacts(), nil)
		require.NoError(t, err)
		assert.Len(t, result.Strategies, len(Catalog[domain.CyberAttack]))
	})
}

func TestNormalize(t *testing.T) {
	t.Run("min-max scaling", func(t *testing.T) {
		out := normalize([]float64{10, 20, 30}, false)
		assert.InDelta(t, 0.0, out[0], 1e-9)
		assert.InDelta(t, 0.5, out[1], 1e-9)
		assert.InDelta(t, 1.0, out[2], 1e-9)
	})

	t.Run("inversion flips preference", func(t *testing.T) {
		out := normalize([]float64{10, 20, 30}, true)
		assert.InDelta(t, 1.0, out[0], 1e-9)
		assert.InDelta(t, 0.0, out[2], 1e-9)
	})

	t.Run("degenerate spread maps to neutral", func(t *testing.T) {
		out := normalize([]float64{7, 7, 7}, true)
		for _, v := range out {
			assert.Equal(t, 0.5, v)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, normalize(nil, false))
	})
}

func TestWeights(t *testing.T) {
	tests := []struct {
		name             string
		prefs            *domain.UserPreferences
		cost, risk, sust float64
	}{
		{"nil preferences are uniform", nil, 1.0 / 3, 1.0 / 3, 1.0 / 3},
		{"no priorities are uniform", &domain.UserPreferences{}, 1.0 / 3, 1.0 / 3, 1.0 / 3},
		{"single priority dominates", &domain.UserPreferences{PrioritizeCost: true}, 0.6, 0.2, 0.2},
		{"two priorities split", &domain.UserPreferences{PrioritizeCost: true, PrioritizeRisk: true}, 0.6 / 1.4, 0.6 / 1.4, 0.2 / 1.4},
		{"all priorities are uniform", &domain.UserPreferences{PrioritizeCost: true, PrioritizeRisk: true, PrioritizeSustainability: true}, 1.0 / 3, 1.0 / 3, 1.0 / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, r, s := weights(tt.prefs)
			assert.InDelta(t, tt.cost, c, 1e-9)
			assert.InDelta(t, tt.risk, r, 1e-9)
			assert.InDelta(t, tt.sust, s, 1e-9)
			assert.InDelta(t, 1.0, c+r+s, 1e-9)
		})
	}
}

func TestCatalogCoversAllTypes(t *testing.T) {
	for _, dt := range domain.DisruptionTypes {
		templates := templatesFor(dt)
		require.NotEmpty(t, templates, "no templates for %s", dt)
		for _, tpl := range templates {
			assert.NotEmpty(t, tpl.Name)
			assert.Greater(t, tpl.CostMultiplier, 0.0)
			assert.Greater(t, tpl.RiskReductionMultiplier, 0.0)
			assert.Greater(t, tpl.SustainabilityMultiplier, 0.0)
			assert.Greater(t, tpl.ImplementationTimeMultiplier, 0.0)
		}
	}
}
