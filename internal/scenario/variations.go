package scenario

import (
	"context"
	"math"

	"github.com/resilink/disruption-engine/internal/domain"
)

// variation strategies are applied cyclically: severity perturbation,
// duration scaling, affected-list shrinking, location jitter.
const variationStrategies = 4

// VariationResult pairs a generated variation with its narrative method.
type VariationResult struct {
	Scenario *domain.Scenario
	Method   GenerationMethod
}

// GenerateVariations produces up to count structurally-varied siblings of
// base. Every variation keeps the base disruption type. A failing variation
// is logged and skipped; it never aborts the batch.
func (g *Generator) GenerateVariations(ctx context.Context, base Request, count int) []*VariationResult {
	results := make([]*VariationResult, 0, count)
	for i := 0; i < count; i++ {
		varied := g.applyStrategy(base, i%variationStrategies)

		s, method, err := g.Generate(ctx, varied)
		if err != nil {
			g.logger.Warn("Skipping failed scenario variation",
				"index", i, "strategy", i%variationStrategies, "error", err)
			continue
		}
		results = append(results, &VariationResult{Scenario: s, Method: method})
	}
	return results
}

// applyStrategy returns a copy of base transformed by the indexed strategy.
// The disruption type is never touched.
func (g *Generator) applyStrategy(base Request, strategy int) Request {
	varied := base
	varied.AffectedNodes = append([]string(nil), base.AffectedNodes...)
	varied.CustomParameters = nil // variations re-run enrichment from scratch

	g.mu.Lock()
	defer g.mu.Unlock()

	switch strategy {
	case 0: // perturb severity to a different level
		varied.Severity = g.otherSeverity(base.Severity)
	case 1: // scale duration by [0.5, 1.5) with a floor of one hour
		factor := 0.5 + g.rng.Float64()
		varied.DurationHours = math.Max(1, base.DurationHours*factor)
	case 2: // shrink the affected list to ~70%, keeping at least one
		if n := len(base.AffectedNodes); n > 1 {
			keep := int(math.Round(float64(n) * 0.7))
			if keep < 1 {
				keep = 1
			}
			varied.AffectedNodes = varied.AffectedNodes[:keep]
		}
	case 3: // jitter location by up to ±1° per axis, clamped to valid ranges
		varied.Location.Latitude = clamp(base.Location.Latitude+(g.rng.Float64()*2-1), -90, 90)
		varied.Location.Longitude = clamp(base.Location.Longitude+(g.rng.Float64()*2-1), -180, 180)
	}
	return varied
}

// otherSeverity draws a severity different from current.
func (g *Generator) otherSeverity(current domain.Severity) domain.Severity {
	candidates := make([]domain.Severity, 0, len(domain.Severities)-1)
	for _, s := range domain.Severities {
		if s != current {
			candidates = append(candidates, s)
		}
	}
	return candidates[g.rng.Intn(len(candidates))]
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
