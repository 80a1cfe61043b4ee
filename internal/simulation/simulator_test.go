package simulation

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resilink/disruption-engine/internal/config"
	"github.com/resilink/disruption-engine/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.SimulationConfig {
	return config.SimulationConfig{
		DefaultIterations: 1000,
		MaxIterations:     100000,
		Workers:           4,
	}
}

func testScenario() *domain.Scenario {
	return &domain.Scenario{
		ID:   "scn-1",
		Type: domain.SupplierFailure,
		Parameters: domain.ScenarioParameters{
			Location:      domain.Location{Latitude: 48.1, Longitude: 11.6, City: "Munich", Country: "Germany"},
			Severity:      domain.SeverityHigh,
			DurationHours: 48,
			AffectedNodes: []string{"f1"},
		},
	}
}

func testFacilities() []domain.Facility {
	return []domain.Facility{
		{ID: "f1", Capacity: 10000, CurrentInventory: 5000, UtilizationRate: 0.8, Connectivity: []string{"f2"}},
	}
}

func TestSimulate(t *testing.T) {
	s := NewSimulator(testConfig(), testLogger(), WithSeed(1))

	t.Run("supplier failure baseline", func(t *testing.T) {
		result, err := s.Simulate(context.Background(), testScenario(), testFacilities(), 1000, false)
		require.NoError(t, err)

		assert.Greater(t, result.Impacts.CostImpact, 0.0)
		assert.Greater(t, result.Impacts.DeliveryTimeImpact, 0.0)
		assert.Greater(t, result.Impacts.InventoryImpact, 0.0)
		assert.Nil(t, result.Impacts.Sustainability)
		assert.Equal(t, 1000, result.Iterations)

		// root, severity, affected_nodes, cost, delivery_time, inventory
		assert.Len(t, result.Tree.Nodes, 6)
		assert.Len(t, result.Tree.Edges, 5)
		require.NoError(t, result.Tree.Validate())

		assert.NotEmpty(t, result.Summary)
		assert.InDelta(t, 0.8, result.Confidence, 1e-9)
	})

	t.Run("iterations default when unspecified", func(t *testing.T) {
		result, err := s.Simulate(context.Background(), testScenario(), testFacilities(), 0, false)
		require.NoError(t, err)
		assert.Equal(t, 1000, result.Iterations)
	})

	t.Run("iterations clamped to ceiling", func(t *testing.T) {
		result, err := s.Simulate(context.Background(), testScenario(), testFacilities(), 10_000_000, false)
		require.NoError(t, err)
		assert.Equal(t, 100000, result.Iterations)
	})

	t.Run("negative iterations rejected", func(t *testing.T) {
		_, err := s.Simulate(context.Background(), testScenario(), testFacilities(), -1, false)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("nil scenario rejected", func(t *testing.T) {
		_, err := s.Simulate(context.Background(), nil, testFacilities(), 10, false)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("no facilities still yields a delivery delay", func(t *testing.T) {
		result, err := s.Simulate(context.Background(), testScenario(), nil, 100, false)
		require.NoError(t, err)
		assert.Zero(t, result.Impacts.CostImpact)
		assert.Zero(t, result.Impacts.InventoryImpact)
		assert.Greater(t, result.Impacts.DeliveryTimeImpact, 0.0)
	})
}

func TestSimulateSustainability(t *testing.T) {
	s := NewSimulator(testConfig(), testLogger(), WithSeed(2))

	result, err := s.Simulate(context.Background(), testScenario(), testFacilities(), 1000, true)
	require.NoError(t, err)

	sust := result.Impacts.Sustainability
	require.NotNil(t, sust)
	assert.Greater(t, sust.CarbonFootprintKg, 0.0)
	assert.GreaterOrEqual(t, sust.SustainabilityScore, 0)
	assert.LessOrEqual(t, sust.SustainabilityScore, 100)
	assert.NotEmpty(t, sust.EmissionsByRoute)
	assert.Contains(t, sust.EmissionsByRoute, "f1->f2")

	// Sustainability adds one outcome node, one edge, and 0.1 confidence.
	assert.Len(t, result.Tree.Nodes, 7)
	assert.Len(t, result.Tree.Edges, 6)
	require.NoError(t, result.Tree.Validate())
	assert.InDelta(t, 0.9, result.Confidence, 1e-9)
	assert.Contains(t, result.Summary, "carbon")
}

func TestSampleMeanBounds(t *testing.T) {
	// The noise factor is uniform in [0.7, 1.3]; across many iterations the
	// mean of each metric must stay inside the analytic envelope.
	s := NewSimulator(testConfig(), testLogger(), WithSeed(99))
	scn := testScenario()
	facs := testFacilities()

	result, err := s.Simulate(context.Background(), scn, facs, 20000, false)
	require.NoError(t, err)

	sev := scn.Parameters.Severity.Factor()
	days := scn.Parameters.DurationHours / 24.0
	baseCost := facs[0].Capacity * facs[0].UtilizationRate * 2.5 * sev * days
	baseDelay := scn.Parameters.DurationHours * 2.0
	baseInventory := facs[0].CurrentInventory * 1.8

	assert.Greater(t, result.Impacts.CostImpact, baseCost*0.7)
	assert.Less(t, result.Impacts.CostImpact, baseCost*1.3)
	// With 20k samples the mean should sit close to the midpoint.
	assert.InDelta(t, baseCost, result.Impacts.CostImpact, baseCost*0.05)
	assert.InDelta(t, baseDelay, result.Impacts.DeliveryTimeImpact, baseDelay*0.05)
	assert.InDelta(t, baseInventory, result.Impacts.InventoryImpact, baseInventory*0.05)
}

func TestSeededRunsAreReproducible(t *testing.T) {
	a := NewSimulator(testConfig(), testLogger(), WithSeed(123))
	b := NewSimulator(testConfig(), testLogger(), WithSeed(123))

	ra, err := a.Simulate(context.Background(), testScenario(), testFacilities(), 5000, true)
	require.NoError(t, err)
	rb, err := b.Simulate(context.Background(), testScenario(), testFacilities(), 5000, true)
	require.NoError(t, err)

	assert.Equal(t, ra.Impacts.CostImpact, rb.Impacts.CostImpact)
	assert.Equal(t, ra.Impacts.DeliveryTimeImpact, rb.Impacts.DeliveryTimeImpact)
	assert.Equal(t, ra.Impacts.Sustainability.CarbonFootprintKg, rb.Impacts.Sustainability.CarbonFootprintKg)
}

func TestWorkerCountDoesNotChangeSemantics(t *testing.T) {
	// Different worker counts reshuffle the iteration split; the mean must
	// remain statistically equivalent.
	seq := NewSimulator(config.SimulationConfig{DefaultIterations: 1000, MaxIterations: 100000, Workers: 1}, testLogger(), WithSeed(5))
	par := NewSimulator(config.SimulationConfig{DefaultIterations: 1000, MaxIterations: 100000, Workers: 8}, testLogger(), WithSeed(5))

	rs, err := seq.Simulate(context.Background(), testScenario(), testFacilities(), 20000, false)
	require.NoError(t, err)
	rp, err := par.Simulate(context.Background(), testScenario(), testFacilities(), 20000, false)
	require.NoError(t, err)

	assert.InEpsilon(t, rs.Impacts.CostImpact, rp.Impacts.CostImpact, 0.05)
	assert.InEpsilon(t, rs.Impacts.DeliveryTimeImpact, rp.Impacts.DeliveryTimeImpact, 0.05)
}

func TestSustainabilityScore(t *testing.T) {
	tests := []struct {
		footprint float64
		want      int
	}{
		{0, 100},
		{50000, 50},
		{100000, 0},
		{250000, 0},
		{10000, 90},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sustainabilityScore(tt.footprint), "footprint %.0f", tt.footprint)
	}
}

func TestEmissionsByRoute(t *testing.T) {
	t.Run("no facilities yields empty map", func(t *testing.T) {
		assert.Empty(t, emissionsByRoute(nil, 1000))
	})

	t.Run("shares split across connectivity", func(t *testing.T) {
		facs := []domain.Facility{
			{ID: "a", Connectivity: []string{"b", "c"}},
			{ID: "d"},
		}
		routes := emissionsByRoute(facs, 1000)
		assert.InDelta(t, 250, routes["a->b"], 1e-9)
		assert.InDelta(t, 250, routes["a->c"], 1e-9)
		assert.InDelta(t, 500, routes["d"], 1e-9)

		total := 0.0
		for _, v := range routes {
			total += v
		}
		assert.InDelta(t, 1000, total, 1e-9)
	})
}

func TestMultipliersFor(t *testing.T) {
	m := multipliersFor(domain.NaturalDisaster)
	assert.Equal(t, 3.0, m.Cost)
	assert.Equal(t, 2.5, m.Time)
	assert.Equal(t, 2.0, m.Inventory)

	for _, dt := range domain.DisruptionTypes {
		m := multipliersFor(dt)
		assert.Greater(t, m.Cost, 0.0)
		assert.Greater(t, m.Time, 0.0)
		assert.Greater(t, m.Inventory, 0.0)
	}

	neutral := multipliersFor(domain.DisruptionType("UNKNOWN"))
	assert.Equal(t, typeMultipliers{Cost: 1, Time: 1, Inventory: 1}, neutral)
}

func TestConfidenceClamped(t *testing.T) {
	s := NewSimulator(testConfig(), testLogger(), WithSeed(3))
	result, err := s.Simulate(context.Background(), testScenario(), testFacilities(), 100, true)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Confidence, 0.0)
	assert.LessOrEqual(t, result.Confidence, 1.0)
	assert.False(t, math.IsNaN(result.Confidence))
}
