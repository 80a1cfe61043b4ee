package simulation

import (
	"github.com/resilink/disruption-engine/internal/domain"
)

// typeMultipliers are the fixed {cost, time, inventory} factors applied per
// disruption type before severity scaling and noise.
type typeMultipliers struct {
	Cost      float64
	Time      float64
	Inventory float64
}

var multipliersByType = map[domain.DisruptionType]typeMultipliers{
	domain.NaturalDisaster:     {Cost: 3.0, Time: 2.5, Inventory: 2.0},
	domain.SupplierFailure:     {Cost: 2.5, Time: 2.0, Inventory: 1.8},
	domain.TransportationDelay: {Cost: 1.5, Time: 3.0, Inventory: 1.2},
	domain.DemandSpike:         {Cost: 2.0, Time: 1.5, Inventory: 2.5},
	domain.QualityIssue:        {Cost: 2.2, Time: 1.8, Inventory: 2.0},
	domain.Geopolitical:        {Cost: 2.8, Time: 2.2, Inventory: 1.5},
	domain.CyberAttack:         {Cost: 2.6, Time: 1.6, Inventory: 1.4},
	domain.LaborShortage:       {Cost: 1.8, Time: 2.4, Inventory: 1.3},
}

// multipliersFor resolves the per-type factors, falling back to neutral
// factors for an unknown type so a simulation never silently zeroes out.
func multipliersFor(t domain.DisruptionType) typeMultipliers {
	if m, ok := multipliersByType[t]; ok {
		return m
	}
	return typeMultipliers{Cost: 1.0, Time: 1.0, Inventory: 1.0}
}

// carbonPerFacilityKg is the baseline carbon estimate per affected facility
// per day before severity scaling and noise.
const carbonPerFacilityKg = 500.0
