package domain

import (
	"time"
)

// DisruptionType classifies the kind of supply-chain disruption being modeled.
type DisruptionType string

const (
	NaturalDisaster     DisruptionType = "NATURAL_DISASTER"
	SupplierFailure     DisruptionType = "SUPPLIER_FAILURE"
	TransportationDelay DisruptionType = "TRANSPORTATION_DELAY"
	DemandSpike         DisruptionType = "DEMAND_SPIKE"
	QualityIssue        DisruptionType = "QUALITY_ISSUE"
	Geopolitical        DisruptionType = "GEOPOLITICAL"
	CyberAttack         DisruptionType = "CYBER_ATTACK"
	LaborShortage       DisruptionType = "LABOR_SHORTAGE"
)

// DisruptionTypes lists every supported disruption type.
var DisruptionTypes = []DisruptionType{
	NaturalDisaster,
	SupplierFailure,
	TransportationDelay,
	DemandSpike,
	QualityIssue,
	Geopolitical,
	CyberAttack,
	LaborShortage,
}

// Valid reports whether t is a member of the disruption type enumeration.
func (t DisruptionType) Valid() bool {
	for _, known := range DisruptionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Severity grades how hard a disruption hits the affected network.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Severities lists every severity level in ascending order.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Valid reports whether s is a member of the severity enumeration.
func (s Severity) Valid() bool {
	for _, known := range Severities {
		if s == known {
			return true
		}
	}
	return false
}

// Factor returns the numeric multiplier associated with a severity level.
// Unknown severities fall back to the MEDIUM factor.
func (s Severity) Factor() float64 {
	switch s {
	case SeverityLow:
		return 0.5
	case SeverityMedium:
		return 1.0
	case SeverityHigh:
		return 2.0
	case SeverityCritical:
		return 4.0
	default:
		return 1.0
	}
}

// Location is an immutable geographic point with a human-readable address.
type Location struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
	Address   string  `json:"address,omitempty" db:"address"`
	City      string  `json:"city,omitempty" db:"city"`
	Country   string  `json:"country,omitempty" db:"country"`
}

// ScenarioParameters holds the concrete knobs of a disruption instance.
type ScenarioParameters struct {
	Location         Location               `json:"location"`
	Severity         Severity               `json:"severity"`
	DurationHours    float64                `json:"duration_hours"`
	AffectedNodes    []string               `json:"affected_nodes"`
	CustomParameters map[string]interface{} `json:"custom_parameters,omitempty"`
}

// MarketplaceMetadata carries the rating and usage counters owned by the
// marketplace collaborator. The engine persists but never mutates them.
type MarketplaceMetadata struct {
	Rating       float64 `json:"rating"`
	RatingsTotal int     `json:"ratings_total"`
	UsageCount   int     `json:"usage_count"`
	ForkCount    int     `json:"fork_count"`
}

// Scenario is a concrete, parameterized disruption instance submitted for
// analysis. Immutable once persisted.
type Scenario struct {
	ID          string               `json:"id"`
	Type        DisruptionType       `json:"type"`
	Parameters  ScenarioParameters   `json:"parameters"`
	CreatedBy   string               `json:"created_by"`
	IsPublic    bool                 `json:"is_public"`
	Marketplace *MarketplaceMetadata `json:"marketplace,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// Facility is a read-only snapshot of a supply-chain node as held by the
// entity store at simulation time.
type Facility struct {
	ID               string    `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Type             string    `json:"type" db:"type"`
	Capacity         float64   `json:"capacity" db:"capacity"`
	CurrentInventory float64   `json:"current_inventory" db:"current_inventory"`
	UtilizationRate  float64   `json:"utilization_rate" db:"utilization_rate"`
	Connectivity     []string  `json:"connectivity" db:"-"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// SustainabilityImpact quantifies the environmental consequence of a scenario.
type SustainabilityImpact struct {
	CarbonFootprintKg   float64            `json:"carbon_footprint_kg"`
	EmissionsByRoute    map[string]float64 `json:"emissions_by_route,omitempty"`
	SustainabilityScore int                `json:"sustainability_score"`
}

// ImpactAnalysis is the quantified consequence of a scenario. A simulation
// run constructs one once and never mutates it afterward.
type ImpactAnalysis struct {
	CostImpact         float64               `json:"cost_impact"`
	DeliveryTimeImpact float64               `json:"delivery_time_impact_hours"`
	InventoryImpact    float64               `json:"inventory_impact_units"`
	Sustainability     *SustainabilityImpact `json:"sustainability,omitempty"`
}

// MitigationStrategy is a candidate response action with quantified
// trade-offs. Instantiated transiently per optimization request.
type MitigationStrategy struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	CostImpact           float64  `json:"cost_impact"`
	RiskReduction        float64  `json:"risk_reduction"`
	SustainabilityImpact float64  `json:"sustainability_impact"`
	ImplementationTime   float64  `json:"implementation_time_hours"`
	TradeOffs            []string `json:"trade_offs"`
}

// UserPreferences biases strategy ranking weights. Never persisted.
type UserPreferences struct {
	PrioritizeCost           bool `json:"prioritize_cost"`
	PrioritizeRisk           bool `json:"prioritize_risk"`
	PrioritizeSustainability bool `json:"prioritize_sustainability"`
}
