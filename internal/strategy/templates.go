// Package strategy generates and ranks mitigation strategies for a simulated
// disruption under user-specified trade-off preferences.
package strategy

import (
	"github.com/resilink/disruption-engine/internal/domain"
)

// Template is a mitigation archetype. Multipliers scale the simulated impact
// figures into candidate metrics; the catalog is data, not code branching.
type Template struct {
	Name                         string
	Description                  string
	CostMultiplier               float64
	RiskReductionMultiplier      float64
	SustainabilityMultiplier     float64
	ImplementationTimeMultiplier float64
	TradeOffs                    []string
}

// Catalog maps each disruption type to its mitigation archetypes.
var Catalog = map[domain.DisruptionType][]Template{
	domain.NaturalDisaster: {
		{
			Name:                         "Activate backup facilities",
			Description:                  "Shift production and storage to pre-contracted backup sites outside the affected region.",
			CostMultiplier:               0.45,
			RiskReductionMultiplier:      0.85,
			SustainabilityMultiplier:     0.60,
			ImplementationTimeMultiplier: 0.30,
			TradeOffs:                    []string{"High standby cost for capacity that is rarely used", "Backup sites may run at lower efficiency"},
		},
		{
			Name:                         "Pre-position emergency inventory",
			Description:                  "Stage safety stock at distribution points on the edge of the risk zone.",
			CostMultiplier:               0.30,
			RiskReductionMultiplier:      0.70,
			SustainabilityMultiplier:     0.80,
			ImplementationTimeMultiplier: 0.20,
			TradeOffs:                    []string{"Working capital locked in stock", "Risk of obsolescence for slow movers"},
		},
		{
			Name:                         "Reroute via alternate corridors",
			Description:                  "Move freight through unaffected ports and road corridors at premium rates.",
			CostMultiplier:               0.25,
			RiskReductionMultiplier:      0.60,
			SustainabilityMultiplier:     1.30,
			ImplementationTimeMultiplier: 0.15,
			TradeOffs:                    []string{"Longer routes raise emissions", "Premium carrier rates"},
		},
		{
			Name:                         "Regional supplier diversification",
			Description:                  "Qualify suppliers in geologically and climatically uncorrelated regions.",
			CostMultiplier:               0.55,
			RiskReductionMultiplier:      0.90,
			SustainabilityMultiplier:     0.70,
			ImplementationTimeMultiplier: 0.80,
			TradeOffs:                    []string{"Long qualification lead time", "Smaller volume discounts per supplier"},
		},
		{
			Name:                         "Parametric disruption insurance",
			Description:                  "Transfer residual financial exposure through parametric coverage triggered by event magnitude.",
			CostMultiplier:               0.15,
			RiskReductionMultiplier:      0.40,
			SustainabilityMultiplier:     0.95,
			ImplementationTimeMultiplier: 0.10,
			TradeOffs:                    []string{"Premiums recur regardless of events", "Does not restore physical flow"},
		},
	},
	domain.SupplierFailure: {
		{
			Name:                         "Engage qualified alternate supplier",
			Description:                  "Switch orders to a pre-qualified secondary source for the affected components.",
			CostMultiplier:               0.35,
			RiskReductionMultiplier:      0.85,
			SustainabilityMultiplier:     0.75,
			ImplementationTimeMultiplier: 0.25,
			TradeOffs:                    []string{"Alternate capacity may be limited", "Unit cost typically higher than primary"},
		},
		{
			Name:                         "Dual-sourcing program",
			Description:                  "Split future volume across two suppliers to cap single-source exposure.",
			CostMultiplier:               0.50,
			RiskReductionMultiplier:      0.90,
			SustainabilityMultiplier:     0.85,
			ImplementationTimeMultiplier: 0.70,
			TradeOffs:                    []string{"Reduced volume leverage in negotiation", "Two supplier relationships to manage"},
		},
		{
			Name:                         "Buffer stock of critical parts",
			Description:                  "Hold additional weeks of coverage for parts with the failing supplier.",
			CostMultiplier:               0.28,
			RiskReductionMultiplier:      0.65,
			SustainabilityMultiplier:     0.90,
			ImplementationTimeMultiplier: 0.20,
			TradeOffs:                    []string{"Inventory carrying cost", "Exposure if design changes"},
		},
		{
			Name:                         "Supplier recovery task force",
			Description:                  "Embed engineers and working capital with the failing supplier to restore output.",
			CostMultiplier:               0.40,
			RiskReductionMultiplier:      0.75,
			SustainabilityMultiplier:     0.65,
			ImplementationTimeMultiplier: 0.45,
			TradeOffs:                    []string{"Outcome depends on supplier cooperation", "Ties up scarce engineering staff"},
		},
		{
			Name:                         "Redesign for substitute components",
			Description:                  "Requalify the product around commodity parts with deep supply bases.",
			CostMultiplier:               0.60,
			RiskReductionMultiplier:      0.95,
			SustainabilityMultiplier:     0.55,
			ImplementationTimeMultiplier: 1.00,
			TradeOffs:                    []string{"Engineering and requalification expense", "Slowest option to take effect"},
		},
	},
	domain.TransportationDelay: {
		{
			Name:                         "Expedited freight upgrade",
			Description:                  "Move priority shipments to air or express ground service.",
			CostMultiplier:               0.40,
			RiskReductionMultiplier:      0.80,
			SustainabilityMultiplier:     1.60,
			ImplementationTimeMultiplier: 0.10,
			TradeOffs:                    []string{"Air freight carbon intensity", "Cost per unit several times surface rates"},
		},
		{
			Name:                         "Multi-carrier rebooking",
			Description:                  "Spread delayed lanes across alternate carriers with open capacity.",
			CostMultiplier:               0.25,
			RiskReductionMultiplier:      0.70,
			SustainabilityMultiplier:     1.05,
			ImplementationTimeMultiplier: 0.20,
			TradeOffs:                    []string{"Spot rates above contract rates", "Service level varies by carrier"},
		},
		{
			Name:                         "Modal shift to rail",
			Description:                  "Shift non-urgent volume to rail corridors unaffected by the delay.",
			CostMultiplier:               0.20,
			RiskReductionMultiplier:      0.55,
			SustainabilityMultiplier:     0.45,
			ImplementationTimeMultiplier: 0.40,
			TradeOffs:                    []string{"Longer transit for shifted volume", "Limited terminal coverage"},
		},
		{
			Name:                         "Dynamic rerouting platform",
			Description:                  "Deploy real-time routing that continuously re-optimizes around congestion.",
			CostMultiplier:               0.45,
			RiskReductionMultiplier:      0.85,
			SustainabilityMultiplier:     0.70,
			ImplementationTimeMultiplier: 0.60,
			TradeOffs:                    []string{"Integration effort with carriers", "Subscription cost"},
		},
		{
			Name:                         "Customer allocation and triage",
			Description:                  "Prioritize scarce transport capacity toward contractual and strategic customers.",
			CostMultiplier:               0.12,
			RiskReductionMultiplier:      0.45,
			SustainabilityMultiplier:     0.90,
			ImplementationTimeMultiplier: 0.15,
			TradeOffs:                    []string{"Service degradation for deprioritized customers", "Requires accurate demand ranking"},
		},
	},
	domain.DemandSpike: {
		{
			Name:                         "Surge production shifts",
			Description:                  "Add overtime and weekend shifts at facilities with spare capacity.",
			CostMultiplier:               0.35,
			RiskReductionMultiplier:      0.80,
			SustainabilityMultiplier:     1.10,
			ImplementationTimeMultiplier: 0.20,
			TradeOffs:                    []string{"Overtime premiums", "Workforce fatigue over sustained surges"},
		},
		{
			Name:                         "Contract manufacturing overflow",
			Description:                  "Route excess demand to contract manufacturers.",
			CostMultiplier:               0.45,
			RiskReductionMultiplier:      0.85,
			SustainabilityMultiplier:     0.95,
			ImplementationTimeMultiplier: 0.50,
			TradeOffs:                    []string{"Margin shared with partner", "Quality oversight burden"},
		},
		{
			Name:                         "Demand shaping via pricing",
			Description:                  "Use pricing and lead-time quotes to flatten the spike.",
			CostMultiplier:               0.10,
			RiskReductionMultiplier:      0.50,
			SustainabilityMultiplier:     0.60,
			ImplementationTimeMultiplier: 0.15,
			TradeOffs:                    []string{"Customer goodwill risk", "Revenue deferred, not captured"},
		},
		{
			Name:                         "Allocation by customer tier",
			Description:                  "Ration available supply against contractual commitments first.",
			CostMultiplier:               0.15,
			RiskReductionMultiplier:      0.60,
			SustainabilityMultiplier:     0.75,
			ImplementationTimeMultiplier: 0.10,
			TradeOffs:                    []string{"Lost upside from spot demand", "Channel friction"},
		},
		{
			Name:                         "Postponement and late configuration",
			Description:                  "Hold generic stock and configure to order close to the customer.",
			CostMultiplier:               0.40,
			RiskReductionMultiplier:      0.75,
			SustainabilityMultiplier:     0.65,
			ImplementationTimeMultiplier: 0.70,
			TradeOffs:                    []string{"Process redesign required", "Per-unit configuration cost"},
		},
	},
	domain.QualityIssue: {
		{
			Name:                         "Containment and 100% inspection",
			Description:                  "Quarantine suspect lots and screen outgoing product until the root cause is closed.",
			CostMultiplier:               0.30,
			RiskReductionMultiplier:      0.80,
			SustainabilityMultiplier:     0.85,
			ImplementationTimeMultiplier: 0.15,
			TradeOffs:                    []string{"Inspection labor cost", "Throughput reduction at screening points"},
		},
		{
			Name:                         "Supplier corrective action program",
			Description:                  "Drive an 8D corrective-action cycle with the offending supplier.",
			CostMultiplier:               0.20,
			RiskReductionMultiplier:      0.70,
			SustainabilityMultiplier:     0.80,
			ImplementationTimeMultiplier: 0.50,
			TradeOffs:                    []string{"Resolution depends on supplier maturity", "Recurrence risk until verified"},
		},
		{
			Name:                         "Parallel qualified source",
			Description:                  "Shift volume to an alternate source already qualified for the affected part.",
			CostMultiplier:               0.40,
			RiskReductionMultiplier:      0.85,
			SustainabilityMultiplier:     0.90,
			ImplementationTimeMultiplier: 0.35,
			TradeOffs:                    []string{"Alternate source premium", "Capacity limits"},
		},
		{
			Name:                         "Selective recall and rework",
			Description:                  "Recall affected serial ranges and rework them at regional centers.",
			CostMultiplier:               0.55,
			RiskReductionMultiplier:      0.90,
			SustainabilityMultiplier:     1.20,
			ImplementationTimeMultiplier: 0.60,
			TradeOffs:                    []string{"Reverse logistics cost and emissions", "Brand exposure during recall"},
		},
		{
			Name:                         "Design tolerance review",
			Description:                  "Re-examine specifications to widen tolerances where field data supports it.",
			CostMultiplier:               0.25,
			RiskReductionMultiplier:      0.60,
			SustainabilityMultiplier:     0.55,
			ImplementationTimeMultiplier: 0.80,
			TradeOffs:                    []string{"Engineering review cycle", "Possible performance trade-offs"},
		},
	},
	domain.Geopolitical: {
		{
			Name:                         "Friend-shoring of critical volume",
			Description:                  "Move sourcing of sensitive components to politically aligned jurisdictions.",
			CostMultiplier:               0.60,
			RiskReductionMultiplier:      0.90,
			SustainabilityMultiplier:     0.80,
			ImplementationTimeMultiplier: 0.90,
			TradeOffs:                    []string{"Higher landed cost", "Long transition period"},
		},
		{
			Name:                         "Bonded warehouse buffering",
			Description:                  "Hold inventory in bonded warehouses to defer duties and absorb policy shocks.",
			CostMultiplier:               0.30,
			RiskReductionMultiplier:      0.65,
			SustainabilityMultiplier:     0.85,
			ImplementationTimeMultiplier: 0.30,
			TradeOffs:                    []string{"Warehouse and compliance fees", "Capital tied up at the border"},
		},
		{
			Name:                         "Tariff engineering review",
			Description:                  "Reclassify and restructure product flows to reduce tariff exposure lawfully.",
			CostMultiplier:               0.18,
			RiskReductionMultiplier:      0.50,
			SustainabilityMultiplier:     0.70,
			ImplementationTimeMultiplier: 0.40,
			TradeOffs:                    []string{"Regulatory scrutiny", "Savings vary by ruling"},
		},
		{
			Name:                         "Dual logistics corridors",
			Description:                  "Qualify a second import corridor with independent customs regimes.",
			CostMultiplier:               0.38,
			RiskReductionMultiplier:      0.75,
			SustainabilityMultiplier:     1.10,
			ImplementationTimeMultiplier: 0.55,
			TradeOffs:                    []string{"Duplicate broker and compliance setup", "Split volume raises unit freight cost"},
		},
		{
			Name:                         "Local content partnerships",
			Description:                  "Joint ventures with in-market partners to satisfy local content rules.",
			CostMultiplier:               0.55,
			RiskReductionMultiplier:      0.85,
			SustainabilityMultiplier:     0.75,
			ImplementationTimeMultiplier: 1.00,
			TradeOffs:                    []string{"Shared control and margin", "Slow to stand up"},
		},
	},
	domain.CyberAttack: {
		{
			Name:                         "Isolate and restore from backups",
			Description:                  "Segment affected systems and restore clean images from offline backups.",
			CostMultiplier:               0.30,
			RiskReductionMultiplier:      0.85,
			SustainabilityMultiplier:     0.60,
			ImplementationTimeMultiplier: 0.25,
			TradeOffs:                    []string{"Data loss back to last clean backup", "Production downtime during restore"},
		},
		{
			Name:                         "Manual operations fallback",
			Description:                  "Run order intake, picking, and shipping on rehearsed paper processes.",
			CostMultiplier:               0.20,
			RiskReductionMultiplier:      0.55,
			SustainabilityMultiplier:     0.70,
			ImplementationTimeMultiplier: 0.10,
			TradeOffs:                    []string{"Severely reduced throughput", "Error rate of manual processing"},
		},
		{
			Name:                         "Incident response retainer activation",
			Description:                  "Bring in the retained forensics and recovery firm immediately.",
			CostMultiplier:               0.25,
			RiskReductionMultiplier:      0.75,
			SustainabilityMultiplier:     0.90,
			ImplementationTimeMultiplier: 0.15,
			TradeOffs:                    []string{"Retainer plus incident fees", "External access to sensitive systems"},
		},
		{
			Name:                         "Zero-trust network segmentation",
			Description:                  "Re-architect plant and logistics networks into isolated trust zones.",
			CostMultiplier:               0.50,
			RiskReductionMultiplier:      0.90,
			SustainabilityMultiplier:     0.80,
			ImplementationTimeMultiplier: 0.85,
			TradeOffs:                    []string{"Large IT program", "Temporary friction for integrations"},
		},
		{
			Name:                         "Cyber insurance claim",
			Description:                  "File against cyber coverage for business interruption and recovery cost.",
			CostMultiplier:               0.10,
			RiskReductionMultiplier:      0.35,
			SustainabilityMultiplier:     0.95,
			ImplementationTimeMultiplier: 0.30,
			TradeOffs:                    []string{"Payout timing uncertain", "Premium increases after claims"},
		},
	},
	domain.LaborShortage: {
		{
			Name:                         "Temporary staffing surge",
			Description:                  "Contract agency labor for the affected facilities.",
			CostMultiplier:               0.30,
			RiskReductionMultiplier:      0.70,
			SustainabilityMultiplier:     0.85,
			ImplementationTimeMultiplier: 0.20,
			TradeOffs:                    []string{"Agency premiums", "Training and quality ramp for temporary staff"},
		},
		{
			Name:                         "Cross-site workforce rebalancing",
			Description:                  "Move trained staff from under-utilized sites to the shortage.",
			CostMultiplier:               0.22,
			RiskReductionMultiplier:      0.60,
			SustainabilityMultiplier:     1.05,
			ImplementationTimeMultiplier: 0.25,
			TradeOffs:                    []string{"Travel and lodging cost", "Donor sites lose flexibility"},
		},
		{
			Name:                         "Retention incentive package",
			Description:                  "Targeted pay and schedule improvements to stop attrition at the source.",
			CostMultiplier:               0.35,
			RiskReductionMultiplier:      0.75,
			SustainabilityMultiplier:     0.90,
			ImplementationTimeMultiplier: 0.30,
			TradeOffs:                    []string{"Permanent cost base increase", "Internal equity pressure"},
		},
		{
			Name:                         "Selective automation of bottlenecks",
			Description:                  "Automate the most labor-intensive stations first.",
			CostMultiplier:               0.60,
			RiskReductionMultiplier:      0.90,
			SustainabilityMultiplier:     0.70,
			ImplementationTimeMultiplier: 0.90,
			TradeOffs:                    []string{"Capital expenditure", "Long lead time for equipment"},
		},
		{
			Name:                         "Simplify product mix",
			Description:                  "Temporarily cut low-volume variants to reduce changeover labor.",
			CostMultiplier:               0.15,
			RiskReductionMultiplier:      0.50,
			SustainabilityMultiplier:     0.60,
			ImplementationTimeMultiplier: 0.15,
			TradeOffs:                    []string{"Lost revenue on trimmed variants", "Customer commitments on niche items"},
		},
	},
}

// templatesFor resolves the archetypes for a disruption type. Unknown types
// reuse the supplier-failure archetypes, which generalize best.
func templatesFor(t domain.DisruptionType) []Template {
	if ts, ok := Catalog[t]; ok {
		return ts
	}
	return Catalog[domain.SupplierFailure]
}
