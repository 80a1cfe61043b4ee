package simulation

import (
	"fmt"
	"strings"

	"github.com/resilink/disruption-engine/internal/domain"
)

// Fixed illustrative confidences attached to outcome nodes.
var outcomeConfidence = map[string]float64{
	"cost":           0.85,
	"delivery_time":  0.80,
	"inventory":      0.75,
	"sustainability": 0.70,
}

// buildDecisionTree constructs the explanation graph for one simulation:
// root (disruption type) -> severity condition -> affected-nodes condition
// -> one outcome leaf per headline metric.
func buildDecisionTree(scenario *domain.Scenario, impacts *domain.ImpactAnalysis) domain.DecisionTree {
	p := scenario.Parameters
	kind := strings.ToLower(strings.ReplaceAll(string(scenario.Type), "_", " "))

	nodes := []domain.DecisionNode{
		{
			ID:          domain.RootNodeID,
			Label:       fmt.Sprintf("Disruption: %s", kind),
			Kind:        domain.NodeCondition,
			Attribution: "scenario.type",
		},
		{
			ID:          "severity",
			Label:       fmt.Sprintf("Severity %s (factor %.1fx)", p.Severity, p.Severity.Factor()),
			Kind:        domain.NodeCondition,
			Attribution: "scenario.parameters.severity",
		},
		{
			ID:          "affected_nodes",
			Label:       fmt.Sprintf("%d affected facilities over %.0f hours", len(p.AffectedNodes), p.DurationHours),
			Kind:        domain.NodeCondition,
			Attribution: "scenario.parameters.affected_nodes",
		},
		outcomeNode("cost", fmt.Sprintf("Cost impact $%.0f", impacts.CostImpact), "impacts.cost_impact"),
		outcomeNode("delivery_time", fmt.Sprintf("Delivery delay %.1f hours", impacts.DeliveryTimeImpact), "impacts.delivery_time_impact_hours"),
		outcomeNode("inventory", fmt.Sprintf("Inventory at risk %.0f units", impacts.InventoryImpact), "impacts.inventory_impact_units"),
	}

	edges := []domain.DecisionEdge{
		{From: domain.RootNodeID, To: "severity", Label: "graded by"},
		{From: "severity", To: "affected_nodes", Label: "applied to"},
		{From: "affected_nodes", To: "cost", Label: "drives"},
		{From: "affected_nodes", To: "delivery_time", Label: "drives"},
		{From: "affected_nodes", To: "inventory", Label: "drives"},
	}

	if impacts.Sustainability != nil {
		nodes = append(nodes, outcomeNode("sustainability",
			fmt.Sprintf("Carbon footprint %.0f kg CO2e", impacts.Sustainability.CarbonFootprintKg),
			"impacts.sustainability.carbon_footprint_kg"))
		edges = append(edges, domain.DecisionEdge{From: "affected_nodes", To: "sustainability", Label: "drives"})
	}

	return domain.DecisionTree{Nodes: nodes, Edges: edges}
}

func outcomeNode(id, label, attribution string) domain.DecisionNode {
	conf := outcomeConfidence[id]
	return domain.DecisionNode{
		ID:          id,
		Label:       label,
		Kind:        domain.NodeOutcome,
		Attribution: attribution,
		Confidence:  &conf,
	}
}
