package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTree() DecisionTree {
	return DecisionTree{
		Nodes: []DecisionNode{
			{ID: RootNodeID, Label: "Disruption", Kind: NodeCondition},
			{ID: "severity", Label: "Severity", Kind: NodeCondition},
			{ID: "cost", Label: "Cost", Kind: NodeOutcome},
		},
		Edges: []DecisionEdge{
			{From: RootNodeID, To: "severity"},
			{From: "severity", To: "cost"},
		},
	}
}

func TestDecisionTreeValidate(t *testing.T) {
	t.Run("valid tree passes", func(t *testing.T) {
		tree := validTree()
		require.NoError(t, tree.Validate())
	})

	t.Run("empty tree fails", func(t *testing.T) {
		tree := DecisionTree{}
		assert.Error(t, tree.Validate())
	})

	t.Run("missing root fails", func(t *testing.T) {
		tree := validTree()
		tree.Nodes[0].ID = "start"
		tree.Edges[0].From = "start"
		assert.ErrorContains(t, tree.Validate(), "root")
	})

	t.Run("duplicate node id fails", func(t *testing.T) {
		tree := validTree()
		tree.Nodes = append(tree.Nodes, DecisionNode{ID: "cost", Label: "Cost again", Kind: NodeOutcome})
		assert.ErrorContains(t, tree.Validate(), "duplicate")
	})

	t.Run("dangling edge endpoint fails", func(t *testing.T) {
		tree := validTree()
		tree.Edges = append(tree.Edges, DecisionEdge{From: "severity", To: "ghost"})
		assert.ErrorContains(t, tree.Validate(), "unknown node")
	})

	t.Run("orphan node fails", func(t *testing.T) {
		tree := validTree()
		tree.Nodes = append(tree.Nodes, DecisionNode{ID: "island", Label: "Orphan", Kind: NodeOutcome})
		assert.ErrorContains(t, tree.Validate(), "not reachable")
	})

	t.Run("cycle fails", func(t *testing.T) {
		tree := validTree()
		tree.Edges = append(tree.Edges, DecisionEdge{From: "cost", To: RootNodeID})
		assert.ErrorContains(t, tree.Validate(), "cycle")
	})
}

func TestSeverityFactor(t *testing.T) {
	assert.Equal(t, 0.5, SeverityLow.Factor())
	assert.Equal(t, 1.0, SeverityMedium.Factor())
	assert.Equal(t, 2.0, SeverityHigh.Factor())
	assert.Equal(t, 4.0, SeverityCritical.Factor())
	assert.Equal(t, 1.0, Severity("BOGUS").Factor())
}

func TestEnumValidity(t *testing.T) {
	for _, dt := range DisruptionTypes {
		assert.True(t, dt.Valid(), "type %s should be valid", dt)
	}
	assert.False(t, DisruptionType("ALIEN_INVASION").Valid())

	for _, s := range Severities {
		assert.True(t, s.Valid(), "severity %s should be valid", s)
	}
	assert.False(t, Severity("EXTREME").Valid())
}
