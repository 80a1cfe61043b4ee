package domain

import (
	"fmt"
)

// RootNodeID is the fixed identifier of the entry node of a decision tree.
const RootNodeID = "root"

// NodeKind distinguishes explanation graph nodes.
type NodeKind string

const (
	NodeCondition NodeKind = "condition"
	NodeOutcome   NodeKind = "outcome"
)

// DecisionNode is a single node in the explanation graph.
type DecisionNode struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Kind        NodeKind `json:"kind"`
	Attribution string   `json:"attribution,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
}

// DecisionEdge connects two nodes in the explanation graph.
type DecisionEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// DecisionTree is a directed explanation graph linking scenario conditions
// to computed outcomes. A valid tree has exactly one root node, edges whose
// endpoints resolve to existing nodes, and every node reachable from root
// without cycles.
type DecisionTree struct {
	Nodes []DecisionNode `json:"nodes"`
	Edges []DecisionEdge `json:"edges"`
}

// Validate checks the structural invariants of the tree.
func (t *DecisionTree) Validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("decision tree has no nodes")
	}

	ids := make(map[string]bool, len(t.Nodes))
	rootCount := 0
	for _, n := range t.Nodes {
		if n.ID == "" {
			return fmt.Errorf("decision tree node with empty id")
		}
		if ids[n.ID] {
			return fmt.Errorf("duplicate decision tree node id %q", n.ID)
		}
		ids[n.ID] = true
		if n.ID == RootNodeID {
			rootCount++
		}
	}
	if rootCount != 1 {
		return fmt.Errorf("decision tree must have exactly one %q node", RootNodeID)
	}

	adjacency := make(map[string][]string, len(t.Nodes))
	for _, e := range t.Edges {
		if !ids[e.From] {
			return fmt.Errorf("edge references unknown node %q", e.From)
		}
		if !ids[e.To] {
			return fmt.Errorf("edge references unknown node %q", e.To)
		}
		adjacency[e.From] = append(adjacency[e.From], e.To)
	}

	// Reachability from root, detecting cycles along the way.
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(t.Nodes))
	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case inProgress:
			return fmt.Errorf("decision tree contains a cycle through %q", id)
		case done:
			return nil
		}
		state[id] = inProgress
		for _, next := range adjacency[id] {
			if err := visit(next); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}
	if err := visit(RootNodeID); err != nil {
		return err
	}

	for id := range ids {
		if state[id] != done {
			return fmt.Errorf("node %q is not reachable from %q", id, RootNodeID)
		}
	}
	return nil
}
