package workflow

import "fmt"

const maxFlattenSteps = 100

// FlattenGraph converts the visual node/edge shape into the sequential step
// list the engine executes. Traversal starts at the node with no incoming
// edge and follows outgoing edges depth-first in declaration order, visiting
// each node once. Every step downstream of a routing node records the output
// channel (edge source handle) it hangs off, so the engine can skip the
// branch that was not taken. Only edge order is preserved; no dependency
// graph is built.
func FlattenGraph(nodes []Node, edges []Edge) ([]Step, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("workflow graph has no nodes")
	}

	start, err := findEntryNode(nodes, edges)
	if err != nil {
		return nil, err
	}

	edgeMap := buildEdgeMap(edges)
	nodeMap := make(map[string]*Node, len(nodes))
	for i := range nodes {
		nodeMap[nodes[i].ID] = &nodes[i]
	}

	var steps []Step
	visited := make(map[string]bool, len(nodes))

	// branch carries the source handle of the edge a node was reached
	// through; it propagates until another routing node resets it.
	type frame struct {
		nodeID string
		branch string
	}
	stack := []frame{{nodeID: start.ID}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[f.nodeID] {
			continue
		}
		n, ok := nodeMap[f.nodeID]
		if !ok {
			return nil, fmt.Errorf("edge target node %q not found", f.nodeID)
		}
		visited[f.nodeID] = true

		pos := n.Position
		steps = append(steps, Step{
			ID:       n.ID,
			Type:     n.Type,
			Config:   n.Data.Config,
			Branch:   f.branch,
			Position: &pos,
			Order:    len(steps),
		})
		if len(steps) > maxFlattenSteps {
			return nil, fmt.Errorf("graph exceeds maximum of %d steps (possible cycle)", maxFlattenSteps)
		}

		out := edgeMap[n.ID]
		// Push in reverse so the first declared edge is walked first.
		for i := len(out) - 1; i >= 0; i-- {
			edge := out[i]
			branch := f.branch
			if edge.SourceHandle != "" {
				branch = edge.SourceHandle
			}
			stack = append(stack, frame{nodeID: edge.Target, branch: branch})
		}
	}

	return steps, nil
}

// findEntryNode picks the node no edge points at. Exactly one is required.
func findEntryNode(nodes []Node, edges []Edge) (*Node, error) {
	hasIncoming := make(map[string]bool, len(edges))
	for _, e := range edges {
		hasIncoming[e.Target] = true
	}

	var entry *Node
	for i := range nodes {
		if hasIncoming[nodes[i].ID] {
			continue
		}
		if entry != nil {
			return nil, fmt.Errorf("workflow graph has multiple entry nodes (%q and %q)", entry.ID, nodes[i].ID)
		}
		entry = &nodes[i]
	}
	if entry == nil {
		return nil, fmt.Errorf("workflow graph has no entry node")
	}
	return entry, nil
}

func buildEdgeMap(edges []Edge) map[string][]Edge {
	m := make(map[string][]Edge)
	for _, edge := range edges {
		m[edge.Source] = append(m[edge.Source], edge)
	}
	return m
}
