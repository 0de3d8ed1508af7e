package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visualGraph() ([]Node, []Edge) {
	nodes := []Node{
		{ID: "hook", Type: "webhookTrigger"},
		{ID: "check", Type: "condition", Data: NodeData{Config: map[string]any{"field": "status"}}},
		{ID: "notify", Type: "emailSend"},
		{ID: "cleanup", Type: "set"},
	}
	edges := []Edge{
		{ID: "e1", Source: "hook", Target: "check"},
		{ID: "e2", Source: "check", Target: "notify", SourceHandle: "true"},
		{ID: "e3", Source: "check", Target: "cleanup", SourceHandle: "false"},
	}
	return nodes, edges
}

func TestFlattenGraph_OrderAndBranches(t *testing.T) {
	nodes, edges := visualGraph()

	steps, err := FlattenGraph(nodes, edges)

	require.NoError(t, err)
	require.Len(t, steps, 4)

	assert.Equal(t, "hook", steps[0].ID)
	assert.Empty(t, steps[0].Branch)

	assert.Equal(t, "check", steps[1].ID)
	assert.Equal(t, map[string]any{"field": "status"}, steps[1].Config)

	// The first declared edge is walked first.
	assert.Equal(t, "notify", steps[2].ID)
	assert.Equal(t, "true", steps[2].Branch)

	assert.Equal(t, "cleanup", steps[3].ID)
	assert.Equal(t, "false", steps[3].Branch)

	for i, step := range steps {
		assert.Equal(t, i, step.Order)
	}
}

func TestFlattenGraph_BranchPropagates(t *testing.T) {
	nodes := []Node{
		{ID: "hook", Type: "webhookTrigger"},
		{ID: "check", Type: "condition"},
		{ID: "notify", Type: "emailSend"},
		{ID: "archive", Type: "set"},
	}
	edges := []Edge{
		{ID: "e1", Source: "hook", Target: "check"},
		{ID: "e2", Source: "check", Target: "notify", SourceHandle: "true"},
		{ID: "e3", Source: "notify", Target: "archive"},
	}

	steps, err := FlattenGraph(nodes, edges)

	require.NoError(t, err)
	require.Len(t, steps, 4)
	// archive sits downstream of the true branch even though its own edge
	// has no handle.
	assert.Equal(t, "archive", steps[3].ID)
	assert.Equal(t, "true", steps[3].Branch)
}

func TestFlattenGraph_NoNodes(t *testing.T) {
	_, err := FlattenGraph(nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no nodes")
}

func TestFlattenGraph_NoEntryNode(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b"}}
	edges := []Edge{
		{ID: "e1", Source: "a", Target: "b"},
		{ID: "e2", Source: "b", Target: "a"},
	}

	_, err := FlattenGraph(nodes, edges)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no entry node")
}

func TestFlattenGraph_MultipleEntryNodes(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	edges := []Edge{{ID: "e1", Source: "a", Target: "c"}}

	_, err := FlattenGraph(nodes, edges)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple entry nodes")
}

func TestFlattenGraph_DanglingEdgeTarget(t *testing.T) {
	nodes := []Node{{ID: "a"}}
	edges := []Edge{{ID: "e1", Source: "a", Target: "ghost"}}

	_, err := FlattenGraph(nodes, edges)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestFlattenGraph_VisitsSharedTargetOnce(t *testing.T) {
	nodes := []Node{
		{ID: "hook"},
		{ID: "check"},
		{ID: "notify"},
		{ID: "end"},
	}
	edges := []Edge{
		{ID: "e1", Source: "hook", Target: "check"},
		{ID: "e2", Source: "check", Target: "notify", SourceHandle: "true"},
		{ID: "e3", Source: "check", Target: "end", SourceHandle: "false"},
		{ID: "e4", Source: "notify", Target: "end"},
	}

	steps, err := FlattenGraph(nodes, edges)

	require.NoError(t, err)
	assert.Len(t, steps, 4)
}
