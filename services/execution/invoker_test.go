package execution

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"halo-platform/api/services/node"
	"halo-platform/api/services/node/nodes"
)

func testRegistry() *node.Registry {
	return node.NewRegistry(nodes.All(), nodes.Icons())
}

func TestLocalInvoker_RunsRegisteredNode(t *testing.T) {
	invoker := NewLocalInvoker(testRegistry(), nil, nil)

	res, err := invoker.Invoke(context.Background(), InvokeRequest{
		StepID:        "s1",
		IntegrationID: "set",
		Config:        map[string]any{"values": `{"tag": "x"}`},
		Input:         []node.ExecutionData{{JSON: map[string]any{"id": 1}}},
	})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.Channel)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "x", res.Items[0].JSON["tag"])
	assert.Contains(t, res.Output, "items")
}

func TestLocalInvoker_ConditionChannel(t *testing.T) {
	invoker := NewLocalInvoker(testRegistry(), nil, nil)

	tests := []struct {
		status      string
		wantChannel string
	}{
		{"active", "true"},
		{"inactive", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			res, err := invoker.Invoke(context.Background(), InvokeRequest{
				IntegrationID: "condition",
				Config: map[string]any{
					"field": "status", "operation": "equal", "value": "active",
				},
				Input: []node.ExecutionData{{JSON: map[string]any{"status": tt.status}}},
			})

			require.NoError(t, err)
			assert.True(t, res.Success)
			assert.Equal(t, tt.wantChannel, res.Channel)
			assert.Len(t, res.Items, 1)
			assert.Equal(t, tt.wantChannel, res.Output["channel"])
		})
	}
}

func TestLocalInvoker_NodeErrorBecomesStepFailure(t *testing.T) {
	invoker := NewLocalInvoker(testRegistry(), nil, nil)

	res, err := invoker.Invoke(context.Background(), InvokeRequest{
		IntegrationID: "condition",
		Config:        map[string]any{"field": "n", "operation": "greaterThan", "value": "1"},
		Input:         []node.ExecutionData{{JSON: map[string]any{"n": "not-a-number"}}},
	})

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "failed to evaluate condition")
}

func TestLocalInvoker_UnknownIntegration(t *testing.T) {
	invoker := NewLocalInvoker(testRegistry(), nil, nil)

	res, err := invoker.Invoke(context.Background(), InvokeRequest{IntegrationID: "mystery"})

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "no such integration: mystery")
}

func TestLocalInvoker_FallbackDelegation(t *testing.T) {
	fallback := &scriptInvoker{results: map[string]*InvokeResult{
		"s1": {Success: true, Output: map[string]any{"remote": true}},
	}}
	invoker := NewLocalInvoker(testRegistry(), nil, fallback)

	res, err := invoker.Invoke(context.Background(), InvokeRequest{
		StepID:        "s1",
		IntegrationID: "salesforce",
	})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, true, res.Output["remote"])
	require.Len(t, fallback.calls, 1)
	assert.Equal(t, "salesforce", fallback.calls[0].IntegrationID)
}

func TestResultFromOutputs_EmptyConditionInput(t *testing.T) {
	registry := testRegistry()
	entry, ok := registry.Get("condition")
	require.True(t, ok)

	// No items anywhere: the last declared channel is reported with no
	// items, so a downstream true-branch step is skipped.
	res := resultFromOutputs(&entry.Definition, [][]node.ExecutionData{{}, {}})

	assert.True(t, res.Success)
	assert.Equal(t, "false", res.Channel)
	assert.Empty(t, res.Items)
}
