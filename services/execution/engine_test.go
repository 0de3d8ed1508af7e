package execution

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"halo-platform/api/services/node"
	"halo-platform/api/services/node/nodes"
	"halo-platform/api/services/workflow"
)

// memStore is an in-memory RecordStore for engine tests.
type memStore struct {
	created     *Execution
	status      Status
	output      map[string]any
	currentStep []string
	logs        []LogEntry
}

func (m *memStore) CreateExecution(_ context.Context, exec *Execution) error {
	exec.ID = "exec-1"
	m.created = exec
	m.status = exec.Status
	return nil
}

func (m *memStore) UpdateExecution(_ context.Context, _ string, patch Patch) error {
	if patch.Status != nil {
		m.status = *patch.Status
	}
	if patch.CurrentStep != nil {
		m.currentStep = append(m.currentStep, *patch.CurrentStep)
	}
	if patch.Output != nil {
		m.output = patch.Output
	}
	return nil
}

func (m *memStore) AppendLog(_ context.Context, entry *LogEntry) error {
	m.logs = append(m.logs, *entry)
	return nil
}

// scriptInvoker returns scripted results per step id and records every call.
type scriptInvoker struct {
	calls   []InvokeRequest
	results map[string]*InvokeResult
}

func (s *scriptInvoker) Invoke(_ context.Context, req InvokeRequest) (*InvokeResult, error) {
	s.calls = append(s.calls, req)
	if r, ok := s.results[req.StepID]; ok {
		return r, nil
	}
	return &InvokeResult{Success: true, Output: map[string]any{"step": req.StepID}}, nil
}

// tenantResolver returns a fixed bundle per tenant.
type tenantResolver struct {
	byTenant map[string]map[string]string
}

func (r *tenantResolver) Resolve(_ context.Context, tenantID, _ string) (map[string]string, error) {
	if creds, ok := r.byTenant[tenantID]; ok {
		return creds, nil
	}
	return map[string]string{}, nil
}

func flatWorkflow(stepIDs ...string) *workflow.Workflow {
	wf := &workflow.Workflow{ID: "wf-1", TenantID: "tenant-a", Name: "Test"}
	for _, id := range stepIDs {
		wf.Steps = append(wf.Steps, workflow.Step{ID: id, Type: "custom", Config: map[string]any{}})
	}
	return wf
}

func TestEngine_SequentialDependency(t *testing.T) {
	store := &memStore{}
	invoker := &scriptInvoker{
		results: map[string]*InvokeResult{
			"A": {Success: true, Output: map[string]any{"x": 1}},
		},
	}
	engine := NewEngine(store, &tenantResolver{}, invoker)

	exec, err := engine.Run(context.Background(), flatWorkflow("A", "B"), "tenant-a", map[string]any{"seed": true})

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, exec.Status)
	require.Len(t, invoker.calls, 2)

	// B runs only after A completed, seeing A's output and the trigger.
	callB := invoker.calls[1]
	assert.Equal(t, "B", callB.StepID)
	assert.Equal(t, map[string]any{"x": 1}, callB.PreviousOutputs["A"])
	assert.Equal(t, map[string]any{"seed": true}, callB.PreviousOutputs["trigger"])
}

func TestEngine_FailFast(t *testing.T) {
	store := &memStore{}
	invoker := &scriptInvoker{
		results: map[string]*InvokeResult{
			"B": {Success: false, Error: "integration exploded"},
		},
	}
	engine := NewEngine(store, &tenantResolver{}, invoker)

	exec, err := engine.Run(context.Background(), flatWorkflow("A", "B", "C"), "tenant-a", map[string]any{})

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, exec.Status)
	assert.Equal(t, StatusFailed, store.status)

	// C must never be invoked.
	require.Len(t, invoker.calls, 2)
	assert.Equal(t, "A", invoker.calls[0].StepID)
	assert.Equal(t, "B", invoker.calls[1].StepID)

	// No output is persisted for a failed run; partial progress lives in
	// the log stream only.
	assert.Nil(t, store.output)
	assert.Nil(t, exec.Output)

	var errorLogs []LogEntry
	for _, l := range store.logs {
		if l.Level == LevelError {
			errorLogs = append(errorLogs, l)
		}
	}
	require.Len(t, errorLogs, 1)
	assert.Equal(t, "B", errorLogs[0].StepID)
	assert.Contains(t, errorLogs[0].Message, "integration exploded")
}

func TestEngine_InvokerTransportErrorFailsRun(t *testing.T) {
	store := &memStore{}
	engine := NewEngine(store, &tenantResolver{}, invokerFunc(func(_ context.Context, _ InvokeRequest) (*InvokeResult, error) {
		return nil, fmt.Errorf("backend unreachable")
	}))

	_, err := engine.Run(context.Background(), flatWorkflow("A"), "tenant-a", map[string]any{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend unreachable")
	assert.Equal(t, StatusFailed, store.status)
}

type invokerFunc func(ctx context.Context, req InvokeRequest) (*InvokeResult, error)

func (f invokerFunc) Invoke(ctx context.Context, req InvokeRequest) (*InvokeResult, error) {
	return f(ctx, req)
}

func TestEngine_CompletedOutputPersisted(t *testing.T) {
	store := &memStore{}
	invoker := &scriptInvoker{results: map[string]*InvokeResult{}}
	engine := NewEngine(store, &tenantResolver{}, invoker)

	exec, err := engine.Run(context.Background(), flatWorkflow("A", "B"), "tenant-a", map[string]any{"k": "v"})

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, store.status)
	require.NotNil(t, store.output)
	assert.Contains(t, store.output, "trigger")
	assert.Contains(t, store.output, "A")
	assert.Contains(t, store.output, "B")
	require.NotNil(t, exec.CompletedAt)

	// current_step was advanced before each step.
	assert.Equal(t, []string{"A", "B"}, store.currentStep)
}

func TestEngine_CredentialIsolation(t *testing.T) {
	resolver := &tenantResolver{byTenant: map[string]map[string]string{
		"tenant-a": {"token": "a-secret"},
		"tenant-b": {"token": "b-secret"},
	}}

	for tenant, want := range map[string]string{"tenant-a": "a-secret", "tenant-b": "b-secret"} {
		invoker := &scriptInvoker{}
		engine := NewEngine(&memStore{}, resolver, invoker)

		_, err := engine.Run(context.Background(), flatWorkflow("A"), tenant, map[string]any{})

		require.NoError(t, err)
		require.Len(t, invoker.calls, 1)
		assert.Equal(t, want, invoker.calls[0].Credentials["token"], tenant)
		assert.Equal(t, tenant, invoker.calls[0].TenantID)
	}
}

// conditionWorkflow is the webhook -> condition -> email scenario; the email
// step hangs off the condition's true channel.
func conditionWorkflow() *workflow.Workflow {
	return &workflow.Workflow{
		ID:       "wf-cond",
		TenantID: "tenant-a",
		Name:     "Active Account Alert",
		Steps: []workflow.Step{
			{ID: "webhook", Type: "webhookTrigger", Config: map[string]any{}},
			{ID: "check", Type: "condition", Config: map[string]any{
				"field": "status", "operation": "equal", "value": "active",
			}},
			{ID: "email", Type: "emailSend", Branch: "true", Config: map[string]any{
				"to": "{{email}}", "subject": "Active", "body": "Account active.",
			}},
		},
	}
}

func newLocalEngine(store *memStore) *Engine {
	registry := node.NewRegistry(nodes.All(), nodes.Icons())
	invoker := NewLocalInvoker(registry, nil, nil)
	return NewEngine(store, &tenantResolver{}, invoker)
}

func TestEngine_ConditionTrueInvokesEmail(t *testing.T) {
	store := &memStore{}
	engine := newLocalEngine(store)

	trigger := map[string]any{"status": "active", "email": "alice@example.com"}
	exec, err := engine.Run(context.Background(), conditionWorkflow(), "tenant-a", trigger)

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, exec.Status)
	require.Contains(t, exec.Output, "email")

	emailOut := exec.Output["email"].(map[string]any)
	items := emailOut["items"].([]node.ExecutionData)
	require.Len(t, items, 1)
	assert.Equal(t, "alice@example.com", items[0].JSON["to"])
}

func TestEngine_ConditionFalseSkipsEmail(t *testing.T) {
	store := &memStore{}
	engine := newLocalEngine(store)

	trigger := map[string]any{"status": "inactive", "email": "alice@example.com"}
	exec, err := engine.Run(context.Background(), conditionWorkflow(), "tenant-a", trigger)

	require.NoError(t, err)
	// The false channel has no connected step, so the run completes with
	// the email step never invoked.
	assert.Equal(t, StatusCompleted, exec.Status)
	assert.NotContains(t, exec.Output, "email")
	assert.Contains(t, exec.Output, "check")

	var skipped bool
	for _, l := range store.logs {
		if l.StepID == "email" && l.Level == LevelInfo {
			skipped = true
		}
	}
	assert.True(t, skipped, "expected a skip log entry for the email step")
}

// twoBranchWorkflow has steps on both condition channels, in the order the
// graph flattener emits them: the whole true subtree, then the false subtree.
func twoBranchWorkflow() *workflow.Workflow {
	return &workflow.Workflow{
		ID:       "wf-branches",
		TenantID: "tenant-a",
		Name:     "Both Branches",
		Steps: []workflow.Step{
			{ID: "check", Type: "condition", Config: map[string]any{
				"field": "status", "operation": "equal", "value": "active",
			}},
			{ID: "onTrue", Type: "set", Branch: "true", Config: map[string]any{
				"values": `{"routed": "true"}`,
			}},
			{ID: "afterTrue", Type: "set", Branch: "true", Config: map[string]any{
				"values": `{"stage": "done"}`,
			}},
			{ID: "onFalse", Type: "set", Branch: "false", Config: map[string]any{
				"values": `{"routed": "false"}`,
			}},
		},
	}
}

func TestEngine_UntakenBranchSkippedAfterNonRoutingStep(t *testing.T) {
	store := &memStore{}
	engine := newLocalEngine(store)

	trigger := map[string]any{"status": "active"}
	exec, err := engine.Run(context.Background(), twoBranchWorkflow(), "tenant-a", trigger)

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, exec.Status)

	// The set steps between the condition and the false-branch step report
	// no channel; that must not reopen the untaken branch.
	assert.Contains(t, exec.Output, "onTrue")
	assert.Contains(t, exec.Output, "afterTrue")
	assert.NotContains(t, exec.Output, "onFalse", "false-branch step executed on a true-routed run")

	var skipped bool
	for _, l := range store.logs {
		if l.StepID == "onFalse" && l.Level == LevelInfo {
			skipped = true
		}
	}
	assert.True(t, skipped, "expected a skip log entry for the false-branch step")
}

func TestEngine_FalseRoutedRunSkipsTrueBranch(t *testing.T) {
	store := &memStore{}
	engine := newLocalEngine(store)

	trigger := map[string]any{"status": "inactive"}
	exec, err := engine.Run(context.Background(), twoBranchWorkflow(), "tenant-a", trigger)

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, exec.Status)
	assert.NotContains(t, exec.Output, "onTrue")
	assert.NotContains(t, exec.Output, "afterTrue")
	assert.Contains(t, exec.Output, "onFalse")
}

func TestEngine_UnknownIntegrationFailsRun(t *testing.T) {
	store := &memStore{}
	engine := newLocalEngine(store)

	wf := flatWorkflow("A")
	wf.Steps[0].Type = "doesNotExist"

	exec, err := engine.Run(context.Background(), wf, "tenant-a", map[string]any{})

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, exec.Status)
	require.NotEmpty(t, store.logs)
	assert.Contains(t, store.logs[len(store.logs)-1].Message, "no such integration")
}

func TestEngine_FlattensVisualGraph(t *testing.T) {
	store := &memStore{}
	invoker := &scriptInvoker{}
	engine := NewEngine(store, &tenantResolver{}, invoker)

	wf := &workflow.Workflow{
		ID: "wf-visual",
		Nodes: []workflow.Node{
			{ID: "n1", Type: "webhookTrigger"},
			{ID: "n2", Type: "set", Data: workflow.NodeData{Config: map[string]any{"values": "{}"}}},
		},
		Edges: []workflow.Edge{{ID: "e1", Source: "n1", Target: "n2"}},
	}

	exec, err := engine.Run(context.Background(), wf, "tenant-a", map[string]any{})

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, exec.Status)
	require.Len(t, invoker.calls, 2)
	assert.Equal(t, "n1", invoker.calls[0].StepID)
	assert.Equal(t, "n2", invoker.calls[1].StepID)
}
