package execution

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"halo-platform/api/services/node"
	"halo-platform/api/services/workflow"
)

// RecordStore is the persistence surface the engine writes run state through.
type RecordStore interface {
	CreateExecution(ctx context.Context, exec *Execution) error
	UpdateExecution(ctx context.Context, id string, patch Patch) error
	AppendLog(ctx context.Context, entry *LogEntry) error
}

// CredentialResolver finds a tenant's credential bundle for an integration.
type CredentialResolver interface {
	Resolve(ctx context.Context, tenantID, integrationID string) (map[string]string, error)
}

// Engine drives one workflow run from trigger to completion or failure.
// Steps execute strictly in array order; later steps may reference earlier
// outputs, so no reordering is safe. Separate runs share nothing but the
// backing store and may execute concurrently.
type Engine struct {
	store       RecordStore
	credentials CredentialResolver
	invoker     Invoker
}

// NewEngine creates an Engine over the given collaborators.
func NewEngine(store RecordStore, credentials CredentialResolver, invoker Invoker) *Engine {
	return &Engine{store: store, credentials: credentials, invoker: invoker}
}

// Run executes a workflow's steps against the trigger input. The returned
// execution reflects the run's terminal state. An error is returned only for
// infrastructure failures (store writes, invoker transport); a step failure
// is reported through the execution's failed status, never as an error.
func (e *Engine) Run(ctx context.Context, wf *workflow.Workflow, tenantID string, trigger map[string]any) (*Execution, error) {
	steps := wf.Steps
	if len(steps) == 0 && len(wf.Nodes) > 0 {
		var err error
		steps, err = workflow.FlattenGraph(wf.Nodes, wf.Edges)
		if err != nil {
			return nil, fmt.Errorf("flatten workflow graph: %w", err)
		}
	}

	exec := &Execution{
		WorkflowID: wf.ID,
		TenantID:   tenantID,
		Status:     StatusRunning,
		Input:      trigger,
		StartedAt:  time.Now().UTC(),
	}
	if err := e.store.CreateExecution(ctx, exec); err != nil {
		return nil, fmt.Errorf("create execution record: %w", err)
	}

	outputs := map[string]any{"trigger": trigger}
	items := []node.ExecutionData{{JSON: trigger}}
	takenChannel := ""

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, e.fail(ctx, exec, step.ID, fmt.Sprintf("run canceled: %v", err))
		}

		// Steps hanging off an untaken routing channel do not run.
		if step.Branch != "" && takenChannel != "" && step.Branch != takenChannel {
			e.log(ctx, exec.ID, step.ID, LevelInfo, "Step skipped: branch not taken", map[string]any{
				"branch": step.Branch,
				"taken":  takenChannel,
			})
			continue
		}

		stepID := step.ID
		if err := e.store.UpdateExecution(ctx, exec.ID, Patch{CurrentStep: &stepID}); err != nil {
			// Advisory metadata only; the run proceeds.
			slog.Warn("Failed to update current step", "execution", exec.ID, "step", stepID, "error", err)
		}
		exec.CurrentStep = stepID

		creds, err := e.credentials.Resolve(ctx, tenantID, step.Type)
		if err != nil {
			return nil, e.fail(ctx, exec, step.ID, fmt.Sprintf("credential lookup failed: %v", err))
		}

		result, err := e.invoker.Invoke(ctx, InvokeRequest{
			WorkflowID:      wf.ID,
			StepID:          step.ID,
			IntegrationID:   step.Type,
			Config:          step.Config,
			Input:           items,
			TriggerInput:    trigger,
			PreviousOutputs: outputs,
			Credentials:     creds,
			TenantID:        tenantID,
		})
		if err != nil {
			return nil, e.fail(ctx, exec, step.ID, fmt.Sprintf("integration invocation failed: %v", err))
		}
		if !result.Success {
			return e.failStep(ctx, exec, step.ID, result)
		}

		outputs[step.ID] = result.Output
		if result.Items != nil {
			items = result.Items
		}
		// Only routing nodes report a channel; a single-output step must not
		// clear the branch taken upstream.
		if result.Channel != "" {
			takenChannel = result.Channel
		}

		e.log(ctx, exec.ID, step.ID, LevelInfo, "Step completed", map[string]any{
			"integration": step.Type,
			"itemCount":   len(result.Items),
		})
	}

	completed := StatusCompleted
	completedAt := time.Now().UTC()
	if err := e.store.UpdateExecution(ctx, exec.ID, Patch{
		Status:      &completed,
		Output:      outputs,
		CompletedAt: &completedAt,
	}); err != nil {
		return nil, fmt.Errorf("persist execution result: %w", err)
	}

	exec.Status = StatusCompleted
	exec.Output = outputs
	exec.CompletedAt = &completedAt
	return exec, nil
}

// failStep records a step failure and terminates the run. Remaining steps
// never execute; partial outputs stay visible only through the log stream.
func (e *Engine) failStep(ctx context.Context, exec *Execution, stepID string, result *InvokeResult) (*Execution, error) {
	e.log(ctx, exec.ID, stepID, LevelError, result.Error, map[string]any{"logs": result.Logs})

	failed := StatusFailed
	completedAt := time.Now().UTC()
	if err := e.store.UpdateExecution(ctx, exec.ID, Patch{Status: &failed, CompletedAt: &completedAt}); err != nil {
		return nil, fmt.Errorf("persist execution failure: %w", err)
	}

	exec.Status = StatusFailed
	exec.CompletedAt = &completedAt
	return exec, nil
}

// fail marks the run failed for an infrastructure error and returns the
// error to the caller.
func (e *Engine) fail(ctx context.Context, exec *Execution, stepID, message string) error {
	e.log(ctx, exec.ID, stepID, LevelError, message, nil)

	failed := StatusFailed
	completedAt := time.Now().UTC()
	if err := e.store.UpdateExecution(ctx, exec.ID, Patch{Status: &failed, CompletedAt: &completedAt}); err != nil {
		slog.Error("Failed to persist execution failure", "execution", exec.ID, "error", err)
	}
	exec.Status = StatusFailed
	return fmt.Errorf("%s", message)
}

func (e *Engine) log(ctx context.Context, executionID, stepID string, level Level, message string, data map[string]any) {
	entry := &LogEntry{
		ExecutionID: executionID,
		StepID:      stepID,
		Level:       level,
		Message:     message,
		Data:        data,
		Timestamp:   time.Now().UTC(),
	}
	if err := e.store.AppendLog(ctx, entry); err != nil {
		slog.Warn("Failed to append execution log", "execution", executionID, "step", stepID, "error", err)
	}
}
