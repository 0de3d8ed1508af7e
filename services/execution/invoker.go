package execution

import (
	"context"
	"fmt"

	"halo-platform/api/services/node"
)

// InvokeRequest carries everything an integration needs to execute one step.
type InvokeRequest struct {
	WorkflowID    string
	StepID        string
	IntegrationID string
	Config        map[string]any
	Input         []node.ExecutionData
	TriggerInput  map[string]any
	// PreviousOutputs maps step id (and "trigger") to that step's stored
	// output, for integrations that reference upstream data.
	PreviousOutputs map[string]any
	Credentials     map[string]string
	TenantID        string
}

// InvokeResult is the outcome of one integration invocation.
type InvokeResult struct {
	Success bool
	// Output is stored under previousStepOutputs[stepID] on success.
	Output map[string]any
	// Items are the data flowing to the next step.
	Items []node.ExecutionData
	// Channel names the output channel a routing node sent its items
	// through; empty for single-output nodes.
	Channel string
	Error   string
	Logs    []string
}

// Invoker executes one step's integration logic. Implementations are treated
// as opaque, possibly slow, possibly failing black boxes by the engine.
type Invoker interface {
	Invoke(ctx context.Context, req InvokeRequest) (*InvokeResult, error)
}

// LocalInvoker runs registry-backed node definitions in process. Integration
// ids with no registered definition are delegated to the fallback invoker
// (the remote integration backend) when one is configured.
type LocalInvoker struct {
	registry *node.Registry
	helpers  node.Helpers
	fallback Invoker
}

// NewLocalInvoker creates a LocalInvoker. fallback may be nil; unknown
// integration ids then fail the step.
func NewLocalInvoker(registry *node.Registry, helpers node.Helpers, fallback Invoker) *LocalInvoker {
	if helpers == nil {
		helpers = node.NewHTTPHelpers(nil)
	}
	return &LocalInvoker{registry: registry, helpers: helpers, fallback: fallback}
}

func (li *LocalInvoker) Invoke(ctx context.Context, req InvokeRequest) (*InvokeResult, error) {
	entry, ok := li.registry.Get(req.IntegrationID)
	if !ok {
		if li.fallback != nil {
			return li.fallback.Invoke(ctx, req)
		}
		return &InvokeResult{
			Success: false,
			Error:   fmt.Sprintf("no such integration: %s", req.IntegrationID),
		}, nil
	}

	ec := node.NewExecuteContext(&entry.Definition, req.Config, req.Input, req.Credentials, li.helpers)
	outputs, err := entry.Execute(ctx, ec)
	if err != nil {
		return &InvokeResult{Success: false, Error: err.Error()}, nil
	}

	return resultFromOutputs(&entry.Definition, outputs), nil
}

// resultFromOutputs converts a node's channel-partitioned outputs into an
// InvokeResult. For multi-channel nodes the taken channel is the one holding
// items; a node that emits on no channel takes its last declared channel with
// no items (a condition whose item went nowhere would violate the contract,
// but an empty input is legal).
func resultFromOutputs(def *node.Definition, outputs [][]node.ExecutionData) *InvokeResult {
	res := &InvokeResult{Success: true}

	if len(outputs) == 0 {
		res.Output = map[string]any{"items": []node.ExecutionData{}}
		return res
	}

	takenIdx := 0
	if len(outputs) > 1 {
		takenIdx = len(outputs) - 1
		for i, ch := range outputs {
			if len(ch) > 0 {
				takenIdx = i
				break
			}
		}
		if takenIdx < len(def.Outputs) {
			res.Channel = def.Outputs[takenIdx]
		}
	}

	items := outputs[takenIdx]
	if items == nil {
		items = []node.ExecutionData{}
	}
	res.Items = items
	res.Output = map[string]any{"items": items}
	if res.Channel != "" {
		res.Output["channel"] = res.Channel
	}
	return res
}
