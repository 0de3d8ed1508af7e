package nodes

import (
	"context"
	"fmt"

	"halo-platform/api/services/node"
)

// ErrorHandler expresses recovery policy as ordinary workflow logic. The
// engine itself never retries; a workflow that wants to tolerate upstream
// errors places this node after the step that may fail. Items carrying an
// "error" field are either passed through annotated (continue) or turned
// into a step failure with a custom message (stop).
var ErrorHandler = node.Definition{
	Name:        "errorHandler",
	DisplayName: "Error Handler",
	Description: "Decide how item-level errors flow through the workflow",
	Group:       []string{"logic"},
	Version:     1,
	Icon:        "errorhandler",
	Inputs:      []string{"main"},
	Outputs:     []string{"main"},
	Properties: []node.Property{
		{
			Name: "mode", DisplayName: "Mode", Kind: node.KindOptions, Default: "stop",
			Options: []node.Option{
				{Name: "Stop Workflow", Value: "stop"},
				{Name: "Continue", Value: "continue"},
			},
		},
		{
			Name: "message", DisplayName: "Error Message", Kind: node.KindString, Default: "",
			DisplayOptions: &node.DisplayOptions{Show: map[string][]any{"mode": {"stop"}}},
		},
	},
	Execute: executeErrorHandler,
}

func executeErrorHandler(_ context.Context, ec node.ExecuteContext) ([][]node.ExecutionData, error) {
	mode, err := stringParam(ec, "mode", 0)
	if err != nil {
		return nil, err
	}

	out := make([]node.ExecutionData, 0, len(ec.InputData()))
	for i, item := range ec.InputData() {
		errVal, failed := item.JSON["error"]
		if failed && mode == "stop" {
			message, perr := stringParam(ec, "message", i)
			if perr != nil {
				return nil, perr
			}
			if message == "" {
				message = stringify(errVal)
			}
			return nil, fmt.Errorf("upstream error: %s", message)
		}

		next := cloneJSON(item.JSON)
		if failed {
			next["errorHandled"] = true
		}
		out = append(out, node.ExecutionData{JSON: next, Binary: item.Binary})
	}
	return [][]node.ExecutionData{out}, nil
}
