package nodes

import (
	"context"
	"fmt"
	"time"

	"halo-platform/api/services/node"
)

// Delay annotates items with a computed resume time. With resumeMode
// "immediately" it returns at once and leaves scheduling to the caller; with
// "afterWait" it performs a best-effort in-process wait, honoring ctx
// cancellation. True suspend-and-resume with persisted state is not
// implemented.
var Delay = node.Definition{
	Name:        "delay",
	DisplayName: "Delay",
	Description: "Pause the workflow for a configured duration",
	Group:       []string{"logic"},
	Version:     1,
	Icon:        "delay",
	Inputs:      []string{"main"},
	Outputs:     []string{"main"},
	Properties: []node.Property{
		{Name: "waitTime", DisplayName: "Wait Time", Kind: node.KindNumber, Default: float64(1), Required: true},
		{
			Name: "timeUnit", DisplayName: "Time Unit", Kind: node.KindOptions, Default: "seconds",
			Options: []node.Option{
				{Name: "Seconds", Value: "seconds"},
				{Name: "Minutes", Value: "minutes"},
				{Name: "Hours", Value: "hours"},
			},
		},
		{
			Name: "resumeMode", DisplayName: "Resume Mode", Kind: node.KindOptions, Default: "immediately",
			Options: []node.Option{
				{Name: "Immediately", Value: "immediately"},
				{Name: "After Waiting", Value: "afterWait"},
			},
		},
	},
	Execute: executeDelay,
}

func executeDelay(ctx context.Context, ec node.ExecuteContext) ([][]node.ExecutionData, error) {
	items := ec.InputData()
	if len(items) == 0 {
		items = []node.ExecutionData{{JSON: map[string]any{}}}
	}

	waitRaw, err := ec.Parameter("waitTime", 0)
	if err != nil {
		return nil, err
	}
	waitTime, ok := node.ToFloat64(waitRaw)
	if !ok || waitTime < 0 {
		return nil, fmt.Errorf("waitTime must be a non-negative number")
	}
	unit, err := stringParam(ec, "timeUnit", 0)
	if err != nil {
		return nil, err
	}
	mode, err := stringParam(ec, "resumeMode", 0)
	if err != nil {
		return nil, err
	}

	duration, err := delayDuration(waitTime, unit)
	if err != nil {
		return nil, err
	}
	resumeAt := time.Now().Add(duration)

	if mode == "afterWait" {
		timer := time.NewTimer(duration)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	out := make([]node.ExecutionData, 0, len(items))
	for _, item := range items {
		annotated := cloneJSON(item.JSON)
		annotated["waitTime"] = waitTime
		annotated["timeUnit"] = unit
		annotated["estimatedDelayMs"] = duration.Milliseconds()
		annotated["resumeAt"] = resumeAt.UTC().Format(time.RFC3339Nano)
		out = append(out, node.ExecutionData{JSON: annotated, Binary: item.Binary})
	}
	return [][]node.ExecutionData{out}, nil
}

func delayDuration(waitTime float64, unit string) (time.Duration, error) {
	switch unit {
	case "seconds":
		return time.Duration(waitTime * float64(time.Second)), nil
	case "minutes":
		return time.Duration(waitTime * float64(time.Minute)), nil
	case "hours":
		return time.Duration(waitTime * float64(time.Hour)), nil
	default:
		return 0, fmt.Errorf("unknown time unit %q", unit)
	}
}
