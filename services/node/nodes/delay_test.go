package nodes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"halo-platform/api/services/node"
)

func TestDelay_ImmediateResume(t *testing.T) {
	config := map[string]any{
		"waitTime":   float64(5),
		"timeUnit":   "seconds",
		"resumeMode": "immediately",
	}
	input := []node.ExecutionData{{JSON: map[string]any{"id": "a"}}}
	ec := node.NewExecuteContext(&Delay, config, input, nil, nil)

	start := time.Now()
	outputs, err := Delay.Execute(context.Background(), ec)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Len(t, outputs, 1)
	require.Len(t, outputs[0], 1)
	// Immediate mode must not hold the worker.
	assert.Less(t, elapsed, time.Second)

	item := outputs[0][0].JSON
	assert.Equal(t, int64(5000), item["estimatedDelayMs"])

	resumeAt, err := time.Parse(time.RFC3339Nano, item["resumeAt"].(string))
	require.NoError(t, err)
	expected := start.Add(5 * time.Second)
	assert.WithinDuration(t, expected, resumeAt, 500*time.Millisecond)

	// Input payload passes through.
	assert.Equal(t, "a", item["id"])
}

func TestDelay_AfterWaitBlocks(t *testing.T) {
	config := map[string]any{
		"waitTime":   float64(0.05),
		"timeUnit":   "seconds",
		"resumeMode": "afterWait",
	}
	ec := node.NewExecuteContext(&Delay, config, nil, nil, nil)

	start := time.Now()
	_, err := Delay.Execute(context.Background(), ec)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestDelay_AfterWaitHonorsCancellation(t *testing.T) {
	config := map[string]any{
		"waitTime":   float64(10),
		"timeUnit":   "seconds",
		"resumeMode": "afterWait",
	}
	ec := node.NewExecuteContext(&Delay, config, nil, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Delay.Execute(ctx, ec)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDelay_TimeUnits(t *testing.T) {
	tests := []struct {
		unit   string
		wantMs int64
	}{
		{"seconds", 2000},
		{"minutes", 120000},
		{"hours", 7200000},
	}

	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			config := map[string]any{"waitTime": float64(2), "timeUnit": tt.unit}
			ec := node.NewExecuteContext(&Delay, config, nil, nil, nil)

			outputs, err := Delay.Execute(context.Background(), ec)

			require.NoError(t, err)
			require.Len(t, outputs[0], 1)
			assert.Equal(t, tt.wantMs, outputs[0][0].JSON["estimatedDelayMs"])
		})
	}
}

func TestDelay_RejectsNegativeWait(t *testing.T) {
	config := map[string]any{"waitTime": float64(-1)}
	ec := node.NewExecuteContext(&Delay, config, nil, nil, nil)

	_, err := Delay.Execute(context.Background(), ec)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "waitTime")
}

func TestDelay_UnknownUnitRejected(t *testing.T) {
	config := map[string]any{"waitTime": float64(1), "timeUnit": "fortnights"}
	ec := node.NewExecuteContext(&Delay, config, nil, nil, nil)

	_, err := Delay.Execute(context.Background(), ec)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "fortnights")
}
