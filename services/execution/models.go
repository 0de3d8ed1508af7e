package execution

import "time"

// Status is the lifecycle state of one workflow run. There is no pause or
// cancel state; a run either finishes or fails on its first step error.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Level classifies an execution log entry.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Execution is one run of a workflow.
type Execution struct {
	ID         string         `json:"id"`
	WorkflowID string         `json:"workflowId"`
	TenantID   string         `json:"tenantId"`
	Status     Status         `json:"status"`
	// CurrentStep is advisory metadata for observers, updated just before
	// each step executes.
	CurrentStep string         `json:"currentStep,omitempty"`
	Input       map[string]any `json:"input"`
	// Output holds the full accumulated step outputs; set only when the
	// run completes. A failed run exposes partial progress through its
	// log entries instead.
	Output      map[string]any `json:"output,omitempty"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// LogEntry is one row of a run's append-only audit trail.
type LogEntry struct {
	ID          string         `json:"id"`
	ExecutionID string         `json:"executionId"`
	StepID      string         `json:"stepId"`
	Level       Level          `json:"level"`
	Message     string         `json:"message"`
	Data        map[string]any `json:"data,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Patch holds the mutable execution fields a status update may touch. Nil
// fields are left unchanged.
type Patch struct {
	Status      *Status
	CurrentStep *string
	Output      map[string]any
	CompletedAt *time.Time
}
