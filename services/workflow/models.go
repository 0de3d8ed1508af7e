package workflow

import "time"

// Workflow is a persisted workflow definition. Steps is the canonical
// execution shape; Nodes/Edges hold the visual editor's graph for workflows
// authored on the canvas, flattened into Steps before execution.
type Workflow struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Steps       []Step    `json:"steps"`
	Nodes       []Node    `json:"nodes,omitempty"`
	Edges       []Edge    `json:"edges,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Step is one configured node instance in a workflow's ordered step list.
// The engine reads steps verbatim and never mutates them.
type Step struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Config map[string]any `json:"config"`
	// Branch is the output channel of the upstream routing node this step
	// hangs off (e.g. "true"/"false" under a condition). Set when a visual
	// graph is flattened; empty for steps that always run.
	Branch   string    `json:"branch,omitempty"`
	Position *Position `json:"position,omitempty"`
	Order    int       `json:"order,omitempty"`
}

// Position holds canvas coordinates. Presentation only.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one element of the visual graph shape.
type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// NodeData holds a visual node's display info and configured parameters.
type NodeData struct {
	Label       string         `json:"label"`
	Description string         `json:"description,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
}

// Edge is a directed connection between two visual nodes. SourceHandle names
// the output channel the edge leaves through.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Label        string `json:"label,omitempty"`
}
