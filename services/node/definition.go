package node

import (
	"context"
)

// ParameterKind is the tagged variant for a node parameter descriptor.
// The legacy service catalog is lifted into the same kinds (see legacy.go).
type ParameterKind string

const (
	KindString     ParameterKind = "string"
	KindNumber     ParameterKind = "number"
	KindBoolean    ParameterKind = "boolean"
	KindOptions    ParameterKind = "options"
	KindJSON       ParameterKind = "json"
	KindCollection ParameterKind = "collection"
)

// Option is one selectable value for a KindOptions parameter.
type Option struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DisplayOptions restricts when a parameter is shown in the editor.
// Show maps another parameter's name to the values under which this
// parameter is visible. Visibility does not affect resolution: a hidden
// parameter still resolves to its default when looked up.
type DisplayOptions struct {
	Show map[string][]any `json:"show,omitempty"`
}

// Property describes one configurable parameter of a node.
type Property struct {
	Name           string          `json:"name"`
	DisplayName    string          `json:"displayName"`
	Description    string          `json:"description,omitempty"`
	Kind           ParameterKind   `json:"kind"`
	Default        any             `json:"default,omitempty"`
	Required       bool            `json:"required,omitempty"`
	Options        []Option        `json:"options,omitempty"`
	DisplayOptions *DisplayOptions `json:"displayOptions,omitempty"`
}

// CredentialRequirement names a credential bundle a node can use.
type CredentialRequirement struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// ExecutionData is the unit exchanged between nodes: a JSON record payload
// plus optional binary attachments.
type ExecutionData struct {
	JSON   map[string]any `json:"json"`
	Binary map[string]any `json:"binary,omitempty"`
}

// ExecuteFunc is a node's behavior. The outer index of the returned slice is
// the output channel (matching Definition.Outputs), the inner slice holds the
// items flowing on that channel. Implementations must not mutate their input
// and must return fresh item slices.
type ExecuteFunc func(ctx context.Context, ec ExecuteContext) ([][]ExecutionData, error)

// Definition is the static descriptor plus executable behavior for one node
// type. Each node module exports exactly one Definition constant; the
// registry is assembled from the explicit list in nodes.All.
type Definition struct {
	Name        string                  `json:"name"`
	DisplayName string                  `json:"displayName"`
	Description string                  `json:"description"`
	Group       []string                `json:"group"`
	Version     int                     `json:"version"`
	Icon        string                  `json:"icon,omitempty"`
	Inputs      []string                `json:"inputs"`
	Outputs     []string                `json:"outputs"`
	Properties  []Property              `json:"properties"`
	Credentials []CredentialRequirement `json:"credentials,omitempty"`
	Execute     ExecuteFunc             `json:"-"`
}

// ExecuteContext is the per-step facade handed to a node's Execute function.
type ExecuteContext interface {
	// InputData returns the items arriving on the node's primary input.
	InputData() []ExecutionData

	// Parameter resolves a configured parameter for the given item index,
	// falling back to the property's declared default when unset or when
	// the index is beyond a per-item override array. The only error case
	// is a malformed value for a json-kind parameter.
	Parameter(name string, itemIndex int) (any, error)

	// Credentials returns the resolved credential bundle for a named
	// credential requirement, or false when none is configured.
	Credentials(credType string) (map[string]string, bool)

	// Helpers exposes generic I/O for nodes that call external services.
	Helpers() Helpers
}

// Helpers is the outbound I/O surface available to nodes.
type Helpers interface {
	Request(ctx context.Context, opts RequestOptions) (*Response, error)
}

// RequestOptions describes one outbound HTTP request.
type RequestOptions struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    any
}

// Response is the result of an outbound HTTP request.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// ToFloat64 converts a JSON-ish value to float64, handling the numeric types
// encoding/json produces.
func ToFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
