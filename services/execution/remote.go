package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"halo-platform/api/services/node"
)

// RemoteInvoker calls the hosted integration backend for service-style
// integrations (CRM, email providers, chat) that execute outside this
// process. The catalog supplies each integration's default endpoint and
// lifted parameter descriptors; declared defaults are applied to the config
// before it is sent.
type RemoteInvoker struct {
	baseURL    string
	catalog    *node.Catalog
	httpClient *http.Client
}

// NewRemoteInvoker returns an invoker with a 30-second timeout.
func NewRemoteInvoker(baseURL string, catalog *node.Catalog) *RemoteInvoker {
	return &RemoteInvoker{
		baseURL:    baseURL,
		catalog:    catalog,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type remoteInvokePayload struct {
	IntegrationID string            `json:"integrationId"`
	EndpointID    string            `json:"endpointId"`
	Config        map[string]any    `json:"config"`
	Credentials   map[string]string `json:"credentials"`
	Context       struct {
		WorkflowID      string         `json:"workflowId"`
		StepID          string         `json:"stepId"`
		TenantID        string         `json:"tenantId"`
		TriggerInput    map[string]any `json:"triggerInput"`
		PreviousOutputs map[string]any `json:"previousOutputs"`
	} `json:"context"`
}

type remoteInvokeResponse struct {
	Success bool           `json:"success"`
	Output  map[string]any `json:"output,omitempty"`
	Error   string         `json:"error,omitempty"`
	Logs    []string       `json:"logs,omitempty"`
}

func (ri *RemoteInvoker) Invoke(ctx context.Context, req InvokeRequest) (*InvokeResult, error) {
	entry, ok := ri.catalog.Get(req.IntegrationID)
	if !ok {
		return &InvokeResult{
			Success: false,
			Error:   fmt.Sprintf("no such integration: %s", req.IntegrationID),
		}, nil
	}

	payload := remoteInvokePayload{
		IntegrationID: req.IntegrationID,
		EndpointID:    entry.DefaultEndpoint.ID,
		Config:        applyDefaults(entry.Properties, req.Config),
		Credentials:   req.Credentials,
	}
	payload.Context.WorkflowID = req.WorkflowID
	payload.Context.StepID = req.StepID
	payload.Context.TenantID = req.TenantID
	payload.Context.TriggerInput = req.TriggerInput
	payload.Context.PreviousOutputs = req.PreviousOutputs

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode invoke payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, ri.baseURL+"/invoke", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create invoke request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := ri.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("integration backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("integration backend returned status %d", resp.StatusCode)
	}

	var decoded remoteInvokeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode invoke response: %w", err)
	}

	result := &InvokeResult{
		Success: decoded.Success,
		Output:  decoded.Output,
		Error:   decoded.Error,
		Logs:    decoded.Logs,
	}
	if decoded.Success {
		result.Items = []node.ExecutionData{{JSON: decoded.Output}}
	}
	return result, nil
}

// applyDefaults fills unset config keys with lifted property defaults.
func applyDefaults(props []node.Property, config map[string]any) map[string]any {
	out := make(map[string]any, len(config)+len(props))
	for k, v := range config {
		out[k] = v
	}
	for _, p := range props {
		if _, ok := out[p.Name]; !ok && p.Default != nil {
			out[p.Name] = p.Default
		}
	}
	return out
}
