package nodes

import (
	"context"
	"encoding/json"
	"fmt"

	"halo-platform/api/services/node"
)

// HTTPRequest performs one outbound HTTP call per input item through the
// context's request helper.
var HTTPRequest = node.Definition{
	Name:        "httpRequest",
	DisplayName: "HTTP Request",
	Description: "Call an arbitrary HTTP endpoint",
	Group:       []string{"action"},
	Version:     1,
	Icon:        "httprequest",
	Inputs:      []string{"main"},
	Outputs:     []string{"main"},
	Properties: []node.Property{
		{
			Name: "method", DisplayName: "Method", Kind: node.KindOptions, Default: "GET",
			Options: []node.Option{
				{Name: "GET", Value: "GET"},
				{Name: "POST", Value: "POST"},
				{Name: "PUT", Value: "PUT"},
				{Name: "PATCH", Value: "PATCH"},
				{Name: "DELETE", Value: "DELETE"},
			},
		},
		{Name: "url", DisplayName: "URL", Kind: node.KindString, Required: true},
		{Name: "headers", DisplayName: "Headers", Kind: node.KindJSON, Default: "{}"},
		{
			Name: "body", DisplayName: "Body", Kind: node.KindJSON, Default: "",
			DisplayOptions: &node.DisplayOptions{Show: map[string][]any{
				"method": {"POST", "PUT", "PATCH"},
			}},
		},
	},
	Execute: executeHTTPRequest,
}

func executeHTTPRequest(ctx context.Context, ec node.ExecuteContext) ([][]node.ExecutionData, error) {
	items := ec.InputData()
	if len(items) == 0 {
		items = []node.ExecutionData{{JSON: map[string]any{}}}
	}

	out := make([]node.ExecutionData, 0, len(items))
	for i := range items {
		method, err := stringParam(ec, "method", i)
		if err != nil {
			return nil, err
		}
		url, err := stringParam(ec, "url", i)
		if err != nil {
			return nil, err
		}
		if url == "" {
			return nil, fmt.Errorf("url is required")
		}

		headersRaw, err := ec.Parameter("headers", i)
		if err != nil {
			return nil, err
		}
		headers := map[string]string{}
		if headersMap, ok := headersRaw.(map[string]any); ok {
			for k, v := range headersMap {
				headers[k] = stringify(v)
			}
		}

		body, err := ec.Parameter("body", i)
		if err != nil {
			return nil, err
		}

		resp, err := ec.Helpers().Request(ctx, node.RequestOptions{
			Method:  method,
			URL:     url,
			Headers: headers,
			Body:    body,
		})
		if err != nil {
			return nil, fmt.Errorf("http request failed: %w", err)
		}

		result := map[string]any{"statusCode": resp.StatusCode}
		var parsed any
		if len(resp.Body) > 0 && json.Unmarshal(resp.Body, &parsed) == nil {
			result["data"] = parsed
		} else {
			result["body"] = string(resp.Body)
		}
		out = append(out, node.ExecutionData{JSON: result})
	}
	return [][]node.ExecutionData{out}, nil
}
