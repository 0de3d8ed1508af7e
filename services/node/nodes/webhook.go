package nodes

import (
	"context"

	"halo-platform/api/services/node"
)

// WebhookTrigger is the entry node of a workflow. The engine delivers the
// trigger payload as its input items; the node passes them through unchanged
// so downstream steps see the payload as ordinary items.
var WebhookTrigger = node.Definition{
	Name:        "webhookTrigger",
	DisplayName: "Webhook Trigger",
	Description: "Start the workflow when a webhook is received",
	Group:       []string{"trigger"},
	Version:     1,
	Icon:        "webhooktrigger",
	Inputs:      []string{},
	Outputs:     []string{"main"},
	Properties: []node.Property{
		{Name: "path", DisplayName: "Path", Kind: node.KindString, Default: ""},
		{
			Name: "method", DisplayName: "Method", Kind: node.KindOptions, Default: "POST",
			Options: []node.Option{
				{Name: "GET", Value: "GET"},
				{Name: "POST", Value: "POST"},
			},
		},
	},
	Execute: executeWebhookTrigger,
}

func executeWebhookTrigger(_ context.Context, ec node.ExecuteContext) ([][]node.ExecutionData, error) {
	items := ec.InputData()
	out := make([]node.ExecutionData, 0, len(items))
	for _, item := range items {
		out = append(out, node.ExecutionData{JSON: cloneJSON(item.JSON), Binary: item.Binary})
	}
	return [][]node.ExecutionData{out}, nil
}
