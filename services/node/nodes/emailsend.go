package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"halo-platform/api/services/node"
)

// EmailSend drafts an email payload per input item with {{field}} template
// substitution from the item's data. Actual delivery happens through the
// integration backend; this node produces the fully rendered message.
var EmailSend = node.Definition{
	Name:        "emailSend",
	DisplayName: "Email Send",
	Description: "Draft and queue an email from a template",
	Group:       []string{"action"},
	Version:     1,
	Icon:        "emailsend",
	Inputs:      []string{"main"},
	Outputs:     []string{"main"},
	Properties: []node.Property{
		{Name: "to", DisplayName: "To", Kind: node.KindString, Required: true},
		{Name: "subject", DisplayName: "Subject", Kind: node.KindString, Required: true},
		{Name: "body", DisplayName: "Body", Kind: node.KindString, Default: ""},
	},
	Credentials: []node.CredentialRequirement{
		{Name: "smtp", Required: false},
	},
	Execute: executeEmailSend,
}

func executeEmailSend(_ context.Context, ec node.ExecuteContext) ([][]node.ExecutionData, error) {
	from := "no-reply@halo.app"
	if creds, ok := ec.Credentials("smtp"); ok {
		if user := creds["user"]; user != "" {
			from = user
		}
	}

	out := make([]node.ExecutionData, 0, len(ec.InputData()))
	for i, item := range ec.InputData() {
		to, err := stringParam(ec, "to", i)
		if err != nil {
			return nil, err
		}
		if to == "" {
			return nil, fmt.Errorf("recipient address is required")
		}
		subject, err := stringParam(ec, "subject", i)
		if err != nil {
			return nil, err
		}
		body, err := stringParam(ec, "body", i)
		if err != nil {
			return nil, err
		}

		out = append(out, node.ExecutionData{JSON: map[string]any{
			"to":        renderTemplate(to, item.JSON),
			"from":      from,
			"subject":   renderTemplate(subject, item.JSON),
			"body":      renderTemplate(body, item.JSON),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"emailSent": true,
		}})
	}
	return [][]node.ExecutionData{out}, nil
}

// renderTemplate replaces {{key}} placeholders with values from the item
// payload. Unknown placeholders are left untouched.
func renderTemplate(s string, data map[string]any) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{{"+k+"}}", stringify(v))
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
