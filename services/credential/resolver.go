package credential

import (
	"context"
	"fmt"
)

// ActiveLister abstracts credential queries for testability.
type ActiveLister interface {
	ListActive(ctx context.Context, tenantID, serviceType string) ([]Credential, error)
}

// serviceTypes maps an integration id to the service its credentials
// authenticate. Integrations absent from the table need no credentials.
var serviceTypes = map[string]string{
	"gmail":        "google",
	"googleSheets": "google",
	"salesforce":   "salesforce",
	"hubspot":      "hubspot",
	"slack":        "slack",
	"openai":       "openai",
	"emailSend":    "smtp",
}

// ServiceTypeFor returns the service type an integration authenticates
// against, or "" when it needs no credentials.
func ServiceTypeFor(integrationID string) string {
	return serviceTypes[integrationID]
}

// Resolver finds a usable stored credential for a step's integration.
type Resolver struct {
	store ActiveLister
}

// NewResolver creates a Resolver over the given store.
func NewResolver(store ActiveLister) *Resolver {
	return &Resolver{store: store}
}

// Resolve maps the integration to its service type and returns the first
// active credential bundle for the tenant. Absence is not an error: an empty
// map is returned and the integration invocation decides whether credentials
// are mandatory. When a tenant holds several credentials for the same
// service the oldest wins; per-step credential binding is not supported yet.
func (r *Resolver) Resolve(ctx context.Context, tenantID, integrationID string) (map[string]string, error) {
	serviceType := ServiceTypeFor(integrationID)
	if serviceType == "" {
		return map[string]string{}, nil
	}

	creds, err := r.store.ListActive(ctx, tenantID, serviceType)
	if err != nil {
		return nil, fmt.Errorf("resolve credentials for %q: %w", integrationID, err)
	}
	if len(creds) == 0 {
		return map[string]string{}, nil
	}
	return creds[0].Credentials, nil
}
