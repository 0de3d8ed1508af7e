package node

import "fmt"

// CatalogEntry is one service-style integration lifted into the unified
// parameter shape.
type CatalogEntry struct {
	Service         LegacyService
	Properties      []Property
	DefaultEndpoint LegacyEndpoint
}

// Catalog holds the service-style integrations that execute through the
// remote integration invoker rather than a local node definition.
type Catalog struct {
	byID    map[string]*CatalogEntry
	entries []*CatalogEntry
}

// NewCatalog lifts each service descriptor and indexes it by id. A service
// whose fields cannot be lifted, or without any endpoint, is a startup error.
func NewCatalog(services []LegacyService) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*CatalogEntry, len(services))}
	for _, svc := range services {
		props, err := LiftLegacyService(svc)
		if err != nil {
			return nil, err
		}
		ep, ok := svc.DefaultEndpoint()
		if !ok {
			return nil, fmt.Errorf("service %q declares no endpoints", svc.ID)
		}
		entry := &CatalogEntry{Service: svc, Properties: props, DefaultEndpoint: ep}
		c.byID[svc.ID] = entry
		c.entries = append(c.entries, entry)
	}
	return c, nil
}

// Get looks up a catalog entry by integration id.
func (c *Catalog) Get(id string) (*CatalogEntry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// List returns all catalog entries in declaration order.
func (c *Catalog) List() []*CatalogEntry {
	out := make([]*CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// BuiltinServices are the service-style integrations shipped with the
// platform. Logic nodes live in the nodes package instead.
var BuiltinServices = []LegacyService{
	{
		ID:          "gmail",
		Name:        "Gmail",
		Description: "Send email through a connected Google account",
		ServiceType: "google",
		Fields: []LegacyField{
			{Key: "to", Label: "To", Type: "email", Required: true},
			{Key: "subject", Label: "Subject", Type: "text", Required: true},
			{Key: "body", Label: "Body", Type: "textarea", Required: true},
			{Key: "isHtml", Label: "Send as HTML", Type: "checkbox", Default: false},
		},
		Endpoints: []LegacyEndpoint{
			{ID: "send", Method: "POST", Path: "/messages/send", Default: true},
			{ID: "draft", Method: "POST", Path: "/drafts"},
		},
	},
	{
		ID:          "salesforce",
		Name:        "Salesforce",
		Description: "Create and update CRM records",
		ServiceType: "salesforce",
		Fields: []LegacyField{
			{Key: "object", Label: "Object", Type: "select", Required: true, Options: []string{"Lead", "Contact", "Opportunity"}},
			{Key: "operation", Label: "Operation", Type: "select", Required: true, Default: "create", Options: []string{"create", "update"}},
			{Key: "recordId", Label: "Record ID", Type: "text", VisibleWhen: map[string][]any{"operation": {"update"}}},
			{Key: "fields", Label: "Fields", Type: "json", Default: "{}"},
		},
		Endpoints: []LegacyEndpoint{
			{ID: "sobject", Method: "POST", Path: "/services/data/sobjects", Default: true},
		},
	},
	{
		ID:          "hubspot",
		Name:        "HubSpot",
		Description: "Manage contacts and deals",
		ServiceType: "hubspot",
		Fields: []LegacyField{
			{Key: "objectType", Label: "Object Type", Type: "select", Required: true, Options: []string{"contact", "company", "deal"}},
			{Key: "properties", Label: "Properties", Type: "json", Default: "{}"},
		},
		Endpoints: []LegacyEndpoint{
			{ID: "create", Method: "POST", Path: "/crm/v3/objects", Default: true},
		},
	},
	{
		ID:          "slack",
		Name:        "Slack",
		Description: "Post messages to channels",
		ServiceType: "slack",
		Fields: []LegacyField{
			{Key: "channel", Label: "Channel", Type: "text", Required: true},
			{Key: "text", Label: "Message", Type: "textarea", Required: true},
			{Key: "unfurlLinks", Label: "Unfurl Links", Type: "checkbox", Default: true},
		},
		Endpoints: []LegacyEndpoint{
			{ID: "postMessage", Method: "POST", Path: "/api/chat.postMessage", Default: true},
		},
	},
}
