package node

import "fmt"

// The older service-style catalog describes integrations with flat field
// lists and REST-like endpoints instead of node properties. LiftLegacyService
// converts that shape into the unified Property descriptors so the execute
// context and configuration UI consume a single schema type.

// LegacyField is one configurable field in the service-style catalog shape.
type LegacyField struct {
	Key         string           `json:"key"`
	Label       string           `json:"label"`
	Type        string           `json:"type"` // text, number, checkbox, select, json, collection
	Required    bool             `json:"required,omitempty"`
	Default     any              `json:"default,omitempty"`
	Options     []string         `json:"options,omitempty"`
	VisibleWhen map[string][]any `json:"visibleWhen,omitempty"`
}

// LegacyEndpoint is one REST-like endpoint of a service-style integration.
type LegacyEndpoint struct {
	ID      string `json:"id"`
	Method  string `json:"method"`
	Path    string `json:"path"`
	Default bool   `json:"default,omitempty"`
}

// LegacyService is the service-style catalog descriptor retained for
// integrations not yet migrated to node definitions.
type LegacyService struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	ServiceType string           `json:"serviceType"`
	Fields      []LegacyField    `json:"fields"`
	Endpoints   []LegacyEndpoint `json:"endpoints"`
}

// DefaultEndpoint returns the endpoint marked default, falling back to the
// first declared endpoint.
func (s *LegacyService) DefaultEndpoint() (LegacyEndpoint, bool) {
	for _, ep := range s.Endpoints {
		if ep.Default {
			return ep, true
		}
	}
	if len(s.Endpoints) > 0 {
		return s.Endpoints[0], true
	}
	return LegacyEndpoint{}, false
}

// LiftLegacyService converts a service-style descriptor's fields into
// unified parameter descriptors. An unknown field type is rejected so a
// malformed catalog entry is caught at startup rather than at run time.
func LiftLegacyService(svc LegacyService) ([]Property, error) {
	props := make([]Property, 0, len(svc.Fields))
	for _, f := range svc.Fields {
		kind, err := liftFieldType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("service %q field %q: %w", svc.ID, f.Key, err)
		}

		p := Property{
			Name:        f.Key,
			DisplayName: f.Label,
			Kind:        kind,
			Default:     f.Default,
			Required:    f.Required,
		}
		for _, opt := range f.Options {
			p.Options = append(p.Options, Option{Name: opt, Value: opt})
		}
		if len(f.VisibleWhen) > 0 {
			p.DisplayOptions = &DisplayOptions{Show: f.VisibleWhen}
		}
		props = append(props, p)
	}
	return props, nil
}

func liftFieldType(t string) (ParameterKind, error) {
	switch t {
	case "text", "textarea", "email", "url":
		return KindString, nil
	case "number":
		return KindNumber, nil
	case "checkbox", "boolean":
		return KindBoolean, nil
	case "select":
		return KindOptions, nil
	case "json":
		return KindJSON, nil
	case "collection":
		return KindCollection, nil
	default:
		return "", fmt.Errorf("unsupported field type %q", t)
	}
}
