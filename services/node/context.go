package node

import (
	"encoding/json"
	"fmt"
)

// executeContext adapts a step's stored config into the per-item parameter
// lookups the node contract expects. Config values are usually single-valued
// per step; a per-item override array is honored when present, with an
// out-of-range index falling back to the property's declared default.
type executeContext struct {
	def     *Definition
	config  map[string]any
	input   []ExecutionData
	creds   map[string]string
	helpers Helpers
}

// NewExecuteContext builds the context handed to a node's Execute function.
// creds is the credential bundle resolved for the step's service type; it may
// be nil or empty when the tenant has none. helpers may be nil for nodes that
// perform no outbound I/O.
func NewExecuteContext(def *Definition, config map[string]any, input []ExecutionData, creds map[string]string, helpers Helpers) ExecuteContext {
	return &executeContext{
		def:     def,
		config:  config,
		input:   input,
		creds:   creds,
		helpers: helpers,
	}
}

func (ec *executeContext) InputData() []ExecutionData {
	return ec.input
}

func (ec *executeContext) Parameter(name string, itemIndex int) (any, error) {
	prop := ec.property(name)

	raw, ok := ec.config[name]
	if ok {
		// A slice value is a per-item override; anything else applies to
		// every item.
		if perItem, isSlice := raw.([]any); isSlice && prop != nil && prop.Kind != KindCollection && prop.Kind != KindJSON {
			if itemIndex >= 0 && itemIndex < len(perItem) {
				raw = perItem[itemIndex]
			} else {
				ok = false
			}
		}
	}
	if !ok {
		if prop == nil {
			return nil, nil
		}
		raw = prop.Default
	}

	if prop != nil && prop.Kind == KindJSON {
		return decodeJSONParameter(name, raw)
	}
	return raw, nil
}

func (ec *executeContext) Credentials(credType string) (map[string]string, bool) {
	if len(ec.creds) == 0 {
		return nil, false
	}
	for _, req := range ec.def.Credentials {
		if req.Name == credType {
			return ec.creds, true
		}
	}
	return nil, false
}

func (ec *executeContext) Helpers() Helpers {
	return ec.helpers
}

func (ec *executeContext) property(name string) *Property {
	for i := range ec.def.Properties {
		if ec.def.Properties[i].Name == name {
			return &ec.def.Properties[i]
		}
	}
	return nil
}

// decodeJSONParameter parses a json-kind value stored as a string. Values
// already decoded (maps, slices) pass through. An unparsable string is a
// configuration error surfaced to the node.
func decodeJSONParameter(name string, raw any) (any, error) {
	s, isString := raw.(string)
	if !isString {
		return raw, nil
	}
	if s == "" {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("parameter %q is not valid JSON: %w", name, err)
	}
	return out, nil
}
