package nodes

import (
	"context"
	"fmt"

	"halo-platform/api/services/node"
)

// Set transforms each item's payload: assign fields, remove fields, or keep
// only the assigned fields.
var Set = node.Definition{
	Name:        "set",
	DisplayName: "Set",
	Description: "Add, overwrite, or remove fields on each item",
	Group:       []string{"transform"},
	Version:     1,
	Icon:        "set",
	Inputs:      []string{"main"},
	Outputs:     []string{"main"},
	Properties: []node.Property{
		{Name: "values", DisplayName: "Values", Kind: node.KindJSON, Default: "{}"},
		{Name: "remove", DisplayName: "Remove Fields", Kind: node.KindJSON, Default: "[]"},
		{Name: "keepOnlySet", DisplayName: "Keep Only Set", Kind: node.KindBoolean, Default: false},
	},
	Execute: executeSet,
}

func executeSet(_ context.Context, ec node.ExecuteContext) ([][]node.ExecutionData, error) {
	valuesRaw, err := ec.Parameter("values", 0)
	if err != nil {
		return nil, err
	}
	values, _ := valuesRaw.(map[string]any)

	removeRaw, err := ec.Parameter("remove", 0)
	if err != nil {
		return nil, err
	}
	var remove []string
	if list, ok := removeRaw.([]any); ok {
		for _, v := range list {
			name, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("remove entries must be field names")
			}
			remove = append(remove, name)
		}
	}

	keepOnlyRaw, err := ec.Parameter("keepOnlySet", 0)
	if err != nil {
		return nil, err
	}
	keepOnly, _ := keepOnlyRaw.(bool)

	out := make([]node.ExecutionData, 0, len(ec.InputData()))
	for _, item := range ec.InputData() {
		var next map[string]any
		if keepOnly {
			next = make(map[string]any, len(values))
		} else {
			next = cloneJSON(item.JSON)
		}
		for k, v := range values {
			next[k] = v
		}
		for _, k := range remove {
			delete(next, k)
		}
		out = append(out, node.ExecutionData{JSON: next, Binary: item.Binary})
	}
	return [][]node.ExecutionData{out}, nil
}
