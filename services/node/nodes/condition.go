package nodes

import (
	"context"
	"fmt"
	"strings"

	"halo-platform/api/services/node"
)

// Condition evaluates one comparison per input item and routes the item to
// exactly one of the true/false output channels. It never duplicates an item
// into both channels.
var Condition = node.Definition{
	Name:        "condition",
	DisplayName: "Condition",
	Description: "Route items based on a field comparison",
	Group:       []string{"logic"},
	Version:     1,
	Icon:        "condition",
	Inputs:      []string{"main"},
	Outputs:     []string{"true", "false"},
	Properties: []node.Property{
		{Name: "field", DisplayName: "Field", Kind: node.KindString, Required: true},
		{
			Name: "operation", DisplayName: "Operation", Kind: node.KindOptions,
			Default: "equal",
			Options: []node.Option{
				{Name: "Equal", Value: "equal"},
				{Name: "Not Equal", Value: "notEqual"},
				{Name: "Contains", Value: "contains"},
				{Name: "Not Contains", Value: "notContains"},
				{Name: "Greater Than", Value: "greaterThan"},
				{Name: "Less Than", Value: "lessThan"},
				{Name: "Is Empty", Value: "isEmpty"},
				{Name: "Is Not Empty", Value: "isNotEmpty"},
			},
		},
		{
			Name: "value", DisplayName: "Value", Kind: node.KindString, Default: "",
			DisplayOptions: &node.DisplayOptions{Show: map[string][]any{
				"operation": {"equal", "notEqual", "contains", "notContains", "greaterThan", "lessThan"},
			}},
		},
	},
	Execute: executeCondition,
}

func executeCondition(_ context.Context, ec node.ExecuteContext) ([][]node.ExecutionData, error) {
	outputs := [][]node.ExecutionData{{}, {}}

	for i, item := range ec.InputData() {
		field, err := stringParam(ec, "field", i)
		if err != nil {
			return nil, err
		}
		operation, err := stringParam(ec, "operation", i)
		if err != nil {
			return nil, err
		}
		value, err := stringParam(ec, "value", i)
		if err != nil {
			return nil, err
		}

		matched, err := evaluateComparison(item.JSON[field], operation, value)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate condition: %w", err)
		}

		out := node.ExecutionData{JSON: cloneJSON(item.JSON), Binary: item.Binary}
		if matched {
			outputs[0] = append(outputs[0], out)
		} else {
			outputs[1] = append(outputs[1], out)
		}
	}
	return outputs, nil
}

func evaluateComparison(actual any, operation, expected string) (bool, error) {
	switch operation {
	case "equal", "notEqual":
		matched := compareEqual(actual, expected)
		if operation == "notEqual" {
			matched = !matched
		}
		return matched, nil
	case "contains":
		return strings.Contains(stringify(actual), expected), nil
	case "notContains":
		return !strings.Contains(stringify(actual), expected), nil
	case "greaterThan", "lessThan":
		a, okA := node.ToFloat64(actual)
		b, okB := parseNumber(expected)
		if !okA || !okB {
			return false, fmt.Errorf("operation %q requires numeric operands", operation)
		}
		if operation == "greaterThan" {
			return a > b, nil
		}
		return a < b, nil
	case "isEmpty":
		return isEmptyValue(actual), nil
	case "isNotEmpty":
		return !isEmptyValue(actual), nil
	default:
		return false, fmt.Errorf("unknown operation %q", operation)
	}
}

// compareEqual compares numerically when both sides are numbers, otherwise by
// string form.
func compareEqual(actual any, expected string) bool {
	if a, ok := node.ToFloat64(actual); ok {
		if b, ok := parseNumber(expected); ok {
			return a == b
		}
	}
	return stringify(actual) == expected
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

func parseNumber(s string) (float64, bool) {
	var f float64
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%g", &f); err != nil {
		return 0, false
	}
	return f, true
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func cloneJSON(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// stringParam resolves a parameter and coerces it to string.
func stringParam(ec node.ExecuteContext, name string, itemIndex int) (string, error) {
	v, err := ec.Parameter(name, itemIndex)
	if err != nil {
		return "", err
	}
	return stringify(v), nil
}
