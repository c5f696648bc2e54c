package ciyaml

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Variable is a single name/value pair. Variables are kept as an ordered
// slice rather than a map everywhere in this codebase: GitLab-CI's shell
// semantics depend on export order, so insertion order is a contract.
type Variable struct {
	Key   string
	Value string
}

// OrderedVariables decodes a YAML mapping into a slice of Variable, walking
// the node's Content pairs directly so that insertion order survives -
// unmarshaling into a Go map would lose it. Only scalar values are allowed;
// null/bool/int/float are coerced to their text form, matching GitLab's own
// tolerance for primitive-typed variable values.
type OrderedVariables []Variable

func (o *OrderedVariables) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of variables, got %s", value.Line, kindName(value.Kind))
	}

	result := make(OrderedVariables, 0, len(value.Content)/2)

	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valueNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return fmt.Errorf("line %d: variable key must be a scalar: %w", keyNode.Line, err)
		}

		text, err := scalarText(valueNode)
		if err != nil {
			return fmt.Errorf("variable %q: %w", key, err)
		}

		result = append(result, Variable{Key: key, Value: text})
	}

	*o = result
	return nil
}

// scalarText coerces a scalar YAML node (null, bool, int, float or string)
// into its textual form. Sequences and mappings are rejected.
func scalarText(node *yaml.Node) (string, error) {
	if node.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: can only put primitive types into a variables map, got %s", node.Line, kindName(node.Kind))
	}

	switch node.Tag {
	case "!!null":
		return "null", nil
	default:
		return node.Value, nil
	}
}

// Keys returns just the variable names, preserving order.
func (o OrderedVariables) Keys() []string {
	keys := make([]string, len(o))
	for i, v := range o {
		keys[i] = v.Key
	}
	return keys
}
