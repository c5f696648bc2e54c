// Package ciyaml holds tolerant YAML decoding helpers for shapes GitLab-CI
// allows to be written as either a scalar or a collection.
package ciyaml

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// StringOrStringSlice decodes a YAML scalar into a one-element slice, or a
// sequence of scalars into the equivalent string slice.
type StringOrStringSlice []string

func (s *StringOrStringSlice) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var one string
		if err := value.Decode(&one); err != nil {
			return err
		}
		*s = []string{one}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := value.Decode(&many); err != nil {
			return err
		}
		*s = many
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings, got %s", value.Line, kindName(value.Kind))
	}
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.MappingNode:
		return "a mapping"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "something else"
	}
}
