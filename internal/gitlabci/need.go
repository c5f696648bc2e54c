package gitlabci

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML decodes either a bare job-name string, meaning
// {Job: s, Artifacts: true}, or a mapping {job, artifacts}.
func (n *Need) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var name string
		if err := value.Decode(&name); err != nil {
			return err
		}
		n.Job = name
		n.Artifacts = true
		return nil
	case yaml.MappingNode:
		var raw struct {
			Job       string `yaml:"job"`
			Artifacts *bool  `yaml:"artifacts"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		n.Job = raw.Job
		if raw.Artifacts == nil {
			n.Artifacts = true
		} else {
			n.Artifacts = *raw.Artifacts
		}
		return nil
	default:
		return fmt.Errorf("line %d: needs entries must be a job name or a mapping", value.Line)
	}
}
