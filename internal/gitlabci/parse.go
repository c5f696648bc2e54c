package gitlabci

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Parse decodes a single `.gitlab-ci.yml` document (no include resolution).
func Parse(data []byte) (*GitLabConfiguration, error) {
	var cfg GitLabConfiguration
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, ParseFailure{Reason: err}
	}
	return &cfg, nil
}

// UnmarshalYAML partitions the top-level mapping: reserved keywords go to
// their named fields, every other key becomes a job (no leading dot) or a
// template (leading dot).
func (c *GitLabConfiguration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: a GitLab-CI document must be a mapping", value.Line)
	}

	c.Jobs = map[string]JobSpec{}
	c.Templates = map[string]JobSpec{}

	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valueNode := value.Content[i+1]
		key := keyNode.Value

		switch key {
		case "default":
			var d Defaults
			if err := valueNode.Decode(&d); err != nil {
				return fmt.Errorf("default: %w", err)
			}
			c.Default = &d
		case "include":
			var list includeList
			if err := valueNode.Decode(&list); err != nil {
				return fmt.Errorf("include: %w", err)
			}
			c.Includes = []Include(list)
		case "stages":
			if err := valueNode.Decode(&c.Stages); err != nil {
				return fmt.Errorf("stages: %w", err)
			}
		case "variables":
			if err := valueNode.Decode(&c.Variables); err != nil {
				return fmt.Errorf("variables: %w", err)
			}
		case "workflow":
			// Parsed but unused: kept out of the jobs map, per the reserved
			// keyword set, and not surfaced anywhere else.
		default:
			var job JobSpec
			if err := valueNode.Decode(&job); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			job.Name = key

			if job.Artifacts != nil {
				job.Artifacts.setDefaults()
			}

			if isTemplateName(key) {
				c.Templates[key] = job
			} else {
				c.Jobs[key] = job
			}
		}
	}

	return nil
}
