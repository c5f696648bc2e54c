package gitlabci

import "github.com/christophgockel/fake-ci/internal/ciyaml"

// mergeVariables prepends source before target, preserving both orders -
// GitLab-CI's `export` semantics depend on this exact ordering.
func mergeVariables(source ciyaml.OrderedVariables, target *ciyaml.OrderedVariables) {
	*target = append(append(ciyaml.OrderedVariables{}, source...), *target...)
}

// mergeImage fills target only if it is currently empty.
func mergeImage(source string, target *string) {
	if source != "" && *target == "" {
		*target = source
	}
}

// mergeScriptSlice fills target only if it is currently empty.
func mergeScriptSlice(source ciyaml.StringOrStringSlice, target *ciyaml.StringOrStringSlice) {
	if len(source) > 0 && len(*target) == 0 {
		*target = source
	}
}

// mergeConfiguration folds source into target: source's variables are
// prepended before target's, and source's jobs/templates are added only
// where target does not already define them - target always wins on
// conflict.
func mergeConfiguration(source, target *GitLabConfiguration) {
	mergeVariables(source.Variables, &target.Variables)

	for name, job := range source.Jobs {
		if _, exists := target.Jobs[name]; !exists {
			target.Jobs[name] = job
		}
	}
	for name, tmpl := range source.Templates {
		if _, exists := target.Templates[name]; !exists {
			target.Templates[name] = tmpl
		}
	}
}

// MergeIncluded flattens the root configuration with every included
// configuration (in depth-first pre-order), the root winning on any key
// conflict. included documents apply in visit order, with the root applied
// last.
func MergeIncluded(root *GitLabConfiguration, included []*GitLabConfiguration) *GitLabConfiguration {
	result := &GitLabConfiguration{
		Default:   root.Default,
		Stages:    root.Stages,
		Variables: append(ciyaml.OrderedVariables{}, root.Variables...),
		Jobs:      cloneJobMap(root.Jobs),
		Templates: cloneJobMap(root.Templates),
	}

	for i := len(included) - 1; i >= 0; i-- {
		mergeConfiguration(included[i], result)
	}

	return result
}

func cloneJobMap(m map[string]JobSpec) map[string]JobSpec {
	clone := make(map[string]JobSpec, len(m))
	for k, v := range m {
		clone[k] = cloneJobSpec(v)
	}
	return clone
}

// collectTemplateChain linearizes a job's (or template's) `extends` list
// into a parent-first sequence: `extends: [T1, T2]` where T2 itself extends
// P produces [P, T2, T1] - each entry's own ancestors are resolved before
// the entry itself, and entries are processed in reverse list order so
// that the first-listed extends target ends up with the highest
// precedence among siblings.
func collectTemplateChain(names []string, templates map[string]JobSpec) ([]string, error) {
	var chain []string

	for i := len(names) - 1; i >= 0; i-- {
		name := names[i]
		tmpl, ok := templates[name]
		if !ok {
			return nil, TemplateNotFound{Name: name}
		}

		ancestors, err := collectTemplateChain(tmpl.Extends, templates)
		if err != nil {
			return nil, err
		}

		chain = append(chain, ancestors...)
		chain = append(chain, name)
	}

	return chain, nil
}

// mergeJobs resolves every job's `extends` chain and `default:` fallbacks
// into final JobSpec values, ready for the Definition Builder.
func mergeJobs(cfg *GitLabConfiguration) (map[string]JobSpec, error) {
	resolved := make(map[string]JobSpec, len(cfg.Jobs))

	for name, job := range cfg.Jobs {
		merged := cloneJobSpec(job)

		chain, err := collectTemplateChain(job.Extends, cfg.Templates)
		if err != nil {
			return nil, err
		}

		// Apply the chain innermost-first: the entry closest to the job
		// (last in the linearized, parent-first chain) is processed first
		// so it wins the first-set-wins race over its own ancestors.
		for i := len(chain) - 1; i >= 0; i-- {
			tmpl := cfg.Templates[chain[i]]
			mergeVariables(tmpl.Variables, &merged.Variables)
			mergeScriptSlice(tmpl.AfterScript, &merged.AfterScript)
			mergeScriptSlice(tmpl.BeforeScript, &merged.BeforeScript)
			mergeImage(tmpl.Image, &merged.Image)
			if merged.Artifacts == nil && tmpl.Artifacts != nil {
				a := *tmpl.Artifacts
				merged.Artifacts = &a
			}
		}

		mergeVariables(cfg.Variables, &merged.Variables)

		if cfg.Default != nil {
			mergeScriptSlice(cfg.Default.AfterScript, &merged.AfterScript)
			mergeScriptSlice(cfg.Default.BeforeScript, &merged.BeforeScript)
			mergeImage(cfg.Default.Image, &merged.Image)
			if merged.Artifacts == nil && cfg.Default.Artifacts != nil {
				a := *cfg.Default.Artifacts
				merged.Artifacts = &a
			}
		}

		resolved[name] = merged
	}

	return resolved, nil
}
