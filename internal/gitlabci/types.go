// Package gitlabci implements the configuration model, include resolution,
// merge, and definition-building steps for a GitLab-CI pipeline document.
package gitlabci

import (
	"github.com/christophgockel/fake-ci/internal/ciyaml"
)

// Variable is re-exported so callers outside ciyaml don't need to import it
// directly just to spell out a job's variable list.
type Variable = ciyaml.Variable

// When is the condition under which artifacts are kept.
type When string

const (
	WhenOnSuccess When = "on_success"
	WhenOnFailure When = "on_failure"
	WhenAlways    When = "always"
)

// Artifacts describes a job's artifact declaration.
type Artifacts struct {
	Name  string   `yaml:"name"`
	When  When     `yaml:"when"`
	Paths []string `yaml:"paths"`
}

func (a *Artifacts) setDefaults() {
	if a.Name == "" {
		a.Name = "artifacts.zip"
	}
	if a.When == "" {
		a.When = WhenOnSuccess
	}
}

// Need is a single entry of a job's `needs:` list. A bare YAML string means
// {Job: s, Artifacts: true}.
type Need struct {
	Job       string
	Artifacts bool
}

// Defaults mirrors the top-level `default:` block.
type Defaults struct {
	AfterScript  ciyaml.StringOrStringSlice `yaml:"after_script"`
	BeforeScript ciyaml.StringOrStringSlice `yaml:"before_script"`
	Image        string                     `yaml:"image"`
	Artifacts    *Artifacts                 `yaml:"artifacts"`
}

// JobSpec is a job or template exactly as written in YAML, before merging.
type JobSpec struct {
	Name string `yaml:"-"`

	AfterScript  ciyaml.StringOrStringSlice `yaml:"after_script"`
	BeforeScript ciyaml.StringOrStringSlice `yaml:"before_script"`
	Script       ciyaml.StringOrStringSlice `yaml:"script"`
	Image        string                     `yaml:"image"`
	Extends      ciyaml.StringOrStringSlice `yaml:"extends"`
	Needs        []Need                     `yaml:"needs"`
	Artifacts    *Artifacts                 `yaml:"artifacts"`
	Variables    ciyaml.OrderedVariables    `yaml:"variables"`
}

func cloneJobSpec(j JobSpec) JobSpec {
	clone := j
	clone.AfterScript = append(ciyaml.StringOrStringSlice{}, j.AfterScript...)
	clone.BeforeScript = append(ciyaml.StringOrStringSlice{}, j.BeforeScript...)
	clone.Script = append(ciyaml.StringOrStringSlice{}, j.Script...)
	clone.Extends = append(ciyaml.StringOrStringSlice{}, j.Extends...)
	clone.Variables = append(ciyaml.OrderedVariables{}, j.Variables...)
	if j.Artifacts != nil {
		a := *j.Artifacts
		clone.Artifacts = &a
	}
	return clone
}

// GitLabConfiguration is the raw decoded document, before include
// resolution and merging.
type GitLabConfiguration struct {
	Default   *Defaults
	Includes  []Include
	Stages    []string
	Variables ciyaml.OrderedVariables
	Jobs      map[string]JobSpec
	Templates map[string]JobSpec
}

// Job is the execution-ready projection produced by the Definition Builder.
type Job struct {
	Image             string
	Script            []string
	Variables         ciyaml.OrderedVariables
	Artifacts         []string
	RequiredArtifacts map[string][]string
}

// CiDefinition is the final map of job name to execution-ready Job.
type CiDefinition map[string]Job

var reservedKeywords = map[string]bool{
	"default":   true,
	"include":   true,
	"stages":    true,
	"variables": true,
	"workflow":  true,
}

func isTemplateName(name string) bool {
	return len(name) > 0 && name[0] == '.'
}
