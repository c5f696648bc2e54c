// Package settingsfile loads the tool's own configuration file, a tiny
// YAML document that currently holds nothing but the default GitLab host.
package settingsfile

import (
	"context"
	"fmt"

	"github.com/christophgockel/fake-ci/internal/fsio"
	"gopkg.in/yaml.v3"
)

// defaultHost is used whenever no settings file is present, or the file
// present doesn't set one explicitly.
const defaultHost = "https://gitlab.com"

// GitLab holds the settings scoped to talking to a GitLab instance.
type GitLab struct {
	Host string `yaml:"host"`
}

// Settings is the whole of the settings file's shape today.
type Settings struct {
	GitLab GitLab `yaml:"gitlab"`
}

func defaults() Settings {
	return Settings{GitLab: GitLab{Host: defaultHost}}
}

// SyntaxFailure wraps a settings file that exists but can't be parsed.
type SyntaxFailure struct {
	Path  string
	Cause error
}

func (e SyntaxFailure) Error() string {
	return fmt.Sprintf("syntax error in %s: %v", e.Path, e.Cause)
}

func (e SyntaxFailure) Unwrap() error { return e.Cause }

// Loaded distinguishes settings read from a file from the compiled-in
// defaults, so callers can log which one applied.
type Loaded struct {
	Settings Settings
	FromFile bool
}

// Load reads path through reader. A missing file yields the defaults
// without error; a present-but-unparsable file is a SyntaxFailure.
func Load(ctx context.Context, reader fsio.Reader, path string) (Loaded, error) {
	data, err := reader.FetchLocal(ctx, path)
	if err != nil {
		return Loaded{Settings: defaults(), FromFile: false}, nil
	}

	settings := defaults()
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Loaded{}, SyntaxFailure{Path: path, Cause: err}
	}
	if settings.GitLab.Host == "" {
		settings.GitLab.Host = defaultHost
	}

	return Loaded{Settings: settings, FromFile: true}, nil
}
