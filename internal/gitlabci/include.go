package gitlabci

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/christophgockel/fake-ci/internal/ciyaml"
	"github.com/christophgockel/fake-ci/internal/fsio"
	"gopkg.in/yaml.v3"
)

// Include is the tagged variant of a single `include:` entry.
type Include interface {
	isInclude()
}

type LocalInclude struct{ Local string }
type FileInclude struct {
	Project string
	Ref     string
	File    []string
}
type RemoteInclude struct{ Remote string }
type TemplateInclude struct{ Template string }

func (LocalInclude) isInclude()    {}
func (FileInclude) isInclude()     {}
func (RemoteInclude) isInclude()   {}
func (TemplateInclude) isInclude() {}

// includeList decodes the `include:` key, which may be a single include
// (scalar or mapping) or a sequence of includes.
type includeList []Include

func (l *includeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		result := make(includeList, 0, len(value.Content))
		for _, item := range value.Content {
			inc, err := decodeInclude(item)
			if err != nil {
				return err
			}
			result = append(result, inc)
		}
		*l = result
		return nil
	default:
		inc, err := decodeInclude(value)
		if err != nil {
			return err
		}
		*l = includeList{inc}
		return nil
	}
}

func decodeInclude(value *yaml.Node) (Include, error) {
	switch value.Kind {
	case yaml.ScalarNode:
		var path string
		if err := value.Decode(&path); err != nil {
			return nil, err
		}
		return LocalInclude{Local: path}, nil
	case yaml.MappingNode:
		keys := map[string]bool{}
		for i := 0; i+1 < len(value.Content); i += 2 {
			keys[value.Content[i].Value] = true
		}

		switch {
		case keys["local"]:
			var raw struct {
				Local string `yaml:"local"`
			}
			if err := value.Decode(&raw); err != nil {
				return nil, err
			}
			return LocalInclude{Local: raw.Local}, nil
		case keys["project"]:
			var raw struct {
				Project string                     `yaml:"project"`
				Ref     string                      `yaml:"ref"`
				File    ciyaml.StringOrStringSlice `yaml:"file"`
			}
			if err := value.Decode(&raw); err != nil {
				return nil, err
			}
			if raw.Ref == "" {
				raw.Ref = "HEAD"
			}
			return FileInclude{Project: raw.Project, Ref: raw.Ref, File: raw.File}, nil
		case keys["remote"]:
			var raw struct {
				Remote string `yaml:"remote"`
			}
			if err := value.Decode(&raw); err != nil {
				return nil, err
			}
			return RemoteInclude{Remote: raw.Remote}, nil
		case keys["template"]:
			var raw struct {
				Template string `yaml:"template"`
			}
			if err := value.Decode(&raw); err != nil {
				return nil, err
			}
			return TemplateInclude{Template: raw.Template}, nil
		default:
			return nil, fmt.Errorf("line %d: include mapping must have one of local/project/remote/template", value.Line)
		}
	default:
		return nil, fmt.Errorf("line %d: include entries must be a string or a mapping", value.Line)
	}
}

// Origin tracks where a document was fetched from, for resolving relative
// `include: local:` paths. Once remote is true it stays true: an included
// document's own local includes resolve against its own origin, never back
// to the root working copy.
type Origin struct {
	remote  bool
	baseURL string // only meaningful when remote is true; URL with the last path segment dropped
	workDir string // only meaningful when remote is false
}

func RootOrigin(workDir string) Origin {
	return Origin{remote: false, workDir: workDir}
}

func (o Origin) resolveLocal(p string) (remote bool, location string) {
	if !o.remote {
		return false, path.Join(o.workDir, p)
	}
	return true, joinURL(o.baseURL, p)
}

func (o Origin) remoteChildOrigin(fetchedURL string) Origin {
	return Origin{remote: true, baseURL: dropLastSegment(fetchedURL)}
}

func dropLastSegment(url string) string {
	idx := strings.LastIndex(url, "/")
	if idx < 0 {
		return url
	}
	return url[:idx]
}

func joinURL(base, suffix string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(suffix, "/")
}

// maxIncludeDepth guards against runaway recursion; the source imposes no
// cycle detection, so a depth cap stands in as a safety net.
const maxIncludeDepth = 50

// ResolveIncludes walks cfg's `include:` directives recursively, returning
// the list of additional configurations reached, in depth-first pre-order.
// The root configuration itself is not included in the result.
func ResolveIncludes(ctx context.Context, reader fsio.Reader, settingsHost string, cfg *GitLabConfiguration, origin Origin) ([]*GitLabConfiguration, error) {
	return resolveIncludes(ctx, reader, settingsHost, cfg, origin, 0)
}

func resolveIncludes(ctx context.Context, reader fsio.Reader, settingsHost string, cfg *GitLabConfiguration, origin Origin, depth int) ([]*GitLabConfiguration, error) {
	if depth > maxIncludeDepth {
		return nil, IncludeFailure{Origin: "include resolution", Cause: fmt.Errorf("exceeded maximum include depth of %d", maxIncludeDepth)}
	}

	var result []*GitLabConfiguration

	for _, inc := range cfg.Includes {
		fetched, err := fetchInclude(ctx, reader, settingsHost, origin, inc)
		if err != nil {
			return nil, err
		}

		for _, f := range fetched {
			parsed, err := Parse(f.bytes)
			if err != nil {
				return nil, IncludeFailure{Origin: f.location, Cause: err}
			}

			result = append(result, parsed)

			var childOrigin Origin
			if f.remote {
				childOrigin = origin.remoteChildOrigin(f.location)
			} else {
				childOrigin = origin
			}

			nested, err := resolveIncludes(ctx, reader, settingsHost, parsed, childOrigin, depth+1)
			if err != nil {
				return nil, err
			}
			result = append(result, nested...)
		}
	}

	return result, nil
}

type fetchedDocument struct {
	bytes    []byte
	location string
	remote   bool
}

func fetchInclude(ctx context.Context, reader fsio.Reader, settingsHost string, origin Origin, inc Include) ([]fetchedDocument, error) {
	switch v := inc.(type) {
	case LocalInclude:
		remote, location := origin.resolveLocal(v.Local)
		data, err := fetchAt(ctx, reader, remote, location)
		if err != nil {
			return nil, IncludeFailure{Origin: location, Cause: err}
		}
		return []fetchedDocument{{bytes: data, location: location, remote: remote}}, nil

	case FileInclude:
		var docs []fetchedDocument
		for _, file := range v.File {
			url := fmt.Sprintf("%s/%s/-/raw/%s/%s", strings.TrimRight(settingsHost, "/"), v.Project, v.Ref, strings.TrimLeft(file, "/"))
			data, err := reader.FetchRemote(ctx, url)
			if err != nil {
				return nil, IncludeFailure{Origin: url, Cause: err}
			}
			docs = append(docs, fetchedDocument{bytes: data, location: url, remote: true})
		}
		return docs, nil

	case RemoteInclude:
		data, err := reader.FetchRemote(ctx, v.Remote)
		if err != nil {
			return nil, IncludeFailure{Origin: v.Remote, Cause: err}
		}
		return []fetchedDocument{{bytes: data, location: v.Remote, remote: true}}, nil

	case TemplateInclude:
		url := fmt.Sprintf("https://gitlab.com/gitlab-org/gitlab/-/raw/master/lib/gitlab/ci/templates/%s", v.Template)
		data, err := reader.FetchRemote(ctx, url)
		if err != nil {
			return nil, IncludeFailure{Origin: url, Cause: err}
		}
		return []fetchedDocument{{bytes: data, location: url, remote: true}}, nil

	default:
		return nil, fmt.Errorf("unknown include variant %T", inc)
	}
}

func fetchAt(ctx context.Context, reader fsio.Reader, remote bool, location string) ([]byte, error) {
	if remote {
		return reader.FetchRemote(ctx, location)
	}
	return reader.FetchLocal(ctx, location)
}
