// Package gitremote inspects the local git checkout the tool is run from:
// its current branch, HEAD commit, and the host its origin remote points
// at, so the configuration pipeline can inject predefined variables and
// resolve a default GitLab host without the user repeating themselves.
package gitremote

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Details mirrors what the orchestrator and configuration pipeline need to
// know about the current checkout.
type Details struct {
	Host        string
	Branch      string
	CommitSHA   string
	ShortCommit string
	RemoteURL   string
}

// Resolver opens a repository once and serves every subsequent query from
// it.
type Resolver struct {
	repo *git.Repository
}

// Open opens the git repository rooted at or above dir.
func Open(dir string) (*Resolver, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, GitFailure{Op: fmt.Sprintf("opening repository at %s", dir), Cause: err}
	}
	return &Resolver{repo: repo}, nil
}

// scpLikeURL matches the scp shorthand form `user@host:path`, the only
// remote shape the host-detection rule supports.
var scpLikeURL = regexp.MustCompile(`^\S+@\S+:.*$`)

// Read gathers branch, commit and host information from the checkout,
// returning an error only if HEAD cannot be resolved at all - a missing or
// unsupported remote degrades to an empty host rather than failing, since
// a settings file host can still be used.
func (r *Resolver) Read() (Details, error) {
	head, err := r.repo.Head()
	if err != nil {
		return Details{}, GitFailure{Op: "resolving HEAD", Cause: err}
	}

	details := Details{
		CommitSHA: head.Hash().String(),
	}
	if len(details.CommitSHA) >= 8 {
		details.ShortCommit = details.CommitSHA[:8]
	} else {
		details.ShortCommit = details.CommitSHA
	}

	details.Branch = head.Name().Short()

	remote, err := r.repo.Remote("origin")
	if err == nil && len(remote.Config().URLs) > 0 {
		details.RemoteURL = remote.Config().URLs[0]
		details.Host = hostFromRemote(details.RemoteURL)
	}

	return details, nil
}

// CurrentBranch returns just the branch name, falling back to the raw
// reference name for a detached HEAD.
func (r *Resolver) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", GitFailure{Op: "resolving HEAD", Cause: err}
	}
	return head.Name().Short(), nil
}

// Head returns the full and abbreviated commit SHA of HEAD.
func (r *Resolver) Head() (full, short string, err error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", "", GitFailure{Op: "resolving HEAD", Cause: err}
	}
	full = head.Hash().String()
	short = full
	if len(full) >= 8 {
		short = full[:8]
	}
	return full, short, nil
}

// hostFromRemote rewrites an ssh-shorthand remote URL into the
// `scheme://host` form a GitLab host setting expects. Non-ssh remotes
// (https, already-bare hosts) are not supported, matching the source
// behaviour, and simply yield no host.
func hostFromRemote(remote string) string {
	if !scpLikeURL.MatchString(remote) {
		return ""
	}

	rewritten := strings.Replace(remote, "git@", "https://", 1)
	rewritten = replaceFirstColonAfterHost(rewritten)

	parsed, err := url.Parse(rewritten)
	if err != nil || parsed.Host == "" {
		return ""
	}

	return fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
}

// replaceFirstColonAfterHost turns `https://host:path` into `https://host/path`,
// the same single-substitution the source applies before handing the string
// to its URL parser.
func replaceFirstColonAfterHost(s string) string {
	prefix := ""
	if i := strings.Index(s, "://"); i >= 0 {
		prefix, s = s[:i+3], s[i+3:]
	}
	return prefix + strings.Replace(s, ":", "/", 1)
}
