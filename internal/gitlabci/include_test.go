package gitlabci

import (
	"context"
	"testing"

	"github.com/christophgockel/fake-ci/internal/fsio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveIncludesDepthFirstPreOrder(t *testing.T) {
	reader := fsio.NewStubReader().
		WithFile("/work/first.yml", "include:\n  local: second.yml\njob_one:\n  script: [echo one]\n").
		WithFile("/work/second.yml", "job_two:\n  script: [echo two]\n")

	cfg, err := Parse([]byte("include:\n  local: first.yml\nroot_job:\n  script: [echo root]\n"))
	require.NoError(t, err)

	included, err := ResolveIncludes(context.Background(), reader, "https://gitlab.example.com", cfg, RootOrigin("/work"))
	require.NoError(t, err)
	require.Len(t, included, 2)

	assert.Contains(t, included[0].Jobs, "job_one")
	assert.Contains(t, included[1].Jobs, "job_two")
}

func TestResolveIncludesSwitchesToRemoteOriginAfterRemoteFetch(t *testing.T) {
	reader := fsio.NewStubReader().
		WithFile("https://example.com/ci/first.yml", "include:\n  local: second.yml\njob_one:\n  script: [echo one]\n").
		WithFile("https://example.com/ci/second.yml", "job_two:\n  script: [echo two]\n")

	cfg, err := Parse([]byte("include:\n  remote: https://example.com/ci/first.yml\n"))
	require.NoError(t, err)

	included, err := ResolveIncludes(context.Background(), reader, "https://gitlab.example.com", cfg, RootOrigin("/work"))
	require.NoError(t, err)
	require.Len(t, included, 2)

	assert.Contains(t, included[0].Jobs, "job_one")
	assert.Contains(t, included[1].Jobs, "job_two")
}

func TestResolveIncludesFileIncludeBuildsRawURL(t *testing.T) {
	reader := fsio.NewStubReader().
		WithFile("https://gitlab.example.com/my/project/-/raw/HEAD/ci/jobs.yml", "job_one:\n  script: [echo one]\n")

	cfg, err := Parse([]byte("include:\n  project: my/project\n  file: ci/jobs.yml\n"))
	require.NoError(t, err)

	included, err := ResolveIncludes(context.Background(), reader, "https://gitlab.example.com", cfg, RootOrigin("/work"))
	require.NoError(t, err)
	require.Len(t, included, 1)
	assert.Contains(t, included[0].Jobs, "job_one")
}

func TestResolveIncludesUnstubbedFileFailsWithIncludeFailure(t *testing.T) {
	reader := fsio.NewStubReader()

	cfg, err := Parse([]byte("include:\n  local: missing.yml\n"))
	require.NoError(t, err)

	_, err = ResolveIncludes(context.Background(), reader, "https://gitlab.example.com", cfg, RootOrigin("/work"))
	require.Error(t, err)
	assert.IsType(t, IncludeFailure{}, err)
}
