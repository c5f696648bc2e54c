package gitlabci

import (
	"testing"

	"github.com/christophgockel/fake-ci/internal/fakeciio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() fakeciio.Context {
	return fakeciio.Context{
		WorkDir:   "/work",
		Branch:    "main",
		CommitSHA: "abcdef1234567890",
		ImageTag:  "fake-ci:test",
	}
}

func TestBuildDefinitionConcatenatesScriptParts(t *testing.T) {
	cfg, err := Parse([]byte(`
job:
  before_script: [a]
  script: [b]
  after_script: [c]
`))
	require.NoError(t, err)

	def, err := BuildDefinition(cfg, testContext())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, def["job"].Script)
}

func TestBuildDefinitionPrependsPredefinedVariables(t *testing.T) {
	cfg, err := Parse([]byte("job:\n  variables:\n    OWN: value\n"))
	require.NoError(t, err)

	def, err := BuildDefinition(cfg, testContext())
	require.NoError(t, err)

	keys := def["job"].Variables.Keys()
	assert.Equal(t, []string{
		"CI_COMMIT_REF_NAME",
		"CI_COMMIT_REF_SLUG",
		"CI_COMMIT_SHA",
		"CI_COMMIT_SHORT_SHA",
		"CI_PIPELINE_ID",
		"CI_PROJECT_DIR",
		"OWN",
	}, keys)
}

func TestBuildDefinitionRequiredArtifactsFromNeeds(t *testing.T) {
	cfg, err := Parse([]byte(`
build:
  script: [echo build]
  artifacts:
    paths: [dist/app]
test:
  script: [echo test]
  needs:
    - job: build
      artifacts: true
`))
	require.NoError(t, err)

	def, err := BuildDefinition(cfg, testContext())
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{"build": {"dist/app"}}, def["test"].RequiredArtifacts)
}

func TestBuildDefinitionNeedsWithoutArtifactsAreNotStaged(t *testing.T) {
	cfg, err := Parse([]byte(`
build:
  script: [echo build]
  artifacts:
    paths: [dist/app]
test:
  script: [echo test]
  needs:
    - job: build
      artifacts: false
`))
	require.NoError(t, err)

	def, err := BuildDefinition(cfg, testContext())
	require.NoError(t, err)

	assert.Empty(t, def["test"].RequiredArtifacts)
}

func TestBuildDefinitionWithoutNeedsHasNoRequiredArtifacts(t *testing.T) {
	cfg, err := Parse([]byte("job:\n  script: [echo hi]\n"))
	require.NoError(t, err)

	def, err := BuildDefinition(cfg, testContext())
	require.NoError(t, err)

	assert.Empty(t, def["job"].RequiredArtifacts)
}

func TestBuildDefinitionUnknownNeedsJobErrors(t *testing.T) {
	cfg, err := Parse([]byte(`
job:
  script: [echo hi]
  needs: [missing]
`))
	require.NoError(t, err)

	_, err = BuildDefinition(cfg, testContext())
	require.Error(t, err)
	assert.IsType(t, UnknownNeedsJob{}, err)
}
