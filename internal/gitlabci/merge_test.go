package gitlabci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeJobsVariablePrecedenceGlobalTemplateJob(t *testing.T) {
	cfg, err := Parse([]byte(`
variables:
  A: "1"
.t:
  variables:
    B: "2"
job:
  extends: [.t]
  variables:
    C: "3"
`))
	require.NoError(t, err)

	resolved, err := mergeJobs(cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, resolved["job"].Variables.Keys())
}

func TestMergeJobsExtendsChainInnermostWins(t *testing.T) {
	cfg, err := Parse([]byte(`
.parent:
  image: "p"
.mid:
  extends: [.parent]
  image: "m"
job:
  extends: [.mid]
`))
	require.NoError(t, err)

	resolved, err := mergeJobs(cfg)
	require.NoError(t, err)

	assert.Equal(t, "m", resolved["job"].Image)
}

func TestMergeJobsExtendsChainFallsThroughWhenUnset(t *testing.T) {
	cfg, err := Parse([]byte(`
.parent:
  image: "p"
.mid:
  extends: [.parent]
job:
  extends: [.mid]
`))
	require.NoError(t, err)

	resolved, err := mergeJobs(cfg)
	require.NoError(t, err)

	assert.Equal(t, "p", resolved["job"].Image)
}

func TestCollectTemplateChainMultiExtendsLinearizesParentFirst(t *testing.T) {
	templates := map[string]JobSpec{
		"P":  {Name: "P"},
		"T1": {Name: "T1"},
		"T2": {Name: "T2", Extends: []string{"P"}},
	}

	chain, err := collectTemplateChain([]string{"T1", "T2"}, templates)
	require.NoError(t, err)

	assert.Equal(t, []string{"P", "T2", "T1"}, chain)
}

func TestCollectTemplateChainMissingTemplateErrors(t *testing.T) {
	_, err := collectTemplateChain([]string{"missing"}, map[string]JobSpec{})
	require.Error(t, err)
	assert.IsType(t, TemplateNotFound{}, err)
}

func TestMergeConfigurationTargetWinsOnConflict(t *testing.T) {
	root, err := Parse([]byte("job:\n  image: root-image\n"))
	require.NoError(t, err)

	included, err := Parse([]byte("job:\n  image: included-image\nother:\n  image: only-in-included\n"))
	require.NoError(t, err)

	merged := MergeIncluded(root, []*GitLabConfiguration{included})

	assert.Equal(t, "root-image", merged.Jobs["job"].Image)
	assert.Equal(t, "only-in-included", merged.Jobs["other"].Image)
}
