package shellfmt

import (
	"context"
	"testing"

	"github.com/christophgockel/fake-ci/internal/ciyaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolateReturnsSameValueWhenNothingToExpand(t *testing.T) {
	got, err := Interpolate(context.Background(), "the-value", nil)
	require.NoError(t, err)
	assert.Equal(t, "the-value", got)
}

func TestInterpolateExpandsVariables(t *testing.T) {
	vars := ciyaml.OrderedVariables{{Key: "VARIABLE", Value: "interpolated"}}

	got, err := Interpolate(context.Background(), "some-${VARIABLE}-value", vars)
	require.NoError(t, err)
	assert.Equal(t, "some-interpolated-value", got)
}
