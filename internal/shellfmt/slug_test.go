package shellfmt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugLowercasesAndReplacesNonAlnum(t *testing.T) {
	assert.Equal(t, "feature-my-branch", Slug("feature/My_Branch"))
}

func TestSlugTrimsLeadingAndTrailingDashes(t *testing.T) {
	got := Slug("/SOME/Long-Branch-NaMe-with.special.characters/")
	assert.Equal(t, "some-long-branch-name-with-special-characters", got)
}

func TestSlugTruncatesAt63Bytes(t *testing.T) {
	branch := strings.Repeat("a", 100)
	got := Slug(branch)
	assert.LessOrEqual(t, len(got), 63)
	assert.False(t, strings.HasPrefix(got, "-"))
	assert.False(t, strings.HasSuffix(got, "-"))
}

func TestSlugIsLowercaseAlnumAndDashOnly(t *testing.T) {
	got := Slug("Release/2024.01!!")
	for _, r := range got {
		assert.True(t, (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-')
	}
}
