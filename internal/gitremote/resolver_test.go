package gitremote

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostFromRemoteRewritesSCPLikeURL(t *testing.T) {
	assert.Equal(t, "https://github.com", hostFromRemote("git@github.com:username/repo.git"))
}

func TestHostFromRemoteRejectsNonSSHRemote(t *testing.T) {
	assert.Equal(t, "", hostFromRemote("https://github.com/username/repo.git"))
}

func TestHostFromRemoteRejectsEmptyRemote(t *testing.T) {
	assert.Equal(t, "", hostFromRemote(""))
}

func TestOpenReturnsGitFailureForNonRepository(t *testing.T) {
	_, err := Open(t.TempDir())

	assert.Error(t, err)

	var failure GitFailure
	assert.True(t, errors.As(err, &failure))
	assert.NotNil(t, failure.Cause)
}
