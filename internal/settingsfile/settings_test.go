package settingsfile

import (
	"context"
	"testing"

	"github.com/christophgockel/fake-ci/internal/fsio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReturnsDefaultsWhenFileDoesNotExist(t *testing.T) {
	reader := fsio.NewStubReader()

	loaded, err := Load(context.Background(), reader, "unknown.yml")
	require.NoError(t, err)

	assert.False(t, loaded.FromFile)
	assert.Equal(t, defaultHost, loaded.Settings.GitLab.Host)
}

func TestLoadReadsHostFromFile(t *testing.T) {
	reader := fsio.NewStubReader().WithFile("settings.yml", "gitlab:\n  host: https://example.com\n")

	loaded, err := Load(context.Background(), reader, "settings.yml")
	require.NoError(t, err)

	assert.True(t, loaded.FromFile)
	assert.Equal(t, "https://example.com", loaded.Settings.GitLab.Host)
}

func TestLoadDefaultsHostWhenMissingFromFile(t *testing.T) {
	reader := fsio.NewStubReader().WithFile("settings.yml", "")

	loaded, err := Load(context.Background(), reader, "settings.yml")
	require.NoError(t, err)

	assert.Equal(t, defaultHost, loaded.Settings.GitLab.Host)
}

func TestLoadReturnsSyntaxFailureOnInvalidYAML(t *testing.T) {
	reader := fsio.NewStubReader().WithFile("settings.yml", "gitlab: [this is not a mapping\n")

	_, err := Load(context.Background(), reader, "settings.yml")
	require.Error(t, err)
	assert.IsType(t, SyntaxFailure{}, err)
}
