package dockerx

import (
	"archive/tar"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTarSingleFilePackagesContent(t *testing.T) {
	r, err := tarSingleFile("Dockerfile", []byte("FROM alpine\n"))
	require.NoError(t, err)

	tr := tar.NewReader(r)
	hdr, err := tr.Next()
	require.NoError(t, err)
	assert.Equal(t, "Dockerfile", hdr.Name)

	content, err := io.ReadAll(tr)
	require.NoError(t, err)
	assert.Equal(t, "FROM alpine\n", string(content))

	_, err = tr.Next()
	assert.ErrorIs(t, err, io.EOF)
}
