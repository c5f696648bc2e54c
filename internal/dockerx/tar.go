package dockerx

import (
	"archive/tar"
	"bytes"
	"io"
)

// tarSingleFile packages a single file as the tar stream the Docker build
// API expects as its context.
func tarSingleFile(name string, content []byte) (io.Reader, error) {
	var buf bytes.Buffer
	w := tar.NewWriter(&buf)

	if err := w.WriteHeader(&tar.Header{
		Name: name,
		Mode: 0o644,
		Size: int64(len(content)),
	}); err != nil {
		return nil, err
	}
	if _, err := w.Write(content); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return &buf, nil
}

// DefaultDockerfile is the base image the checkout container runs, a small
// shell-capable base sufficient for running scripts and git. Job containers
// run the job's own image instead.
const DefaultDockerfile = `FROM alpine:3.19
RUN apk add --no-cache bash git openssh-client ca-certificates
WORKDIR /job
`
