// Package fsio provides a uniform byte-fetching abstraction over the local
// filesystem and plain HTTP, used by the configuration reader and include
// resolver. It never interprets the bytes it returns.
package fsio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Reader fetches raw bytes from a local path or a remote URL.
type Reader interface {
	FetchLocal(ctx context.Context, path string) ([]byte, error)
	FetchRemote(ctx context.Context, url string) ([]byte, error)
}

// FileFailure wraps a filesystem or HTTP read failure.
type FileFailure struct {
	Path  string
	Cause error
}

func (f FileFailure) Error() string {
	return fmt.Sprintf("cannot read %q: %v", f.Path, f.Cause)
}

func (f FileFailure) Unwrap() error { return f.Cause }

// RealReader is backed by os.ReadFile and net/http.
type RealReader struct {
	Client *http.Client
}

func NewRealReader() *RealReader {
	return &RealReader{Client: http.DefaultClient}
}

func (r *RealReader) FetchLocal(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, FileFailure{Path: path, Cause: err}
	}
	return data, nil
}

func (r *RealReader) FetchRemote(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, FileFailure{Path: url, Cause: err}
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, FileFailure{Path: url, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, FileFailure{Path: url, Cause: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, FileFailure{Path: url, Cause: err}
	}
	return data, nil
}
