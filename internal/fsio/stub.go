package fsio

import (
	"context"
	"fmt"
)

// StubReader is a test double keyed by path/URL string, mirroring the
// original implementation's StubFiles.
type StubReader struct {
	contents map[string]string
}

func NewStubReader() *StubReader {
	return &StubReader{contents: map[string]string{}}
}

func (s *StubReader) WithFile(name, content string) *StubReader {
	s.contents[name] = content
	return s
}

func (s *StubReader) FetchLocal(ctx context.Context, path string) ([]byte, error) {
	content, ok := s.contents[path]
	if !ok {
		return nil, FileFailure{Path: path, Cause: fmt.Errorf("file has not been stubbed")}
	}
	return []byte(content), nil
}

func (s *StubReader) FetchRemote(ctx context.Context, url string) ([]byte, error) {
	return s.FetchLocal(ctx, url)
}
