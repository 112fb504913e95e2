package storage

import (
	"context"
	"io"
	"strings"
)

// WithPrefix scopes s under prefix. Paths passed in and returned by List
// are relative to the prefix. An empty prefix returns s unchanged.
func WithPrefix(s Storage, prefix string) Storage {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return s
	}
	return &prefixed{inner: s, prefix: prefix + "/"}
}

type prefixed struct {
	inner  Storage
	prefix string
}

func (p *prefixed) key(path string) string { return p.prefix + strings.TrimPrefix(path, "/") }

func (p *prefixed) Upload(ctx context.Context, path string, r io.Reader) error {
	return p.inner.Upload(ctx, p.key(path), r)
}

func (p *prefixed) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	return p.inner.Download(ctx, p.key(path))
}

func (p *prefixed) Delete(ctx context.Context, path string) error {
	return p.inner.Delete(ctx, p.key(path))
}

func (p *prefixed) Exists(ctx context.Context, path string) (bool, error) {
	return p.inner.Exists(ctx, p.key(path))
}

func (p *prefixed) List(ctx context.Context, prefix string) ([]FileInfo, error) {
	files, err := p.inner.List(ctx, p.key(prefix))
	if err != nil {
		return nil, err
	}
	for i := range files {
		files[i].Path = strings.TrimPrefix(files[i].Path, p.prefix)
	}
	return files, nil
}
