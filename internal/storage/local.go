package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDir is used when no upload directory is configured.
const DefaultDir = "uploads"

// Local stores uploads in a directory on disk.
type Local struct {
	dir string
}

// NewLocal creates dir if needed and returns a Local backend rooted there.
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Local{dir: dir}, nil
}

// Dir returns the root directory.
func (l *Local) Dir() string { return l.dir }

// Put writes r to dir/key, replacing any existing file.
func (l *Local) Put(ctx context.Context, key string, r io.Reader) (Object, error) {
	path, err := l.resolve(key)
	if err != nil {
		return Object{}, err
	}
	n, err := writeFile(ctx, path, r)
	if err != nil {
		return Object{}, err
	}
	return Object{Location: path, Path: path, Size: n}, nil
}

// Fetch returns location when it is an existing file.
func (l *Local) Fetch(_ context.Context, location string) (string, error) {
	if _, err := os.Stat(location); err != nil {
		return "", fmt.Errorf("stored file unavailable: %w", err)
	}
	return location, nil
}

// Delete removes location from disk.
func (l *Local) Delete(_ context.Context, location string) error {
	if err := os.Remove(location); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}

func (l *Local) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" || strings.HasSuffix(key, "/") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(l.dir, clean), nil
}

// writeFile copies r into path through a temp file so readers never see
// a partial upload.
func writeFile(ctx context.Context, path string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	n, err := io.Copy(tmp, ctxReader{ctx: ctx, r: r})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("failed to store upload: %w", err)
	}
	return n, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
