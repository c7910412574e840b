// Package local stores uploads as files on the local filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kbukum/streamupload/logger"
	"github.com/kbukum/streamupload/storage"
)

func init() {
	storage.RegisterFactory(storage.KindLocal, func(cfg storage.Config, log *logger.Logger) (storage.Backend, error) {
		if _, ok := cfg.(storage.Local); !ok {
			return nil, fmt.Errorf("local: expected storage.Local, got %T", cfg)
		}
		return New(log), nil
	})
}

const (
	dirPerm  = 0o750
	filePerm = 0o640
)

// Backend implements storage.Backend on the local filesystem. Keys are file
// paths, relative to the working directory unless absolute.
type Backend struct {
	log *logger.Logger
}

// New creates a local filesystem backend.
func New(log *logger.Logger) *Backend {
	if log == nil {
		log = logger.Nop()
	}
	return &Backend{log: log.WithComponent("storage.local")}
}

// Name returns the backend name.
func (b *Backend) Name() string { return string(storage.KindLocal) }

// Write streams src into a private temporary file next to key and renames it
// into place once fully synced. Concurrent writers to one key never share a
// file: the last rename wins, and a failed write leaves key untouched.
func (b *Backend) Write(ctx context.Context, key string, src io.Reader, _ storage.Meta) (string, error) {
	path := filepath.Clean(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("local: create directory: %w", err)
	}

	// CreateTemp opens with O_EXCL, so the name is ours alone.
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.part")
	if err != nil {
		return "", fmt.Errorf("local: create temp file: %w", err)
	}
	tmp := f.Name()
	published := false
	defer func() {
		if !published {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	n, err := io.Copy(f, &ctxReader{ctx: ctx, r: src})
	if err != nil {
		return "", fmt.Errorf("local: write file: %w", err)
	}
	if err := f.Chmod(filePerm); err != nil {
		return "", fmt.Errorf("local: chmod file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("local: sync file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("local: close file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("local: publish file: %w", err)
	}
	published = true

	b.log.Debug("file written", logger.Fields(logger.FieldKey, path, logger.FieldBytes, n))
	return path, nil
}

// DeletePartial removes the file at key. Returns nil if it does not exist.
func (b *Backend) DeletePartial(_ context.Context, key string) error {
	if err := os.Remove(filepath.Clean(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("local: delete file: %w", err)
	}
	return nil
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, context.Cause(c.ctx)
	}
	return c.r.Read(p)
}

// compile-time check
var _ storage.Backend = (*Backend)(nil)
