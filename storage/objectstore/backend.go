// Package objectstore stores uploads in an S3-compatible bucket.
//
// Small streams are written with a single PutObject. Streams longer than one
// part switch to a multipart session, which is aborted on any failure so no
// orphaned parts remain in the bucket.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/kbukum/streamupload/logger"
	"github.com/kbukum/streamupload/storage"
)

func init() {
	storage.RegisterFactory(storage.KindObjectStore, func(cfg storage.Config, log *logger.Logger) (storage.Backend, error) {
		c, ok := cfg.(storage.ObjectStore)
		if !ok {
			return nil, fmt.Errorf("objectstore: expected storage.ObjectStore, got %T", cfg)
		}
		c.ApplyDefaults()
		client, err := NewClient(context.Background(), c)
		if err != nil {
			return nil, err
		}
		return New(client, c.PartSize, log), nil
	})
}

// abortTimeout bounds cleanup calls made after the upload context is gone.
const abortTimeout = 30 * time.Second

// Backend implements storage.Backend on top of a Client.
type Backend struct {
	client   Client
	partSize int64
	log      *logger.Logger
}

// New creates a backend that buffers at most partSize bytes at a time.
func New(client Client, partSize int64, log *logger.Logger) *Backend {
	if partSize <= 0 {
		partSize = storage.DefaultPartSize
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Backend{
		client:   client,
		partSize: partSize,
		log:      log.WithComponent("storage.objectstore"),
	}
}

// Name returns the backend name.
func (b *Backend) Name() string { return string(storage.KindObjectStore) }

// Write streams src to key. It returns the object location.
func (b *Backend) Write(ctx context.Context, key string, src io.Reader, meta storage.Meta) (string, error) {
	key = objectKey(key)
	buf := make([]byte, b.partSize)

	n, err := io.ReadFull(src, buf)
	switch {
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		loc, err := b.client.PutObject(ctx, key, bytes.NewReader(buf[:n]), int64(n), meta.ContentType)
		if err != nil {
			return "", fmt.Errorf("objectstore: put object: %w", err)
		}
		return loc, nil
	case err != nil:
		return "", fmt.Errorf("objectstore: read source: %w", err)
	}

	return b.writeMultipart(ctx, key, src, buf, meta)
}

// writeMultipart uploads buf, which holds a full first part, followed by the
// rest of src.
func (b *Backend) writeMultipart(ctx context.Context, key string, src io.Reader, buf []byte, meta storage.Meta) (loc string, err error) {
	uploadID, err := b.client.CreateMultipartUpload(ctx, key, meta.ContentType)
	if err != nil {
		return "", fmt.Errorf("objectstore: create multipart upload: %w", err)
	}
	defer func() {
		if err != nil {
			b.abort(ctx, key, uploadID)
		}
	}()

	var parts []Part
	n, last := len(buf), false
	for number := int32(1); ; number++ {
		if ctx.Err() != nil {
			return "", fmt.Errorf("objectstore: upload cancelled: %w", context.Cause(ctx))
		}

		etag, err := b.client.UploadPart(ctx, key, uploadID, number, bytes.NewReader(buf[:n]), int64(n))
		if err != nil {
			return "", fmt.Errorf("objectstore: upload part %d: %w", number, err)
		}
		parts = append(parts, Part{Number: number, ETag: etag})
		if last {
			break
		}

		var rerr error
		n, rerr = io.ReadFull(src, buf)
		if rerr == io.EOF {
			break
		}
		last = rerr == io.ErrUnexpectedEOF
		if rerr != nil && !last {
			return "", fmt.Errorf("objectstore: read source: %w", rerr)
		}
	}

	if ctx.Err() != nil {
		return "", fmt.Errorf("objectstore: upload cancelled: %w", context.Cause(ctx))
	}
	loc, err = b.client.CompleteMultipartUpload(ctx, key, uploadID, parts)
	if err != nil {
		return "", fmt.Errorf("objectstore: complete multipart upload: %w", err)
	}

	b.log.Debug("multipart upload completed", logger.Fields(
		logger.FieldKey, key, logger.FieldUploadID, uploadID, "parts", len(parts)))
	return loc, nil
}

func (b *Backend) abort(ctx context.Context, key, uploadID string) {
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), abortTimeout)
	defer cancel()

	if err := b.client.AbortMultipartUpload(actx, key, uploadID); err != nil {
		b.log.Warn("abort multipart upload failed",
			logger.ErrorFields("abort", err),
			logger.Fields(logger.FieldKey, key, logger.FieldUploadID, uploadID))
		return
	}
	b.log.Debug("multipart upload aborted", logger.Fields(logger.FieldKey, key, logger.FieldUploadID, uploadID))
}

// DeletePartial removes the object at key. A missing object is success.
func (b *Backend) DeletePartial(ctx context.Context, key string) error {
	if err := b.client.DeleteObject(ctx, objectKey(key)); err != nil {
		return fmt.Errorf("objectstore: delete object: %w", err)
	}
	return nil
}

// objectKey turns a filesystem-style key into an object key.
func objectKey(key string) string {
	return filepath.ToSlash(key)
}

// compile-time check
var _ storage.Backend = (*Backend)(nil)
