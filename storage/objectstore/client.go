package objectstore

import (
	"context"
	"io"
)

// Part identifies an uploaded part of a multipart session.
type Part struct {
	Number int32
	ETag   string
}

// Client is the subset of an S3-compatible API the backend drives. A Client
// is bound to one bucket.
type Client interface {
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) (location string, err error)
	CreateMultipartUpload(ctx context.Context, key, contentType string) (uploadID string, err error)
	UploadPart(ctx context.Context, key, uploadID string, number int32, body io.Reader, size int64) (etag string, err error)
	CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []Part) (location string, err error)
	AbortMultipartUpload(ctx context.Context, key, uploadID string) error
	// DeleteObject removes key. A missing object is not an error.
	DeleteObject(ctx context.Context, key string) error
}
