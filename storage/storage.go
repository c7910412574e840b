package storage

import (
	"context"
	"io"
)

// Meta describes the object being written.
type Meta struct {
	// ContentType is the declared MIME type of the upload.
	ContentType string
}

// Backend is a destination for streamed uploads.
//
// Write pulls src until io.EOF or an error and returns where the data landed.
// It must not buffer the whole stream. When ctx is cancelled the backend stops
// and releases any in-flight session before returning.
//
// DeletePartial removes whatever a failed Write may have left at key. A key
// that does not exist is not an error.
type Backend interface {
	Name() string
	Write(ctx context.Context, key string, src io.Reader, meta Meta) (location string, err error)
	DeletePartial(ctx context.Context, key string) error
}
