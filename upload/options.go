package upload

import (
	"github.com/kbukum/streamupload/logger"
	"github.com/kbukum/streamupload/observability"
	"github.com/kbukum/streamupload/storage"
)

// Options are the recognized configuration settings. Nil and empty fields
// leave the current setting unchanged.
type Options struct {
	// Extensions replaces the extension allow-list and re-derives its types.
	Extensions []string
	// Types adds explicit MIME types or patterns such as "image/.*".
	Types []string
	// MaxSize sets the byte ceiling. Negative values are ignored.
	MaxSize *int64
	// BaseFolder roots generated keys.
	BaseFolder *string
	// Storage selects the backend.
	Storage storage.Config
}

// Option customizes an Uploader at construction.
type Option func(*Uploader)

// WithLogger sets the logger used for upload and storage events.
func WithLogger(log *logger.Logger) Option {
	return func(u *Uploader) {
		if log != nil {
			u.base, u.log = log, log.WithComponent("upload")
		}
	}
}

// WithMetrics records upload outcomes on m instead of the global meter.
func WithMetrics(m *observability.UploadMetrics) Option {
	return func(u *Uploader) { u.metrics = m }
}

// WithNameGenerator replaces the generator used for keys when a request
// carries no filename. It must return a fresh unique name on every call.
func WithNameGenerator(gen func() string) Option {
	return func(u *Uploader) {
		if gen != nil {
			u.newName = gen
		}
	}
}

// WithBackend installs an already built backend. A Storage option passed to
// New or Configure replaces it.
func WithBackend(b storage.Backend) Option {
	return func(u *Uploader) { u.backend = b }
}
