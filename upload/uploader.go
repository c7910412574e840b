// Package upload is the entry point for streamed uploads. An Uploader owns the
// acceptance policy and the storage backend, runs each incoming stream through
// a validating pipe into the backend, and removes partial artifacts when an
// upload fails.
package upload

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/streamupload/errors"
	"github.com/kbukum/streamupload/logger"
	"github.com/kbukum/streamupload/observability"
	"github.com/kbukum/streamupload/pipe"
	"github.com/kbukum/streamupload/policy"
	"github.com/kbukum/streamupload/storage"
	"github.com/kbukum/streamupload/util"

	// Register the built-in backends with storage.New.
	_ "github.com/kbukum/streamupload/storage/local"
	_ "github.com/kbukum/streamupload/storage/objectstore"
)

// cleanupTimeout bounds DeletePartial after a failed upload. Cleanup runs on a
// context detached from the caller's, which may already be cancelled.
const cleanupTimeout = 30 * time.Second

// Request is the caller's description of an incoming stream.
type Request struct {
	// Type is the declared MIME type.
	Type string
	// Filename is the explicit destination key. When empty a unique name
	// under the base folder is generated.
	Filename string
	// RequestID correlates log lines with the originating request.
	RequestID string
	// Confine marks Filename as untrusted: it must be a relative path that
	// stays inside the base folder, and it is joined onto that folder.
	Confine bool
}

// Result describes a completed upload.
type Result struct {
	Key          string `json:"key"`
	Location     string `json:"location"`
	BytesWritten uint64 `json:"bytes_written"`
	Backend      string `json:"backend"`
}

// Snapshot is a read-only view of an Uploader's settings.
type Snapshot struct {
	Extensions []string `json:"extensions"`
	Types      []string `json:"types"`
	MaxSize    *uint64  `json:"max_size,omitempty"`
	BaseFolder string   `json:"base_folder"`
	Storage    string   `json:"storage"`
	Backend    string   `json:"backend"`
}

// Uploader validates and stores streamed uploads.
//
// Setters may be called concurrently with Upload. Each upload snapshots the
// policy and backend when it starts, so a setting changed mid-upload applies
// to later uploads only.
type Uploader struct {
	mu         sync.RWMutex
	policy     *policy.Policy
	baseFolder string
	storageCfg storage.Config
	backend    storage.Backend

	base    *logger.Logger
	log     *logger.Logger
	metrics *observability.UploadMetrics
	newName func() string
}

// New creates an Uploader configured by opts. Without a Storage setting or a
// WithBackend option uploads go to the local filesystem.
func New(opts Options, options ...Option) (*Uploader, error) {
	u := &Uploader{
		policy:  policy.New(),
		base:    logger.GetGlobalLogger(),
		log:     logger.WithComponent("upload"),
		newName: uuid.NewString,
	}
	if m, err := observability.NewUploadMetrics(observability.Meter(observability.InstrumentationName)); err == nil {
		u.metrics = m
	}
	for _, opt := range options {
		opt(u)
	}

	if err := u.Configure(opts); err != nil {
		return nil, err
	}
	if u.backend == nil {
		if _, err := u.SetStorage(storage.Local{BaseFolder: u.baseFolder}); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// Configure applies every set field of opts. Storage is applied last and is
// the only setting that can fail.
func (u *Uploader) Configure(opts Options) error {
	if len(opts.Extensions) > 0 {
		u.SetExtensions(opts.Extensions)
	}
	if len(opts.Types) > 0 {
		u.SetTypes(opts.Types)
	}
	if opts.MaxSize != nil {
		u.SetMaxSize(*opts.MaxSize)
	}
	if opts.BaseFolder != nil {
		u.SetBaseFolder(*opts.BaseFolder)
	}
	if opts.Storage != nil {
		if _, err := u.SetStorage(opts.Storage); err != nil {
			return err
		}
	}
	return nil
}

// SetExtensions replaces the allowed extensions and returns the new list.
func (u *Uploader) SetExtensions(exts []string) []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.policy.SetExtensions(exts)
}

// SetTypes adds explicit allowed MIME types and returns the full allow-list.
func (u *Uploader) SetTypes(types []string) []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.policy.SetTypes(types)
}

// SetMaxSize sets the byte ceiling. Negative sizes leave it unchanged.
func (u *Uploader) SetMaxSize(size int64) (uint64, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.policy.SetMaxSize(size)
}

// SetBaseFolder sets the folder generated keys are rooted at.
func (u *Uploader) SetBaseFolder(folder string) string {
	u.mu.Lock()
	defer u.mu.Unlock()
	if folder != "" {
		folder = filepath.Clean(folder)
	}
	u.baseFolder = folder
	return u.baseFolder
}

// SetStorage builds the backend for cfg and makes it current. If the backend
// cannot be built the previous one stays in place and the error is returned
// with the current configuration.
func (u *Uploader) SetStorage(cfg storage.Config) (storage.Config, error) {
	backend, err := storage.New(cfg, u.base)
	if err != nil {
		u.log.Error("storage configuration rejected", logger.Fields(
			logger.FieldError, err.Error(),
			"storage", storage.Describe(cfg),
		))
		u.mu.RLock()
		defer u.mu.RUnlock()
		return u.storageCfg, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.storageCfg, u.backend = cfg, backend
	return cfg, nil
}

// CheckFileType reports whether declaredType is acceptable for filename under
// the current policy.
func (u *Uploader) CheckFileType(declaredType, filename string) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.policy.CheckType(declaredType, filename)
}

// CheckFileSize reports whether n bytes are within the current ceiling.
func (u *Uploader) CheckFileSize(n uint64) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.policy.CheckSize(n)
}

// Settings returns a snapshot of the current settings. Secrets are omitted.
func (u *Uploader) Settings() Snapshot {
	u.mu.RLock()
	defer u.mu.RUnlock()

	s := Snapshot{
		Extensions: u.policy.Extensions(),
		Types:      u.policy.Types(),
		BaseFolder: u.baseFolder,
		Storage:    storage.Describe(u.storageCfg),
	}
	if n, ok := u.policy.MaxSize(); ok {
		s.MaxSize = &n
	}
	if u.backend != nil {
		s.Backend = u.backend.Name()
	}
	return s
}

// DeletePartial removes whatever the current backend holds at key. A missing
// artifact is not an error.
func (u *Uploader) DeletePartial(ctx context.Context, key string) error {
	u.mu.RLock()
	backend := u.backend
	u.mu.RUnlock()

	if err := backend.DeletePartial(ctx, key); err != nil {
		return errors.BackendFailure(backend.Name(), err)
	}
	return nil
}

// state is what one upload sees of the Uploader for its whole lifetime.
type state struct {
	policy     *policy.Policy
	baseFolder string
	backend    storage.Backend
}

func (u *Uploader) snapshot() state {
	u.mu.RLock()
	defer u.mu.RUnlock()

	folder := u.baseFolder
	if local, ok := u.storageCfg.(storage.Local); ok {
		folder = util.Coalesce(folder, local.BaseFolder)
	}
	return state{
		policy:     u.policy.Clone(),
		baseFolder: folder,
		backend:    u.backend,
	}
}

// Upload streams src into the current backend.
//
// The declared type is checked before any byte is read. The byte ceiling is
// enforced while streaming, and the transfer stops at the first chunk that
// crosses it. On any failure the partial artifact at the destination key is
// deleted and the original error is returned: TYPE_MISMATCH, SIZE_EXCEEDED,
// IO_FAILURE for source errors, or BACKEND_FAILURE. If src is an io.Closer it
// is closed when the upload is rejected or fails.
func (u *Uploader) Upload(ctx context.Context, src io.Reader, req Request) (*Result, error) {
	start := time.Now()
	st := u.snapshot()

	key, keyErr := u.resolveKey(st.baseFolder, req)
	if keyErr != nil {
		key = req.Filename
	}
	backendName := st.backend.Name()

	ctx, span := observability.StartSpan(ctx, observability.SpanUpload, trace.WithAttributes(
		attribute.String(observability.AttrKey, key),
		attribute.String(observability.AttrBackend, backendName),
		attribute.String(observability.AttrType, req.Type),
	))
	defer span.End()

	fields := logger.Fields(
		logger.FieldKey, key,
		logger.FieldBackend, backendName,
		logger.FieldType, req.Type,
	)
	if req.RequestID != "" {
		fields[logger.FieldRequestID] = req.RequestID
		span.SetAttributes(attribute.String(observability.AttrRequestID, req.RequestID))
	}
	log := u.log.WithFields(fields)
	log.Debug("upload started")

	var (
		res *Result
		n   uint64
		err error
	)
	if keyErr != nil {
		// Nothing was written and key is not ours to clean up.
		closeSource(src)
		err = keyErr
	} else {
		res, n, err = u.transfer(ctx, st, key, src, req, log)
	}

	status := observability.StatusOK
	switch {
	case err == nil:
		log.Debug("upload completed", logger.MergeWithDuration(logger.Fields(logger.FieldBytes, n), time.Since(start)))
	case errors.IsPolicyRejection(err), errors.HasCode(err, errors.ErrCodeInvalidInput):
		status = observability.StatusRejected
		log.Warn("upload rejected", logger.Fields(logger.FieldCode, string(errors.CodeOf(err)), logger.FieldBytes, n, logger.FieldError, err.Error()))
	case errors.HasCode(err, errors.ErrCodeIOFailure):
		status = observability.StatusFailed
		log.Warn("upload source failed", logger.Fields(logger.FieldBytes, n, logger.FieldError, err.Error()))
	default:
		status = observability.StatusFailed
		log.Error("upload failed", logger.Fields(logger.FieldCode, string(errors.CodeOf(err)), logger.FieldBytes, n, logger.FieldError, err.Error()))
	}

	span.SetAttributes(
		attribute.Int64(observability.AttrBytes, int64(n)),
		attribute.String(observability.AttrStatus, status),
	)
	observability.SetSpanError(span, err)
	u.metrics.RecordUpload(ctx, observability.UploadRecord{
		Backend:  backendName,
		Status:   status,
		Code:     string(errors.CodeOf(err)),
		Bytes:    n,
		Duration: time.Since(start),
	})
	return res, err
}

// resolveKey picks the destination key for req.
func (u *Uploader) resolveKey(baseFolder string, req Request) (string, error) {
	switch {
	case req.Filename == "":
		return filepath.Join(baseFolder, u.newName()), nil
	case req.Confine:
		return confinedKey(baseFolder, req.Filename)
	default:
		return req.Filename, nil
	}
}

// confinedKey joins name onto base. Absolute names and names that climb out
// of base are rejected.
func confinedKey(base, name string) (string, error) {
	invalid := errors.InvalidInput("filename", "must be a relative path inside the upload folder")

	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == "." || escapes(clean) {
		return "", invalid
	}
	key := filepath.Join(base, clean)
	if base != "" {
		rel, err := filepath.Rel(base, key)
		if err != nil || escapes(rel) {
			return "", invalid
		}
	}
	return key, nil
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func closeSource(src io.Reader) {
	if c, ok := src.(io.Closer); ok {
		_ = c.Close()
	}
}

// transfer runs one upload and returns the bytes handed to the backend.
func (u *Uploader) transfer(ctx context.Context, st state, key string, src io.Reader, req Request, log *logger.Logger) (*Result, uint64, error) {
	if !st.policy.CheckType(req.Type, req.Filename) {
		closeSource(src)
		err := errors.TypeMismatch(req.Type, req.Filename)
		u.cleanup(ctx, st.backend, key, log)
		return nil, 0, err
	}

	p, writeCtx := pipe.New(ctx, src, st.policy)
	defer p.Close()

	location, werr := st.backend.Write(writeCtx, key, p, storage.Meta{ContentType: req.Type})
	if werr == nil && p.Err() == nil {
		return &Result{
			Key:          key,
			Location:     location,
			BytesWritten: p.Count(),
			Backend:      st.backend.Name(),
		}, p.Count(), nil
	}

	// A pipe failure is the root cause of whatever the backend reported and
	// Abort returns it. Otherwise the backend failed on its own and Abort
	// stops the source.
	err := p.Abort(errors.BackendFailure(st.backend.Name(), werr))
	u.cleanup(ctx, st.backend, key, log)
	return nil, p.Count(), err
}

// cleanup deletes the partial artifact at key. Failures are logged and
// counted, never returned: the caller reports the original error.
func (u *Uploader) cleanup(ctx context.Context, backend storage.Backend, key string, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if err := backend.DeletePartial(ctx, key); err != nil {
		log.Warn("partial artifact cleanup failed", logger.ErrorFields("delete_partial", err))
		u.metrics.RecordCleanupFailure(ctx, backend.Name())
	}
}
