// Package pipe provides the validating reader that sits between an upload's
// source stream and its storage backend.
package pipe

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/kbukum/streamupload/errors"
)

// SizeChecker decides whether a running byte count is still acceptable.
// *policy.Policy satisfies it.
type SizeChecker interface {
	CheckSize(n uint64) bool
	MaxSize() (uint64, bool)
}

// Pipe is an io.Reader that counts the bytes it hands on and enforces a size
// ceiling chunk by chunk. It is single-consumer: one backend reads it once.
//
// On the first violation or source error the pipe records the failure, closes
// the source if it is an io.Closer, and cancels the context returned by New
// with the failure as cause. Every later Read returns the same failure.
type Pipe struct {
	src    io.Reader
	limit  SizeChecker
	cancel context.CancelCauseFunc

	count atomic.Uint64

	mu  sync.Mutex
	err error
}

// New wraps src. The returned context is derived from ctx and is cancelled
// when the pipe fails; backends should run their I/O under it.
func New(ctx context.Context, src io.Reader, limit SizeChecker) (*Pipe, context.Context) {
	ctx, cancel := context.WithCancelCause(ctx)
	return &Pipe{src: src, limit: limit, cancel: cancel}, ctx
}

// Read pulls one chunk from the source. A chunk that would take the running
// count past the ceiling is withheld and the pipe fails with SIZE_EXCEEDED.
// Source errors other than io.EOF fail the pipe with IO_FAILURE.
func (p *Pipe) Read(b []byte) (int, error) {
	if err := p.Err(); err != nil {
		return 0, err
	}

	n, err := p.src.Read(b)
	if n > 0 {
		next := p.count.Load() + uint64(n)
		if !p.limit.CheckSize(next) {
			limit, _ := p.limit.MaxSize()
			return 0, p.fail(errors.SizeExceeded(next, limit))
		}
		p.count.Store(next)
	}

	if err != nil && err != io.EOF {
		return n, p.fail(errors.IOFailure(err))
	}
	return n, err
}

// Count returns the number of bytes handed to the reader's consumer so far.
func (p *Pipe) Count() uint64 {
	return p.count.Load()
}

// Err returns the recorded failure, if any.
func (p *Pipe) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Abort fails the pipe with err unless it already failed, stopping the source
// and cancelling the backend context. It returns the recorded failure.
func (p *Pipe) Abort(err error) error {
	return p.fail(err)
}

// Close releases the pipe's context. It does not record a failure.
func (p *Pipe) Close() error {
	p.cancel(nil)
	return nil
}

func (p *Pipe) fail(err error) error {
	p.mu.Lock()
	if p.err != nil {
		err = p.err
		p.mu.Unlock()
		return err
	}
	p.err = err
	p.mu.Unlock()

	// Stop the producer first, then the consumer.
	if c, ok := p.src.(io.Closer); ok {
		_ = c.Close()
	}
	p.cancel(err)
	return err
}
