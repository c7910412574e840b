package upload

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/kbukum/streamupload/component"
	"github.com/kbukum/streamupload/errors"
	"github.com/kbukum/streamupload/logger"
	"github.com/kbukum/streamupload/storage"
)

const componentName = "uploader"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component builds an Uploader from settings when the service starts.
type Component struct {
	settings Settings
	storage  storage.Settings
	options  []Option
	log      *logger.Logger

	mu       sync.RWMutex
	uploader *Uploader
}

// NewComponent returns a component that builds its Uploader on Start.
func NewComponent(settings Settings, storageSettings storage.Settings, log *logger.Logger, opts ...Option) *Component {
	if log == nil {
		log = logger.Nop()
	}
	return &Component{
		settings: settings,
		storage:  storageSettings,
		options:  append([]Option{WithLogger(log)}, opts...),
		log:      log.WithComponent(componentName),
	}
}

// Name returns the component name used for registration.
func (c *Component) Name() string { return componentName }

// Start resolves the storage settings and builds the Uploader.
func (c *Component) Start(_ context.Context) error {
	cfg, err := c.storage.Resolve()
	if err != nil {
		return fmt.Errorf("uploader storage: %w", err)
	}
	u, err := New(c.settings.Options(cfg), c.options...)
	if err != nil {
		return fmt.Errorf("uploader: %w", err)
	}

	c.mu.Lock()
	c.uploader = u
	c.mu.Unlock()

	c.log.Info("uploader ready", logger.Fields(logger.FieldBackend, u.Settings().Backend))
	return nil
}

// Stop releases the Uploader. In-flight uploads finish on their snapshot.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	c.uploader = nil
	c.mu.Unlock()
	return nil
}

// Health reports whether the Uploader is built and which backend it uses.
func (c *Component) Health(_ context.Context) component.Health {
	u := c.Uploader()
	if u == nil {
		return component.Health{
			Name:    componentName,
			Status:  component.StatusUnhealthy,
			Message: "uploader not started",
		}
	}
	return component.Health{
		Name:    componentName,
		Status:  component.StatusHealthy,
		Message: "backend=" + u.Settings().Backend,
	}
}

// Describe summarizes the configuration for the startup log.
func (c *Component) Describe() component.Description {
	details := "storage=" + c.storage.Provider
	if u := c.Uploader(); u != nil {
		s := u.Settings()
		details = "storage=" + s.Storage
		if s.MaxSize != nil {
			details += fmt.Sprintf(" max_size=%d", *s.MaxSize)
		}
	}
	return component.Description{Name: "Uploader", Type: "uploader", Details: details}
}

// Uploader returns the running Uploader, or nil before Start.
func (c *Component) Uploader() *Uploader {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.uploader
}

// Upload delegates to the running Uploader.
func (c *Component) Upload(ctx context.Context, src io.Reader, req Request) (*Result, error) {
	u := c.Uploader()
	if u == nil {
		if cl, ok := src.(io.Closer); ok {
			_ = cl.Close()
		}
		return nil, errors.Internal(fmt.Errorf("uploader not started"))
	}
	return u.Upload(ctx, src, req)
}
