package storage

import (
	"fmt"
	"sync"

	"github.com/kbukum/streamupload/logger"
)

// Factory builds a Backend from its Config variant. Each backend type-asserts
// cfg to its own variant.
type Factory func(cfg Config, log *logger.Logger) (Backend, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[Kind]Factory)
)

// RegisterFactory registers a backend factory for the given kind.
// Implementation packages call this in an init function to make themselves
// available to New.
func RegisterFactory(kind Kind, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[kind] = f
}

// New validates cfg and builds the Backend registered for its kind.
// Ensure the backend package has been imported (e.g.
// _ "github.com/kbukum/streamupload/storage/local") so its factory is registered.
func New(cfg Config, log *logger.Logger) (Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage: no configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factoriesMu.RLock()
	f, ok := factories[cfg.Kind()]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported provider %q (not registered)", cfg.Kind())
	}

	l := log.WithComponent("storage")
	l.Info("initializing storage", logger.Fields(logger.FieldBackend, string(cfg.Kind())))
	return f(cfg, l)
}
