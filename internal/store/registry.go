package store

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/graphlore/graphlore/internal/types"
)

// Registry holds named storers. Unlike the loader and transformer
// registries, storers are selected by name rather than by source: the
// pipeline asks for one storer (usually "hybrid") and writes everything
// through it.
type Registry struct {
	mu      sync.RWMutex
	storers map[string]Storer
	logger  *slog.Logger
}

// NewRegistry creates an empty storer registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		storers: make(map[string]Storer),
		logger:  logger.With("component", "storer_registry"),
	}
}

// Register adds a storer under its name, replacing any previous storer with
// the same name.
func (r *Registry) Register(s Storer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storers[s.Name()] = s
	r.logger.Debug("storer registered", "storer", s.Name(), "total", len(r.storers))
}

// Get returns the storer registered under name.
func (r *Registry) Get(name string) (Storer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.storers[name]
	if !ok {
		return nil, types.NewError(types.STORAGE_FAILED,
			fmt.Sprintf("no storer registered under %q", name))
	}
	return s, nil
}

// Names returns the registered storer names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.storers))
	for name := range r.storers {
		names = append(names, name)
	}
	return names
}
