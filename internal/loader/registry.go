package loader

import (
	"log/slog"
	"sync"

	"github.com/graphlore/graphlore/internal/source"
)

// Registry holds an ordered list of loaders. The first loader whose CanHandle
// returns true wins, so ordering is a correctness invariant: specific loaders
// must precede the generic file and content fallbacks.
type Registry struct {
	mu      sync.RWMutex
	loaders []Loader
	logger  *slog.Logger
}

// NewRegistry creates a registry with the default loader chain:
// document, code, SQL, web, then the file and inline-content fallbacks.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		loaders: []Loader{
			NewDocumentLoader(),
			NewCodeLoader(),
			NewSQLLoader(),
			NewWebLoader(),
			NewFileLoader(),
			NewContentLoader(),
		},
		logger: logger.With("component", "loader_registry"),
	}
}

// Register prepends a loader, giving it priority over all existing loaders.
func (r *Registry) Register(l Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders = append([]Loader{l}, r.loaders...)
	r.logger.Debug("loader registered", "loader", l.Name(), "total", len(r.loaders))
}

// GetLoader returns the first loader that can handle the source, or a
// LOADER_NOT_FOUND error when none matches.
func (r *Registry) GetLoader(src *source.DataSource) (Loader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.loaders {
		if l.CanHandle(src) {
			return l, nil
		}
	}
	return nil, NewNoLoaderFoundError(src)
}

// Loaders returns a snapshot of the registered loaders in selection order.
func (r *Registry) Loaders() []Loader {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Loader, len(r.loaders))
	copy(out, r.loaders)
	return out
}
