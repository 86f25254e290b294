package transform

import (
	"log/slog"
	"sync"

	"github.com/graphlore/graphlore/internal/source"
)

// Registry holds an ordered list of transformers with first-match selection.
// Specific transformers precede the generic fallback; Register prepends so
// custom transformers shadow the defaults.
type Registry struct {
	mu           sync.RWMutex
	transformers []Transformer
	logger       *slog.Logger
}

// NewRegistry creates a registry with the default chain:
// document, code, SQL, then the generic size-chunking fallback.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		transformers: []Transformer{
			NewDocumentTransformer(),
			NewCodeTransformer(),
			NewSQLTransformer(),
			NewGenericTransformer(),
		},
		logger: logger.With("component", "transformer_registry"),
	}
}

// Register prepends a transformer, giving it priority over existing ones.
func (r *Registry) Register(t Transformer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transformers = append([]Transformer{t}, r.transformers...)
	r.logger.Debug("transformer registered", "transformer", t.Name(), "total", len(r.transformers))
}

// GetTransformer returns the first transformer that accepts the source.
func (r *Registry) GetTransformer(src *source.DataSource) (Transformer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.transformers {
		if t.CanHandle(src) {
			return t, nil
		}
	}
	return nil, NewNoTransformerFoundError(src)
}

// Transformers returns a snapshot of the registered transformers in
// selection order.
func (r *Registry) Transformers() []Transformer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Transformer, len(r.transformers))
	copy(out, r.transformers)
	return out
}
