package store

import (
	"context"
	"sync"

	"github.com/graphlore/graphlore/internal/source"
	"github.com/graphlore/graphlore/internal/types"
)

// MockStorer records stored results in memory. StoreErr, when set, fails
// every Store call after the result is still recorded as attempted.
type MockStorer struct {
	mu       sync.Mutex
	name     string
	stored   []*source.ProcessingResult
	attempts int

	StoreErr error
}

// NewMockStorer creates a mock storer with the given name.
func NewMockStorer(name string) *MockStorer {
	return &MockStorer{name: name}
}

// Name returns the configured name.
func (m *MockStorer) Name() string { return m.name }

// Store records the result, or fails with StoreErr.
func (m *MockStorer) Store(ctx context.Context, src *source.DataSource, result *source.ProcessingResult) (*StoreResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.StoreErr != nil {
		return nil, m.StoreErr
	}
	m.stored = append(m.stored, result)

	out := NewStoreResult()
	out.AddSink(m.name, SinkResult{
		ChunksStored:    len(result.Chunks),
		RelationsStored: len(result.Relations),
	})
	return out, nil
}

// Health always reports healthy.
func (m *MockStorer) Health(ctx context.Context) types.HealthStatus {
	return types.Healthy("mock storer operational")
}

// Attempts returns how many Store calls were made, including failed ones.
func (m *MockStorer) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// Stored returns the successfully stored results.
func (m *MockStorer) Stored() []*source.ProcessingResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*source.ProcessingResult, len(m.stored))
	copy(out, m.stored)
	return out
}
