package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sync"

	"github.com/graphlore/graphlore/internal/types"
)

// MockEmbedder is a deterministic in-memory embedder for tests and offline
// runs. Vectors are derived from a content hash, so equal texts always embed
// to equal vectors.
type MockEmbedder struct {
	mu         sync.Mutex
	dimensions int

	// EmbedFunc, when set, replaces the hash-based vector generation.
	EmbedFunc func(ctx context.Context, text string) ([]float64, error)

	// BatchErr, when set, fails EmbedBatch while leaving Embed working.
	// Exercises the pipeline's per-item fallback path.
	BatchErr error

	// FailTexts fails Embed for specific inputs.
	FailTexts map[string]error

	embedCalls int
	batchCalls int
}

// NewMockEmbedder creates a mock embedder with the given dimensionality.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 8
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed generates a deterministic vector for the text.
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	m.mu.Lock()
	m.embedCalls++
	fn := m.EmbedFunc
	failErr := m.FailTexts[text]
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failErr != nil {
		return nil, failErr
	}
	if fn != nil {
		return fn(ctx, text)
	}
	return hashVector(text, m.dimensions), nil
}

// EmbedBatch generates vectors for all texts, or fails wholesale when
// BatchErr is set.
func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	m.mu.Lock()
	m.batchCalls++
	batchErr := m.BatchErr
	m.mu.Unlock()

	if batchErr != nil {
		return nil, batchErr
	}
	vecs := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vecs[i] = vec
	}
	return vecs, nil
}

// Dimensions returns the mock dimensionality.
func (m *MockEmbedder) Dimensions() int { return m.dimensions }

// Model returns the mock model name.
func (m *MockEmbedder) Model() string { return "mock-embedder" }

// Health always reports healthy.
func (m *MockEmbedder) Health(ctx context.Context) types.HealthStatus {
	return types.Healthy("mock embedder operational")
}

// EmbedCalls returns how many single-text embeddings were requested.
func (m *MockEmbedder) EmbedCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.embedCalls
}

// BatchCalls returns how many batch embeddings were requested.
func (m *MockEmbedder) BatchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batchCalls
}

// hashVector derives a unit-length vector from the text's SHA-256 digest.
func hashVector(text string, dimensions int) []float64 {
	digest := sha256.Sum256([]byte(text))
	vec := make([]float64, dimensions)
	var norm float64
	for i := range vec {
		seed := binary.BigEndian.Uint32(digest[(i*4)%28 : (i*4)%28+4])
		v := float64(seed%2000)/1000.0 - 1.0
		vec[i] = v
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
