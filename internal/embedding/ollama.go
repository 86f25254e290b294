package embedding

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/graphlore/graphlore/internal/types"
)

// defaultOllamaURL is the local Ollama endpoint.
const defaultOllamaURL = "http://localhost:11434"

// OllamaEmbedder generates embeddings through a local Ollama server.
// No API key required.
type OllamaEmbedder struct {
	client     *ollama.LLM
	model      string
	dimensions int
}

// NewOllamaEmbedder creates an Ollama-backed embedder.
func NewOllamaEmbedder(cfg Config) (*OllamaEmbedder, error) {
	serverURL := cfg.BaseURL
	if serverURL == "" {
		serverURL = defaultOllamaURL
	}

	client, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, NewEmbeddingError("failed to initialize ollama client", err)
	}

	return &OllamaEmbedder{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.ResolveDimensions(),
	}, nil
}

// Embed generates an embedding for a single text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for multiple texts.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	raw, err := e.client.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, NewEmbeddingError(fmt.Sprintf("ollama embedding failed for %d texts", len(texts)), err)
	}
	if len(raw) != len(texts) {
		return nil, NewEmbeddingError(
			fmt.Sprintf("ollama returned %d embeddings for %d texts", len(raw), len(texts)), nil)
	}
	vecs := make([][]float64, len(raw))
	for i, v := range raw {
		vecs[i] = toFloat64(v)
	}
	return vecs, nil
}

// Dimensions returns the embedding dimensionality.
func (e *OllamaEmbedder) Dimensions() int { return e.dimensions }

// Model returns the embedding model name.
func (e *OllamaEmbedder) Model() string { return e.model }

// Health probes the server with a minimal embedding request.
func (e *OllamaEmbedder) Health(ctx context.Context) types.HealthStatus {
	if _, err := e.client.CreateEmbedding(ctx, []string{"ping"}); err != nil {
		return types.Unhealthy(fmt.Sprintf("ollama embedding probe failed: %v", err))
	}
	return types.Healthy("ollama embedder operational")
}
