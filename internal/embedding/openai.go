package embedding

import (
	"context"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/llms/openai"

	"github.com/graphlore/graphlore/internal/types"
)

// OpenAIEmbedder generates embeddings through the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client     *openai.LLM
	model      string
	dimensions int
}

// NewOpenAIEmbedder creates an OpenAI-backed embedder. The API key comes
// from the config or the OPENAI_API_KEY environment variable.
func NewOpenAIEmbedder(cfg Config) (*OpenAIEmbedder, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, types.NewError(types.EMBEDDING_FAILED,
			"openai embedder requires api_key (or OPENAI_API_KEY environment variable)")
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, NewEmbeddingError("failed to initialize openai client", err)
	}

	return &OpenAIEmbedder{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.ResolveDimensions(),
	}, nil
}

// Embed generates an embedding for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one API call.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	raw, err := e.client.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, NewEmbeddingError(fmt.Sprintf("openai embedding failed for %d texts", len(texts)), err)
	}
	if len(raw) != len(texts) {
		return nil, NewEmbeddingError(
			fmt.Sprintf("openai returned %d embeddings for %d texts", len(raw), len(texts)), nil)
	}
	vecs := make([][]float64, len(raw))
	for i, v := range raw {
		vecs[i] = toFloat64(v)
	}
	return vecs, nil
}

// Dimensions returns the embedding dimensionality.
func (e *OpenAIEmbedder) Dimensions() int { return e.dimensions }

// Model returns the embedding model name.
func (e *OpenAIEmbedder) Model() string { return e.model }

// Health probes the API with a minimal embedding request.
func (e *OpenAIEmbedder) Health(ctx context.Context) types.HealthStatus {
	if _, err := e.client.CreateEmbedding(ctx, []string{"ping"}); err != nil {
		return types.Unhealthy(fmt.Sprintf("openai embedding probe failed: %v", err))
	}
	return types.Healthy("openai embedder operational")
}
