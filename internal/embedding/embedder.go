// Package embedding generates vector embeddings for processed chunks. It
// wraps provider backends behind the Embedder interface and adds the
// batch-with-fallback generation used by the ingestion pipeline.
package embedding

import (
	"context"

	"github.com/graphlore/graphlore/internal/types"
)

// Embedder generates embedding vectors from text content.
// Implementations must be thread-safe for concurrent access.
type Embedder interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	// The result has one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Dimensions returns the dimensionality of embedding vectors.
	Dimensions() int

	// Model returns the name of the embedding model being used.
	Model() string

	// Health returns the health status of the embedder.
	Health(ctx context.Context) types.HealthStatus
}

// Config holds configuration for embedding providers.
type Config struct {
	// Provider selects the embedder implementation: "openai", "ollama" or "mock".
	Provider string `yaml:"provider" json:"provider" mapstructure:"provider" validate:"required"`

	// Model is the embedding model name.
	// OpenAI: "text-embedding-3-small" (1536 dims) or "text-embedding-3-large" (3072 dims).
	// Ollama: "nomic-embed-text" (768 dims) and friends.
	Model string `yaml:"model" json:"model" mapstructure:"model" validate:"required"`

	// APIKey is the provider API key. Falls back to OPENAI_API_KEY for the
	// openai provider.
	APIKey string `yaml:"api_key" json:"api_key" mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint. For ollama it defaults to
	// http://localhost:11434.
	BaseURL string `yaml:"base_url" json:"base_url" mapstructure:"base_url"`

	// Dimensions overrides the vector dimensionality when the model is not
	// one of the known defaults.
	Dimensions int `yaml:"dimensions" json:"dimensions" mapstructure:"dimensions"`

	// BatchSize caps how many texts go into a single provider call.
	BatchSize int `yaml:"batch_size" json:"batch_size" mapstructure:"batch_size"`
}

// modelDimensions maps known embedding models to their vector size.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
	"all-minilm":             384,
}

// DefaultBatchSize is the provider call batch size when none is configured.
const DefaultBatchSize = 64

// Validate checks if the Config is usable.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return types.NewError(types.EMBEDDING_FAILED, "embedder provider cannot be empty")
	}
	if c.Model == "" {
		return types.NewError(types.EMBEDDING_FAILED, "embedder model cannot be empty")
	}
	if c.Dimensions < 0 {
		return types.NewError(types.EMBEDDING_FAILED, "embedder dimensions must be non-negative")
	}
	if c.BatchSize < 0 {
		return types.NewError(types.EMBEDDING_FAILED, "embedder batch_size must be non-negative")
	}
	return nil
}

// ResolveDimensions returns the configured dimensionality, falling back to
// the known default for the model.
func (c *Config) ResolveDimensions() int {
	if c.Dimensions > 0 {
		return c.Dimensions
	}
	if dims, ok := modelDimensions[c.Model]; ok {
		return dims
	}
	return 0
}

// DefaultConfig returns the default OpenAI embedder configuration.
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Model:     "text-embedding-3-small",
		BatchSize: DefaultBatchSize,
	}
}

// toFloat64 widens a provider vector to the float64 representation used
// throughout the pipeline.
func toFloat64(vec []float32) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = float64(v)
	}
	return out
}
