package embedding

import (
	"fmt"

	"github.com/graphlore/graphlore/internal/types"
)

// Provider identifies an embedder implementation.
type Provider string

const (
	// ProviderOpenAI uses the OpenAI embeddings API. Requires an API key.
	ProviderOpenAI Provider = "openai"

	// ProviderOllama uses a local Ollama server. No API key required.
	ProviderOllama Provider = "ollama"

	// ProviderMock is the deterministic in-memory embedder for tests.
	ProviderMock Provider = "mock"
)

// NewEmbedder creates an embedder from the configuration. Unknown providers
// fail fast: embedding is a core pipeline stage and misconfiguration should
// surface at startup, not mid-ingest.
func NewEmbedder(cfg Config) (Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch Provider(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAIEmbedder(cfg)
	case ProviderOllama:
		return NewOllamaEmbedder(cfg)
	case ProviderMock:
		return NewMockEmbedder(cfg.ResolveDimensions()), nil
	default:
		return nil, types.NewError(types.EMBEDDING_FAILED,
			fmt.Sprintf("unknown embedder provider %q (must be openai, ollama or mock)", cfg.Provider))
	}
}
