package embedding

import "github.com/graphlore/graphlore/internal/types"

// NewEmbeddingError wraps a provider failure. Embedding failures are
// retryable: the pipeline may re-run the source after transient provider
// outages.
func NewEmbeddingError(message string, cause error) *types.CodedError {
	err := types.WrapError(types.EMBEDDING_FAILED, message, cause)
	err.Retryable = true
	return err
}
