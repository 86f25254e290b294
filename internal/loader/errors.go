package loader

import (
	"fmt"

	"github.com/graphlore/graphlore/internal/source"
	"github.com/graphlore/graphlore/internal/types"
)

// NewNoLoaderFoundError creates the error returned when no registered loader
// can handle a source. Surfaced by the orchestrator as a failed result.
func NewNoLoaderFoundError(src *source.DataSource) *types.CodedError {
	return types.NewError(types.LOADER_NOT_FOUND,
		fmt.Sprintf("no loader found for source %q (type %s)", src.Name, src.Type))
}

// NewLoadError wraps a loading failure (missing file, encoding, extraction).
func NewLoadError(message string, cause error) *types.CodedError {
	return types.WrapError(types.LOAD_FAILED, message, cause)
}
