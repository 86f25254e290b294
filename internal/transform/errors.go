package transform

import (
	"fmt"

	"github.com/graphlore/graphlore/internal/source"
	"github.com/graphlore/graphlore/internal/types"
)

// NewNoTransformerFoundError creates the error returned when no registered
// transformer accepts a source. With the generic fallback registered this
// only happens on a custom registry.
func NewNoTransformerFoundError(src *source.DataSource) *types.CodedError {
	return types.NewError(types.TRANSFORM_FAILED,
		fmt.Sprintf("no transformer found for source %q (type %s)", src.Name, src.Type))
}

// NewTransformError wraps a genuine transformation failure.
func NewTransformError(message string, cause error) *types.CodedError {
	return types.WrapError(types.TRANSFORM_FAILED, message, cause)
}
