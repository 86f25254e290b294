package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodedError_Error(t *testing.T) {
	err := NewError(LOAD_FAILED, "cannot read file")
	assert.Equal(t, "[LOAD_FAILED] cannot read file", err.Error())

	wrapped := WrapError(LOAD_FAILED, "cannot read file", errors.New("permission denied"))
	assert.Equal(t, "[LOAD_FAILED] cannot read file: permission denied", wrapped.Error())
}

func TestCodedError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapError(STORAGE_FAILED, "write failed", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestCodedError_IsMatchesByCode(t *testing.T) {
	a := NewError(QUERY_TIMEOUT, "query exceeded deadline")
	b := NewError(QUERY_TIMEOUT, "different message")
	c := NewError(QUERY_PROCESSING_ERROR, "boom")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestCodedError_WrappedInChain(t *testing.T) {
	inner := NewError(EMBEDDING_FAILED, "provider down")
	outer := fmt.Errorf("stage failed: %w", inner)

	assert.True(t, errors.Is(outer, NewError(EMBEDDING_FAILED, "")))
	assert.Equal(t, EMBEDDING_FAILED, CodeOf(outer))
}

func TestCodeOf_NonCodedError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewRetryableError(EMBEDDING_FAILED, "rate limited")))
	assert.False(t, IsRetryable(NewError(EMBEDDING_FAILED, "bad input")))
	assert.False(t, IsRetryable(errors.New("plain")))
}
