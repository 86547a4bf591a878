package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	details := NewErrorDetails("stream down", string(RedisXAddError), "stream")
	assert.Equal(t, RedisXAddError, CodeOf(details))

	wrapped := WithCode(details, LedgerAppendError)
	assert.Equal(t, LedgerAppendError, CodeOf(wrapped))

	// Wrapping with fmt preserves the code through Unwrap.
	assert.Equal(t, LedgerAppendError, CodeOf(fmt.Errorf("append failed: %w", wrapped)))

	assert.Equal(t, ErrorCode(""), CodeOf(fmt.Errorf("plain")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewErrorDetails("down", string(RedisConnectionError), "")))
	assert.True(t, IsRetryable(WithCode(fmt.Errorf("boom"), StreamProcessingError)))

	assert.False(t, IsRetryable(NewValidation("bad price", "price")))
	assert.False(t, IsRetryable(NewBook("corrupt level")))
	assert.False(t, IsRetryable(NewConfiguration("missing address", "REDIS_ADDRESS")))

	// Unclassified errors are treated as environmental.
	assert.True(t, IsRetryable(fmt.Errorf("unknown")))
}

func TestWithCodeNil(t *testing.T) {
	assert.NoError(t, WithCode(nil, LedgerAppendError))
}

func TestErrorCodeEquals(t *testing.T) {
	err := NewValidation("bad", "field")
	assert.True(t, ErrorCodeEquals(err, string(OrderValidationError)))
	assert.False(t, ErrorCodeEquals(err, string(OrderBookError)))
	assert.False(t, ErrorCodeEquals(fmt.Errorf("plain"), string(OrderBookError)))
}
