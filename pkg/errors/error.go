package errors

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// OrderValidationError represents a malformed or business-rule-violating command.
	OrderValidationError ErrorCode = "order_validation_error"
	// InvalidOrderTypeError represents an order type outside market/limit.
	InvalidOrderTypeError ErrorCode = "invalid_order_type_error"
	// InvalidOrderSideError represents an order side outside buy/sell.
	InvalidOrderSideError ErrorCode = "invalid_order_side_error"
	// MissingFieldError represents a command missing a required field.
	MissingFieldError ErrorCode = "missing_field_error"
	// UnknownCommandError represents a command whose type tag is not recognized.
	UnknownCommandError ErrorCode = "unknown_command_error"

	// OrderBookError represents an invariant violation inside an order book.
	OrderBookError ErrorCode = "order_book_error"
	// OrderExecutionError represents a matching failure for a single order.
	OrderExecutionError ErrorCode = "order_execution_error"

	// LedgerAppendError represents a failure to append an entry to the ledger stream.
	LedgerAppendError ErrorCode = "ledger_append_error"
	// LedgerReplayError represents a failure while replaying the ledger at startup.
	LedgerReplayError ErrorCode = "ledger_replay_error"
	// StreamProcessingError represents a failure reading or acknowledging the command stream.
	StreamProcessingError ErrorCode = "stream_processing_error"
	// ViewEmissionError represents a failure publishing a projection.
	ViewEmissionError ErrorCode = "view_emission_error"
	// SnapshotError represents a failure capturing or restoring a book snapshot.
	SnapshotError ErrorCode = "snapshot_error"
	// BootstrapError represents a failure loading open orders at cold start.
	BootstrapError ErrorCode = "bootstrap_error"

	// ConfigurationError represents a missing or invalid required setting. Fatal at startup.
	ConfigurationError ErrorCode = "configuration_error"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
	// RedisPublishError represents an error when publishing messages to channels in Redis.
	RedisPublishError ErrorCode = "redis_publish_error"
	// RedisXAddError represents an error when adding entries to a stream in Redis.
	RedisXAddError ErrorCode = "redis_xadd_error"
	// RedisXLenError represents an error when getting the length of a stream in Redis.
	RedisXLenError ErrorCode = "redis_xlen_error"
	// RedisXReadError represents an error when reading from a stream in Redis.
	RedisXReadError ErrorCode = "redis_xread_error"
	// RedisXReadGroupError represents an error when reading from a stream group in Redis.
	RedisXReadGroupError ErrorCode = "redis_xreadgroup_error"
	// RedisXAckError represents an error when acknowledging a stream entry in Redis.
	RedisXAckError ErrorCode = "redis_xack_error"
	// RedisXAutoClaimError represents an error when reclaiming pending stream entries in Redis.
	RedisXAutoClaimError ErrorCode = "redis_xautoclaim_error"
	// RedisXGroupCreateError represents an error when creating a consumer group in Redis.
	RedisXGroupCreateError ErrorCode = "redis_xgroup_create_error"
)

// retryableCodes lists the infrastructure error codes whose failures are
// transient: the command stays unacknowledged and will be redelivered.
// Validation, book and configuration failures are terminal for the command.
var retryableCodes = map[ErrorCode]bool{
	LedgerAppendError:      true,
	LedgerReplayError:      true,
	StreamProcessingError:  true,
	ViewEmissionError:      true,
	RedisConnectionError:   true,
	RedisGetError:          true,
	RedisSetError:          true,
	RedisPublishError:      true,
	RedisXAddError:         true,
	RedisXLenError:         true,
	RedisXReadError:        true,
	RedisXReadGroupError:   true,
	RedisXAckError:         true,
	RedisXAutoClaimError:   true,
	RedisXGroupCreateError: true,
}

// Coded attaches an ErrorCode to an underlying error so the ingestion loop
// can classify it without inspecting the cause.
type Coded struct {
	ErrCode ErrorCode
	Err     error
}

// WithCode wraps err with the given code. A nil err returns nil.
func WithCode(err error, code ErrorCode) error {
	if err == nil {
		return nil
	}
	return &Coded{ErrCode: code, Err: err}
}

// Error implements the error interface.
func (c *Coded) Error() string {
	return c.Err.Error()
}

// Unwrap returns the underlying error.
func (c *Coded) Unwrap() error {
	return c.Err
}

// IsRetryable reports whether the given error belongs to the retryable
// infrastructure class. Errors that carry no code are treated as retryable,
// since an unclassified failure is most likely environmental.
func IsRetryable(err error) bool {
	if code := CodeOf(err); code != "" {
		return retryableCodes[code]
	}
	return true
}

// CodeOf returns the error code carried by err, unwrapping as needed.
// Returns an empty code when none is attached.
func CodeOf(err error) ErrorCode {
	for err != nil {
		if coded, ok := err.(*Coded); ok {
			return coded.ErrCode
		}
		if details, ok := err.(*ErrorDetails); ok {
			return ErrorCode(details.Code)
		}
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			err = unwrapper.Unwrap()
			continue
		}
		return ""
	}
	return ""
}
