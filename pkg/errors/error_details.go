package errors

// ErrorDetails represents detailed information about an error.
type ErrorDetails struct {
	// Message (required) is the user-defined error message.
	// E.g. "limit orders must have a price greater than 0".
	Message string

	// Code (required) is the error code string, one of the ErrorCode constants.
	Code string

	// Field (optional) is the related field the error occurred on, if any.
	Field string

	// Object (optional) is the related object the error occurred on, if any.
	Object interface{}
}

// NewErrorDetails creates a new ErrorDetails struct with the given parameters.
func NewErrorDetails(message, code, field string) *ErrorDetails {
	return &ErrorDetails{
		Message: message,
		Code:    code,
		Field:   field,
	}
}

// NewErrorDetailsWithObject creates a new ErrorDetails struct with an associated object.
func NewErrorDetailsWithObject(message, code, field string, object interface{}) *ErrorDetails {
	return &ErrorDetails{
		Message: message,
		Code:    code,
		Field:   field,
		Object:  object,
	}
}

// Error() is used to implement the Golang `error` interface.
func (e *ErrorDetails) Error() string {
	return e.Message
}

// ErrorCodeEquals checks whether a given `error` has a specific code.
func ErrorCodeEquals(err error, code string) bool {
	errDetails, ok := err.(*ErrorDetails)
	if !ok {
		return false
	}

	return errDetails.Code == code
}

// NewValidation creates a validation-class error for the given field.
func NewValidation(message, field string) *ErrorDetails {
	return NewErrorDetails(message, string(OrderValidationError), field)
}

// NewBook creates a book-invariant-class error.
func NewBook(message string) *ErrorDetails {
	return NewErrorDetails(message, string(OrderBookError), "")
}

// NewConfiguration creates a configuration-class error, fatal at startup.
func NewConfiguration(message, field string) *ErrorDetails {
	return NewErrorDetails(message, string(ConfigurationError), field)
}
