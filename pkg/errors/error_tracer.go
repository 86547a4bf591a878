package errors

import "github.com/pkg/errors"

// StackTracer is satisfied by errors that carry a captured stack.
type StackTracer interface {
	StackTrace() errors.StackTrace
}

// ErrorTracer pairs an error with a stack trace for logging. Infrastructure
// failures (redis, kafka, postgres) pass through it on their way to the
// logger; coded errors keep their code because the original error stays
// reachable through Unwrap.
type ErrorTracer struct {
	Message string
	Err     error
}

// TracerFromError wraps an error for stack-traced logging, capturing the
// stack here unless the error already carries one.
func TracerFromError(err error) *ErrorTracer {
	wrapped := err
	if _, ok := err.(StackTracer); !ok {
		wrapped = errors.WithStack(err)
	}
	return &ErrorTracer{
		Message: err.Error(),
		Err:     wrapped,
	}
}

func (e *ErrorTracer) Error() string {
	return e.Message
}

func (e *ErrorTracer) Unwrap() error {
	return e.Err
}

// StackTrace returns the captured stack of the wrapped error.
func (e *ErrorTracer) StackTrace() errors.StackTrace {
	if withStack, ok := e.Err.(StackTracer); ok {
		return withStack.StackTrace()
	}
	return nil
}
