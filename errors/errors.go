package errors

import "fmt"

// PlatformError is an error with a code, a retry classification and
// attached metadata.
type PlatformError interface {
	error

	// Code returns the error code identifying the type of error.
	Code() ErrorCode

	// Classification returns whether the error is retryable or permanent.
	Classification() ErrorClassification

	// Message returns the human-readable message without the cause.
	Message() string

	// Context returns a copy of the attached metadata, or nil.
	Context() map[string]interface{}

	// Unwrap returns the wrapped cause, or nil.
	Unwrap() error
}

type platformError struct {
	code           ErrorCode
	classification ErrorClassification
	message        string
	context        map[string]interface{}
	cause          error
}

func (e *platformError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

func (e *platformError) Code() ErrorCode                     { return e.code }
func (e *platformError) Classification() ErrorClassification { return e.classification }
func (e *platformError) Message() string                     { return e.message }
func (e *platformError) Unwrap() error                       { return e.cause }

func (e *platformError) Context() map[string]interface{} {
	return copyContext(e.context, 0)
}

// copyContext returns a copy of ctx with room for extra keys, or nil when
// ctx is empty and no room was requested.
func copyContext(ctx map[string]interface{}, extra int) map[string]interface{} {
	if len(ctx) == 0 && extra == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(ctx)+extra)
	for k, v := range ctx {
		out[k] = v
	}
	return out
}
