package errors

import (
	"errors"
	"fmt"
)

// New creates an error with the given code and message.
func New(code ErrorCode, message string) PlatformError {
	return &platformError{
		code:           code,
		classification: classify(code),
		message:        message,
	}
}

// Newf creates an error with the given code and a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) PlatformError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err with a code and message. It returns nil if err is nil.
//
// If err already carries a classification, it is preserved so a retryable
// cause stays retryable under a more specific code.
func Wrap(err error, code ErrorCode, message string) PlatformError {
	if err == nil {
		return nil
	}

	classification := classify(code)
	var inner PlatformError
	if errors.As(err, &inner) {
		classification = inner.Classification()
	}

	return &platformError{
		code:           code,
		classification: classification,
		message:        message,
		cause:          err,
	}
}

// Wrapf wraps err with a code and formatted message. It returns nil if err is nil.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) PlatformError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithContext returns a copy of err with key set to value.
// Errors that are not a PlatformError are promoted with CodeUnknown.
func WithContext(err error, key string, value interface{}) PlatformError {
	return WithContextMap(err, map[string]interface{}{key: value})
}

// WithContextMap returns a copy of err with every entry of ctx merged into
// its metadata. Later keys overwrite earlier ones.
func WithContextMap(err error, ctx map[string]interface{}) PlatformError {
	if err == nil {
		return nil
	}

	base := promote(err)
	merged := copyContext(base.context, len(ctx))
	for k, v := range ctx {
		merged[k] = v
	}
	base.context = merged
	return base
}

// WithClassification returns a copy of err with the classification replaced.
func WithClassification(err error, classification ErrorClassification) PlatformError {
	if err == nil {
		return nil
	}

	base := promote(err)
	base.classification = classification
	return base
}

// promote returns a fresh platformError that carries the same code,
// message, context and cause as err.
func promote(err error) *platformError {
	var pe PlatformError
	if !errors.As(err, &pe) {
		return &platformError{
			code:           CodeUnknown,
			classification: ClassificationPermanent,
			message:        err.Error(),
			cause:          err,
		}
	}
	return &platformError{
		code:           pe.Code(),
		classification: pe.Classification(),
		message:        pe.Message(),
		context:        pe.Context(),
		cause:          pe.Unwrap(),
	}
}
