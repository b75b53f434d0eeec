package errors

// ErrorClassification indicates whether an error is worth retrying.
type ErrorClassification string

const (
	// ClassificationRetryable marks errors where repeating the same call may succeed.
	ClassificationRetryable ErrorClassification = "RETRYABLE"

	// ClassificationPermanent marks errors that will recur until the input changes.
	ClassificationPermanent ErrorClassification = "PERMANENT"
)

// IsRetryable returns true if the classification is retryable.
func (c ErrorClassification) IsRetryable() bool {
	return c == ClassificationRetryable
}

var defaultClassifications = map[ErrorCode]ErrorClassification{
	CodePermissionMissing: ClassificationRetryable,
	CodeTimeout:           ClassificationRetryable,
	CodeUnavailable:       ClassificationRetryable,

	CodeNotFound:        ClassificationPermanent,
	CodeAlreadyExists:   ClassificationPermanent,
	CodeNotDirectory:    ClassificationPermanent,
	CodeIO:              ClassificationPermanent,
	CodePartialFailure:  ClassificationPermanent,
	CodeExecutionFailed: ClassificationPermanent,
	CodeInvalidInput:    ClassificationPermanent,
	CodeInvalidConfig:   ClassificationPermanent,
	CodeInternal:        ClassificationPermanent,
	CodeNotImplemented:  ClassificationPermanent,
	CodeUnknown:         ClassificationPermanent,
}

func classify(code ErrorCode) ErrorClassification {
	if class, ok := defaultClassifications[code]; ok {
		return class
	}
	return ClassificationPermanent
}
