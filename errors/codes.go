package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Storage errors.

	// CodeNotFound indicates a path, document or grant does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates the target exists and cannot be created again.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeNotDirectory indicates a non-terminal path segment resolved to a file.
	CodeNotDirectory ErrorCode = "NOT_A_DIRECTORY"

	// CodePermissionMissing indicates no grant or runtime permission covers the
	// path. A grant request has usually been issued as a side effect.
	CodePermissionMissing ErrorCode = "PERMISSION_MISSING"

	// CodeIO indicates an underlying stream, file or process error.
	CodeIO ErrorCode = "IO_FAILURE"

	// CodePartialFailure indicates a recursive operation where some children
	// succeeded and others failed. Completed children are not rolled back.
	CodePartialFailure ErrorCode = "PARTIAL_FAILURE"

	// Execution errors.

	// CodeExecutionFailed indicates an elevated command exited non-zero.
	CodeExecutionFailed ErrorCode = "EXECUTION_FAILED"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeUnavailable indicates a collaborator (elevated service, requester)
	// is not connected.
	CodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// System errors.

	// CodeInternal indicates an internal error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeNotImplemented indicates the backend does not support the operation.
	CodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
