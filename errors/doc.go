// Package errors provides the structured error type shared by every
// scopedfs package.
//
// Operations in scopedfs never panic and never signal failure through
// sentinel booleans. Each one returns an error carrying an ErrorCode, and
// callers branch on the code rather than on message text:
//
//	data, err := fs.ReadBytes(path)
//	switch {
//	case errors.IsPermissionMissing(err):
//	    // A grant request is already in flight. Retry after it completes.
//	case errors.IsNotFound(err):
//	    // Nothing at path.
//	case err != nil:
//	    return err
//	}
//
// # Codes
//
// The storage taxonomy is NOT_FOUND, PERMISSION_MISSING, IO_FAILURE and
// PARTIAL_FAILURE. PERMISSION_MISSING is classified as retryable: the same
// call succeeds unchanged once the user grants access. Everything else
// defaults to permanent.
//
// # Context
//
// Errors are immutable. WithContext and WithContextMap return a new error
// with additional metadata, typically the path, backend and exit code:
//
//	err = errors.WithContextMap(err, map[string]interface{}{
//	    "path":    path,
//	    "backend": "command",
//	})
//
// # Compatibility
//
// PlatformError implements Unwrap, so the standard errors.Is and errors.As
// work across wrapped causes. Is and As are re-exported here so callers do
// not need both imports.
package errors
