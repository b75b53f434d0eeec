package core

import (
	stderrors "errors"
	"io/fs"
	"syscall"

	"github.com/jmgilman/go/scopedfs/errors"
)

// NotFound returns a CodeNotFound error for path.
func NotFound(op, path string) error {
	return errors.WithContextMap(errors.New(errors.CodeNotFound, "path does not exist"),
		map[string]interface{}{"op": op, "path": path})
}

// PermissionMissing returns a CodePermissionMissing error for path.
func PermissionMissing(op, path string) error {
	return errors.WithContextMap(errors.New(errors.CodePermissionMissing, "no permission covers path"),
		map[string]interface{}{"op": op, "path": path})
}

// PartialFailure returns a CodePartialFailure error wrapping the first
// child failure.
func PartialFailure(op, path string, cause error) error {
	return errors.WithContextMap(errors.Wrap(cause, errors.CodePartialFailure, "recursive operation did not complete"),
		map[string]interface{}{"op": op, "path": path})
}

// FromOS converts a filesystem error into a coded error. Errors that
// already carry a code are returned unchanged.
func FromOS(err error, op, path string) error {
	if err == nil {
		return nil
	}
	var pe errors.PlatformError
	if errors.As(err, &pe) {
		return err
	}

	code := errors.CodeIO
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		code = errors.CodeNotFound
	case stderrors.Is(err, fs.ErrPermission):
		code = errors.CodePermissionMissing
	case stderrors.Is(err, fs.ErrExist):
		code = errors.CodeAlreadyExists
	case stderrors.Is(err, syscall.ENOTDIR):
		code = errors.CodeNotDirectory
	}
	return errors.WithContextMap(errors.Wrap(err, code, op+" failed"),
		map[string]interface{}{"op": op, "path": path})
}
