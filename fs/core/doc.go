// Package core defines the file operation set shared by every storage
// backend and the small helpers backends have in common.
//
// # Interface Hierarchy
//
// A Strategy is what callers hold. It composes two interfaces:
//
//   - FileSystem: the primitive operations (read, write, delete, exists,
//     copy, move, list, create directory)
//   - Permissions: runtime and per-path permission checks and requests
//
// Backends that can expose raw byte streams also implement the optional
// StreamFS interface. It is discovered with a type assertion and is used
// to copy between backends that address storage differently.
//
// # Failures
//
// Every operation reports failure through its error. Use the predicates
// of the errors package to tell them apart:
//
//	data, err := s.ReadBytes(path)
//	switch {
//	case errors.IsPermissionMissing(err):
//	    ticket, _ := s.RequestStoragePermissionFor(path)
//	    // wait for the user, then retry
//	case errors.IsNotFound(err):
//	    // nothing there
//	}
//
// A PermissionMissing failure is retryable: the same call succeeds once
// the grant lands.
//
// # Text Reads
//
// ReadFile returns the content line by line with a newline appended to
// every line, so a file without a trailing newline gains one. Backends
// share ReadLines to produce exactly that shape.
package core
