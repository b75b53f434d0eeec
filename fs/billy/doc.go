// Package billy implements the direct storage backend on top of go-billy.
//
// Direct access uses ordinary path operations and is only sufficient where
// the platform does not restrict the target path. LocalFS is rooted at the
// real filesystem root; MemoryFS keeps everything in memory and is meant
// for tests.
//
// Usage:
//
//	fs := billy.NewLocal(billy.WithNegotiator(n))
//	text, err := fs.ReadFile("/storage/emulated/0/Download/notes.txt")
//
// The underlying billy.Filesystem is available through Unwrap, which lets
// the document backend emulate a document provider over the same volume.
//
// # Thread Safety
//
// Backends hold no mutable state of their own and are safe for concurrent
// use to the extent the wrapped billy.Filesystem is.
package billy
