package core

import (
	"io"

	"github.com/jmgilman/go/scopedfs/grant"
)

// Kind identifies the mechanism a Strategy uses.
type Kind int

const (
	// KindUnknown indicates the mechanism is unspecified.
	KindUnknown Kind = iota
	// KindDirect uses ordinary path access.
	KindDirect
	// KindDocument walks document handles from a persisted grant.
	KindDocument
	// KindMarker rewrites restricted paths with an invisible marker and
	// then uses ordinary path access.
	KindMarker
	// KindCommand runs shell commands over an elevated channel.
	KindCommand
)

// String returns a string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindDocument:
		return "document"
	case KindMarker:
		return "marker"
	case KindCommand:
		return "command"
	default:
		return "unknown"
	}
}

// FileSystem is the primitive operation set. Paths are absolute and use
// '/' as separator.
type FileSystem interface {
	// ReadFile reads path as text. Every line gains a trailing newline.
	ReadFile(path string) (string, error)

	// ReadBytes reads the raw content of path. It returns nil on failure.
	ReadBytes(path string) ([]byte, error)

	// WriteFile writes content to path, creating missing parents.
	WriteFile(path, content string) error

	// WriteBytes writes data to path, truncating any existing content
	// and creating missing parents.
	WriteBytes(path string, data []byte) error

	// Delete removes path. Directories are removed recursively.
	// Deleting a missing path succeeds.
	Delete(path string) error

	// Exists reports whether path exists.
	Exists(path string) (bool, error)

	// Copy copies a file or directory tree from src to dst.
	Copy(src, dst string) error

	// Move moves a file or directory tree from src to dst.
	Move(src, dst string) error

	// List returns the full paths of the children of dir.
	List(dir string) ([]string, error)

	// ListFiltered returns only child directories when dirs is true and
	// only child files otherwise.
	ListFiltered(dir string, dirs bool) ([]string, error)

	// CreateDirectory creates path and any missing parents. Creating an
	// existing directory succeeds.
	CreateDirectory(path string) error
}

// Permissions checks and requests access.
type Permissions interface {
	// HasStoragePermission reports whether the runtime storage permission
	// the backend depends on is held.
	HasStoragePermission() bool

	// HasStoragePermissionFor reports whether path is accessible.
	HasStoragePermissionFor(path string) bool

	// RequestStoragePermission requests the runtime permission. It never
	// blocks; use the negotiator to wait on the returned ticket.
	RequestStoragePermission() (grant.Ticket, error)

	// RequestStoragePermissionFor requests whatever access path lacks.
	RequestStoragePermissionFor(path string) (grant.Ticket, error)
}

// Strategy is a storage backend.
type Strategy interface {
	FileSystem
	Permissions

	// Kind returns the mechanism the strategy uses.
	Kind() Kind
}

// Info describes one entry of a StreamFS.
type Info struct {
	Name string
	Dir  bool
}

// StreamFS is an optional capability for backends that expose byte
// streams. Use a type assertion to check for it.
type StreamFS interface {
	// Open opens path for reading.
	Open(path string) (io.ReadCloser, error)

	// Create opens path for writing, truncating it and creating missing
	// parents.
	Create(path string) (io.WriteCloser, error)

	// Stat describes path.
	Stat(path string) (Info, error)
}
