package marker

import (
	"io"

	"go.uber.org/zap"

	"github.com/jmgilman/go/scopedfs/fs/core"
	"github.com/jmgilman/go/scopedfs/grant"
)

// Direct is the backend the rewritten paths are handed to.
type Direct interface {
	core.Strategy
	core.StreamFS
}

// Backend is the marker strategy.
type Backend struct {
	direct Direct
	logger *zap.Logger
}

var (
	_ core.Strategy = (*Backend)(nil)
	_ core.StreamFS = (*Backend)(nil)
)

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Backend) { b.logger = l }
}

// New creates a marker backend over direct.
func New(direct Direct, opts ...Option) *Backend {
	b := &Backend{direct: direct, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Kind implements core.Strategy.
func (b *Backend) Kind() core.Kind {
	return core.KindMarker
}

func (b *Backend) rewrite(path string) string {
	out := Rewrite(path)
	if out != path {
		b.logger.Debug("rewrote restricted path", zap.String("path", path))
	}
	return out
}

// ReadFile implements core.FileSystem.
func (b *Backend) ReadFile(path string) (string, error) {
	return b.direct.ReadFile(b.rewrite(path))
}

// ReadBytes implements core.FileSystem.
func (b *Backend) ReadBytes(path string) ([]byte, error) {
	return b.direct.ReadBytes(b.rewrite(path))
}

// WriteFile implements core.FileSystem.
func (b *Backend) WriteFile(path, content string) error {
	return b.direct.WriteFile(b.rewrite(path), content)
}

// WriteBytes implements core.FileSystem.
func (b *Backend) WriteBytes(path string, data []byte) error {
	return b.direct.WriteBytes(b.rewrite(path), data)
}

// Delete implements core.FileSystem.
func (b *Backend) Delete(path string) error {
	return b.direct.Delete(b.rewrite(path))
}

// Exists implements core.FileSystem.
func (b *Backend) Exists(path string) (bool, error) {
	return b.direct.Exists(b.rewrite(path))
}

// Copy implements core.FileSystem.
func (b *Backend) Copy(src, dst string) error {
	return b.direct.Copy(b.rewrite(src), b.rewrite(dst))
}

// Move implements core.FileSystem.
func (b *Backend) Move(src, dst string) error {
	return b.direct.Move(b.rewrite(src), b.rewrite(dst))
}

// List implements core.FileSystem. Returned paths carry no marker.
func (b *Backend) List(dir string) ([]string, error) {
	rewritten := b.rewrite(dir)
	paths, err := b.direct.List(rewritten)
	return b.unmark(dir, rewritten, paths), err
}

// ListFiltered implements core.FileSystem. Returned paths carry no marker.
func (b *Backend) ListFiltered(dir string, dirs bool) ([]string, error) {
	rewritten := b.rewrite(dir)
	paths, err := b.direct.ListFiltered(rewritten, dirs)
	return b.unmark(dir, rewritten, paths), err
}

func (b *Backend) unmark(dir, rewritten string, paths []string) []string {
	if dir == rewritten {
		return paths
	}
	for i, p := range paths {
		paths[i] = Strip(p)
	}
	return paths
}

// CreateDirectory implements core.FileSystem.
func (b *Backend) CreateDirectory(path string) error {
	return b.direct.CreateDirectory(b.rewrite(path))
}

// Open implements core.StreamFS.
func (b *Backend) Open(path string) (io.ReadCloser, error) {
	return b.direct.Open(b.rewrite(path))
}

// Create implements core.StreamFS.
func (b *Backend) Create(path string) (io.WriteCloser, error) {
	return b.direct.Create(b.rewrite(path))
}

// Stat implements core.StreamFS.
func (b *Backend) Stat(path string) (core.Info, error) {
	return b.direct.Stat(b.rewrite(path))
}

// HasStoragePermission implements core.Permissions.
func (b *Backend) HasStoragePermission() bool {
	return b.direct.HasStoragePermission()
}

// HasStoragePermissionFor implements core.Permissions. The marker path
// needs nothing beyond the runtime permission.
func (b *Backend) HasStoragePermissionFor(string) bool {
	return b.direct.HasStoragePermission()
}

// RequestStoragePermission implements core.Permissions.
func (b *Backend) RequestStoragePermission() (grant.Ticket, error) {
	return b.direct.RequestStoragePermission()
}

// RequestStoragePermissionFor implements core.Permissions.
func (b *Backend) RequestStoragePermissionFor(string) (grant.Ticket, error) {
	return b.direct.RequestStoragePermission()
}
