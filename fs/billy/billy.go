package billy

import (
	"io"
	"os"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"

	"github.com/jmgilman/go/scopedfs/errors"
	"github.com/jmgilman/go/scopedfs/fs/core"
	"github.com/jmgilman/go/scopedfs/fs/internal/pathutil"
	"github.com/jmgilman/go/scopedfs/fs/scope"
	"github.com/jmgilman/go/scopedfs/grant"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Backend is the direct strategy over any billy.Filesystem.
type Backend struct {
	bfs        billy.Filesystem
	negotiator *grant.Negotiator
	logger     *zap.Logger
}

var (
	_ core.Strategy = (*Backend)(nil)
	_ core.StreamFS = (*Backend)(nil)
)

// LocalFS is the direct strategy over the real filesystem.
type LocalFS struct {
	*Backend
}

// MemoryFS is the direct strategy over an in-memory filesystem.
type MemoryFS struct {
	*Backend
}

// Option configures a backend.
type Option func(*config)

type config struct {
	negotiator *grant.Negotiator
	logger     *zap.Logger
}

// WithNegotiator sets the negotiator consulted for the runtime storage
// permission. Without one the permission is assumed held.
func WithNegotiator(n *grant.Negotiator) Option {
	return func(c *config) { c.negotiator = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// NewLocal creates a direct backend rooted at "/".
func NewLocal(opts ...Option) *LocalFS {
	return &LocalFS{Backend: New(osfs.New("/"), opts...)}
}

// NewMemory creates a direct backend over an empty in-memory filesystem.
func NewMemory(opts ...Option) *MemoryFS {
	return &MemoryFS{Backend: New(memfs.New(), opts...)}
}

// New creates a direct backend over bfs.
func New(bfs billy.Filesystem, opts ...Option) *Backend {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.negotiator == nil {
		cfg.negotiator = grant.NewNegotiator(scope.NewClassifier(""), scope.Platform{},
			grant.WithLogger(cfg.logger))
	}
	return &Backend{bfs: bfs, negotiator: cfg.negotiator, logger: cfg.logger}
}

// Unwrap returns the underlying billy.Filesystem.
func (b *Backend) Unwrap() billy.Filesystem {
	return b.bfs
}

// Kind implements core.Strategy.
func (b *Backend) Kind() core.Kind {
	return core.KindDirect
}

// ReadFile implements core.FileSystem.
func (b *Backend) ReadFile(path string) (string, error) {
	f, err := b.bfs.Open(path)
	if err != nil {
		return "", b.fail(err, "read", path)
	}
	defer func() { _ = f.Close() }()

	text, err := core.ReadLines(f)
	if err != nil {
		return "", b.fail(err, "read", path)
	}
	return text, nil
}

// ReadBytes implements core.FileSystem.
func (b *Backend) ReadBytes(path string) ([]byte, error) {
	data, err := util.ReadFile(b.bfs, path)
	if err != nil {
		return nil, b.fail(err, "read", path)
	}
	return data, nil
}

// WriteFile implements core.FileSystem.
func (b *Backend) WriteFile(path, content string) error {
	return b.WriteBytes(path, []byte(content))
}

// WriteBytes implements core.FileSystem.
func (b *Backend) WriteBytes(path string, data []byte) error {
	w, err := b.Create(path)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return b.fail(err, "write", path)
	}
	if err := w.Close(); err != nil {
		return b.fail(err, "write", path)
	}
	return nil
}

// Delete implements core.FileSystem.
func (b *Backend) Delete(path string) error {
	if _, err := b.bfs.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return b.fail(err, "delete", path)
	}
	if err := util.RemoveAll(b.bfs, path); err != nil {
		return b.fail(err, "delete", path)
	}
	return nil
}

// Exists implements core.FileSystem.
func (b *Backend) Exists(path string) (bool, error) {
	if _, err := b.bfs.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, b.fail(err, "exists", path)
	}
	return true, nil
}

// Copy implements core.FileSystem. Directories are copied recursively
// and merged into an existing destination.
func (b *Backend) Copy(src, dst string) error {
	if core.SamePath(src, dst) {
		return nil
	}
	if err := core.CheckNested("copy", src, dst); err != nil {
		return err
	}
	info, err := b.bfs.Stat(src)
	if err != nil {
		return b.fail(err, "copy", src)
	}
	if !info.IsDir() {
		return core.CopyStream(b, src, b, dst)
	}

	if err := b.bfs.MkdirAll(dst, dirPerm); err != nil {
		return b.fail(err, "copy", dst)
	}
	names, err := b.names(src)
	if err != nil {
		return b.fail(err, "copy", src)
	}
	for _, name := range names {
		if err := b.Copy(pathutil.Child(src, name), pathutil.Child(dst, name)); err != nil {
			return core.PartialFailure("copy", src, err)
		}
	}
	return nil
}

// Move implements core.FileSystem. An existing destination is replaced.
// When renaming is not possible the tree is copied and the source removed.
func (b *Backend) Move(src, dst string) error {
	if core.SamePath(src, dst) {
		return nil
	}
	if err := core.CheckNested("move", src, dst); err != nil {
		return err
	}
	if _, err := b.bfs.Lstat(src); err != nil {
		return b.fail(err, "move", src)
	}
	if err := b.Delete(dst); err != nil {
		return err
	}
	if err := b.bfs.MkdirAll(pathutil.Parent(dst), dirPerm); err != nil {
		return b.fail(err, "move", dst)
	}

	err := b.bfs.Rename(src, dst)
	if err == nil {
		return nil
	}
	b.logger.Debug("rename failed, falling back to copy",
		zap.String("src", src), zap.String("dst", dst), zap.Error(err))

	if err := b.Copy(src, dst); err != nil {
		return err
	}
	return b.Delete(src)
}

// List implements core.FileSystem. Children are ordered by name.
func (b *Backend) List(dir string) ([]string, error) {
	names, err := b.names(dir)
	if err != nil {
		return nil, b.fail(err, "list", dir)
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, pathutil.Child(dir, name))
	}
	return out, nil
}

// ListFiltered implements core.FileSystem.
func (b *Backend) ListFiltered(dir string, dirs bool) ([]string, error) {
	infos, err := b.bfs.ReadDir(dir)
	if err != nil {
		return nil, b.fail(err, "list", dir)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	var out []string
	for _, info := range infos {
		if info.IsDir() == dirs {
			out = append(out, pathutil.Child(dir, info.Name()))
		}
	}
	return out, nil
}

// CreateDirectory implements core.FileSystem.
func (b *Backend) CreateDirectory(path string) error {
	if err := b.bfs.MkdirAll(path, dirPerm); err != nil {
		return b.fail(err, "mkdir", path)
	}
	return nil
}

// Open implements core.StreamFS.
func (b *Backend) Open(path string) (io.ReadCloser, error) {
	f, err := b.bfs.Open(path)
	if err != nil {
		return nil, b.fail(err, "open", path)
	}
	return f, nil
}

// Create implements core.StreamFS.
func (b *Backend) Create(path string) (io.WriteCloser, error) {
	if err := b.bfs.MkdirAll(pathutil.Parent(path), dirPerm); err != nil {
		return nil, b.fail(err, "create", path)
	}
	f, err := b.bfs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return nil, b.fail(err, "create", path)
	}
	return f, nil
}

// Stat implements core.StreamFS.
func (b *Backend) Stat(path string) (core.Info, error) {
	info, err := b.bfs.Stat(path)
	if err != nil {
		return core.Info{}, b.fail(err, "stat", path)
	}
	return core.Info{Name: info.Name(), Dir: info.IsDir()}, nil
}

// HasStoragePermission implements core.Permissions.
func (b *Backend) HasStoragePermission() bool {
	return b.negotiator.RuntimeGranted()
}

// HasStoragePermissionFor implements core.Permissions. Direct access only
// depends on the runtime permission.
func (b *Backend) HasStoragePermissionFor(string) bool {
	return b.HasStoragePermission()
}

// RequestStoragePermission implements core.Permissions.
func (b *Backend) RequestStoragePermission() (grant.Ticket, error) {
	return b.negotiator.RequestRuntime(nil)
}

// RequestStoragePermissionFor implements core.Permissions.
func (b *Backend) RequestStoragePermissionFor(string) (grant.Ticket, error) {
	return b.RequestStoragePermission()
}

func (b *Backend) names(dir string) ([]string, error) {
	infos, err := b.bfs.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	sort.Strings(names)
	return names, nil
}

// fail logs the cause and converts it to a coded error. A missing runtime
// permission turns a denied access into CodePermissionMissing.
func (b *Backend) fail(err error, op, path string) error {
	b.logger.Debug("direct operation failed",
		zap.String("op", op), zap.String("path", path), zap.Error(err))
	coded := core.FromOS(err, op, path)
	if errors.GetCode(coded) == errors.CodeIO && !b.HasStoragePermission() {
		return core.PermissionMissing(op, path)
	}
	return coded
}
