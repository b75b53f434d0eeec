package document

import (
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/jmgilman/go/scopedfs/errors"
	"github.com/jmgilman/go/scopedfs/fs/core"
	"github.com/jmgilman/go/scopedfs/fs/internal/pathutil"
	"github.com/jmgilman/go/scopedfs/grant"
)

// probeName is the throwaway file used to validate a directory that the
// provider created without exposing a directory handle.
const probeName = "cache.so"

// Direct is the backend used for paths outside the restricted subtree.
type Direct interface {
	core.Strategy
	core.StreamFS
}

// Backend is the document strategy.
type Backend struct {
	tree       Tree
	negotiator *grant.Negotiator
	direct     Direct
	logger     *zap.Logger
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

// New creates a document backend. Restricted paths are walked through
// tree using the grants known to negotiator; all other paths go to direct.
func New(tree Tree, negotiator *grant.Negotiator, direct Direct, opts ...Option) *Backend {
	b := &Backend{tree: tree, negotiator: negotiator, direct: direct, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Kind implements core.Strategy.
func (b *Backend) Kind() core.Kind {
	return core.KindDocument
}

func (b *Backend) restricted(path string) bool {
	return b.negotiator.Classifier().Restricted(path)
}

// resolve walks from the grant root to path. With create set, missing
// segments are created: directories for all but the last, a file for the
// last. Every non-terminal segment must be a directory.
func (b *Backend) resolve(op, path string, create bool) (Node, error) {
	node, segments, err := b.root(op, path)
	if err != nil {
		return Node{}, err
	}

	for i, seg := range segments {
		if !node.Dir {
			return Node{}, notDirectory(op, path, node)
		}
		child, err := b.tree.Find(node, seg)
		switch {
		case err == nil:
			node = child
			continue
		case !errors.IsNotFound(err):
			return Node{}, b.fail(err, op, path)
		case !create:
			return Node{}, core.NotFound(op, path)
		}

		if i < len(segments)-1 {
			child, err = b.tree.CreateDirectory(node, seg)
		} else {
			child, err = b.tree.CreateFile(node, seg)
		}
		if err != nil {
			return Node{}, b.fail(err, op, path)
		}
		node = child
	}
	return node, nil
}

// root returns the grant root covering path and the segments to walk
// below it. A missing grant issues a request and reports
// CodePermissionMissing.
func (b *Backend) root(op, path string) (Node, []string, error) {
	loc := b.negotiator.Classifier().Classify(path)
	target := b.negotiator.TargetFor(path)

	if !b.negotiator.HasTarget(target) {
		ticket, err := b.negotiator.RequestFor(path, nil)
		if err != nil {
			b.logger.Warn("grant request failed", zap.String("path", path), zap.Error(err))
		}
		return Node{}, nil, errors.WithContext(core.PermissionMissing(op, path), "ticket", string(ticket))
	}

	node, err := b.tree.Root(b.negotiator.Scheme().TreeURI(target))
	if err != nil {
		return Node{}, nil, b.fail(err, op, path)
	}

	var segments []string
	if target.Owner == "" && loc.Owner != "" {
		segments = append(segments, loc.Owner)
	}
	segments = append(segments, loc.Rest...)
	return node, segments, nil
}

// ReadFile implements core.FileSystem.
func (b *Backend) ReadFile(path string) (string, error) {
	if !b.restricted(path) {
		return b.direct.ReadFile(path)
	}
	r, err := b.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = r.Close() }()

	text, err := core.ReadLines(r)
	if err != nil {
		return "", b.fail(err, "read", path)
	}
	return text, nil
}

// ReadBytes implements core.FileSystem.
func (b *Backend) ReadBytes(path string) ([]byte, error) {
	if !b.restricted(path) {
		return b.direct.ReadBytes(path)
	}
	r, err := b.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, b.fail(err, "read", path)
	}
	return data, nil
}

// WriteFile implements core.FileSystem.
func (b *Backend) WriteFile(path, content string) error {
	if !b.restricted(path) {
		return b.direct.WriteFile(path, content)
	}
	return b.WriteBytes(path, []byte(content))
}

// WriteBytes implements core.FileSystem.
func (b *Backend) WriteBytes(path string, data []byte) error {
	if !b.restricted(path) {
		return b.direct.WriteBytes(path, data)
	}
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

// Delete implements core.FileSystem. Directories are deleted depth-first.
// A child that cannot be deleted keeps its ancestors in place, but its
// siblings are still attempted.
func (b *Backend) Delete(path string) error {
	if !b.restricted(path) {
		return b.direct.Delete(path)
	}
	node, err := b.resolve("delete", path, false)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return err
	}
	if !node.Dir {
		if err := b.tree.Delete(node); err != nil {
			return b.fail(err, "delete", path)
		}
		return nil
	}
	if err := b.deleteNode(node); err != nil {
		return core.PartialFailure("delete", path, err)
	}
	return nil
}

func (b *Backend) deleteNode(node Node) error {
	if node.Dir {
		children, err := b.tree.Children(node)
		if err != nil {
			return err
		}
		var first error
		for _, child := range children {
			if err := b.deleteNode(child); err != nil {
				b.logger.Debug("failed to delete document",
					zap.String("id", child.ID), zap.Error(err))
				if first == nil {
					first = err
				}
			}
		}
		if first != nil {
			return first
		}
	}
	return b.tree.Delete(node)
}

// Exists implements core.FileSystem.
func (b *Backend) Exists(path string) (bool, error) {
	if !b.restricted(path) {
		return b.direct.Exists(path)
	}
	_, err := b.resolve("exists", path, false)
	switch {
	case err == nil:
		return true, nil
	case errors.IsNotFound(err), errors.GetCode(err) == errors.CodeNotDirectory:
		return false, nil
	default:
		return false, err
	}
}

// Copy implements core.FileSystem. Each side is reached through whichever
// mechanism it needs. Directories are copied one child at a time.
func (b *Backend) Copy(src, dst string) error {
	if core.SamePath(src, dst) {
		return nil
	}
	if err := core.CheckNested("copy", src, dst); err != nil {
		return err
	}
	if !b.restricted(src) && !b.restricted(dst) {
		return b.direct.Copy(src, dst)
	}
	info, err := b.Stat(src)
	if err != nil {
		return err
	}
	if !info.Dir {
		return core.CopyStream(b, src, b, dst)
	}

	if err := b.CreateDirectory(dst); err != nil {
		return err
	}
	names, err := b.childNames(src)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := b.Copy(src+"/"+name, dst+"/"+name); err != nil {
			return core.PartialFailure("copy", src, err)
		}
	}
	return nil
}

// Move implements core.FileSystem. Directories are moved one child at a
// time and the source directory is deleted once every child has moved.
func (b *Backend) Move(src, dst string) error {
	if core.SamePath(src, dst) {
		return nil
	}
	if err := core.CheckNested("move", src, dst); err != nil {
		return err
	}
	if !b.restricted(src) && !b.restricted(dst) {
		return b.direct.Move(src, dst)
	}
	info, err := b.Stat(src)
	if err != nil {
		return err
	}
	if !info.Dir {
		if err := core.CopyStream(b, src, b, dst); err != nil {
			return err
		}
		return b.Delete(src)
	}

	if err := b.CreateDirectory(dst); err != nil {
		return err
	}
	names, err := b.childNames(src)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := b.Move(src+"/"+name, dst+"/"+name); err != nil {
			return core.PartialFailure("move", src, err)
		}
	}
	return b.Delete(src)
}

// List implements core.FileSystem.
func (b *Backend) List(dir string) ([]string, error) {
	if !b.restricted(dir) {
		return b.direct.List(dir)
	}
	children, err := b.children("list", dir)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(children))
	for _, c := range children {
		out = append(out, pathutil.Child(dir, c.Name))
	}
	return out, nil
}

// ListFiltered implements core.FileSystem.
func (b *Backend) ListFiltered(dir string, dirs bool) ([]string, error) {
	if !b.restricted(dir) {
		return b.direct.ListFiltered(dir, dirs)
	}
	children, err := b.children("list", dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, c := range children {
		if c.Dir == dirs {
			out = append(out, pathutil.Child(dir, c.Name))
		}
	}
	return out, nil
}

// CreateDirectory implements core.FileSystem. When the provider creates
// the directory without handing back a directory handle, writing and
// removing a throwaway file inside it counts as success.
func (b *Backend) CreateDirectory(path string) error {
	if !b.restricted(path) {
		return b.direct.CreateDirectory(path)
	}
	node, segments, err := b.root("mkdir", path)
	if err != nil {
		return err
	}

	for _, seg := range segments {
		child, err := b.tree.Find(node, seg)
		switch {
		case err == nil:
			if !child.Dir {
				return notDirectory("mkdir", path, child)
			}
		case errors.IsNotFound(err):
			child, err = b.tree.CreateDirectory(node, seg)
			if err != nil {
				return b.fail(err, "mkdir", path)
			}
		default:
			return b.fail(err, "mkdir", path)
		}
		node = child
	}
	if node.Dir {
		return nil
	}

	b.logger.Debug("created directory has no directory handle, probing with a file",
		zap.String("path", path), zap.String("id", node.ID))
	probe, err := b.tree.CreateFile(node, probeName)
	if err != nil {
		return b.fail(err, "mkdir", path)
	}
	if err := b.tree.Delete(probe); err != nil {
		return b.fail(err, "mkdir", path)
	}
	return nil
}

// Open implements core.StreamFS.
func (b *Backend) Open(path string) (io.ReadCloser, error) {
	if !b.restricted(path) {
		return b.direct.Open(path)
	}
	node, err := b.resolve("read", path, false)
	if err != nil {
		return nil, err
	}
	if node.Dir {
		return nil, errors.WithContext(errors.New(errors.CodeIO, "path is a directory"), "path", path)
	}
	r, err := b.tree.OpenReader(node)
	if err != nil {
		return nil, b.fail(err, "read", path)
	}
	return r, nil
}

// Create implements core.StreamFS.
func (b *Backend) Create(path string) (io.WriteCloser, error) {
	if !b.restricted(path) {
		return b.direct.Create(path)
	}
	node, err := b.resolve("write", path, true)
	if err != nil {
		return nil, err
	}
	if node.Dir {
		return nil, errors.WithContext(errors.New(errors.CodeIO, "path is a directory"), "path", path)
	}
	w, err := b.tree.OpenWriter(node)
	if err != nil {
		return nil, b.fail(err, "write", path)
	}
	return w, nil
}

// Stat implements core.StreamFS.
func (b *Backend) Stat(path string) (core.Info, error) {
	if !b.restricted(path) {
		return b.direct.Stat(path)
	}
	node, err := b.resolve("stat", path, false)
	if err != nil {
		return core.Info{}, err
	}
	return core.Info{Name: node.Name, Dir: node.Dir}, nil
}

// HasStoragePermission implements core.Permissions.
func (b *Backend) HasStoragePermission() bool {
	return b.negotiator.RuntimeGranted()
}

// HasStoragePermissionFor implements core.Permissions.
func (b *Backend) HasStoragePermissionFor(path string) bool {
	return b.negotiator.RuntimeGranted() && b.negotiator.HasGrant(path)
}

// RequestStoragePermission implements core.Permissions.
func (b *Backend) RequestStoragePermission() (grant.Ticket, error) {
	return b.negotiator.RequestRuntime(nil)
}

// RequestStoragePermissionFor implements core.Permissions.
func (b *Backend) RequestStoragePermissionFor(path string) (grant.Ticket, error) {
	return b.negotiator.RequestFor(path, nil)
}

func (b *Backend) children(op, dir string) ([]Node, error) {
	node, err := b.resolve(op, dir, false)
	if err != nil {
		return nil, err
	}
	if !node.Dir {
		return nil, notDirectory(op, dir, node)
	}
	children, err := b.tree.Children(node)
	if err != nil {
		return nil, b.fail(err, op, dir)
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return children, nil
}

// childNames lists dir through whichever mechanism reaches it.
func (b *Backend) childNames(dir string) ([]string, error) {
	paths, err := b.List(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, pathutil.Base(p))
	}
	return names, nil
}

func (b *Backend) fail(err error, op, path string) error {
	b.logger.Debug("document operation failed",
		zap.String("op", op), zap.String("path", path), zap.Error(err))
	var pe errors.PlatformError
	if errors.As(err, &pe) {
		return errors.WithContextMap(err, map[string]interface{}{"op": op, "path": path})
	}
	return core.FromOS(err, op, path)
}

func notDirectory(op, path string, node Node) error {
	return errors.WithContextMap(errors.New(errors.CodeNotDirectory, "path segment is not a directory"),
		map[string]interface{}{"op": op, "path": path, "document": node.ID})
}
