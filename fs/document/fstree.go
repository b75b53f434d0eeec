package document

import (
	"io"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/jmgilman/go/scopedfs/errors"
	"github.com/jmgilman/go/scopedfs/fs/core"
	"github.com/jmgilman/go/scopedfs/grant"
)

// volumeID prefixes every document ID of the primary volume.
const volumeID = "primary:"

// FilesystemTree is a Tree over a billy.Filesystem whose root is the
// storage volume. Document IDs have the form "primary:<relative path>".
type FilesystemTree struct {
	fs billy.Filesystem
}

var _ Tree = (*FilesystemTree)(nil)

// NewFilesystemTree creates a Tree over fs.
func NewFilesystemTree(fs billy.Filesystem) *FilesystemTree {
	return &FilesystemTree{fs: fs}
}

// Root implements Tree.
func (t *FilesystemTree) Root(treeURI string) (Node, error) {
	target, err := grant.ParseTreeURI(treeURI)
	if err != nil {
		return Node{}, err
	}
	node, err := t.stat(target.Dir())
	if err != nil {
		return Node{}, err
	}
	if !node.Dir {
		return Node{}, errors.WithContext(errors.New(errors.CodeNotDirectory, "tree root is not a directory"), "uri", treeURI)
	}
	return node, nil
}

// Find implements Tree.
func (t *FilesystemTree) Find(parent Node, name string) (Node, error) {
	return t.stat(path.Join(rel(parent), name))
}

// Children implements Tree.
func (t *FilesystemTree) Children(dir Node) ([]Node, error) {
	p := rel(dir)
	infos, err := t.fs.ReadDir(p)
	if err != nil {
		return nil, core.FromOS(err, "children", dir.ID)
	}
	out := make([]Node, 0, len(infos))
	for _, info := range infos {
		out = append(out, Node{ID: volumeID + path.Join(p, info.Name()), Name: info.Name(), Dir: info.IsDir()})
	}
	return out, nil
}

// CreateFile implements Tree.
func (t *FilesystemTree) CreateFile(parent Node, name string) (Node, error) {
	p := path.Join(rel(parent), name)
	f, err := t.fs.OpenFile(p, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return Node{}, core.FromOS(err, "create", volumeID+p)
	}
	if err := f.Close(); err != nil {
		return Node{}, core.FromOS(err, "create", volumeID+p)
	}
	return Node{ID: volumeID + p, Name: name}, nil
}

// CreateDirectory implements Tree.
func (t *FilesystemTree) CreateDirectory(parent Node, name string) (Node, error) {
	p := path.Join(rel(parent), name)
	if err := t.fs.MkdirAll(p, 0o755); err != nil {
		return Node{}, core.FromOS(err, "mkdir", volumeID+p)
	}
	return Node{ID: volumeID + p, Name: name, Dir: true}, nil
}

// Delete implements Tree.
func (t *FilesystemTree) Delete(node Node) error {
	return core.FromOS(t.fs.Remove(rel(node)), "delete", node.ID)
}

// OpenReader implements Tree.
func (t *FilesystemTree) OpenReader(node Node) (io.ReadCloser, error) {
	f, err := t.fs.Open(rel(node))
	if err != nil {
		return nil, core.FromOS(err, "open", node.ID)
	}
	return f, nil
}

// OpenWriter implements Tree.
func (t *FilesystemTree) OpenWriter(node Node) (io.WriteCloser, error) {
	f, err := t.fs.OpenFile(rel(node), os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, core.FromOS(err, "open", node.ID)
	}
	return f, nil
}

func (t *FilesystemTree) stat(p string) (Node, error) {
	info, err := t.fs.Stat(p)
	if err != nil {
		return Node{}, core.FromOS(err, "stat", volumeID+p)
	}
	return Node{ID: volumeID + p, Name: info.Name(), Dir: info.IsDir()}, nil
}

func rel(n Node) string {
	return strings.TrimPrefix(n.ID, volumeID)
}
