package document

import (
	"io"
)

// Node is one document handle.
type Node struct {
	// ID is the provider's document identifier.
	ID string

	// Name is the display name.
	Name string

	// Dir is true for directory documents.
	Dir bool
}

// Tree is the document API. Handles are only reachable by walking from a
// granted tree root. Find reports CodeNotFound for absent children.
type Tree interface {
	// Root returns the root handle of the granted tree.
	Root(treeURI string) (Node, error)

	// Find looks up a child by name.
	Find(parent Node, name string) (Node, error)

	// Children lists the children of dir.
	Children(dir Node) ([]Node, error)

	// CreateFile creates an empty file inside parent.
	CreateFile(parent Node, name string) (Node, error)

	// CreateDirectory creates a directory inside parent.
	CreateDirectory(parent Node, name string) (Node, error)

	// Delete removes a file or an empty directory.
	Delete(node Node) error

	// OpenReader opens a file for reading.
	OpenReader(node Node) (io.ReadCloser, error)

	// OpenWriter opens a file for writing, truncating it.
	OpenWriter(node Node) (io.WriteCloser, error)
}
