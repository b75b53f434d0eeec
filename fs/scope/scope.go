// Package scope classifies paths against the restricted subtree of
// external storage and describes the platform rules that govern access.
//
// On recent platform versions the directories <root>/Android/data and
// <root>/Android/obb are blocked from ordinary path access. Anything
// below them belongs to an owning app, identified by the first segment
// past the subtree root:
//
//	/storage/emulated/0/Android/data/com.example/cache/x.bin
//	                    \__ area root __/ \_ owner _/ \_ rest _/
//
// A Classifier answers which area a path falls in and who owns it. The
// grant negotiator and the document backend build on that answer.
package scope

import (
	"strings"

	"github.com/jmgilman/go/scopedfs/fs/internal/pathutil"
)

// DefaultRoot is the primary external storage volume.
const DefaultRoot = "/storage/emulated/0"

// Area identifies a restricted subtree.
type Area int

const (
	// AreaNone marks paths outside every restricted subtree.
	AreaNone Area = iota
	// AreaData is <root>/Android/data.
	AreaData
	// AreaObb is <root>/Android/obb.
	AreaObb
)

// Areas lists the restricted subtrees in match order.
var Areas = []Area{AreaData, AreaObb}

// String returns the directory name of the area.
func (a Area) String() string {
	switch a {
	case AreaData:
		return "data"
	case AreaObb:
		return "obb"
	default:
		return "none"
	}
}

// Dir returns the area's path relative to the volume root.
func (a Area) Dir() string {
	if a == AreaNone {
		return ""
	}
	return "Android/" + a.String()
}

// Location is the classification of one path.
type Location struct {
	// Path is the normalized input path.
	Path string

	// Area is the restricted subtree containing Path, or AreaNone.
	Area Area

	// Owner is the first segment past the area root. It is empty for
	// unrestricted paths and for the area root itself.
	Owner string

	// Rest holds the segments after Owner.
	Rest []string
}

// Restricted reports whether the path lies inside a restricted subtree.
func (l Location) Restricted() bool {
	return l.Area != AreaNone
}

// Umbrella reports whether the path is the area root itself, which only
// the umbrella grant covers.
func (l Location) Umbrella() bool {
	return l.Restricted() && l.Owner == ""
}

// Classifier matches paths against the restricted subtrees of one volume.
type Classifier struct {
	root     string
	prefixes map[Area]string
}

// NewClassifier creates a Classifier for the volume mounted at root.
// An empty root selects DefaultRoot.
func NewClassifier(root string) *Classifier {
	if root == "" {
		root = DefaultRoot
	}
	root = pathutil.TrimTrailing(pathutil.Normalize(root))

	c := &Classifier{root: root, prefixes: make(map[Area]string, len(Areas))}
	for _, area := range Areas {
		c.prefixes[area] = pathutil.Child(root, area.Dir())
	}
	return c
}

// Root returns the volume root.
func (c *Classifier) Root() string {
	return c.root
}

// AreaRoot returns the absolute path of an area's subtree root.
func (c *Classifier) AreaRoot(area Area) string {
	return c.prefixes[area]
}

// Classify locates path. Prefix comparison is case-insensitive and must
// end on a segment boundary, so ".../Android/dataX" is unrestricted.
func (c *Classifier) Classify(path string) Location {
	path = pathutil.Normalize(path)
	loc := Location{Path: path}

	for _, area := range Areas {
		prefix := c.prefixes[area]
		if len(path) < len(prefix) || !strings.EqualFold(path[:len(prefix)], prefix) {
			continue
		}
		if len(path) > len(prefix) && path[len(prefix)] != '/' {
			continue
		}

		loc.Area = area
		segments := pathutil.Split(path[len(prefix):])
		if len(segments) > 0 {
			loc.Owner = segments[0]
			loc.Rest = segments[1:]
		}
		return loc
	}
	return loc
}

// Restricted reports whether path lies inside a restricted subtree.
func (c *Classifier) Restricted(path string) bool {
	return c.Classify(path).Restricted()
}
