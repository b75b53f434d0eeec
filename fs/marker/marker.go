// Package marker implements the storage backend that reaches the
// restricted subtree through a path-matching defect.
//
// Some platform builds enforce the restriction by matching the literal
// prefix "/Android/data/" or "/Android/obb/", while the filesystem itself
// ignores a zero-width space placed right before that segment. Rewrite
// inserts the marker once, before the first restricted segment, and the
// Backend then hands every operation to the direct backend unchanged.
//
// Whether a device has the defect is decided once with Probe.
package marker

import (
	"sort"
	"strings"

	"github.com/jmgilman/go/scopedfs/fs/core"
	"github.com/jmgilman/go/scopedfs/fs/internal/pathutil"
)

// Marker is the zero-width space inserted into restricted paths.
const Marker = "\u200b"

var restrictedSegments = []string{"/android/data", "/android/obb"}

// Rewrite inserts Marker directly before the first restricted segment of
// path. The segment must end at a '/' or at the end of path. Paths
// without a restricted segment, and paths already carrying the marker at
// that position, are returned unchanged.
func Rewrite(path string) string {
	idx := firstRestricted(path)
	if idx < 0 || strings.HasSuffix(path[:idx], Marker) {
		return path
	}
	return path[:idx] + Marker + path[idx:]
}

// Strip removes the first Marker from path.
func Strip(path string) string {
	return strings.Replace(path, Marker, "", 1)
}

func firstRestricted(path string) int {
	lower := asciiLower(path)
	best := -1
	for _, seg := range restrictedSegments {
		from := 0
		for {
			i := strings.Index(lower[from:], seg)
			if i < 0 {
				break
			}
			i += from
			end := i + len(seg)
			if end == len(lower) || lower[end] == '/' {
				if best < 0 || i < best {
					best = i
				}
				break
			}
			from = i + 1
		}
	}
	return best
}

// asciiLower lowers ASCII letters only, keeping byte offsets stable.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// Probe reports whether fs exhibits the defect below the volume root:
// listing <root>/Android and <root><Marker>/Android must both succeed,
// be non-empty and name the same entries.
func Probe(fs core.FileSystem, root string) bool {
	root = pathutil.TrimTrailing(root)
	plain, err := fs.List(root + "/Android")
	if err != nil || len(plain) == 0 {
		return false
	}
	marked, err := fs.List(root + Marker + "/Android")
	if err != nil || len(marked) != len(plain) {
		return false
	}

	a, b := names(plain), names(marked)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func names(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = pathutil.Base(p)
	}
	sort.Strings(out)
	return out
}
