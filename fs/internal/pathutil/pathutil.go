// Package pathutil provides path manipulation shared by the storage
// backends. Paths are always '/'-separated absolute strings; no OS
// separator conversion takes place.
package pathutil

import (
	"strings"
)

// Split breaks path into its segments, collapsing empty segments produced
// by leading, trailing or repeated slashes.
func Split(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}

// TrimTrailing removes trailing slashes, keeping a lone "/".
func TrimTrailing(path string) string {
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" && strings.HasPrefix(path, "/") {
		return "/"
	}
	return trimmed
}

// Child builds the path of name inside dir by string concatenation:
// trailing slashes of dir are dropped and exactly one '/' is inserted.
func Child(dir, name string) string {
	dir = strings.TrimRight(dir, "/")
	return dir + "/" + name
}

// Parent returns the directory containing path. The parent of a
// top-level entry is "/".
func Parent(path string) string {
	path = strings.TrimRight(path, "/")
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return "/"
	}
	return path[:idx]
}

// Base returns the last segment of path, or "" for the root.
func Base(path string) string {
	segments := Split(path)
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// Normalize collapses repeated and trailing slashes without resolving
// "." or "..". Restricted-subtree matching depends on the literal segments.
func Normalize(path string) string {
	if path == "" {
		return ""
	}
	joined := strings.Join(Split(path), "/")
	if strings.HasPrefix(path, "/") {
		return "/" + joined
	}
	return joined
}

// Within reports whether path lies strictly below dir.
func Within(dir, path string) bool {
	dir, path = Normalize(dir), Normalize(path)
	if dir == "/" {
		return path != "/" && strings.HasPrefix(path, "/")
	}
	return strings.HasPrefix(path, dir+"/")
}
