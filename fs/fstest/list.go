package fstest

import (
	"reflect"
	"sort"
	"testing"

	"github.com/jmgilman/go/scopedfs/fs/core"
)

// TestList tests List and ListFiltered.
func TestList(t *testing.T, s core.Strategy, root string) {
	TestListWithConfig(t, s, root, DefaultConfig())
}

// TestListWithConfig tests List and ListFiltered with behavior
// configuration.
func TestListWithConfig(t *testing.T, s core.Strategy, root string, config Config) {
	const group = "List"

	dir := root + "/list"
	mustWrite(t, s, dir+"/b.txt", "b")
	mustWrite(t, s, dir+"/a.txt", "a")
	if err := s.CreateDirectory(dir + "/sub"); err != nil {
		t.Fatalf("CreateDirectory(%q): setup failed: %v", dir+"/sub", err)
	}

	config.run(t, group, "All", func(t *testing.T) {
		got, err := s.List(dir)
		if err != nil {
			t.Fatalf("List(%q): got error %v, want nil", dir, err)
		}
		assertPaths(t, "List", got, dir+"/a.txt", dir+"/b.txt", dir+"/sub")
	})

	config.run(t, group, "TrailingSlash", func(t *testing.T) {
		got, err := s.List(dir + "/")
		if err != nil {
			t.Fatalf("List(%q): got error %v, want nil", dir+"/", err)
		}
		assertPaths(t, "List", got, dir+"/a.txt", dir+"/b.txt", dir+"/sub")
	})

	config.run(t, group, "OnlyDirectories", func(t *testing.T) {
		got, err := s.ListFiltered(dir, true)
		if err != nil {
			t.Fatalf("ListFiltered(%q, true): got error %v, want nil", dir, err)
		}
		assertPaths(t, "ListFiltered(true)", got, dir+"/sub")
	})

	config.run(t, group, "OnlyFiles", func(t *testing.T) {
		got, err := s.ListFiltered(dir, false)
		if err != nil {
			t.Fatalf("ListFiltered(%q, false): got error %v, want nil", dir, err)
		}
		assertPaths(t, "ListFiltered(false)", got, dir+"/a.txt", dir+"/b.txt")
	})

	config.run(t, group, "Empty", func(t *testing.T) {
		got, err := s.List(dir + "/sub")
		if err != nil {
			t.Fatalf("List(%q): got error %v, want nil", dir+"/sub", err)
		}
		if len(got) != 0 {
			t.Errorf("List(%q): got %v, want empty", dir+"/sub", got)
		}
	})

	config.run(t, group, "Missing", func(t *testing.T) {
		if _, err := s.List(root + "/no-such-dir"); err == nil {
			t.Errorf("List(%q): got nil error, want failure", root+"/no-such-dir")
		}
	})
}

// assertPaths compares listings ignoring order.
func assertPaths(t *testing.T, op string, got []string, want ...string) {
	t.Helper()
	g := append([]string(nil), got...)
	sort.Strings(g)
	sort.Strings(want)
	if len(g) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(g, want) {
		t.Errorf("%s: got %v, want %v", op, g, want)
	}
}
