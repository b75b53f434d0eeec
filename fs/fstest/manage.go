package fstest

import (
	"testing"

	"github.com/jmgilman/go/scopedfs/fs/core"
)

// TestManage tests Delete, Exists and CreateDirectory.
func TestManage(t *testing.T, s core.Strategy, root string) {
	TestManageWithConfig(t, s, root, DefaultConfig())
}

// TestManageWithConfig tests Delete, Exists and CreateDirectory with
// behavior configuration.
func TestManageWithConfig(t *testing.T, s core.Strategy, root string, config Config) {
	const group = "Manage"

	config.run(t, group, "DeleteFile", func(t *testing.T) {
		path := root + "/del/file.txt"
		mustWrite(t, s, path, "x")
		if err := s.Delete(path); err != nil {
			t.Fatalf("Delete(%q): got error %v, want nil", path, err)
		}
		assertExists(t, s, path, false)
	})

	config.run(t, group, "DeleteIdempotent", func(t *testing.T) {
		path := root + "/del/never-there"
		for i := 0; i < 2; i++ {
			if err := s.Delete(path); err != nil {
				t.Errorf("Delete(%q) #%d: got error %v, want nil", path, i+1, err)
			}
		}
	})

	config.run(t, group, "DeleteTree", func(t *testing.T) {
		dir := root + "/tree"
		mustWrite(t, s, dir+"/a.txt", "a")
		mustWrite(t, s, dir+"/sub/b.txt", "b")
		mustWrite(t, s, dir+"/sub/deeper/c.txt", "c")
		if err := s.Delete(dir); err != nil {
			t.Fatalf("Delete(%q): got error %v, want nil", dir, err)
		}
		assertExists(t, s, dir, false)
		assertExists(t, s, root, true)
	})

	config.run(t, group, "Exists", func(t *testing.T) {
		mustWrite(t, s, root+"/ex/file", "x")
		assertExists(t, s, root+"/ex/file", true)
		assertExists(t, s, root+"/ex", true)
		assertExists(t, s, root+"/ex/nope", false)
	})

	config.run(t, group, "CreateDirectory", func(t *testing.T) {
		dir := root + "/made/a/b"
		for i := 0; i < 2; i++ {
			if err := s.CreateDirectory(dir); err != nil {
				t.Fatalf("CreateDirectory(%q) #%d: got error %v, want nil", dir, i+1, err)
			}
		}
		assertExists(t, s, dir, true)

		dirs, err := s.ListFiltered(root+"/made/a", true)
		if err != nil {
			t.Fatalf("ListFiltered(%q): got error %v", root+"/made/a", err)
		}
		if len(dirs) != 1 || dirs[0] != dir {
			t.Errorf("ListFiltered(%q, true): got %v, want [%s]", root+"/made/a", dirs, dir)
		}
	})
}

func mustWrite(t *testing.T, s core.Strategy, path, content string) {
	t.Helper()
	if err := s.WriteBytes(path, []byte(content)); err != nil {
		t.Fatalf("WriteBytes(%q): setup failed: %v", path, err)
	}
}

func assertExists(t *testing.T, s core.Strategy, path string, want bool) {
	t.Helper()
	got, err := s.Exists(path)
	if err != nil {
		t.Errorf("Exists(%q): got error %v, want nil", path, err)
		return
	}
	if got != want {
		t.Errorf("Exists(%q): got %v, want %v", path, got, want)
	}
}

func assertContent(t *testing.T, s core.Strategy, path, want string) {
	t.Helper()
	got, err := s.ReadBytes(path)
	if err != nil {
		t.Errorf("ReadBytes(%q): got error %v, want nil", path, err)
		return
	}
	if string(got) != want {
		t.Errorf("ReadBytes(%q): got %q, want %q", path, got, want)
	}
}
