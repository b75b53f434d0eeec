package fstest

import (
	"testing"
	"time"

	"github.com/jmgilman/go/scopedfs/errors"
	"github.com/jmgilman/go/scopedfs/fs/core"
)

// transferTimeout bounds calls that must be rejected instead of recursing.
const transferTimeout = 5 * time.Second

// TestCopyMove tests Copy and Move of files and directory trees.
func TestCopyMove(t *testing.T, s core.Strategy, root string) {
	TestCopyMoveWithConfig(t, s, root, DefaultConfig())
}

// TestCopyMoveWithConfig tests Copy and Move with behavior configuration.
func TestCopyMoveWithConfig(t *testing.T, s core.Strategy, root string, config Config) {
	const group = "CopyMove"

	config.run(t, group, "CopyFile", func(t *testing.T) {
		src, dst := root+"/cf/src.txt", root+"/cf/out/dst.txt"
		mustWrite(t, s, src, "copy me")
		if err := s.Copy(src, dst); err != nil {
			t.Fatalf("Copy(%q, %q): got error %v, want nil", src, dst, err)
		}
		assertContent(t, s, src, "copy me")
		assertContent(t, s, dst, "copy me")
	})

	config.run(t, group, "CopyReplaces", func(t *testing.T) {
		src, dst := root+"/cr/src.txt", root+"/cr/dst.txt"
		mustWrite(t, s, src, "new")
		mustWrite(t, s, dst, "old and longer")
		if err := s.Copy(src, dst); err != nil {
			t.Fatalf("Copy(%q, %q): got error %v, want nil", src, dst, err)
		}
		assertContent(t, s, dst, "new")
	})

	config.run(t, group, "CopyTree", func(t *testing.T) {
		src, dst := root+"/ct/src", root+"/ct/dst"
		mustWrite(t, s, src+"/a.txt", "a")
		mustWrite(t, s, src+"/sub/b.txt", "b")
		if err := s.Copy(src, dst); err != nil {
			t.Fatalf("Copy(%q, %q): got error %v, want nil", src, dst, err)
		}
		assertContent(t, s, dst+"/a.txt", "a")
		assertContent(t, s, dst+"/sub/b.txt", "b")
		assertContent(t, s, src+"/sub/b.txt", "b")
	})

	config.run(t, group, "MoveFile", func(t *testing.T) {
		src, dst := root+"/mf/src.txt", root+"/mf/out/dst.txt"
		mustWrite(t, s, src, "move me")
		if err := s.Move(src, dst); err != nil {
			t.Fatalf("Move(%q, %q): got error %v, want nil", src, dst, err)
		}
		assertExists(t, s, src, false)
		assertContent(t, s, dst, "move me")
	})

	config.run(t, group, "MoveReplaces", func(t *testing.T) {
		src, dst := root+"/mr/src.txt", root+"/mr/dst.txt"
		mustWrite(t, s, src, "new")
		mustWrite(t, s, dst, "old and longer")
		if err := s.Move(src, dst); err != nil {
			t.Fatalf("Move(%q, %q): got error %v, want nil", src, dst, err)
		}
		assertExists(t, s, src, false)
		assertContent(t, s, dst, "new")
	})

	config.run(t, group, "MoveTree", func(t *testing.T) {
		src, dst := root+"/mt/src", root+"/mt/dst"
		mustWrite(t, s, src+"/a.txt", "a")
		mustWrite(t, s, src+"/sub/b.txt", "b")
		if err := s.Move(src, dst); err != nil {
			t.Fatalf("Move(%q, %q): got error %v, want nil", src, dst, err)
		}
		assertExists(t, s, src, false)
		assertContent(t, s, dst+"/a.txt", "a")
		assertContent(t, s, dst+"/sub/b.txt", "b")
	})

	config.run(t, group, "CopyMissing", func(t *testing.T) {
		if err := s.Copy(root+"/nothing", root+"/cm/dst"); err == nil {
			t.Errorf("Copy of a missing source: got nil error, want failure")
		}
	})

	config.run(t, group, "CopyOntoItself", func(t *testing.T) {
		file := root + "/self/file.txt"
		mustWrite(t, s, file, "payload")
		if err := s.Copy(file, file); err != nil {
			t.Fatalf("Copy(%q, %q): got error %v, want nil", file, file, err)
		}
		assertContent(t, s, file, "payload")

		dir := root + "/self/dir"
		mustWrite(t, s, dir+"/a.txt", "a")
		if err := s.Copy(dir, dir+"/"); err != nil {
			t.Fatalf("Copy(%q, %q): got error %v, want nil", dir, dir+"/", err)
		}
		assertContent(t, s, dir+"/a.txt", "a")
	})

	config.run(t, group, "CopyIntoItself", func(t *testing.T) {
		src := root + "/nest/d"
		mustWrite(t, s, src+"/a.txt", "a")
		err := bounded(t, func() error { return s.Copy(src, src+"/sub") })
		if errors.GetCode(err) != errors.CodeInvalidInput {
			t.Errorf("Copy(%q, %q): got %v, want %s", src, src+"/sub", err, errors.CodeInvalidInput)
		}
		assertExists(t, s, src+"/sub", false)
		assertContent(t, s, src+"/a.txt", "a")
	})

	config.run(t, group, "MoveIntoItself", func(t *testing.T) {
		src := root + "/nestmv/d"
		mustWrite(t, s, src+"/a.txt", "a")
		err := bounded(t, func() error { return s.Move(src, src+"/sub/deeper") })
		if errors.GetCode(err) != errors.CodeInvalidInput {
			t.Errorf("Move(%q, %q): got %v, want %s", src, src+"/sub/deeper", err, errors.CodeInvalidInput)
		}
		assertContent(t, s, src+"/a.txt", "a")
	})
}

// bounded runs fn and fails the test if it does not return within
// transferTimeout.
func bounded(t *testing.T, fn func() error) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-time.After(transferTimeout):
		t.Fatalf("call did not return within %s", transferTimeout)
		return nil
	}
}
