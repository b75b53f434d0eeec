package fstest

import (
	"bytes"
	"testing"

	"github.com/jmgilman/go/scopedfs/errors"
	"github.com/jmgilman/go/scopedfs/fs/core"
)

// TestReadWrite tests text and byte round-trips.
func TestReadWrite(t *testing.T, s core.Strategy, root string) {
	TestReadWriteWithConfig(t, s, root, DefaultConfig())
}

// TestReadWriteWithConfig tests text and byte round-trips with behavior
// configuration.
func TestReadWriteWithConfig(t *testing.T, s core.Strategy, root string, config Config) {
	const group = "ReadWrite"

	config.run(t, group, "Text", func(t *testing.T) {
		path := root + "/text/a.txt"
		if err := s.WriteFile(path, "hello\nworld"); err != nil {
			t.Fatalf("WriteFile(%q): got error %v, want nil", path, err)
		}
		got, err := s.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%q): got error %v, want nil", path, err)
		}
		if got != "hello\nworld\n" {
			t.Errorf("ReadFile(%q): got %q, want %q", path, got, "hello\nworld\n")
		}
	})

	config.run(t, group, "Bytes", func(t *testing.T) {
		path := root + "/bytes/b.bin"
		data := []byte{0x00, 0xff, '\n', '\'', '"', '$', '`', 0x7f}
		roundTrip(t, s, path, data)
	})

	config.run(t, group, "EmptyBytes", func(t *testing.T) {
		roundTrip(t, s, root+"/bytes/empty.bin", []byte{})
	})

	config.run(t, group, "LargeBytes", func(t *testing.T) {
		data := make([]byte, config.LargeSize)
		for i := range data {
			data[i] = byte(i*7 + i/251)
		}
		roundTrip(t, s, root+"/bytes/large.bin", data)
	})

	config.run(t, group, "OverwriteTruncates", func(t *testing.T) {
		path := root + "/bytes/trunc.bin"
		if err := s.WriteBytes(path, []byte("a much longer original payload")); err != nil {
			t.Fatalf("WriteBytes(%q): setup failed: %v", path, err)
		}
		roundTrip(t, s, path, []byte("short"))
	})

	config.run(t, group, "CreatesParents", func(t *testing.T) {
		path := root + "/deep/er/still/c.bin"
		roundTrip(t, s, path, []byte("nested"))
		if ok, err := s.Exists(root + "/deep/er"); err != nil || !ok {
			t.Errorf("Exists(%q): got (%v, %v), want (true, nil)", root+"/deep/er", ok, err)
		}
	})

	config.run(t, group, "ReadMissing", func(t *testing.T) {
		path := root + "/missing.bin"
		data, err := s.ReadBytes(path)
		if err == nil {
			t.Fatalf("ReadBytes(%q): got nil error, want failure", path)
		}
		if data != nil {
			t.Errorf("ReadBytes(%q): got %d bytes on failure, want nil", path, len(data))
		}
		if _, err := s.ReadFile(path); err == nil {
			t.Errorf("ReadFile(%q): got nil error, want failure", path)
		}
	})

	config.run(t, group, "ReadMissingIsNotFound", func(t *testing.T) {
		path := root + "/missing.txt"
		if _, err := s.ReadBytes(path); !errors.IsNotFound(err) {
			t.Errorf("ReadBytes(%q): got %v, want %s", path, err, errors.CodeNotFound)
		}
	})
}

func roundTrip(t *testing.T, s core.Strategy, path string, data []byte) {
	t.Helper()
	if err := s.WriteBytes(path, data); err != nil {
		t.Fatalf("WriteBytes(%q): got error %v, want nil", path, err)
	}
	got, err := s.ReadBytes(path)
	if err != nil {
		t.Fatalf("ReadBytes(%q): got error %v, want nil", path, err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("ReadBytes(%q): got %d bytes, want %d identical bytes", path, len(got), len(data))
	}
}
