package marker

import (
	"io/fs"
	"os"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/scopedfs/errors"
	fsbilly "github.com/jmgilman/go/scopedfs/fs/billy"
	"github.com/jmgilman/go/scopedfs/fs/core"
	"github.com/jmgilman/go/scopedfs/fs/fstest"
)

const volume = "/storage/emulated/0"

func TestRewrite(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"data file", volume + "/Android/data/com.example/cache/x.bin", volume + Marker + "/Android/data/com.example/cache/x.bin"},
		{"obb", volume + "/Android/obb/com.game", volume + Marker + "/Android/obb/com.game"},
		{"subtree root", volume + "/Android/data", volume + Marker + "/Android/data"},
		{"case-insensitive", volume + "/android/DATA/x", volume + Marker + "/android/DATA/x"},
		{"not a segment", volume + "/Android/dataX/y", volume + "/Android/dataX/y"},
		{"unrestricted", volume + "/Download/a", volume + "/Download/a"},
		{"android dir itself", volume + "/Android", volume + "/Android"},
		{"first occurrence only", "/a/Android/obb/b/Android/data", "/a" + Marker + "/Android/obb/b/Android/data"},
		{"skips false match before real one", "/Android/database/Android/data/x", "/Android/database" + Marker + "/Android/data/x"},
		{"already marked", volume + Marker + "/Android/data/x", volume + Marker + "/Android/data/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rewrite(tt.in)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, strings.Count(got, Marker), 1)
		})
	}
}

// defectFS emulates the platform: literal restricted paths are denied,
// and with defect set the marker is ignored by path resolution.
type defectFS struct {
	billy.Filesystem
	defect bool
}

func (d *defectFS) clean(p string) (string, error) {
	if firstRestricted(p) >= 0 && !strings.Contains(p, Marker) {
		return "", &fs.PathError{Op: "open", Path: p, Err: fs.ErrPermission}
	}
	if d.defect {
		p = Strip(p)
	}
	return p, nil
}

func (d *defectFS) Open(p string) (billy.File, error) {
	c, err := d.clean(p)
	if err != nil {
		return nil, err
	}
	return d.Filesystem.Open(c)
}

func (d *defectFS) OpenFile(p string, flag int, perm os.FileMode) (billy.File, error) {
	c, err := d.clean(p)
	if err != nil {
		return nil, err
	}
	return d.Filesystem.OpenFile(c, flag, perm)
}

func (d *defectFS) Stat(p string) (os.FileInfo, error) {
	c, err := d.clean(p)
	if err != nil {
		return nil, err
	}
	return d.Filesystem.Stat(c)
}

func (d *defectFS) Lstat(p string) (os.FileInfo, error) {
	c, err := d.clean(p)
	if err != nil {
		return nil, err
	}
	return d.Filesystem.Lstat(c)
}

func (d *defectFS) ReadDir(p string) ([]os.FileInfo, error) {
	c, err := d.clean(p)
	if err != nil {
		return nil, err
	}
	return d.Filesystem.ReadDir(c)
}

func (d *defectFS) MkdirAll(p string, perm os.FileMode) error {
	c, err := d.clean(p)
	if err != nil {
		return err
	}
	return d.Filesystem.MkdirAll(c, perm)
}

func (d *defectFS) Remove(p string) error {
	c, err := d.clean(p)
	if err != nil {
		return err
	}
	return d.Filesystem.Remove(c)
}

func (d *defectFS) Rename(from, to string) error {
	cf, err := d.clean(from)
	if err != nil {
		return err
	}
	ct, err := d.clean(to)
	if err != nil {
		return err
	}
	return d.Filesystem.Rename(cf, ct)
}

func newDevice(t *testing.T, defect bool) *fsbilly.Backend {
	t.Helper()
	mem := memfs.New()
	require.NoError(t, mem.MkdirAll(volume+"/Android/data/com.example", 0o755))
	require.NoError(t, mem.MkdirAll(volume+"/Android/obb", 0o755))
	require.NoError(t, mem.MkdirAll(volume+"/Android/media", 0o755))
	return fsbilly.New(&defectFS{Filesystem: mem, defect: defect})
}

func TestSuite(t *testing.T) {
	fstest.TestSuite(t, func(t *testing.T) (core.Strategy, string) {
		return New(newDevice(t, true)), volume + "/Android/data/com.example/suite"
	})
}

func TestSuiteUnrestricted(t *testing.T) {
	fstest.TestSuite(t, func(t *testing.T) (core.Strategy, string) {
		return New(newDevice(t, true)), volume + "/Download"
	})
}

func TestDirectIsDeniedWhereMarkerSucceeds(t *testing.T) {
	direct := newDevice(t, true)
	path := volume + "/Android/data/com.example/cache/x.bin"

	err := direct.WriteBytes(path, []byte("x"))
	assert.True(t, errors.IsPermissionMissing(err))

	m := New(direct)
	require.NoError(t, m.WriteBytes(path, []byte("x")))
	data, err := m.ReadBytes(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	names, err := m.List(volume + "/Android/data/com.example/cache")
	require.NoError(t, err)
	assert.Equal(t, []string{path}, names, "listed paths carry no marker")
}

func TestMatchesDirectOutsideRestrictedPaths(t *testing.T) {
	direct := newDevice(t, true)
	m := New(direct)
	path := volume + "/Download/a.txt"

	require.NoError(t, m.WriteFile(path, "a"))
	viaMarker, err := m.ReadFile(path)
	require.NoError(t, err)
	viaDirect, err := direct.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, viaDirect, viaMarker)

	a, err := m.List(volume + "/Download")
	require.NoError(t, err)
	b, err := direct.List(volume + "/Download")
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestProbe(t *testing.T) {
	assert.True(t, Probe(newDevice(t, true), volume))
	assert.False(t, Probe(newDevice(t, false), volume), "a marker path that resolves elsewhere fails the probe")
	assert.False(t, Probe(fsbilly.NewMemory(), volume), "an empty listing fails the probe")
}

func TestPermissionsDelegate(t *testing.T) {
	m := New(fsbilly.NewMemory())
	assert.Equal(t, core.KindMarker, m.Kind())
	assert.True(t, m.HasStoragePermission())
	assert.True(t, m.HasStoragePermissionFor(volume+"/Android/data/x"))
}
