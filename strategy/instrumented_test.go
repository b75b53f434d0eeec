package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fsbilly "github.com/jmgilman/go/scopedfs/fs/billy"
	"github.com/jmgilman/go/scopedfs/fs/core"
	"github.com/jmgilman/go/scopedfs/fs/fstest"
)

func TestInstrumentedSuite(t *testing.T) {
	fstest.TestSuite(t, func(t *testing.T) (core.Strategy, string) {
		return Instrument(fsbilly.NewMemory(), &fakeRecorder{}), "/sdcard"
	})
}

func TestInstrumentedRecordsEveryOperation(t *testing.T) {
	rec := &fakeRecorder{}
	s := Instrument(fsbilly.NewMemory(), rec)

	require.NoError(t, s.CreateDirectory("/d"))
	require.NoError(t, s.WriteFile("/d/a", "a"))
	require.NoError(t, s.WriteBytes("/d/b", []byte("b")))
	_, _ = s.ReadFile("/d/a")
	_, _ = s.ReadBytes("/d/b")
	_, _ = s.Exists("/d/a")
	_, _ = s.List("/d")
	_, _ = s.ListFiltered("/d", false)
	require.NoError(t, s.Copy("/d/a", "/d/c"))
	require.NoError(t, s.Move("/d/c", "/d/e"))
	require.NoError(t, s.Delete("/d/e"))

	var ops []string
	for _, o := range rec.ops {
		assert.Equal(t, "direct", o.strategy)
		ops = append(ops, o.op)
	}
	assert.Equal(t, []string{
		"mkdir", "write", "write_bytes", "read", "read_bytes", "exists",
		"list", "list_filtered", "copy", "move", "delete",
	}, ops)
}

func TestInstrumentedPermissions(t *testing.T) {
	rec := &fakeRecorder{}
	s := Instrument(fsbilly.NewMemory(), rec)

	assert.True(t, s.HasStoragePermission())
	assert.True(t, s.HasStoragePermissionFor("/x"))
	assert.Empty(t, rec.permissions, "checks are not recorded")

	_, err := s.RequestStoragePermission()
	require.NoError(t, err)
	_, err = s.RequestStoragePermissionFor("/x")
	require.NoError(t, err)
	assert.Len(t, rec.permissions, 2)
	assert.Equal(t, core.KindDirect, s.Kind())
}

func TestInstrumentNilRecorder(t *testing.T) {
	s := Instrument(fsbilly.NewMemory(), nil)
	assert.NoError(t, s.WriteFile("/a", "a"))
}
