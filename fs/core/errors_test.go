package core

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"syscall"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/scopedfs/errors"
)

func TestFromOS(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errors.ErrorCode
	}{
		{"not exist", &fs.PathError{Op: "open", Path: "/x", Err: fs.ErrNotExist}, errors.CodeNotFound},
		{"permission", fmt.Errorf("wrapped: %w", fs.ErrPermission), errors.CodePermissionMissing},
		{"exist", fs.ErrExist, errors.CodeAlreadyExists},
		{"not a directory", &fs.PathError{Op: "stat", Path: "/f/x", Err: syscall.ENOTDIR}, errors.CodeNotDirectory},
		{"other", stderrors.New("disk on fire"), errors.CodeIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromOS(tt.err, "read", "/x")
			require.Error(t, err)
			assert.Equal(t, tt.want, errors.GetCode(err))
			assert.True(t, stderrors.Is(err, tt.err))
		})
	}

	assert.NoError(t, FromOS(nil, "read", "/x"))

	coded := NotFound("read", "/y")
	assert.Equal(t, coded, FromOS(coded, "stat", "/z"))
}

func TestPermissionMissingIsRetryable(t *testing.T) {
	err := PermissionMissing("read", "/storage/emulated/0/Android/data/a")
	assert.True(t, errors.IsPermissionMissing(err))
	assert.True(t, errors.IsRetryable(err))

	partial := PartialFailure("delete", "/d", err)
	assert.Equal(t, errors.CodePartialFailure, errors.GetCode(partial))
	assert.True(t, errors.IsPermissionMissing(partial))
}

// memStream is an in-memory StreamFS.
type memStream struct {
	fs *memFiles
}

type memFiles struct {
	files map[string]string
}

func (m memStream) Open(path string) (io.ReadCloser, error) {
	s, ok := m.fs.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return io.NopCloser(strings.NewReader(s)), nil
}

func (m memStream) Create(path string) (io.WriteCloser, error) {
	return &memWriter{fs: m.fs, path: path}, nil
}

func (m memStream) Stat(path string) (Info, error) {
	if _, ok := m.fs.files[path]; !ok {
		return Info{}, fs.ErrNotExist
	}
	return Info{Name: path}, nil
}

type memWriter struct {
	fs   *memFiles
	path string
	sb   strings.Builder
}

func (w *memWriter) Write(p []byte) (int, error) { return w.sb.Write(p) }
func (w *memWriter) Close() error {
	w.fs.files[w.path] = w.sb.String()
	return nil
}

func TestCopyStream(t *testing.T) {
	src := memStream{fs: &memFiles{files: map[string]string{"/a": "payload"}}}
	dst := memStream{fs: &memFiles{files: map[string]string{"/b": "old content that is longer"}}}

	require.NoError(t, CopyStream(src, "/a", dst, "/b"))
	assert.Equal(t, "payload", dst.fs.files["/b"])

	err := CopyStream(src, "/missing", dst, "/c")
	assert.True(t, errors.IsNotFound(err))
}

func TestFromOSWithBilly(t *testing.T) {
	mem := memfs.New()
	require.NoError(t, util.WriteFile(mem, "file", []byte("x"), 0o644))

	_, err := mem.Open("missing")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(FromOS(err, "open", "missing")))
}
