package strategy

import (
	"time"

	"github.com/jmgilman/go/scopedfs/fs/core"
	"github.com/jmgilman/go/scopedfs/grant"
	"github.com/jmgilman/go/scopedfs/metrics"
)

// Instrumented reports every operation of a strategy to a
// metrics.Recorder. Permission checks are not recorded.
type Instrumented struct {
	next     core.Strategy
	recorder metrics.Recorder
	name     string
}

var _ core.Strategy = (*Instrumented)(nil)

// Instrument wraps next. A nil recorder records nothing.
func Instrument(next core.Strategy, r metrics.Recorder) *Instrumented {
	if r == nil {
		r = metrics.NewNoop()
	}
	return &Instrumented{next: next, recorder: r, name: next.Kind().String()}
}

func (i *Instrumented) observe(op string, start time.Time, err *error) {
	i.recorder.RecordOperation(i.name, op, time.Since(start), *err)
}

// Kind implements core.Strategy.
func (i *Instrumented) Kind() core.Kind {
	return i.next.Kind()
}

// ReadFile implements core.FileSystem.
func (i *Instrumented) ReadFile(path string) (text string, err error) {
	defer i.observe("read", time.Now(), &err)
	return i.next.ReadFile(path)
}

// ReadBytes implements core.FileSystem.
func (i *Instrumented) ReadBytes(path string) (data []byte, err error) {
	defer i.observe("read_bytes", time.Now(), &err)
	return i.next.ReadBytes(path)
}

// WriteFile implements core.FileSystem.
func (i *Instrumented) WriteFile(path, content string) (err error) {
	defer i.observe("write", time.Now(), &err)
	return i.next.WriteFile(path, content)
}

// WriteBytes implements core.FileSystem.
func (i *Instrumented) WriteBytes(path string, data []byte) (err error) {
	defer i.observe("write_bytes", time.Now(), &err)
	return i.next.WriteBytes(path, data)
}

// Delete implements core.FileSystem.
func (i *Instrumented) Delete(path string) (err error) {
	defer i.observe("delete", time.Now(), &err)
	return i.next.Delete(path)
}

// Exists implements core.FileSystem.
func (i *Instrumented) Exists(path string) (ok bool, err error) {
	defer i.observe("exists", time.Now(), &err)
	return i.next.Exists(path)
}

// Copy implements core.FileSystem.
func (i *Instrumented) Copy(src, dst string) (err error) {
	defer i.observe("copy", time.Now(), &err)
	return i.next.Copy(src, dst)
}

// Move implements core.FileSystem.
func (i *Instrumented) Move(src, dst string) (err error) {
	defer i.observe("move", time.Now(), &err)
	return i.next.Move(src, dst)
}

// List implements core.FileSystem.
func (i *Instrumented) List(dir string) (paths []string, err error) {
	defer i.observe("list", time.Now(), &err)
	return i.next.List(dir)
}

// ListFiltered implements core.FileSystem.
func (i *Instrumented) ListFiltered(dir string, dirs bool) (paths []string, err error) {
	defer i.observe("list_filtered", time.Now(), &err)
	return i.next.ListFiltered(dir, dirs)
}

// CreateDirectory implements core.FileSystem.
func (i *Instrumented) CreateDirectory(path string) (err error) {
	defer i.observe("mkdir", time.Now(), &err)
	return i.next.CreateDirectory(path)
}

// HasStoragePermission implements core.Permissions.
func (i *Instrumented) HasStoragePermission() bool {
	return i.next.HasStoragePermission()
}

// HasStoragePermissionFor implements core.Permissions.
func (i *Instrumented) HasStoragePermissionFor(path string) bool {
	return i.next.HasStoragePermissionFor(path)
}

// RequestStoragePermission implements core.Permissions.
func (i *Instrumented) RequestStoragePermission() (grant.Ticket, error) {
	ticket, err := i.next.RequestStoragePermission()
	i.recorder.RecordPermissionRequest(i.name, err)
	return ticket, err
}

// RequestStoragePermissionFor implements core.Permissions.
func (i *Instrumented) RequestStoragePermissionFor(path string) (grant.Ticket, error) {
	ticket, err := i.next.RequestStoragePermissionFor(path)
	i.recorder.RecordPermissionRequest(i.name, err)
	return ticket, err
}
