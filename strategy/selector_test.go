package strategy

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/scopedfs/errors"
	"github.com/jmgilman/go/scopedfs/exec"
	fsbilly "github.com/jmgilman/go/scopedfs/fs/billy"
	"github.com/jmgilman/go/scopedfs/fs/core"
	"github.com/jmgilman/go/scopedfs/fs/scope"
	"github.com/jmgilman/go/scopedfs/grant"
)

const (
	volume   = "/storage/emulated/0"
	ownerDir = volume + "/Android/data/com.example"
)

func newNegotiator(sdk int) *grant.Negotiator {
	return grant.NewNegotiator(scope.NewClassifier(volume), scope.Platform{SDK: sdk})
}

func TestNewSelection(t *testing.T) {
	tests := []struct {
		name   string
		mode   Mode
		sdk    int
		defect bool
		want   core.Kind
	}{
		{"privileged ignores platform", ModePrivileged, 34, true, core.KindCommand},
		{"privileged before restriction", ModePrivileged, 29, false, core.KindCommand},
		{"native before restriction", ModeNative, 29, true, core.KindDirect},
		{"native with defect", ModeNative, 30, true, core.KindMarker},
		{"native without defect", ModeNative, 30, false, core.KindDocument},
		{"native per-owner without defect", ModeNative, 34, false, core.KindDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := New(
				WithMode(tt.mode),
				WithNegotiator(newNegotiator(tt.sdk)),
				WithDirect(fsbilly.NewMemory()),
				WithExecutor(exec.NewInterpreter()),
				WithProbe(func(core.FileSystem, string) bool { return tt.defect }),
			)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sel.Kind())
			assert.Equal(t, tt.mode, sel.Mode())
		})
	}
}

func TestNewProbesOnlyWhenRestricted(t *testing.T) {
	var roots []string
	probe := func(_ core.FileSystem, root string) bool {
		roots = append(roots, root)
		return false
	}

	_, err := New(WithNegotiator(newNegotiator(29)), WithDirect(fsbilly.NewMemory()), WithProbe(probe))
	require.NoError(t, err)
	assert.Empty(t, roots)

	_, err = New(WithNegotiator(newNegotiator(31)), WithDirect(fsbilly.NewMemory()), WithProbe(probe))
	require.NoError(t, err)
	assert.Equal(t, []string{volume}, roots)
}

func TestNewDefaultProbe(t *testing.T) {
	direct := fsbilly.NewMemory()
	require.NoError(t, direct.CreateDirectory(ownerDir))

	sel, err := New(WithNegotiator(newNegotiator(33)), WithDirect(direct))
	require.NoError(t, err)
	assert.Equal(t, core.KindDocument, sel.Kind(), "memfs keeps marked and unmarked paths apart")
}

func TestNewDefaultsToDirect(t *testing.T) {
	sel, err := New(WithPlatform(scope.Platform{SDK: 28}), WithRoot(volume))
	require.NoError(t, err)
	assert.Equal(t, core.KindDirect, sel.Kind())
	assert.Equal(t, volume, sel.Negotiator().Classifier().Root())
	assert.Equal(t, 28, sel.Negotiator().Scheme().Platform.SDK)
}

func TestDocumentSelectionUsesDirectStorage(t *testing.T) {
	direct := fsbilly.NewMemory()
	require.NoError(t, direct.CreateDirectory(ownerDir))
	n := newNegotiator(33)

	sel, err := New(WithNegotiator(n), WithDirect(direct),
		WithProbe(func(core.FileSystem, string) bool { return false }))
	require.NoError(t, err)
	require.Equal(t, core.KindDocument, sel.Kind())

	err = sel.WriteFile(ownerDir+"/a.txt", "hi")
	assert.True(t, errors.IsPermissionMissing(err))
	require.Len(t, n.Pending(), 1)

	target := grant.Target{Area: scope.AreaData, Owner: "com.example"}
	require.NoError(t, n.Store().Put(grant.Grant{
		URI:   n.Scheme().TreeURI(target),
		Area:  target.Area,
		Owner: target.Owner,
	}))

	require.NoError(t, sel.WriteFile(ownerDir+"/a.txt", "hi"))
	got, err := direct.ReadFile(ownerDir + "/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", got)

	require.NoError(t, sel.WriteFile(volume+"/Download/b.txt", "plain"))
	ok, err := direct.Exists(volume + "/Download/b.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewRejectsUnknownMode(t *testing.T) {
	_, err := New(WithMode(Mode(7)), WithDirect(fsbilly.NewMemory()))
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeNative, false},
		{"native", ModeNative, false},
		{"Privileged", ModePrivileged, false},
		{" privileged ", ModePrivileged, false},
		{"root", ModeNative, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Mode {
	t.Helper()
	m, err := ParseMode(s)
	require.NoError(t, err)
	return m
}

type observation struct {
	strategy string
	op       string
	err      error
}

type fakeRecorder struct {
	mu          sync.Mutex
	ops         []observation
	permissions []observation
}

func (f *fakeRecorder) RecordOperation(strategy, op string, _ time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, observation{strategy: strategy, op: op, err: err})
}

func (f *fakeRecorder) RecordPermissionRequest(strategy string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.permissions = append(f.permissions, observation{strategy: strategy, err: err})
}

func TestWithMetrics(t *testing.T) {
	rec := &fakeRecorder{}
	direct := fsbilly.NewMemory()

	sel, err := New(WithNegotiator(newNegotiator(29)), WithDirect(direct), WithMetrics(rec))
	require.NoError(t, err)

	_, isInstrumented := sel.Strategy.(*Instrumented)
	assert.True(t, isInstrumented)
	assert.Equal(t, core.Strategy(direct), sel.Backend())

	require.NoError(t, sel.WriteFile("/x/a.txt", "a"))
	_, err = sel.ReadBytes("/x/missing")
	require.Error(t, err)

	require.Len(t, rec.ops, 2)
	assert.Equal(t, observation{strategy: "direct", op: "write"}, rec.ops[0])
	assert.Equal(t, "read_bytes", rec.ops[1].op)
	assert.True(t, errors.IsNotFound(rec.ops[1].err))
}
