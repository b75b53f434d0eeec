package grant

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/scopedfs/errors"
	"github.com/jmgilman/go/scopedfs/fs/scope"
)

const ownerPath = "/storage/emulated/0/Android/data/com.example/cache/x.bin"

// recorder is a Requester that remembers every prompt.
type recorder struct {
	mu   sync.Mutex
	reqs []Request
	err  error
}

func (r *recorder) Request(req Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.reqs = append(r.reqs, req)
	return nil
}

func (r *recorder) requests() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Request(nil), r.reqs...)
}

func newTestNegotiator(sdk int, opts ...Option) (*Negotiator, *recorder) {
	rec := &recorder{}
	opts = append([]Option{WithRequester(rec)}, opts...)
	return NewNegotiator(scope.NewClassifier("/storage/emulated/0"), scope.Platform{SDK: sdk}, opts...), rec
}

func TestHasGrant(t *testing.T) {
	t.Run("unrestricted paths are always covered", func(t *testing.T) {
		n, _ := newTestNegotiator(33)
		assert.True(t, n.HasGrant("/sdcard/Download/a.txt"))
	})

	t.Run("per-owner platform needs exact owner", func(t *testing.T) {
		n, _ := newTestNegotiator(33)
		s := n.Scheme()
		require.NoError(t, n.Store().Put(Grant{URI: s.TreeURI(Target{Area: scope.AreaData})}))
		assert.False(t, n.HasGrant(ownerPath), "umbrella grant must not satisfy a per-owner platform")

		require.NoError(t, n.Store().Put(Grant{URI: s.TreeURI(Target{Area: scope.AreaData, Owner: "com.example.other"})}))
		assert.False(t, n.HasGrant(ownerPath), "prefix match is not enough")

		require.NoError(t, n.Store().Put(Grant{URI: s.TreeURI(Target{Area: scope.AreaData, Owner: "com.example"})}))
		assert.True(t, n.HasGrant(ownerPath))
	})

	t.Run("umbrella platform uses the area grant", func(t *testing.T) {
		n, _ := newTestNegotiator(30)
		assert.False(t, n.HasGrant(ownerPath))
		require.NoError(t, n.Store().Put(Grant{URI: n.Scheme().TreeURI(Target{Area: scope.AreaData})}))
		assert.True(t, n.HasGrant(ownerPath))
		assert.True(t, n.HasGrant("/storage/emulated/0/Android/data"))
		assert.False(t, n.HasGrant("/storage/emulated/0/Android/obb/com.game"))
	})
}

func TestRequestFor(t *testing.T) {
	t.Run("requests the narrowest tree grant", func(t *testing.T) {
		n, rec := newTestNegotiator(33)

		ticket, err := n.RequestFor(ownerPath, nil)
		require.NoError(t, err)
		require.NotEmpty(t, ticket)

		reqs := rec.requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, KindTree, reqs[0].Kind)
		assert.Equal(t, ticket, reqs[0].Ticket)
		assert.Equal(t, Target{Area: scope.AreaData, Owner: "com.example"}, reqs[0].Target)
		assert.Equal(t, plainData+"%2Fcom.example", reqs[0].TreeURI)
	})

	t.Run("runtime permission comes first", func(t *testing.T) {
		n, rec := newTestNegotiator(33, WithRuntimePermission(func() bool { return false }))

		_, err := n.RequestFor(ownerPath, nil)
		require.NoError(t, err)

		reqs := rec.requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, KindRuntime, reqs[0].Kind)
	})

	t.Run("nothing missing completes immediately", func(t *testing.T) {
		n, rec := newTestNegotiator(33)
		var got Outcome
		ticket, err := n.RequestFor("/sdcard/Download", func(o Outcome) { got = o })
		require.NoError(t, err)

		assert.Empty(t, rec.requests())
		assert.True(t, got.Granted)
		assert.Equal(t, ticket, got.Ticket)

		outcome, err := n.Wait(context.Background(), ticket)
		require.NoError(t, err)
		assert.True(t, outcome.Granted)
	})

	t.Run("same target joins the pending ticket", func(t *testing.T) {
		n, rec := newTestNegotiator(33)
		first, err := n.RequestFor(ownerPath, nil)
		require.NoError(t, err)
		second, err := n.RequestFor("/storage/emulated/0/Android/data/com.example/files", nil)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Len(t, rec.requests(), 1)
	})

	t.Run("requester failure leaves nothing pending", func(t *testing.T) {
		n, rec := newTestNegotiator(33)
		rec.err = stderrors.New("no activity")

		_, err := n.RequestFor(ownerPath, nil)
		assert.Equal(t, errors.CodeUnavailable, errors.GetCode(err))
		assert.Empty(t, n.Pending())
	})
}

func TestComplete(t *testing.T) {
	t.Run("granted tree result is persisted before callbacks", func(t *testing.T) {
		granted := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		n, _ := newTestNegotiator(33, WithClock(func() time.Time { return granted }))

		var sawGrant bool
		ticket, err := n.RequestFor(ownerPath, func(o Outcome) {
			sawGrant = n.HasGrant(ownerPath)
		})
		require.NoError(t, err)
		assert.False(t, n.HasGrant(ownerPath))

		require.NoError(t, n.Complete(ticket, Result{Granted: true}))
		assert.True(t, sawGrant)
		assert.True(t, n.HasGrant(ownerPath))
		assert.Empty(t, n.Pending())

		grants, err := n.Grants()
		require.NoError(t, err)
		require.Len(t, grants, 1)
		assert.Equal(t, "com.example", grants[0].Owner)
		assert.Equal(t, scope.AreaData, grants[0].Area)
		assert.Equal(t, granted, grants[0].GrantedAt)
	})

	t.Run("denied result clears the request", func(t *testing.T) {
		n, _ := newTestNegotiator(33)
		var got *Outcome
		ticket, err := n.RequestFor(ownerPath, func(o Outcome) { got = &o })
		require.NoError(t, err)

		require.NoError(t, n.Complete(ticket, Result{Granted: false}))
		require.NotNil(t, got)
		assert.False(t, got.Granted)
		assert.False(t, n.HasGrant(ownerPath))
		assert.Empty(t, n.Pending())

		assert.True(t, errors.IsNotFound(n.Complete(ticket, Result{Granted: true})), "a ticket completes once")
	})

	t.Run("overlapping requests keep their own callbacks", func(t *testing.T) {
		n, rec := newTestNegotiator(33)
		var a, b []Outcome

		ta, err := n.RequestFor(ownerPath, func(o Outcome) { a = append(a, o) })
		require.NoError(t, err)
		tb, err := n.RequestFor("/storage/emulated/0/Android/data/org.other/f", func(o Outcome) { b = append(b, o) })
		require.NoError(t, err)
		require.NotEqual(t, ta, tb)
		require.Len(t, rec.requests(), 2)

		require.NoError(t, n.Complete(tb, Result{Granted: true}))
		require.NoError(t, n.Complete(ta, Result{Granted: false}))

		require.Len(t, a, 1)
		require.Len(t, b, 1)
		assert.False(t, a[0].Granted)
		assert.True(t, b[0].Granted)
	})

	t.Run("unknown ticket", func(t *testing.T) {
		n, _ := newTestNegotiator(33)
		assert.True(t, errors.IsNotFound(n.Complete("nope", Result{Granted: true})))
	})

	t.Run("runtime result does not persist a grant", func(t *testing.T) {
		n, _ := newTestNegotiator(33, WithRuntimePermission(func() bool { return false }))
		ticket, err := n.RequestRuntime(nil)
		require.NoError(t, err)
		require.NoError(t, n.Complete(ticket, Result{Granted: true}))

		grants, err := n.Grants()
		require.NoError(t, err)
		assert.Empty(t, grants)
	})
}

func TestWait(t *testing.T) {
	n, _ := newTestNegotiator(33)
	ticket, err := n.RequestFor(ownerPath, nil)
	require.NoError(t, err)

	done := make(chan Outcome, 1)
	go func() {
		outcome, err := n.Wait(context.Background(), ticket)
		if err == nil {
			done <- outcome
		}
	}()

	require.NoError(t, n.Complete(ticket, Result{Granted: true}))

	select {
	case outcome := <-done:
		assert.True(t, outcome.Granted)
		require.NotNil(t, outcome.Grant)
		assert.Equal(t, "com.example", outcome.Grant.Owner)
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after Complete")
	}

	t.Run("context ends first", func(t *testing.T) {
		ticket, err := n.RequestFor("/storage/emulated/0/Android/data/org.slow", nil)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = n.Wait(ctx, ticket)
		assert.Equal(t, errors.CodeTimeout, errors.GetCode(err))
	})

	t.Run("unknown ticket", func(t *testing.T) {
		_, err := n.Wait(context.Background(), "missing")
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestRevoke(t *testing.T) {
	n, _ := newTestNegotiator(33)
	uri := n.Scheme().TreeURI(Target{Area: scope.AreaData, Owner: "com.example"})
	require.NoError(t, n.Store().Put(Grant{URI: uri, Area: scope.AreaData, Owner: "com.example"}))
	require.True(t, n.HasGrant(ownerPath))

	require.NoError(t, n.Revoke(uri))
	assert.False(t, n.HasGrant(ownerPath))
	assert.True(t, errors.IsNotFound(n.Revoke(uri)))
}
