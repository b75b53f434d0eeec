package grant

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jmgilman/go/scopedfs/errors"
	"github.com/jmgilman/go/scopedfs/fs/scope"
)

// settledLimit bounds how many completed outcomes are kept for Wait.
const settledLimit = 64

// Negotiator checks and requests permissions. It is safe for concurrent use.
type Negotiator struct {
	classifier *scope.Classifier
	scheme     Scheme
	store      Store
	requester  Requester
	runtime    func() bool
	now        func() time.Time
	logger     *zap.Logger

	mu       sync.Mutex
	pending  map[Ticket]*pending
	byKey    map[string]Ticket
	settled  map[Ticket]Outcome
	settledQ []Ticket
}

type pending struct {
	req        Request
	key        string
	callbacks  []Callback
	done       chan struct{}
	outcome    Outcome
	completing bool
}

// Option configures a Negotiator.
type Option func(*Negotiator)

// WithStore sets the grant store. The default is a MemoryStore.
func WithStore(s Store) Option {
	return func(n *Negotiator) { n.store = s }
}

// WithRequester sets the prompt boundary. Without one, requests stay
// pending until completed by hand.
func WithRequester(r Requester) Option {
	return func(n *Negotiator) { n.requester = r }
}

// WithRuntimePermission sets the runtime storage permission check.
// The default reports the permission as granted.
func WithRuntimePermission(granted func() bool) Option {
	return func(n *Negotiator) { n.runtime = granted }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(n *Negotiator) { n.logger = l }
}

// WithClock overrides the grant timestamp source.
func WithClock(now func() time.Time) Option {
	return func(n *Negotiator) { n.now = now }
}

// NewNegotiator creates a Negotiator for the volume classified by c on
// the given platform.
func NewNegotiator(c *scope.Classifier, platform scope.Platform, opts ...Option) *Negotiator {
	n := &Negotiator{
		classifier: c,
		scheme:     Scheme{Platform: platform},
		store:      NewMemoryStore(),
		runtime:    func() bool { return true },
		now:        time.Now,
		logger:     zap.NewNop(),
		pending:    make(map[Ticket]*pending),
		byKey:      make(map[string]Ticket),
		settled:    make(map[Ticket]Outcome),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Classifier returns the path classifier.
func (n *Negotiator) Classifier() *scope.Classifier { return n.classifier }

// Scheme returns the grant identifier scheme.
func (n *Negotiator) Scheme() Scheme { return n.scheme }

// Store returns the grant store.
func (n *Negotiator) Store() Store { return n.store }

// RuntimeGranted reports whether the runtime storage permission is held.
func (n *Negotiator) RuntimeGranted() bool {
	return n.runtime()
}

// TargetFor returns the target that must be granted to access path.
func (n *Negotiator) TargetFor(path string) Target {
	return n.scheme.TargetFor(n.classifier.Classify(path))
}

// Lookup returns the persisted grant covering path. Unrestricted paths
// report CodeInvalidInput since no grant applies to them.
func (n *Negotiator) Lookup(path string) (Grant, error) {
	loc := n.classifier.Classify(path)
	if !loc.Restricted() {
		return Grant{}, errors.WithContext(errors.New(errors.CodeInvalidInput, "path is not restricted"), "path", path)
	}
	return n.store.Get(n.scheme.TreeURI(n.scheme.TargetFor(loc)))
}

// HasGrant reports whether path is covered. Unrestricted paths are always
// covered. Restricted paths need a grant whose URI matches the target's
// URI exactly.
func (n *Negotiator) HasGrant(path string) bool {
	if !n.classifier.Restricted(path) {
		return true
	}
	_, err := n.Lookup(path)
	return err == nil
}

// HasTarget reports whether a grant exists for exactly t.
func (n *Negotiator) HasTarget(t Target) bool {
	_, err := n.store.Get(n.scheme.TreeURI(t))
	return err == nil
}

// RequestFor requests whatever path is missing. Without the runtime
// permission that is requested first. Otherwise a tree grant for the
// narrowest target is requested. If nothing is missing the ticket
// completes immediately as granted.
func (n *Negotiator) RequestFor(path string, cb Callback) (Ticket, error) {
	if !n.RuntimeGranted() {
		return n.RequestRuntime(cb)
	}

	loc := n.classifier.Classify(path)
	if !loc.Restricted() {
		return n.settle(KindRuntime, cb), nil
	}

	target := n.scheme.TargetFor(loc)
	if n.HasTarget(target) {
		return n.settle(KindTree, cb), nil
	}

	return n.issue(Request{
		Kind:       KindTree,
		Target:     target,
		TreeURI:    n.scheme.TreeURI(target),
		InitialURI: n.scheme.InitialURI(target),
	}, cb)
}

// RequestRuntime requests the runtime storage permission, completing
// immediately if it is already held.
func (n *Negotiator) RequestRuntime(cb Callback) (Ticket, error) {
	if n.RuntimeGranted() {
		return n.settle(KindRuntime, cb), nil
	}
	return n.issue(Request{Kind: KindRuntime}, cb)
}

// RequestElevation requests authorization from the elevated service.
func (n *Negotiator) RequestElevation(cb Callback) (Ticket, error) {
	return n.issue(Request{Kind: KindElevation}, cb)
}

// issue registers a pending request and hands it to the requester. A
// request for the same kind and target as one already pending joins it.
func (n *Negotiator) issue(req Request, cb Callback) (Ticket, error) {
	key := req.Kind.String() + ":" + req.TreeURI

	n.mu.Lock()
	if ticket, ok := n.byKey[key]; ok {
		p := n.pending[ticket]
		if cb != nil {
			p.callbacks = append(p.callbacks, cb)
		}
		n.mu.Unlock()
		n.logger.Debug("joined pending permission request",
			zap.String("ticket", string(ticket)),
			zap.Stringer("kind", req.Kind))
		return ticket, nil
	}

	req.Ticket = Ticket(uuid.NewString())
	p := &pending{req: req, key: key, done: make(chan struct{})}
	if cb != nil {
		p.callbacks = append(p.callbacks, cb)
	}
	n.pending[req.Ticket] = p
	n.byKey[key] = req.Ticket
	n.mu.Unlock()

	n.logger.Info("requesting permission",
		zap.String("ticket", string(req.Ticket)),
		zap.Stringer("kind", req.Kind),
		zap.String("tree_uri", req.TreeURI))

	if n.requester == nil {
		n.logger.Warn("no permission requester configured; request stays pending",
			zap.String("ticket", string(req.Ticket)))
		return req.Ticket, nil
	}

	if err := n.requester.Request(req); err != nil {
		n.mu.Lock()
		delete(n.pending, req.Ticket)
		delete(n.byKey, key)
		n.mu.Unlock()
		return "", errors.WithContext(
			errors.Wrap(err, errors.CodeUnavailable, "failed to issue permission request"),
			"kind", req.Kind.String())
	}
	return req.Ticket, nil
}

// settle records an immediately granted outcome and notifies cb.
func (n *Negotiator) settle(kind Kind, cb Callback) Ticket {
	outcome := Outcome{Ticket: Ticket(uuid.NewString()), Kind: kind, Granted: true}

	n.mu.Lock()
	n.remember(outcome)
	n.mu.Unlock()

	if cb != nil {
		cb(outcome)
	}
	return outcome.Ticket
}

// remember stores outcome for Wait. Callers must hold n.mu.
func (n *Negotiator) remember(outcome Outcome) {
	n.settled[outcome.Ticket] = outcome
	n.settledQ = append(n.settledQ, outcome.Ticket)
	if len(n.settledQ) > settledLimit {
		delete(n.settled, n.settledQ[0])
		n.settledQ = n.settledQ[1:]
	}
}

// Complete delivers the answer for ticket. A granted tree result is
// persisted before callbacks run. The pending entry is cleared whether or
// not the request was granted. Unknown tickets report CodeNotFound.
func (n *Negotiator) Complete(ticket Ticket, res Result) error {
	n.mu.Lock()
	p, ok := n.pending[ticket]
	if ok && p.completing {
		ok = false
	}
	if ok {
		p.completing = true
		delete(n.byKey, p.key)
	}
	n.mu.Unlock()

	if !ok {
		return errors.WithContext(errors.New(errors.CodeNotFound, "no pending permission request"), "ticket", string(ticket))
	}

	outcome := Outcome{Ticket: ticket, Kind: p.req.Kind, Granted: res.Granted}

	var persistErr error
	if res.Granted && p.req.Kind == KindTree {
		g, err := n.persist(p.req, res)
		if err != nil {
			outcome.Granted = false
			persistErr = err
		} else {
			outcome.Grant = &g
		}
	}

	n.logger.Info("permission request completed",
		zap.String("ticket", string(ticket)),
		zap.Stringer("kind", p.req.Kind),
		zap.Bool("granted", outcome.Granted))

	n.mu.Lock()
	p.outcome = outcome
	delete(n.pending, ticket)
	n.remember(outcome)
	n.mu.Unlock()
	close(p.done)

	for _, cb := range p.callbacks {
		cb(outcome)
	}
	return persistErr
}

func (n *Negotiator) persist(req Request, res Result) (Grant, error) {
	uri := res.URI
	if uri == "" {
		uri = req.TreeURI
	}
	if uri != req.TreeURI {
		n.logger.Warn("user granted a different tree than requested",
			zap.String("requested", req.TreeURI),
			zap.String("granted", uri))
	}

	g := Grant{URI: uri, Area: req.Target.Area, Owner: req.Target.Owner, GrantedAt: n.now()}
	if t, err := ParseTreeURI(uri); err == nil {
		g.Area, g.Owner = t.Area, t.Owner
	}

	if err := n.store.Put(g); err != nil {
		return Grant{}, errors.WithContext(errors.Wrap(err, errors.CodeIO, "failed to persist grant"), "uri", uri)
	}
	return g, nil
}

// Wait blocks until ticket completes or ctx ends.
func (n *Negotiator) Wait(ctx context.Context, ticket Ticket) (Outcome, error) {
	n.mu.Lock()
	if outcome, ok := n.settled[ticket]; ok {
		n.mu.Unlock()
		return outcome, nil
	}
	p, ok := n.pending[ticket]
	n.mu.Unlock()
	if !ok {
		return Outcome{}, errors.WithContext(errors.New(errors.CodeNotFound, "unknown permission ticket"), "ticket", string(ticket))
	}

	select {
	case <-p.done:
		n.mu.Lock()
		defer n.mu.Unlock()
		return p.outcome, nil
	case <-ctx.Done():
		return Outcome{}, errors.Wrap(ctx.Err(), errors.CodeTimeout, "permission request still pending")
	}
}

// Pending returns the outstanding requests.
func (n *Negotiator) Pending() []Request {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Request, 0, len(n.pending))
	for _, p := range n.pending {
		out = append(out, p.req)
	}
	return out
}

// Grants lists persisted grants.
func (n *Negotiator) Grants() ([]Grant, error) {
	return n.store.List()
}

// Revoke forgets the grant with the given tree URI.
func (n *Negotiator) Revoke(uri string) error {
	return n.store.Delete(uri)
}
