// Package strategy chooses the storage backend for a session.
//
// The choice depends on two axes fixed at construction: the requested
// Mode, and the platform version together with the marker defect.
//
//	privileged                        command backend (fs/shell)
//	native, SDK < 30                  direct backend (fs/billy)
//	native, restricted, defect found  marker backend (fs/marker)
//	native, restricted, no defect     document backend (fs/document)
//
// A Selector never switches backends afterwards. Build a new one to change
// mode.
package strategy

import (
	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"

	"github.com/jmgilman/go/scopedfs/errors"
	"github.com/jmgilman/go/scopedfs/exec"
	fsbilly "github.com/jmgilman/go/scopedfs/fs/billy"
	"github.com/jmgilman/go/scopedfs/fs/core"
	"github.com/jmgilman/go/scopedfs/fs/document"
	"github.com/jmgilman/go/scopedfs/fs/marker"
	"github.com/jmgilman/go/scopedfs/fs/scope"
	"github.com/jmgilman/go/scopedfs/fs/shell"
	"github.com/jmgilman/go/scopedfs/grant"
	"github.com/jmgilman/go/scopedfs/metrics"
)

// DefaultSDK is the platform level assumed when none is configured.
const DefaultSDK = scope.SDKRestricted

// Direct is the direct backend the other native backends build on.
type Direct interface {
	core.Strategy
	core.StreamFS
	Unwrap() billy.Filesystem
}

// ProbeFunc reports whether fs exhibits the marker defect below root.
type ProbeFunc func(fs core.FileSystem, root string) bool

// Selector is the strategy callers invoke. It embeds the selected backend.
type Selector struct {
	core.Strategy

	mode       Mode
	negotiator *grant.Negotiator
	backend    core.Strategy
}

type options struct {
	mode       Mode
	platform   scope.Platform
	root       string
	negotiator *grant.Negotiator
	direct     Direct
	tree       document.Tree
	executor   exec.Executor
	service    shell.Service
	shellOpts  []shell.Option
	probe      ProbeFunc
	logger     *zap.Logger
	recorder   metrics.Recorder
}

// Option configures a Selector.
type Option func(*options)

// WithMode sets the access mode. The default is ModeNative.
func WithMode(m Mode) Option {
	return func(o *options) { o.mode = m }
}

// WithPlatform sets the platform version. It is ignored when a negotiator
// is supplied, since the negotiator already carries one.
func WithPlatform(p scope.Platform) Option {
	return func(o *options) { o.platform = p }
}

// WithRoot sets the external storage root. It is ignored when a
// negotiator is supplied.
func WithRoot(root string) Option {
	return func(o *options) { o.root = root }
}

// WithNegotiator sets the permission negotiator shared by the backends.
func WithNegotiator(n *grant.Negotiator) Option {
	return func(o *options) { o.negotiator = n }
}

// WithDirect sets the direct backend. The default is the local filesystem.
func WithDirect(d Direct) Option {
	return func(o *options) { o.direct = d }
}

// WithTree sets the document tree of the document backend. The default
// walks the direct backend's filesystem below the storage root.
func WithTree(t document.Tree) Option {
	return func(o *options) { o.tree = t }
}

// WithExecutor sets the execution channel of the privileged mode.
func WithExecutor(e exec.Executor) Option {
	return func(o *options) { o.executor = e }
}

// WithService sets the privileged service behind the execution channel.
func WithService(s shell.Service) Option {
	return func(o *options) { o.service = s }
}

// WithShellOptions passes extra options to the command backend.
func WithShellOptions(opts ...shell.Option) Option {
	return func(o *options) { o.shellOpts = append(o.shellOpts, opts...) }
}

// WithProbe replaces the marker defect probe.
func WithProbe(p ProbeFunc) Option {
	return func(o *options) { o.probe = p }
}

// WithLogger sets the logger handed to every backend.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics instruments the selected backend.
func WithMetrics(r metrics.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// New selects and constructs the backend for the session.
func New(opts ...Option) (*Selector, error) {
	o := &options{
		platform: scope.Platform{SDK: DefaultSDK},
		probe:    marker.Probe,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.negotiator == nil {
		o.negotiator = grant.NewNegotiator(scope.NewClassifier(o.root), o.platform,
			grant.WithLogger(o.logger))
	}
	platform := o.negotiator.Scheme().Platform
	if o.direct == nil {
		o.direct = fsbilly.NewLocal(
			fsbilly.WithNegotiator(o.negotiator),
			fsbilly.WithLogger(o.logger))
	}

	backend, err := o.build(platform)
	if err != nil {
		return nil, err
	}

	o.logger.Info("selected storage strategy",
		zap.Stringer("strategy", backend.Kind()),
		zap.Stringer("mode", o.mode),
		zap.Stringer("platform", platform))

	s := &Selector{
		Strategy:   backend,
		mode:       o.mode,
		negotiator: o.negotiator,
		backend:    backend,
	}
	if o.recorder != nil {
		s.Strategy = Instrument(backend, o.recorder)
	}
	return s, nil
}

func (o *options) build(platform scope.Platform) (core.Strategy, error) {
	switch o.mode {
	case ModePrivileged:
		executor := o.executor
		if executor == nil {
			executor = exec.New(exec.WithInheritEnv())
		}
		opts := []shell.Option{shell.WithLogger(o.logger)}
		if o.service != nil {
			opts = append(opts, shell.WithService(o.service))
		}
		return shell.New(executor, o.negotiator, append(opts, o.shellOpts...)...), nil

	case ModeNative:
		if !platform.Restricted() {
			return o.direct, nil
		}

		root := o.negotiator.Classifier().Root()
		if o.probe(o.direct, root) {
			o.logger.Debug("marker defect present", zap.String("root", root))
			return marker.New(o.direct, marker.WithLogger(o.logger)), nil
		}

		tree := o.tree
		if tree == nil {
			vol, err := o.direct.Unwrap().Chroot(root)
			if err != nil {
				return nil, errors.WithContext(
					errors.Wrap(err, errors.CodeInvalidConfig, "failed to open storage root"),
					"root", root)
			}
			tree = document.NewFilesystemTree(vol)
		}
		return document.New(tree, o.negotiator, o.direct, document.WithLogger(o.logger)), nil

	default:
		return nil, errors.WithContext(
			errors.Newf(errors.CodeInvalidConfig, "unsupported mode %d", int(o.mode)),
			"mode", o.mode.String())
	}
}

// Mode returns the mode the selector was built for.
func (s *Selector) Mode() Mode {
	return s.mode
}

// Negotiator returns the permission negotiator. Grant completions from
// the platform are delivered through it.
func (s *Selector) Negotiator() *grant.Negotiator {
	return s.negotiator
}

// Backend returns the selected backend without instrumentation.
func (s *Selector) Backend() core.Strategy {
	return s.backend
}
