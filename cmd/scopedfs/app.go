package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jmgilman/go/scopedfs/config"
	"github.com/jmgilman/go/scopedfs/errors"
	"github.com/jmgilman/go/scopedfs/exec"
	"github.com/jmgilman/go/scopedfs/fs/scope"
	"github.com/jmgilman/go/scopedfs/fs/shell"
	"github.com/jmgilman/go/scopedfs/grant"
	grantbadger "github.com/jmgilman/go/scopedfs/grant/badger"
	"github.com/jmgilman/go/scopedfs/logging"
	promrecorder "github.com/jmgilman/go/scopedfs/metrics/prometheus"
	"github.com/jmgilman/go/scopedfs/strategy"
)

// app holds the state shared by every command of one invocation.
type app struct {
	stderr io.Writer

	configPath string
	jsonErrors bool
	mode       string
	sdk        int
	root       string
	logLevel   string
	interp     bool

	cfg        *config.Config
	logger     *zap.Logger
	store      grant.Store
	negotiator *grant.Negotiator
	selector   *strategy.Selector
	registry   *prometheus.Registry

	// quiet suppresses permission prompts while grants are added.
	quiet bool
}

// setup loads configuration and builds the selector.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.applyFlags(cmd, cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, err = logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: cfg.Logging.Output,
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig, "failed to build logger")
	}

	if err := a.openStore(); err != nil {
		return err
	}

	platform := scope.Platform{SDK: cfg.Storage.SDK}
	a.negotiator = grant.NewNegotiator(scope.NewClassifier(cfg.Storage.Root), platform,
		grant.WithStore(a.store),
		grant.WithRequester(grant.RequesterFunc(a.prompt)),
		grant.WithLogger(a.logger))

	mode, err := strategy.ParseMode(cfg.Storage.Mode)
	if err != nil {
		return err
	}
	opts := []strategy.Option{
		strategy.WithMode(mode),
		strategy.WithNegotiator(a.negotiator),
		strategy.WithLogger(a.logger),
		strategy.WithShellOptions(
			shell.WithShell(cfg.Privileged.Shell),
			shell.WithLegacyEcho(cfg.Privileged.LegacyEcho)),
	}
	if mode == strategy.ModePrivileged {
		opts = append(opts, strategy.WithExecutor(a.executor()))
	}
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		opts = append(opts, strategy.WithMetrics(promrecorder.NewRecorder(a.registry)))
	}

	a.selector, err = strategy.New(opts...)
	return err
}

func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Storage.Mode = strings.ToLower(a.mode)
	}
	if flags.Changed("sdk") {
		cfg.Storage.SDK = a.sdk
	}
	if flags.Changed("root") {
		cfg.Storage.Root = a.root
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = strings.ToLower(a.logLevel)
	}
	if flags.Changed("interpreter") {
		cfg.Privileged.Interpreter = a.interp
	}
}

func (a *app) openStore() error {
	if a.cfg.Grants.Store != "badger" {
		a.store = grant.NewMemoryStore()
		return nil
	}
	bc, err := config.BadgerConfig(a.cfg)
	if err != nil {
		return err
	}
	store, err := grantbadger.Open(bc, a.logger)
	if err != nil {
		return err
	}
	a.store = store
	return nil
}

// executor builds the elevated channel of the privileged mode.
func (a *app) executor() exec.Executor {
	p := a.cfg.Privileged

	var opts []exec.Option
	if p.Timeout > 0 {
		opts = append(opts, exec.WithTimeout(p.Timeout.String()))
	}

	var e exec.Executor
	if p.Interpreter {
		e = exec.NewInterpreter(opts...)
	} else {
		e = exec.New(append(opts, exec.WithInheritEnv())...)
	}
	if len(p.Command) > 0 {
		e = exec.NewWrapper(e, p.Command...)
	}
	return e
}

// prompt is the permission requester. A terminal cannot show the system
// picker, so it tells the user how to record the grant instead.
func (a *app) prompt(req grant.Request) error {
	if a.quiet {
		return nil
	}
	switch req.Kind {
	case grant.KindTree:
		fmt.Fprintf(a.stderr, "access to %s needs a grant; open %s and then run:\n  scopedfs grants add %s\n",
			req.Target.Dir(), req.InitialURI, req.TreeURI)
	default:
		fmt.Fprintf(a.stderr, "%s permission required (ticket %s)\n", req.Kind, req.Ticket)
	}
	return nil
}

// close flushes metrics and releases the grant store.
func (a *app) close() error {
	var err error
	if a.registry != nil && a.cfg.Metrics.Textfile != "" {
		if werr := prometheus.WriteToTextfile(a.cfg.Metrics.Textfile, a.registry); werr != nil {
			err = errors.Wrap(werr, errors.CodeIO, "failed to write metrics")
		}
	}
	if a.store != nil {
		if cerr := a.store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return err
}

// report prints err in the requested format.
func (a *app) report(err error) {
	if a.jsonErrors {
		enc := json.NewEncoder(a.stderr)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(errors.ToJSON(err)); encErr == nil {
			return
		}
	}
	fmt.Fprintf(a.stderr, "Error: %v\n", err)
}
