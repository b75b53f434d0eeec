package shell

import (
	"encoding/base64"
	"sort"
	"strings"

	shellquote "github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/jmgilman/go/scopedfs/errors"
	"github.com/jmgilman/go/scopedfs/exec"
	"github.com/jmgilman/go/scopedfs/fs/core"
	"github.com/jmgilman/go/scopedfs/fs/internal/pathutil"
	"github.com/jmgilman/go/scopedfs/grant"
)

const (
	// DefaultShell is the shell every command line is handed to.
	DefaultShell = "sh"

	sentinelMissing = "not_exists"
)

// Backend is the command strategy.
type Backend struct {
	executor   exec.Executor
	negotiator *grant.Negotiator
	service    Service
	shell      string
	legacyEcho bool
	logger     *zap.Logger
}

var _ core.Strategy = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithShell sets the shell binary. The default is DefaultShell.
func WithShell(shell string) Option {
	return func(b *Backend) { b.shell = shell }
}

// WithService sets the privileged service consulted for permissions.
// Without one the channel is assumed authorized.
func WithService(s Service) Option {
	return func(b *Backend) { b.service = s }
}

// WithLegacyEcho writes text content unquoted inside echo '...'.
func WithLegacyEcho(enabled bool) Option {
	return func(b *Backend) { b.legacyEcho = enabled }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Backend) { b.logger = l }
}

// New creates a command backend that runs its command lines through
// executor.
func New(executor exec.Executor, negotiator *grant.Negotiator, opts ...Option) *Backend {
	b := &Backend{
		executor:   executor,
		negotiator: negotiator,
		shell:      DefaultShell,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Kind implements core.Strategy.
func (b *Backend) Kind() core.Kind {
	return core.KindCommand
}

// query runs line with `<shell> -c` and returns its standard output.
func (b *Backend) query(op, path, line string) (string, error) {
	if err := b.ready(op, path); err != nil {
		return "", err
	}
	res, err := b.executor.Clone().Run(b.shell, "-c", line)
	if err != nil {
		return "", b.fail(err, op, path)
	}
	return res.Stdout, nil
}

// mutate feeds line to the shell's standard input and judges it by the
// exit status.
func (b *Backend) mutate(op, path, line string) error {
	if err := b.ready(op, path); err != nil {
		return err
	}
	script := strings.NewReader(line + "\nexit\n")
	res, err := b.executor.Clone().WithStdin(script).Run(b.shell)
	if err != nil {
		return b.fail(err, op, path)
	}
	if res.ExitCode != 0 {
		return b.fail(&exec.ExecError{Command: []string{b.shell}, ExitCode: res.ExitCode, Stderr: res.Stderr}, op, path)
	}
	return nil
}

// ready checks the privileged service before any command is run.
func (b *Backend) ready(op, path string) error {
	if b.service == nil {
		return nil
	}
	if !b.service.Alive() {
		return errors.WithContextMap(errors.New(errors.CodeUnavailable, "privileged service is not running"),
			map[string]interface{}{"op": op, "path": path})
	}
	if !b.service.Authorized() {
		ticket, err := b.RequestStoragePermission()
		if err != nil {
			b.logger.Warn("authorization request failed", zap.Error(err))
		}
		return errors.WithContext(core.PermissionMissing(op, path), "ticket", string(ticket))
	}
	return nil
}

// missing turns a failed read of a path that does not exist into
// CodeNotFound.
func (b *Backend) missing(err error, op, path string) error {
	if errors.GetCode(err) != errors.CodeExecutionFailed {
		return err
	}
	if ok, existsErr := b.Exists(path); existsErr == nil && !ok {
		return core.NotFound(op, path)
	}
	return err
}

// ReadFile implements core.FileSystem.
func (b *Backend) ReadFile(path string) (string, error) {
	out, err := b.query("read", path, "cat "+quote(path))
	if err != nil {
		return "", b.missing(err, "read", path)
	}
	return core.ReadLines(strings.NewReader(out))
}

// ReadBytes implements core.FileSystem.
func (b *Backend) ReadBytes(path string) ([]byte, error) {
	out, err := b.query("read", path, "base64 "+quote(path))
	if err != nil {
		return nil, b.missing(err, "read", path)
	}
	data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(out), ""))
	if err != nil {
		return nil, errors.WithContext(errors.Wrap(err, errors.CodeIO, "malformed base64 output"), "path", path)
	}
	return data, nil
}

// WriteFile implements core.FileSystem. The shell appends a newline.
func (b *Backend) WriteFile(path, content string) error {
	var line string
	if b.legacyEcho {
		line = "echo '" + content + "' > " + quote(path)
	} else {
		line = "printf '%s\\n' " + shellquote.Join(content) + " > " + quote(path)
	}
	return b.mutate("write", path, mkdirParent(path)+" && "+line)
}

// WriteBytes implements core.FileSystem.
func (b *Backend) WriteBytes(path string, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	line := mkdirParent(path) + " && echo '" + encoded + "' | base64 -d > " + quote(path)
	return b.mutate("write", path, line)
}

// Delete implements core.FileSystem.
func (b *Backend) Delete(path string) error {
	ok, err := b.Exists(path)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return b.mutate("delete", path, "rm -r "+quote(path))
}

// Exists implements core.FileSystem.
func (b *Backend) Exists(path string) (bool, error) {
	p := quote(path)
	out, err := b.query("exists", path, "[ -e "+p+` ] && echo "exists" || echo "`+sentinelMissing+`"`)
	if err != nil {
		return false, err
	}
	return !strings.Contains(out, sentinelMissing), nil
}

// Copy implements core.FileSystem. An existing destination is removed
// first.
func (b *Backend) Copy(src, dst string) error {
	if core.SamePath(src, dst) {
		return nil
	}
	if err := core.CheckNested("copy", src, dst); err != nil {
		return err
	}
	if err := b.Delete(dst); err != nil {
		return err
	}
	return b.mutate("copy", src, mkdirParent(dst)+" && cp -rT "+quote(src)+" "+quote(dst))
}

// Move implements core.FileSystem. An existing destination is removed
// first.
func (b *Backend) Move(src, dst string) error {
	if core.SamePath(src, dst) {
		return nil
	}
	if err := core.CheckNested("move", src, dst); err != nil {
		return err
	}
	if err := b.Delete(dst); err != nil {
		return err
	}
	return b.mutate("move", src, mkdirParent(dst)+" && mv "+quote(src)+" "+quote(dst))
}

// List implements core.FileSystem.
func (b *Backend) List(dir string) ([]string, error) {
	entries, err := b.list(dir)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, pathutil.Child(dir, e.Name))
	}
	return out, nil
}

// ListFiltered implements core.FileSystem.
func (b *Backend) ListFiltered(dir string, dirs bool) ([]string, error) {
	entries, err := b.list(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Dir == dirs {
			out = append(out, pathutil.Child(dir, e.Name))
		}
	}
	return out, nil
}

func (b *Backend) list(dir string) ([]Entry, error) {
	out, err := b.query("list", dir, "ls -l "+quote(dir))
	if err != nil {
		return nil, b.missing(err, "list", dir)
	}
	entries := ParseListing(out)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// CreateDirectory implements core.FileSystem.
func (b *Backend) CreateDirectory(path string) error {
	return b.mutate("mkdir", path, "mkdir -p "+quote(path))
}

// HasStoragePermission implements core.Permissions. Both the runtime
// permission and an authorized, running service are required.
func (b *Backend) HasStoragePermission() bool {
	if !b.negotiator.RuntimeGranted() {
		return false
	}
	return b.service == nil || (b.service.Alive() && b.service.Authorized())
}

// HasStoragePermissionFor implements core.Permissions. The channel reaches
// every path once it is usable.
func (b *Backend) HasStoragePermissionFor(string) bool {
	return b.HasStoragePermission()
}

// RequestStoragePermission implements core.Permissions. The runtime
// permission is requested first; once held, the service is asked for
// authorization.
func (b *Backend) RequestStoragePermission() (grant.Ticket, error) {
	if !b.negotiator.RuntimeGranted() || b.service == nil || b.service.Authorized() {
		return b.negotiator.RequestRuntime(nil)
	}
	if !b.service.Alive() {
		return "", errors.New(errors.CodeUnavailable, "privileged service is not running")
	}

	ticket, err := b.negotiator.RequestElevation(nil)
	if err != nil {
		return "", err
	}
	if err := b.service.RequestAuthorization(ticket); err != nil {
		return "", errors.WithContext(
			errors.Wrap(err, errors.CodeUnavailable, "failed to request service authorization"),
			"ticket", string(ticket))
	}
	return ticket, nil
}

// RequestStoragePermissionFor implements core.Permissions.
func (b *Backend) RequestStoragePermissionFor(string) (grant.Ticket, error) {
	return b.RequestStoragePermission()
}

func (b *Backend) fail(err error, op, path string) error {
	b.logger.Debug("command failed",
		zap.String("op", op), zap.String("path", path), zap.Error(err))
	return errors.WithContextMap(exec.Classify(err, op+" command failed"),
		map[string]interface{}{"op": op, "path": path})
}

func quote(path string) string {
	return shellquote.Join(path)
}

func mkdirParent(path string) string {
	return "mkdir -p " + quote(pathutil.Parent(path))
}
