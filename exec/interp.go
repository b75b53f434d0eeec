package exec

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	shellquote "github.com/kballard/go-shellquote"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Interpreter runs command lines with an in-process POSIX shell instead of
// spawning /bin/sh. Builtins and control flow are interpreted directly.
// External programs such as cat or cp are still executed from PATH.
//
// It recognises the two shapes the storage backends produce:
//
//	Run("sh", "-c", line)          // line is the script
//	WithStdin(script).Run("sh")    // the script is read from stdin
//
// Any other argv is quoted and run as a single simple command.
type Interpreter struct {
	config *config
}

// NewInterpreter creates an Interpreter with the given global options.
func NewInterpreter(opts ...Option) *Interpreter {
	return &Interpreter{config: newConfig(opts)}
}

// WithEnv implements Executor.
func (i *Interpreter) WithEnv(env map[string]string) Executor {
	for k, v := range env {
		i.config.localEnv[k] = v
	}
	return i
}

// WithDir implements Executor.
func (i *Interpreter) WithDir(dir string) Executor {
	i.config.localDir = dir
	return i
}

// WithContext implements Executor.
func (i *Interpreter) WithContext(ctx context.Context) Executor {
	i.config.ctx = ctx
	return i
}

// WithTimeout implements Executor.
func (i *Interpreter) WithTimeout(timeout string) Executor {
	i.config.localTimeout = timeout
	return i
}

// WithInheritEnv implements Executor.
func (i *Interpreter) WithInheritEnv() Executor {
	i.config.localInheritEnv = boolPtr(true)
	return i
}

// WithStdin implements Executor.
func (i *Interpreter) WithStdin(r io.Reader) Executor {
	i.config.stdin = r
	return i
}

// WithStdout implements Executor.
func (i *Interpreter) WithStdout(w io.Writer) Executor {
	i.config.stdout = w
	return i
}

// WithStderr implements Executor.
func (i *Interpreter) WithStderr(w io.Writer) Executor {
	i.config.stderr = w
	return i
}

// WithPassthrough implements Executor.
func (i *Interpreter) WithPassthrough() Executor {
	i.config.localPassthrough = boolPtr(true)
	return i
}

// Run interprets args as described on Interpreter.
func (i *Interpreter) Run(args ...string) (*Result, error) {
	defer i.config.resetLocal()

	if len(args) == 0 {
		return nil, &ExecError{ExitCode: -1, Err: os.ErrInvalid}
	}

	ctx, cancel, err := i.config.deadline()
	if err != nil {
		return nil, &ExecError{Command: args, ExitCode: -1, Err: err}
	}
	defer cancel()

	script, stdin, err := i.script(args)
	if err != nil {
		return nil, &ExecError{Command: args, ExitCode: -1, Err: err}
	}

	capture := newCapture(i.config.passthrough(), i.config.stdout, i.config.stderr)

	file, err := syntax.NewParser().Parse(strings.NewReader(script), "")
	if err != nil {
		result := capture.result(2)
		result.Stderr = err.Error()
		return result, newExecError(args, result, err)
	}

	environ := i.config.environ()
	if environ == nil {
		environ = os.Environ()
	}

	opts := []interp.RunnerOption{
		interp.StdIO(stdin, capture.stdoutWriter(), capture.stderrWriter()),
		interp.Interactive(false),
		interp.Env(expand.ListEnviron(environ...)),
	}
	if dir := i.config.dir(); dir != "" {
		opts = append(opts, interp.Dir(dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return nil, &ExecError{Command: args, ExitCode: -1, Err: err}
	}

	runErr := runner.Run(ctx, file)
	result := capture.result(exitCode(runErr))
	if runErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			runErr = ctx.Err()
		}
		return result, newExecError(args, result, runErr)
	}
	return result, nil
}

// script extracts the script text and the stdin left for it to consume.
func (i *Interpreter) script(args []string) (string, io.Reader, error) {
	if !isShell(args[0]) {
		return shellquote.Join(args...), i.config.stdin, nil
	}

	rest := args[1:]
	if len(rest) >= 2 && rest[0] == "-c" {
		return rest[1], i.config.stdin, nil
	}
	if len(rest) == 0 && i.config.stdin != nil {
		data, err := io.ReadAll(i.config.stdin)
		if err != nil {
			return "", nil, err
		}
		return string(data), nil, nil
	}
	return shellquote.Join(args...), i.config.stdin, nil
}

// Clone implements Executor.
func (i *Interpreter) Clone() Executor {
	return &Interpreter{config: i.config.clone()}
}

func isShell(name string) bool {
	switch filepath.Base(name) {
	case "sh", "bash", "ash", "dash", "mksh":
		return true
	}
	return false
}

// exitCode maps a runner error to a shell exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var status interp.ExitStatus
	if errors.As(err, &status) {
		return int(status)
	}
	return 1
}
