package exec

import (
	"context"
	"io"
)

//go:generate go run github.com/matryer/moq@latest -out mocks/executor.go -pkg mocks . Executor

// Executor runs commands. Implementations spawn a process (Command), run
// the command line in-process (Interpreter) or prepend a fixed argv prefix
// to another executor (CommandWrapper).
//
// The With* methods configure only the next Run call and return the
// executor for chaining. Global settings are supplied as Options at
// construction time.
type Executor interface {
	// WithEnv adds environment variables for the next execution.
	WithEnv(env map[string]string) Executor

	// WithDir sets the working directory for the next execution.
	WithDir(dir string) Executor

	// WithContext sets the context used to bound the execution.
	WithContext(ctx context.Context) Executor

	// WithTimeout sets a timeout as a duration string, e.g. "30s".
	WithTimeout(timeout string) Executor

	// WithInheritEnv passes the parent process environment through.
	WithInheritEnv() Executor

	// WithStdin feeds r to the command's standard input.
	WithStdin(r io.Reader) Executor

	// WithStdout sets the passthrough writer for stdout.
	WithStdout(w io.Writer) Executor

	// WithStderr sets the passthrough writer for stderr.
	WithStderr(w io.Writer) Executor

	// WithPassthrough streams output to the stdout/stderr writers while
	// still capturing it.
	WithPassthrough() Executor

	// Run executes args[0] with args[1:] and returns the captured output.
	// A non-zero exit is returned as an *ExecError together with the Result.
	Run(args ...string) (*Result, error)

	// Clone returns an independent copy sharing global configuration.
	Clone() Executor
}

// Result holds the captured output of one execution.
type Result struct {
	Stdout   string
	Stderr   string
	Combined string
	ExitCode int
}

// Option configures global settings of a Command or Interpreter.
type Option func(*config)

// WithEnv sets environment variables for every execution.
func WithEnv(env map[string]string) Option {
	return func(c *config) {
		for k, v := range env {
			c.globalEnv[k] = v
		}
	}
}

// WithDir sets the working directory for every execution.
func WithDir(dir string) Option {
	return func(c *config) {
		c.globalDir = dir
	}
}

// WithInheritEnv passes the parent environment to every execution.
func WithInheritEnv() Option {
	return func(c *config) {
		c.globalInheritEnv = true
	}
}

// WithTimeout bounds every execution by the given duration string.
func WithTimeout(timeout string) Option {
	return func(c *config) {
		c.globalTimeout = timeout
	}
}

// WithPassthrough streams output of every execution.
func WithPassthrough() Option {
	return func(c *config) {
		c.globalPassthrough = true
	}
}
