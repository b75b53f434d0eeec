package exec

import (
	"context"
	"io"
)

// CommandWrapper prepends a fixed argv prefix to every Run call. It models
// an elevated channel such as `su 0` or `rish -c`, where the real command
// line follows the prefix.
type CommandWrapper struct {
	executor Executor
	prefix   []string
}

// NewWrapper creates a CommandWrapper around executor.
func NewWrapper(executor Executor, prefix ...string) *CommandWrapper {
	return &CommandWrapper{
		executor: executor,
		prefix:   append([]string(nil), prefix...),
	}
}

// Prefix returns a copy of the argv prefix.
func (w *CommandWrapper) Prefix() []string {
	return append([]string(nil), w.prefix...)
}

// WithEnv implements Executor.
func (w *CommandWrapper) WithEnv(env map[string]string) Executor {
	w.executor = w.executor.WithEnv(env)
	return w
}

// WithDir implements Executor.
func (w *CommandWrapper) WithDir(dir string) Executor {
	w.executor = w.executor.WithDir(dir)
	return w
}

// WithContext implements Executor.
func (w *CommandWrapper) WithContext(ctx context.Context) Executor {
	w.executor = w.executor.WithContext(ctx)
	return w
}

// WithTimeout implements Executor.
func (w *CommandWrapper) WithTimeout(timeout string) Executor {
	w.executor = w.executor.WithTimeout(timeout)
	return w
}

// WithInheritEnv implements Executor.
func (w *CommandWrapper) WithInheritEnv() Executor {
	w.executor = w.executor.WithInheritEnv()
	return w
}

// WithStdin implements Executor.
func (w *CommandWrapper) WithStdin(r io.Reader) Executor {
	w.executor = w.executor.WithStdin(r)
	return w
}

// WithStdout implements Executor.
func (w *CommandWrapper) WithStdout(out io.Writer) Executor {
	w.executor = w.executor.WithStdout(out)
	return w
}

// WithStderr implements Executor.
func (w *CommandWrapper) WithStderr(out io.Writer) Executor {
	w.executor = w.executor.WithStderr(out)
	return w
}

// WithPassthrough implements Executor.
func (w *CommandWrapper) WithPassthrough() Executor {
	w.executor = w.executor.WithPassthrough()
	return w
}

// Run executes prefix followed by args.
func (w *CommandWrapper) Run(args ...string) (*Result, error) {
	full := make([]string, 0, len(w.prefix)+len(args))
	full = append(full, w.prefix...)
	full = append(full, args...)
	return w.executor.Run(full...)
}

// Clone implements Executor.
func (w *CommandWrapper) Clone() Executor {
	return &CommandWrapper{
		executor: w.executor.Clone(),
		prefix:   w.Prefix(),
	}
}
