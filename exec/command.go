package exec

import (
	"context"
	"io"
	osexec "os/exec"
)

// Command executes commands as child processes using os/exec.
type Command struct {
	config *config
}

// New creates a Command with the given global options.
func New(opts ...Option) *Command {
	return &Command{config: newConfig(opts)}
}

// WithEnv implements Executor.
func (c *Command) WithEnv(env map[string]string) Executor {
	for k, v := range env {
		c.config.localEnv[k] = v
	}
	return c
}

// WithDir implements Executor.
func (c *Command) WithDir(dir string) Executor {
	c.config.localDir = dir
	return c
}

// WithContext implements Executor.
func (c *Command) WithContext(ctx context.Context) Executor {
	c.config.ctx = ctx
	return c
}

// WithTimeout implements Executor.
func (c *Command) WithTimeout(timeout string) Executor {
	c.config.localTimeout = timeout
	return c
}

// WithInheritEnv implements Executor.
func (c *Command) WithInheritEnv() Executor {
	c.config.localInheritEnv = boolPtr(true)
	return c
}

// WithStdin implements Executor.
func (c *Command) WithStdin(r io.Reader) Executor {
	c.config.stdin = r
	return c
}

// WithStdout implements Executor.
func (c *Command) WithStdout(w io.Writer) Executor {
	c.config.stdout = w
	return c
}

// WithStderr implements Executor.
func (c *Command) WithStderr(w io.Writer) Executor {
	c.config.stderr = w
	return c
}

// WithPassthrough implements Executor.
func (c *Command) WithPassthrough() Executor {
	c.config.localPassthrough = boolPtr(true)
	return c
}

// Run starts args[0] as a child process and waits for it to exit. The
// process is killed if the context ends first. Local settings are reset
// afterwards regardless of outcome.
func (c *Command) Run(args ...string) (*Result, error) {
	defer c.config.resetLocal()

	if len(args) == 0 {
		return nil, &ExecError{ExitCode: -1, Err: osexec.ErrNotFound}
	}

	ctx, cancel, err := c.config.deadline()
	if err != nil {
		return nil, &ExecError{Command: args, ExitCode: -1, Err: err}
	}
	defer cancel()

	cmd := osexec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = c.config.dir()
	cmd.Env = c.config.environ()
	cmd.Stdin = c.config.stdin

	capture := newCapture(c.config.passthrough(), c.config.stdout, c.config.stderr)
	cmd.Stdout = capture.stdoutWriter()
	cmd.Stderr = capture.stderrWriter()

	runErr := cmd.Run()

	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	result := capture.result(exitCode)

	if runErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			runErr = ctx.Err()
		}
		return result, newExecError(args, result, runErr)
	}
	return result, nil
}

// Clone implements Executor.
func (c *Command) Clone() Executor {
	return &Command{config: c.config.clone()}
}
