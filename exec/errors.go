package exec

import (
	"context"
	"fmt"

	"github.com/jmgilman/go/scopedfs/errors"
)

// ExecError describes a failed execution. It carries the captured output
// so callers can report stderr without re-running the command.
type ExecError struct {
	Command  []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func newExecError(args []string, result *Result, err error) *ExecError {
	return &ExecError{
		Command:  args,
		ExitCode: result.ExitCode,
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
		Err:      err,
	}
}

func (e *ExecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("command %v failed with exit code %d: %v", e.Command, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("command %v failed with exit code %d", e.Command, e.ExitCode)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Classify converts an execution failure into a PlatformError: a timeout
// becomes CodeTimeout, a process that never started becomes CodeUnavailable
// and a non-zero exit becomes CodeExecutionFailed. The exit code and
// stderr are attached as context.
func Classify(err error, message string) error {
	if err == nil {
		return nil
	}

	var execErr *ExecError
	if !errors.As(err, &execErr) {
		return errors.Wrap(err, errors.CodeUnavailable, message)
	}

	code := errors.CodeExecutionFailed
	switch {
	case errors.Is(execErr.Err, context.DeadlineExceeded):
		code = errors.CodeTimeout
	case execErr.ExitCode < 0:
		code = errors.CodeUnavailable
	}

	return errors.WithContextMap(errors.Wrap(err, code, message), map[string]interface{}{
		"exit_code": execErr.ExitCode,
		"stderr":    execErr.Stderr,
	})
}
