// Package exec runs command lines for the storage backends.
//
// The Command backend of scopedfs talks to the filesystem exclusively
// through shell text. This package is the channel it talks over: an
// Executor that runs argv, optionally feeding a script on stdin, and
// returns captured stdout, stderr and the exit status.
//
// Three implementations are provided:
//
//   - Command spawns a child process via os/exec.
//   - Interpreter runs the script with mvdan.cc/sh's in-process POSIX
//     interpreter, for hosts without a usable /bin/sh and for tests.
//   - CommandWrapper prepends a fixed argv prefix, which is how an
//     elevated channel is expressed:
//
//	su := exec.NewWrapper(exec.New(), "su", "0")
//	result, err := su.Run("sh", "-c", "ls -l /data")
//	// Equivalent to: exec.New().Run("su", "0", "sh", "-c", "ls -l /data")
//
// # Configuration
//
// Options passed to New or NewInterpreter apply to every run. The With*
// methods apply to the next Run only and are reset afterwards:
//
//	cmd := exec.New(exec.WithTimeout("30s"))
//	result, err := cmd.
//		WithStdin(strings.NewReader(script)).
//		WithDir("/sdcard").
//		Run("sh")
//
// # Errors
//
// A non-zero exit returns both the Result and an *ExecError. Classify
// converts an ExecError into a scopedfs PlatformError so backends can
// report EXECUTION_FAILED, TIMEOUT or SERVICE_UNAVAILABLE uniformly.
//
// # Testing
//
// The mocks subpackage holds a moq-generated ExecutorMock.
package exec
