package exec

import (
	"bytes"
	"io"
	"sync"
)

// lockedBuffer is a bytes.Buffer safe for concurrent writers, since
// stdout and stderr are copied on separate goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// capture collects stdout, stderr and their interleaving for one run,
// optionally teeing each stream to a passthrough writer.
type capture struct {
	stdout   lockedBuffer
	stderr   lockedBuffer
	combined lockedBuffer

	passthrough bool
	outSink     io.Writer
	errSink     io.Writer
}

func newCapture(passthrough bool, stdout, stderr io.Writer) *capture {
	return &capture{passthrough: passthrough, outSink: stdout, errSink: stderr}
}

func (c *capture) stdoutWriter() io.Writer {
	return c.tee(&c.stdout, c.outSink)
}

func (c *capture) stderrWriter() io.Writer {
	return c.tee(&c.stderr, c.errSink)
}

func (c *capture) tee(own *lockedBuffer, sink io.Writer) io.Writer {
	if c.passthrough && sink != nil {
		return io.MultiWriter(own, &c.combined, sink)
	}
	return io.MultiWriter(own, &c.combined)
}

func (c *capture) result(exitCode int) *Result {
	return &Result{
		Stdout:   c.stdout.String(),
		Stderr:   c.stderr.String(),
		Combined: c.combined.String(),
		ExitCode: exitCode,
	}
}
