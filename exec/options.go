package exec

import (
	"context"
	"io"
	"os"
	"time"
)

// config holds global settings fixed at construction and local settings
// that apply to the next Run only.
type config struct {
	globalEnv         map[string]string
	globalDir         string
	globalInheritEnv  bool
	globalPassthrough bool
	globalTimeout     string

	localEnv         map[string]string
	localDir         string
	localInheritEnv  *bool
	localPassthrough *bool
	localTimeout     string
	stdin            io.Reader
	stdout           io.Writer
	stderr           io.Writer
	ctx              context.Context
}

func newConfig(opts []Option) *config {
	c := &config{
		globalEnv: make(map[string]string),
		localEnv:  make(map[string]string),
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// clone copies global state and the output writers. Pending local
// settings are not carried over.
func (c *config) clone() *config {
	out := &config{
		globalEnv:         make(map[string]string, len(c.globalEnv)),
		globalDir:         c.globalDir,
		globalInheritEnv:  c.globalInheritEnv,
		globalPassthrough: c.globalPassthrough,
		globalTimeout:     c.globalTimeout,
		localEnv:          make(map[string]string),
		stdout:            c.stdout,
		stderr:            c.stderr,
		ctx:               c.ctx,
	}
	for k, v := range c.globalEnv {
		out.globalEnv[k] = v
	}
	return out
}

// environ returns the KEY=VALUE list for the next execution. It returns
// nil when nothing is set, which os/exec treats as "inherit".
func (c *config) environ() []string {
	var env []string
	inherit := c.globalInheritEnv
	if c.localInheritEnv != nil {
		inherit = *c.localInheritEnv
	}
	if inherit {
		env = os.Environ()
	}
	for k, v := range c.globalEnv {
		if _, ok := c.localEnv[k]; !ok {
			env = append(env, k+"="+v)
		}
	}
	for k, v := range c.localEnv {
		env = append(env, k+"="+v)
	}
	return env
}

func (c *config) dir() string {
	if c.localDir != "" {
		return c.localDir
	}
	return c.globalDir
}

func (c *config) passthrough() bool {
	if c.localPassthrough != nil {
		return *c.localPassthrough
	}
	return c.globalPassthrough
}

// deadline derives the execution context, applying the effective timeout.
func (c *config) deadline() (context.Context, context.CancelFunc, error) {
	timeout := c.localTimeout
	if timeout == "" {
		timeout = c.globalTimeout
	}
	if timeout == "" {
		return c.ctx, func() {}, nil
	}
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(c.ctx, d)
	return ctx, cancel, nil
}

func (c *config) resetLocal() {
	c.localEnv = make(map[string]string)
	c.localDir = ""
	c.localInheritEnv = nil
	c.localPassthrough = nil
	c.localTimeout = ""
	c.stdin = nil
}

func boolPtr(v bool) *bool { return &v }
