// Package fstest provides a conformance test suite for validating storage
// backends against the core.FileSystem contract.
//
// Every backend runs the same suite, so a call behaves the same whichever
// strategy the selector picked. Backends differ only in how they reach the
// storage, never in the result shape.
//
// Example usage:
//
//	func TestMyBackend(t *testing.T) {
//	    fstest.TestSuite(t, func(t *testing.T) (core.Strategy, string) {
//	        dir := t.TempDir()
//	        return mybackend.New(dir), dir
//	    })
//	}
package fstest

import (
	"testing"

	"github.com/jmgilman/go/scopedfs/fs/core"
)

// DefaultLargeSize is the payload size of the large round-trip tests.
const DefaultLargeSize = 3 << 20

// Factory returns a fresh strategy and an empty directory, reachable
// through it, under which the tests create their files.
type Factory func(t *testing.T) (core.Strategy, string)

// Config configures the test suite to match backend characteristics.
type Config struct {
	// LargeSize is the size of the multi-megabyte payload. Zero selects
	// DefaultLargeSize.
	LargeSize int

	// SkipTests lists test groups or subtests to skip.
	// Format: "Group" or "Group/SubTest" (e.g., "ReadWrite/LargeBytes").
	SkipTests []string
}

// DefaultConfig returns the configuration every backend should pass.
func DefaultConfig() Config {
	return Config{LargeSize: DefaultLargeSize}
}

// TestSuite runs all conformance tests with DefaultConfig.
func TestSuite(t *testing.T, newFS Factory) {
	TestSuiteWithConfig(t, newFS, DefaultConfig())
}

// TestSuiteWithConfig runs all conformance tests with behavior configuration.
func TestSuiteWithConfig(t *testing.T, newFS Factory, config Config) {
	if config.LargeSize == 0 {
		config.LargeSize = DefaultLargeSize
	}

	groups := []struct {
		name string
		run  func(*testing.T, core.Strategy, string, Config)
	}{
		{"ReadWrite", TestReadWriteWithConfig},
		{"Manage", TestManageWithConfig},
		{"List", TestListWithConfig},
		{"CopyMove", TestCopyMoveWithConfig},
	}

	for _, g := range groups {
		t.Run(g.name, func(t *testing.T) {
			if config.skip(g.name) {
				t.Skip("Skipped by backend configuration")
				return
			}
			s, root := newFS(t)
			g.run(t, s, root, config)
		})
	}
}

func (c Config) skip(name string) bool {
	for _, s := range c.SkipTests {
		if s == name {
			return true
		}
	}
	return false
}

// run executes fn as subtest group/name unless it is skipped.
func (c Config) run(t *testing.T, group, name string, fn func(t *testing.T)) {
	t.Run(name, func(t *testing.T) {
		if c.skip(group + "/" + name) {
			t.Skip("Skipped by backend configuration")
			return
		}
		fn(t)
	})
}
