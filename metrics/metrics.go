// Package metrics defines the instrumentation hooks of the storage
// strategies.
//
// Metrics are optional. Components accept a Recorder and fall back to the
// no-op implementation when none is given, so uninstrumented use carries
// no overhead:
//
//	rec := prometheus.NewRecorder(registry)
//	sel, err := strategy.New(strategy.WithMetrics(rec))
package metrics

import (
	"time"
)

// Recorder receives one observation per storage operation.
type Recorder interface {
	// RecordOperation records a completed operation of the named strategy.
	// err is nil on success.
	RecordOperation(strategy, operation string, duration time.Duration, err error)

	// RecordPermissionRequest records a permission request issued through
	// the strategy.
	RecordPermissionRequest(strategy string, err error)
}

// NewNoop returns a Recorder that discards everything.
func NewNoop() Recorder {
	return noop{}
}

type noop struct{}

func (noop) RecordOperation(string, string, time.Duration, error) {}
func (noop) RecordPermissionRequest(string, error)                {}
