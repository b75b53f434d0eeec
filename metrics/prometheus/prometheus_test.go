package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/go/scopedfs/errors"
	"github.com/jmgilman/go/scopedfs/metrics"
)

// counter returns the value of the counter family name whose labels
// include every pair in labels.
func counter(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			got := make(map[string]string)
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			match := true
			for k, v := range labels {
				if got[k] != v {
					match = false
				}
			}
			if match {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

func TestRecordOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)

	rec.RecordOperation("document", "read", 5*time.Millisecond, nil)
	rec.RecordOperation("document", "read", time.Millisecond, nil)
	rec.RecordOperation("document", "read", time.Millisecond, errors.New(errors.CodeNotFound, "missing"))

	assert.Equal(t, 2.0, counter(t, reg, "scopedfs_operations_total",
		map[string]string{"strategy": "document", "operation": "read", "status": "success"}))
	assert.Equal(t, 1.0, counter(t, reg, "scopedfs_operations_total",
		map[string]string{"status": "error", "error_code": string(errors.CodeNotFound)}))

	families, err := reg.Gather()
	require.NoError(t, err)
	var samples uint64
	for _, mf := range families {
		if mf.GetName() == "scopedfs_operation_duration_seconds" {
			for _, m := range mf.GetMetric() {
				samples += m.GetHistogram().GetSampleCount()
			}
		}
	}
	assert.Equal(t, uint64(3), samples)
}

func TestRecordPermissionRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)

	rec.RecordPermissionRequest("command", nil)
	rec.RecordPermissionRequest("command", errors.New(errors.CodeUnavailable, "service down"))

	assert.Equal(t, 1.0, counter(t, reg, "scopedfs_permission_requests_total",
		map[string]string{"strategy": "command", "status": "success"}))
	assert.Equal(t, 1.0, counter(t, reg, "scopedfs_permission_requests_total",
		map[string]string{"strategy": "command", "status": "error"}))
}

func TestNilRegistryIsNoop(t *testing.T) {
	assert.Equal(t, metrics.NewNoop(), NewRecorder(nil))
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRecorder(reg)
	assert.Panics(t, func() { NewRecorder(reg) })
}
