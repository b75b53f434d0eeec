// Package prometheus implements metrics.Recorder with Prometheus
// collectors.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jmgilman/go/scopedfs/errors"
	"github.com/jmgilman/go/scopedfs/metrics"
)

const namespace = "scopedfs"

type recorder struct {
	operationsTotal    *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	permissionRequests *prometheus.CounterVec
}

// NewRecorder registers the scopedfs collectors with reg. A nil reg
// disables metrics and returns the no-op recorder.
func NewRecorder(reg prometheus.Registerer) metrics.Recorder {
	if reg == nil {
		return metrics.NewNoop()
	}

	return &recorder{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of storage operations by strategy, operation and status",
			},
			[]string{"strategy", "operation", "status", "error_code"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of storage operations in seconds",
				Buckets: []float64{
					0.001, // 1ms
					0.01,  // 10ms
					0.1,   // 100ms
					1,     // 1s
					10,    // 10s
				},
			},
			[]string{"strategy", "operation"},
		),
		permissionRequests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "permission_requests_total",
				Help:      "Total number of permission requests by strategy and status",
			},
			[]string{"strategy", "status"},
		),
	}
}

func (r *recorder) RecordOperation(strategy, operation string, duration time.Duration, err error) {
	status, code := outcome(err)
	r.operationsTotal.WithLabelValues(strategy, operation, status, code).Inc()
	r.operationDuration.WithLabelValues(strategy, operation).Observe(duration.Seconds())
}

func (r *recorder) RecordPermissionRequest(strategy string, err error) {
	status, _ := outcome(err)
	r.permissionRequests.WithLabelValues(strategy, status).Inc()
}

func outcome(err error) (status, code string) {
	if err == nil {
		return "success", ""
	}
	return "error", string(errors.GetCode(err))
}
