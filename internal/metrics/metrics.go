// Package metrics exposes Prometheus counters for certificate generation and delivery.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	// generatedTotal counts certificate renders.
	// Labels:
	// - result: success | failure
	generatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "certmail",
			Subsystem: "certificates",
			Name:      "generated_total",
			Help:      "Certificate documents rendered, by result.",
		},
		[]string{"result"},
	)

	// deliveredTotal counts delivery attempts.
	// Labels:
	// - result: success | failure
	deliveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "certmail",
			Subsystem: "certificates",
			Name:      "delivered_total",
			Help:      "Certificate emails sent, by result.",
		},
		[]string{"result"},
	)

	// batchRecordsTotal counts batch records by final state.
	// Labels:
	// - result: success | failure
	batchRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "certmail",
			Subsystem: "batch",
			Name:      "records_total",
			Help:      "Batch records processed, by result.",
		},
		[]string{"result"},
	)

	renderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "certmail",
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Time spent rendering one certificate to PDF.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)
)

func result(ok bool) string {
	if ok {
		return ResultSuccess
	}
	return ResultFailure
}

// IncGenerated increments the generation counter.
func IncGenerated(ok bool) {
	generatedTotal.WithLabelValues(result(ok)).Inc()
}

// IncDelivered increments the delivery counter.
func IncDelivered(ok bool) {
	deliveredTotal.WithLabelValues(result(ok)).Inc()
}

// IncBatchRecord increments the batch record counter.
func IncBatchRecord(ok bool) {
	batchRecordsTotal.WithLabelValues(result(ok)).Inc()
}

// ObserveRender records how long one render took.
func ObserveRender(d time.Duration) {
	renderDuration.Observe(d.Seconds())
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
