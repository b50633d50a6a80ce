// Package metrics exposes Prometheus counters for transfers and acquisitions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"climate/pkg/transfer"
)

var (
	transfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "climate",
		Subsystem: "transfer",
		Name:      "requests_total",
		Help:      "Transfers finished, by batch kind and outcome",
	}, []string{"kind", "outcome"})

	transferDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "climate",
		Subsystem: "transfer",
		Name:      "duration_seconds",
		Help:      "Transfer latency in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"kind"})

	transferBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "climate",
		Subsystem: "transfer",
		Name:      "bytes_total",
		Help:      "Bytes appended to sinks",
	}, []string{"kind"})

	acquisitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "climate",
		Subsystem: "acquisition",
		Name:      "runs_total",
		Help:      "Acquisitions run, by outcome",
	}, []string{"outcome"})

	matchedPixels = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "climate",
		Subsystem: "acquisition",
		Name:      "matched_pixels",
		Help:      "Thermal pixels correlated per acquisition",
		Buckets:   prometheus.LinearBuckets(0, 20, 8),
	})
)

// TransferObserver returns a transfer.Options.Observe hook labelled with kind.
func TransferObserver(kind string) func(transfer.Outcome) {
	return func(o transfer.Outcome) {
		outcome := "ok"
		if !o.OK() {
			outcome = "failed"
		}
		transfersTotal.WithLabelValues(kind, outcome).Inc()
		transferDuration.WithLabelValues(kind).Observe(o.Duration.Seconds())
		transferBytes.WithLabelValues(kind).Add(float64(o.Bytes))
	}
}

// Acquisition records the outcome of one run. outcome is a short label such
// as "ok", "unknown_location" or "failed".
func Acquisition(outcome string, matched int) {
	acquisitionsTotal.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		matchedPixels.Observe(float64(matched))
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
