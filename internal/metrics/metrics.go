// Package metrics exposes Prometheus collectors for the Corex proxy.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RegistrationsTotal counts URLs registered through the register endpoint
	RegistrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "corex_registrations_total",
		Help: "Total number of URLs registered and masked",
	})

	// MaskedLeavesTotal counts string leaves masked by the JSON walker
	MaskedLeavesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "corex_masked_leaves_total",
		Help: "Total number of URL leaves masked during JSON traversal",
	})

	// StreamRequestsTotal counts stream resolutions by outcome
	StreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corex_stream_requests_total",
		Help: "Total number of stream requests by outcome",
	}, []string{"outcome"}) // "ok", "not_found", "upstream_error", "store_error"

	// StreamBytesTotal counts bytes relayed from upstream to clients
	StreamBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "corex_stream_bytes_total",
		Help: "Total number of body bytes relayed to clients",
	})

	// MappingStoreSize tracks the size of the mapping store
	MappingStoreSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "corex_mapping_store_size",
		Help: "Current number of identifier mappings stored",
	})

	// UpstreamDuration tracks time to first upstream response header
	UpstreamDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "corex_upstream_duration_seconds",
		Help:    "Time until the upstream response headers arrive",
		Buckets: prometheus.DefBuckets,
	})
)

// RecordStreamOutcome records the outcome of a stream resolution.
func RecordStreamOutcome(outcome string) {
	StreamRequestsTotal.WithLabelValues(outcome).Inc()
}

// RecordStreamBytes records bytes relayed to a client.
func RecordStreamBytes(n int64) {
	StreamBytesTotal.Add(float64(n))
}
