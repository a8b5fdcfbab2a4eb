package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Mutations counts finished cache mutations per resource and outcome.
	Mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pwsi_cache_mutations_total",
			Help: "Cache mutations by resource and outcome.",
		},
		[]string{"resource", "outcome"},
	)

	// LockWait observes how long a writer waited for a resource lock.
	LockWait = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pwsi_cache_lock_wait_seconds",
			Help:    "Time spent waiting for a resource lock.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
		[]string{"resource"},
	)

	// Records reports the number of cached records per resource.
	Records = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pwsi_cache_records",
			Help: "Records currently held in the cache.",
		},
		[]string{"resource"},
	)

	// Lookups counts outbound enrichment calls per service and outcome.
	Lookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pwsi_enrich_lookups_total",
			Help: "Enrichment lookups by service and outcome.",
		},
		[]string{"service", "outcome"},
	)

	// Requests counts served HTTP requests by method and status code.
	Requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pwsi_http_requests_total",
			Help: "HTTP requests by method and status.",
		},
		[]string{"method", "status"},
	)
)

func init() {
	prometheus.MustRegister(Mutations)
	prometheus.MustRegister(LockWait)
	prometheus.MustRegister(Records)
	prometheus.MustRegister(Lookups)
	prometheus.MustRegister(Requests)
}

// Outcome labels.
const (
	OK       = "ok"
	Failed   = "failed"
	Canceled = "canceled"
	Empty    = "empty"
)
