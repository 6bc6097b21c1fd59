package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	LookupsProcessed *prometheus.CounterVec
	APIErrors        *prometheus.CounterVec
	RequestSeconds   *prometheus.HistogramVec
	ThrottleSeconds  prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		LookupsProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "brolly_lookups_processed_total",
			Help: "Total number of processed geocoding lookups.",
		}, []string{"status"}),
		APIErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "brolly_upstream_api_errors_total",
			Help: "Total number of errors received from upstream APIs.",
		}, []string{"upstream"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "brolly_upstream_request_duration_seconds",
			Help:    "Duration of requests to upstream APIs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"upstream"}),
		ThrottleSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "brolly_throttle_wait_duration_seconds",
			Help:    "Time spent waiting on the fixed-interval lookup throttle.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
