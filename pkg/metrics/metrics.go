package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Application collectors. Registered on the default registry, served by
// PrometheusServer.
//
//nolint:gochecknoglobals
var (
	ChatRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zoektrends",
		Subsystem: "columbus",
		Name:      "chat_requests_total",
		Help:      "Chat requests handled, labelled by outcome.",
	}, []string{"outcome"})

	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "zoektrends",
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Duration of upstream HTTP calls.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"upstream", "status"})

	CacheOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zoektrends",
		Subsystem: "cache",
		Name:      "operations_total",
		Help:      "Cache lookups, labelled hit or miss.",
	}, []string{"cache", "result"})

	JobTriggersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zoektrends",
		Subsystem: "scraper",
		Name:      "job_triggers_total",
		Help:      "Scraper job triggers, labelled by job type and outcome.",
	}, []string{"job_type", "outcome"})
)
