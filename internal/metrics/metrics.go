package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ebiblio_searches_total",
		Help: "Total number of search requests by classified mode",
	}, []string{"mode"})

	SearchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ebiblio_search_duration_seconds",
		Help:    "Duration of one search round trip in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	BackendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ebiblio_backend_requests_total",
		Help: "Total number of requests to the hosted backend",
	}, []string{"op", "status"})

	StaleResultsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ebiblio_stale_results_dropped_total",
		Help: "Fetch results discarded because a newer query superseded them",
	})

	TabSwitchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ebiblio_tab_switches_total",
		Help: "Automatic tab switches triggered by query classification",
	}, []string{"tab"})
)
