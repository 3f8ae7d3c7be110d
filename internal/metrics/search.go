package metrics

import "github.com/prometheus/client_golang/prometheus"

// Place search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "placesearch",
			Name:      "search_requests_total",
			Help:      "Total number of place searches",
		},
		[]string{"kind", "outcome"}, // outcome: ok / invalid / upstream / error
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "placesearch",
			Name:      "search_duration_seconds",
			Help:      "Place search duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"kind"},
	)

	SearchResultsCount = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "placesearch",
			Name:      "search_results_count",
			Help:      "Number of places returned per search",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
		[]string{"kind"},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "placesearch",
			Name:      "search_cache_total",
			Help:      "Search result cache lookups",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)

	RecommenderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "placesearch",
			Name:      "recommender_requests_total",
			Help:      "Total number of recommender requests",
		},
		[]string{"driver", "status"},
	)

	RecommenderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "placesearch",
			Name:      "recommender_request_duration_seconds",
			Help:      "Recommender request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"driver"},
	)

	RecommenderFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "placesearch",
			Name:      "recommender_category_fallback_total",
			Help:      "Free-text searches answered through the recommender category hint",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResultsCount)
	prometheus.MustRegister(SearchCacheTotal)
	prometheus.MustRegister(RecommenderRequestsTotal)
	prometheus.MustRegister(RecommenderRequestDuration)
	prometheus.MustRegister(RecommenderFallbackTotal)
	searchMetricsRegistered = true
}
