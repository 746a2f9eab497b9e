package metrics

import "github.com/prometheus/client_golang/prometheus"

// Strategy engine Prometheus metrics.
var (
	StrategiesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reachout",
			Name:      "strategies_total",
			Help:      "Total number of strategies returned, by type",
		},
		[]string{"type"},
	)

	StageOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reachout",
			Name:      "stage_outcomes_total",
			Help:      "Pathfinding stage outcomes",
		},
		[]string{"stage", "outcome"}, // "hit" / "miss" / "error"
	)

	StrategyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reachout",
			Name:      "strategy_duration_seconds",
			Help:      "Time to produce a strategy, by resulting type",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"type"},
	)

	BatchTargetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reachout",
			Name:      "batch_targets_total",
			Help:      "Batch discovery targets by outcome",
		},
		[]string{"result"}, // "kept" / "filtered" / "invalid"
	)
)

// Semantic similarity metrics.
var (
	SemanticRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reachout",
			Name:      "semantic_requests_total",
			Help:      "Total number of semantic similarity requests",
		},
		[]string{"provider", "status"},
	)

	SemanticRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "reachout",
			Name:      "semantic_request_duration_seconds",
			Help:      "Semantic similarity request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	SemanticErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reachout",
			Name:      "semantic_errors_total",
			Help:      "Total semantic similarity errors",
		},
		[]string{"provider", "error_type"},
	)

	SemanticCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reachout",
			Name:      "semantic_cache_total",
			Help:      "Semantic result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var (
	strategyMetricsRegistered bool
	semanticMetricsRegistered bool
)

// RegisterStrategyMetrics registers strategy engine metrics. Must be called once from main.
func RegisterStrategyMetrics() {
	if strategyMetricsRegistered {
		return
	}
	prometheus.MustRegister(StrategiesTotal)
	prometheus.MustRegister(StageOutcomesTotal)
	prometheus.MustRegister(StrategyDuration)
	prometheus.MustRegister(BatchTargetsTotal)
	strategyMetricsRegistered = true
}

// RegisterSemanticMetrics registers semantic similarity metrics. Must be called once from main.
func RegisterSemanticMetrics() {
	if semanticMetricsRegistered {
		return
	}
	prometheus.MustRegister(SemanticRequestsTotal)
	prometheus.MustRegister(SemanticRequestDuration)
	prometheus.MustRegister(SemanticErrorsTotal)
	prometheus.MustRegister(SemanticCacheTotal)
	semanticMetricsRegistered = true
}
