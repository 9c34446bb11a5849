package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// Registry holds the engine collectors; callers expose or dump it.
	Registry = prometheus.NewRegistry()

	Evaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signal_engine",
			Subsystem: "engine",
			Name:      "evaluations_total",
			Help:      "Completed evaluations by resulting action",
		},
		[]string{"action"},
	)

	EvaluationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signal_engine",
			Subsystem: "engine",
			Name:      "evaluation_errors_total",
			Help:      "Evaluations that returned an error",
		},
		[]string{"reason"},
	)

	AnalyzerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signal_engine",
			Subsystem: "analyzer",
			Name:      "failures_total",
			Help:      "Analyzer results dropped from synthesis",
		},
		[]string{"analyzer"},
	)

	EvaluationLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "signal_engine",
			Subsystem: "engine",
			Name:      "evaluation_duration_seconds",
			Help:      "Wall time of a full evaluation",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		},
	)

	RiskScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "signal_engine",
			Subsystem: "risk",
			Name:      "score",
			Help:      "Last risk score by symbol",
		},
		[]string{"symbol"},
	)
)

func Register() {
	once.Do(func() {
		Registry.MustRegister(Evaluations, EvaluationErrors, AnalyzerFailures, EvaluationLatency, RiskScore)
	})
}
