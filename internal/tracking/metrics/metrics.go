package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CountriesTracked  prometheus.Gauge
	StaysRecorded     prometheus.Counter
	Resets            prometheus.Counter
	Evaluations       prometheus.Counter
	EvaluationSeconds prometheus.Histogram
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		CountriesTracked: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "stayledger_countries_tracked",
			Help: "Current number of tracked countries",
		}),
		StaysRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stayledger_stays_recorded_total",
			Help: "Total number of stay intervals recorded",
		}),
		Resets: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stayledger_country_resets_total",
			Help: "Total number of explicit country resets",
		}),
		Evaluations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stayledger_evaluations_total",
			Help: "Total number of count evaluations performed",
		}),
		EvaluationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "stayledger_evaluation_duration_seconds",
			Help:    "Latency of a full count evaluation",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stayledger_result_cache_hits_total",
			Help: "Count results served from the derived-result cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stayledger_result_cache_misses_total",
			Help: "Count results recomputed after a cache miss",
		}),
	}
}

func (m *Metrics) ObserveEvaluation(seconds float64) {
	if m == nil {
		return
	}
	m.Evaluations.Inc()
	m.EvaluationSeconds.Observe(seconds)
}
