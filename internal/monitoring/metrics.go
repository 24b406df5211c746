// Package monitoring exposes Prometheus metrics for the analytics core.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	simulationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vega_simulations_total",
			Help: "Total simulator invocations by outcome",
		},
		[]string{"result"},
	)

	cacheOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vega_sim_cache_ops_total",
			Help: "Simulation cache lookups by outcome",
		},
		[]string{"result"},
	)

	iterationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vega_optimizer_iteration_seconds",
			Help:    "Duration of individual grid-search iterations",
			Buckets: prometheus.DefBuckets,
		},
	)

	opportunitiesEmitted = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vega_opportunities_emitted",
			Help: "Opportunities emitted for the most recent classification",
		},
		[]string{"regime"},
	)
)

func init() {
	prometheus.MustRegister(simulationsTotal)
	prometheus.MustRegister(cacheOpsTotal)
	prometheus.MustRegister(iterationDuration)
	prometheus.MustRegister(opportunitiesEmitted)
}

// Handler serves the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordSimulation records one simulator invocation.
func RecordSimulation(ok bool) {
	result := "success"
	if !ok {
		result = "error"
	}
	simulationsTotal.WithLabelValues(result).Inc()
}

// RecordCacheHit records a simulation cache hit.
func RecordCacheHit() {
	cacheOpsTotal.WithLabelValues("hit").Inc()
}

// RecordCacheMiss records a simulation cache miss.
func RecordCacheMiss() {
	cacheOpsTotal.WithLabelValues("miss").Inc()
}

// ObserveIteration records the duration of one grid-search iteration.
func ObserveIteration(d time.Duration) {
	iterationDuration.Observe(d.Seconds())
}

// RecordOpportunities records the emitted opportunity count per regime.
func RecordOpportunities(regime string, count int) {
	opportunitiesEmitted.WithLabelValues(regime).Set(float64(count))
}
