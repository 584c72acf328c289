package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// UpstreamCallsTotal counts calls to external services by outcome kind.
	UpstreamCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rural_health",
		Subsystem: "upstream",
		Name:      "calls_total",
		Help:      "Total number of calls to external services, labeled by service and result.",
	}, []string{"service", "result"})

	// UpstreamCallDurationSeconds is the wall time of one upstream call.
	UpstreamCallDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rural_health",
		Subsystem: "upstream",
		Name:      "call_duration_seconds",
		Help:      "Duration of calls to external services.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"service"})

	// FallbacksTotal counts pipeline stages that degraded to a fallback value.
	FallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rural_health",
		Subsystem: "pipeline",
		Name:      "fallbacks_total",
		Help:      "Total number of pipeline stages that returned a fallback value instead of an upstream result.",
	}, []string{"stage"})
)

// Register registers the metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			UpstreamCallsTotal,
			UpstreamCallDurationSeconds,
			FallbacksTotal,
		)
	})
}

// ObserveCall records one upstream call. result is "ok" or an error kind.
func ObserveCall(service, result string, started time.Time) {
	UpstreamCallsTotal.WithLabelValues(service, result).Inc()
	UpstreamCallDurationSeconds.WithLabelValues(service).Observe(time.Since(started).Seconds())
}

func Fallback(stage string) {
	FallbacksTotal.WithLabelValues(stage).Inc()
}
