package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all client-side metrics
type Metrics struct {
	// API client metrics
	APIRequests *prometheus.CounterVec
	APILatency  *prometheus.HistogramVec

	// Store metrics
	RefreshCycles     *prometheus.CounterVec
	AlertsSynthesized prometheus.Counter
}

// New creates all metrics under the given namespace. Collectors are not
// registered; call Register with the registry the host application uses.
func New(namespace string) *Metrics {
	return &Metrics{
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of front desk API requests",
		}, []string{"endpoint", "status"}),
		APILatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Duration of front desk API requests",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"endpoint"}),
		RefreshCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_cycles_total",
			Help:      "Total number of background refresh cycles per collection",
		}, []string{"collection", "status"}),
		AlertsSynthesized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_synthesized_total",
			Help:      "Total number of alerts created locally from status transitions",
		}),
	}
}

// Register registers every collector with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.APIRequests,
		m.APILatency,
		m.RefreshCycles,
		m.AlertsSynthesized,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
