package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the capture pipeline.
type Metrics struct {
	ItemsTotal    *prometheus.CounterVec
	AttemptsTotal *prometheus.CounterVec
	ErrorsTotal   *prometheus.CounterVec
	BatchProgress prometheus.Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		ItemsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "capture_items_processed_total",
			Help: "The total number of work items processed",
		}, []string{"result"}), // 'success' or 'failure'
		AttemptsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "capture_attempts_total",
			Help: "The total number of navigation attempts by outcome",
		}, []string{"outcome"}),
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "capture_errors_total",
			Help: "The total number of errors encountered",
		}, []string{"type"}), // e.g., 'db_save_failed', 'manifest_write_failed'
		BatchProgress: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "capture_batch_progress",
			Help: "Items processed so far in the current batch",
		}),
	}
}

func (m *Metrics) IncItem(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	m.ItemsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) IncAttempt(outcome string) {
	m.AttemptsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncErrorsTotal(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
