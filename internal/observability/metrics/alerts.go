package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AlertMetrics tracks contamination alert deliveries per notifier.
type AlertMetrics struct {
	alertsTotal *prometheus.CounterVec

	collectors []prometheus.Collector
}

// NewAlertMetrics creates and registers alert metrics
func NewAlertMetrics(registry prometheus.Registerer) (*AlertMetrics, error) {
	m := &AlertMetrics{}
	m.alertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "alerts_total",
			Help:      "Total number of alert deliveries by notifier and status",
		},
		[]string{"notifier", "status"},
	)
	m.collectors = []prometheus.Collector{m.alertsTotal}

	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements the Collector interface
func (m *AlertMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *AlertMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordDelivery records one notifier delivery attempt.
func (m *AlertMetrics) RecordDelivery(notifier string, err error) {
	if m == nil {
		return
	}
	m.alertsTotal.WithLabelValues(notifier, statusFor(err)).Inc()
}
