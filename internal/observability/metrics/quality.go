package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// QualityMetrics counts quality tests and shelf-life predictions.
type QualityMetrics struct {
	qualityTestsTotal *prometheus.CounterVec
	predictionsTotal  *prometheus.CounterVec
	predictedCFU      prometheus.Histogram

	collectors []prometheus.Collector
}

// NewQualityMetrics creates and registers quality metrics
func NewQualityMetrics(registry prometheus.Registerer) (*QualityMetrics, error) {
	m := &QualityMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *QualityMetrics) initMetrics() {
	m.qualityTestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "quality_tests_total",
			Help:      "Total number of stored quality tests by verdict",
		},
		[]string{"result"}, // result: Pass, Fail
	)

	m.predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "predictions_total",
			Help:      "Total number of contamination forecasts by risk label",
		},
		[]string{"risk"},
	)

	m.predictedCFU = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "predicted_cfu",
		Help:      "Distribution of forecast CFU counts",
		Buckets:   []float64{50, 100, 250, 500, 750, 1000, 2000, 5000},
	})

	m.collectors = []prometheus.Collector{
		m.qualityTestsTotal,
		m.predictionsTotal,
		m.predictedCFU,
	}
}

// Describe implements the Collector interface
func (m *QualityMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *QualityMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordQualityTest counts a stored quality test.
func (m *QualityMetrics) RecordQualityTest(result string) {
	if m == nil {
		return
	}
	m.qualityTestsTotal.WithLabelValues(result).Inc()
}

// RecordPrediction counts a forecast and observes its CFU.
func (m *QualityMetrics) RecordPrediction(risk string, cfu int) {
	if m == nil {
		return
	}
	m.predictionsTotal.WithLabelValues(risk).Inc()
	m.predictedCFU.Observe(float64(cfu))
}
