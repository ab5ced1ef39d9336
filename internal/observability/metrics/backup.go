package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BackupMetrics tracks backup runs per target.
type BackupMetrics struct {
	backupsTotal       *prometheus.CounterVec
	backupDuration     *prometheus.HistogramVec
	backupSizeBytes    prometheus.Histogram
	lastSuccessSeconds *prometheus.GaugeVec

	collectors []prometheus.Collector
}

// NewBackupMetrics creates and registers backup metrics
func NewBackupMetrics(registry prometheus.Registerer) (*BackupMetrics, error) {
	m := &BackupMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *BackupMetrics) initMetrics() {
	m.backupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "backups_total",
			Help:      "Total number of backup uploads by target and status",
		},
		[]string{"target", "status"},
	)

	m.backupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "backup_duration_seconds",
			Help:      "Time taken to store a backup archive on a target",
			Buckets:   prometheus.ExponentialBuckets(BucketStart100ms, BucketFactor2, BucketCount12), // 100ms to ~3m
		},
		[]string{"target"},
	)

	m.backupSizeBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "backup_size_bytes",
		Help:      "Size of backup archives",
		Buckets:   prometheus.ExponentialBuckets(BucketStart1KB, BucketFactor4, BucketCount10), // 1KB to ~256MB
	})

	m.lastSuccessSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "backup_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful backup per target",
		},
		[]string{"target"},
	)

	m.collectors = []prometheus.Collector{
		m.backupsTotal,
		m.backupDuration,
		m.backupSizeBytes,
		m.lastSuccessSeconds,
	}
}

// Describe implements the Collector interface
func (m *BackupMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *BackupMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordArchive observes the size of a freshly built archive.
func (m *BackupMetrics) RecordArchive(sizeBytes int64) {
	if m == nil {
		return
	}
	m.backupSizeBytes.Observe(float64(sizeBytes))
}

// RecordUpload records the outcome of storing an archive on one target.
func (m *BackupMetrics) RecordUpload(target string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.backupsTotal.WithLabelValues(target, statusFor(err)).Inc()
	m.backupDuration.WithLabelValues(target).Observe(duration.Seconds())
	if err == nil {
		m.lastSuccessSeconds.WithLabelValues(target).SetToCurrentTime()
	}
}
