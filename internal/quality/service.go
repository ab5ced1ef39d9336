// Package quality runs quality tests and contamination forecasts against the
// store and builds the reports and dashboards derived from them.
package quality

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/ayushbarthwal/eatsafe/internal/alerts"
	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/datastore/repository"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
	"github.com/ayushbarthwal/eatsafe/internal/observability/metrics"
	"github.com/ayushbarthwal/eatsafe/internal/safety"
	"github.com/ayushbarthwal/eatsafe/internal/sensor"
)

// DefaultCacheTTL applies when no dashboard TTL is configured.
const DefaultCacheTTL = 30 * time.Second

// Cache keys.
const (
	cacheKeyOverview    = "dashboard_overview"
	cacheKeyCharts      = "dashboard_charts"
	cacheKeyPerformance = "supplier_performance"
)

// AlertSink receives alerts for stored measurements. *alerts.Dispatcher
// implements it.
type AlertSink interface {
	Notify(a alerts.Alert) bool
}

// Service implements the quality operations. It is safe for concurrent use.
type Service struct {
	repos   *repository.Repositories
	source  safety.ReadingSource
	alerts  AlertSink
	metrics *metrics.QualityMetrics
	cache   *cache.Cache
	log     logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithAlerts sends alerts for stored tests and predictions to sink.
func WithAlerts(sink AlertSink) Option {
	return func(s *Service) { s.alerts = sink }
}

// WithMetrics records tests and predictions in m.
func WithMetrics(m *metrics.QualityMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithCacheTTL sets how long dashboards and supplier performance are cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cache = cache.New(ttl, 2*ttl)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService creates a service reading synthesized values from source.
func NewService(repos *repository.Repositories, source safety.ReadingSource, opts ...Option) *Service {
	s := &Service{
		repos:  repos,
		source: source,
		cache:  cache.New(DefaultCacheTTL, 2*DefaultCacheTTL),
		log:    logger.Global().Module("quality"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewReadingSource returns the reading source selected in settings.
func NewReadingSource(settings *conf.QualitySettings, log logger.Logger) (safety.ReadingSource, error) {
	var random *safety.RandomSource
	if settings.RandomSeed != 0 {
		random = safety.NewSeededRandomSource(settings.RandomSeed)
	} else {
		random = safety.NewRandomSource(nil)
	}

	switch settings.ReadingSource {
	case conf.ReadingSourceRandom, "":
		return random, nil
	case conf.ReadingSourceHTTP:
		src, err := sensor.NewHTTPSource(settings.Sensor.URL, settings.Sensor.Timeout, random, sensor.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	return nil, errors.Newf("unknown reading source %q", settings.ReadingSource).
		Component("quality").
		Category(errors.CategoryConfiguration).
		Build()
}

// InvalidateCache drops cached dashboards and supplier performance. Callers
// that change food items, suppliers or batches call it after the write.
func (s *Service) InvalidateCache() {
	s.cache.Flush()
}

// notify forwards a to the alert sink when one is configured.
func (s *Service) notify(a alerts.Alert) {
	if s.alerts == nil {
		return
	}
	if s.alerts.Notify(a) {
		s.log.Info("alert queued",
			logger.String("kind", string(a.Kind)),
			logger.Int("cfu", a.CFU),
			logger.String("risk", a.Risk.String()))
	}
}

// cached returns the value under key or computes and stores it.
func cached[T any](s *Service, key string, compute func() (T, error)) (T, error) {
	if v, found := s.cache.Get(key); found {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err := compute()
	if err != nil {
		return v, err
	}
	s.cache.Set(key, v, cache.DefaultExpiration)
	return v, nil
}
