package alerts

import (
	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
	"github.com/ayushbarthwal/eatsafe/internal/observability/metrics"
	"github.com/ayushbarthwal/eatsafe/internal/safety"
)

// NewFromSettings builds the notifiers enabled in settings and starts a
// dispatcher for them. It returns a nil dispatcher when no notifier is
// enabled; a nil *Dispatcher ignores Notify and Close.
func NewFromSettings(settings *conf.AlertSettings, m *metrics.AlertMetrics, log logger.Logger) (*Dispatcher, error) {
	minRisk := safety.HighRisk
	if settings.MinRisk != "" {
		parsed, err := safety.ParseRiskLabel(settings.MinRisk)
		if err != nil {
			return nil, errors.New(err).
				Component("alerts").
				Category(errors.CategoryConfiguration).
				Context("setting", "alerts.minrisk").
				Build()
		}
		minRisk = parsed
	}

	var notifiers []Notifier
	if settings.MQTT.Enabled {
		n, err := NewMQTTNotifier(&settings.MQTT, log)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, n)
	}
	if settings.Shoutrrr.Enabled {
		n, err := NewShoutrrrNotifier(&settings.Shoutrrr)
		if err != nil {
			for _, prev := range notifiers {
				_ = prev.Close()
			}
			return nil, err
		}
		notifiers = append(notifiers, n)
	}

	if len(notifiers) == 0 {
		log.Info("no alert notifiers enabled")
		return nil, nil
	}

	log.Info("alert dispatcher started",
		logger.Int("notifiers", len(notifiers)),
		logger.String("min_risk", minRisk.String()))
	return NewDispatcher(minRisk, notifiers,
		WithDispatcherLogger(log),
		WithMetrics(m),
		WithSendTimeout(settings.Shoutrrr.Timeout),
	), nil
}
