// Package telemetry reports unexpected errors to Sentry.
//
// Reporting is opt-in. Events are scrubbed before they are sent: user and
// host data are removed, URLs are anonymized and context values whose keys
// name credentials or personal data are dropped.
package telemetry

import (
	"fmt"
	"maps"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
	"github.com/ayushbarthwal/eatsafe/internal/privacy"
)

const defaultFlushTimeout = 2 * time.Second

// Reporter sends EnhancedErrors to Sentry. It implements
// errors.TelemetryReporter. A disabled Reporter is a no-op.
type Reporter struct {
	hub     *sentry.Hub
	enabled bool
	log     logger.Logger
}

type options struct {
	transport sentry.Transport
	log       logger.Logger
}

// Option configures New.
type Option func(*options)

// WithTransport replaces the HTTP transport, for tests.
func WithTransport(t sentry.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// New creates a reporter from settings. release is the application version.
func New(settings *conf.SentrySettings, release string, opts ...Option) (*Reporter, error) {
	o := options{log: logger.Global().Module("telemetry")}
	for _, opt := range opts {
		opt(&o)
	}

	if !settings.Enabled {
		o.log.Info("error telemetry disabled")
		return &Reporter{log: o.log}, nil
	}
	if settings.DSN == "" {
		return nil, errors.Newf("sentry dsn is required when telemetry is enabled").
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	env := settings.Environment
	if env == "" {
		env = "production"
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              settings.DSN,
		Environment:      env,
		Release:          "eatsafe@" + release,
		SampleRate:       settings.SampleRate,
		AttachStacktrace: false,
		ServerName:       "",
		Transport:        o.transport,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return applyPrivacyFilters(event)
		},
	})
	if err != nil {
		return nil, errors.New(fmt.Errorf("sentry initialization failed: %w", err)).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	hub := sentry.NewHub(client, sentry.NewScope())
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetContext("application", sentry.Context{
			"name":    "EatSafe",
			"version": release,
		})
	})

	o.log.Info("error telemetry enabled", logger.String("environment", env))
	return &Reporter{hub: hub, enabled: true, log: o.log}, nil
}

// Install makes r the process-wide reporter for built errors.
func (r *Reporter) Install() {
	if r == nil || !r.enabled {
		errors.SetReporter(nil)
		return
	}
	errors.SetReporter(r)
}

// IsEnabled reports whether events are sent.
func (r *Reporter) IsEnabled() bool {
	return r != nil && r.enabled
}

// ReportError sends ee to Sentry once.
func (r *Reporter) ReportError(ee *errors.EnhancedError) {
	if !r.IsEnabled() || ee == nil || ee.IsReported() {
		return
	}
	ee.MarkReported()

	event := sentry.NewEvent()
	event.Level = sentry.LevelError
	event.Message = privacy.ScrubMessage(ee.Error())
	event.Timestamp = ee.Timestamp
	event.Tags = map[string]string{
		"component": ee.Component,
		"category":  string(ee.Category),
	}
	event.Fingerprint = []string{ee.Component, string(ee.Category), event.Message}
	event.Extra = scrubContext(ee.GetContext())

	r.hub.CaptureEvent(event)
}

// Flush waits for queued events. It returns false on timeout.
func (r *Reporter) Flush(timeout time.Duration) bool {
	if !r.IsEnabled() {
		return true
	}
	if timeout <= 0 {
		timeout = defaultFlushTimeout
	}
	return r.hub.Flush(timeout)
}

// Close flushes and uninstalls the reporter.
func (r *Reporter) Close() {
	if !r.IsEnabled() {
		return
	}
	if !r.Flush(defaultFlushTimeout) {
		r.log.Warn("telemetry flush timed out")
	}
	errors.SetReporter(nil)
}

// scrubContext drops sensitive keys and scrubs string values.
func scrubContext(ctx map[string]any) map[string]any {
	out := make(map[string]any, len(ctx))
	for k, v := range ctx {
		if privacy.IsSensitiveKey(k) {
			continue
		}
		if s, ok := v.(string); ok {
			v = privacy.ScrubMessage(s)
		}
		out[k] = v
	}
	return out
}

// applyPrivacyFilters removes host and user data from an outgoing event.
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""
	event.Request = nil

	for _, key := range []string{"device", "os", "runtime"} {
		delete(event.Contexts, key)
	}
	delete(event.Tags, "server_name")
	delete(event.Tags, "hostname")

	event.Message = privacy.ScrubMessage(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = privacy.ScrubMessage(event.Exception[i].Value)
	}
	maps.DeleteFunc(event.Extra, func(k string, _ any) bool {
		return privacy.IsSensitiveKey(k)
	})
	return event
}
