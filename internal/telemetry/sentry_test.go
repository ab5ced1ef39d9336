package telemetry

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
)

const testDSN = "https://public@sentry.example.com/1"

// recordingTransport keeps sent events in memory.
type recordingTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (t *recordingTransport) Configure(sentry.ClientOptions) {} //nolint:gocritic // interface signature

func (t *recordingTransport) SendEvent(e *sentry.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, e)
}

func (t *recordingTransport) Flush(time.Duration) bool { return true }

func (t *recordingTransport) FlushWithContext(context.Context) bool { return true }

func (t *recordingTransport) Close() {}

func (t *recordingTransport) Events() []*sentry.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*sentry.Event(nil), t.events...)
}

func newTestReporter(t *testing.T) (*Reporter, *recordingTransport) {
	t.Helper()
	transport := &recordingTransport{}
	r, err := New(&conf.SentrySettings{Enabled: true, DSN: testDSN, Environment: "test"}, "1.0.0",
		WithTransport(transport), WithLogger(logger.NewDiscardLogger()))
	require.NoError(t, err)
	require.True(t, r.IsEnabled())
	return r, transport
}

func TestDisabledReporter(t *testing.T) {
	r, err := New(&conf.SentrySettings{}, "1.0.0", WithLogger(logger.NewDiscardLogger()))
	require.NoError(t, err)
	assert.False(t, r.IsEnabled())
	assert.True(t, r.Flush(time.Millisecond))

	// No-ops on a disabled reporter.
	r.ReportError(errors.Newf("boom").Build())
	r.Close()

	var nilReporter *Reporter
	assert.False(t, nilReporter.IsEnabled())
}

func TestEnabledRequiresDSN(t *testing.T) {
	_, err := New(&conf.SentrySettings{Enabled: true}, "1.0.0", WithLogger(logger.NewDiscardLogger()))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestReportErrorScrubsEvent(t *testing.T) {
	r, transport := newTestReporter(t)

	ee := &errors.EnhancedError{
		Err:       fmt.Errorf("publish to mqtt://user:pw@broker.example.com:1883 failed"),
		Component: "alerts",
		Category:  errors.CategoryNotification,
		Context: map[string]any{
			"notifier":      "mqtt",
			"mqtt_password": "pw",
			"url":           "http://10.0.0.5/feed",
		},
		Timestamp: time.Now(),
	}
	r.ReportError(ee)
	assert.True(t, ee.IsReported())

	// A reported error is sent once.
	r.ReportError(ee)

	events := transport.Events()
	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, sentry.LevelError, e.Level)
	assert.NotContains(t, e.Message, "pw@broker")
	assert.Contains(t, e.Message, "mqtt://")
	assert.Equal(t, "alerts", e.Tags["component"])
	assert.Equal(t, "notification", e.Tags["category"])
	assert.Equal(t, "mqtt", e.Extra["notifier"])
	assert.NotContains(t, e.Extra, "mqtt_password")
	assert.NotContains(t, fmt.Sprint(e.Extra["url"]), "10.0.0.5")
	assert.Empty(t, e.ServerName)
	assert.Equal(t, "eatsafe@1.0.0", e.Release)
	assert.Equal(t, "test", e.Environment)
}

func TestInstallRoutesBuiltErrors(t *testing.T) {
	r, transport := newTestReporter(t)
	r.Install()
	t.Cleanup(func() { errors.SetReporter(nil) })

	_ = errors.Newf("disk failure").Component("backup").Category(errors.CategoryFileIO).Build()
	_ = errors.ValidationError("bad input")
	_ = errors.Newf("missing").Category(errors.CategoryNotFound).Build()

	events := transport.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "backup", events[0].Tags["component"])

	r.Close()
	_ = errors.Newf("after close").Category(errors.CategoryDatabase).Build()
	assert.Len(t, transport.Events(), 1)
}

func TestApplyPrivacyFilters(t *testing.T) {
	event := sentry.NewEvent()
	event.User = sentry.User{ID: "42", Email: "a@b.example"}
	event.ServerName = "host-1"
	event.Contexts = map[string]sentry.Context{"os": {}, "device": {}, "application": {}}
	event.Tags = map[string]string{"hostname": "h", "component": "api"}
	event.Extra = map[string]any{"token": "t", "batch_id": 7}
	event.Exception = []sentry.Exception{{Value: "GET https://sensor.example.com/x failed"}}

	out := applyPrivacyFilters(event)
	assert.True(t, out.User.IsEmpty())
	assert.Empty(t, out.ServerName)
	assert.NotContains(t, out.Contexts, "os")
	assert.NotContains(t, out.Contexts, "device")
	assert.Contains(t, out.Contexts, "application")
	assert.NotContains(t, out.Tags, "hostname")
	assert.Equal(t, "api", out.Tags["component"])
	assert.NotContains(t, out.Extra, "token")
	assert.Equal(t, 7, out.Extra["batch_id"])
	assert.NotContains(t, out.Exception[0].Value, "sensor.example.com")
}
