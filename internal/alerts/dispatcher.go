package alerts

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
	"github.com/ayushbarthwal/eatsafe/internal/observability/metrics"
	"github.com/ayushbarthwal/eatsafe/internal/safety"
)

const (
	// DefaultSendTimeout bounds one delivery to one notifier.
	DefaultSendTimeout = 10 * time.Second
	// DefaultQueueSize is the number of alerts buffered before new ones are dropped.
	DefaultQueueSize = 64
)

// Dispatcher queues alerts and fans each one out to every notifier. Delivery
// runs on a single background worker; failures are logged and counted,
// never returned to the caller of Notify.
type Dispatcher struct {
	notifiers []Notifier
	minRisk   safety.RiskLabel
	timeout   time.Duration
	log       logger.Logger
	metrics   *metrics.AlertMetrics

	mu     sync.RWMutex
	closed bool
	queue  chan Alert
	done   chan struct{}
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithSendTimeout sets the per-notifier delivery timeout.
func WithSendTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithDispatcherLogger sets the logger.
func WithDispatcherLogger(l logger.Logger) DispatcherOption {
	return func(disp *Dispatcher) { disp.log = l }
}

// WithMetrics records deliveries in m.
func WithMetrics(m *metrics.AlertMetrics) DispatcherOption {
	return func(disp *Dispatcher) { disp.metrics = m }
}

// WithQueueSize sets the queue capacity.
func WithQueueSize(n int) DispatcherOption {
	return func(disp *Dispatcher) {
		if n > 0 {
			disp.queue = make(chan Alert, n)
		}
	}
}

// NewDispatcher starts a dispatcher delivering alerts at or above minRisk,
// and every failed quality test, to notifiers.
func NewDispatcher(minRisk safety.RiskLabel, notifiers []Notifier, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		notifiers: notifiers,
		minRisk:   minRisk,
		timeout:   DefaultSendTimeout,
		log:       logger.Global().Module("alerts"),
		queue:     make(chan Alert, DefaultQueueSize),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	go d.run()
	return d
}

// ShouldAlert reports whether a is severe enough to be delivered.
func (d *Dispatcher) ShouldAlert(a Alert) bool {
	return a.Failed() || a.Risk >= d.minRisk
}

// Notify queues a for delivery. It returns false when the alert is below the
// threshold, the queue is full, the dispatcher is closed or d is nil.
func (d *Dispatcher) Notify(a Alert) bool {
	if d == nil || len(d.notifiers) == 0 || !d.ShouldAlert(a) {
		return false
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.queue <- a:
		return true
	default:
		d.log.Warn("alert queue full, dropping alert",
			logger.String("kind", string(a.Kind)),
			logger.Int("cfu", a.CFU))
		return false
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for a := range d.queue {
		d.deliver(a)
	}
}

// deliver sends a to every notifier concurrently.
func (d *Dispatcher) deliver(a Alert) {
	var g errgroup.Group
	for _, n := range d.notifiers {
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
			defer cancel()

			err := n.Send(ctx, a)
			d.metrics.RecordDelivery(n.Name(), err)
			if err != nil {
				d.log.Error("alert delivery failed",
					logger.String("notifier", n.Name()),
					logger.String("kind", string(a.Kind)),
					logger.Error(err))
				return nil
			}
			d.log.Debug("alert delivered",
				logger.String("notifier", n.Name()),
				logger.String("kind", string(a.Kind)))
			return nil
		})
	}
	_ = g.Wait()
}

// Close drains queued alerts, stops the worker and closes every notifier.
func (d *Dispatcher) Close() error {
	if d == nil {
		return nil
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done

	var errs []error
	for _, n := range d.notifiers {
		if err := n.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return errors.New(err).
			Component("alerts").
			Category(errors.CategoryNotification).
			Build()
	}
	return nil
}
