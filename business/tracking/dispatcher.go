// Package tracking forwards analytics events to the configured backends
// without ever blocking the request that produced them.
package tracking

import (
	"context"
	"errors"
	"sync"
	"time"

	"aiInsider/domain"
	"aiInsider/pkg/logger"

	"gorm.io/datatypes"
)

// Backend is one analytics/CRM destination.
type Backend interface {
	Name() string
	Send(ctx context.Context, ev domain.TrackingEvent) error
}

// ConsentChecker reports whether a visitor accepted analytics tracking.
type ConsentChecker interface {
	TrackingAllowed(ctx context.Context, visitorID string) bool
}

type Config struct {
	QueueSize   int
	SendTimeout time.Duration
}

const (
	defaultQueueSize   = 1024
	defaultSendTimeout = 5 * time.Second
)

// Dispatcher queues events in a bounded buffer drained by one worker. When
// the buffer is full new events are dropped.
type Dispatcher struct {
	mu     sync.RWMutex
	closed bool
	queue  chan domain.TrackingEvent
	done   chan struct{}

	backends []Backend
	consent  ConsentChecker
	timeout  time.Duration
	now      func() time.Time
}

func NewDispatcher(cfg Config, consent ConsentChecker, backends ...Backend) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	return &Dispatcher{
		queue:    make(chan domain.TrackingEvent, cfg.QueueSize),
		done:     make(chan struct{}),
		backends: backends,
		consent:  consent,
		timeout:  cfg.SendTimeout,
		now:      time.Now,
	}
}

// Start launches the worker goroutine.
func (d *Dispatcher) Start() {
	go d.run()
}

// Track enqueues ev. It never blocks.
func (d *Dispatcher) Track(_ context.Context, ev domain.TrackingEvent) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = d.now()
	}
	if ev.Properties == nil {
		ev.Properties = datatypes.JSONMap{}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		EventsTotal.WithLabelValues(ev.Name, "dropped").Inc()
		return
	}

	select {
	case d.queue <- ev:
		EventsTotal.WithLabelValues(ev.Name, "queued").Inc()
	default:
		EventsTotal.WithLabelValues(ev.Name, "dropped").Inc()
		logger.Warn("tracking queue full, event dropped", "event", ev.Name, "visitor_id", ev.VisitorID)
	}
}

// TrackAll enqueues every event in evs.
func (d *Dispatcher) TrackAll(ctx context.Context, evs []domain.TrackingEvent) {
	for _, ev := range evs {
		d.Track(ctx, ev)
	}
}

// Close stops accepting events and waits for the queue to drain or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("tracking queue not drained"), ctx.Err())
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for ev := range d.queue {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev domain.TrackingEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if d.consent != nil && !d.consent.TrackingAllowed(ctx, ev.VisitorID) {
		EventsTotal.WithLabelValues(ev.Name, "no_consent").Inc()
		return
	}

	delivered := len(d.backends) == 0
	for _, b := range d.backends {
		if err := b.Send(ctx, ev); err != nil {
			BackendErrorsTotal.WithLabelValues(b.Name()).Inc()
			logger.Warn("tracking backend failed",
				"backend", b.Name(),
				"event", ev.Name,
				"visitor_id", ev.VisitorID,
				"error", err,
			)
			continue
		}
		delivered = true
	}
	if !delivered {
		EventsTotal.WithLabelValues(ev.Name, "failed").Inc()
		return
	}
	EventsTotal.WithLabelValues(ev.Name, "delivered").Inc()
}
