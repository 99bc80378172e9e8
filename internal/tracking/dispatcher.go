// Package tracking fans intake events out to analytics and integration sinks.
// Delivery is asynchronous and best effort: a failing sink is logged and never
// affects navigation or validation.
package tracking

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"partner-intake/internal/common/logger"
	"partner-intake/internal/common/observability"
	"partner-intake/internal/models"
)

type Sink interface {
	Name() string
	Deliver(ctx context.Context, event models.TrackingEvent) error
}

type DispatcherOptions struct {
	Timeout    time.Duration
	BufferSize int
	// Observability is optional; when set, sink latency is recorded.
	Observability *observability.Observability
}

type Dispatcher struct {
	sinks   []Sink
	opts    DispatcherOptions
	logger  logger.Logger
	queue   chan models.TrackingEvent
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

func NewDispatcher(log logger.Logger, opts DispatcherOptions, sinks ...Sink) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 256
	}
	d := &Dispatcher{
		sinks:  sinks,
		opts:   opts,
		logger: log.Component("tracking"),
		queue:  make(chan models.TrackingEvent, opts.BufferSize),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

// Emit queues the event and returns immediately. When the queue is full the
// event is dropped.
func (d *Dispatcher) Emit(_ context.Context, event models.TrackingEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- event:
	default:
		d.dropped.Add(1)
		d.logger.Warn("tracking queue full, event dropped", map[string]interface{}{
			"type":      string(event.Type),
			"sessionId": event.SessionID,
		})
	}
}

// Dropped reports how many events were discarded because the queue was full.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for event := range d.queue {
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event models.TrackingEvent) {
	var wg sync.WaitGroup
	for _, sink := range d.sinks {
		wg.Add(1)
		go func(s Sink) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), d.opts.Timeout)
			defer cancel()

			start := time.Now()
			err := s.Deliver(ctx, event)
			if d.opts.Observability != nil {
				d.opts.Observability.RecordSinkLatency(ctx, s.Name(), time.Since(start), err != nil)
			}
			if err != nil {
				d.logger.Warn("tracking sink failed", map[string]interface{}{
					"sink":      s.Name(),
					"type":      string(event.Type),
					"sessionId": event.SessionID,
					"error":     err,
				})
			}
		}(sink)
	}
	wg.Wait()
}

// Close stops accepting events and waits until queued events are delivered or
// ctx expires.
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
		return ctx.Err()
	}
}
