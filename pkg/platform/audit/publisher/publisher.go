// Package publisher is the audit log front end: Record enqueues without
// blocking and a background worker persists. Nothing here returns an error to
// the caller of Record.
package publisher

import (
	"context"
	"encoding/json"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	audit "rollcall/pkg/platform/audit"
	"rollcall/pkg/platform/audit/worker"
	"rollcall/pkg/platform/circuit"
	"rollcall/pkg/requestcontext"
)

// Publisher records audit events asynchronously.
type Publisher struct {
	store        audit.Store
	queue        chan audit.Event
	bufferSize   int
	writeTimeout time.Duration
	pageSize     int
	sinks        []audit.Sink
	breaker      *circuit.Breaker
	metrics      *Metrics
	logger       *slog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithBufferSize bounds the queue; overflow drops the event.
func WithBufferSize(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.bufferSize = n
		}
	}
}

// WithWriteTimeout bounds each store write.
func WithWriteTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.writeTimeout = d
		}
	}
}

// WithPageSize sets the page size used by Events.
func WithPageSize(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.pageSize = n
		}
	}
}

// WithSinks adds downstream sinks fed after persistence.
func WithSinks(sinks ...audit.Sink) Option {
	return func(p *Publisher) {
		p.sinks = append(p.sinks, sinks...)
	}
}

// WithBreaker replaces the default store circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(p *Publisher) {
		p.breaker = b
	}
}

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// New creates a publisher and starts its worker. Call Close to drain.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:        store,
		bufferSize:   1024,
		writeTimeout: 2 * time.Second,
		pageSize:     100,
		logger:       slog.Default(),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.queue = make(chan audit.Event, p.bufferSize)

	w := worker.NewWorker(store, p.queue, worker.Config{
		Sinks:        p.sinks,
		WriteTimeout: p.writeTimeout,
		Breaker:      p.breaker,
		Observer:     p.metrics,
		Logger:       p.logger,
	})
	go func() {
		defer close(p.done)
		w.Run()
	}()
	return p
}

// Record stamps and enqueues an audit entry. It never blocks on storage and
// never fails observably; drops are logged and counted.
func (p *Publisher) Record(ctx context.Context, entry audit.Entry) {
	detail, err := json.Marshal(entry.Detail)
	if err != nil {
		p.metrics.IncDropped(DropEncode)
		p.logger.ErrorContext(ctx, "failed to encode audit detail",
			"event", entry.Name,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return
	}

	severity := entry.Severity
	if severity == "" {
		severity = entry.Name.Severity()
	}
	event := audit.Event{
		ID:            uuid.NewString(),
		Name:          entry.Name,
		Detail:        detail,
		OriginAddress: entry.OriginAddress,
		Severity:      severity,
		// Microsecond precision matches what the SQL stores keep.
		Timestamp: time.Now().UTC().Truncate(time.Microsecond),
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.metrics.IncDropped(DropClosed)
		p.logger.WarnContext(ctx, "audit event recorded after close", "event", entry.Name)
		return
	}
	select {
	case p.queue <- event:
	default:
		p.metrics.IncDropped(DropQueueFull)
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"event", entry.Name,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

// Events lazily enumerates persisted events, newest first.
func (p *Publisher) Events(ctx context.Context) iter.Seq2[audit.Event, error] {
	return audit.Events(ctx, p.store, p.pageSize)
}

// Close stops intake and waits until every queued event has been handled.
func (p *Publisher) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	<-p.done
}
