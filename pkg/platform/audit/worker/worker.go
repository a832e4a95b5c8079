package worker

import (
	"context"
	"log/slog"
	"time"

	audit "rollcall/pkg/platform/audit"
	"rollcall/pkg/platform/circuit"
)

// Observer receives the worker's outcome counts. Implementations must accept
// calls on a nil receiver if they are passed as typed nils.
type Observer interface {
	IncPersisted()
	IncPersistFailures()
	IncDropped(reason string)
	IncSinkFailures(sink string)
	ObservePersistDuration(seconds float64)
	SetCircuitBreakerState(open bool)
}

// Worker drains an inbox of audit events into the store, then fans each
// persisted event out to the sinks. Every store write gets its own timeout.
type Worker struct {
	store    audit.Store
	sinks    []audit.Sink
	inbox    <-chan audit.Event
	timeout  time.Duration
	breaker  *circuit.Breaker
	observer Observer
	logger   *slog.Logger
}

// Config wires optional collaborators.
type Config struct {
	Sinks        []audit.Sink
	WriteTimeout time.Duration
	Breaker      *circuit.Breaker
	Observer     Observer
	Logger       *slog.Logger
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, cfg Config) *Worker {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 2 * time.Second
	}
	if cfg.Breaker == nil {
		cfg.Breaker = circuit.New("audit-store")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Worker{
		store:    store,
		sinks:    cfg.Sinks,
		inbox:    inbox,
		timeout:  cfg.WriteTimeout,
		breaker:  cfg.Breaker,
		observer: cfg.Observer,
		logger:   cfg.Logger,
	}
}

// Run processes events until the inbox is closed. Events still buffered when
// the inbox closes are written before Run returns.
func (w *Worker) Run() {
	for event := range w.inbox {
		w.process(event)
	}
}

func (w *Worker) process(event audit.Event) {
	if !w.breaker.Allow() {
		w.dropped(event.Name, "circuit_open")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	start := time.Now()
	if err := w.store.Append(ctx, event); err != nil {
		_, change := w.breaker.RecordFailure()
		if w.observer != nil {
			w.observer.IncPersistFailures()
			if change.Opened {
				w.observer.SetCircuitBreakerState(true)
			}
		}
		if change.Opened {
			w.logger.Warn("audit store circuit opened", "breaker", w.breaker.Name())
		}
		w.logger.Error("failed to persist audit event",
			"event", event.Name,
			"event_id", event.ID,
			"error", err,
		)
		return
	}

	_, change := w.breaker.RecordSuccess()
	if change.Closed {
		w.logger.Info("audit store circuit closed", "breaker", w.breaker.Name())
	}
	if w.observer != nil {
		w.observer.ObservePersistDuration(time.Since(start).Seconds())
		w.observer.IncPersisted()
		if change.Closed {
			w.observer.SetCircuitBreakerState(false)
		}
	}

	for _, sink := range w.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			if w.observer != nil {
				w.observer.IncSinkFailures(sink.Name())
			}
			w.logger.Warn("audit sink publish failed",
				"sink", sink.Name(),
				"event_id", event.ID,
				"error", err,
			)
		}
	}
}

func (w *Worker) dropped(name audit.EventName, reason string) {
	if w.observer != nil {
		w.observer.IncDropped(reason)
	}
	w.logger.Debug("audit event dropped", "event", name, "reason", reason)
}
