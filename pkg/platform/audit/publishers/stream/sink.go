// Package stream mirrors persisted audit events onto a Kafka topic for
// offline collusion analysis. Records are keyed by origin address so every
// event from one origin lands on the same partition.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "rollcall/pkg/platform/audit"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("audit stream closed")

// Producer is the subset of *kgo.Client the sink needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Sink buffers events and produces them in batches from a background loop,
// so a slow broker never stalls the audit writer.
type Sink struct {
	producer     Producer
	topic        string
	buf          *RingBuffer
	batchSize    int
	flushEvery   time.Duration
	writeTimeout time.Duration
	logger       *slog.Logger

	wake     chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu     sync.Mutex
	failed int64
}

// Option configures the Sink.
type Option func(*Sink)

// WithBufferCapacity bounds the events held while the broker is slow.
func WithBufferCapacity(n int) Option {
	return func(s *Sink) { s.buf = NewRingBuffer(n) }
}

// WithBatchSize sets the maximum records per produce call.
func WithBatchSize(n int) Option {
	return func(s *Sink) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithFlushInterval sets how often the buffer is drained when idle.
func WithFlushInterval(d time.Duration) Option {
	return func(s *Sink) {
		if d > 0 {
			s.flushEvery = d
		}
	}
}

// WithLogger sets a logger for produce failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) { s.logger = logger }
}

// New starts a sink producing to topic.
func New(producer Producer, topic string, opts ...Option) *Sink {
	s := &Sink{
		producer:     producer,
		topic:        topic,
		buf:          NewRingBuffer(10000),
		batchSize:    100,
		flushEvery:   500 * time.Millisecond,
		writeTimeout: 5 * time.Second,
		logger:       slog.Default(),
		wake:         make(chan struct{}, 1),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.loop()
	return s
}

// Name identifies the sink in metrics.
func (s *Sink) Name() string { return "kafka" }

// Publish buffers the event for the next batch.
func (s *Sink) Publish(_ context.Context, e audit.Event) error {
	select {
	case <-s.stop:
		return ErrClosed
	default:
	}
	s.buf.Enqueue(e)
	if s.buf.Len() >= s.batchSize {
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
	return nil
}

// Close flushes what is buffered and stops the loop.
func (s *Sink) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

// Failed returns the number of records the broker rejected.
func (s *Sink) Failed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// Dropped returns the number of events evicted from a full buffer.
func (s *Sink) Dropped() int64 {
	return s.buf.Dropped()
}

func (s *Sink) loop() {
	defer close(s.done)
	ticker := time.NewTicker(s.flushEvery)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			s.drain()
			return
		case <-ticker.C:
			s.drain()
		case <-s.wake:
			s.drain()
		}
	}
}

func (s *Sink) drain() {
	for {
		batch := s.buf.DequeueBatch(s.batchSize)
		if len(batch) == 0 {
			return
		}
		s.produce(batch)
	}
}

func (s *Sink) produce(batch []audit.Event) {
	records := make([]*kgo.Record, 0, len(batch))
	for _, e := range batch {
		value, err := json.Marshal(e)
		if err != nil {
			s.logger.Error("failed to encode audit event for stream", "event_id", e.ID, "error", err)
			continue
		}
		records = append(records, &kgo.Record{
			Topic: s.topic,
			Key:   []byte(e.OriginAddress),
			Value: value,
			Headers: []kgo.RecordHeader{
				{Key: "event", Value: []byte(e.Name)},
				{Key: "severity", Value: []byte(e.Severity)},
			},
		})
	}
	if len(records) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()
	results := s.producer.ProduceSync(ctx, records...)

	var failed int64
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		s.mu.Lock()
		s.failed += failed
		s.mu.Unlock()
		s.logger.Warn("audit stream produce failed",
			"topic", s.topic,
			"failed", failed,
			"batch", len(records),
			"error", results.FirstErr(),
		)
	}
}

var _ audit.Sink = (*Sink)(nil)
