package stream

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "rollcall/pkg/platform/audit"
)

type fakeProducer struct {
	mu      sync.Mutex
	records []*kgo.Record
	err     error
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	p.mu.Lock()
	defer p.mu.Unlock()
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if p.err == nil {
			p.records = append(p.records, r)
		}
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func (p *fakeProducer) snapshot() []*kgo.Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*kgo.Record(nil), p.records...)
}

func TestSink_ProducesKeyedByOrigin(t *testing.T) {
	producer := &fakeProducer{}
	sink := New(producer, "rollcall.audit", WithFlushInterval(time.Hour))

	event := audit.Event{
		ID:            "evt-1",
		Name:          audit.EventCollusionFlagged,
		Detail:        json.RawMessage(`{"t_userId":"tom"}`),
		OriginAddress: "10.0.0.5",
		Severity:      audit.SeverityWarning,
		Timestamp:     time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, sink.Publish(context.Background(), event))
	sink.Close()

	records := producer.snapshot()
	require.Len(t, records, 1)
	assert.Equal(t, "rollcall.audit", records[0].Topic)
	assert.Equal(t, "10.0.0.5", string(records[0].Key))

	var decoded audit.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &decoded))
	assert.Equal(t, "evt-1", decoded.ID)
	assert.Equal(t, audit.EventCollusionFlagged, decoded.Name)
	assert.JSONEq(t, `{"t_userId":"tom"}`, string(decoded.Detail))
}

func TestSink_FlushesFullBatchWithoutWaiting(t *testing.T) {
	producer := &fakeProducer{}
	sink := New(producer, "rollcall.audit", WithBatchSize(2), WithFlushInterval(time.Hour))
	defer sink.Close()

	require.NoError(t, sink.Publish(context.Background(), audit.Event{ID: "a"}))
	require.NoError(t, sink.Publish(context.Background(), audit.Event{ID: "b"}))

	assert.Eventually(t, func() bool { return len(producer.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
}

func TestSink_CountsProduceFailures(t *testing.T) {
	producer := &fakeProducer{err: errors.New("leader not available")}
	sink := New(producer, "rollcall.audit", WithFlushInterval(time.Hour))

	require.NoError(t, sink.Publish(context.Background(), audit.Event{ID: "a"}))
	sink.Close()

	assert.Equal(t, int64(1), sink.Failed())
}

func TestSink_PublishAfterClose(t *testing.T) {
	sink := New(&fakeProducer{}, "rollcall.audit")
	sink.Close()
	assert.ErrorIs(t, sink.Publish(context.Background(), audit.Event{}), ErrClosed)
	assert.Equal(t, "kafka", sink.Name())
}
