package audit_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "rollcall/pkg/platform/audit"
	"rollcall/pkg/platform/audit/store/memory"
)

func seed(t *testing.T, store audit.Store, n int, base time.Time) {
	t.Helper()
	for i := range n {
		require.NoError(t, store.Append(context.Background(), audit.Event{
			ID:        fmt.Sprintf("evt-%d", i),
			Name:      audit.EventName(fmt.Sprintf("event_%d", i)),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}
}

func TestEventsNewestFirstAcrossPages(t *testing.T) {
	store := memory.NewInMemoryStore()
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	seed(t, store, 7, base)

	var names []audit.EventName
	for e, err := range audit.Events(context.Background(), store, 3) {
		require.NoError(t, err)
		names = append(names, e.Name)
	}
	require.Len(t, names, 7)
	assert.Equal(t, audit.EventName("event_6"), names[0])
	assert.Equal(t, audit.EventName("event_0"), names[6])
}

func TestEventsTiesBrokenByInsertionOrder(t *testing.T) {
	store := memory.NewInMemoryStore()
	same := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	for _, name := range []audit.EventName{"a", "b", "c"} {
		require.NoError(t, store.Append(context.Background(), audit.Event{Name: name, Timestamp: same}))
	}

	var names []audit.EventName
	for e, err := range audit.Events(context.Background(), store, 2) {
		require.NoError(t, err)
		names = append(names, e.Name)
	}
	assert.Equal(t, []audit.EventName{"c", "b", "a"}, names)
}

func TestEventsIsRestartable(t *testing.T) {
	store := memory.NewInMemoryStore()
	seed(t, store, 4, time.Now())

	seq := audit.Events(context.Background(), store, 2)
	count := func() int {
		n := 0
		for _, err := range seq {
			require.NoError(t, err)
			n++
		}
		return n
	}
	assert.Equal(t, 4, count())

	require.NoError(t, store.Append(context.Background(), audit.Event{Name: "late", Timestamp: time.Now().Add(time.Hour)}))
	assert.Equal(t, 5, count(), "a second range sees events appended since the first")
}

func TestEventsStopsEarly(t *testing.T) {
	store := memory.NewInMemoryStore()
	seed(t, store, 10, time.Now())

	n := 0
	for range audit.Events(context.Background(), store, 3) {
		n++
		if n == 4 {
			break
		}
	}
	assert.Equal(t, 4, n)
}

type brokenStore struct{ audit.Store }

func (brokenStore) Page(context.Context, *audit.Cursor, int) ([]audit.Event, error) {
	return nil, errors.New("connection reset")
}

func TestEventsYieldsStoreError(t *testing.T) {
	var gotErr error
	for _, err := range audit.Events(context.Background(), brokenStore{}, 10) {
		gotErr = err
	}
	require.Error(t, gotErr)
}

func TestEventsHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, err := range audit.Events(ctx, memory.NewInMemoryStore(), 10) {
		require.ErrorIs(t, err, context.Canceled)
	}
}

func TestEventNameSeverity(t *testing.T) {
	assert.Equal(t, audit.SeverityWarning, audit.EventCollusionOriginUnmatched.Severity())
	assert.Equal(t, audit.SeverityError, audit.EventCollusionFlagFailed.Severity())
	assert.Equal(t, audit.SeverityInfo, audit.EventName("button_click").Severity())
}
