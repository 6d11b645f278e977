package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "atelier/pkg/platform/audit"
	"atelier/pkg/platform/audit/store/memory"
	txcontext "atelier/pkg/platform/tx"
)

type failingStore struct{ err error }

func (f failingStore) Append(context.Context, audit.Record) error { return f.err }

func eventRecord(action string) audit.Record {
	return audit.Record{
		Action:     action,
		TargetType: audit.TargetEvent,
		TargetID:   "evt-1",
	}
}

func TestPublisher_Record(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New(store)
	defer pub.Close()

	err := pub.Record(context.Background(), eventRecord(audit.ActionEventPublished))
	require.NoError(t, err)

	records, err := store.List(context.Background(), audit.Filter{TargetID: "evt-1"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, audit.ActionEventPublished, records[0].Action)
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	pub := New(store, WithClock(func() time.Time { return fixed }))

	require.NoError(t, pub.Record(context.Background(), eventRecord(audit.ActionEventCreated)))

	records, err := store.List(context.Background(), audit.Filter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, fixed, records[0].Timestamp)
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New(store)

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	record := eventRecord(audit.ActionEventCreated)
	record.Timestamp = customTime
	require.NoError(t, pub.Record(context.Background(), record))

	records, err := store.List(context.Background(), audit.Filter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, customTime, records[0].Timestamp)
}

func TestPublisher_RejectsInvalidRecord(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New(store)

	err := pub.Record(context.Background(), audit.Record{TargetType: audit.TargetEvent})
	require.Error(t, err)

	err = pub.Record(context.Background(), audit.Record{Action: "x", TargetType: "tenant"})
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestPublisher_FailClosed(t *testing.T) {
	boom := errors.New("disk full")
	metrics := NewMetrics(nil)
	pub := New(failingStore{err: boom}, WithMetrics(metrics))

	err := pub.Record(context.Background(), eventRecord(audit.ActionEventCreated))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.PersistFailures))
}

func TestPublisher_MirrorFailureIsNotReturned(t *testing.T) {
	primary := memory.NewInMemoryStore()
	metrics := NewMetrics(nil)
	pub := New(primary,
		WithMirror(failingStore{err: errors.New("redis down")}),
		WithMetrics(metrics),
	)

	require.NoError(t, pub.Record(context.Background(), eventRecord(audit.ActionEventCreated)))
	assert.Equal(t, 1, primary.Len())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.MirrorFailures))
}

func TestPublisher_MirrorReceivesRecords(t *testing.T) {
	primary := memory.NewInMemoryStore()
	mirror := memory.NewInMemoryStore()
	pub := New(primary, WithMirror(mirror))

	for _, action := range []string{audit.ActionEventCreated, audit.ActionEventPublished, audit.ActionEventCancelled} {
		require.NoError(t, pub.Record(context.Background(), eventRecord(action)))
	}

	records, err := mirror.List(context.Background(), audit.Filter{})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, audit.ActionEventCreated, records[0].Action)
	assert.Equal(t, audit.ActionEventCancelled, records[2].Action)
}

func TestPublisher_MirrorWaitsForCommit(t *testing.T) {
	primary := memory.NewInMemoryStore()
	mirror := memory.NewInMemoryStore()
	pub := New(primary, WithMirror(mirror))

	t.Run("queued until the transaction commits", func(t *testing.T) {
		ctx, hooks := txcontext.WithHooks(context.Background())
		require.NoError(t, pub.Record(ctx, eventRecord(audit.ActionEventPublished)))

		inPrimary, err := primary.List(context.Background(), audit.Filter{})
		require.NoError(t, err)
		assert.Len(t, inPrimary, 1)
		inMirror, err := mirror.List(context.Background(), audit.Filter{})
		require.NoError(t, err)
		assert.Empty(t, inMirror)

		hooks.Run(context.Background())
		inMirror, err = mirror.List(context.Background(), audit.Filter{})
		require.NoError(t, err)
		assert.Len(t, inMirror, 1)
	})

	t.Run("dropped when the transaction rolls back", func(t *testing.T) {
		ctx, _ := txcontext.WithHooks(context.Background())
		require.NoError(t, pub.Record(ctx, eventRecord(audit.ActionEventCancelled)))

		inMirror, err := mirror.List(context.Background(), audit.Filter{})
		require.NoError(t, err)
		require.Len(t, inMirror, 1)
		assert.Equal(t, audit.ActionEventPublished, inMirror[0].Action)
	})
}

func TestPublisher_CountsByCategory(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	pub := New(memory.NewInMemoryStore(), WithMetrics(metrics))

	require.NoError(t, pub.Record(context.Background(), eventRecord(audit.ActionEventCreated)))
	require.NoError(t, pub.Record(context.Background(), audit.Record{
		Action:     audit.ActionParticipantAdded,
		TargetType: audit.TargetRegistration,
		TargetID:   "reg-1",
	}))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Recorded.WithLabelValues("operations")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Recorded.WithLabelValues("compliance")))
}
