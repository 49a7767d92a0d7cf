package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type capturedReminder struct {
	femaleID string
	cycleID  string
	remindAt time.Time
}

func TestAsyncDispatcherDelivers(t *testing.T) {
	var mu sync.Mutex
	var delivered []capturedReminder
	sink := SinkFunc(func(_ context.Context, femaleID, cycleID string, remindAt time.Time) error {
		mu.Lock()
		delivered = append(delivered, capturedReminder{femaleID, cycleID, remindAt})
		mu.Unlock()
		return nil
	})

	d := NewAsyncDispatcher(sink, nil)
	remindAt := time.Date(2026, time.October, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, d.ScheduleDryOffReminder(context.Background(), "f-1", "cycle-1", remindAt))
	require.NoError(t, d.ScheduleDryOffReminder(context.Background(), "f-2", "cycle-2", remindAt.AddDate(0, 1, 0)))
	d.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, delivered, 2)
	seen := map[string]capturedReminder{}
	for _, r := range delivered {
		seen[r.femaleID] = r
	}
	require.Equal(t, "cycle-1", seen["f-1"].cycleID)
	require.True(t, seen["f-1"].remindAt.Equal(remindAt))
}

func TestAsyncDispatcherLogsAndSwallowsFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	sink := SinkFunc(func(context.Context, string, string, time.Time) error {
		return errors.New("queue unavailable")
	})
	d := NewAsyncDispatcher(sink, zap.New(core))

	err := d.ScheduleDryOffReminder(context.Background(), "f-1", "cycle-1", time.Now())
	require.NoError(t, err)
	d.Wait()

	entries := logs.FilterMessage("reminder delivery failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "f-1", fields["female_id"])
	require.Equal(t, "cycle-1", fields["cycle_id"])
}

func TestAsyncDispatcherDetachesFromCallerContext(t *testing.T) {
	got := make(chan context.Context, 1)
	sink := SinkFunc(func(ctx context.Context, _, _ string, _ time.Time) error {
		got <- ctx
		return nil
	})
	d := NewAsyncDispatcher(sink, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.ScheduleDryOffReminder(ctx, "f-1", "cycle-1", time.Now()))
	d.Wait()

	deliveryCtx := <-got
	require.NoError(t, deliveryCtx.Err())
}
