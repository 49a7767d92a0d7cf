// Package reminder provides best-effort reminder dispatch for lifecycle side
// effects. Dispatch is decoupled from the caller's return path: failures go to
// the dispatcher's own log channel.
package reminder

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"herdcore/internal/breeding"
)

// Sink receives scheduled reminders. Implementations typically hand off to a
// notification service or job queue.
type Sink interface {
	Deliver(ctx context.Context, femaleID, cycleID string, remindAt time.Time) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, femaleID, cycleID string, remindAt time.Time) error

// Deliver calls the wrapped function.
func (f SinkFunc) Deliver(ctx context.Context, femaleID, cycleID string, remindAt time.Time) error {
	return f(ctx, femaleID, cycleID, remindAt)
}

// AsyncDispatcher schedules reminders on a background goroutine so the parent
// lifecycle transition never blocks on delivery. Delivery errors are logged
// and dropped.
type AsyncDispatcher struct {
	sink Sink
	log  *zap.Logger
	wg   sync.WaitGroup
}

var _ breeding.ReminderScheduler = (*AsyncDispatcher)(nil)

// NewAsyncDispatcher constructs a dispatcher over the given sink.
func NewAsyncDispatcher(sink Sink, log *zap.Logger) *AsyncDispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &AsyncDispatcher{sink: sink, log: log}
}

// ScheduleDryOffReminder hands the reminder to the sink without blocking the
// caller. The background delivery detaches from the caller's context so a
// finished request does not cancel it.
func (d *AsyncDispatcher) ScheduleDryOffReminder(_ context.Context, femaleID, cycleID string, remindAt time.Time) error {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.sink.Deliver(context.Background(), femaleID, cycleID, remindAt); err != nil {
			d.log.Warn("reminder delivery failed",
				zap.String("female_id", femaleID),
				zap.String("cycle_id", cycleID),
				zap.Time("remind_at", remindAt),
				zap.Error(err))
		}
	}()
	return nil
}

// Wait blocks until all in-flight deliveries finish. Intended for shutdown
// and tests.
func (d *AsyncDispatcher) Wait() {
	d.wg.Wait()
}
