package breeding

import (
	"context"
	"time"

	"go.uber.org/zap"

	"herdcore/pkg/domain"
)

// dryOffReminderLeadDays is how far before the projected dry-off the reminder fires.
const dryOffReminderLeadDays = 60

// BirthInput carries the data registered against a confirmed event.
type BirthInput struct {
	EventID   string
	BirthDate time.Time
	Type      domain.BirthType
	// SkipLactation opts out of the automatic lactation cycle for live births.
	SkipLactation bool
	// DurationDays overrides the standard lactation duration; 0 means the
	// 305-day default.
	DurationDays int
}

// BirthOutcome reports the result of a birth registration. CycleErr carries a
// lactation-cycle creation failure that occurred after the birth itself was
// committed; the birth is never rolled back on its account.
type BirthOutcome struct {
	Event    domain.BreedingEvent
	Cycle    *domain.LactationCycle
	CycleErr error
}

// Lifecycle drives a breeding event from creation to birth or failure,
// including the lactation-cycle side effect of a live birth.
type Lifecycle struct {
	store     LifecycleStore
	reminders ReminderScheduler
	log       *zap.Logger
	now       func() time.Time
}

// NewLifecycle constructs the lifecycle over the given store. The reminder
// scheduler may be nil, in which case no reminders are dispatched.
func NewLifecycle(store LifecycleStore, reminders ReminderScheduler, log *zap.Logger) *Lifecycle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Lifecycle{
		store:     store,
		reminders: reminders,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the lifecycle clock. Intended for tests.
func (l *Lifecycle) WithClock(now func() time.Time) *Lifecycle {
	l.now = now
	return l
}

// Confirm moves an event from InProgress to Confirmed.
func (l *Lifecycle) Confirm(ctx context.Context, eventID string) (domain.BreedingEvent, error) {
	return l.transition(ctx, eventID, domain.EventConfirmed, func(status domain.EventStatus) bool {
		return status == domain.EventInProgress
	})
}

// Fail moves an open event to the terminal Failed state.
func (l *Lifecycle) Fail(ctx context.Context, eventID string) (domain.BreedingEvent, error) {
	return l.transition(ctx, eventID, domain.EventFailed, func(status domain.EventStatus) bool {
		return status.Open()
	})
}

func (l *Lifecycle) transition(ctx context.Context, eventID string, to domain.EventStatus, allowed func(domain.EventStatus) bool) (domain.BreedingEvent, error) {
	return l.store.UpdateBreedingEvent(ctx, eventID, func(event *domain.BreedingEvent) error {
		if !allowed(event.Status) {
			return domain.InvalidTransitionError{EventID: eventID, From: event.Status, To: to}
		}
		event.Status = to
		return nil
	})
}

// RegisterBirth records a birth on a Confirmed event, moving it to Completed.
// A live birth opens a lactation cycle unless the caller opted out; an
// abortion never opens one. Cycle-creation and reminder failures surface on
// the outcome and the log respectively, never as a registration error.
func (l *Lifecycle) RegisterBirth(ctx context.Context, input BirthInput) (BirthOutcome, error) {
	event, err := l.store.UpdateBreedingEvent(ctx, input.EventID, func(event *domain.BreedingEvent) error {
		if event.Status != domain.EventConfirmed {
			return domain.InvalidTransitionError{EventID: input.EventID, From: event.Status, To: domain.EventCompleted}
		}
		birthType := input.Type
		birthDate := input.BirthDate
		event.BirthType = &birthType
		event.BirthDate = &birthDate
		event.Status = domain.EventCompleted
		return nil
	})
	if err != nil {
		return BirthOutcome{}, err
	}

	outcome := BirthOutcome{Event: event}
	if !input.Type.Live() || input.SkipLactation {
		return outcome, nil
	}

	duration := input.DurationDays
	if duration <= 0 {
		duration = domain.DefaultLactationDays
	}
	eventID := event.ID
	cycle, err := l.store.CreateLactationCycle(ctx, domain.LactationCycle{
		FemaleID:        event.FemaleID,
		BreedingEventID: &eventID,
		ParturitionDate: input.BirthDate,
		Status:          domain.CycleLactating,
		DurationDays:    duration,
		ProjectedDryOff: input.BirthDate.AddDate(0, 0, duration),
	})
	if err != nil {
		// The birth is already committed; the cycle failure is reported
		// separately and never rolls it back.
		l.log.Warn("lactation cycle creation failed after birth registration",
			zap.String("event_id", event.ID),
			zap.String("female_id", event.FemaleID),
			zap.Error(err))
		outcome.CycleErr = err
		return outcome, nil
	}
	outcome.Cycle = &cycle

	l.scheduleDryOffReminder(ctx, cycle)
	return outcome, nil
}

// DryOff closes a lactating cycle.
func (l *Lifecycle) DryOff(ctx context.Context, cycleID string) (domain.LactationCycle, error) {
	return l.store.UpdateLactationCycle(ctx, cycleID, func(cycle *domain.LactationCycle) error {
		if cycle.Status != domain.CycleLactating {
			return domain.InconsistentInputError{Field: "cycle_status", Detail: "cycle is already dry"}
		}
		cycle.Status = domain.CycleDry
		return nil
	})
}

// scheduleDryOffReminder is best effort: a scheduler failure is logged and
// swallowed so it can never fail the parent registration.
func (l *Lifecycle) scheduleDryOffReminder(ctx context.Context, cycle domain.LactationCycle) {
	if l.reminders == nil {
		return
	}
	remindAt := cycle.ProjectedDryOff.AddDate(0, 0, -dryOffReminderLeadDays)
	if err := l.reminders.ScheduleDryOffReminder(ctx, cycle.FemaleID, cycle.ID, remindAt); err != nil {
		l.log.Warn("dry-off reminder scheduling failed",
			zap.String("cycle_id", cycle.ID),
			zap.String("female_id", cycle.FemaleID),
			zap.Time("remind_at", remindAt),
			zap.Error(err))
	}
}
