package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"herdcore/internal/infra/persistence/memory"
	"herdcore/pkg/domain"
)

func openEvent(female string, eventDate time.Time) domain.BreedingEvent {
	return domain.BreedingEvent{
		PropertyID: "prop-1",
		FemaleID:   female,
		Technique:  domain.TechniqueArtificialInsemination,
		EventDate:  eventDate,
		Status:     domain.EventInProgress,
	}
}

func TestGestationOverlapBlocksSecondOpenEvent(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	ctx := context.Background()

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateBreedingEvent(openEvent("f-1", day(2026, time.March, 1)))
		return err
	}); err != nil {
		t.Fatalf("first event: %v", err)
	}

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateBreedingEvent(openEvent("f-1", day(2026, time.March, 10)))
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	found := false
	for _, v := range violation.Result.Violations {
		if v.Rule == "gestation_overlap" && v.Severity == domain.SeverityBlock {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected blocking gestation_overlap violation, got %+v", violation.Result.Violations)
	}
	if events := store.ListBreedingEvents(); len(events) != 1 {
		t.Fatalf("expected rejected transaction to leave one event, got %d", len(events))
	}
}

func TestGestationOverlapAllowsDifferentFemales(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	ctx := context.Background()

	for _, female := range []string{"f-1", "f-2"} {
		if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			_, err := tx.CreateBreedingEvent(openEvent(female, day(2026, time.March, 1)))
			return err
		}); err != nil {
			t.Fatalf("event for %s: %v", female, err)
		}
	}
}

func TestGestationOverlapAllowsNewEventAfterTerminal(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	ctx := context.Background()

	var first domain.BreedingEvent
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		first, err = tx.CreateBreedingEvent(openEvent("f-1", day(2026, time.March, 1)))
		return err
	}); err != nil {
		t.Fatalf("first event: %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateBreedingEvent(first.ID, func(e *domain.BreedingEvent) error {
			e.Status = domain.EventFailed
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("fail event: %v", err)
	}

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateBreedingEvent(openEvent("f-1", day(2026, time.June, 1)))
		return err
	}); err != nil {
		t.Fatalf("new event after failure: %v", err)
	}
}

func TestEventTransitionBlocksTerminalExit(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	ctx := context.Background()

	var event domain.BreedingEvent
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		event, err = tx.CreateBreedingEvent(openEvent("f-1", day(2026, time.March, 1)))
		return err
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateBreedingEvent(event.ID, func(e *domain.BreedingEvent) error {
			e.Status = domain.EventCompleted
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateBreedingEvent(event.ID, func(e *domain.BreedingEvent) error {
			e.Status = domain.EventInProgress
			return nil
		})
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}

	got, ok := store.GetBreedingEvent(event.ID)
	if !ok {
		t.Fatal("event missing after rejected transaction")
	}
	if got.Status != domain.EventCompleted {
		t.Fatalf("expected event to stay completed, got %s", got.Status)
	}
}

func TestEventTransitionBlocksUnknownState(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	ctx := context.Background()

	event := openEvent("f-1", day(2026, time.March, 1))
	event.Status = domain.EventStatus("pending_review")
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, txErr := tx.CreateBreedingEvent(event)
		return txErr
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
}

func TestCycleTransitionBlocksDryExit(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	ctx := context.Background()

	parturition := day(2026, time.January, 5)
	var cycle domain.LactationCycle
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		cycle, err = tx.CreateLactationCycle(domain.LactationCycle{
			FemaleID:        "f-1",
			BreedingEventID: strPtr("ev-1"),
			ParturitionDate: parturition,
			ProjectedDryOff: parturition.AddDate(0, 0, 305),
			Status:          domain.CycleLactating,
		})
		return err
	}); err != nil {
		t.Fatalf("create cycle: %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateLactationCycle(cycle.ID, func(c *domain.LactationCycle) error {
			c.Status = domain.CycleDry
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("dry off: %v", err)
	}

	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateLactationCycle(cycle.ID, func(c *domain.LactationCycle) error {
			c.Status = domain.CycleLactating
			return nil
		})
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
}
