package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"herdcore/pkg/domain"
)

type rejectRule struct{}

func (rejectRule) Name() string { return "reject_everything" }

func (rejectRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "reject_everything",
			Severity: domain.SeverityBlock,
			Message:  "rejected",
			Entity:   change.Entity,
		})
	}
	return res, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateAnimalAssignsIdentityAndTimestamps(t *testing.T) {
	store := NewStore(nil)
	fixed := date(2026, time.May, 1)
	store.SetClock(func() time.Time { return fixed })

	var created domain.Animal
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var txErr error
		created, txErr = tx.CreateAnimal(domain.Animal{Tag: "A-100", Sex: domain.SexFemale, PropertyID: "prop-1", Active: true})
		return txErr
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if !created.CreatedAt.Equal(fixed) || !created.UpdatedAt.Equal(fixed) {
		t.Fatalf("unexpected timestamps: %+v", created.Base)
	}

	got, ok := store.GetAnimal(created.ID)
	if !ok {
		t.Fatal("created animal not found")
	}
	if got.Tag != "A-100" {
		t.Fatalf("unexpected tag %q", got.Tag)
	}
}

func TestCreateAnimalRejectsDuplicateID(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	seed := func() error {
		_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			_, txErr := tx.CreateAnimal(domain.Animal{Base: domain.Base{ID: "a-1"}, Tag: "A-1", Sex: domain.SexFemale, Active: true})
			return txErr
		})
		return err
	}
	if err := seed(); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := seed(); err == nil {
		t.Fatal("expected duplicate id rejection")
	}
}

func TestUpdateMissingEntityReturnsNotFound(t *testing.T) {
	store := NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, txErr := tx.UpdateBreedingEvent("missing", func(*domain.BreedingEvent) error { return nil })
		return txErr
	})
	var notFound domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestBlockedTransactionLeavesStateUntouched(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(rejectRule{})
	store := NewStore(engine)

	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, txErr := tx.CreateAnimal(domain.Animal{Tag: "A-1", Sex: domain.SexFemale, Active: true})
		return txErr
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected RuleViolationError, got %v", err)
	}
	if len(violation.Result.Violations) != 1 {
		t.Fatalf("expected one violation, got %d", len(violation.Result.Violations))
	}
	if animals := store.ListAnimals(); len(animals) != 0 {
		t.Fatalf("blocked transaction persisted %d animals", len(animals))
	}
}

func TestTransactionErrorRollsBackAllWrites(t *testing.T) {
	store := NewStore(nil)
	boom := errors.New("boom")
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, txErr := tx.CreateAnimal(domain.Animal{Tag: "A-1", Sex: domain.SexFemale, Active: true}); txErr != nil {
			return txErr
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if animals := store.ListAnimals(); len(animals) != 0 {
		t.Fatalf("failed transaction persisted %d animals", len(animals))
	}
}

func TestReadsReturnIsolatedClones(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	birth := date(2022, time.January, 1)
	var created domain.Animal
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var txErr error
		created, txErr = tx.CreateAnimal(domain.Animal{Tag: "A-1", Sex: domain.SexFemale, BirthDate: &birth, Active: true})
		return txErr
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, _ := store.GetAnimal(created.ID)
	*got.BirthDate = date(1999, time.January, 1)
	got.Tag = "tampered"

	fresh, _ := store.GetAnimal(created.ID)
	if fresh.Tag != "A-1" || !fresh.BirthDate.Equal(birth) {
		t.Fatalf("mutating a read leaked into the store: %+v", fresh)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateAnimal(domain.Animal{Base: domain.Base{ID: "a-1"}, Tag: "A-1", Sex: domain.SexFemale, Active: true}); err != nil {
			return err
		}
		if _, err := tx.CreateBreedingEvent(domain.BreedingEvent{Base: domain.Base{ID: "ev-1"}, PropertyID: "prop-1", FemaleID: "a-1", Technique: domain.TechniqueArtificialInsemination, EventDate: date(2026, time.March, 1)}); err != nil {
			return err
		}
		_, err := tx.CreateGeneticMaterial(domain.GeneticMaterial{Base: domain.Base{ID: "gm-1"}, Type: domain.MaterialSemen, Active: true})
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	snapshot := store.ExportState()
	restored := NewStore(nil)
	restored.ImportState(snapshot)

	if _, ok := restored.GetAnimal("a-1"); !ok {
		t.Fatal("animal missing after import")
	}
	if _, ok := restored.GetBreedingEvent("ev-1"); !ok {
		t.Fatal("event missing after import")
	}
	if _, ok := restored.GetGeneticMaterial("gm-1"); !ok {
		t.Fatal("material missing after import")
	}

	// The snapshot is a clone, not a live view.
	delete(snapshot.Animals, "a-1")
	if _, ok := restored.GetAnimal("a-1"); !ok {
		t.Fatal("import shared state with the snapshot")
	}
}

func TestImportStateHydratesNilBuckets(t *testing.T) {
	store := NewStore(nil)
	store.ImportState(Snapshot{})
	if animals := store.ListAnimals(); animals == nil || len(animals) != 0 {
		t.Fatalf("expected empty slice, got %v", animals)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, txErr := tx.CreateAnimal(domain.Animal{Tag: "A-1", Sex: domain.SexFemale, Active: true})
		return txErr
	}); err != nil {
		t.Fatalf("create after empty import: %v", err)
	}
}

func TestDefaultStatusesApplied(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	var event domain.BreedingEvent
	var cycle domain.LactationCycle
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		event, err = tx.CreateBreedingEvent(domain.BreedingEvent{PropertyID: "prop-1", FemaleID: "f-1", Technique: domain.TechniqueArtificialInsemination, EventDate: date(2026, time.March, 1)})
		if err != nil {
			return err
		}
		cycle, err = tx.CreateLactationCycle(domain.LactationCycle{FemaleID: "f-1", ParturitionDate: date(2026, time.January, 1)})
		return err
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if event.Status != domain.EventInProgress {
		t.Fatalf("expected default in_progress, got %s", event.Status)
	}
	if cycle.Status != domain.CycleLactating {
		t.Fatalf("expected default lactating, got %s", cycle.Status)
	}
}
