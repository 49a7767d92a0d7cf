package core

import (
	"context"
	"testing"
	"time"

	"herdcore/internal/infra/persistence/memory"
	"herdcore/pkg/domain"
)

func seedStoreEvent(t *testing.T, store *memory.Store, event domain.BreedingEvent) domain.BreedingEvent {
	t.Helper()
	var created domain.BreedingEvent
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateBreedingEvent(event)
		return err
	}); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return created
}

func birthTypePtr(bt domain.BirthType) *domain.BirthType { return &bt }

func completedEvent(female string, eventDate, birthDate time.Time, bt domain.BirthType) domain.BreedingEvent {
	bd := birthDate
	return domain.BreedingEvent{
		PropertyID: "prop-1",
		FemaleID:   female,
		Technique:  domain.TechniqueArtificialInsemination,
		EventDate:  eventDate,
		Status:     domain.EventCompleted,
		BirthType:  birthTypePtr(bt),
		BirthDate:  &bd,
	}
}

func TestRepositoryParturitionDatesSorted(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	repo := storeRepository{store: store}
	ctx := context.Background()

	// Inserted out of order; abortion outcome must not appear.
	seedStoreEvent(t, store, completedEvent("f-1", day(2024, time.March, 1), day(2024, time.December, 10), domain.BirthNormal))
	seedStoreEvent(t, store, completedEvent("f-1", day(2022, time.March, 1), day(2022, time.December, 10), domain.BirthCesarean))
	seedStoreEvent(t, store, completedEvent("f-1", day(2023, time.March, 1), day(2023, time.December, 10), domain.BirthAbortion))

	dates, err := repo.ParturitionDates(ctx, "f-1")
	if err != nil {
		t.Fatalf("parturition dates: %v", err)
	}
	if len(dates) != 2 {
		t.Fatalf("expected 2 live births, got %d", len(dates))
	}
	if !dates[0].Equal(day(2022, time.December, 10)) || !dates[1].Equal(day(2024, time.December, 10)) {
		t.Fatalf("dates out of order: %v", dates)
	}

	last, err := repo.GetLastParturition(ctx, "f-1")
	if err != nil {
		t.Fatalf("last parturition: %v", err)
	}
	if last == nil || !last.Equal(day(2024, time.December, 10)) {
		t.Fatalf("unexpected last parturition: %v", last)
	}

	parity, err := repo.CountCompletedCycles(ctx, "f-1")
	if err != nil {
		t.Fatalf("parity: %v", err)
	}
	if parity != 2 {
		t.Fatalf("expected parity 2, got %d", parity)
	}
}

func TestRepositoryHerdConceptionStats(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	repo := storeRepository{store: store}

	seedStoreEvent(t, store, completedEvent("f-1", day(2024, time.March, 1), day(2024, time.December, 10), domain.BirthNormal))
	seedStoreEvent(t, store, completedEvent("f-2", day(2024, time.April, 1), day(2025, time.January, 10), domain.BirthAbortion))
	other := completedEvent("f-3", day(2024, time.May, 1), day(2025, time.February, 10), domain.BirthNormal)
	other.PropertyID = "prop-2"
	seedStoreEvent(t, store, other)
	// Open events without an outcome are not part of the rate.
	seedStoreEvent(t, store, openEvent("f-4", day(2026, time.March, 1)))

	stats, err := repo.GetHerdConceptionStats(context.Background(), "prop-1")
	if err != nil {
		t.Fatalf("herd stats: %v", err)
	}
	if stats.Total != 2 || stats.Successes != 1 {
		t.Fatalf("expected 1/2, got %d/%d", stats.Successes, stats.Total)
	}
}

func TestRepositoryHistoryAttribution(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	repo := storeRepository{store: store}
	ctx := context.Background()

	source := "bull-1"
	var material domain.GeneticMaterial
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		material, err = tx.CreateGeneticMaterial(domain.GeneticMaterial{
			Type:           domain.MaterialSemen,
			SourceAnimalID: &source,
			Active:         true,
		})
		return err
	}); err != nil {
		t.Fatalf("seed material: %v", err)
	}

	direct := completedEvent("f-1", day(2024, time.March, 1), day(2024, time.December, 10), domain.BirthNormal)
	maleID := "bull-1"
	direct.MaleID = &maleID
	direct.Technique = domain.TechniqueNaturalMating
	seedStoreEvent(t, store, direct)

	viaMaterial := completedEvent("f-2", day(2025, time.March, 1), day(2025, time.December, 10), domain.BirthAbortion)
	viaMaterial.GeneticMaterialID = &material.ID
	seedStoreEvent(t, store, viaMaterial)

	unrelated := completedEvent("f-3", day(2025, time.April, 1), day(2026, time.January, 10), domain.BirthNormal)
	otherMale := "bull-2"
	unrelated.MaleID = &otherMale
	unrelated.Technique = domain.TechniqueNaturalMating
	seedStoreEvent(t, store, unrelated)

	history, err := repo.GetBreedingHistory(ctx, "bull-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 attributed outcomes, got %d", len(history))
	}
	if !history[0].EventDate.Before(history[1].EventDate) {
		t.Fatal("history not sorted by event date")
	}
	if history[0].BirthType != domain.BirthNormal || history[1].BirthType != domain.BirthAbortion {
		t.Fatalf("unexpected outcomes: %+v", history)
	}
}

func TestRepositoryActiveGestation(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	repo := storeRepository{store: store}
	ctx := context.Background()

	seedStoreEvent(t, store, completedEvent("f-1", day(2024, time.March, 1), day(2024, time.December, 10), domain.BirthNormal))
	active, err := repo.GetActiveGestation(ctx, "f-1")
	if err != nil {
		t.Fatalf("active gestation: %v", err)
	}
	if active != nil {
		t.Fatalf("completed event treated as active: %+v", active)
	}

	open := seedStoreEvent(t, store, openEvent("f-1", day(2026, time.March, 1)))
	active, err = repo.GetActiveGestation(ctx, "f-1")
	if err != nil {
		t.Fatalf("active gestation: %v", err)
	}
	if active == nil || active.ID != open.ID {
		t.Fatalf("expected open event %s, got %+v", open.ID, active)
	}
}

func TestRepositoryLastNaturalMating(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	repo := storeRepository{store: store}
	ctx := context.Background()

	maleID := "bull-1"
	for _, date := range []time.Time{day(2026, time.February, 1), day(2026, time.March, 5), day(2026, time.January, 10)} {
		event := openEvent("f-any", date)
		event.FemaleID = "f-" + date.Format("0102")
		event.Technique = domain.TechniqueNaturalMating
		event.MaleID = &maleID
		event.Status = domain.EventFailed
		seedStoreEvent(t, store, event)
	}

	last, err := repo.GetLastNaturalMating(ctx, "bull-1")
	if err != nil {
		t.Fatalf("last mating: %v", err)
	}
	if last == nil || !last.Equal(day(2026, time.March, 5)) {
		t.Fatalf("unexpected last mating: %v", last)
	}

	none, err := repo.GetLastNaturalMating(ctx, "bull-2")
	if err != nil {
		t.Fatalf("last mating: %v", err)
	}
	if none != nil {
		t.Fatalf("expected no matings for bull-2, got %v", none)
	}
}

func TestRepositoryCurrentLactationPicksLatest(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	repo := storeRepository{store: store}
	ctx := context.Background()

	seedCycle := func(parturition time.Time, status domain.CycleStatus) {
		t.Helper()
		if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			_, err := tx.CreateLactationCycle(domain.LactationCycle{
				FemaleID:        "f-1",
				BreedingEventID: strPtr("ev-" + parturition.Format("2006")),
				ParturitionDate: parturition,
				ProjectedDryOff: parturition.AddDate(0, 0, 305),
				Status:          status,
			})
			return err
		}); err != nil {
			t.Fatalf("seed cycle: %v", err)
		}
	}
	seedCycle(day(2023, time.November, 1), domain.CycleDry)
	seedCycle(day(2025, time.December, 1), domain.CycleLactating)

	current, err := repo.CurrentLactation(ctx, "f-1")
	if err != nil {
		t.Fatalf("current lactation: %v", err)
	}
	if current == nil || !current.ParturitionDate.Equal(day(2025, time.December, 1)) {
		t.Fatalf("unexpected current lactation: %+v", current)
	}
}

func TestRepositoryListEligibleFiltersSexAndAvailability(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	repo := storeRepository{store: store}
	ctx := context.Background()

	seed := func(animal domain.Animal) {
		t.Helper()
		if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			_, err := tx.CreateAnimal(animal)
			return err
		}); err != nil {
			t.Fatalf("seed animal: %v", err)
		}
	}
	birth := day(2022, time.January, 1)
	seed(domain.Animal{Base: domain.Base{ID: "f-ok"}, Sex: domain.SexFemale, BirthDate: &birth, PropertyID: "prop-1", Active: true})
	seed(domain.Animal{Base: domain.Base{ID: "f-inactive"}, Sex: domain.SexFemale, BirthDate: &birth, PropertyID: "prop-1", Active: false})
	seed(domain.Animal{Base: domain.Base{ID: "m-1"}, Sex: domain.SexMale, BirthDate: &birth, PropertyID: "prop-1", Active: true})
	seed(domain.Animal{Base: domain.Base{ID: "f-elsewhere"}, Sex: domain.SexFemale, BirthDate: &birth, PropertyID: "prop-2", Active: true})
	// Unknown birth date stays in the result so the ranker can flag it.
	seed(domain.Animal{Base: domain.Base{ID: "f-unknown"}, Sex: domain.SexFemale, PropertyID: "prop-1", Active: true})

	females, err := repo.ListEligibleFemales(ctx, "prop-1", 18)
	if err != nil {
		t.Fatalf("list females: %v", err)
	}
	ids := map[string]bool{}
	for _, a := range females {
		ids[a.ID] = true
	}
	if len(females) != 2 || !ids["f-ok"] || !ids["f-unknown"] {
		t.Fatalf("unexpected eligible females: %v", ids)
	}
}
