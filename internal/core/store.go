package core

import (
	"context"
	"sort"
	"time"

	"herdcore/internal/breeding"
	"herdcore/pkg/domain"
)

// storeRepository adapts a PersistentStore to the read surface the breeding
// engine consumes. All queries run against committed state and are safe for
// concurrent use.
type storeRepository struct {
	store domain.PersistentStore
}

var _ breeding.Repository = storeRepository{}

func (r storeRepository) GetAnimal(_ context.Context, id string) (domain.Animal, error) {
	animal, ok := r.store.GetAnimal(id)
	if !ok {
		return domain.Animal{}, domain.NotFoundError{Entity: domain.EntityAnimal, ID: id}
	}
	return animal, nil
}

func (r storeRepository) ListEligibleFemales(ctx context.Context, propertyID string, minAgeMonths int) ([]domain.Animal, error) {
	return r.listEligible(ctx, propertyID, domain.SexFemale, minAgeMonths)
}

func (r storeRepository) ListEligibleMales(ctx context.Context, propertyID string, minAgeMonths int) ([]domain.Animal, error) {
	return r.listEligible(ctx, propertyID, domain.SexMale, minAgeMonths)
}

// listEligible keeps animals without a birth date in the result set; the
// ranker surfaces them with a zero score rather than dropping them silently.
func (r storeRepository) listEligible(_ context.Context, propertyID string, sex domain.Sex, minAgeMonths int) ([]domain.Animal, error) {
	now := time.Now().UTC()
	var out []domain.Animal
	for _, animal := range r.store.ListAnimals() {
		if animal.PropertyID != propertyID || animal.Sex != sex || !animal.Available() {
			continue
		}
		if animal.BirthDate != nil && breeding.WholeMonths(*animal.BirthDate, now) < minAgeMonths {
			continue
		}
		out = append(out, animal)
	}
	return out, nil
}

func (r storeRepository) GetActiveGestation(_ context.Context, femaleID string) (*domain.BreedingEvent, error) {
	for _, event := range r.store.ListBreedingEvents() {
		if event.FemaleID != femaleID || event.DeletedAt != nil {
			continue
		}
		if event.Status.Open() {
			found := event
			return &found, nil
		}
	}
	return nil, nil
}

func (r storeRepository) GetLastParturition(ctx context.Context, femaleID string) (*time.Time, error) {
	dates, err := r.ParturitionDates(ctx, femaleID)
	if err != nil || len(dates) == 0 {
		return nil, err
	}
	last := dates[len(dates)-1]
	return &last, nil
}

func (r storeRepository) GetLastNaturalMating(_ context.Context, maleID string) (*time.Time, error) {
	var last *time.Time
	for _, event := range r.store.ListBreedingEvents() {
		if event.DeletedAt != nil || event.Technique != domain.TechniqueNaturalMating {
			continue
		}
		if event.MaleID == nil || *event.MaleID != maleID {
			continue
		}
		if last == nil || event.EventDate.After(*last) {
			date := event.EventDate
			last = &date
		}
	}
	return last, nil
}

func (r storeRepository) GetGeneticMaterial(_ context.Context, id string) (domain.GeneticMaterial, error) {
	material, ok := r.store.GetGeneticMaterial(id)
	if !ok {
		return domain.GeneticMaterial{}, domain.NotFoundError{Entity: domain.EntityGeneticMaterial, ID: id}
	}
	return material, nil
}

// GetBreedingHistory collects outcomes attributable to the subject either as
// the mating male or as the source animal of the genetic material used.
func (r storeRepository) GetBreedingHistory(_ context.Context, subjectID string) ([]domain.BreedingOutcome, error) {
	var outcomes []domain.BreedingOutcome
	for _, event := range r.store.ListBreedingEvents() {
		if event.DeletedAt != nil || event.BirthType == nil {
			continue
		}
		if !r.attributedTo(event, subjectID) {
			continue
		}
		outcomes = append(outcomes, domain.BreedingOutcome{
			EventDate: event.EventDate,
			BirthType: *event.BirthType,
		})
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].EventDate.Before(outcomes[j].EventDate) })
	return outcomes, nil
}

func (r storeRepository) attributedTo(event domain.BreedingEvent, subjectID string) bool {
	if event.MaleID != nil && *event.MaleID == subjectID {
		return true
	}
	if event.GeneticMaterialID == nil {
		return false
	}
	material, ok := r.store.GetGeneticMaterial(*event.GeneticMaterialID)
	if !ok || material.SourceAnimalID == nil {
		return false
	}
	return *material.SourceAnimalID == subjectID
}

func (r storeRepository) GetHerdConceptionStats(_ context.Context, propertyID string) (domain.ConceptionStats, error) {
	var stats domain.ConceptionStats
	for _, event := range r.store.ListBreedingEvents() {
		if event.DeletedAt != nil || event.PropertyID != propertyID || event.BirthType == nil {
			continue
		}
		stats.Total++
		if event.BirthType.Live() {
			stats.Successes++
		}
	}
	return stats, nil
}

func (r storeRepository) CurrentLactation(_ context.Context, femaleID string) (*domain.LactationCycle, error) {
	var current *domain.LactationCycle
	for _, cycle := range r.store.ListLactationCycles() {
		if cycle.FemaleID != femaleID || cycle.Status != domain.CycleLactating {
			continue
		}
		if current == nil || cycle.ParturitionDate.After(current.ParturitionDate) {
			found := cycle
			current = &found
		}
	}
	return current, nil
}

// CountCompletedCycles derives parity from recorded live births rather than
// stored cycles, so birth registrations that opted out of a lactation cycle
// still count.
func (r storeRepository) CountCompletedCycles(ctx context.Context, femaleID string) (int, error) {
	dates, err := r.ParturitionDates(ctx, femaleID)
	if err != nil {
		return 0, err
	}
	return len(dates), nil
}

func (r storeRepository) ParturitionDates(_ context.Context, femaleID string) ([]time.Time, error) {
	var dates []time.Time
	for _, event := range r.store.ListBreedingEvents() {
		if event.FemaleID != femaleID || event.DeletedAt != nil {
			continue
		}
		if event.BirthType == nil || !event.BirthType.Live() || event.BirthDate == nil {
			continue
		}
		dates = append(dates, *event.BirthDate)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// storeLifecycle adapts a PersistentStore to the write surface consumed by
// the breeding-event lifecycle. Each call is its own transaction so store
// rules evaluate against the mutation in isolation.
type storeLifecycle struct {
	store domain.PersistentStore
}

var _ breeding.LifecycleStore = storeLifecycle{}

func (s storeLifecycle) GetBreedingEvent(_ context.Context, id string) (domain.BreedingEvent, error) {
	event, ok := s.store.GetBreedingEvent(id)
	if !ok {
		return domain.BreedingEvent{}, domain.NotFoundError{Entity: domain.EntityBreedingEvent, ID: id}
	}
	return event, nil
}

func (s storeLifecycle) UpdateBreedingEvent(ctx context.Context, id string, mutator func(*domain.BreedingEvent) error) (domain.BreedingEvent, error) {
	var updated domain.BreedingEvent
	_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateBreedingEvent(id, mutator)
		return err
	})
	return updated, err
}

func (s storeLifecycle) CreateLactationCycle(ctx context.Context, cycle domain.LactationCycle) (domain.LactationCycle, error) {
	var created domain.LactationCycle
	_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateLactationCycle(cycle)
		return err
	})
	return created, err
}

func (s storeLifecycle) UpdateLactationCycle(ctx context.Context, id string, mutator func(*domain.LactationCycle) error) (domain.LactationCycle, error) {
	var updated domain.LactationCycle
	_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateLactationCycle(id, mutator)
		return err
	})
	return updated, err
}
