package breeding

import (
	"context"
	"time"

	"herdcore/pkg/domain"
)

// fakeRepo is a hand-rolled Repository double. Fields hold canned responses;
// function hooks override individual queries when set.
type fakeRepo struct {
	animals          map[string]domain.Animal
	materials        map[string]domain.GeneticMaterial
	females          []domain.Animal
	males            []domain.Animal
	activeGestation  map[string]*domain.BreedingEvent
	lastParturition  map[string]*time.Time
	lastMating       map[string]*time.Time
	history          map[string][]domain.BreedingOutcome
	herd             domain.ConceptionStats
	currentLactation map[string]*domain.LactationCycle
	parity           map[string]int
	parturitions     map[string][]time.Time

	historyErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		animals:          map[string]domain.Animal{},
		materials:        map[string]domain.GeneticMaterial{},
		activeGestation:  map[string]*domain.BreedingEvent{},
		lastParturition:  map[string]*time.Time{},
		lastMating:       map[string]*time.Time{},
		history:          map[string][]domain.BreedingOutcome{},
		currentLactation: map[string]*domain.LactationCycle{},
		parity:           map[string]int{},
		parturitions:     map[string][]time.Time{},
	}
}

func (r *fakeRepo) addAnimal(a domain.Animal) {
	r.animals[a.ID] = a
}

func (r *fakeRepo) GetAnimal(_ context.Context, id string) (domain.Animal, error) {
	a, ok := r.animals[id]
	if !ok {
		return domain.Animal{}, domain.NotFoundError{Entity: domain.EntityAnimal, ID: id}
	}
	return a, nil
}

func (r *fakeRepo) ListEligibleFemales(_ context.Context, _ string, _ int) ([]domain.Animal, error) {
	return r.females, nil
}

func (r *fakeRepo) ListEligibleMales(_ context.Context, _ string, _ int) ([]domain.Animal, error) {
	return r.males, nil
}

func (r *fakeRepo) GetActiveGestation(_ context.Context, femaleID string) (*domain.BreedingEvent, error) {
	return r.activeGestation[femaleID], nil
}

func (r *fakeRepo) GetLastParturition(_ context.Context, femaleID string) (*time.Time, error) {
	return r.lastParturition[femaleID], nil
}

func (r *fakeRepo) GetLastNaturalMating(_ context.Context, maleID string) (*time.Time, error) {
	return r.lastMating[maleID], nil
}

func (r *fakeRepo) GetGeneticMaterial(_ context.Context, id string) (domain.GeneticMaterial, error) {
	m, ok := r.materials[id]
	if !ok {
		return domain.GeneticMaterial{}, domain.NotFoundError{Entity: domain.EntityGeneticMaterial, ID: id}
	}
	return m, nil
}

func (r *fakeRepo) GetBreedingHistory(_ context.Context, subjectID string) ([]domain.BreedingOutcome, error) {
	if r.historyErr != nil {
		return nil, r.historyErr
	}
	return r.history[subjectID], nil
}

func (r *fakeRepo) GetHerdConceptionStats(_ context.Context, _ string) (domain.ConceptionStats, error) {
	return r.herd, nil
}

func (r *fakeRepo) CurrentLactation(_ context.Context, femaleID string) (*domain.LactationCycle, error) {
	return r.currentLactation[femaleID], nil
}

func (r *fakeRepo) CountCompletedCycles(_ context.Context, femaleID string) (int, error) {
	return r.parity[femaleID], nil
}

func (r *fakeRepo) ParturitionDates(_ context.Context, femaleID string) ([]time.Time, error) {
	return r.parturitions[femaleID], nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptrTime(t time.Time) *time.Time { return &t }

func ptrStr(s string) *string { return &s }

func femaleAged(id string, birth time.Time) domain.Animal {
	return domain.Animal{
		Base:       domain.Base{ID: id},
		Tag:        id,
		Sex:        domain.SexFemale,
		BirthDate:  &birth,
		PropertyID: "prop-1",
		Active:     true,
	}
}

func maleAged(id string, birth time.Time) domain.Animal {
	a := femaleAged(id, birth)
	a.Sex = domain.SexMale
	return a
}
