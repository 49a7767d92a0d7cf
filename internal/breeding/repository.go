package breeding

import (
	"context"
	"time"

	"herdcore/pkg/domain"
)

// Repository is the data-store collaborator surface consumed by the engine.
// Implementations must provide bounded request/response reads; they may fail
// but must not hang. The engine itself performs no writes through this
// interface except via the Lifecycle store.
type Repository interface {
	// GetAnimal returns the animal or a domain.NotFoundError.
	GetAnimal(ctx context.Context, id string) (domain.Animal, error)
	// ListEligibleFemales returns active females of the property at or above
	// the given age floor in whole months. The age ceiling is enforced by the
	// caller.
	ListEligibleFemales(ctx context.Context, propertyID string, minAgeMonths int) ([]domain.Animal, error)
	// ListEligibleMales is the male counterpart of ListEligibleFemales.
	ListEligibleMales(ctx context.Context, propertyID string, minAgeMonths int) ([]domain.Animal, error)
	// GetActiveGestation returns the female's open breeding event, or nil.
	GetActiveGestation(ctx context.Context, femaleID string) (*domain.BreedingEvent, error)
	// GetLastParturition returns the female's most recent parturition date, or nil.
	GetLastParturition(ctx context.Context, femaleID string) (*time.Time, error)
	// GetLastNaturalMating returns the male's most recent natural-mating date, or nil.
	GetLastNaturalMating(ctx context.Context, maleID string) (*time.Time, error)
	// GetGeneticMaterial returns the material or a domain.NotFoundError.
	GetGeneticMaterial(ctx context.Context, id string) (domain.GeneticMaterial, error)
	// GetBreedingHistory returns the outcomes with a recorded birth type for a
	// male or one of his genetic materials.
	GetBreedingHistory(ctx context.Context, subjectID string) ([]domain.BreedingOutcome, error)
	// GetHerdConceptionStats aggregates qualifying outcomes across the property.
	GetHerdConceptionStats(ctx context.Context, propertyID string) (domain.ConceptionStats, error)
	// CurrentLactation returns the female's open lactation cycle, or nil.
	CurrentLactation(ctx context.Context, femaleID string) (*domain.LactationCycle, error)
	// CountCompletedCycles returns the female's parity.
	CountCompletedCycles(ctx context.Context, femaleID string) (int, error)
	// ParturitionDates returns the female's parturition dates in ascending order.
	ParturitionDates(ctx context.Context, femaleID string) ([]time.Time, error)
}

// LifecycleStore is the write surface used by the breeding-event lifecycle.
type LifecycleStore interface {
	GetBreedingEvent(ctx context.Context, id string) (domain.BreedingEvent, error)
	UpdateBreedingEvent(ctx context.Context, id string, mutator func(*domain.BreedingEvent) error) (domain.BreedingEvent, error)
	CreateLactationCycle(ctx context.Context, cycle domain.LactationCycle) (domain.LactationCycle, error)
	UpdateLactationCycle(ctx context.Context, id string, mutator func(*domain.LactationCycle) error) (domain.LactationCycle, error)
}

// ReminderScheduler queues a dry-off reminder. Scheduling is best effort:
// lifecycle transitions log and swallow scheduler failures.
type ReminderScheduler interface {
	ScheduleDryOffReminder(ctx context.Context, femaleID, cycleID string, remindAt time.Time) error
}
