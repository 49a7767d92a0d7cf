package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"herdcore/internal/breeding"
	"herdcore/pkg/domain"
)

// Service exposes the transactional breeding operations backed by a
// persistent store. All mutations pass through the store's rules engine;
// eligibility checks run up front so callers get typed reasons instead of
// generic rule violations.
type Service struct {
	store     domain.PersistentStore
	validator *breeding.Validator
	lifecycle *breeding.Lifecycle
	ranker    *breeding.Ranker
	reminders breeding.ReminderScheduler
	log       *zap.Logger
	metrics   MetricsRecorder
	now       func() time.Time
}

// Option customises service construction.
type Option func(*Service)

// WithLogger sets the service logger. A nil logger is ignored.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetricsRecorder attaches a metrics recorder to the service.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(s *Service) { s.metrics = rec }
}

// WithClock overrides the service clock. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithReminderScheduler attaches a dry-off reminder scheduler.
func WithReminderScheduler(sched breeding.ReminderScheduler) Option {
	return func(s *Service) { s.reminders = sched }
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   zap.NewNop(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	repo := storeRepository{store: store}
	s.validator = breeding.NewValidator(repo)
	s.ranker = breeding.NewRanker(repo).WithClock(s.now)
	s.lifecycle = breeding.NewLifecycle(storeLifecycle{store: store}, s.reminders, s.log).WithClock(s.now)
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

func (s *Service) observe(ctx context.Context, op string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	}
	if err != nil {
		s.log.Warn("operation failed", zap.String("operation", op), zap.Error(err))
		return
	}
	s.log.Debug("operation complete", zap.String("operation", op), zap.Duration("duration", time.Since(start)))
}

// RegisterAnimal persists a new animal record.
func (s *Service) RegisterAnimal(ctx context.Context, animal domain.Animal) (created domain.Animal, res domain.Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "register_animal", start, err) }(time.Now())
	res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var txErr error
		created, txErr = tx.CreateAnimal(animal)
		return txErr
	})
	return created, res, err
}

// UpdateAnimal mutates an animal using the provided mutator.
func (s *Service) UpdateAnimal(ctx context.Context, id string, mutator func(*domain.Animal) error) (updated domain.Animal, res domain.Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "update_animal", start, err) }(time.Now())
	res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateAnimal(id, mutator)
		return txErr
	})
	return updated, res, err
}

// DeactivateAnimal soft-deletes an animal. The record stays queryable for
// history and audit purposes but stops participating in breeding.
func (s *Service) DeactivateAnimal(ctx context.Context, id string) (domain.Animal, domain.Result, error) {
	removedAt := s.now()
	return s.UpdateAnimal(ctx, id, func(a *domain.Animal) error {
		a.Active = false
		a.DeletedAt = &removedAt
		return nil
	})
}

// RegisterGeneticMaterial persists a new genetic material record.
func (s *Service) RegisterGeneticMaterial(ctx context.Context, material domain.GeneticMaterial) (created domain.GeneticMaterial, res domain.Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "register_genetic_material", start, err) }(time.Now())
	res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var txErr error
		created, txErr = tx.CreateGeneticMaterial(material)
		return txErr
	})
	return created, res, err
}

// DeactivateGeneticMaterial marks stored material as unusable.
func (s *Service) DeactivateGeneticMaterial(ctx context.Context, id string) (updated domain.GeneticMaterial, res domain.Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "deactivate_genetic_material", start, err) }(time.Now())
	res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateGeneticMaterial(id, func(m *domain.GeneticMaterial) error {
			m.Active = false
			return nil
		})
		return txErr
	})
	return updated, res, err
}

// CreateBreedingEvent validates the proposed event and persists it in the
// in-progress state. Eligibility failures surface as typed errors before any
// write happens; the gestation overlap rule backstops concurrent creations at
// commit time.
func (s *Service) CreateBreedingEvent(ctx context.Context, input breeding.EventInput) (created domain.BreedingEvent, res domain.Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "create_breeding_event", start, err) }(time.Now())
	if err = s.validator.ValidateEvent(ctx, input); err != nil {
		return domain.BreedingEvent{}, domain.Result{}, err
	}
	event := domain.BreedingEvent{
		PropertyID:        input.PropertyID,
		FemaleID:          input.FemaleID,
		MaleID:            input.MaleID,
		GeneticMaterialID: input.GeneticMaterialID,
		DonorFemaleID:     input.DonorFemaleID,
		Technique:         input.Technique,
		EventDate:         input.EventDate,
		Status:            domain.EventInProgress,
	}
	res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var txErr error
		created, txErr = tx.CreateBreedingEvent(event)
		return txErr
	})
	return created, res, err
}

// ConfirmBreedingEvent moves an in-progress event to confirmed.
func (s *Service) ConfirmBreedingEvent(ctx context.Context, id string) (event domain.BreedingEvent, err error) {
	defer func(start time.Time) { s.observe(ctx, "confirm_breeding_event", start, err) }(time.Now())
	event, err = s.lifecycle.Confirm(ctx, id)
	return event, err
}

// FailBreedingEvent moves an open event to the failed terminal state.
func (s *Service) FailBreedingEvent(ctx context.Context, id string) (event domain.BreedingEvent, err error) {
	defer func(start time.Time) { s.observe(ctx, "fail_breeding_event", start, err) }(time.Now())
	event, err = s.lifecycle.Fail(ctx, id)
	return event, err
}

// RegisterBirth completes a confirmed event with a birth outcome, opening a
// lactation cycle for live births unless the caller opted out.
func (s *Service) RegisterBirth(ctx context.Context, input breeding.BirthInput) (outcome breeding.BirthOutcome, err error) {
	defer func(start time.Time) { s.observe(ctx, "register_birth", start, err) }(time.Now())
	outcome, err = s.lifecycle.RegisterBirth(ctx, input)
	return outcome, err
}

// DryOffCycle closes a lactating cycle.
func (s *Service) DryOffCycle(ctx context.Context, id string) (cycle domain.LactationCycle, err error) {
	defer func(start time.Time) { s.observe(ctx, "dry_off_cycle", start, err) }(time.Now())
	cycle, err = s.lifecycle.DryOff(ctx, id)
	return cycle, err
}

// RemoveBreedingEvent soft-deletes an event. Terminal events keep their
// outcome history; the record is only hidden from active queries.
func (s *Service) RemoveBreedingEvent(ctx context.Context, id string) (updated domain.BreedingEvent, res domain.Result, err error) {
	defer func(start time.Time) { s.observe(ctx, "remove_breeding_event", start, err) }(time.Now())
	removedAt := s.now()
	res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateBreedingEvent(id, func(e *domain.BreedingEvent) error {
			e.DeletedAt = &removedAt
			return nil
		})
		return txErr
	})
	return updated, res, err
}

// Recommend ranks breeding candidates for a property.
func (s *Service) Recommend(ctx context.Context, req breeding.RankRequest) (results []domain.ScoreResult, err error) {
	defer func(start time.Time) { s.observe(ctx, "recommend", start, err) }(time.Now())
	results, err = s.ranker.Rank(ctx, req)
	return results, err
}

// RecommendFemales ranks female candidates by aptitude score.
func (s *Service) RecommendFemales(ctx context.Context, propertyID string, limit int) ([]domain.ScoreResult, error) {
	return s.Recommend(ctx, breeding.RankRequest{PropertyID: propertyID, Sex: domain.SexFemale, Limit: limit})
}

// RecommendMales ranks male candidates by reproductive value score.
func (s *Service) RecommendMales(ctx context.Context, propertyID string, limit int) ([]domain.ScoreResult, error) {
	return s.Recommend(ctx, breeding.RankRequest{PropertyID: propertyID, Sex: domain.SexMale, Limit: limit})
}

// ScoreAnimal scores a single animal by id at the given date.
func (s *Service) ScoreAnimal(ctx context.Context, id string, asOf time.Time) (result domain.ScoreResult, err error) {
	defer func(start time.Time) { s.observe(ctx, "score_animal", start, err) }(time.Now())
	result, err = s.ranker.ScoreCandidate(ctx, id, asOf)
	return result, err
}

// GetAnimal fetches an animal by id.
func (s *Service) GetAnimal(_ context.Context, id string) (domain.Animal, error) {
	animal, ok := s.store.GetAnimal(id)
	if !ok {
		return domain.Animal{}, domain.NotFoundError{Entity: domain.EntityAnimal, ID: id}
	}
	return animal, nil
}

// ListAnimals returns all animals in the store.
func (s *Service) ListAnimals(_ context.Context) []domain.Animal {
	return s.store.ListAnimals()
}

// GetBreedingEvent fetches a breeding event by id.
func (s *Service) GetBreedingEvent(_ context.Context, id string) (domain.BreedingEvent, error) {
	event, ok := s.store.GetBreedingEvent(id)
	if !ok {
		return domain.BreedingEvent{}, domain.NotFoundError{Entity: domain.EntityBreedingEvent, ID: id}
	}
	return event, nil
}

// ListBreedingEvents returns all breeding events in the store.
func (s *Service) ListBreedingEvents(_ context.Context) []domain.BreedingEvent {
	return s.store.ListBreedingEvents()
}

// GetLactationCycle fetches a lactation cycle by id.
func (s *Service) GetLactationCycle(_ context.Context, id string) (domain.LactationCycle, error) {
	cycle, ok := s.store.GetLactationCycle(id)
	if !ok {
		return domain.LactationCycle{}, domain.NotFoundError{Entity: domain.EntityLactationCycle, ID: id}
	}
	return cycle, nil
}

// ListLactationCycles returns all lactation cycles in the store.
func (s *Service) ListLactationCycles(_ context.Context) []domain.LactationCycle {
	return s.store.ListLactationCycles()
}

// GetGeneticMaterial fetches stored genetic material by id.
func (s *Service) GetGeneticMaterial(_ context.Context, id string) (domain.GeneticMaterial, error) {
	material, ok := s.store.GetGeneticMaterial(id)
	if !ok {
		return domain.GeneticMaterial{}, domain.NotFoundError{Entity: domain.EntityGeneticMaterial, ID: id}
	}
	return material, nil
}

// ListGeneticMaterials returns all stored genetic material.
func (s *Service) ListGeneticMaterials(_ context.Context) []domain.GeneticMaterial {
	return s.store.ListGeneticMaterials()
}
