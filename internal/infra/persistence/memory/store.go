// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"herdcore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

func mustPayload(label string, payload domain.ChangePayload, err error) domain.ChangePayload {
	if err != nil {
		panic(fmt.Errorf("memory store %s: %w", label, err))
	}
	return payload
}

type memoryState struct {
	animals   map[string]domain.Animal
	events    map[string]domain.BreedingEvent
	cycles    map[string]domain.LactationCycle
	materials map[string]domain.GeneticMaterial
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Animals   map[string]domain.Animal          `json:"animals"`
	Events    map[string]domain.BreedingEvent   `json:"breeding_events"`
	Cycles    map[string]domain.LactationCycle  `json:"lactation_cycles"`
	Materials map[string]domain.GeneticMaterial `json:"genetic_materials"`
}

func newMemoryState() memoryState {
	return memoryState{
		animals:   make(map[string]domain.Animal),
		events:    make(map[string]domain.BreedingEvent),
		cycles:    make(map[string]domain.LactationCycle),
		materials: make(map[string]domain.GeneticMaterial),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.animals {
		cloned.animals[k] = cloneAnimal(v)
	}
	for k, v := range s.events {
		cloned.events[k] = cloneEvent(v)
	}
	for k, v := range s.cycles {
		cloned.cycles[k] = cloneCycle(v)
	}
	for k, v := range s.materials {
		cloned.materials[k] = cloneMaterial(v)
	}
	return cloned
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneAnimal(a domain.Animal) domain.Animal {
	cp := a
	cp.BirthDate = clonePtr(a.BirthDate)
	cp.BreedID = clonePtr(a.BreedID)
	cp.DeletedAt = clonePtr(a.DeletedAt)
	return cp
}

func cloneEvent(e domain.BreedingEvent) domain.BreedingEvent {
	cp := e
	cp.MaleID = clonePtr(e.MaleID)
	cp.GeneticMaterialID = clonePtr(e.GeneticMaterialID)
	cp.DonorFemaleID = clonePtr(e.DonorFemaleID)
	cp.BirthType = clonePtr(e.BirthType)
	cp.BirthDate = clonePtr(e.BirthDate)
	cp.DeletedAt = clonePtr(e.DeletedAt)
	return cp
}

func cloneCycle(c domain.LactationCycle) domain.LactationCycle {
	cp := c
	cp.BreedingEventID = clonePtr(c.BreedingEventID)
	return cp
}

func cloneMaterial(m domain.GeneticMaterial) domain.GeneticMaterial {
	cp := m
	cp.SourceAnimalID = clonePtr(m.SourceAnimalID)
	return cp
}

// Store provides an in-memory transactional store for the core domain.
// Transactions run against a cloned state that replaces the committed state
// only after the rules engine accepts the change set.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *domain.RulesEngine
	nowFn  func() time.Time
	newID  func() string
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *domain.RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.NewString() },
	}
}

// SetClock overrides the store clock. Intended for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = now
}

// transaction represents a mutation set applied to the store state.
type transaction struct {
	store   *Store
	state   memoryState
	changes []domain.Change
	now     time.Time
}

var _ domain.Transaction = (*transaction)(nil)

// transactionView exposes a read-only snapshot of the transactional state to rules.
type transactionView struct {
	state *memoryState
}

var _ domain.RuleView = transactionView{}

// ListAnimals returns all animals within the transaction snapshot.
func (v transactionView) ListAnimals() []domain.Animal {
	out := make([]domain.Animal, 0, len(v.state.animals))
	for _, a := range v.state.animals {
		out = append(out, cloneAnimal(a))
	}
	return out
}

// ListBreedingEvents returns all breeding events.
func (v transactionView) ListBreedingEvents() []domain.BreedingEvent {
	out := make([]domain.BreedingEvent, 0, len(v.state.events))
	for _, e := range v.state.events {
		out = append(out, cloneEvent(e))
	}
	return out
}

// ListLactationCycles returns all lactation cycles.
func (v transactionView) ListLactationCycles() []domain.LactationCycle {
	out := make([]domain.LactationCycle, 0, len(v.state.cycles))
	for _, c := range v.state.cycles {
		out = append(out, cloneCycle(c))
	}
	return out
}

// ListGeneticMaterials returns all genetic materials.
func (v transactionView) ListGeneticMaterials() []domain.GeneticMaterial {
	out := make([]domain.GeneticMaterial, 0, len(v.state.materials))
	for _, m := range v.state.materials {
		out = append(out, cloneMaterial(m))
	}
	return out
}

// FindAnimal retrieves an animal by ID from the snapshot.
func (v transactionView) FindAnimal(id string) (domain.Animal, bool) {
	a, ok := v.state.animals[id]
	if !ok {
		return domain.Animal{}, false
	}
	return cloneAnimal(a), true
}

// FindBreedingEvent retrieves a breeding event by ID from the snapshot.
func (v transactionView) FindBreedingEvent(id string) (domain.BreedingEvent, bool) {
	e, ok := v.state.events[id]
	if !ok {
		return domain.BreedingEvent{}, false
	}
	return cloneEvent(e), true
}

// FindLactationCycle retrieves a lactation cycle by ID from the snapshot.
func (v transactionView) FindLactationCycle(id string) (domain.LactationCycle, bool) {
	c, ok := v.state.cycles[id]
	if !ok {
		return domain.LactationCycle{}, false
	}
	return cloneCycle(c), true
}

// FindGeneticMaterial retrieves genetic material by ID from the snapshot.
func (v transactionView) FindGeneticMaterial(id string) (domain.GeneticMaterial, bool) {
	m, ok := v.state.materials[id]
	if !ok {
		return domain.GeneticMaterial{}, false
	}
	return cloneMaterial(m), true
}

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		view := transactionView{state: &tx.state}
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(transactionView{state: &snapshot})
}

func (tx *transaction) recordChange(entity domain.EntityType, action domain.Action, before, after domain.ChangePayload) {
	tx.changes = append(tx.changes, domain.Change{Entity: entity, Action: action, Before: before, After: after})
}

func payloadOf[T any](label string, value T) domain.ChangePayload {
	payload, err := domain.NewChangePayloadFromValue(value)
	return mustPayload(label, payload, err)
}

// CreateAnimal stores a new animal within the transaction.
func (tx *transaction) CreateAnimal(a domain.Animal) (domain.Animal, error) {
	if a.ID == "" {
		a.ID = tx.store.newID()
	}
	if _, exists := tx.state.animals[a.ID]; exists {
		return domain.Animal{}, fmt.Errorf("animal %q already exists", a.ID)
	}
	a.CreatedAt = tx.now
	a.UpdatedAt = tx.now
	tx.state.animals[a.ID] = cloneAnimal(a)
	tx.recordChange(domain.EntityAnimal, domain.ActionCreate, domain.UndefinedChangePayload(), payloadOf("animal", a))
	return cloneAnimal(a), nil
}

// UpdateAnimal mutates an animal using the provided mutator function.
func (tx *transaction) UpdateAnimal(id string, mutator func(*domain.Animal) error) (domain.Animal, error) {
	current, ok := tx.state.animals[id]
	if !ok {
		return domain.Animal{}, domain.NotFoundError{Entity: domain.EntityAnimal, ID: id}
	}
	before := cloneAnimal(current)
	if err := mutator(&current); err != nil {
		return domain.Animal{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.animals[id] = cloneAnimal(current)
	tx.recordChange(domain.EntityAnimal, domain.ActionUpdate, payloadOf("animal", before), payloadOf("animal", current))
	return cloneAnimal(current), nil
}

// CreateGeneticMaterial stores a new material record.
func (tx *transaction) CreateGeneticMaterial(m domain.GeneticMaterial) (domain.GeneticMaterial, error) {
	if m.ID == "" {
		m.ID = tx.store.newID()
	}
	if _, exists := tx.state.materials[m.ID]; exists {
		return domain.GeneticMaterial{}, fmt.Errorf("genetic material %q already exists", m.ID)
	}
	m.CreatedAt = tx.now
	m.UpdatedAt = tx.now
	tx.state.materials[m.ID] = cloneMaterial(m)
	tx.recordChange(domain.EntityGeneticMaterial, domain.ActionCreate, domain.UndefinedChangePayload(), payloadOf("material", m))
	return cloneMaterial(m), nil
}

// UpdateGeneticMaterial mutates a material record.
func (tx *transaction) UpdateGeneticMaterial(id string, mutator func(*domain.GeneticMaterial) error) (domain.GeneticMaterial, error) {
	current, ok := tx.state.materials[id]
	if !ok {
		return domain.GeneticMaterial{}, domain.NotFoundError{Entity: domain.EntityGeneticMaterial, ID: id}
	}
	before := cloneMaterial(current)
	if err := mutator(&current); err != nil {
		return domain.GeneticMaterial{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.materials[id] = cloneMaterial(current)
	tx.recordChange(domain.EntityGeneticMaterial, domain.ActionUpdate, payloadOf("material", before), payloadOf("material", current))
	return cloneMaterial(current), nil
}

// CreateBreedingEvent stores a new breeding event.
func (tx *transaction) CreateBreedingEvent(e domain.BreedingEvent) (domain.BreedingEvent, error) {
	if e.ID == "" {
		e.ID = tx.store.newID()
	}
	if _, exists := tx.state.events[e.ID]; exists {
		return domain.BreedingEvent{}, fmt.Errorf("breeding event %q already exists", e.ID)
	}
	if e.Status == "" {
		e.Status = domain.EventInProgress
	}
	e.CreatedAt = tx.now
	e.UpdatedAt = tx.now
	tx.state.events[e.ID] = cloneEvent(e)
	tx.recordChange(domain.EntityBreedingEvent, domain.ActionCreate, domain.UndefinedChangePayload(), payloadOf("event", e))
	return cloneEvent(e), nil
}

// UpdateBreedingEvent mutates a breeding event.
func (tx *transaction) UpdateBreedingEvent(id string, mutator func(*domain.BreedingEvent) error) (domain.BreedingEvent, error) {
	current, ok := tx.state.events[id]
	if !ok {
		return domain.BreedingEvent{}, domain.NotFoundError{Entity: domain.EntityBreedingEvent, ID: id}
	}
	before := cloneEvent(current)
	if err := mutator(&current); err != nil {
		return domain.BreedingEvent{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.events[id] = cloneEvent(current)
	tx.recordChange(domain.EntityBreedingEvent, domain.ActionUpdate, payloadOf("event", before), payloadOf("event", current))
	return cloneEvent(current), nil
}

// CreateLactationCycle stores a new lactation cycle.
func (tx *transaction) CreateLactationCycle(c domain.LactationCycle) (domain.LactationCycle, error) {
	if c.ID == "" {
		c.ID = tx.store.newID()
	}
	if _, exists := tx.state.cycles[c.ID]; exists {
		return domain.LactationCycle{}, fmt.Errorf("lactation cycle %q already exists", c.ID)
	}
	if c.Status == "" {
		c.Status = domain.CycleLactating
	}
	c.CreatedAt = tx.now
	c.UpdatedAt = tx.now
	tx.state.cycles[c.ID] = cloneCycle(c)
	tx.recordChange(domain.EntityLactationCycle, domain.ActionCreate, domain.UndefinedChangePayload(), payloadOf("cycle", c))
	return cloneCycle(c), nil
}

// UpdateLactationCycle mutates a lactation cycle.
func (tx *transaction) UpdateLactationCycle(id string, mutator func(*domain.LactationCycle) error) (domain.LactationCycle, error) {
	current, ok := tx.state.cycles[id]
	if !ok {
		return domain.LactationCycle{}, domain.NotFoundError{Entity: domain.EntityLactationCycle, ID: id}
	}
	before := cloneCycle(current)
	if err := mutator(&current); err != nil {
		return domain.LactationCycle{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.cycles[id] = cloneCycle(current)
	tx.recordChange(domain.EntityLactationCycle, domain.ActionUpdate, payloadOf("cycle", before), payloadOf("cycle", current))
	return cloneCycle(current), nil
}

// FindAnimal retrieves an animal within the transaction state.
func (tx *transaction) FindAnimal(id string) (domain.Animal, bool) {
	return transactionView{state: &tx.state}.FindAnimal(id)
}

// FindBreedingEvent retrieves a breeding event within the transaction state.
func (tx *transaction) FindBreedingEvent(id string) (domain.BreedingEvent, bool) {
	return transactionView{state: &tx.state}.FindBreedingEvent(id)
}

// FindLactationCycle retrieves a lactation cycle within the transaction state.
func (tx *transaction) FindLactationCycle(id string) (domain.LactationCycle, bool) {
	return transactionView{state: &tx.state}.FindLactationCycle(id)
}

// FindGeneticMaterial retrieves genetic material within the transaction state.
func (tx *transaction) FindGeneticMaterial(id string) (domain.GeneticMaterial, bool) {
	return transactionView{state: &tx.state}.FindGeneticMaterial(id)
}

// Read helpers ---------------------------------------------------------------

// GetAnimal retrieves an animal by ID from committed state.
func (s *Store) GetAnimal(id string) (domain.Animal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.animals[id]
	if !ok {
		return domain.Animal{}, false
	}
	return cloneAnimal(a), true
}

// ListAnimals returns all animals from committed state.
func (s *Store) ListAnimals() []domain.Animal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Animal, 0, len(s.state.animals))
	for _, a := range s.state.animals {
		out = append(out, cloneAnimal(a))
	}
	return out
}

// GetBreedingEvent retrieves a breeding event by ID.
func (s *Store) GetBreedingEvent(id string) (domain.BreedingEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.state.events[id]
	if !ok {
		return domain.BreedingEvent{}, false
	}
	return cloneEvent(e), true
}

// ListBreedingEvents returns all breeding events.
func (s *Store) ListBreedingEvents() []domain.BreedingEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.BreedingEvent, 0, len(s.state.events))
	for _, e := range s.state.events {
		out = append(out, cloneEvent(e))
	}
	return out
}

// GetLactationCycle retrieves a lactation cycle by ID.
func (s *Store) GetLactationCycle(id string) (domain.LactationCycle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.cycles[id]
	if !ok {
		return domain.LactationCycle{}, false
	}
	return cloneCycle(c), true
}

// ListLactationCycles returns all lactation cycles.
func (s *Store) ListLactationCycles() []domain.LactationCycle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.LactationCycle, 0, len(s.state.cycles))
	for _, c := range s.state.cycles {
		out = append(out, cloneCycle(c))
	}
	return out
}

// GetGeneticMaterial retrieves genetic material by ID.
func (s *Store) GetGeneticMaterial(id string) (domain.GeneticMaterial, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.state.materials[id]
	if !ok {
		return domain.GeneticMaterial{}, false
	}
	return cloneMaterial(m), true
}

// ListGeneticMaterials returns all genetic materials.
func (s *Store) ListGeneticMaterials() []domain.GeneticMaterial {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.GeneticMaterial, 0, len(s.state.materials))
	for _, m := range s.state.materials {
		out = append(out, cloneMaterial(m))
	}
	return out
}

// ExportState clones the committed state into a serializable snapshot.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cloned := s.state.clone()
	return Snapshot{
		Animals:   cloned.animals,
		Events:    cloned.events,
		Cycles:    cloned.cycles,
		Materials: cloned.materials,
	}
}

// ImportState replaces the committed state from a snapshot. Nil maps hydrate
// as empty buckets.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := newMemoryState()
	for k, v := range snapshot.Animals {
		state.animals[k] = cloneAnimal(v)
	}
	for k, v := range snapshot.Events {
		state.events[k] = cloneEvent(v)
	}
	for k, v := range snapshot.Cycles {
		state.cycles[k] = cloneCycle(v)
	}
	for k, v := range snapshot.Materials {
		state.materials[k] = cloneMaterial(v)
	}
	s.state = state
}
