package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	CreateAnimal(Animal) (Animal, error)
	UpdateAnimal(id string, mutator func(*Animal) error) (Animal, error)
	CreateGeneticMaterial(GeneticMaterial) (GeneticMaterial, error)
	UpdateGeneticMaterial(id string, mutator func(*GeneticMaterial) error) (GeneticMaterial, error)
	CreateBreedingEvent(BreedingEvent) (BreedingEvent, error)
	UpdateBreedingEvent(id string, mutator func(*BreedingEvent) error) (BreedingEvent, error)
	CreateLactationCycle(LactationCycle) (LactationCycle, error)
	UpdateLactationCycle(id string, mutator func(*LactationCycle) error) (LactationCycle, error)
	FindAnimal(id string) (Animal, bool)
	FindBreedingEvent(id string) (BreedingEvent, bool)
	FindLactationCycle(id string) (LactationCycle, bool)
	FindGeneticMaterial(id string) (GeneticMaterial, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView = RuleView

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetAnimal(id string) (Animal, bool)
	ListAnimals() []Animal
	GetBreedingEvent(id string) (BreedingEvent, bool)
	ListBreedingEvents() []BreedingEvent
	GetLactationCycle(id string) (LactationCycle, bool)
	ListLactationCycles() []LactationCycle
	GetGeneticMaterial(id string) (GeneticMaterial, bool)
	ListGeneticMaterials() []GeneticMaterial
}
