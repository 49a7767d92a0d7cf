// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by herdcore.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityAnimal identifies an individual animal record.
	EntityAnimal EntityType = "animal"
	// EntityBreedingEvent identifies a breeding event record.
	EntityBreedingEvent EntityType = "breeding_event"
	// EntityLactationCycle identifies a lactation cycle record.
	EntityLactationCycle EntityType = "lactation_cycle"
	// EntityGeneticMaterial identifies a genetic material record.
	EntityGeneticMaterial EntityType = "genetic_material"
)

// Sex identifies the biological sex of an animal.
type Sex string

// Animal sexes recognised by eligibility and scoring.
const (
	SexFemale Sex = "F"
	SexMale   Sex = "M"
)

// BreedingTechnique enumerates the supported insemination techniques.
type BreedingTechnique string

// Canonical breeding techniques. Natural mating uses a live male; the other
// techniques consume stored genetic material.
const (
	TechniqueArtificialInsemination BreedingTechnique = "artificial_insemination"
	TechniqueFixedTimeAI            BreedingTechnique = "fixed_time_ai"
	TechniqueEmbryoTransfer         BreedingTechnique = "embryo_transfer"
	TechniqueNaturalMating          BreedingTechnique = "natural_mating"
)

// EventStatus represents the lifecycle state of a breeding event.
type EventStatus string

// Breeding event lifecycle states. InProgress and Confirmed are the open
// states; Completed and Failed are terminal.
const (
	EventInProgress EventStatus = "in_progress"
	EventConfirmed  EventStatus = "confirmed"
	EventFailed     EventStatus = "failed"
	EventCompleted  EventStatus = "completed"
)

// Open reports whether the status still occupies the female's gestation slot.
func (s EventStatus) Open() bool {
	return s == EventInProgress || s == EventConfirmed
}

// Terminal reports whether the status admits no further transitions.
func (s EventStatus) Terminal() bool {
	return s == EventCompleted || s == EventFailed
}

// BirthType classifies the outcome recorded when a birth is registered.
type BirthType string

// Birth outcomes. Only live outcomes open a lactation cycle.
const (
	BirthNormal   BirthType = "normal"
	BirthCesarean BirthType = "cesarean"
	BirthAbortion BirthType = "abortion"
)

// Live reports whether the outcome produced a live calf.
func (b BirthType) Live() bool {
	return b == BirthNormal || b == BirthCesarean
}

// CycleStatus represents the state of a lactation cycle.
type CycleStatus string

// Lactation cycle states.
const (
	CycleLactating CycleStatus = "lactating"
	CycleDry       CycleStatus = "dry"
)

// MaterialType enumerates stored genetic material kinds.
type MaterialType string

// Genetic material types handled by the breeding techniques.
const (
	MaterialSemen  MaterialType = "semen"
	MaterialEmbryo MaterialType = "embryo"
	MaterialOocyte MaterialType = "oocyte"
)

// DefaultLactationDays is the standard lactation duration applied when a
// cycle is created without an explicit duration.
const DefaultLactationDays = 305

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Animal represents an individual animal in the herd registry. The breeding
// core reads animals but never mutates them directly.
type Animal struct {
	Base
	Tag        string     `json:"tag"`
	Name       string     `json:"name"`
	Sex        Sex        `json:"sex"`
	BirthDate  *time.Time `json:"birth_date"`
	BreedID    *string    `json:"breed_id"`
	PropertyID string     `json:"property_id"`
	Active     bool       `json:"active"`
	DeletedAt  *time.Time `json:"deleted_at"`
}

// Available reports whether the animal is active and not soft-deleted.
func (a Animal) Available() bool {
	return a.Active && a.DeletedAt == nil
}

// GeneticMaterial tracks stored semen, embryos, or oocytes.
type GeneticMaterial struct {
	Base
	Code           string       `json:"code"`
	Type           MaterialType `json:"type"`
	Active         bool         `json:"active"`
	SourceAnimalID *string      `json:"source_animal_id"`
	PropertyID     string       `json:"property_id"`
}

// BreedingEvent records a mating or insemination and its outcome. Events are
// soft-deleted, never removed.
type BreedingEvent struct {
	Base
	PropertyID        string            `json:"property_id"`
	FemaleID          string            `json:"female_id"`
	MaleID            *string           `json:"male_id"`
	GeneticMaterialID *string           `json:"genetic_material_id"`
	DonorFemaleID     *string           `json:"donor_female_id"`
	Technique         BreedingTechnique `json:"technique"`
	EventDate         time.Time         `json:"event_date"`
	Status            EventStatus       `json:"status"`
	BirthType         *BirthType        `json:"birth_type"`
	BirthDate         *time.Time        `json:"birth_date"`
	DeletedAt         *time.Time        `json:"deleted_at"`
}

// LactationCycle is opened as a side effect of a completed live birth.
type LactationCycle struct {
	Base
	FemaleID        string      `json:"female_id"`
	BreedingEventID *string     `json:"breeding_event_id"`
	ParturitionDate time.Time   `json:"parturition_date"`
	Status          CycleStatus `json:"status"`
	DurationDays    int         `json:"duration_days"`
	ProjectedDryOff time.Time   `json:"projected_dry_off"`
}

// ReproductiveStatus is the structured snapshot attached to a score result.
type ReproductiveStatus struct {
	AgeMonths      int  `json:"age_months"`
	Parity         int  `json:"parity"`
	DaysPostpartum *int `json:"days_postpartum,omitempty"`
	Lactating      bool `json:"lactating"`
	SampleSize     int  `json:"sample_size,omitempty"`
}

// ScoreResult carries a candidate's aptitude or value score. It is derived,
// never persisted.
type ScoreResult struct {
	AnimalID       string             `json:"animal_id"`
	Score          float64            `json:"score"`
	Confidence     string             `json:"confidence,omitempty"`
	Justifications []string           `json:"justifications"`
	Status         ReproductiveStatus `json:"status"`
}

// BreedingOutcome summarizes one historical event with a recorded birth type,
// as consumed by the male value scorer.
type BreedingOutcome struct {
	EventDate time.Time `json:"event_date"`
	BirthType BirthType `json:"birth_type"`
}

// ConceptionStats aggregates qualifying outcomes across a property.
type ConceptionStats struct {
	Successes int `json:"successes"`
	Total     int `json:"total"`
}

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before ChangePayload
	After  ChangePayload
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)
