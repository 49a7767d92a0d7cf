package breeding

import (
	"context"
	"fmt"
	"time"

	"herdcore/pkg/domain"
)

// Eligibility thresholds. Ages are evaluated at the proposed event date.
const (
	FemaleMinAgeMonths = 18
	MaleMinAgeMonths   = 24
	FemaleMaxAgeYears  = 15
	MaleMaxAgeYears    = 12
	// MinCalvingIntervalMonths is the prospective inter-calving floor, in
	// average-length months.
	MinCalvingIntervalMonths = 12
	// MaleRestDays is the minimum gap between natural matings for one male.
	MaleRestDays = 3
)

// EventInput describes a proposed breeding event prior to persistence.
type EventInput struct {
	PropertyID        string
	FemaleID          string
	MaleID            *string
	GeneticMaterialID *string
	DonorFemaleID     *string
	Technique         domain.BreedingTechnique
	EventDate         time.Time
}

// Validator decides whether animals may participate in a new breeding event.
// Each check is independent and pure given its inputs; violations surface as
// typed domain.IneligibleAnimalError values, never as silent filtering.
type Validator struct {
	repo Repository
}

// NewValidator constructs a validator over the given repository.
func NewValidator(repo Repository) *Validator {
	return &Validator{repo: repo}
}

// ValidateEvent runs every applicable check for the proposed event: female
// checks, technique/material consistency, and male or donor checks as the
// technique requires.
func (v *Validator) ValidateEvent(ctx context.Context, input EventInput) error {
	female, err := v.repo.GetAnimal(ctx, input.FemaleID)
	if err != nil {
		return err
	}
	if female.Sex != domain.SexFemale {
		return domain.InconsistentInputError{Field: "female_id", Detail: fmt.Sprintf("animal %s is not female", input.FemaleID)}
	}
	if err := v.ValidateFemale(ctx, female, input.EventDate); err != nil {
		return err
	}
	return v.validateTechnique(ctx, input)
}

// ValidateFemale runs the female-side checks: availability, age window,
// duplicate gestation, and the prospective inter-calving interval.
func (v *Validator) ValidateFemale(ctx context.Context, female domain.Animal, eventDate time.Time) error {
	if err := checkAvailability(female); err != nil {
		return err
	}
	if err := checkAgeWindow(female, eventDate, FemaleMinAgeMonths, FemaleMaxAgeYears); err != nil {
		return err
	}
	open, err := v.repo.GetActiveGestation(ctx, female.ID)
	if err != nil {
		return err
	}
	if open != nil {
		return domain.IneligibleAnimalError{
			AnimalID: female.ID,
			Reason:   domain.ReasonActiveGestation,
			Detail:   fmt.Sprintf("open breeding event %s", open.ID),
		}
	}
	last, err := v.repo.GetLastParturition(ctx, female.ID)
	if err != nil {
		return err
	}
	if last != nil {
		if gap := meanMonthsBetween(*last, eventDate); gap < MinCalvingIntervalMonths {
			return domain.IneligibleAnimalError{
				AnimalID: female.ID,
				Reason:   domain.ReasonIntervalTooShort,
				Detail:   fmt.Sprintf("%.1f months since last parturition", gap),
			}
		}
	}
	return nil
}

// ValidateMale runs the male-side checks. The usage-interval check applies to
// natural mating only.
func (v *Validator) ValidateMale(ctx context.Context, male domain.Animal, eventDate time.Time, technique domain.BreedingTechnique) error {
	if err := checkAvailability(male); err != nil {
		return err
	}
	if err := checkAgeWindow(male, eventDate, MaleMinAgeMonths, MaleMaxAgeYears); err != nil {
		return err
	}
	if technique != domain.TechniqueNaturalMating {
		return nil
	}
	last, err := v.repo.GetLastNaturalMating(ctx, male.ID)
	if err != nil {
		return err
	}
	if last != nil && daysBetween(*last, eventDate) < MaleRestDays {
		return domain.IneligibleAnimalError{
			AnimalID: male.ID,
			Reason:   domain.ReasonMaleOverused,
			Detail:   fmt.Sprintf("last natural mating on %s", last.Format("2006-01-02")),
		}
	}
	return nil
}

func (v *Validator) validateTechnique(ctx context.Context, input EventInput) error {
	switch input.Technique {
	case domain.TechniqueNaturalMating:
		if input.MaleID == nil || input.GeneticMaterialID != nil || input.DonorFemaleID != nil {
			return techniqueMismatch(input.FemaleID, "natural mating requires a male and no material or donor")
		}
		male, err := v.repo.GetAnimal(ctx, *input.MaleID)
		if err != nil {
			return err
		}
		if male.Sex != domain.SexMale {
			return domain.InconsistentInputError{Field: "male_id", Detail: fmt.Sprintf("animal %s is not male", male.ID)}
		}
		return v.ValidateMale(ctx, male, input.EventDate, input.Technique)
	case domain.TechniqueArtificialInsemination, domain.TechniqueFixedTimeAI:
		if input.GeneticMaterialID == nil || input.MaleID != nil || input.DonorFemaleID != nil {
			return techniqueMismatch(input.FemaleID, "insemination requires semen material and no male or donor")
		}
		return v.requireMaterial(ctx, input.FemaleID, *input.GeneticMaterialID, domain.MaterialSemen)
	case domain.TechniqueEmbryoTransfer:
		if input.GeneticMaterialID == nil || input.DonorFemaleID == nil || input.MaleID != nil {
			return techniqueMismatch(input.FemaleID, "embryo transfer requires embryo material and a donor female")
		}
		if err := v.requireMaterial(ctx, input.FemaleID, *input.GeneticMaterialID, domain.MaterialEmbryo); err != nil {
			return err
		}
		donor, err := v.repo.GetAnimal(ctx, *input.DonorFemaleID)
		if err != nil {
			return err
		}
		if donor.Sex != domain.SexFemale {
			return domain.InconsistentInputError{Field: "donor_female_id", Detail: fmt.Sprintf("animal %s is not female", donor.ID)}
		}
		if err := checkAvailability(donor); err != nil {
			return err
		}
		return checkAgeWindow(donor, input.EventDate, FemaleMinAgeMonths, FemaleMaxAgeYears)
	default:
		return domain.InconsistentInputError{Field: "technique", Detail: fmt.Sprintf("unknown technique %q", input.Technique)}
	}
}

func (v *Validator) requireMaterial(ctx context.Context, femaleID, materialID string, want domain.MaterialType) error {
	material, err := v.repo.GetGeneticMaterial(ctx, materialID)
	if err != nil {
		return err
	}
	if !material.Active {
		return techniqueMismatch(femaleID, fmt.Sprintf("material %s is inactive", material.ID))
	}
	if material.Type != want {
		return techniqueMismatch(femaleID, fmt.Sprintf("material %s is %s, expected %s", material.ID, material.Type, want))
	}
	return nil
}

func checkAvailability(a domain.Animal) error {
	if !a.Available() {
		return domain.IneligibleAnimalError{AnimalID: a.ID, Reason: domain.ReasonInactiveOrRemoved}
	}
	return nil
}

func checkAgeWindow(a domain.Animal, eventDate time.Time, minMonths, maxYears int) error {
	if a.BirthDate == nil {
		return domain.InconsistentInputError{Field: "birth_date", Detail: fmt.Sprintf("animal %s has no birth date", a.ID)}
	}
	if months := WholeMonths(*a.BirthDate, eventDate); months < minMonths {
		return domain.IneligibleAnimalError{
			AnimalID: a.ID,
			Reason:   domain.ReasonUnderage,
			Detail:   fmt.Sprintf("%d whole months at event date", months),
		}
	}
	if years := WholeYears(*a.BirthDate, eventDate); years > maxYears {
		return domain.IneligibleAnimalError{
			AnimalID: a.ID,
			Reason:   domain.ReasonOverage,
			Detail:   fmt.Sprintf("%d whole years at event date", years),
		}
	}
	return nil
}

func techniqueMismatch(animalID, detail string) error {
	return domain.IneligibleAnimalError{AnimalID: animalID, Reason: domain.ReasonTechniqueMismatch, Detail: detail}
}
