package domain

import "fmt"

// IneligibilityReason codes the business rule that rejected a candidate.
type IneligibilityReason string

// Eligibility rejection reasons surfaced to callers. They are never coerced
// into a generic failure.
const (
	ReasonInactiveOrRemoved IneligibilityReason = "inactive_or_removed"
	ReasonUnderage          IneligibilityReason = "underage"
	ReasonOverage           IneligibilityReason = "overage"
	ReasonActiveGestation   IneligibilityReason = "active_gestation"
	ReasonIntervalTooShort  IneligibilityReason = "interval_too_short"
	ReasonMaleOverused      IneligibilityReason = "male_overused"
	ReasonTechniqueMismatch IneligibilityReason = "technique_mismatch"
)

// NotFoundError reports a missing animal, event, cycle, or material.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// IneligibleAnimalError is the typed rejection raised by the eligibility
// validator instead of silently filtering a candidate.
type IneligibleAnimalError struct {
	AnimalID string
	Reason   IneligibilityReason
	Detail   string
}

func (e IneligibleAnimalError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("animal %s ineligible: %s", e.AnimalID, e.Reason)
	}
	return fmt.Sprintf("animal %s ineligible: %s (%s)", e.AnimalID, e.Reason, e.Detail)
}

// InvalidTransitionError reports a lifecycle operation applied in the wrong state.
type InvalidTransitionError struct {
	EventID string
	From    EventStatus
	To      EventStatus
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("breeding event %s cannot move from %s to %s", e.EventID, e.From, e.To)
}

// InconsistentInputError reports a malformed request that no rule code covers,
// such as an unknown technique.
type InconsistentInputError struct {
	Field  string
	Detail string
}

func (e InconsistentInputError) Error() string {
	return fmt.Sprintf("inconsistent input %s: %s", e.Field, e.Detail)
}

// UpstreamError wraps a data-store collaborator failure.
type UpstreamError struct {
	Op  string
	Err error
}

func (e UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying failure for errors.Is/As chains.
func (e UpstreamError) Unwrap() error {
	return e.Err
}
