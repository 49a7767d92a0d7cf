package core

import (
	"context"
	"fmt"

	"herdcore/pkg/domain"
)

// GestationOverlapRule blocks a commit that would leave a female with more
// than one open breeding event. Running inside the transaction boundary makes
// the single-gestation invariant hold even when two events for the same
// female are created concurrently.
func GestationOverlapRule() domain.Rule {
	return gestationOverlapRule{}
}

type gestationOverlapRule struct{}

func (gestationOverlapRule) Name() string { return "gestation_overlap" }

func (gestationOverlapRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityBreedingEvent {
			continue
		}
		event, ok := domain.DecodeChangePayload[domain.BreedingEvent](change.After)
		if !ok {
			continue
		}
		if !event.Status.Open() || event.DeletedAt != nil {
			continue
		}
		for _, other := range view.ListBreedingEvents() {
			if other.ID == event.ID || other.FemaleID != event.FemaleID {
				continue
			}
			if other.DeletedAt != nil || !other.Status.Open() {
				continue
			}
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "gestation_overlap",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("female %s already has open breeding event %s", event.FemaleID, other.ID),
				Entity:   domain.EntityBreedingEvent,
				EntityID: event.ID,
			})
			break
		}
	}
	return res, nil
}
