package core

import (
	"context"
	"fmt"

	"herdcore/pkg/domain"
)

// EventTransitionRule blocks illegal state transitions on stateful entities.
func EventTransitionRule() domain.Rule {
	return eventTransitionRule{}
}

type eventTransitionRule struct{}

type transitionMachine struct {
	entity    domain.EntityType
	label     string
	terminal  map[string]struct{}
	valid     map[string]struct{}
	extractor func(payload domain.ChangePayload) (id string, state string, ok bool)
}

var transitionMachines = map[domain.EntityType]transitionMachine{
	domain.EntityBreedingEvent: {
		entity:   domain.EntityBreedingEvent,
		label:    "breeding event",
		terminal: toSet(string(domain.EventCompleted), string(domain.EventFailed)),
		valid: toSet(
			string(domain.EventInProgress),
			string(domain.EventConfirmed),
			string(domain.EventCompleted),
			string(domain.EventFailed),
		),
		extractor: func(payload domain.ChangePayload) (string, string, bool) {
			event, ok := domain.DecodeChangePayload[domain.BreedingEvent](payload)
			if !ok {
				return "", "", false
			}
			return event.ID, string(event.Status), true
		},
	},
	domain.EntityLactationCycle: {
		entity:   domain.EntityLactationCycle,
		label:    "lactation cycle",
		terminal: toSet(string(domain.CycleDry)),
		valid: toSet(
			string(domain.CycleLactating),
			string(domain.CycleDry),
		),
		extractor: func(payload domain.ChangePayload) (string, string, bool) {
			cycle, ok := domain.DecodeChangePayload[domain.LactationCycle](payload)
			if !ok {
				return "", "", false
			}
			return cycle.ID, string(cycle.Status), true
		},
	},
}

func (eventTransitionRule) Name() string { return "event_transition" }

func (eventTransitionRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		machine, ok := transitionMachines[change.Entity]
		if !ok {
			continue
		}

		afterID, newState, ok := machine.extractor(change.After)
		if ok {
			if _, valid := machine.valid[newState]; !valid {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "event_transition",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("%s %s is set to invalid state %s", machine.label, afterID, newState),
					Entity:   machine.entity,
					EntityID: afterID,
				})
				continue
			}
		}

		beforeID, beforeState, ok := machine.extractor(change.Before)
		if !ok {
			continue
		}
		if _, ok := machine.terminal[beforeState]; !ok {
			continue
		}
		afterID, afterState, ok := machine.extractor(change.After)
		if !ok {
			continue
		}
		if afterState != beforeState {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "event_transition",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("cannot move %s %s from terminal state %s to %s", machine.label, beforeID, beforeState, afterState),
				Entity:   machine.entity,
				EntityID: beforeID,
			})
		}
	}
	return res, nil
}
