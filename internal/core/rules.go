// Package core wires the breeding engine to persistent storage and exposes
// the transactional service surface consumed by transports and the CLI.
package core

import (
	"herdcore/pkg/domain"
)

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(EventTransitionRule())
	engine.Register(GestationOverlapRule())
	return engine
}

func toSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
