package provider

import "vendora/internal/model"

// MaxAttempts caps the number of fallback rungs tried for any plan family.
const MaxAttempts = 2

// Rung is one (provider, external plan id) pair in a fallback ladder.
type Rung struct {
	Provider       string
	ExternalPlanID string
}

// Ladder maps a plan family to its ordered fallback rungs, tried only after
// the plan's own provider binding fails. Every rung in a family must deliver
// the exact bundle the plan sells, just through a different vendor; a family
// therefore never mixes price points. Plans without a family (or with an
// unknown one) get no fallback.
type Ladder map[string][]Rung

// DefaultLadder holds the production fallback rungs. MTN SME wholesale codes
// flake often enough that the same bundle from the tertiary vendor beats a
// hard failure.
func DefaultLadder() Ladder {
	return Ladder{
		"mtn-sme-1gb": {{Provider: A4BData, ExternalPlanID: "1"}},
		"mtn-sme-2gb": {{Provider: A4BData, ExternalPlanID: "2"}},
	}
}

// Resolve returns the ordered attempts for a plan: the plan's own
// (provider, external id) binding first, then the family's fallback rungs.
// Never more than MaxAttempts and never empty.
func (l Ladder) Resolve(plan *model.Plan) []Rung {
	rungs := []Rung{{Provider: plan.Provider, ExternalPlanID: plan.ExternalPlanID}}
	for _, r := range l[plan.Family] {
		if len(rungs) == MaxAttempts {
			break
		}
		if r == rungs[0] {
			continue
		}
		rungs = append(rungs, r)
	}
	return rungs
}
