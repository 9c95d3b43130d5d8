package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendora/internal/model"
)

func TestLadderResolve_PlanBindingComesFirst(t *testing.T) {
	// The first attempt must fulfill the plan the user actually bought,
	// whatever the family's fallback table says.
	ladder := DefaultLadder()
	plan := &model.Plan{
		Family:         "mtn-sme-2gb",
		Provider:       Datastation,
		ExternalPlanID: "34",
	}

	rungs := ladder.Resolve(plan)
	require.Len(t, rungs, 2)
	assert.Equal(t, Datastation, rungs[0].Provider)
	assert.Equal(t, "34", rungs[0].ExternalPlanID)
	assert.Equal(t, A4BData, rungs[1].Provider)
	assert.Equal(t, "2", rungs[1].ExternalPlanID)
}

func TestLadderResolve_FamilyAddsFallbackRungs(t *testing.T) {
	ladder := Ladder{
		"glo-1gb": {{Provider: A4BData, ExternalPlanID: "7"}},
	}
	plan := &model.Plan{Family: "glo-1gb", Provider: SmePlug, ExternalPlanID: "205"}

	rungs := ladder.Resolve(plan)
	require.Len(t, rungs, 2)
	assert.Equal(t, Rung{Provider: SmePlug, ExternalPlanID: "205"}, rungs[0])
	assert.Equal(t, Rung{Provider: A4BData, ExternalPlanID: "7"}, rungs[1])
}

func TestLadderResolve_NoFamilyMeansSingleAttempt(t *testing.T) {
	ladder := DefaultLadder()
	plan := &model.Plan{Family: "", Provider: SmePlug, ExternalPlanID: "205"}

	rungs := ladder.Resolve(plan)
	require.Len(t, rungs, 1)
	assert.Equal(t, SmePlug, rungs[0].Provider)
	assert.Equal(t, "205", rungs[0].ExternalPlanID)
}

func TestLadderResolve_SkipsRungEqualToPlanBinding(t *testing.T) {
	ladder := Ladder{
		"fam": {
			{Provider: Datastation, ExternalPlanID: "32"},
			{Provider: A4BData, ExternalPlanID: "1"},
		},
	}
	plan := &model.Plan{Family: "fam", Provider: Datastation, ExternalPlanID: "32"}

	rungs := ladder.Resolve(plan)
	require.Len(t, rungs, 2)
	assert.Equal(t, Rung{Provider: A4BData, ExternalPlanID: "1"}, rungs[1])
}

func TestLadderResolve_CapsAtMaxAttempts(t *testing.T) {
	ladder := Ladder{
		"fam": {
			{Provider: "a", ExternalPlanID: "1"},
			{Provider: "b", ExternalPlanID: "2"},
			{Provider: "c", ExternalPlanID: "3"},
		},
	}
	rungs := ladder.Resolve(&model.Plan{Family: "fam", Provider: "z", ExternalPlanID: "9"})
	require.Len(t, rungs, MaxAttempts)
	assert.Equal(t, Rung{Provider: "z", ExternalPlanID: "9"}, rungs[0])
}

func TestLadderResolve_UnknownFamilyMeansSingleAttempt(t *testing.T) {
	ladder := DefaultLadder()
	plan := &model.Plan{Family: "does-not-exist", Provider: Datastation, ExternalPlanID: "51"}

	rungs := ladder.Resolve(plan)
	require.Len(t, rungs, 1)
	assert.Equal(t, Datastation, rungs[0].Provider)
}
