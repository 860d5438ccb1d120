package reward

import (
	"testing"

	"github.com/agentlab/coresolver/agent"
	"github.com/agentlab/coresolver/domain"
)

func TestAssign_SingleAgentRewardIgnoresHeuristic(t *testing.T) {
	specs := []domain.RewardSpec{{Scope: []agent.ID{2}}}
	for _, h := range []AssignHeuristic{Balanced, LowestDegree, HighestDegree, Random} {
		owners := Assign(specs, h, 1)
		if len(owners[2]) != 1 || owners[2][0] != 0 {
			t.Errorf("heuristic %v: owners[2] = %v, want [0]", h, owners[2])
		}
	}
}

func TestAssign_BalancedPrefersFirstOccurrenceOnTie(t *testing.T) {
	specs := []domain.RewardSpec{
		{Scope: []agent.ID{0, 1}},
		{Scope: []agent.ID{0, 1}},
		{Scope: []agent.ID{0, 1}},
	}
	owners := Assign(specs, Balanced, 0)

	// Balanced picks the scope member with the fewest rewards assigned so
	// far, and the first member wins a tie: reward 0 ties at 0-0 and goes
	// to agent 0, reward 1 goes to agent 1 (1-0), reward 2 ties at 1-1 and
	// goes to agent 0.
	if len(owners[0]) != 2 || owners[0][0] != 0 || owners[0][1] != 2 {
		t.Errorf("owners[0] = %v, want [0 2]", owners[0])
	}
	if len(owners[1]) != 1 || owners[1][0] != 1 {
		t.Errorf("owners[1] = %v, want [1]", owners[1])
	}
}

func TestAssign_LowestDegreePrefersLessConnectedAgent(t *testing.T) {
	specs := []domain.RewardSpec{
		{Scope: []agent.ID{0, 1}},
		{Scope: []agent.ID{0, 2}},
		{Scope: []agent.ID{0, 1}},
	}
	// Degree: agent 0 -> 3, agent 1 -> 2, agent 2 -> 1.
	owners := Assign(specs, LowestDegree, 0)

	if got := owners[0]; len(got) != 0 {
		t.Errorf("owners[0] = %v, want agent 0 (highest degree) to own nothing", got)
	}
	if len(owners[1])+len(owners[2]) != 3 {
		t.Errorf("owners[1]+owners[2] should cover all 3 rewards, got %v / %v", owners[1], owners[2])
	}
}

func TestAssign_HighestDegreePrefersMoreConnectedAgent(t *testing.T) {
	specs := []domain.RewardSpec{
		{Scope: []agent.ID{0, 1}},
		{Scope: []agent.ID{0, 2}},
	}
	// Degree: agent 0 -> 2, agent 1 -> 1, agent 2 -> 1.
	owners := Assign(specs, HighestDegree, 0)

	if len(owners[0]) != 2 {
		t.Errorf("owners[0] = %v, want agent 0 (highest degree) to own both rewards", owners[0])
	}
}

func TestAssign_EveryRewardGetsExactlyOneOwner(t *testing.T) {
	specs := []domain.RewardSpec{
		{Scope: []agent.ID{3}},
		{Scope: []agent.ID{0, 1, 2}},
		{Scope: []agent.ID{1, 2}},
	}
	owners := Assign(specs, Random, 42)

	seen := make(map[int]int)
	for _, set := range owners {
		for _, idx := range set {
			seen[idx]++
		}
	}
	for idx := range specs {
		if seen[idx] != 1 {
			t.Errorf("reward %d assigned %d times, want exactly 1", idx, seen[idx])
		}
	}
}

func TestAssign_RandomIsReproducibleForAFixedSeed(t *testing.T) {
	specs := []domain.RewardSpec{
		{Scope: []agent.ID{0, 1, 2, 3, 4}},
		{Scope: []agent.ID{0, 1, 2, 3, 4}},
		{Scope: []agent.ID{0, 1, 2, 3, 4}},
	}
	a := Assign(specs, Random, 7)
	b := Assign(specs, Random, 7)

	for agentID, wantSet := range a {
		gotSet := b[agentID]
		if len(gotSet) != len(wantSet) {
			t.Fatalf("seed 7 not reproducible: agent %d owns %v then %v", agentID, wantSet, gotSet)
		}
		for i := range wantSet {
			if wantSet[i] != gotSet[i] {
				t.Fatalf("seed 7 not reproducible: agent %d owns %v then %v", agentID, wantSet, gotSet)
			}
		}
	}
}
