package solver

import (
	"github.com/agentlab/coresolver/agent"
	"github.com/agentlab/coresolver/bound"
	"github.com/agentlab/coresolver/crg"
	"github.com/agentlab/coresolver/domain"
	"github.com/agentlab/coresolver/joint"
)

// jointSuccessor is one realized outcome of a joint action: the
// successor joint state, its exact joint reward and probability, and
// the (admissible, not exact) future bound summed across every agent's
// CRG at that successor — used only for branch-and-bound pruning, never
// as the true continuation value.
type jointSuccessor struct {
	state       joint.State
	reward      bound.Value
	probability float64
	future      bound.Bound
}

// jaCandidate is one joint action available at a joint state, together
// with every one of its realized successors and the admissible value
// bound spec.md §4.4.2 step 7 prunes with.
type jaCandidate struct {
	action      joint.Action
	successors  []jointSuccessor
	bound       bound.Bound
}

// buildCandidates enumerates every joint action available at s (the
// Cartesian product of each present agent's CRG-available local
// actions) and, for each, every joint successor state (the Cartesian
// product of each agent's possible local successors), matching each
// agent's realized CRG transition via crg.Match (spec.md §4.4.2 steps
// 1-6).
func (in *Instance) buildCandidates(s joint.State, agents []agent.ID, infos map[agent.ID]*crg.StateInfo) ([]jaCandidate, error) {
	actionOptions := make(map[agent.ID][]domain.Action, len(agents))
	for _, a := range agents {
		actionOptions[a] = uniqueActions(infos[a])
	}

	jointActions := cartesianActions(agents, actionOptions)

	candidates := make([]jaCandidate, 0, len(jointActions))
	for _, ja := range jointActions {
		successorOptions := make(map[agent.ID][]domain.State, len(agents))
		for _, a := range agents {
			successorOptions[a] = uniqueSuccessors(infos[a], ja[a])
		}
		combos := cartesianStates(agents, successorOptions)

		successors := make([]jointSuccessor, 0, len(combos))
		probSum := 0.0
		jaBound := bound.Empty(in.Settings.ObjectiveNames)

		for _, combo := range combos {
			jr, jp, fb, err := in.matchJoint(s, ja, combo, agents)
			if err != nil {
				return nil, err
			}
			probSum += jp

			pair := bound.From(jr).Add(fb).Scale(jp)
			jaBound = jaBound.Add(pair)

			successors = append(successors, jointSuccessor{
				state:       combo,
				reward:      jr,
				probability: jp,
				future:      fb,
			})
		}

		if probSum < 1-Epsilon || probSum > 1+Epsilon {
			return nil, newFailure(KindAdapterViolation, nil, "joint action %v: successor probabilities sum to %f, not 1", ja, probSum)
		}

		candidates = append(candidates, jaCandidate{action: ja, successors: successors, bound: jaBound})
	}

	return candidates, nil
}

// matchJoint computes one joint transition's exact reward and
// probability (the product/sum of each agent's matched CRG transition)
// and the admissible future bound (the sum of each agent's CRG bound at
// its successor local state).
func (in *Instance) matchJoint(s joint.State, ja joint.Action, succ joint.State, agents []agent.ID) (bound.Value, float64, bound.Bound, error) {
	jointReward := bound.NewValue(in.Settings.ObjectiveNames)
	jointProb := 1.0
	futureBound := bound.Empty(in.Settings.ObjectiveNames)

	for _, a := range agents {
		info, ok := in.Graphs[a].Info(s[a])
		if !ok {
			return bound.Value{}, 0, bound.Bound{}, newFailure(KindAdapterViolation, nil, "agent %d local state has no CRG info", a)
		}

		other := in.Graphs[a].OtherAgents
		ctxA := crg.Context{
			Actions: make(map[agent.ID]domain.Action, len(other)),
			States:  make(map[agent.ID]domain.InfluenceToken, len(other)),
		}
		for _, g := range other {
			if act, ok := ja[g]; ok {
				ctxA.Actions[g] = act
				ctxA.States[g] = domain.InfluenceToken{From: s[g], To: succ[g]}
			}
		}

		tr, ok := crg.Match(info, ja[a], s[a], succ[a], other, ctxA)
		if !ok {
			return bound.Value{}, 0, bound.Bound{}, newFailure(KindAdapterViolation, nil, "no matching CRG transition for agent %d action %v", a, ja[a])
		}

		jointReward = jointReward.Add(tr.Reward)
		jointProb *= tr.Probability

		succInfo, ok := in.Graphs[a].Info(succ[a])
		if !ok {
			return bound.Value{}, 0, bound.Bound{}, newFailure(KindAdapterViolation, nil, "agent %d successor state has no CRG info", a)
		}
		futureBound = futureBound.Add(succInfo.Bound)
	}

	return jointReward, jointProb, futureBound, nil
}

// uniqueActions returns the distinct actions appearing in info's
// transitions, in first-seen order.
func uniqueActions(info *crg.StateInfo) []domain.Action {
	seen := make(map[domain.Action]bool)
	out := make([]domain.Action, 0, len(info.Transitions))
	for _, tr := range info.Transitions {
		if !seen[tr.Action] {
			seen[tr.Action] = true
			out = append(out, tr.Action)
		}
	}
	return out
}

// uniqueSuccessors returns the distinct successor local states reachable
// under action from info, in first-seen order.
func uniqueSuccessors(info *crg.StateInfo, action domain.Action) []domain.State {
	seen := make(map[domain.Key]bool)
	var out []domain.State
	for _, tr := range info.Transitions {
		if !tr.Action.Equal(action) {
			continue
		}
		k := tr.To.Key()
		if !seen[k] {
			seen[k] = true
			out = append(out, tr.To)
		}
	}
	return out
}

// cartesianActions returns the Cartesian product of every agent's action
// options as joint actions, iterating agents in the given (stable)
// order.
func cartesianActions(agents []agent.ID, options map[agent.ID][]domain.Action) []joint.Action {
	result := []joint.Action{{}}
	for _, a := range agents {
		var next []joint.Action
		for _, combo := range result {
			for _, act := range options[a] {
				c := make(joint.Action, len(combo)+1)
				for k, v := range combo {
					c[k] = v
				}
				c[a] = act
				next = append(next, c)
			}
		}
		result = next
	}
	return result
}

// cartesianStates returns the Cartesian product of every agent's local
// successor-state options as joint states.
func cartesianStates(agents []agent.ID, options map[agent.ID][]domain.State) []joint.State {
	result := []joint.State{{}}
	for _, a := range agents {
		var next []joint.State
		for _, combo := range result {
			for _, st := range options[a] {
				c := make(joint.State, len(combo)+1)
				for k, v := range combo {
					c[k] = v
				}
				c[a] = st
				next = append(next, c)
			}
		}
		result = next
	}
	return result
}
