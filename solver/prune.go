package solver

import (
	"context"

	"github.com/agentlab/coresolver/bound"
	"github.com/agentlab/coresolver/joint"
)

// outerPrune removes every candidate whose admissible upper bound
// cannot beat the best admissible lower bound among all candidates
// (spec.md §4.4.2 step 7). The candidate achieving L_max always
// survives its own filter (U >= L by construction), so at least one
// candidate always remains.
func (in *Instance) outerPrune(candidates []jaCandidate) []jaCandidate {
	if len(candidates) == 0 {
		return candidates
	}

	weights := in.Settings.Weights
	lmax := candidates[0].bound.L.WeightedTotal(weights)
	for _, c := range candidates[1:] {
		if v := c.bound.L.WeightedTotal(weights); v > lmax {
			lmax = v
		}
	}

	survivors := make([]jaCandidate, 0, len(candidates))
	for _, c := range candidates {
		in.Stats.PruneAttempts++
		if c.bound.U.WeightedTotal(weights) < lmax-Epsilon {
			in.Stats.ActionsPrunedOuter++
			continue
		}
		survivors = append(survivors, c)
	}
	return survivors
}

// selectBest evaluates every surviving candidate's true expected value
// by recursing decoupleCRI on each of its successors, tracking the
// running best and, when BBTightening is enabled, re-pruning the
// remaining unevaluated candidates every time the running best tightens
// L_max (spec.md §4.4.2 step 8).
func (in *Instance) selectBest(ctx context.Context, s joint.State, survivors []jaCandidate) (*OptTransition, error) {
	skip := make([]bool, len(survivors))

	haveLmax := false
	lmax := 0.0
	if in.Settings.BBTightening {
		weights := in.Settings.Weights
		for _, c := range survivors {
			v := c.bound.L.WeightedTotal(weights)
			if !haveLmax || v > lmax {
				lmax = v
				haveLmax = true
			}
		}
	}

	haveBest := false
	bestScalar := 0.0
	var best *OptTransition

	for i, cand := range survivors {
		if skip[i] {
			in.Stats.ActionsPrunedInner++
			continue
		}
		in.Stats.JointActionsEvaluated++

		value := bound.NewValue(in.Settings.ObjectiveNames)
		transitions := make([]joint.Transition, 0, len(cand.successors))
		for _, succ := range cand.successors {
			subValue, err := in.decoupleCRI(ctx, succ.state)
			if err != nil {
				return nil, err
			}
			contribution := succ.reward.Add(subValue).Scale(succ.probability)
			value = value.Add(contribution)

			transitions = append(transitions, joint.Transition{
				From:        s,
				Action:      cand.action,
				To:          succ.state,
				Reward:      succ.reward,
				Probability: succ.probability,
				Future:      bound.From(subValue),
			})
		}

		scalar := value.WeightedTotal(in.Settings.Weights)
		if !haveBest || scalar > bestScalar+Epsilon {
			haveBest = true
			bestScalar = scalar
			best = &OptTransition{Value: value, Action: cand.action, Transitions: transitions}

			if in.Settings.BBTightening && haveLmax && lmax-scalar < Epsilon {
				lmax = scalar
				weights := in.Settings.Weights
				for j := i + 1; j < len(survivors); j++ {
					if !skip[j] && survivors[j].bound.U.WeightedTotal(weights) < lmax-Epsilon {
						skip[j] = true
					}
				}
			}
		}
	}

	if best == nil {
		return nil, newFailure(KindAdapterViolation, nil, "no joint action survived evaluation at this joint state")
	}
	return best, nil
}
