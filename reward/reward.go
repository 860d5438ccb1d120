// Package reward implements the CRG-level Reward wrapper, the
// shared-reward rule container, and the reward-assignment heuristics of
// spec.md §3-4.2.
package reward

import (
	"github.com/agentlab/coresolver/agent"
	"github.com/agentlab/coresolver/bound"
	"github.com/agentlab/coresolver/domain"
	"github.com/agentlab/coresolver/joint"
)

// Reward is the CRG-level wrapper around a domain.RewardSpec: it knows
// its scope (the agents it reads) and can compute its contribution to a
// local transition, plus the two independence predicates the CRG builder
// and the policy search rely on.
type Reward struct {
	Spec  domain.RewardSpec
	Owner agent.ID

	// index is this reward's position in the instance-wide RewardSpec
	// list, used to build the domain.RewardSet passed to the adapter's
	// Coupler methods.
	index int

	// objectiveIndex is the position of Spec.Objective within the
	// solve's objective-name list, precomputed so Reward(...) does not
	// need to search by name on every call.
	objectiveIndex int
	objectiveNames []string
}

// New returns a Reward for the given spec, owned by owner, at position
// index in the instance's reward list, contributing to the named
// objective at objectiveIndex within objectiveNames.
func New(spec domain.RewardSpec, owner agent.ID, index int, objectiveNames []string, objectiveIndex int) *Reward {
	return &Reward{
		Spec:           spec,
		Owner:          owner,
		index:          index,
		objectiveIndex: objectiveIndex,
		objectiveNames: objectiveNames,
	}
}

// Index returns this reward's position in the instance-wide RewardSpec
// list, the same index domain.RewardSet members refer to.
func (r *Reward) Index() int { return r.index }

// Scope returns the agents this reward reads.
func (r *Reward) Scope() []agent.ID { return r.Spec.Scope }

// ScopeContains reports whether a is in this reward's scope.
func (r *Reward) ScopeContains(a agent.ID) bool {
	for _, s := range r.Spec.Scope {
		if s == a {
			return true
		}
	}
	return false
}

// rewardSet returns the single-element domain.RewardSet identifying this
// reward to the adapter's Coupler methods.
func (r *Reward) rewardSet() domain.RewardSet { return domain.RewardSet{r.index} }

// Reward computes this reward's vector-valued contribution to a local
// transition, at the transition's destination time step, against the
// instance horizon h.
func (r *Reward) Reward(t domain.LocalTransition, h int) bound.Value {
	v := bound.NewValue(r.objectiveNames)
	contribution := r.Spec.Func.Eval(t.To.Time, h)
	return v.Add(bound.FromSlice(r.objectiveNames, oneHot(len(r.objectiveNames), r.objectiveIndex, contribution)))
}

func oneHot(n, idx int, val float64) []float64 {
	out := make([]float64, n)
	if idx >= 0 && idx < n {
		out[idx] = val
	}
	return out
}

// LocalCRI reports whether this reward is no longer influenced by any
// future behavior of its other scope agents, reachable from state s
// (spec.md §3's "local CRI" shortcut).
//
// A singleton-scope reward (this reward only reads its owner) is always
// locally independent. Otherwise, LocalCRI asks the adapter directly: for
// every action available to the owner at s and every possible successor,
// is every other scope agent free of both action-dependency and
// state-influence coupling through this reward? If so, nothing any other
// agent does can still change this reward's value from s onward.
func (r *Reward) LocalCRI(adapter domain.Adapter, s domain.State) bool {
	if len(r.Spec.Scope) <= 1 {
		return true
	}
	rs := r.rewardSet()
	for _, a := range adapter.AvailableActions(s) {
		for _, sp := range adapter.NewStates(s, a) {
			t := domain.LocalTransition{From: s, Action: a, To: sp}
			for _, other := range r.Spec.Scope {
				if other == s.Agent {
					continue
				}
				if len(adapter.DependentActions(rs, t, other)) > 0 {
					return false
				}
				if len(adapter.TransitionInfluence(rs, t, other)) > 0 {
					return false
				}
			}
		}
	}
	return true
}

// CRI reports whether agents a1 and a2 are independent through this
// reward from joint state js onward: from a1's local state in js, no
// action or state transition of a1 carries a dependency or influence
// token on a2 through this reward, and symmetrically for a2 on a1.
//
// If this reward's scope does not contain both a1 and a2, the pair is
// trivially independent through it (the reward cannot be the coupling
// mechanism between them).
func (r *Reward) CRI(adapter domain.Adapter, a1, a2 agent.ID, js joint.State) bool {
	if !r.ScopeContains(a1) || !r.ScopeContains(a2) {
		return true
	}
	s1, ok1 := js[a1]
	s2, ok2 := js[a2]
	if !ok1 || !ok2 {
		return true
	}
	if r.couples(adapter, a1, s1, a2) {
		return false
	}
	if r.couples(adapter, a2, s2, a1) {
		return false
	}
	return true
}

// couples reports whether owner, from state s, has any action whose
// dependency or influence set on other (through this reward) is nonempty.
func (r *Reward) couples(adapter domain.Adapter, owner agent.ID, s domain.State, other agent.ID) bool {
	rs := r.rewardSet()
	for _, a := range adapter.AvailableActions(s) {
		for _, sp := range adapter.NewStates(s, a) {
			t := domain.LocalTransition{From: s, Action: a, To: sp}
			if len(adapter.DependentActions(rs, t, other)) > 0 {
				return true
			}
			if len(adapter.TransitionInfluence(rs, t, other)) > 0 {
				return true
			}
		}
	}
	return false
}
