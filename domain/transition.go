package domain

import "github.com/agentlab/coresolver/agent"

// Action is an alias for agent.Action, re-exported so domain package
// callers rarely need to import agent directly just to name a transition.
type Action = agent.Action

// LocalTransition is a single agent's local step: the state it left, the
// action it took, and the state it landed in.
type LocalTransition struct {
	From   State
	Action Action
	To     State
}

// InfluenceToken is a state-influence token: a pair (from, to) describing
// a local state transition of some *other* agent that could alter a
// reward's value (spec.md §3, CRG transition "influences").
type InfluenceToken struct {
	From, To State
}

// Equal reports whether two influence tokens describe the same
// before/after pair.
func (tok InfluenceToken) Equal(other InfluenceToken) bool {
	return tok.From.Equal(other.From) && tok.To.Equal(other.To)
}

// RewardSet identifies a group of rewards the adapter should consider
// jointly when answering DependentActions/TransitionInfluence — the
// "reward_set" argument of spec.md §4.1. It is a set of indices into the
// instance's RewardSpec list returned by CreateRewards, not the specs
// themselves, so adapters can use it as a cheap, comparable lookup key.
type RewardSet []int

// Contains reports whether idx is a member of rs.
func (rs RewardSet) Contains(idx int) bool {
	for _, i := range rs {
		if i == idx {
			return true
		}
	}
	return false
}
