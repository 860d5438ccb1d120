package reward

import (
	"github.com/agentlab/coresolver/agent"
	"github.com/agentlab/coresolver/bound"
	"github.com/agentlab/coresolver/rewardfn"
)

// SharedRule maps a set of local actions (its scope) to a time-dependent
// reward function (spec.md §3 "Shared reward rule").
type SharedRule struct {
	Actions []agent.Action
	Func    rewardfn.Func
}

// actionSetEqual reports whether two action sets contain the same
// members, order-independent.
func actionSetEqual(a, b []agent.Action) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		found := false
		for _, y := range b {
			if x.Equal(y) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// actionSetSubset reports whether every member of a is present in b.
func actionSetSubset(a, b []agent.Action) bool {
	for _, x := range a {
		found := false
		for _, y := range b {
			if x.Equal(y) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// SharedRuleSet is the container of shared reward rules for an instance.
// Adding a rule whose action set is already present is a no-op.
type SharedRuleSet struct {
	rules       []SharedRule
	maxCardinal int
}

// NewSharedRuleSet returns an empty rule set.
func NewSharedRuleSet() *SharedRuleSet {
	return &SharedRuleSet{}
}

// AddRuleResult reports the outcome of AddRule.
type AddRuleResult int

const (
	RuleAdded AddRuleResult = iota
	RuleAlreadyPresent
)

// AddRule adds a rule mapping actions to fn. If a rule with the same
// action set (order-independent) is already present, AddRule is a no-op
// and returns RuleAlreadyPresent.
func (s *SharedRuleSet) AddRule(actions []agent.Action, fn rewardfn.Func) AddRuleResult {
	for _, r := range s.rules {
		if actionSetEqual(r.Actions, actions) {
			return RuleAlreadyPresent
		}
	}
	s.rules = append(s.rules, SharedRule{Actions: actions, Func: fn})
	if len(actions) > s.maxCardinal {
		s.maxCardinal = len(actions)
	}
	return RuleAdded
}

// Rules returns every rule in the set, in insertion order.
func (s *SharedRuleSet) Rules() []SharedRule { return s.rules }

// MaxCardinality returns the largest scope cardinality among the rules
// added so far.
func (s *SharedRuleSet) MaxCardinality() int { return s.maxCardinal }

// Contribution computes the reward contribution of every rule whose
// action set is a subset of firingActions (spec.md §9 Open Questions:
// "computeReward ... counts every rule whose action set is a subset of
// the currently executing actions" — the subset/containsAll semantics are
// retained as specified, not switched to an exact-match interpretation).
func (s *SharedRuleSet) Contribution(firingActions []agent.Action, t, h int, objectiveNames []string, objectiveIndex int) bound.Value {
	total := bound.NewValue(objectiveNames)
	for _, r := range s.rules {
		if actionSetSubset(r.Actions, firingActions) {
			v := r.Func.Eval(t, h)
			contribution := make([]float64, len(objectiveNames))
			if objectiveIndex >= 0 && objectiveIndex < len(contribution) {
				contribution[objectiveIndex] = v
			}
			total = total.Add(bound.FromSlice(objectiveNames, contribution))
		}
	}
	return total
}
