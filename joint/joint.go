// Package joint implements joint states, joint actions, and joint
// transitions: the cross products of (subsets of) agents' local states and
// actions that the CoRe policy search explores (spec.md §3).
package joint

import (
	"sort"
	"strconv"

	"github.com/agentlab/coresolver/agent"
	"github.com/agentlab/coresolver/bound"
	"github.com/agentlab/coresolver/domain"
)

// State is a mapping from agent to local state, all sharing the same
// time. A State may be partial (scoped to a connected component): its
// agent set is a subset of the instance's agents.
type State map[agent.ID]domain.State

// Agents returns the agent IDs present in s, sorted ascending — the
// stable enumeration order the design requires (spec.md §5 Ordering).
func (s State) Agents() []agent.ID {
	agents := make([]agent.ID, 0, len(s))
	for a := range s {
		agents = append(agents, a)
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i] < agents[j] })
	return agents
}

// CombinableWith reports whether s and other share no agent, and so can be
// combined into a single wider joint state.
func (s State) CombinableWith(other State) bool {
	for a := range s {
		if _, ok := other[a]; ok {
			return false
		}
	}
	return true
}

// Combine merges s and other into a new State over their (disjoint) union
// of agents. Panics if the two states are not combinable.
func (s State) Combine(other State) State {
	if !s.CombinableWith(other) {
		panic("joint: Combine: agent sets are not disjoint")
	}
	out := make(State, len(s)+len(other))
	for a, ls := range s {
		out[a] = ls
	}
	for a, ls := range other {
		out[a] = ls
	}
	return out
}

// Key returns a map-safe, order-independent key for s, suitable for use
// as the key of a search map.
func (s State) Key() string {
	agents := s.Agents()
	key := make([]byte, 0, 32*len(agents))
	for _, a := range agents {
		ls := s[a]
		k := ls.Key()
		key = append(key, []byte(strconv.Itoa(int(a))+":"+strconv.Itoa(ls.Time)+":"+k.Hash+"|")...)
	}
	return string(key)
}

// Action is a mapping from agent to the local action chosen for that
// agent in a joint action.
type Action map[agent.ID]agent.Action

// Transition is a single step of the joint-state search:
// (from, joint action, to, reward, probability, future-value bound).
type Transition struct {
	From        State
	Action      Action
	To          State
	Reward      bound.Value
	Probability float64
	Future      bound.Bound
}

// CombinableWith reports whether t and other cover disjoint agent sets in
// their From/To states.
func (t Transition) CombinableWith(other Transition) bool {
	return t.From.CombinableWith(other.From) && t.To.CombinableWith(other.To)
}

// Combine merges t and other into a single wider joint transition: reward
// vectors add, probabilities multiply, future bounds add, and states merge
// via State.Combine. Panics if the two transitions are not combinable.
func (t Transition) Combine(other Transition) Transition {
	return Transition{
		From:        t.From.Combine(other.From),
		Action:      combineActions(t.Action, other.Action),
		To:          t.To.Combine(other.To),
		Reward:      t.Reward.Add(other.Reward),
		Probability: t.Probability * other.Probability,
		Future:      t.Future.Add(other.Future),
	}
}

func combineActions(a, b Action) Action {
	out := make(Action, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
