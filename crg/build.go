package crg

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/agentlab/coresolver/agent"
	"github.com/agentlab/coresolver/bound"
	"github.com/agentlab/coresolver/domain"
	"github.com/agentlab/coresolver/fset"
	"github.com/agentlab/coresolver/reward"
)

// ErrAdapterViolation wraps every error raised when the domain adapter
// breaks one of its documented contracts during a build (spec.md §4.4.5).
var ErrAdapterViolation = errors.New("crg: adapter violation")

// ErrTimeout wraps every error raised when the build's context is
// cancelled or its deadline elapses before the build completes (spec.md
// §4.4.5 "Timeout").
var ErrTimeout = errors.New("crg: timeout")

// Builder constructs one agent's Conditional Return Graph by recursively
// expanding local states, memoizing each visited state at most once
// (spec.md §4.3).
type Builder struct {
	Adapter domain.Adapter
	Agent   agent.ID

	// Owned is R(A): the rewards assigned to this agent. Their
	// contributions are the only ones summed into this graph's
	// transition rewards.
	Owned []*reward.Reward

	// Relevant is R(A) union every reward whose scope contains this
	// agent, used by the local-independence shortcut test (spec.md §4.3
	// step 3). It is always a superset of Owned.
	Relevant []*reward.Reward

	// ObjectiveNames names the vector components every bound.Value in
	// this graph carries.
	ObjectiveNames []string

	// Weights scalarizes a bound.Value for the independent-completion
	// argmax (spec.md §4.3.3), in the same order as ObjectiveNames.
	Weights []float64

	// Decouple enables the local-independence shortcut (§4.3 step 3).
	// Disabling it forces full dependency/influence expansion at every
	// state.
	Decouple bool

	graph *Graph
	owned domain.RewardSet
	other []agent.ID
}

// Build constructs the agent's CRG starting from the adapter's initial
// state for this agent.
func (b *Builder) Build(ctx context.Context) (*Graph, error) {
	b.other = otherAgents(b.Agent, b.Owned)
	b.owned = ownedRewardSet(b.Owned)
	b.graph = &Graph{
		Agent:       b.Agent,
		Initial:     b.Adapter.InitialState(b.Agent),
		OtherAgents: b.other,
		states:      make(map[domain.Key]*StateInfo),
	}

	if _, err := b.build(ctx, b.graph.Initial); err != nil {
		return nil, err
	}
	return b.graph, nil
}

func ownedRewardSet(owned []*reward.Reward) domain.RewardSet {
	rs := make(domain.RewardSet, 0, len(owned))
	for _, r := range owned {
		rs = append(rs, r.Index())
	}
	return rs
}

// otherAgents returns every agent other than self appearing in the scope
// of any owned reward, sorted by ID for a stable iteration order.
func otherAgents(self agent.ID, owned []*reward.Reward) []agent.ID {
	seen := make(map[agent.ID]struct{})
	for _, r := range owned {
		for _, a := range r.Scope() {
			if a != self {
				seen[a] = struct{}{}
			}
		}
	}
	out := make([]agent.ID, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// build is the memoized recursive entry point shared by the terminal,
// locally-independent, and normal-expansion cases (spec.md §4.3, steps
// 1-4).
func (b *Builder) build(ctx context.Context, s domain.State) (*StateInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if info, ok := b.graph.states[s.Key()]; ok {
		b.graph.Duplicates++
		return info, nil
	}
	if b.Adapter.IsTerminal(s) {
		if len(b.Adapter.AvailableActions(s)) != 0 {
			return nil, fmt.Errorf("%w: terminal state %+v has nonempty available actions", ErrAdapterViolation, s)
		}
		info := &StateInfo{Terminal: true, Bound: bound.Empty(b.ObjectiveNames)}
		b.graph.states[s.Key()] = info
		return info, nil
	}
	if b.Decouple && b.locallyIndependent(s) {
		return b.buildIndependent(ctx, s)
	}
	return b.buildNormal(ctx, s)
}

// locallyIndependent reports whether every reward in Relevant has
// already decoupled its future from every other scope agent, reachable
// from s (spec.md §3 "localCRI").
func (b *Builder) locallyIndependent(s domain.State) bool {
	for _, r := range b.Relevant {
		if !r.LocalCRI(b.Adapter, s) {
			return false
		}
	}
	return true
}

// buildNormal performs the full dependency/influence expansion of a
// non-terminal, not-yet-independent state (spec.md §4.3 step 4).
func (b *Builder) buildNormal(ctx context.Context, s domain.State) (*StateInfo, error) {
	actions := b.Adapter.AvailableActions(s)
	if len(actions) == 0 {
		return nil, fmt.Errorf("%w: non-terminal state %+v has no available actions", ErrAdapterViolation, s)
	}

	info := &StateInfo{}
	b.graph.states[s.Key()] = info

	var result bound.Bound
	haveResult := false
	var transitions []Transition

	for _, a := range actions {
		successors := b.Adapter.NewStates(s, a)
		if len(successors) == 0 {
			return nil, fmt.Errorf("%w: action %v from state %+v has no successors", ErrAdapterViolation, a, s)
		}
		probSum := 0.0
		for _, sp := range successors {
			t := domain.LocalTransition{From: s, Action: a, To: sp}
			prob := b.Adapter.TransitionProbability(t)
			probSum += prob

			successorInfo, err := b.build(ctx, sp)
			if err != nil {
				return nil, err
			}

			rewardVal := b.ownedReward(t)
			pairBound := bound.From(rewardVal).Add(successorInfo.Bound)
			if !haveResult {
				result = pairBound
				haveResult = true
			} else {
				result = result.Update(pairBound)
			}

			for _, br := range b.annotate(t) {
				transitions = append(transitions, Transition{
					Action:      a,
					From:        s,
					To:          sp,
					Dep:         br.dep,
					Influence:   br.influence,
					Reward:      rewardVal,
					Probability: prob,
				})
			}
		}
		if probSum < 1-1e-8 || probSum > 1+1e-8 {
			return nil, fmt.Errorf("%w: successor probabilities of action %v from state %+v sum to %f, not 1", ErrAdapterViolation, a, s, probSum)
		}
	}

	info.Bound = result
	info.Transitions = transitions
	return info, nil
}

// buildIndependent completes the remainder of the CRG as a plain
// single-agent MDP once a state has been declared locally independent:
// only the scalarized-best action's transitions are kept, and no
// dependency/influence expansion occurs below it (spec.md §4.3.3).
func (b *Builder) buildIndependent(ctx context.Context, s domain.State) (*StateInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if info, ok := b.graph.states[s.Key()]; ok {
		b.graph.Duplicates++
		return info, nil
	}
	if b.Adapter.IsTerminal(s) {
		info := &StateInfo{Terminal: true, Independent: true, Bound: bound.Empty(b.ObjectiveNames)}
		b.graph.states[s.Key()] = info
		return info, nil
	}

	actions := b.Adapter.AvailableActions(s)
	if len(actions) == 0 {
		return nil, fmt.Errorf("%w: non-terminal independent state %+v has no available actions", ErrAdapterViolation, s)
	}

	info := &StateInfo{Independent: true}
	b.graph.states[s.Key()] = info

	haveBest := false
	var bestScalar float64
	var bestBound bound.Bound
	var bestTransitions []Transition

	for _, a := range actions {
		successors := b.Adapter.NewStates(s, a)
		if len(successors) == 0 {
			return nil, fmt.Errorf("%w: action %v from independent state %+v has no successors", ErrAdapterViolation, a, s)
		}
		probSum := 0.0
		actionBound := bound.Empty(b.ObjectiveNames)
		actionTransitions := make([]Transition, 0, len(successors))
		for _, sp := range successors {
			t := domain.LocalTransition{From: s, Action: a, To: sp}
			prob := b.Adapter.TransitionProbability(t)
			probSum += prob

			successorInfo, err := b.buildIndependent(ctx, sp)
			if err != nil {
				return nil, err
			}

			rewardVal := b.ownedReward(t)
			segment := bound.From(rewardVal).Add(successorInfo.Bound).Scale(prob)
			actionBound = actionBound.Add(segment)

			actionTransitions = append(actionTransitions, Transition{
				Action:      a,
				From:        s,
				To:          sp,
				Dep:         fset.New[domain.Action](),
				Influence:   fset.New[domain.InfluenceToken](),
				Reward:      rewardVal,
				Probability: prob,
			})
		}
		if probSum < 1-1e-8 || probSum > 1+1e-8 {
			return nil, fmt.Errorf("%w: successor probabilities of action %v from independent state %+v sum to %f, not 1", ErrAdapterViolation, a, s, probSum)
		}

		scalar := actionBound.U.WeightedTotal(b.Weights)
		if !haveBest || scalar > bestScalar+1e-8 {
			haveBest = true
			bestScalar = scalar
			bestBound = actionBound
			bestTransitions = actionTransitions
		}
	}

	info.Bound = bestBound
	info.Transitions = bestTransitions
	return info, nil
}

// ownedReward sums every owned reward's contribution to a single local
// transition.
func (b *Builder) ownedReward(t domain.LocalTransition) bound.Value {
	v := bound.NewValue(b.ObjectiveNames)
	horizon := b.Adapter.Horizon()
	for _, r := range b.Owned {
		v = v.Add(r.Reward(t, horizon))
	}
	return v
}

// branchPair is one leaf of the nested dependency/influence enumeration:
// a fully-specified pair of factored-other-collections annotating a
// single Transition.
type branchPair struct {
	dep       *fset.Factored[domain.Action]
	influence *fset.Factored[domain.InfluenceToken]
}

// annotate enumerates every annotated-transition branch for local
// transition t, per spec.md §4.3.1-4.3.2: for every other scope agent,
// independently choose either a specific dependent action/influence
// token or the "other: (complement set)" marker, nesting the influence
// expansion inside the dependency expansion.
func (b *Builder) annotate(t domain.LocalTransition) []branchPair {
	if len(b.other) == 0 {
		return []branchPair{{dep: fset.New[domain.Action](), influence: fset.New[domain.InfluenceToken]()}}
	}

	agents := make([]int, len(b.other))
	depSets := make(map[int][]domain.Action, len(b.other))
	infSets := make(map[int][]domain.InfluenceToken, len(b.other))
	for i, g := range b.other {
		agents[i] = int(g)
		depSets[int(g)] = b.Adapter.DependentActions(b.owned, t, g)
		infSets[int(g)] = b.Adapter.TransitionInfluence(b.owned, t, g)
	}

	var out []branchPair
	enumerateFactored(agents, depSets, func(depCombo []branch[domain.Action]) {
		dep := materialize(depCombo)
		enumerateFactored(agents, infSets, func(infCombo []branch[domain.InfluenceToken]) {
			out = append(out, branchPair{dep: dep, influence: materialize(infCombo)})
		})
	})
	return out
}

// branch is one agent's choice within a dependency- or influence-tree
// enumeration: either an explicit member, or the complement marker over
// the full per-agent set available at this transition.
type branch[T comparable] struct {
	agent    int
	explicit bool
	value    T
	otherSet []T
}

// enumerateFactored visits every combination of per-agent branches (§4.3.1:
// "|D_g| + 1" branches per agent — one per explicit member, plus the
// complement marker), calling visit once per full combination.
func enumerateFactored[T comparable](agents []int, sets map[int][]T, visit func([]branch[T])) {
	var rec func(i int, acc []branch[T])
	rec = func(i int, acc []branch[T]) {
		if i == len(agents) {
			visit(acc)
			return
		}
		g := agents[i]
		items := sets[g]
		for _, it := range items {
			next := append(append([]branch[T]{}, acc...), branch[T]{agent: g, explicit: true, value: it})
			rec(i+1, next)
		}
		complement := append(append([]branch[T]{}, acc...), branch[T]{agent: g, explicit: false, otherSet: items})
		rec(i+1, complement)
	}
	rec(0, nil)
}

// materialize builds a Factored collection from one full branch
// combination.
func materialize[T comparable](combo []branch[T]) *fset.Factored[T] {
	f := fset.New[T]()
	for _, br := range combo {
		if br.explicit {
			f.AddExplicit(br.agent, br.value)
		} else {
			f.SetOther(br.agent, br.otherSet)
		}
	}
	return f
}
