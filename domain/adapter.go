package domain

import "github.com/agentlab/coresolver/agent"

// RewardEnumerator exposes the instance's reward functions and assigns
// ownership of each to exactly one agent (spec.md §4.1).
type RewardEnumerator interface {
	// CreateRewards enumerates every reward function of the instance,
	// both single-agent and shared.
	CreateRewards() []RewardSpec

	// AssignRewards assigns each reward to exactly one owning agent.
	// Implementations typically delegate to a pluggable assignment
	// heuristic (package reward); correctness of the solver is invariant
	// under any valid assignment (spec.md §4.2).
	AssignRewards(rewards []RewardSpec) map[agent.ID]RewardSet
}

// Stepper exposes the local transition structure of the domain: which
// actions are available from a state, what their possible successors are,
// and with what probability.
type Stepper interface {
	// AvailableActions returns the domain-legal actions from state s. Must
	// be empty iff s is terminal.
	AvailableActions(s State) []Action

	// NewStates returns every possible successor local state from taking
	// action a in state s. A result of length > 1 expresses stochasticity.
	NewStates(s State, a Action) []State

	// TransitionProbability returns the probability of t.To given
	// (t.From, t.Action). Must sum to 1 (+/- epsilon) over NewStates(t.From,
	// t.Action).
	TransitionProbability(t LocalTransition) float64

	// IsTerminal reports whether s is a terminal state.
	IsTerminal(s State) bool

	// Horizon returns the instance's finite planning horizon, the second
	// argument to every reward function's Eval(time, horizon) call.
	Horizon() int
}

// Coupler exposes how one agent's local transitions depend on or are
// influenced by another agent's behavior, for a given reward set.
type Coupler interface {
	// DependentActions returns the actions of other that could alter any
	// reward in rewards when transition t happens. An empty result means
	// no action dependency.
	DependentActions(rewards RewardSet, t LocalTransition, other agent.ID) []Action

	// TransitionInfluence returns the state-influence tokens of other
	// that could alter any reward in rewards when transition t happens.
	// An empty result means no influence.
	TransitionInfluence(rewards RewardSet, t LocalTransition, other agent.ID) []InfluenceToken
}

// Factorizer projects an opaque global state into its per-agent factored
// form.
type Factorizer interface {
	// FactorState projects global into a map from agent to that agent's
	// local state. The global state representation is entirely
	// domain-defined; the core treats it as opaque.
	FactorState(global interface{}) map[agent.ID]State
}

// Adapter is the single seam between the CoRe core and a concrete
// problem. Any domain satisfying this interface plugs into the core
// (spec.md §1, §4.1).
type Adapter interface {
	RewardEnumerator
	Stepper
	Coupler
	Factorizer

	// Agents returns every agent of the instance, in dense ID order.
	Agents() []agent.Agent

	// InitialState returns agent a's initial local state.
	InitialState(a agent.ID) State
}
