// Package domaintest implements a small, illustrative domain adapter for
// exercising the solver end to end: a handful of agents independently
// advance along a fixed-length chain, with an optional shared-reward
// coupling and an optional stochastic "delay" action. It plays the same
// role the teacher's own minimal gridworld environment plays for its
// tabular agents: a deliberately simple domain whose behavior a test can
// reason about by hand.
package domaintest

import (
	"strconv"

	"github.com/agentlab/coresolver/agent"
	"github.com/agentlab/coresolver/domain"
	"github.com/agentlab/coresolver/reward"
	"github.com/agentlab/coresolver/rewardfn"
)

// chainState is the payload of a domain.State in this domain: how far
// along the chain the agent has progressed. pos can lag behind the
// state's Time when a stochastic delay action fails to advance.
type chainState struct {
	pos int
}

func (c chainState) Equal(other domain.Payload) bool {
	o, ok := other.(chainState)
	return ok && c.pos == o.pos
}

func (c chainState) Hash() string { return strconv.Itoa(c.pos) }

// Config parameterizes the chain domain.
type Config struct {
	// Agents is the number of agents, assigned dense IDs 0..Agents-1.
	Agents int

	// Length is both the chain length and the instance horizon: a state
	// with Time == Length is terminal.
	Length int

	// ActionsPerAgent is the number of local actions each agent has.
	// Defaults to 2 if zero (0: advance, 1: alternate).
	ActionsPerAgent int

	// SharedPenalty adds a two-agent reward over agents 0 and 1 worth
	// -SharedPenaltyValue on every transition of its owning agent,
	// whatever actions either agent takes. DependentActions reports it as
	// depending on the other scope agent's action 1, exercising the
	// builder's dependency-branch enumeration and the coordination graph.
	SharedPenalty      bool
	SharedPenaltyValue float64

	// Stochastic makes agent 0's action-1 a "risky" action with two
	// outcomes: succeed (advance) or fail (stay at the same position).
	Stochastic  bool
	SuccessProb float64 // defaults to 0.5 if zero

	// BadProbabilities deliberately perturbs the risky action's reported
	// probabilities so they no longer sum to 1, for exercising the
	// adapter-violation failure path.
	BadProbabilities bool
}

// Adapter is a domain.Adapter over the chain domain described by a
// Config.
type Adapter struct {
	cfg Config
}

// New returns a chain-domain Adapter for cfg.
func New(cfg Config) *Adapter {
	if cfg.ActionsPerAgent == 0 {
		cfg.ActionsPerAgent = 2
	}
	if cfg.SuccessProb == 0 {
		cfg.SuccessProb = 0.5
	}
	return &Adapter{cfg: cfg}
}

func state(a agent.ID, t, pos int) domain.State {
	return domain.State{Agent: a, Time: t, Payload: chainState{pos: pos}}
}

func posOf(s domain.State) int { return s.Payload.(chainState).pos }

// Agents returns every agent of the instance, each with
// ActionsPerAgent local actions.
func (a *Adapter) Agents() []agent.Agent {
	out := make([]agent.Agent, a.cfg.Agents)
	for i := 0; i < a.cfg.Agents; i++ {
		actions := make([]agent.Action, a.cfg.ActionsPerAgent)
		for j := range actions {
			actions[j] = agent.Action{Agent: agent.ID(i), Local: j}
		}
		out[i] = agent.Agent{ID: agent.ID(i), Actions: actions}
	}
	return out
}

// InitialState returns agent ag's initial state: time 0, position 0.
func (a *Adapter) InitialState(ag agent.ID) domain.State {
	return state(ag, 0, 0)
}

// Horizon returns the chain length.
func (a *Adapter) Horizon() int { return a.cfg.Length }

// IsTerminal reports whether s has reached the end of the chain.
func (a *Adapter) IsTerminal(s domain.State) bool {
	return s.Time >= a.cfg.Length
}

// AvailableActions returns every local action of s.Agent, or none if s
// is terminal.
func (a *Adapter) AvailableActions(s domain.State) []domain.Action {
	if a.IsTerminal(s) {
		return nil
	}
	out := make([]domain.Action, a.cfg.ActionsPerAgent)
	for i := range out {
		out[i] = domain.Action{Agent: s.Agent, Local: i}
	}
	return out
}

func (a *Adapter) isRisky(act domain.Action) bool {
	return a.cfg.Stochastic && act.Agent == 0 && act.Local == 1
}

// NewStates returns the successor states of taking act at s: a single
// deterministic advance, or two outcomes (advance, stay) for the risky
// action when Stochastic is enabled.
func (a *Adapter) NewStates(s domain.State, act domain.Action) []domain.State {
	nextTime := s.Time + 1
	pos := posOf(s)
	advance := pos + 1
	if advance > a.cfg.Length {
		advance = a.cfg.Length
	}

	if a.isRisky(act) {
		return []domain.State{
			state(s.Agent, nextTime, advance),
			state(s.Agent, nextTime, pos),
		}
	}
	return []domain.State{state(s.Agent, nextTime, advance)}
}

// TransitionProbability returns the risky action's success/fail split
// (perturbed away from summing to 1 when BadProbabilities is set), or 1
// for every other, deterministic transition.
func (a *Adapter) TransitionProbability(t domain.LocalTransition) float64 {
	if !a.isRisky(t.Action) {
		return 1.0
	}
	succeeded := posOf(t.To) == posOf(t.From)+1 || (posOf(t.From) == a.cfg.Length && posOf(t.To) == a.cfg.Length)
	p := a.cfg.SuccessProb
	if succeeded {
		if a.cfg.BadProbabilities {
			return p - 0.1
		}
		return p
	}
	if a.cfg.BadProbabilities {
		return (1 - p) - 0.1
	}
	return 1 - p
}

// CreateRewards enumerates one singleton-scope constant reward per
// agent, plus — when SharedPenalty is set — one two-agent reward over
// agents 0 and 1.
func (a *Adapter) CreateRewards() []domain.RewardSpec {
	specs := make([]domain.RewardSpec, 0, a.cfg.Agents+1)
	for i := 0; i < a.cfg.Agents; i++ {
		specs = append(specs, domain.RewardSpec{
			Scope:     []agent.ID{agent.ID(i)},
			Func:      rewardfn.Constant{Value: 1},
			Objective: "return",
		})
	}
	if a.cfg.SharedPenalty && a.cfg.Agents >= 2 {
		specs = append(specs, domain.RewardSpec{
			Scope:     []agent.ID{0, 1},
			Func:      rewardfn.Constant{Value: -a.cfg.SharedPenaltyValue},
			Objective: "return",
		})
	}
	return specs
}

// AssignRewards delegates to the Balanced heuristic: correctness does
// not depend on the choice (spec.md §4.2), only on every reward landing
// with exactly one owner.
func (a *Adapter) AssignRewards(rewards []domain.RewardSpec) map[agent.ID]domain.RewardSet {
	return reward.Assign(rewards, reward.Balanced, 0)
}

// DependentActions reports that the shared penalty reward (the last
// reward in CreateRewards, when present) depends on other playing its
// local action 1, regardless of which transition t is being evaluated.
func (a *Adapter) DependentActions(rewards domain.RewardSet, t domain.LocalTransition, other agent.ID) []domain.Action {
	if !a.cfg.SharedPenalty || !rewards.Contains(a.sharedRewardIndex()) {
		return nil
	}
	return []domain.Action{{Agent: other, Local: 1}}
}

// TransitionInfluence always returns no influence tokens: this domain's
// only coupling mechanism is action dependency.
func (a *Adapter) TransitionInfluence(rewards domain.RewardSet, t domain.LocalTransition, other agent.ID) []domain.InfluenceToken {
	return nil
}

func (a *Adapter) sharedRewardIndex() int { return a.cfg.Agents }

// FactorState returns global unchanged if it is already a per-agent
// state map; this domain never produces any other global representation.
func (a *Adapter) FactorState(global interface{}) map[agent.ID]domain.State {
	if m, ok := global.(map[agent.ID]domain.State); ok {
		return m
	}
	return nil
}
