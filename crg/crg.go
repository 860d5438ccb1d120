// Package crg builds and stores each agent's Conditional Return Graph:
// the per-agent local-state machine whose transitions carry enough
// dependency and influence annotation to let the joint policy search
// (package solver) reconstruct joint behavior without ever materializing
// the full joint MDP (spec.md §3 "CRG (per agent)", §4.3).
package crg

import (
	"github.com/agentlab/coresolver/agent"
	"github.com/agentlab/coresolver/bound"
	"github.com/agentlab/coresolver/domain"
	"github.com/agentlab/coresolver/fset"
)

// Transition is one annotated outgoing edge of a CRG state (spec.md §3
// "CRG transition"). Dep and Influence are factored-other-collections
// (package fset) describing, for every other agent this transition's
// owning reward set reads, which of that agent's actions (resp.
// state-influence tokens) this transition's reward and probability hold
// under. Both are keyed by agent.ID converted to int.
type Transition struct {
	Action     domain.Action
	From, To   domain.State
	Dep        *fset.Factored[domain.Action]
	Influence  *fset.Factored[domain.InfluenceToken]
	Reward     bound.Value
	Probability float64
}

// StateInfo is the per-state cache entry of a Graph (spec.md §3 "CRG
// state info").
type StateInfo struct {
	Terminal    bool
	Independent bool
	Bound       bound.Bound
	Transitions []Transition
}

// Graph is one agent's Conditional Return Graph.
type Graph struct {
	Agent   agent.ID
	Initial domain.State

	// OtherAgents is the union of scopes of the agent's owned rewards,
	// excluding the agent itself — the key space of every Transition's
	// Dep and Influence collections in this graph.
	OtherAgents []agent.ID

	// Duplicates counts cache hits during the build: local states reached
	// a second or later time through a different predecessor path.
	Duplicates int

	states map[domain.Key]*StateInfo
}

// Counts summarizes a built Graph for the solver's per-CRG statistics
// (spec.md §6 "per-CRG: states, transitions, terminal, independent,
// duplicates, dependency branches, influence branches").
type Counts struct {
	States             int
	Transitions        int
	Terminal           int
	Independent        int
	Duplicates         int
	DependencyBranches int
	InfluenceBranches  int
}

// Counts computes a summary of the built graph. DependencyBranches and
// InfluenceBranches count the number of distinct annotation objects
// produced by the builder's enumeration (one per distinct branch
// combination, shared across every Transition that is a leaf of it).
func (g *Graph) Counts() Counts {
	c := Counts{Duplicates: g.Duplicates}
	depSeen := make(map[*fset.Factored[domain.Action]]struct{})
	infSeen := make(map[*fset.Factored[domain.InfluenceToken]]struct{})
	for _, info := range g.states {
		c.States++
		if info.Terminal {
			c.Terminal++
		}
		if info.Independent {
			c.Independent++
		}
		c.Transitions += len(info.Transitions)
		for _, tr := range info.Transitions {
			depSeen[tr.Dep] = struct{}{}
			infSeen[tr.Influence] = struct{}{}
		}
	}
	c.DependencyBranches = len(depSeen)
	c.InfluenceBranches = len(infSeen)
	return c
}

// Info returns the stored info for s, and false if s has not been built.
func (g *Graph) Info(s domain.State) (*StateInfo, bool) {
	info, ok := g.states[s.Key()]
	return info, ok
}

// Bound returns the agent's return bound from its initial state. Callers
// should only ask this after a successful Build.
func (g *Graph) Bound() bound.Bound {
	info, ok := g.Info(g.Initial)
	if !ok {
		return bound.Bound{}
	}
	return info.Bound
}
