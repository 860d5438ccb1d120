package domain

import (
	"github.com/agentlab/coresolver/agent"
	"github.com/agentlab/coresolver/rewardfn"
)

// RewardSpec enumerates a single reward function of the instance: its
// scope (the agents it reads) and its underlying time-dependent reward
// function. A single-agent reward has a one-element Scope; a shared
// reward has Scope length >= 2 (spec.md §4.1 CreateRewards).
type RewardSpec struct {
	// Scope is the set of agents this reward reads, in the order the
	// adapter enumerated them. For a single-agent reward this is exactly
	// that agent's ID.
	Scope []agent.ID

	// Func is the underlying time-dependent reward function.
	Func rewardfn.Func

	// Objective names which named objective in the state-value vector
	// this reward contributes to.
	Objective string
}
