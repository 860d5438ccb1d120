package reward

import (
	"math/rand"

	"github.com/agentlab/coresolver/agent"
	"github.com/agentlab/coresolver/domain"
)

// AssignHeuristic selects which of the fixed menu of policies (spec.md
// §4.2) Assign uses to choose an owner for each multi-agent reward.
type AssignHeuristic int

const (
	// Balanced assigns each reward to the scope member with the fewest
	// currently-assigned rewards.
	Balanced AssignHeuristic = iota
	// LowestDegree assigns each reward to the scope member with the
	// minimum total scope-degree across all rewards.
	LowestDegree
	// HighestDegree assigns each reward to the scope member with the
	// maximum total scope-degree across all rewards.
	HighestDegree
	// Random assigns each reward to a scope member drawn uniformly with a
	// seeded generator.
	Random
)

// Assign maps each reward spec to exactly one owning agent, using
// heuristic to break ties among a reward's scope. All single-agent
// rewards go to their unique scope member, independent of heuristic.
// seed is only consulted by the Random heuristic; it is ignored
// otherwise, so callers may always pass a fixed value for reproducible
// configuration regardless of which heuristic is active.
func Assign(specs []domain.RewardSpec, heuristic AssignHeuristic, seed uint64) map[agent.ID]domain.RewardSet {
	owners := make(map[agent.ID]domain.RewardSet)
	assignedCount := make(map[agent.ID]int)
	degree := scopeDegree(specs)

	// A locally-seeded generator, never the package-global math/rand
	// functions, so assignment stays reproducible for a given seed
	// regardless of what else in the process draws randomness — the same
	// discipline the teacher's weight initializers follow by taking an
	// explicit *rand.Rand rather than calling math/rand's global funcs.
	rng := rand.New(rand.NewSource(int64(seed)))

	for idx, spec := range specs {
		var owner agent.ID
		switch {
		case len(spec.Scope) == 1:
			owner = spec.Scope[0]
		case heuristic == Balanced:
			owner = minBy(spec.Scope, func(a agent.ID) int { return assignedCount[a] })
		case heuristic == LowestDegree:
			owner = minBy(spec.Scope, func(a agent.ID) int { return degree[a] })
		case heuristic == HighestDegree:
			owner = maxBy(spec.Scope, func(a agent.ID) int { return degree[a] })
		case heuristic == Random:
			owner = spec.Scope[rng.Intn(len(spec.Scope))]
		default:
			owner = spec.Scope[0]
		}
		owners[owner] = append(owners[owner], idx)
		assignedCount[owner]++
	}

	return owners
}

// scopeDegree returns, for every agent appearing in any spec's scope, the
// total number of reward-scope memberships it participates in.
func scopeDegree(specs []domain.RewardSpec) map[agent.ID]int {
	degree := make(map[agent.ID]int)
	for _, spec := range specs {
		for _, a := range spec.Scope {
			degree[a]++
		}
	}
	return degree
}

// minBy returns the member of agents with the smallest key(agent), first
// occurrence wins ties — a fixed iteration order per spec.md §5 Ordering.
func minBy(agents []agent.ID, key func(agent.ID) int) agent.ID {
	best := agents[0]
	bestKey := key(best)
	for _, a := range agents[1:] {
		if k := key(a); k < bestKey {
			best, bestKey = a, k
		}
	}
	return best
}

// maxBy is the maximizing counterpart of minBy.
func maxBy(agents []agent.ID, key func(agent.ID) int) agent.ID {
	best := agents[0]
	bestKey := key(best)
	for _, a := range agents[1:] {
		if k := key(a); k > bestKey {
			best, bestKey = a, k
		}
	}
	return best
}
