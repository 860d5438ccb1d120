// Package stats implements the solver's exposed statistics counters
// (spec.md §6 "Statistics"): wall-clock timings for each solve phase,
// plus the counts a caller needs to judge how much of the search space
// pruning and decoupling actually avoided.
package stats

import (
	"fmt"
	"strings"
	"time"
)

// CRGStats accumulates the per-CRG counters of spec.md §6: "per-CRG:
// states, transitions, terminal, independent, duplicates, dependency
// branches, influence branches."
type CRGStats struct {
	States            int
	Transitions       int
	Terminal          int
	Independent       int
	Duplicates        int
	DependencyBranches int
	InfluenceBranches int
}

// Counters accumulates every solve-wide statistic spec.md §6 names.
type Counters struct {
	PreprocessingTime  time.Duration
	SolveTime          time.Duration
	PostprocessingTime time.Duration

	StatesEvaluated      int
	StatesPreviouslyVisited int
	StatesTerminal       int
	JointActionsEvaluated int
	PruneAttempts        int
	ActionsPrunedOuter   int
	ActionsPrunedInner   int
	StatesDecoupled      int

	// SharedRuleMaxCardinality is the largest action-set cardinality
	// among the instance's deduplicated shared reward rules (package
	// reward's SharedRuleSet), 0 if the instance has none.
	SharedRuleMaxCardinality int

	splitSizeTotal int
	splitCount     int
	jointSizeTotal int
	jointSizeCount int

	CRG map[string]*CRGStats
}

// New returns a zeroed Counters with an initialized per-CRG map.
func New() *Counters {
	return &Counters{CRG: make(map[string]*CRGStats)}
}

// RecordSplit records one decoupling event's component count, for the
// running "average split size" statistic.
func (c *Counters) RecordSplit(componentCount int) {
	c.StatesDecoupled++
	c.splitSizeTotal += componentCount
	c.splitCount++
}

// RecordJointStateSize records one visited joint state's agent count, for
// the running "average joint-state size" statistic.
func (c *Counters) RecordJointStateSize(agentCount int) {
	c.jointSizeTotal += agentCount
	c.jointSizeCount++
}

// AverageSplitSize returns the mean component count across every recorded
// decoupling event, or 0 if none were recorded.
func (c *Counters) AverageSplitSize() float64 {
	if c.splitCount == 0 {
		return 0
	}
	return float64(c.splitSizeTotal) / float64(c.splitCount)
}

// AverageJointStateSize returns the mean agent count across every
// recorded joint state, or 0 if none were recorded.
func (c *Counters) AverageJointStateSize() float64 {
	if c.jointSizeCount == 0 {
		return 0
	}
	return float64(c.jointSizeTotal) / float64(c.jointSizeCount)
}

// CRGFor returns (creating if absent) the per-CRG counters for the given
// agent label.
func (c *Counters) CRGFor(label string) *CRGStats {
	s, ok := c.CRG[label]
	if !ok {
		s = &CRGStats{}
		c.CRG[label] = s
	}
	return s
}

// String renders a human-readable dump of every counter: the solve-wide
// counters first, in the order spec.md §6 lists them, then one line per
// CRG in map iteration order (not sorted).
func (c *Counters) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "preprocessing=%s solve=%s postprocessing=%s\n", c.PreprocessingTime, c.SolveTime, c.PostprocessingTime)
	fmt.Fprintf(&b, "states_evaluated=%d previously_visited=%d terminal=%d\n", c.StatesEvaluated, c.StatesPreviouslyVisited, c.StatesTerminal)
	fmt.Fprintf(&b, "joint_actions_evaluated=%d prune_attempts=%d pruned_outer=%d pruned_inner=%d\n",
		c.JointActionsEvaluated, c.PruneAttempts, c.ActionsPrunedOuter, c.ActionsPrunedInner)
	fmt.Fprintf(&b, "states_decoupled=%d avg_split_size=%.3f avg_joint_state_size=%.3f\n",
		c.StatesDecoupled, c.AverageSplitSize(), c.AverageJointStateSize())
	fmt.Fprintf(&b, "shared_rule_max_cardinality=%d\n", c.SharedRuleMaxCardinality)
	for label, s := range c.CRG {
		fmt.Fprintf(&b, "crg[%s]: states=%d transitions=%d terminal=%d independent=%d duplicates=%d dep_branches=%d inf_branches=%d\n",
			label, s.States, s.Transitions, s.Terminal, s.Independent, s.Duplicates, s.DependencyBranches, s.InfluenceBranches)
	}
	return b.String()
}
