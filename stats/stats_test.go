package stats

import (
	"strings"
	"testing"
)

func TestCounters_AveragesAreZeroUntilRecorded(t *testing.T) {
	c := New()
	if got := c.AverageSplitSize(); got != 0 {
		t.Errorf("AverageSplitSize = %v, want 0 before any RecordSplit", got)
	}
	if got := c.AverageJointStateSize(); got != 0 {
		t.Errorf("AverageJointStateSize = %v, want 0 before any RecordJointStateSize", got)
	}
}

func TestCounters_AverageSplitSize(t *testing.T) {
	c := New()
	c.RecordSplit(2)
	c.RecordSplit(4)
	if got, want := c.AverageSplitSize(), 3.0; got != want {
		t.Errorf("AverageSplitSize = %v, want %v", got, want)
	}
	if c.StatesDecoupled != 2 {
		t.Errorf("StatesDecoupled = %d, want 2", c.StatesDecoupled)
	}
}

func TestCounters_AverageJointStateSize(t *testing.T) {
	c := New()
	c.RecordJointStateSize(1)
	c.RecordJointStateSize(3)
	if got, want := c.AverageJointStateSize(), 2.0; got != want {
		t.Errorf("AverageJointStateSize = %v, want %v", got, want)
	}
}

func TestCounters_CRGForCreatesAndReuses(t *testing.T) {
	c := New()
	s1 := c.CRGFor("agent-0")
	s1.States = 5
	s2 := c.CRGFor("agent-0")
	if s2.States != 5 {
		t.Errorf("CRGFor did not return the same counters on a second call: States = %d, want 5", s2.States)
	}
	if len(c.CRG) != 1 {
		t.Errorf("len(CRG) = %d, want 1", len(c.CRG))
	}
}

func TestCounters_StringIncludesEveryCounter(t *testing.T) {
	c := New()
	c.StatesEvaluated = 7
	c.CRGFor("agent-1").Transitions = 3
	s := c.String()
	if s == "" {
		t.Fatal("String() returned empty output")
	}
	for _, want := range []string{
		"preprocessing=", "solve=", "postprocessing=",
		"states_evaluated=7", "previously_visited=", "terminal=",
		"joint_actions_evaluated=", "prune_attempts=", "pruned_outer=", "pruned_inner=",
		"states_decoupled=", "avg_split_size=", "avg_joint_state_size=",
		"shared_rule_max_cardinality=", "crg[agent-1]:", "transitions=3",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
