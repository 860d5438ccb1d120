package policy

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/agentlab/coresolver/agent"
	"github.com/agentlab/coresolver/domain"
	"github.com/agentlab/coresolver/domain/domaintest"
	"github.com/agentlab/coresolver/joint"
	"github.com/agentlab/coresolver/solver"
)

// globalOf converts a joint.State into the raw map representation this
// test's domaintest.Adapter.FactorState accepts as an opaque global
// state, exercising the same Factorizer seam a real caller would use.
func globalOf(s joint.State) map[agent.ID]domain.State {
	return map[agent.ID]domain.State(s)
}

func solveSettings() solver.Settings {
	return solver.Settings{
		BBPruning:      true,
		BBTightening:   true,
		LocalCRI:       true,
		DecoupleCRI:    true,
		ObjectiveNames: []string{"return"},
		Weights:        []float64{1},
	}
}

func buildPolicy(t *testing.T, cfg domaintest.Config) (*Policy, *solver.Result) {
	t.Helper()
	adapter := domaintest.New(cfg)
	in, err := solver.New(context.Background(), adapter, solveSettings())
	if err != nil {
		t.Fatalf("solver.New: %v", err)
	}
	res, err := in.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	p, err := New(res)
	if err != nil {
		t.Fatalf("policy.New: %v", err)
	}
	return p, res
}

func TestPolicy_QueryInitialState(t *testing.T) {
	p, res := buildPolicy(t, domaintest.Config{Agents: 2, Length: 2, ActionsPerAgent: 1})

	action, err := p.Query(globalOf(res.Initial))
	if err != nil {
		t.Fatalf("Query(initial): %v", err)
	}
	if len(action) != 2 {
		t.Errorf("Query(initial) returned %d agent actions, want 2", len(action))
	}
}

func TestPolicy_QueryUnreachableStateFails(t *testing.T) {
	p, res := buildPolicy(t, domaintest.Config{Agents: 1, Length: 1, ActionsPerAgent: 1})

	bogus := make(map[string]struct{})
	for k := range res.Search {
		bogus[k] = struct{}{}
	}

	unreachable := res.Initial.Combine(nil)
	delete(unreachable, 0)
	if _, err := p.Query(globalOf(unreachable)); err == nil {
		t.Fatal("expected an error querying an unreachable (empty) joint state")
	} else if !strings.Contains(err.Error(), "no optimal action") {
		t.Errorf("error = %v, want a \"no optimal action\" message", err)
	}
}

func TestPolicy_NewRecordsPostprocessingTime(t *testing.T) {
	_, res := buildPolicy(t, domaintest.Config{Agents: 2, Length: 2, ActionsPerAgent: 1})
	if res.Stats.PostprocessingTime <= 0 {
		t.Errorf("Stats.PostprocessingTime = %v, want > 0 after policy.New", res.Stats.PostprocessingTime)
	}
}

func TestPolicy_ExpectedValueMatchesSolverResult(t *testing.T) {
	p, res := buildPolicy(t, domaintest.Config{Agents: 2, Length: 2, ActionsPerAgent: 1})

	got := p.ExpectedValue().At(0)
	want := res.Value.At(0)
	if got != want {
		t.Errorf("ExpectedValue = %v, want %v", got, want)
	}
}

func TestPolicy_DumpStepProducesYAMLPerTimeStep(t *testing.T) {
	p, _ := buildPolicy(t, domaintest.Config{Agents: 2, Length: 2, ActionsPerAgent: 1})

	var buf bytes.Buffer
	if err := p.DumpStep(&buf, 0); err != nil {
		t.Fatalf("DumpStep(0): %v", err)
	}
	if buf.Len() == 0 {
		t.Error("DumpStep(0) produced no output for the initial time step")
	}
	if !strings.Contains(buf.String(), "action:") {
		t.Errorf("DumpStep output missing an action field: %q", buf.String())
	}
}

func TestPolicy_DecoupledStatesAreFullyCombined(t *testing.T) {
	p, res := buildPolicy(t, domaintest.Config{Agents: 2, Length: 2, ActionsPerAgent: 1})

	action, err := p.Query(globalOf(res.Initial))
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	for _, a := range res.Agents {
		if _, ok := action[a]; !ok {
			t.Errorf("combined action missing agent %d", a)
		}
	}
}
