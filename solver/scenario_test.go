package solver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentlab/coresolver/domain/domaintest"
)

func defaultSettings() Settings {
	return Settings{
		BBPruning:      true,
		BBTightening:   true,
		LocalCRI:       true,
		DecoupleCRI:    true,
		ObjectiveNames: []string{"return"},
		Weights:        []float64{1},
	}
}

func solve(t *testing.T, cfg domaintest.Config, settings Settings) (*Result, error) {
	t.Helper()
	adapter := domaintest.New(cfg)
	in, err := New(context.Background(), adapter, settings)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return in.Solve(context.Background())
}

// Singleton trivial: one agent, one step, one action.
func TestScenario_SingletonTrivial(t *testing.T) {
	res, err := solve(t, domaintest.Config{Agents: 1, Length: 1, ActionsPerAgent: 1}, defaultSettings())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if got := res.Value.At(0); got != 1 {
		t.Errorf("Value = %v, want 1", got)
	}
}

// Two agents with no shared reward: decoupling should produce the exact
// same value as a coupled search would, since decoupling only changes
// how the value is computed, never what it is.
func TestScenario_TwoIndependentAgents(t *testing.T) {
	cfg := domaintest.Config{Agents: 2, Length: 2, ActionsPerAgent: 1}
	decoupled := defaultSettings()
	coupled := defaultSettings()
	coupled.DecoupleCRI = false

	resDecoupled, err := solve(t, cfg, decoupled)
	if err != nil {
		t.Fatalf("Solve (decoupled): %v", err)
	}
	resCoupled, err := solve(t, cfg, coupled)
	if err != nil {
		t.Fatalf("Solve (coupled): %v", err)
	}

	want := 4.0 // 2 agents * 2 steps * reward 1
	if got := resDecoupled.Value.At(0); got != want {
		t.Errorf("decoupled Value = %v, want %v", got, want)
	}
	if got := resCoupled.Value.At(0); got != want {
		t.Errorf("coupled Value = %v, want %v", got, want)
	}
	if resDecoupled.Stats.StatesDecoupled == 0 {
		t.Error("expected at least one decoupling event for two independent agents")
	}
}

// Two-agent binary shared penalty: the shared reward is owned by exactly
// one agent, so its -5 contributes once, not twice.
func TestScenario_SharedPenalty(t *testing.T) {
	cfg := domaintest.Config{
		Agents:             2,
		Length:             1,
		ActionsPerAgent:    2,
		SharedPenalty:      true,
		SharedPenaltyValue: 5,
	}
	res, err := solve(t, cfg, defaultSettings())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	want := -3.0 // 1 + 1 - 5
	if got := res.Value.At(0); got != want {
		t.Errorf("Value = %v, want %v", got, want)
	}
	if got := res.Stats.SharedRuleMaxCardinality; got != 2 {
		t.Errorf("Stats.SharedRuleMaxCardinality = %d, want 2 (the shared penalty's two-agent scope)", got)
	}
}

// Stochastic single-agent delay: the risky action's two outcomes both
// land on the same reward (constant in time), so the expected value is
// unaffected by which branch is realized.
func TestScenario_StochasticDelay(t *testing.T) {
	cfg := domaintest.Config{
		Agents:          1,
		Length:          3,
		ActionsPerAgent: 2,
		Stochastic:      true,
		SuccessProb:     0.8,
	}
	res, err := solve(t, cfg, defaultSettings())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	want := 3.0
	if got := res.Value.At(0); got != want {
		t.Errorf("Value = %v, want %v", got, want)
	}
}

// Probability-sum violation: a domain that reports probabilities not
// summing to 1 must surface as a KindAdapterViolation Failure, not a
// silently wrong value.
func TestScenario_ProbabilitySumViolation(t *testing.T) {
	cfg := domaintest.Config{
		Agents:           1,
		Length:           2,
		ActionsPerAgent:  2,
		Stochastic:       true,
		SuccessProb:      0.8,
		BadProbabilities: true,
	}
	adapter := domaintest.New(cfg)
	_, err := New(context.Background(), adapter, defaultSettings())
	if err == nil {
		t.Fatal("expected an error for a non-normalized probability distribution")
	}
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected a *Failure, got %T: %v", err, err)
	}
	if f.Kind != KindAdapterViolation {
		t.Errorf("Kind = %v, want KindAdapterViolation", f.Kind)
	}
}

// DebugDir: when set, New must write one human-readable CRG dump per
// agent and Solve one for the final policy (spec.md §6).
func TestScenario_DebugDirWritesCRGAndPolicyDumps(t *testing.T) {
	dir := t.TempDir()
	settings := defaultSettings()
	settings.DebugDir = dir

	res, err := solve(t, domaintest.Config{Agents: 2, Length: 1, ActionsPerAgent: 1}, settings)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res == nil {
		t.Fatal("Solve returned a nil result")
	}

	for _, name := range []string{"crg-agent-0.yaml", "crg-agent-1.yaml", "policy.yaml"} {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("expected debug dump %s: %v", path, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("debug dump %s is empty", path)
		}
	}
}

// Timeout: a context cancelled before the search starts must surface as
// a KindTimeout Failure.
func TestScenario_Timeout(t *testing.T) {
	adapter := domaintest.New(domaintest.Config{Agents: 2, Length: 4, ActionsPerAgent: 2})
	in, err := New(context.Background(), adapter, defaultSettings())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err = in.Solve(ctx)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected a *Failure, got %T: %v", err, err)
	}
	if f.Kind != KindTimeout {
		t.Errorf("Kind = %v, want KindTimeout", f.Kind)
	}
}
