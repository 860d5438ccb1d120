// Package solver implements the joint policy search of spec.md §4.4: a
// depth-first branch-and-bound over joint states that reuses each
// agent's pre-built Conditional Return Graph (package crg) instead of
// ever materializing the full joint MDP, with optional coordination-
// graph decoupling (package coord) between otherwise independent
// groups of agents.
package solver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/agentlab/coresolver/agent"
	"github.com/agentlab/coresolver/bound"
	"github.com/agentlab/coresolver/coord"
	"github.com/agentlab/coresolver/crg"
	"github.com/agentlab/coresolver/domain"
	"github.com/agentlab/coresolver/internal/assertx"
	"github.com/agentlab/coresolver/joint"
	"github.com/agentlab/coresolver/progressbar"
	"github.com/agentlab/coresolver/reward"
	"github.com/agentlab/coresolver/stats"
)

// OptTransition is the memoized search-map entry for one joint state:
// its optimal value, the joint action that achieves it, the realized
// successor transitions under that action, and whether the state was a
// (joint) terminal with no further choice to make.
type OptTransition struct {
	Value       bound.Value
	Action      joint.Action
	Transitions []joint.Transition
	Terminal    bool
}

// DecoupleRecord records that a joint state's value was computed by
// splitting it into independent components rather than by a single
// findOptimal call — consulted during policy reconstruction (spec.md
// §4.4.4) to know which sub-states' search-map entries actually carry
// the continuation.
type DecoupleRecord struct {
	Components []joint.State
}

// Instance holds everything one solve needs: the domain adapter, every
// agent's built CRG, the coordination graph over shared rewards, and the
// search state accumulated by Solve.
type Instance struct {
	Adapter  domain.Adapter
	Settings Settings

	Agents  []agent.ID
	Graphs  map[agent.ID]*crg.Graph
	Rewards []*reward.Reward
	Coord   *coord.Graph
	Stats   *stats.Counters
	Initial joint.State

	search    map[string]*OptTransition
	decoupled map[string]DecoupleRecord

	start time.Time
	bar   *progressbar.Bar
	depth int
}

// New assembles an Instance: it enumerates and assigns every reward,
// builds one CRG per agent, and builds the coordination graph, all
// before any search begins (spec.md §4.1-4.2, §4.3).
func New(ctx context.Context, adapter domain.Adapter, settings Settings) (*Instance, error) {
	preStart := time.Now()
	st := stats.New()

	specs := adapter.CreateRewards()
	rewards := make([]*reward.Reward, len(specs))

	// Every shared reward (scope > 1 agent) must register its scope with
	// the instance's SharedRuleSet: two rewards over the identical agent
	// set are spec.md §3's "already present" case and a CreateRewards
	// contract violation, not a silent duplicate. Singleton-scope
	// rewards need no dedup (one per-agent private reward function per
	// objective is never ambiguous).
	ruleSet := reward.NewSharedRuleSet()
	for _, spec := range specs {
		if len(spec.Scope) <= 1 {
			continue
		}
		if ruleSet.AddRule(scopeActions(spec.Scope), spec.Func) == reward.RuleAlreadyPresent {
			return nil, newFailure(KindAdapterViolation, nil, "CreateRewards: duplicate shared reward over agent scope %v", spec.Scope)
		}
	}
	st.SharedRuleMaxCardinality = ruleSet.MaxCardinality()

	for i, spec := range specs {
		objIdx := indexOf(settings.ObjectiveNames, spec.Objective)
		rewards[i] = reward.New(spec, spec.Scope[0], i, settings.ObjectiveNames, objIdx)
	}

	owners := adapter.AssignRewards(specs)
	for owner, rs := range owners {
		for _, idx := range rs {
			if idx < 0 || idx >= len(rewards) {
				return nil, newFailure(KindAdapterViolation, nil, "AssignRewards: reward index %d out of range", idx)
			}
			rewards[idx].Owner = owner
		}
	}

	rawAgents := adapter.Agents()
	agents := make([]agent.ID, 0, len(rawAgents))
	for _, a := range rawAgents {
		agents = append(agents, a.ID)
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i] < agents[j] })

	owned := make(map[agent.ID][]*reward.Reward)
	relevant := make(map[agent.ID][]*reward.Reward)
	for _, r := range rewards {
		owned[r.Owner] = append(owned[r.Owner], r)
		for _, a := range r.Scope() {
			relevant[a] = append(relevant[a], r)
		}
	}

	graphs := make(map[agent.ID]*crg.Graph, len(agents))
	for _, a := range agents {
		b := &crg.Builder{
			Adapter:        adapter,
			Agent:          a,
			Owned:          owned[a],
			Relevant:       relevant[a],
			ObjectiveNames: settings.ObjectiveNames,
			Weights:        settings.Weights,
			Decouple:       settings.LocalCRI,
		}
		g, err := b.Build(ctx)
		if err != nil {
			return nil, wrapCRGError(err)
		}
		graphs[a] = g
		*st.CRGFor(fmt.Sprintf("agent-%d", a)) = toCRGStats(g.Counts())

		if settings.DebugDir != "" {
			if err := dumpCRG(settings.DebugDir, a, g, settings.Weights); err != nil {
				return nil, newFailure(KindIO, err, "writing CRG debug dump for agent %d", a)
			}
		}
	}

	cg := coord.New(agents, rewards)

	initial := make(joint.State, len(agents))
	for _, a := range agents {
		initial[a] = adapter.InitialState(a)
	}

	in := &Instance{
		Adapter:   adapter,
		Settings:  settings,
		Agents:    agents,
		Graphs:    graphs,
		Rewards:   rewards,
		Coord:     cg,
		Stats:     st,
		Initial:   initial,
		search:    make(map[string]*OptTransition),
		decoupled: make(map[string]DecoupleRecord),
	}

	st.PreprocessingTime = time.Since(preStart)
	return in, nil
}

func toCRGStats(c crg.Counts) stats.CRGStats {
	return stats.CRGStats{
		States:             c.States,
		Transitions:        c.Transitions,
		Terminal:           c.Terminal,
		Independent:        c.Independent,
		Duplicates:         c.Duplicates,
		DependencyBranches: c.DependencyBranches,
		InfluenceBranches:  c.InfluenceBranches,
	}
}

// wrapCRGError surfaces a CRG build failure as a solver Failure (spec.md
// §7: "surfaced as solver failure with a human-readable context"), so a
// caller never needs to know about package crg's own sentinel errors.
func wrapCRGError(err error) error {
	if errors.Is(err, crg.ErrTimeout) {
		return newFailure(KindTimeout, err, "CRG build did not complete")
	}
	return newFailure(KindAdapterViolation, err, "CRG build failed")
}

// scopeActions synthesizes a canonical, sorted action-set identity key for
// a shared reward's agent scope, one action per scope agent. The local
// action ID carries no meaning here (domain.RewardSpec only exposes
// agent scope, not literal actions); this key exists solely so
// reward.SharedRuleSet can dedupe by agent set, distinct from the
// adapter's own action-level coupling (DependentActions /
// TransitionInfluence).
func scopeActions(scope []agent.ID) []agent.Action {
	sorted := make([]agent.ID, len(scope))
	copy(sorted, scope)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	out := make([]agent.Action, len(sorted))
	for i, a := range sorted {
		out[i] = agent.Action{Agent: a, Local: 0}
	}
	return out
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// Result is everything a caller (typically package policy) needs to
// reconstruct and query the solved joint policy.
type Result struct {
	Value          bound.Value
	Initial        joint.State
	Agents         []agent.ID
	ObjectiveNames []string
	Search         map[string]*OptTransition
	Decoupled      map[string]DecoupleRecord
	Stats          *stats.Counters

	// Adapter is the domain adapter the instance was solved against,
	// carried through so package policy can factor an opaque global
	// state via Adapter.FactorState before a Query lookup (spec.md
	// §4.4.4, §6).
	Adapter domain.Adapter
}

// Solve runs the joint policy search to completion from the instance's
// initial joint state (spec.md §4.4).
func (in *Instance) Solve(ctx context.Context) (*Result, error) {
	in.start = time.Now()
	if in.Settings.ShowProgress {
		in.bar = progressbar.New(40, 1, 200*time.Millisecond, true)
		in.bar.AttachStats(in.Stats)
		in.bar.Display()
	}

	solveStart := time.Now()
	value, err := in.decoupleCRI(ctx, in.Initial)
	in.Stats.SolveTime = time.Since(solveStart)

	if in.bar != nil {
		in.bar.Close()
	}

	if err != nil {
		return nil, err
	}

	res := &Result{
		Value:          value,
		Initial:        in.Initial,
		Agents:         in.Agents,
		ObjectiveNames: in.Settings.ObjectiveNames,
		Search:         in.search,
		Decoupled:      in.decoupled,
		Stats:          in.Stats,
		Adapter:        in.Adapter,
	}

	if in.Settings.DebugDir != "" {
		if err := dumpFinalPolicy(in.Settings.DebugDir, res, in.Settings.Weights); err != nil {
			return nil, newFailure(KindIO, err, "writing final policy debug dump")
		}
	}

	return res, nil
}

// decoupleCRI computes s's optimal value, first trying to split s into
// independent components via the coordination graph (spec.md §4.4.1):
// each component's value is found independently and the results summed,
// since conditionally reward-independent groups of agents contribute
// additively to the joint return.
func (in *Instance) decoupleCRI(ctx context.Context, s joint.State) (bound.Value, error) {
	if !in.Settings.DecoupleCRI {
		return in.findOptimal(ctx, s)
	}

	agents := s.Agents()
	flagged := coord.Update(in.Adapter, in.Coord, s)
	components := in.Coord.ConnectedComponents(agents)

	if len(components) > 1 {
		in.Stats.RecordSplit(len(components))
	}

	total := bound.NewValue(in.Settings.ObjectiveNames)
	var subStates []joint.State
	for _, comp := range components {
		sub := make(joint.State, len(comp))
		for _, a := range comp {
			sub[a] = s[a]
		}
		subStates = append(subStates, sub)

		v, err := in.findOptimal(ctx, sub)
		if err != nil {
			coord.Restore(flagged)
			return bound.Value{}, err
		}
		total = total.Add(v)
	}

	if len(components) > 1 {
		in.decoupled[s.Key()] = DecoupleRecord{Components: subStates}
	}

	coord.Restore(flagged)
	return total, nil
}

// findOptimal computes (and memoizes) s's optimal value by enumerating
// every joint action available at s, matching each agent's realized CRG
// transition, and recursing into decoupleCRI for the true continuation
// value of every successor joint state (spec.md §4.4.2).
func (in *Instance) findOptimal(ctx context.Context, s joint.State) (bound.Value, error) {
	if err := in.checkTimeout(ctx); err != nil {
		return bound.Value{}, err
	}

	key := s.Key()
	in.Stats.RecordJointStateSize(len(s))

	if rec, ok := in.search[key]; ok {
		in.Stats.StatesPreviouslyVisited++
		if rec == nil {
			return bound.Value{}, newFailure(KindCacheViolation, nil, "joint state %s re-entered while still in progress", key)
		}
		return rec.Value, nil
	}
	in.Stats.StatesEvaluated++

	agents := s.Agents()
	infos := make(map[agent.ID]*crg.StateInfo, len(agents))
	allTerminal := true
	for _, a := range agents {
		info, ok := in.Graphs[a].Info(s[a])
		if !ok {
			return bound.Value{}, newFailure(KindAdapterViolation, nil, "agent %d local state has no CRG info", a)
		}
		infos[a] = info
		if !info.Terminal {
			allTerminal = false
		}
	}

	if allTerminal {
		in.Stats.StatesTerminal++
		zero := bound.NewValue(in.Settings.ObjectiveNames)
		in.search[key] = &OptTransition{Value: zero, Terminal: true}
		return zero, nil
	}

	in.search[key] = nil // in-progress placeholder, detects illegal cycles

	in.depth++
	defer func() { in.depth-- }()

	candidates, err := in.buildCandidates(s, agents, infos)
	if err != nil {
		return bound.Value{}, err
	}

	survivors := candidates
	if in.Settings.BBPruning || in.Settings.BBTightening {
		survivors = in.outerPrune(candidates)
	}

	best, err := in.selectBest(ctx, s, survivors)
	if err != nil {
		return bound.Value{}, err
	}

	assertx.Invariant(in.search[key] == nil, "findOptimal: placeholder overwritten before completion for "+key)
	in.search[key] = best
	if in.bar != nil && in.depth == 1 {
		in.bar.Increment()
	}
	return best.Value, nil
}

func (in *Instance) checkTimeout(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return newFailure(KindTimeout, err, "context cancelled")
	}
	if in.Settings.MaxRuntime > 0 && time.Since(in.start) > in.Settings.MaxRuntime {
		return newFailure(KindTimeout, nil, "exceeded max runtime %s", in.Settings.MaxRuntime)
	}
	return nil
}
