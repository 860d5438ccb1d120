// Package policy implements the solver's output object: the
// post-processed joint policy a caller queries after Solve returns
// (spec.md §6 "Output").
//
// Post-processing walks the raw search map spec.md §4.4.4 describes: a
// decoupled joint state's combined entry is the disjoint-agent union of
// its components' optimal actions and the Cartesian product of their
// transition sets (package joint already implements both combinators),
// recursively, down to every joint state the optimal policy can ever
// reach.
package policy

import (
	"fmt"
	"time"

	"github.com/agentlab/coresolver/bound"
	"github.com/agentlab/coresolver/domain"
	"github.com/agentlab/coresolver/joint"
	"github.com/agentlab/coresolver/solver"
)

// Entry is one joint state's combined optimal-policy record.
type Entry struct {
	State       joint.State
	Action      joint.Action
	Transitions []joint.Transition
	Terminal    bool
}

// Policy is the solve's post-processed output: every joint state the
// optimal policy can reach, each mapped to its optimal joint action.
type Policy struct {
	value          bound.Value
	initial        joint.State
	objectiveNames []string
	entries        map[string]*Entry
	adapter        domain.Adapter
}

// New post-processes a solver.Result into a queryable Policy, recording
// the wall-clock cost of doing so as res.Stats.PostprocessingTime
// (spec.md §6's "preprocessing/solve/postprocessing wall-clock" —
// postprocessing is exactly this reconstruction, so it is timed here
// rather than in package solver, which never performs it).
func New(res *solver.Result) (*Policy, error) {
	start := time.Now()
	p := &Policy{
		value:          res.Value,
		initial:        res.Initial,
		objectiveNames: res.ObjectiveNames,
		entries:        make(map[string]*Entry),
		adapter:        res.Adapter,
	}
	if _, err := p.resolve(res, res.Initial); err != nil {
		return nil, err
	}
	if res.Stats != nil {
		res.Stats.PostprocessingTime = time.Since(start)
	}
	return p, nil
}

// resolve returns (building and memoizing, if necessary) the combined
// Entry for joint state s.
func (p *Policy) resolve(res *solver.Result, s joint.State) (*Entry, error) {
	key := s.Key()
	if e, ok := p.entries[key]; ok {
		return e, nil
	}

	if rec, ok := res.Decoupled[key]; ok {
		return p.resolveDecoupled(res, s, key, rec)
	}

	opt, ok := res.Search[key]
	if !ok {
		return nil, fmt.Errorf("policy: no optimal action for state %q", key)
	}
	entry := &Entry{State: s, Action: opt.Action, Transitions: opt.Transitions, Terminal: opt.Terminal}
	p.entries[key] = entry
	if err := p.resolveSuccessors(res, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// resolveDecoupled builds the combined Entry for a joint state that was
// split across the coordination graph's connected components: each
// component's optimal action and transition set is resolved
// independently, then merged via disjoint-agent union (actions) and
// Cartesian product (transitions) — spec.md §4.4.4 verbatim.
func (p *Policy) resolveDecoupled(res *solver.Result, s joint.State, key string, rec solver.DecoupleRecord) (*Entry, error) {
	var action joint.Action
	var transitions []joint.Transition
	terminal := true

	for i, comp := range rec.Components {
		child, err := p.resolve(res, comp)
		if err != nil {
			return nil, err
		}
		if !child.Terminal {
			terminal = false
		}
		if i == 0 {
			action = cloneAction(child.Action)
			transitions = append([]joint.Transition(nil), child.Transitions...)
			continue
		}
		action = mergeActions(action, child.Action)
		transitions = combineTransitions(transitions, child.Transitions)
	}

	entry := &Entry{State: s, Action: action, Transitions: transitions, Terminal: terminal}
	p.entries[key] = entry
	if err := p.resolveSuccessors(res, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (p *Policy) resolveSuccessors(res *solver.Result, entry *Entry) error {
	for _, tr := range entry.Transitions {
		if _, err := p.resolve(res, tr.To); err != nil {
			return err
		}
	}
	return nil
}

func cloneAction(a joint.Action) joint.Action {
	out := make(joint.Action, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func mergeActions(a, b joint.Action) joint.Action {
	out := make(joint.Action, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// combineTransitions computes the Cartesian product of two independent
// components' transition sets, combining each pair via
// joint.Transition.Combine. If a is empty (the first component), b is
// returned unchanged.
func combineTransitions(a, b []joint.Transition) []joint.Transition {
	if len(a) == 0 {
		return append([]joint.Transition(nil), b...)
	}
	out := make([]joint.Transition, 0, len(a)*len(b))
	for _, ta := range a {
		for _, tb := range b {
			out = append(out, ta.Combine(tb))
		}
	}
	return out
}

// Query factors an opaque global state through the domain adapter
// (domain.Factorizer.FactorState) and returns the optimal joint action at
// the resulting joint state (spec.md §4.4.4, §6 "query(global_state) →
// joint_action"). The global state representation is entirely
// domain-defined; Policy never inspects it directly.
func (p *Policy) Query(global interface{}) (joint.Action, error) {
	factored := p.adapter.FactorState(global)
	s := joint.State(factored)

	e, ok := p.entries[s.Key()]
	if !ok {
		return nil, fmt.Errorf("policy: no optimal action for state %q", s.Key())
	}
	return e.Action, nil
}

// ExpectedValue returns the policy's overall expected return from the
// initial joint state.
func (p *Policy) ExpectedValue() bound.Value { return p.value }

// Initial returns the instance's initial joint state.
func (p *Policy) Initial() joint.State { return p.initial }
