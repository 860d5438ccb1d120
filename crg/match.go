package crg

import (
	"github.com/agentlab/coresolver/agent"
	"github.com/agentlab/coresolver/domain"
	"github.com/agentlab/coresolver/internal/assertx"
)

// Context is the other-agent evidence a joint-state search step offers
// when asking a Graph to find its matching transition: the concrete
// local action and (from, to) local-state pair of every other agent
// present in the (possibly decoupled) joint state. An agent absent from
// both maps is treated as decoupled away.
type Context struct {
	Actions map[agent.ID]domain.Action
	States  map[agent.ID]domain.InfluenceToken
}

// Match finds the unique transition of info describing local action a
// from state from to state to, under the other-agent evidence in ctx
// (spec.md §4.3.4). The second return is false if no transition
// matches; debug builds additionally assert at most one match (the
// builder is expected to guarantee this in any valid context).
func Match(info *StateInfo, a domain.Action, from, to domain.State, otherAgents []agent.ID, ctx Context) (*Transition, bool) {
	var found *Transition
	for i := range info.Transitions {
		tr := &info.Transitions[i]
		if !tr.Action.Equal(a) || !tr.From.Equal(from) || !tr.To.Equal(to) {
			continue
		}
		if !matchesContext(tr, otherAgents, ctx) {
			continue
		}
		assertx.Check(found == nil, "crg.Match: more than one transition matches action %v", a)
		if found == nil {
			found = tr
		}
	}
	return found, found != nil
}

// matchesContext checks tr's Dep/Influence annotations against ctx for
// every agent in otherAgents: present agents must match the annotation,
// absent agents must be unannotated (no explicit dependency or
// influence).
func matchesContext(tr *Transition, otherAgents []agent.ID, ctx Context) bool {
	for _, g := range otherAgents {
		gi := int(g)
		if act, ok := ctx.Actions[g]; ok {
			if !tr.Dep.Matches(gi, act) {
				return false
			}
		} else if len(tr.Dep.Explicit(gi)) != 0 {
			// g is absent (decoupled away): only a branch with no
			// explicit dependency on g can still apply (spec.md §4.3.4).
			return false
		}

		if tok, ok := ctx.States[g]; ok {
			if !tr.Influence.Matches(gi, tok) {
				return false
			}
		} else if len(tr.Influence.Explicit(gi)) != 0 {
			return false
		}
	}
	return true
}
