// Package coord implements the coordination graph of spec.md §4.4.3: a
// meta-graph over agents whose edges are reward functions of scope >= 2,
// each independently flaggable as "currently reward-independent" (CRI).
// Connected components of the not-yet-CRI edges are the search's
// independent sub-search units.
//
// Connectivity is delegated to gonum's graph library
// (gonum.org/v1/gonum/graph, .../graph/simple, .../graph/topo) rather
// than a hand-rolled union-find: the coordination graph is exactly the
// kind of small, general-purpose graph problem that library already
// solves, and it is a dependency the teacher itself carries.
package coord

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/agentlab/coresolver/agent"
	"github.com/agentlab/coresolver/domain"
	"github.com/agentlab/coresolver/joint"
	"github.com/agentlab/coresolver/reward"
)

// Edge is one coordination-graph edge: a reward of scope >= 2 connecting
// two of its scope agents, with its own independently-flaggable CRI bit.
type Edge struct {
	A, B   agent.ID
	Reward *reward.Reward
	CRI    bool
}

// Graph is the coordination graph for one solve: every agent is a node,
// and every scope-pair of every shared reward contributes one Edge.
type Graph struct {
	agents []agent.ID
	edges  []*Edge
}

// New builds the coordination graph from the instance's agents and its
// full reward list: for every reward of scope >= 2, one Edge per
// distinct unordered pair of its scope agents (spec.md §3 "Coordination
// graph"), all initially not-CRI.
func New(agents []agent.ID, rewards []*reward.Reward) *Graph {
	g := &Graph{agents: append([]agent.ID(nil), agents...)}
	for _, r := range rewards {
		scope := r.Scope()
		for i := 0; i < len(scope); i++ {
			for j := i + 1; j < len(scope); j++ {
				g.edges = append(g.edges, &Edge{A: scope[i], B: scope[j], Reward: r})
			}
		}
	}
	return g
}

// Edges returns every coordination-graph edge, for tests and debug dumps.
func (g *Graph) Edges() []*Edge { return g.edges }

// Update iterates every not-yet-CRI edge whose both endpoints are present
// in js, asking its reward whether the two endpoint agents are now
// reward-independent through it (spec.md §4.4.3). Every edge that newly
// becomes CRI has its flag set and is returned, so the caller can later
// Restore exactly these edges (stack discipline tied to recursion).
func Update(adapter domain.Adapter, g *Graph, js joint.State) []*Edge {
	var flagged []*Edge
	for _, e := range g.edges {
		if e.CRI {
			continue
		}
		if _, ok := js[e.A]; !ok {
			continue
		}
		if _, ok := js[e.B]; !ok {
			continue
		}
		if e.Reward.CRI(adapter, e.A, e.B, js) {
			e.CRI = true
			flagged = append(flagged, e)
		}
	}
	return flagged
}

// Restore clears the CRI flag of every edge in edges (the undo half of
// Update's stack discipline).
func Restore(edges []*Edge) {
	for _, e := range edges {
		e.CRI = false
	}
}

// ConnectedComponents computes the connected components of the graph
// restricted to agents, walking only not-yet-CRI edges (spec.md §4.4.1
// step 3). Agents with no surviving edge form their own singleton
// component.
func (g *Graph) ConnectedComponents(agents []agent.ID) [][]agent.ID {
	present := make(map[agent.ID]bool, len(agents))
	for _, a := range agents {
		present[a] = true
	}

	cg := simple.NewUndirectedGraph()
	for _, a := range agents {
		cg.AddNode(node(a))
	}
	for _, e := range g.edges {
		if e.CRI {
			continue
		}
		if !present[e.A] || !present[e.B] {
			continue
		}
		cg.SetEdge(cg.NewEdge(node(e.A), node(e.B)))
	}

	components := topo.ConnectedComponents(cg)
	out := make([][]agent.ID, 0, len(components))
	for _, comp := range components {
		ids := make([]agent.ID, 0, len(comp))
		for _, n := range comp {
			ids = append(ids, agent.ID(n.ID()))
		}
		out = append(out, ids)
	}
	return out
}

// node adapts an agent.ID into a graph.Node for gonum's graph library.
type node agent.ID

func (n node) ID() int64 { return int64(n) }

var _ graph.Node = node(0)
