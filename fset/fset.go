// Package fset implements the "collection plus complement set" container
// (spec.md §3's "factored-other-collection") used to represent a CRG
// transition's dependency and influence sets.
//
// A Factored[T] answers a single question for members of type T keyed by
// an owning agent: does a given member match? A member matches either
// because it was explicitly listed, or because its owner carries a
// "complement" marker ("any of this agent's members not in the listed
// complement set").
package fset

import "sort"

// Factored is a per-agent-keyed collection supporting both explicit
// membership and "anything but" complement membership.
//
// The zero value is an empty Factored (no agent has any explicit or
// complement entry; Matches always returns false for it).
type Factored[T comparable] struct {
	explicit map[int][]T      // agent -> explicit members
	other    map[int]struct{} // agent -> has a complement marker
	exclude  map[int][]T      // agent -> complement exclusion set (only meaningful if other[agent])
}

// New returns an empty Factored collection.
func New[T comparable]() *Factored[T] {
	return &Factored[T]{
		explicit: make(map[int][]T),
		other:    make(map[int]struct{}),
		exclude:  make(map[int][]T),
	}
}

// AddExplicit adds x as an explicit member belonging to agent.
func (f *Factored[T]) AddExplicit(agent int, x T) {
	f.explicit[agent] = append(f.explicit[agent], x)
}

// SetOther marks agent as matched by "any member not in exclude". Calling
// SetOther a second time for the same agent replaces the previous
// complement set.
func (f *Factored[T]) SetOther(agent int, exclude []T) {
	f.other[agent] = struct{}{}
	cp := make([]T, len(exclude))
	copy(cp, exclude)
	f.exclude[agent] = cp
}

// HasOther reports whether agent carries a complement marker.
func (f *Factored[T]) HasOther(agent int) bool {
	_, ok := f.other[agent]
	return ok
}

// Explicit returns the explicit members of agent, if any.
func (f *Factored[T]) Explicit(agent int) []T {
	return f.explicit[agent]
}

// Agents returns every agent that has at least one explicit member or a
// complement marker, in insertion-independent but stable (sorted) order.
func (f *Factored[T]) Agents() []int {
	seen := make(map[int]struct{})
	for a := range f.explicit {
		seen[a] = struct{}{}
	}
	for a := range f.other {
		seen[a] = struct{}{}
	}
	agents := make([]int, 0, len(seen))
	for a := range seen {
		agents = append(agents, a)
	}
	sort.Ints(agents)
	return agents
}

// Matches reports whether x, belonging to agent, matches this collection:
//
//   - x ∈ explicit[agent], or
//   - agent has a complement marker and x ∉ exclude[agent].
func (f *Factored[T]) Matches(agent int, x T) bool {
	for _, e := range f.explicit[agent] {
		if e == x {
			return true
		}
	}
	if f.HasOther(agent) {
		for _, e := range f.exclude[agent] {
			if e == x {
				return false
			}
		}
		return true
	}
	return false
}

// IsIrrelevant reports whether agent has no explicit members and no
// complement marker for this collection — i.e. the collection expresses
// no dependency/influence at all on agent. A complement marker with an
// empty exclusion set (the single "other: ∅" branch an empty D_g yields,
// spec.md §4.3.1) still makes agent relevant.
func (f *Factored[T]) IsIrrelevant(agent int) bool {
	return len(f.explicit[agent]) == 0 && !f.HasOther(agent)
}
