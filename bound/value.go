// Package bound implements the numeric value-vector and return-bound
// arithmetic shared by every other package in this module.
//
// A Value is a fixed-length vector of named objectives (revenue, cost,
// network-reward, ...). All reward arithmetic in the core is carried out
// over Value; scalarization (collapsing a Value to a single comparable
// number) is delayed until the moment two alternatives must actually be
// compared.
package bound

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Value is a named-objective numeric vector, backed by a gonum
// *mat.VecDense the way the teacher backs every one of its own numeric
// vectors (agent/agent.go's Weights() map[string]*mat.Dense,
// buffer/gae/GAE.go's *mat.VecDense reward buffers). The names are shared
// across every Value produced for a single solve (they come from the
// domain adapter), so two Values are only ever combined when they share
// the same Names slice (by value, not necessarily by identity).
type Value struct {
	names []string
	vec   *mat.VecDense
}

// NewValue returns a Value with the given objective names, all initialized
// to zero.
func NewValue(names []string) Value {
	if len(names) == 0 {
		return Value{names: names}
	}
	return Value{names: names, vec: mat.NewVecDense(len(names), nil)}
}

// FromSlice returns a Value with the given objective names and data. The
// slices must be the same length.
func FromSlice(names []string, data []float64) Value {
	if len(names) != len(data) {
		panic(fmt.Sprintf("bound: FromSlice: %d names but %d values", len(names), len(data)))
	}
	if len(names) == 0 {
		return Value{names: names}
	}
	cp := make([]float64, len(data))
	copy(cp, data)
	return Value{names: names, vec: mat.NewVecDense(len(cp), cp)}
}

// Len returns the number of named objectives in v.
func (v Value) Len() int {
	if v.vec == nil {
		return 0
	}
	return v.vec.Len()
}

// Names returns the objective names of v.
func (v Value) Names() []string { return v.names }

// At returns the value of the i'th named objective.
func (v Value) At(i int) float64 { return v.vec.AtVec(i) }

// Get returns the value of the named objective, and false if no such
// objective exists.
func (v Value) Get(name string) (float64, bool) {
	for i, n := range v.names {
		if n == name {
			return v.vec.AtVec(i), true
		}
	}
	return 0, false
}

// setRaw writes val at index i. Only ever called on a Value this package
// just built via clone or NewValue, never on a Value a caller may still
// hold a reference to.
func (v Value) setRaw(i int, val float64) { v.vec.SetVec(i, val) }

// clone returns a deep copy of v.
func (v Value) clone() Value {
	if v.vec == nil {
		return Value{names: v.names}
	}
	cp := mat.NewVecDense(v.vec.Len(), nil)
	cp.CopyVec(v.vec)
	return Value{names: v.names, vec: cp}
}

// Add returns the elementwise sum v + other. Panics if the two Values do
// not have the same length.
func (v Value) Add(other Value) Value {
	out := v.clone()
	if out.vec == nil {
		return out
	}
	out.vec.AddVec(v.vec, other.vec)
	return out
}

// Scale returns v scaled by the scalar p.
func (v Value) Scale(p float64) Value {
	out := v.clone()
	if out.vec == nil {
		return out
	}
	out.vec.ScaleVec(p, v.vec)
	return out
}

// WeightedTotal scalarizes v by a weighted sum using the given per-
// objective weights (in the same name order as v). Missing weights are
// treated as zero. Follows the teacher's own buffer/gae/GAE.go pattern of
// running a gonum/floats reduction directly over a VecDense's raw
// backing slice rather than re-deriving the dot product by hand.
func (v Value) WeightedTotal(weights []float64) float64 {
	n := v.Len()
	if len(weights) < n {
		n = len(weights)
	}
	if n == 0 {
		return 0
	}
	return floats.Dot(v.vec.RawVector().Data[:n], weights[:n])
}

// IsEmpty reports whether v carries no objectives (the additive identity
// shape).
func (v Value) IsEmpty() bool { return v.Len() == 0 }
