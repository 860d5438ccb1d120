// Package domain defines the seam between the CoRe core and a concrete
// problem: the Adapter interface (spec.md §4.1) plus the small set of
// value types (State, LocalTransition, RewardSpec) that flow across it.
//
// The core never inspects domain-specific state content; it only ever
// calls Adapter methods and compares States with Equal.
package domain

import (
	"fmt"

	"github.com/agentlab/coresolver/agent"
)

// Payload is the domain-specific content of a local state. Concrete
// domains implement this with whatever data distinguishes their states
// (e.g. a maintenance-task schedule position); the core compares
// payloads with Equal and keys them through State.Key (Keyer.Hash, or
// the payload's %#v form).
type Payload interface {
	Equal(other Payload) bool
}

// State is a per-agent local state: (agent, time, domain-payload).
// Equality includes the payload; states belonging to distinct agents are
// never equal, even if their time and payload happen to coincide.
type State struct {
	Agent   agent.ID
	Time    int
	Payload Payload
}

// Equal reports whether s and other are the same CRG state.
func (s State) Equal(other State) bool {
	if s.Agent != other.Agent || s.Time != other.Time {
		return false
	}
	if s.Payload == nil || other.Payload == nil {
		return s.Payload == nil && other.Payload == nil
	}
	return s.Payload.Equal(other.Payload)
}

// Key is a comparable, map-safe key for a State, suitable for use as a Go
// map key where State itself (holding an interface field) cannot
// guarantee the right equality semantics via ==. Payloads that implement
// Keyer supply the Hash part directly; other Payloads are keyed by their
// %#v form (see State.Key).
type Key struct {
	Agent agent.ID
	Time  int
	Hash  string
}

// Keyer is an optional capability a Payload can implement to provide an
// efficient, content-addressed string key for use in State arenas (the
// "arena of states keyed by content hash" of spec.md §9 Design Notes).
type Keyer interface {
	Payload
	Hash() string
}

// Key returns a map-safe key for s. If the payload implements Keyer, its
// Hash is used; otherwise the key falls back to the payload's %#v form,
// which is still content-addressed (just not necessarily collision-proof
// for adversarial payload types).
func (s State) Key() Key {
	if s.Payload == nil {
		return Key{Agent: s.Agent, Time: s.Time, Hash: ""}
	}
	if h, ok := s.Payload.(Keyer); ok {
		return Key{Agent: s.Agent, Time: s.Time, Hash: h.Hash()}
	}
	return Key{Agent: s.Agent, Time: s.Time, Hash: fallbackHash(s.Payload)}
}

func fallbackHash(p Payload) string {
	return fmt.Sprintf("%#v", p)
}
