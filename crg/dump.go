package crg

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/agentlab/coresolver/domain"
)

// transitionRecord is the YAML-serializable shape of one CRG transition
// in a Dump.
type transitionRecord struct {
	Action      string  `yaml:"action"`
	To          string  `yaml:"to"`
	Probability float64 `yaml:"probability"`
	Reward      float64 `yaml:"reward"`
}

// stateRecord is the YAML-serializable shape of one CRG state in a Dump.
type stateRecord struct {
	State       string             `yaml:"state"`
	Terminal    bool               `yaml:"terminal"`
	Independent bool               `yaml:"independent"`
	Transitions []transitionRecord `yaml:"transitions,omitempty"`
}

// keyString renders a domain.Key as a stable, sortable string for dump
// output and ordering; it is not used anywhere performance-sensitive.
func keyString(k domain.Key) string {
	return fmt.Sprintf("%d:%d:%s", k.Agent, k.Time, k.Hash)
}

// Dump writes one YAML document per built state of the graph, in
// state-key order for a deterministic dump (spec.md §6: "if set, one
// human-readable dump per CRG"). The reward column is each transition's
// total scalarized under weights; weights must be in the same order as
// the graph's own objective names (the builder's Weights field).
func (g *Graph) Dump(w io.Writer, weights []float64) error {
	type entry struct {
		key  string
		info *StateInfo
	}
	entries := make([]entry, 0, len(g.states))
	for k, info := range g.states {
		entries = append(entries, entry{key: keyString(k), info: info})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	enc := yaml.NewEncoder(w)
	defer enc.Close()

	for _, e := range entries {
		rec := stateRecord{State: e.key, Terminal: e.info.Terminal, Independent: e.info.Independent}
		for _, tr := range e.info.Transitions {
			rec.Transitions = append(rec.Transitions, transitionRecord{
				Action:      tr.Action.String(),
				To:          keyString(tr.To.Key()),
				Probability: tr.Probability,
				Reward:      tr.Reward.WeightedTotal(weights),
			})
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("crg: Dump: %w", err)
		}
	}
	return nil
}
