package policy

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/agentlab/coresolver/joint"
)

// stepRecord is the YAML-serializable shape of one joint state's optimal
// action at a DumpStep time step.
type stepRecord struct {
	State  string      `yaml:"state"`
	Action map[int]int `yaml:"action"`
}

// DumpStep writes one YAML document listing every joint state reached at
// time step t and its optimal joint action, in joint-state-key order for
// a deterministic dump (spec.md §10 supplemented feature: "optional
// dump-to-stream for each time step").
func (p *Policy) DumpStep(w io.Writer, t int) error {
	keys := make([]string, 0, len(p.entries))
	for k, e := range p.entries {
		if stateTime(e.State) == t {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	enc := yaml.NewEncoder(w)
	defer enc.Close()

	for _, k := range keys {
		e := p.entries[k]
		rec := stepRecord{State: k, Action: make(map[int]int, len(e.Action))}
		for a, act := range e.Action {
			rec.Action[int(a)] = act.Local
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("policy: DumpStep: %w", err)
		}
	}
	return nil
}

// stateTime returns the shared time step of a joint state: every agent's
// local state carries the same Time (package joint's State doc), so the
// first one found is representative.
func stateTime(s joint.State) int {
	for _, ls := range s {
		return ls.Time
	}
	return -1
}
