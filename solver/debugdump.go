package solver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/agentlab/coresolver/agent"
	"github.com/agentlab/coresolver/crg"
)

// dumpCRG writes agent a's built CRG as a human-readable YAML file under
// dir (spec.md §6: "if set, one human-readable dump per CRG").
func dumpCRG(dir string, a agent.ID, g *crg.Graph, weights []float64) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, fmt.Sprintf("crg-agent-%d.yaml", a)))
	if err != nil {
		return err
	}
	defer f.Close()
	return g.Dump(f, weights)
}

// finalPolicyRecord is the YAML-serializable shape of one joint state's
// optimal transition in dumpFinalPolicy.
type finalPolicyRecord struct {
	State    string  `yaml:"state"`
	Terminal bool    `yaml:"terminal"`
	Value    float64 `yaml:"value"`
}

// dumpFinalPolicy writes the solved search map as a human-readable YAML
// file under dir (spec.md §6: "... and one for the final policy"). This
// dumps the raw pre-post-processing search map — the data package policy
// later reconstructs the combined policy from — since package solver
// cannot depend on package policy (the dependency runs the other way).
func dumpFinalPolicy(dir string, res *Result, weights []float64) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, "policy.yaml"))
	if err != nil {
		return err
	}
	defer f.Close()

	keys := make([]string, 0, len(res.Search))
	for k := range res.Search {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	for _, k := range keys {
		opt := res.Search[k]
		rec := finalPolicyRecord{State: k, Terminal: opt.Terminal, Value: opt.Value.WeightedTotal(weights)}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("solver: dumpFinalPolicy: %w", err)
		}
	}
	return nil
}
