package solver

import (
	"time"

	"github.com/agentlab/coresolver/reward"
)

// Settings is the solver's plain configuration struct (spec.md §6's
// "Configuration (enumerated)" table), deliberately not reflection-driven
// (spec.md §9 Design Notes): every option is a concrete field, read
// directly, the same way the teacher's own hot-path configuration
// structs are plain fields rather than tag-driven lookups.
type Settings struct {
	// BBPruning enables outer branch-and-bound pruning before the inner
	// iteration (spec.md §4.4.2 step 7).
	BBPruning bool
	// BBTightening enables inner-loop re-pruning using the running best
	// (implies BBPruning; spec.md §4.4.2 step 8).
	BBTightening bool
	// LocalCRI enables the single-agent optimal-completion shortcut when
	// a CRG state is locally independent (spec.md §4.3 step 3).
	LocalCRI bool
	// DecoupleCRI enables coordination-graph-based decoupling during
	// search (spec.md §4.4.1).
	DecoupleCRI bool
	// ShowProgress emits a text progress bar during Solve. The bar has a
	// maximum of 1 and advances when a top-level findOptimal call
	// completes; it does not count individual top-level joint actions.
	ShowProgress bool

	// AssignHeuristic and Seed parameterize the reward-assignment policy
	// (package reward); a domain adapter's AssignRewards implementation
	// typically reads these to call reward.Assign.
	AssignHeuristic reward.AssignHeuristic
	Seed            uint64

	// MaxRuntime is the cooperative timeout budget. Zero or negative
	// means unbounded (spec.md §6 "max_runtime_ms … −1 means unbounded").
	MaxRuntime time.Duration

	// DebugDir, if non-empty, enables one human-readable YAML dump per
	// CRG (written by New, one crg-agent-<id>.yaml file per agent) and
	// one for the final policy (written by Solve as policy.yaml): the
	// solved search map, since package solver cannot depend on package
	// policy for its combined post-processed form.
	DebugDir string

	// ObjectiveNames names every component of the state-value vectors
	// this solve produces.
	ObjectiveNames []string
	// Weights scalarizes a bound.Value for comparison purposes (pruning,
	// independent-completion argmax), in the same order as
	// ObjectiveNames.
	Weights []float64
}

// Epsilon is the fixed numeric tolerance spec.md §5 "Numerics" uses for
// every probability and value comparison in the solver.
const Epsilon = 1e-8
