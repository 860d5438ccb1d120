// Package instance defines the seam between the solver core and an
// external instance-file collaborator (spec.md §6 "Instance file
// format"). It carries only the field structs and the Reader/Writer
// interfaces a concrete serializer would implement — no concrete
// serializer lives here, since that format's I/O is explicitly out of
// core scope (spec.md §1).
//
// A concrete reader still has to produce the types the rest of this
// module already works with (domain.Adapter, rewardfn.Func, ...); Spec
// is the intermediate, serializer-agnostic shape those concrete readers
// populate, mirroring the hierarchical text format spec.md §6 describes:
// a root "instance" key, a child "agents" collection, and an optional
// "shared_reward" entry.
package instance

import "github.com/agentlab/coresolver/rewardfn"

// CurrentVersion is the highest instance-file version this seam
// understands. Readers accept any version <= CurrentVersion and must
// supply defaults for fields introduced after the file's own version
// (spec.md §6: "Version evolution is monotonic").
const CurrentVersion = 1

// DelayMethod names how a task's stochastic delay is resolved.
type DelayMethod string

const (
	// DelayNone disables stochastic delay: every task finishes in
	// exactly its nominal Duration.
	DelayNone DelayMethod = "none"
	// DelayGeometric resamples a delay with DelayProbability on every
	// step of a task already in progress.
	DelayGeometric DelayMethod = "geometric"
	// DelayOnce draws the delay decision exactly once, at task start.
	DelayOnce DelayMethod = "once"
)

// TaskSpec is one task within an agent (spec.md §6): its revenue, cost
// (a serialized reward function charged per step in progress), nominal
// duration, and stochastic delay parameters.
type TaskSpec struct {
	ID              string
	Revenue         float64
	Cost            rewardfn.Func
	Duration        int
	DelayProbability float64
	DelayDuration   int
}

// AgentSpec is one agent within a Spec: an identifier and its ordered
// collection of tasks.
type AgentSpec struct {
	ID    string
	Tasks []TaskSpec
}

// Spec is the serializer-agnostic shape of a parsed instance file
// (spec.md §6): the root instance fields, the agent/task hierarchy, and
// an optional shared reward rule set shared across agents.
type Spec struct {
	Version      int
	Horizon      int
	MustComplete bool
	DelayMethod  DelayMethod
	Seed         int64

	Agents []AgentSpec

	// SharedReward is the optional serialized shared-reward model
	// (spec.md §6 "an optional shared_reward entry carrying a serialized
	// reward model"). Concrete readers decide its concrete shape; this
	// seam only reserves a slot for it since the format itself is out of
	// core scope.
	SharedReward string
}

// WithDefaults returns a copy of s with any field introduced after the
// file's own Version filled in with its current default, implementing
// spec.md §6's monotonic version-evolution rule. CurrentVersion carries
// no post-v1 fields yet, so this is presently the identity beyond
// clamping Version itself.
func (s Spec) WithDefaults() Spec {
	if s.Version <= 0 {
		s.Version = 1
	}
	return s
}

// Reader is implemented by a concrete instance-file parser (XML, JSON,
// or any other hierarchical text format spec.md §6 might be realized
// in). Read must reject any Spec.Version greater than CurrentVersion.
type Reader interface {
	Read(path string) (Spec, error)
}

// Writer is implemented by a concrete instance-file serializer, the
// inverse of Reader.
type Writer interface {
	Write(path string, spec Spec) error
}
