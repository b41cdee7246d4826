// Package reconciler implements the per-pool five-phase state machine:
// discover eligible nodes and their cloud-attached IPs, classify nodes
// by schedulability and binding, plan the action list that converges
// the pool toward §3's invariants, actuate it against the cloud driver
// and the Kubernetes API, and report the resulting counters.
package reconciler

import (
	"time"

	"github.com/darkbrains/netip-controller/internal/clusterview"
)

// Phase names one of the five reconcile stages, used only for logging
// and error attribution.
type Phase int

const (
	PhaseDiscover Phase = iota
	PhaseClassify
	PhasePlan
	PhaseActuate
	PhaseReport
)

func (p Phase) String() string {
	switch p {
	case PhaseDiscover:
		return "discover"
	case PhaseClassify:
		return "classify"
	case PhasePlan:
		return "plan"
	case PhaseActuate:
		return "actuate"
	case PhaseReport:
		return "report"
	default:
		return "unknown"
	}
}

// NodeClass is the Phase 2 partition of an eligible node.
type NodeClass int

const (
	HealthyBound NodeClass = iota
	HealthyFree
	CordonedBound
	CordonedFree
)

// classifiedNode pairs a view.Node with its Phase-2 classification and,
// for CordonedBound nodes, whether it is drainable.
type classifiedNode struct {
	Node       clusterview.Node
	Class      NodeClass
	BoundIP    string // set when Class is *Bound
	Drainable  bool   // meaningful only for CordonedBound
}

// ActionKind is the verb of a planned action.
type ActionKind int

const (
	ActionAttach ActionKind = iota
	ActionDetach
	ActionLabel
	ActionUnlabel
	ActionEvict
)

func (k ActionKind) String() string {
	switch k {
	case ActionAttach:
		return "attach"
	case ActionDetach:
		return "detach"
	case ActionLabel:
		return "label"
	case ActionUnlabel:
		return "unlabel"
	case ActionEvict:
		return "evict"
	default:
		return "unknown"
	}
}

// Action is one step of a plan, per §4.1 Phase 3. Ok records the
// action's own outcome once actuate has run it; it is meaningless
// (zero value) on an action that was planned but never reached.
type Action struct {
	Kind ActionKind
	IP   string
	Node string
	Ok   bool
}

// NodeObservation is an eligible node's post-tick state, carried by
// TickResult so Phase 5 can set the per-node gauges (§4.1 Phase 5,
// "per-IP gauges" and node label/cordon state).
type NodeObservation struct {
	Node     string
	Cordoned bool
	Ready    bool // ip.ready=true label held after actuation
}

// TickResult is the outcome of one Reconcile call, consumed by Phase 5
// (report) to update metrics.
type TickResult struct {
	PoolName   string
	Duration   time.Duration
	Reserved   int
	Attached   int
	Unattached int
	Actions    []Action
	IPBindings map[string]string // reserved IP -> bound node, only entries currently attached
	Nodes      []NodeObservation
	Err        error
	ErrKind    ErrorKind
}

// Healthy reports whether the tick converged: every reserved IP ended
// up attached and no error occurred.
func (r TickResult) Healthy() bool {
	return r.Err == nil && r.Reserved == r.Attached
}
