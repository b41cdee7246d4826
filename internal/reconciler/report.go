package reconciler

import netinfrav1alpha1 "github.com/darkbrains/netip-controller/pkg/apis/netinfra/v1alpha1"

// report implements §4.1 Phase 5: derive the counters and per-IP/per-node
// gauges the caller feeds to metrics from the actuated state, regardless
// of whether the tick aborted partway through.
func (r *Reconciler) report(pool *netinfrav1alpha1.NetIPAllocation, classified []classifiedNode, state *actuateState, executed []Action, err error) TickResult {
	reserved := len(pool.Spec.ReservedIPs)
	attached := 0
	bindings := make(map[string]string, reserved)
	for _, ip := range pool.Spec.ReservedIPs {
		if node, ok := state.boundIPToNode[ip]; ok {
			attached++
			bindings[ip] = node
		}
	}

	return TickResult{
		PoolName:   pool.Name,
		Reserved:   reserved,
		Attached:   attached,
		Unattached: reserved - attached,
		Actions:    executed,
		IPBindings: bindings,
		Nodes:      nodeObservations(classified, executed),
		Err:        err,
		ErrKind:    classifyErr(err),
	}
}

// nodeObservations projects each classified node's post-tick cordon and
// ip.ready label state, applying the Label/Unlabel actions that actually
// executed on top of the pre-tick label seen at discover time.
func nodeObservations(classified []classifiedNode, executed []Action) []NodeObservation {
	labelDelta := make(map[string]bool, len(executed))
	for _, a := range executed {
		switch a.Kind {
		case ActionLabel:
			labelDelta[a.Node] = true
		case ActionUnlabel:
			labelDelta[a.Node] = false
		}
	}

	out := make([]NodeObservation, 0, len(classified))
	for _, cn := range classified {
		ready := cn.Node.Labels["ip.ready"] == "true"
		if v, ok := labelDelta[cn.Node.Name]; ok {
			ready = v
		}
		out = append(out, NodeObservation{
			Node:     cn.Node.Name,
			Cordoned: !cn.Node.Schedulable,
			Ready:    ready,
		})
	}
	return out
}
