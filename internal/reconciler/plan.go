package reconciler

import (
	"sort"

	"github.com/samber/lo"

	netinfrav1alpha1 "github.com/darkbrains/netip-controller/pkg/apis/netinfra/v1alpha1"
)

// evictionTarget names a pod the plan wants gone from a misconfigured
// node, carried alongside the Action list since Action itself has no
// room for a namespace.
type evictionTarget struct {
	Namespace string
	Name      string
	Node      string
}

// plan implements §4.1 Phase 3. It returns the ordered action list plus
// the pods (if any) a misconfigured-node eviction should target.
func (r *Reconciler) plan(pool *netinfrav1alpha1.NetIPAllocation, classified []classifiedNode, d *discoverResult) ([]Action, []evictionTarget, error) {
	var evicts []Action
	var evictTargets []evictionTarget

	// Step 1: misconfigured nodes that also carry a stale ip.ready=true
	// label are forced to give up their workload pods, per §9's resolved
	// open question (conservative default).
	if ref := pool.Spec.EffectiveWorkloadRef(); ref != nil {
		pods, err := r.view.ListWorkloadPods(*ref)
		if err != nil {
			return nil, nil, err
		}
		for node := range d.misconfigured {
			n, ok := d.nodeByName[node]
			if !ok || n.Labels["ip.ready"] != "true" {
				continue
			}
			hadTarget := false
			for _, p := range pods {
				if p.NodeName == node {
					evictTargets = append(evictTargets, evictionTarget{Namespace: p.Namespace, Name: p.Name, Node: node})
					hadTarget = true
				}
			}
			if hadTarget {
				evicts = append(evicts, Action{Kind: ActionEvict, Node: node})
			}
		}
	}
	sortActions(evicts)

	// Step 2/3: drainable cordoned-bound nodes detach and unlabel;
	// pod-holding ones are left alone (P4).
	var detaches []Action
	unattached := append([]string{}, d.unattached...)
	for _, cn := range nodesInClass(classified, CordonedBound) {
		if !cn.Drainable {
			continue
		}
		detaches = append(detaches,
			Action{Kind: ActionDetach, IP: cn.BoundIP, Node: cn.Node.Name},
			Action{Kind: ActionUnlabel, Node: cn.Node.Name},
		)
		unattached = append(unattached, cn.BoundIP)
	}
	sortActions(detaches)

	// Step 5: assign freed/unattached IPs to healthy-free nodes in
	// deterministic (zone preference, node name) order.
	free := nodesInClass(classified, HealthyFree)
	sort.Slice(free, func(i, j int) bool {
		zi, zj := zoneRank(pool.Spec.Cloud.Zones, free[i].Node.Instance.Zone), zoneRank(pool.Spec.Cloud.Zones, free[j].Node.Instance.Zone)
		if zi != zj {
			return zi < zj
		}
		return free[i].Node.Name < free[j].Node.Name
	})

	var attaches []Action
	n := len(free)
	if n > len(unattached) {
		n = len(unattached)
	}
	for i := 0; i < n; i++ {
		attaches = append(attaches,
			Action{Kind: ActionAttach, IP: unattached[i], Node: free[i].Node.Name},
			Action{Kind: ActionLabel, Node: free[i].Node.Name},
		)
	}
	sortActions(attaches)
	leftoverFree := free[n:]

	// Step 6: self-heal healthy-bound nodes missing the ready label.
	var selfHealLabels []Action
	for _, cn := range nodesInClass(classified, HealthyBound) {
		if cn.Node.Labels["ip.ready"] != "true" {
			selfHealLabels = append(selfHealLabels, Action{Kind: ActionLabel, Node: cn.Node.Name})
		}
	}
	sortActions(selfHealLabels)

	// Step 7 (supplemented): strip a stale ready label from any eligible
	// node that holds no pool IP — free nodes left over after step 5's
	// assignment, and cordoned-free nodes, which never receive an
	// attach target either — scoped to this pool's eligible-node set
	// (see DESIGN.md for why a true cluster-wide sweep is unsafe across
	// pools with overlapping selectors). Without this, a cordoned-free
	// node tampered with externally would keep a stale label forever,
	// violating P2's "no IP-less node carries ip.ready=true" clause.
	staleCandidates := append(append([]classifiedNode{}, leftoverFree...), nodesInClass(classified, CordonedFree)...)
	var staleUnlabels []Action
	for _, cn := range staleCandidates {
		if cn.Node.Labels["ip.ready"] == "true" {
			staleUnlabels = append(staleUnlabels, Action{Kind: ActionUnlabel, Node: cn.Node.Name})
		}
	}
	sortActions(staleUnlabels)

	actions := lo.Flatten([][]Action{evicts, detaches, attaches, selfHealLabels, staleUnlabels})
	return actions, evictTargets, nil
}

func sortActions(actions []Action) {
	sort.Slice(actions, func(i, j int) bool {
		if actions[i].Node != actions[j].Node {
			return actions[i].Node < actions[j].Node
		}
		// On one node the cloud Attach/Detach runs before its paired
		// Label/Unlabel, which carries no IP.
		ci := actions[i].Kind == ActionAttach || actions[i].Kind == ActionDetach
		cj := actions[j].Kind == ActionAttach || actions[j].Kind == ActionDetach
		if ci != cj {
			return ci
		}
		return actions[i].IP < actions[j].IP
	})
}

// zoneRank returns the index of zone in the pool's preferred zones
// list, or len(zones) if absent/unset, so preferred zones sort first.
func zoneRank(zones []string, zone string) int {
	for i, z := range zones {
		if z == zone {
			return i
		}
	}
	return len(zones)
}
