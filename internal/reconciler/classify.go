package reconciler

import (
	"github.com/samber/lo"

	netinfrav1alpha1 "github.com/darkbrains/netip-controller/pkg/apis/netinfra/v1alpha1"
)

// classify partitions discover's eligible nodes into the four disjoint
// classes of §4.1 Phase 2, resolving drainability for cordoned-bound
// nodes against the pool's workload pods.
func (r *Reconciler) classify(pool *netinfrav1alpha1.NetIPAllocation, d *discoverResult) ([]classifiedNode, error) {
	ref := pool.Spec.EffectiveWorkloadRef()

	var runningByNode map[string]bool
	if ref != nil {
		pods, err := r.view.ListWorkloadPods(*ref)
		if err != nil {
			return nil, err
		}
		runningByNode = make(map[string]bool)
		for _, p := range pods {
			if p.Running {
				runningByNode[p.NodeName] = true
			}
		}
	}

	out := make([]classifiedNode, 0, len(d.eligible))
	for _, node := range d.eligible {
		boundIP, bound := d.nodeToBoundIP[node.Name]

		cn := classifiedNode{Node: node, BoundIP: boundIP}
		switch {
		case node.Schedulable && bound:
			cn.Class = HealthyBound
		case node.Schedulable && !bound:
			cn.Class = HealthyFree
		case !node.Schedulable && bound:
			cn.Class = CordonedBound
			// Missing workloadRef: pod-awareness is skipped, every
			// cordoned-bound node is drainable immediately (§4.1
			// Failure semantics).
			cn.Drainable = ref == nil || !runningByNode[node.Name]
		default:
			cn.Class = CordonedFree
		}
		out = append(out, cn)
	}
	return out, nil
}

func nodesInClass(nodes []classifiedNode, class NodeClass) []classifiedNode {
	return lo.Filter(nodes, func(n classifiedNode, _ int) bool { return n.Class == class })
}
