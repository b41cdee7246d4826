package reconciler

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/darkbrains/netip-controller/internal/clusterview"
	"github.com/darkbrains/netip-controller/internal/cloud"
	netinfrav1alpha1 "github.com/darkbrains/netip-controller/pkg/apis/netinfra/v1alpha1"
)

// discoverResult is the Phase 1 snapshot: every eligible node's cloud
// binding state, projected against the pool's reserved-IP list.
type discoverResult struct {
	eligible      []clusterview.Node
	nodeByName    map[string]clusterview.Node
	boundIPToNode map[string]string
	nodeToBoundIP map[string]string
	unattached    []string            // reserved IPs held by no eligible node, in pool order
	misconfigured map[string][]string // node name -> external IPs not in the pool's reserved list
}

func (r *Reconciler) discover(ctx context.Context, pool *netinfrav1alpha1.NetIPAllocation, driver cloud.Driver) (*discoverResult, error) {
	eligible, err := r.view.ListEligibleNodes(pool.Spec.NodeSelector)
	if err != nil {
		return nil, fmt.Errorf("list eligible nodes: %w", err)
	}

	reserved := make(map[string]bool, len(pool.Spec.ReservedIPs))
	for _, ip := range pool.Spec.ReservedIPs {
		reserved[ip] = true
	}

	res := &discoverResult{
		eligible:      eligible,
		nodeByName:    make(map[string]clusterview.Node, len(eligible)),
		boundIPToNode: make(map[string]string),
		nodeToBoundIP: make(map[string]string),
		misconfigured: make(map[string][]string),
	}

	for _, node := range eligible {
		res.nodeByName[node.Name] = node

		ips, err := driver.GetExternalIPs(ctx, node.Instance)
		if err != nil {
			return nil, fmt.Errorf("get external IPs for node %s: %w", node.Name, err)
		}

		for _, ip := range ips {
			if !reserved[ip] {
				res.misconfigured[node.Name] = append(res.misconfigured[node.Name], ip)
				continue
			}
			res.boundIPToNode[ip] = node.Name
			res.nodeToBoundIP[node.Name] = ip
		}
	}

	res.unattached = lo.Filter(pool.Spec.ReservedIPs, func(ip string, _ int) bool {
		_, bound := res.boundIPToNode[ip]
		return !bound
	})

	return res, nil
}
