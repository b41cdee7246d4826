// Package clusterview is a read-through cache over nodes, pods, and the
// workload kinds a pool can reference, fed by client-go's
// SharedInformerFactory. Each ListEligibleNodes / ListWorkloadPods call
// reads the informer caches afresh; no snapshot is held across calls, so
// two calls within one reconcile tick can observe different cache states.
package clusterview

import (
	"context"
	"fmt"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/informers"
	"k8s.io/client-go/kubernetes"
	appslisters "k8s.io/client-go/listers/apps/v1"
	corelisters "k8s.io/client-go/listers/core/v1"
	"k8s.io/client-go/tools/cache"

	"github.com/darkbrains/netip-controller/internal/cloud"
	netinfrav1alpha1 "github.com/darkbrains/netip-controller/pkg/apis/netinfra/v1alpha1"
)

// Node is the view's per-node snapshot, §3 "Node (view)".
type Node struct {
	Name        string
	Instance    cloud.InstanceRef
	Schedulable bool
	Labels      map[string]string
}

// Pod is the view's per-pod snapshot, §3 "Workload (view)".
type Pod struct {
	Name      string
	Namespace string
	NodeName  string
	Running   bool
}

// View is the read-only query surface the reconciler uses each tick.
type View interface {
	WaitForCacheSync(ctx context.Context) bool
	ListEligibleNodes(selector map[string]string) ([]Node, error)
	GetNode(name string) (Node, bool)
	ListWorkloadPods(ref netinfrav1alpha1.WorkloadReference) ([]Pod, error)
}

type clusterView struct {
	factory informers.SharedInformerFactory

	nodeLister        corelisters.NodeLister
	podLister         corelisters.PodLister
	replicaSetLister  appslisters.ReplicaSetLister
	deploymentLister  appslisters.DeploymentLister
	statefulSetLister appslisters.StatefulSetLister
	daemonSetLister   appslisters.DaemonSetLister

	synced []cache.InformerSynced
}

// New builds a View backed by a fresh SharedInformerFactory over client.
// Call Start to begin the watch before the first WaitForCacheSync.
func New(client kubernetes.Interface, resync time.Duration) *clusterView {
	factory := informers.NewSharedInformerFactory(client, resync)

	nodes := factory.Core().V1().Nodes()
	pods := factory.Core().V1().Pods()
	rs := factory.Apps().V1().ReplicaSets()
	deployments := factory.Apps().V1().Deployments()
	statefulSets := factory.Apps().V1().StatefulSets()
	daemonSets := factory.Apps().V1().DaemonSets()

	return &clusterView{
		factory:           factory,
		nodeLister:        nodes.Lister(),
		podLister:         pods.Lister(),
		replicaSetLister:  rs.Lister(),
		deploymentLister:  deployments.Lister(),
		statefulSetLister: statefulSets.Lister(),
		daemonSetLister:   daemonSets.Lister(),
		synced: []cache.InformerSynced{
			nodes.Informer().HasSynced,
			pods.Informer().HasSynced,
			rs.Informer().HasSynced,
			deployments.Informer().HasSynced,
			statefulSets.Informer().HasSynced,
			daemonSets.Informer().HasSynced,
		},
	}
}

// Start begins all registered informers against stopCh.
func (v *clusterView) Start(stopCh <-chan struct{}) {
	v.factory.Start(stopCh)
}

func (v *clusterView) WaitForCacheSync(ctx context.Context) bool {
	return cache.WaitForCacheSync(ctx.Done(), v.synced...)
}

func (v *clusterView) ListEligibleNodes(selector map[string]string) ([]Node, error) {
	nodes, err := v.nodeLister.List(labels.SelectorFromSet(selector))
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}

	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		ref, err := ParseInstanceRef(n)
		if err != nil {
			continue // node with an unparseable/absent providerID is not eligible
		}
		out = append(out, Node{
			Name:        n.Name,
			Instance:    ref,
			Schedulable: !n.Spec.Unschedulable,
			Labels:      n.Labels,
		})
	}
	return out, nil
}

func (v *clusterView) GetNode(name string) (Node, bool) {
	n, err := v.nodeLister.Get(name)
	if err != nil {
		return Node{}, false
	}
	ref, _ := ParseInstanceRef(n)
	return Node{
		Name:        n.Name,
		Instance:    ref,
		Schedulable: !n.Spec.Unschedulable,
		Labels:      n.Labels,
	}, true
}

// ListWorkloadPods returns every pod whose owning controller (directly,
// or transitively through a ReplicaSet for Deployments) matches ref,
// per §3's exact-selection rule.
func (v *clusterView) ListWorkloadPods(ref netinfrav1alpha1.WorkloadReference) ([]Pod, error) {
	pods, err := v.podLister.Pods(ref.Namespace).List(labels.Everything())
	if err != nil {
		return nil, fmt.Errorf("list pods in %s: %w", ref.Namespace, err)
	}

	var matchingRS map[string]bool
	if ref.Kind == netinfrav1alpha1.WorkloadKindDeployment {
		matchingRS, err = v.replicaSetsOwnedBy(ref)
		if err != nil {
			return nil, err
		}
	}

	out := make([]Pod, 0, len(pods))
	for _, p := range pods {
		if !v.podBelongsToWorkload(p, ref, matchingRS) {
			continue
		}
		out = append(out, Pod{
			Name:      p.Name,
			Namespace: p.Namespace,
			NodeName:  p.Spec.NodeName,
			Running:   p.Status.Phase == corev1.PodRunning,
		})
	}
	return out, nil
}

func (v *clusterView) replicaSetsOwnedBy(ref netinfrav1alpha1.WorkloadReference) (map[string]bool, error) {
	dep, err := v.deploymentLister.Deployments(ref.Namespace).Get(ref.Name)
	if err != nil {
		return nil, nil // deployment not found: no matching pods, not an error
	}
	rss, err := v.replicaSetLister.ReplicaSets(ref.Namespace).List(labels.Everything())
	if err != nil {
		return nil, fmt.Errorf("list replicasets in %s: %w", ref.Namespace, err)
	}
	matching := make(map[string]bool)
	for _, rs := range rss {
		if ownerMatches(rs.OwnerReferences, "Deployment", dep.Name) {
			matching[rs.Name] = true
		}
	}
	return matching, nil
}

func (v *clusterView) podBelongsToWorkload(p *corev1.Pod, ref netinfrav1alpha1.WorkloadReference, matchingRS map[string]bool) bool {
	switch ref.Kind {
	case netinfrav1alpha1.WorkloadKindStatefulSet:
		return ownerMatches(p.OwnerReferences, "StatefulSet", ref.Name)
	case netinfrav1alpha1.WorkloadKindDaemonSet:
		return ownerMatches(p.OwnerReferences, "DaemonSet", ref.Name)
	case netinfrav1alpha1.WorkloadKindDeployment:
		for _, owner := range p.OwnerReferences {
			if owner.Kind == "ReplicaSet" && matchingRS[owner.Name] {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func ownerMatches(owners []metav1.OwnerReference, kind, name string) bool {
	for _, o := range owners {
		if o.Kind == kind && o.Name == name {
			return true
		}
	}
	return false
}

// ParseInstanceRef extracts the provider instance identity and zone from
// a node's spec.providerID and topology.kubernetes.io/zone label. §3
// "Node (view)": "provider instance identity (provider-assigned ID
// parsed from the node's provider reference, plus zone)".
func ParseInstanceRef(n *corev1.Node) (cloud.InstanceRef, error) {
	id := n.Spec.ProviderID
	zone := n.Labels["topology.kubernetes.io/zone"]

	switch {
	case strings.HasPrefix(id, "gce://"):
		// gce://<project>/<zone>/<instance>
		parts := strings.Split(strings.TrimPrefix(id, "gce://"), "/")
		if len(parts) != 3 {
			return cloud.InstanceRef{}, fmt.Errorf("malformed gce providerID %q", id)
		}
		return cloud.InstanceRef{Provider: "gcp", Project: parts[0], Zone: parts[1], Name: parts[2]}, nil
	case strings.HasPrefix(id, "aws:///"):
		// aws:///<az>/<instance-id>
		parts := strings.Split(strings.TrimPrefix(id, "aws:///"), "/")
		if len(parts) != 2 {
			return cloud.InstanceRef{}, fmt.Errorf("malformed aws providerID %q", id)
		}
		return cloud.InstanceRef{Provider: "aws", Zone: parts[0], Name: parts[1]}, nil
	case strings.HasPrefix(id, "azure://"):
		return cloud.InstanceRef{Provider: "azure", Zone: zone, Name: n.Name}, nil
	default:
		return cloud.InstanceRef{}, fmt.Errorf("unrecognized providerID %q on node %s", id, n.Name)
	}
}
