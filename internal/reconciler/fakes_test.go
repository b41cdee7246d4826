package reconciler

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes"
	k8sfake "k8s.io/client-go/kubernetes/fake"

	"github.com/darkbrains/netip-controller/internal/clusterview"
	"github.com/darkbrains/netip-controller/internal/cloud"
	netinfrav1alpha1 "github.com/darkbrains/netip-controller/pkg/apis/netinfra/v1alpha1"
)

// fakeK8sClient returns a fake clientset holding one Node object per
// name, so label patches against those nodes succeed.
func fakeK8sClient(nodeNames ...string) kubernetes.Interface {
	objs := make([]runtime.Object, 0, len(nodeNames))
	for _, name := range nodeNames {
		objs = append(objs, &corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: name}})
	}
	return k8sfake.NewSimpleClientset(objs...)
}

// fakeView is a hand-rolled clusterview.View for the reconciler tests;
// it applies the node selector but not the informer-backed listing, and
// returns every pod regardless of workload reference. internal/clusterview's
// own tests cover providerID parsing and owner-reference matching only.
type fakeView struct {
	nodes map[string]clusterview.Node
	pods  []clusterview.Pod
}

func (f *fakeView) WaitForCacheSync(_ context.Context) bool { return true }

func (f *fakeView) ListEligibleNodes(selector map[string]string) ([]clusterview.Node, error) {
	var out []clusterview.Node
	for _, n := range f.nodes {
		if nodeMatchesSelector(n, selector) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeView) GetNode(name string) (clusterview.Node, bool) {
	n, ok := f.nodes[name]
	return n, ok
}

func (f *fakeView) ListWorkloadPods(_ netinfrav1alpha1.WorkloadReference) ([]clusterview.Pod, error) {
	return f.pods, nil
}

func nodeMatchesSelector(n clusterview.Node, selector map[string]string) bool {
	for k, v := range selector {
		if n.Labels[k] != v {
			return false
		}
	}
	return true
}

// fakeDriver simulates a single provider's cloud state as an in-memory
// node-name -> attached-IP map.
type fakeDriver struct {
	attached   map[string]string // node name -> ip
	attachErrs map[string]error  // ip -> forced AttachIP error
	detachErrs map[string]error  // ip -> forced DetachIP error
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{attached: make(map[string]string)}
}

func (d *fakeDriver) GetExternalIPs(_ context.Context, ref cloud.InstanceRef) ([]string, error) {
	if ip, ok := d.attached[ref.Name]; ok {
		return []string{ip}, nil
	}
	return nil, nil
}

func (d *fakeDriver) AttachIP(_ context.Context, ref cloud.InstanceRef, ip string) error {
	if err, ok := d.attachErrs[ip]; ok {
		return err
	}
	d.attached[ref.Name] = ip
	return nil
}

func (d *fakeDriver) DetachIP(_ context.Context, ref cloud.InstanceRef, ip string) error {
	if err, ok := d.detachErrs[ip]; ok {
		return err
	}
	if d.attached[ref.Name] == ip {
		delete(d.attached, ref.Name)
	}
	return nil
}

func node(name, zone string, schedulable bool, labels map[string]string) clusterview.Node {
	return clusterview.Node{
		Name:        name,
		Instance:    cloud.InstanceRef{Provider: "gcp", Project: "proj", Zone: zone, Name: name},
		Schedulable: schedulable,
		Labels:      labels,
	}
}
