package reconciler

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkbrains/netip-controller/internal/clusterview"
	"github.com/darkbrains/netip-controller/internal/cloud"
	netinfrav1alpha1 "github.com/darkbrains/netip-controller/pkg/apis/netinfra/v1alpha1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func newReconciler(view clusterview.View, driver cloud.Driver) *Reconciler {
	drivers := func(provider string) (cloud.Driver, error) { return driver, nil }
	var nodeNames []string
	if fv, ok := view.(*fakeView); ok {
		for name := range fv.nodes {
			nodeNames = append(nodeNames, name)
		}
	}
	return New(view, drivers, fakeK8sClient(nodeNames...), discardLogger())
}

func pool(name string, reservedIPs []string, selector map[string]string) *netinfrav1alpha1.NetIPAllocation {
	return &netinfrav1alpha1.NetIPAllocation{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Spec: netinfrav1alpha1.NetIPAllocationSpec{
			ReservedIPs:  reservedIPs,
			NodeSelector: selector,
			Cloud:        netinfrav1alpha1.CloudSpec{Provider: "gcp"},
		},
	}
}

func TestReconcile_InitialAttach(t *testing.T) {
	view := &fakeView{nodes: map[string]clusterview.Node{
		"n1": node("n1", "z1", true, map[string]string{"role": "pub"}),
		"n2": node("n2", "z1", true, map[string]string{"role": "pub"}),
	}}
	driver := newFakeDriver()
	r := newReconciler(view, driver)

	p := pool("pool1", []string{"34.1.1.1", "34.1.1.2"}, map[string]string{"role": "pub"})
	result := r.Reconcile(context.Background(), p)

	require.NoError(t, result.Err)
	assert.True(t, result.Healthy())
	assert.Equal(t, []Action{
		{Kind: ActionAttach, IP: "34.1.1.1", Node: "n1", Ok: true},
		{Kind: ActionLabel, Node: "n1", Ok: true},
		{Kind: ActionAttach, IP: "34.1.1.2", Node: "n2", Ok: true},
		{Kind: ActionLabel, Node: "n2", Ok: true},
	}, result.Actions)
}

func TestReconcile_CordonWithRunningPod_RetainsIP(t *testing.T) {
	view := &fakeView{
		nodes: map[string]clusterview.Node{
			"n1": node("n1", "z1", false, nil),
		},
		pods: []clusterview.Pod{{Name: "app-1", Namespace: "ns", NodeName: "n1", Running: true}},
	}
	driver := newFakeDriver()
	driver.attached["n1"] = "34.1.1.1"

	p := pool("pool1", []string{"34.1.1.1"}, nil)
	p.Spec.WorkloadRef = &netinfrav1alpha1.WorkloadReference{Kind: "Deployment", Name: "app", Namespace: "ns"}

	r := newReconciler(view, driver)
	result := r.Reconcile(context.Background(), p)

	require.NoError(t, result.Err)
	assert.Empty(t, result.Actions)
	assert.Equal(t, 1, result.Attached)
}

func TestReconcile_CordonAfterPodLeaves_DetachesAndReattaches(t *testing.T) {
	view := &fakeView{
		nodes: map[string]clusterview.Node{
			"n1": node("n1", "z1", false, map[string]string{"ip.ready": "true"}),
			"n2": node("n2", "z1", true, nil),
		},
		pods: nil, // pod has left
	}
	driver := newFakeDriver()
	driver.attached["n1"] = "34.1.1.1"

	p := pool("pool1", []string{"34.1.1.1"}, nil)
	p.Spec.WorkloadRef = &netinfrav1alpha1.WorkloadReference{Kind: "Deployment", Name: "app", Namespace: "ns"}

	r := newReconciler(view, driver)
	result := r.Reconcile(context.Background(), p)

	require.NoError(t, result.Err)
	assert.Equal(t, []Action{
		{Kind: ActionDetach, IP: "34.1.1.1", Node: "n1", Ok: true},
		{Kind: ActionUnlabel, Node: "n1", Ok: true},
		{Kind: ActionAttach, IP: "34.1.1.1", Node: "n2", Ok: true},
		{Kind: ActionLabel, Node: "n2", Ok: true},
	}, result.Actions)
	assert.True(t, result.Healthy())
}

func TestReconcile_InUseElsewhere_AbortsWithConflict(t *testing.T) {
	view := &fakeView{nodes: map[string]clusterview.Node{
		"n1": node("n1", "z1", true, nil),
	}}
	driver := newFakeDriver()
	driver.attachErrs = map[string]error{
		"34.1.1.1": &cloud.DriverError{Class: cloud.ErrClassInUseElsewhere, Op: "attach_ip"},
	}

	p := pool("pool1", []string{"34.1.1.1"}, nil)
	r := newReconciler(view, driver)
	result := r.Reconcile(context.Background(), p)

	require.Error(t, result.Err)
	assert.Equal(t, ErrKindConflict, result.ErrKind)
	assert.False(t, result.Healthy())
}

func TestReconcile_FewerNodesThanIPs_NoErrorPartialAttach(t *testing.T) {
	view := &fakeView{nodes: map[string]clusterview.Node{
		"n1": node("n1", "z1", true, nil),
		"n2": node("n2", "z1", true, nil),
	}}
	driver := newFakeDriver()

	p := pool("pool1", []string{"34.1.1.1", "34.1.1.2", "34.1.1.3"}, nil)
	r := newReconciler(view, driver)
	result := r.Reconcile(context.Background(), p)

	require.NoError(t, result.Err)
	assert.Equal(t, 3, result.Reserved)
	assert.Equal(t, 2, result.Attached)
	assert.Equal(t, 1, result.Unattached)
	assert.False(t, result.Healthy())
}

func TestReconcile_Idempotent_SecondTickIssuesNoActions(t *testing.T) {
	view := &fakeView{nodes: map[string]clusterview.Node{
		"n1": node("n1", "z1", true, nil),
	}}
	driver := newFakeDriver()

	p := pool("pool1", []string{"34.1.1.1"}, nil)
	r := newReconciler(view, driver)

	first := r.Reconcile(context.Background(), p)
	require.NoError(t, first.Err)
	require.NotEmpty(t, first.Actions)

	view.nodes["n1"] = node("n1", "z1", true, map[string]string{"ip.ready": "true"})

	second := r.Reconcile(context.Background(), p)
	require.NoError(t, second.Err)
	assert.Empty(t, second.Actions)
}

func TestReconcile_LegacyDeploymentRef_Normalized(t *testing.T) {
	view := &fakeView{nodes: map[string]clusterview.Node{
		"n1": node("n1", "z1", true, nil),
	}}
	driver := newFakeDriver()

	p := pool("pool1", []string{"34.1.1.1"}, nil)
	p.Spec.DeploymentRef = &netinfrav1alpha1.LegacyDeploymentReference{Name: "app", Namespace: "ns"}

	r := newReconciler(view, driver)
	result := r.Reconcile(context.Background(), p)

	require.NoError(t, result.Err)
	assert.True(t, result.Healthy())
}

func TestReconcile_EmptyReservedIPs_NoOpHealthy(t *testing.T) {
	view := &fakeView{nodes: map[string]clusterview.Node{}}
	driver := newFakeDriver()

	p := pool("pool1", nil, nil)
	r := newReconciler(view, driver)
	result := r.Reconcile(context.Background(), p)

	require.NoError(t, result.Err)
	assert.True(t, result.Healthy())
	assert.Empty(t, result.Actions)
}

func TestReconcile_NoEligibleNodes_UnhealthyNoError(t *testing.T) {
	view := &fakeView{nodes: map[string]clusterview.Node{}}
	driver := newFakeDriver()

	p := pool("pool1", []string{"34.1.1.1"}, map[string]string{"role": "pub"})
	r := newReconciler(view, driver)
	result := r.Reconcile(context.Background(), p)

	require.NoError(t, result.Err)
	assert.False(t, result.Healthy())
	assert.Equal(t, 1, result.Unattached)
}

func TestReconcile_InvalidWorkloadKind_InvalidSpec(t *testing.T) {
	view := &fakeView{nodes: map[string]clusterview.Node{}}
	driver := newFakeDriver()

	p := pool("pool1", []string{"34.1.1.1"}, nil)
	p.Spec.WorkloadRef = &netinfrav1alpha1.WorkloadReference{Kind: "Job", Name: "app"}

	r := newReconciler(view, driver)
	result := r.Reconcile(context.Background(), p)

	require.Error(t, result.Err)
	assert.Equal(t, ErrKindInvalidSpec, result.ErrKind)
}

func TestReconcile_MisconfiguredNodeWithStaleLabel_EvictsWorkloadPods(t *testing.T) {
	view := &fakeView{
		nodes: map[string]clusterview.Node{
			"n1": node("n1", "z1", true, map[string]string{"ip.ready": "true"}),
		},
		pods: []clusterview.Pod{{Name: "app-1", Namespace: "ns", NodeName: "n1", Running: true}},
	}
	driver := newFakeDriver()
	driver.attached["n1"] = "9.9.9.9" // not in the pool's reserved list

	p := pool("pool1", []string{"34.1.1.1"}, nil)
	p.Spec.WorkloadRef = &netinfrav1alpha1.WorkloadReference{Kind: "Deployment", Name: "app", Namespace: "ns"}

	r := newReconciler(view, driver)
	result := r.Reconcile(context.Background(), p)

	require.NoError(t, result.Err)
	require.NotEmpty(t, result.Actions)
	assert.Equal(t, ActionEvict, result.Actions[0].Kind)
	assert.Equal(t, "n1", result.Actions[0].Node)
}
