package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// +genclient
// +genclient:nonNamespaced
// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object

// NetIPAllocation declares a pool of pre-reserved static public IP
// addresses that the controller keeps bound to schedulable nodes
// matching NodeSelector.
type NetIPAllocation struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   NetIPAllocationSpec   `json:"spec"`
	Status NetIPAllocationStatus `json:"status,omitempty"`
}

// NetIPAllocationSpec defines the desired state of a NetIPAllocation pool.
type NetIPAllocationSpec struct {
	// ReservedIPs is a non-empty, ordered list of dotted-quad addresses
	// unique within the pool, pre-allocated in the cloud account.
	ReservedIPs []string `json:"reservedIPs"`

	// WorkloadRef names the workload whose running pods gate eviction of
	// a cordoned, IP-holding node.
	// +optional
	WorkloadRef *WorkloadReference `json:"workloadRef,omitempty"`

	// DeploymentRef is a legacy alias for WorkloadRef without a Kind,
	// always interpreted as Kind: Deployment. Use WorkloadRef for new pools.
	// +optional
	DeploymentRef *LegacyDeploymentReference `json:"deploymentRef,omitempty"`

	// NodeSelector maps required label keys to required values; all are
	// required for a node to be eligible.
	// +optional
	NodeSelector map[string]string `json:"nodeSelector,omitempty"`

	// Cloud describes which provider and location the pool's IPs live in.
	Cloud CloudSpec `json:"cloud"`

	// ReconcileIntervalSeconds is the tick period for this pool.
	// +optional
	ReconcileIntervalSeconds int `json:"reconcileIntervalSeconds,omitempty"`
}

// WorkloadReference identifies the controller that owns the pods a pool
// defers eviction for.
type WorkloadReference struct {
	// Kind is one of Deployment, StatefulSet, DaemonSet.
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
}

// LegacyDeploymentReference is the pre-WorkloadRef spec shape, always a
// Deployment.
type LegacyDeploymentReference struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
}

// CloudSpec names the provider and, optionally, the region/zones of the
// pool. Drivers locate each node's instance from its providerID, not
// from these fields.
type CloudSpec struct {
	// Provider is one of gcp, aws, azure.
	Provider string `json:"provider"`
	// Region is accepted but not read by the controller.
	// +optional
	Region string `json:"region,omitempty"`
	// Zones, when set, orders attach target selection (Plan phase,
	// step 5): nodes in earlier-listed zones are preferred, and node
	// name breaks ties.
	// +optional
	Zones []string `json:"zones,omitempty"`
}

// NetIPAllocationStatus is intentionally left unwritten by the
// controller in this version (no status subresource updates, §7); the
// field exists so a future version can add status writes without a
// breaking API change.
type NetIPAllocationStatus struct {
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`
}

// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object

// NetIPAllocationList contains a list of NetIPAllocation.
type NetIPAllocationList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`

	Items []NetIPAllocation `json:"items"`
}

const (
	WorkloadKindDeployment  = "Deployment"
	WorkloadKindStatefulSet = "StatefulSet"
	WorkloadKindDaemonSet   = "DaemonSet"
)

const defaultWorkloadNamespace = "default"

// EffectiveWorkloadRef normalizes the legacy DeploymentRef alias into the
// canonical WorkloadReference shape, so every downstream consumer only
// ever has to handle one representation. Returns nil if neither field is
// set.
func (s *NetIPAllocationSpec) EffectiveWorkloadRef() *WorkloadReference {
	if s.WorkloadRef != nil {
		ref := *s.WorkloadRef
		if ref.Namespace == "" {
			ref.Namespace = defaultWorkloadNamespace
		}
		return &ref
	}
	if s.DeploymentRef != nil {
		ns := s.DeploymentRef.Namespace
		if ns == "" {
			ns = defaultWorkloadNamespace
		}
		return &WorkloadReference{
			Kind:      WorkloadKindDeployment,
			Name:      s.DeploymentRef.Name,
			Namespace: ns,
		}
	}
	return nil
}

// EffectiveReconcileInterval applies the default/minimum from §3: default
// 30s, minimum 1s.
func (s *NetIPAllocationSpec) EffectiveReconcileInterval() int {
	switch {
	case s.ReconcileIntervalSeconds <= 0:
		return 30
	case s.ReconcileIntervalSeconds < 1:
		return 1
	default:
		return s.ReconcileIntervalSeconds
	}
}
