package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// GroupName is the API group of NetIPAllocation, per §6.
const GroupName = "netinfra.darkbrains.com"

// Version is the sole served version of the NetIPAllocation API.
const Version = "v1alpha1"

// SchemeGroupVersion is the group-version used to register these types.
var SchemeGroupVersion = schema.GroupVersion{Group: GroupName, Version: Version}

// Resource takes an unqualified resource and returns a GroupResource
// qualified with this package's group.
func Resource(resource string) schema.GroupResource {
	return SchemeGroupVersion.WithResource(resource).GroupResource()
}

// NetIPAllocationResource is the plural resource name used by the
// dynamic client and RBAC.
const NetIPAllocationResource = "netipallocations"

// GroupVersionResource is the GVR the controller watches via the dynamic
// informer factory.
var GroupVersionResource = SchemeGroupVersion.WithResource(NetIPAllocationResource)

var (
	// SchemeBuilder collects functions that add things to a scheme.
	SchemeBuilder = runtime.NewSchemeBuilder(addKnownTypes)
	// AddToScheme applies all the stored functions to the scheme.
	AddToScheme = SchemeBuilder.AddToScheme
)

func addKnownTypes(scheme *runtime.Scheme) error {
	scheme.AddKnownTypes(SchemeGroupVersion,
		&NetIPAllocation{},
		&NetIPAllocationList{},
	)
	metav1.AddToGroupVersion(scheme, SchemeGroupVersion)
	return nil
}
