//go:build !ignore_autogenerated

// Code generated by hand in the style of controller-gen's
// deepcopy-gen; keep in sync with types.go.

package v1alpha1

import (
	runtime "k8s.io/apimachinery/pkg/runtime"
)

// DeepCopyInto is a deepcopy function, copying the receiver, writing into out. in must be non-nil.
func (in *NetIPAllocation) DeepCopyInto(out *NetIPAllocation) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
	out.Status = in.Status
}

// DeepCopy is a deepcopy function, copying the receiver, creating a new NetIPAllocation.
func (in *NetIPAllocation) DeepCopy() *NetIPAllocation {
	if in == nil {
		return nil
	}
	out := new(NetIPAllocation)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject is a deepcopy function, copying the receiver, creating a new runtime.Object.
func (in *NetIPAllocation) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto is a deepcopy function, copying the receiver, writing into out. in must be non-nil.
func (in *NetIPAllocationList) DeepCopyInto(out *NetIPAllocationList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		l := make([]NetIPAllocation, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&l[i])
		}
		out.Items = l
	}
}

// DeepCopy is a deepcopy function, copying the receiver, creating a new NetIPAllocationList.
func (in *NetIPAllocationList) DeepCopy() *NetIPAllocationList {
	if in == nil {
		return nil
	}
	out := new(NetIPAllocationList)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject is a deepcopy function, copying the receiver, creating a new runtime.Object.
func (in *NetIPAllocationList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto is a deepcopy function, copying the receiver, writing into out. in must be non-nil.
func (in *NetIPAllocationSpec) DeepCopyInto(out *NetIPAllocationSpec) {
	*out = *in
	if in.ReservedIPs != nil {
		l := make([]string, len(in.ReservedIPs))
		copy(l, in.ReservedIPs)
		out.ReservedIPs = l
	}
	if in.WorkloadRef != nil {
		out.WorkloadRef = new(WorkloadReference)
		*out.WorkloadRef = *in.WorkloadRef
	}
	if in.DeploymentRef != nil {
		out.DeploymentRef = new(LegacyDeploymentReference)
		*out.DeploymentRef = *in.DeploymentRef
	}
	if in.NodeSelector != nil {
		m := make(map[string]string, len(in.NodeSelector))
		for k, v := range in.NodeSelector {
			m[k] = v
		}
		out.NodeSelector = m
	}
	in.Cloud.DeepCopyInto(&out.Cloud)
}

// DeepCopy is a deepcopy function, copying the receiver, creating a new NetIPAllocationSpec.
func (in *NetIPAllocationSpec) DeepCopy() *NetIPAllocationSpec {
	if in == nil {
		return nil
	}
	out := new(NetIPAllocationSpec)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyInto is a deepcopy function, copying the receiver, writing into out. in must be non-nil.
func (in *CloudSpec) DeepCopyInto(out *CloudSpec) {
	*out = *in
	if in.Zones != nil {
		l := make([]string, len(in.Zones))
		copy(l, in.Zones)
		out.Zones = l
	}
}

// DeepCopy is a deepcopy function, copying the receiver, creating a new CloudSpec.
func (in *CloudSpec) DeepCopy() *CloudSpec {
	if in == nil {
		return nil
	}
	out := new(CloudSpec)
	in.DeepCopyInto(out)
	return out
}
