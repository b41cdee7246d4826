package v1alpha1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		spec    NetIPAllocationSpec
		wantErr bool
	}{
		{
			name:    "empty reserved ips is valid no-op",
			spec:    NetIPAllocationSpec{},
			wantErr: false,
		},
		{
			name: "valid minimal spec",
			spec: NetIPAllocationSpec{
				ReservedIPs: []string{"34.1.1.1"},
				Cloud:       CloudSpec{Provider: "gcp"},
			},
			wantErr: false,
		},
		{
			name: "malformed ip",
			spec: NetIPAllocationSpec{
				ReservedIPs: []string{"not-an-ip"},
				Cloud:       CloudSpec{Provider: "gcp"},
			},
			wantErr: true,
		},
		{
			name: "duplicate ip",
			spec: NetIPAllocationSpec{
				ReservedIPs: []string{"34.1.1.1", "34.1.1.1"},
				Cloud:       CloudSpec{Provider: "gcp"},
			},
			wantErr: true,
		},
		{
			name: "unknown provider",
			spec: NetIPAllocationSpec{
				ReservedIPs: []string{"34.1.1.1"},
				Cloud:       CloudSpec{Provider: "digitalocean"},
			},
			wantErr: true,
		},
		{
			name: "invalid workload kind",
			spec: NetIPAllocationSpec{
				ReservedIPs: []string{"34.1.1.1"},
				Cloud:       CloudSpec{Provider: "gcp"},
				WorkloadRef: &WorkloadReference{Kind: "Pod", Name: "app"},
			},
			wantErr: true,
		},
		{
			name: "empty node selector value",
			spec: NetIPAllocationSpec{
				ReservedIPs:  []string{"34.1.1.1"},
				Cloud:        CloudSpec{Provider: "gcp"},
				NodeSelector: map[string]string{"role": ""},
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.spec.Validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestEffectiveWorkloadRef(t *testing.T) {
	t.Run("nil when unset", func(t *testing.T) {
		spec := NetIPAllocationSpec{}
		assert.Nil(t, spec.EffectiveWorkloadRef())
	})

	t.Run("workloadRef namespace defaults", func(t *testing.T) {
		spec := NetIPAllocationSpec{WorkloadRef: &WorkloadReference{Kind: "Deployment", Name: "app"}}
		ref := spec.EffectiveWorkloadRef()
		require.NotNil(t, ref)
		assert.Equal(t, "default", ref.Namespace)
	})

	t.Run("legacy deploymentRef normalizes to Deployment kind", func(t *testing.T) {
		spec := NetIPAllocationSpec{DeploymentRef: &LegacyDeploymentReference{Name: "app", Namespace: "ns"}}
		ref := spec.EffectiveWorkloadRef()
		require.NotNil(t, ref)
		assert.Equal(t, WorkloadKindDeployment, ref.Kind)
		assert.Equal(t, "app", ref.Name)
		assert.Equal(t, "ns", ref.Namespace)
	})

	t.Run("workloadRef takes precedence over legacy alias", func(t *testing.T) {
		spec := NetIPAllocationSpec{
			WorkloadRef:   &WorkloadReference{Kind: "StatefulSet", Name: "primary", Namespace: "ns1"},
			DeploymentRef: &LegacyDeploymentReference{Name: "other", Namespace: "ns2"},
		}
		ref := spec.EffectiveWorkloadRef()
		require.NotNil(t, ref)
		assert.Equal(t, "StatefulSet", ref.Kind)
		assert.Equal(t, "primary", ref.Name)
	})
}

func TestEffectiveReconcileInterval(t *testing.T) {
	assert.Equal(t, 30, (&NetIPAllocationSpec{}).EffectiveReconcileInterval())
	assert.Equal(t, 30, (&NetIPAllocationSpec{ReconcileIntervalSeconds: 0}).EffectiveReconcileInterval())
	assert.Equal(t, 5, (&NetIPAllocationSpec{ReconcileIntervalSeconds: 5}).EffectiveReconcileInterval())
}
