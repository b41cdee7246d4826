package clusterview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func TestParseInstanceRef(t *testing.T) {
	cases := []struct {
		name       string
		providerID string
		zoneLabel  string
		want       string // want.Name, for a quick sanity check
		wantErr    bool
	}{
		{
			name:       "gcp providerID",
			providerID: "gce://my-project/us-central1-a/node-1",
			want:       "node-1",
		},
		{
			name:       "aws providerID",
			providerID: "aws:///us-east-1a/i-0123456789abcdef0",
			want:       "i-0123456789abcdef0",
		},
		{
			name:       "azure providerID",
			providerID: "azure:///subscriptions/x/resourceGroups/y/providers/Microsoft.Compute/virtualMachines/node-2",
			zoneLabel:  "1",
			want:       "node-2", // azure ref uses the node's own name, not a path segment
		},
		{
			name:       "malformed gce providerID",
			providerID: "gce://only-two/segments",
			wantErr:    true,
		},
		{
			name:       "unrecognized provider",
			providerID: "openstack://whatever",
			wantErr:    true,
		},
		{
			name:       "empty providerID",
			providerID: "",
			wantErr:    true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			node := &corev1.Node{
				ObjectMeta: metav1.ObjectMeta{
					Name:   tc.want,
					Labels: map[string]string{"topology.kubernetes.io/zone": tc.zoneLabel},
				},
				Spec: corev1.NodeSpec{ProviderID: tc.providerID},
			}
			if tc.name == "azure providerID" {
				node.Name = "node-2"
			}

			ref, err := ParseInstanceRef(node)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, ref.Name)
		})
	}
}

func TestParseInstanceRef_GCPFields(t *testing.T) {
	node := &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: "node-1"},
		Spec:       corev1.NodeSpec{ProviderID: "gce://my-project/us-central1-a/node-1"},
	}
	ref, err := ParseInstanceRef(node)
	require.NoError(t, err)
	assert.Equal(t, "gcp", ref.Provider)
	assert.Equal(t, "my-project", ref.Project)
	assert.Equal(t, "us-central1-a", ref.Zone)
	assert.Equal(t, "node-1", ref.Name)
}

func TestOwnerMatches(t *testing.T) {
	owners := []metav1.OwnerReference{
		{Kind: "ReplicaSet", Name: "app-abc123"},
		{Kind: "Something", Name: "app"},
	}
	assert.True(t, ownerMatches(owners, "ReplicaSet", "app-abc123"))
	assert.False(t, ownerMatches(owners, "ReplicaSet", "app-xyz999"))
	assert.False(t, ownerMatches(owners, "Deployment", "app"))
}
