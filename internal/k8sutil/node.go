package k8sutil

import (
	"context"
	"encoding/json"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
)

// ReadyLabelKey is the sole label the core writes or removes, per §6.
const ReadyLabelKey = "ip.ready"

type labelPatch struct {
	Metadata labelPatchMetadata `json:"metadata"`
}

type labelPatchMetadata struct {
	Labels map[string]*string `json:"labels"`
}

// LabelNodeReady sets ip.ready=true on the named node, retrying on
// update conflicts.
func LabelNodeReady(ctx context.Context, client kubernetes.Interface, node string) error {
	return patchLabel(ctx, client, node, map[string]*string{ReadyLabelKey: strPtr("true")})
}

// UnlabelNodeReady removes ip.ready from the named node, retrying on
// update conflicts. Removing an absent label is a no-op success.
func UnlabelNodeReady(ctx context.Context, client kubernetes.Interface, node string) error {
	return patchLabel(ctx, client, node, map[string]*string{ReadyLabelKey: nil})
}

func patchLabel(ctx context.Context, client kubernetes.Interface, node string, labels map[string]*string) error {
	patch, err := json.Marshal(labelPatch{Metadata: labelPatchMetadata{Labels: labels}})
	if err != nil {
		return err
	}
	return RetryOnConflict(ctx, func(ctx context.Context) error {
		_, err := client.CoreV1().Nodes().Patch(ctx, node, types.MergePatchType, patch, metav1.PatchOptions{})
		return err
	})
}

func strPtr(s string) *string { return &s }
