package k8sutil

import (
	"context"

	policyv1 "k8s.io/api/policy/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// EvictPod requests eviction through the policy/v1 Eviction subresource,
// the same API the kubectl drain helper uses. A pod already gone is
// treated as success.
func EvictPod(ctx context.Context, client kubernetes.Interface, namespace, name string) error {
	err := client.PolicyV1().Evictions(namespace).Evict(ctx, &policyv1.Eviction{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
	})
	if apierrors.IsNotFound(err) {
		return nil
	}
	return err
}
