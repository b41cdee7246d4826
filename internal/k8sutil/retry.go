// Package k8sutil collects node-label and pod-eviction helpers shared by
// the reconciler, adapted from the optimistic-locking retry loop in
// pkg/ipam/allocator.go (conflict-retry with exponential backoff).
package k8sutil

import (
	"context"
	"fmt"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// MaxRetries and RetryDelay mirror pkg/ipam/allocator.go's constants;
// a node-label patch races the same kubelet/controller writers an IP
// pool allocation update does, so the same backoff applies.
const (
	MaxRetries = 10
	RetryDelay = 100 * time.Millisecond
)

// RetryOnConflict runs fn, retrying with exponential backoff while fn
// returns a Kubernetes conflict error, and returning immediately on any
// other error.
func RetryOnConflict(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for i := 0; i < MaxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(RetryDelay * time.Duration(1<<uint(i-1))):
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if apierrors.IsConflict(err) {
			lastErr = err
			continue
		}
		return err
	}
	return fmt.Errorf("giving up after %d retries: %w", MaxRetries, lastErr)
}
