// Package cloud defines the abstract capability set a provider driver
// must implement to bind reserved IPs to cluster nodes. One
// implementation exists per provider (gcp, aws, azure), selected at
// pool-load time by the pool's cloud.provider field.
package cloud

import "context"

// InstanceRef identifies a cloud VM backing a cluster node, as parsed
// from the node's provider ID and zone label.
type InstanceRef struct {
	Provider string
	Project  string
	Zone     string
	Name     string
}

// Driver is the abstract, per-provider capability set of §4.2. All three
// operations must be safe to call repeatedly; the reconciler relies on
// that idempotence for crash recovery.
type Driver interface {
	// GetExternalIPs returns the public IPs currently attached to ref as
	// its primary access configuration.
	GetExternalIPs(ctx context.Context, ref InstanceRef) ([]string, error)

	// AttachIP binds ip to ref as its primary external access
	// configuration. AlreadyAttached is reported as success.
	AttachIP(ctx context.Context, ref InstanceRef, ip string) error

	// DetachIP removes ip from ref. NotAttached is reported as success.
	DetachIP(ctx context.Context, ref InstanceRef, ip string) error
}

// Factory resolves a Driver for a given provider name. Returns an error
// for unknown providers, which the caller should surface as invalid_spec.
type Factory func(provider string) (Driver, error)
