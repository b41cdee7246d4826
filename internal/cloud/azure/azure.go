// Package azure is a placeholder cloud.Driver for Azure. Public IP
// assignment semantics are declared "coming soon" in the original
// source (§9) and are not specified bit-exactly; every method reports a
// transient error so a pool referencing this provider fails loudly and
// is retried, rather than being silently skipped.
package azure

import (
	"context"
	"fmt"

	"github.com/darkbrains/netip-controller/internal/cloud"
)

// Driver is an unimplemented stand-in for the Azure driver.
type Driver struct{}

// New returns the Azure placeholder driver.
func New() *Driver { return &Driver{} }

func (d *Driver) GetExternalIPs(_ context.Context, ref cloud.InstanceRef) ([]string, error) {
	return nil, notImplemented("get_external_ips", ref, "")
}

func (d *Driver) AttachIP(_ context.Context, ref cloud.InstanceRef, ip string) error {
	return notImplemented("attach_ip", ref, ip)
}

func (d *Driver) DetachIP(_ context.Context, ref cloud.InstanceRef, ip string) error {
	return notImplemented("detach_ip", ref, ip)
}

func notImplemented(op string, ref cloud.InstanceRef, ip string) error {
	return &cloud.DriverError{
		Class: cloud.ErrClassTransient,
		Op:    op,
		Ref:   ref,
		IP:    ip,
		Err:   fmt.Errorf("azure driver not implemented (public IP assignment semantics pending)"),
	}
}
