// Package gcp implements the cloud.Driver contract against Google
// Compute Engine, binding a reserved static external IP to an
// instance's primary network interface as a ONE_TO_ONE_NAT access
// config. Grounded on the teacher's internal/provisioner (apiv1 client +
// operation .Wait() pattern) and on the access-config add/delete
// semantics of the original Python driver.
package gcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	compute "cloud.google.com/go/compute/apiv1"
	"cloud.google.com/go/compute/apiv1/computepb"
	"cloud.google.com/go/compute/metadata"
	"golang.org/x/oauth2/google"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"

	"github.com/darkbrains/netip-controller/internal/cloud"
)

const accessConfigName = "external-nat"

// Driver implements cloud.Driver for GCP.
type Driver struct {
	logger          *slog.Logger
	instancesClient *compute.InstancesClient
}

// New builds a GCP driver using ambient credentials (workload identity,
// ADC, or the instance metadata server), mirroring the credential
// resolution in cmd/ipam/main.go's google.DefaultClient call.
func New(ctx context.Context, logger *slog.Logger) (*Driver, error) {
	if _, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform"); err != nil {
		return nil, &cloud.DriverError{Class: cloud.ErrClassAuth, Op: "new_driver", Err: err}
	}

	instancesClient, err := compute.NewInstancesRESTClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create instances client: %w", err)
	}

	return &Driver{logger: logger, instancesClient: instancesClient}, nil
}

// DefaultProject returns the ambient project ID from the instance
// metadata server. The driver itself takes project and zone from each
// node's InstanceRef and does not call it. Mirrors
// internal/provisioner/cluster.go's getClusterInfo.
func DefaultProject() (string, error) {
	return metadata.ProjectID()
}

func (d *Driver) GetExternalIPs(ctx context.Context, ref cloud.InstanceRef) ([]string, error) {
	instance, err := d.instancesClient.Get(ctx, &computepb.GetInstanceRequest{
		Project:  ref.Project,
		Zone:     ref.Zone,
		Instance: ref.Name,
	})
	if err != nil {
		return nil, d.classify("get_external_ips", ref, "", err)
	}

	var ips []string
	for _, iface := range instance.GetNetworkInterfaces() {
		for _, ac := range iface.GetAccessConfigs() {
			if ac.GetNatIP() != "" {
				ips = append(ips, ac.GetNatIP())
			}
		}
	}
	return ips, nil
}

func (d *Driver) AttachIP(ctx context.Context, ref cloud.InstanceRef, ip string) error {
	instance, err := d.instancesClient.Get(ctx, &computepb.GetInstanceRequest{
		Project:  ref.Project,
		Zone:     ref.Zone,
		Instance: ref.Name,
	})
	if err != nil {
		return d.classify("attach_ip", ref, ip, err)
	}
	ifaces := instance.GetNetworkInterfaces()
	if len(ifaces) == 0 {
		return &cloud.DriverError{Class: cloud.ErrClassTransient, Op: "attach_ip", Ref: ref, IP: ip, Err: errors.New("instance has no network interfaces")}
	}
	iface := ifaces[0]

	for _, ac := range iface.GetAccessConfigs() {
		if ac.GetNatIP() == ip {
			d.logger.Debug("ip already attached", slog.String("node", ref.Name), slog.String("ip", ip))
			return nil // AlreadyAttached is success
		}
		if ac.GetType() == computepb.AccessConfig_ONE_TO_ONE_NAT.String() {
			return &cloud.DriverError{Class: cloud.ErrClassInUseElsewhere, Op: "attach_ip", Ref: ref, IP: ip,
				Err: fmt.Errorf("interface already has external IP %s attached", ac.GetNatIP())}
		}
	}

	op, err := d.instancesClient.AddAccessConfig(ctx, &computepb.AddAccessConfigInstanceRequest{
		Project:           ref.Project,
		Zone:              ref.Zone,
		Instance:          ref.Name,
		NetworkInterface:  iface.GetName(),
		AccessConfigResource: &computepb.AccessConfig{
			Name:  proto.String(accessConfigName),
			Type:  proto.String(computepb.AccessConfig_ONE_TO_ONE_NAT.String()),
			NatIP: proto.String(ip),
		},
	})
	if err != nil {
		return d.classify("attach_ip", ref, ip, err)
	}
	if err := op.Wait(ctx); err != nil {
		return d.classify("attach_ip", ref, ip, err)
	}
	return nil
}

func (d *Driver) DetachIP(ctx context.Context, ref cloud.InstanceRef, ip string) error {
	instance, err := d.instancesClient.Get(ctx, &computepb.GetInstanceRequest{
		Project:  ref.Project,
		Zone:     ref.Zone,
		Instance: ref.Name,
	})
	if err != nil {
		return d.classify("detach_ip", ref, ip, err)
	}
	ifaces := instance.GetNetworkInterfaces()
	if len(ifaces) == 0 {
		return nil // nothing to detach
	}
	iface := ifaces[0]

	var acName string
	for _, ac := range iface.GetAccessConfigs() {
		if ac.GetNatIP() == ip {
			acName = ac.GetName()
			break
		}
	}
	if acName == "" {
		return nil // NotAttached is success
	}

	op, err := d.instancesClient.DeleteAccessConfig(ctx, &computepb.DeleteAccessConfigInstanceRequest{
		Project:          ref.Project,
		Zone:             ref.Zone,
		Instance:         ref.Name,
		NetworkInterface: iface.GetName(),
		AccessConfig:     acName,
	})
	if err != nil {
		return d.classify("detach_ip", ref, ip, err)
	}
	return op.Wait(ctx)
}

// classify maps a raw GCP SDK/gRPC error into the taxonomy the
// reconciler understands.
func (d *Driver) classify(op string, ref cloud.InstanceRef, ip string, err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	class := cloud.ErrClassTransient
	if ok {
		switch st.Code() {
		case codes.NotFound:
			class = cloud.ErrClassNotFound
		case codes.Unauthenticated, codes.PermissionDenied:
			class = cloud.ErrClassAuth
		case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
			class = cloud.ErrClassTransient
		}
	}
	return &cloud.DriverError{Class: class, Op: op, Ref: ref, IP: ip, Err: err}
}
