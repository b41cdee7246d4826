package v1alpha1

import (
	"fmt"
	"net"
)

var validProviders = map[string]bool{
	"gcp":   true,
	"aws":   true,
	"azure": true,
}

var validWorkloadKinds = map[string]bool{
	WorkloadKindDeployment:  true,
	WorkloadKindStatefulSet: true,
	WorkloadKindDaemonSet:   true,
}

// Validate checks the invariants spec.md §3 and §7 require of a pool
// spec before it is handed to the reconciler. A non-nil error means the
// pool is invalid_spec and must be skipped until its spec changes.
func (s *NetIPAllocationSpec) Validate() error {
	if len(s.ReservedIPs) == 0 {
		return nil // empty reservedIPs is a valid no-op pool, §8 boundary case
	}

	seen := make(map[string]bool, len(s.ReservedIPs))
	for _, ip := range s.ReservedIPs {
		if net.ParseIP(ip) == nil {
			return fmt.Errorf("reservedIPs: %q is not a valid IP address", ip)
		}
		if seen[ip] {
			return fmt.Errorf("reservedIPs: duplicate IP %q", ip)
		}
		seen[ip] = true
	}

	if !validProviders[s.Cloud.Provider] {
		return fmt.Errorf("cloud.provider: unknown provider %q", s.Cloud.Provider)
	}

	if ref := s.EffectiveWorkloadRef(); ref != nil {
		if !validWorkloadKinds[ref.Kind] {
			return fmt.Errorf("workloadRef.kind: unsupported kind %q", ref.Kind)
		}
		if ref.Name == "" {
			return fmt.Errorf("workloadRef.name: must not be empty")
		}
	}

	for k, v := range s.NodeSelector {
		if k == "" || v == "" {
			return fmt.Errorf("nodeSelector: empty key or value not allowed")
		}
	}

	return nil
}
