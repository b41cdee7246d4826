// Package leader wraps k8s.io/client-go/tools/leaderelection behind the
// two-callback contract of §4.3: OnAcquired starts actuation, OnLost
// cancels it. Grounded on tkestack-galaxy/pkg/ipam/server/server.go's
// resourcelock.New + leaderelection.RunOrDie usage, the only
// leaderelection consumer in the retrieval pack.
package leader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/leaderelection"
	"k8s.io/client-go/tools/leaderelection/resourcelock"
)

// Config mirrors §4.3's lease parameters 1:1.
type Config struct {
	LeaseName      string
	LeaseNamespace string
	LeaseDuration  time.Duration

	// Identity overrides automatic identity resolution (POD_NAME env,
	// then os.Hostname, then a uuid fallback for local/dev runs).
	Identity string
}

// RenewDeadline and RetryPeriod derive from LeaseDuration per §4.3
// (≈2/3 and 1/4 of the lease respectively).
func (c Config) renewDeadline() time.Duration { return c.LeaseDuration * 2 / 3 }
func (c Config) retryPeriod() time.Duration   { return c.LeaseDuration / 4 }

func (c Config) resolveIdentity() string {
	if c.Identity != "" {
		return c.Identity
	}
	if name := os.Getenv("POD_NAME"); name != "" {
		return name
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return uuid.NewString()
}

// Gate drives one leaderelection.LeaderElector and exposes its
// start/stop edges to the supervisor.
type Gate struct {
	cfg      Config
	client   kubernetes.Interface
	logger   *slog.Logger
	identity string

	OnAcquired func(ctx context.Context)
	OnLost     func()
}

// New builds a Gate. client is used both for the lease object and, when
// POD_NAMESPACE/POD_NAME are set, to annotate the running Pod with
// controller-leader=true/false on every election edge (original_source
// supplement, not present in spec.md).
func New(cfg Config, client kubernetes.Interface, logger *slog.Logger) *Gate {
	if cfg.LeaseName == "" {
		cfg.LeaseName = "ip-address-controller-leader"
	}
	if cfg.LeaseDuration == 0 {
		cfg.LeaseDuration = 60 * time.Second
	}
	return &Gate{
		cfg:      cfg,
		client:   client,
		logger:   logger,
		identity: cfg.resolveIdentity(),
	}
}

// Run blocks until ctx is cancelled, running the leader election loop
// and invoking OnAcquired/OnLost on each edge. leaderelection itself
// jitters RetryPeriod/RenewDeadline internally; no extra jitter layer
// is added on top (see DESIGN.md).
func (g *Gate) Run(ctx context.Context) error {
	lock, err := resourcelock.New(
		resourcelock.LeasesResourceLock,
		g.cfg.LeaseNamespace,
		g.cfg.LeaseName,
		g.client.CoreV1(),
		g.client.CoordinationV1(),
		resourcelock.ResourceLockConfig{Identity: g.identity},
	)
	if err != nil {
		return fmt.Errorf("create lease lock: %w", err)
	}

	elector, err := leaderelection.NewLeaderElector(leaderelection.LeaderElectionConfig{
		Lock:          lock,
		LeaseDuration: g.cfg.LeaseDuration,
		RenewDeadline: g.cfg.renewDeadline(),
		RetryPeriod:   g.cfg.retryPeriod(),
		Callbacks: leaderelection.LeaderCallbacks{
			OnStartedLeading: func(ctx context.Context) {
				g.logger.Info("leadership acquired", slog.String("identity", g.identity))
				g.annotateSelf(ctx, true)
				if g.OnAcquired != nil {
					g.OnAcquired(ctx)
				}
			},
			OnStoppedLeading: func() {
				g.logger.Info("leadership lost", slog.String("identity", g.identity))
				g.annotateSelf(context.Background(), false)
				if g.OnLost != nil {
					g.OnLost()
				}
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create leader elector: %w", err)
	}

	// elector.Run returns once leadership is lost; campaign again so a
	// stepped-down replica can take the lease back later.
	for {
		elector.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		g.logger.Info("rejoining leader election", slog.String("identity", g.identity))
	}
}

// annotateSelf carries forward the original Python controller's
// per-pod leader annotation, independent of the is_leader metric.
func (g *Gate) annotateSelf(ctx context.Context, isLeader bool) {
	name := os.Getenv("POD_NAME")
	namespace := os.Getenv("POD_NAMESPACE")
	if name == "" || namespace == "" {
		return
	}

	patch := fmt.Sprintf(`{"metadata":{"annotations":{"controller-leader":%q}}}`, boolString(isLeader))
	_, err := g.client.CoreV1().Pods(namespace).Patch(ctx, name, types.MergePatchType, []byte(patch), metav1.PatchOptions{})
	if err != nil {
		g.logger.Warn("failed to annotate self pod with leader status", slog.Any("err", err))
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

