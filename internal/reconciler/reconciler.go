package reconciler

import (
	"context"
	"log/slog"
	"time"

	"k8s.io/client-go/kubernetes"

	"github.com/darkbrains/netip-controller/internal/clusterview"
	"github.com/darkbrains/netip-controller/internal/cloud"
	netinfrav1alpha1 "github.com/darkbrains/netip-controller/pkg/apis/netinfra/v1alpha1"
)

// DefaultActuateTimeout bounds every individual cloud or Kubernetes
// call issued during Phase 4, per §5's "no operation may block
// indefinitely".
const DefaultActuateTimeout = 60 * time.Second

// Reconciler runs the five-phase algorithm for one pool per Reconcile
// call. A Reconciler is safe to reuse across pools and ticks; it holds
// no per-pool state between calls (§4.1: "Pure ... for a fixed input
// snapshot").
type Reconciler struct {
	view      clusterview.View
	drivers   cloud.Factory
	k8sClient kubernetes.Interface
	logger    *slog.Logger

	actuateTimeout time.Duration
}

// Option configures a Reconciler at construction time.
type Option func(*Reconciler)

// WithActuateTimeout overrides DefaultActuateTimeout.
func WithActuateTimeout(d time.Duration) Option {
	return func(r *Reconciler) { r.actuateTimeout = d }
}

// New builds a Reconciler. view serves node/pod snapshots, drivers
// resolves the cloud.Driver for a pool's provider, k8sClient performs
// label patches and pod evictions.
func New(view clusterview.View, drivers cloud.Factory, k8sClient kubernetes.Interface, logger *slog.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		view:           view,
		drivers:        drivers,
		k8sClient:      k8sClient,
		logger:         logger,
		actuateTimeout: DefaultActuateTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile runs one tick of the five-phase algorithm for pool.
func (r *Reconciler) Reconcile(ctx context.Context, pool *netinfrav1alpha1.NetIPAllocation) TickResult {
	start := time.Now()
	result := r.reconcile(ctx, pool)
	result.Duration = time.Since(start)
	return result
}

func (r *Reconciler) reconcile(ctx context.Context, pool *netinfrav1alpha1.NetIPAllocation) TickResult {
	log := r.logger.With(slog.String("pool", pool.Name))

	if err := pool.Spec.Validate(); err != nil {
		log.Error("pool spec invalid, skipping", slog.Any("err", err))
		return emptyResult(pool, newInvalidSpecError(err.Error()))
	}

	if len(pool.Spec.ReservedIPs) == 0 {
		return TickResult{PoolName: pool.Name, Reserved: 0, Attached: 0, Unattached: 0}
	}

	driver, err := r.drivers(pool.Spec.Cloud.Provider)
	if err != nil {
		log.Error("no driver for provider", slog.String("provider", pool.Spec.Cloud.Provider), slog.Any("err", err))
		return emptyResult(pool, newInvalidSpecError(err.Error()))
	}

	d, err := r.discover(ctx, pool, driver)
	if err != nil {
		log.Error("discover failed", slog.Any("err", err))
		return emptyResult(pool, err)
	}

	classified, err := r.classify(pool, d)
	if err != nil {
		log.Error("classify failed", slog.Any("err", err))
		return emptyResult(pool, err)
	}

	actions, evictTargets, err := r.plan(pool, classified, d)
	if err != nil {
		log.Error("plan failed", slog.Any("err", err))
		return emptyResult(pool, err)
	}

	state, executed, err := r.actuate(ctx, driver, d, actions, evictTargets)
	return r.report(pool, classified, state, executed, err)
}

func emptyResult(pool *netinfrav1alpha1.NetIPAllocation, err error) TickResult {
	reserved := len(pool.Spec.ReservedIPs)
	return TickResult{
		PoolName:   pool.Name,
		Reserved:   reserved,
		Unattached: reserved,
		Err:        err,
		ErrKind:    classifyErr(err),
	}
}
