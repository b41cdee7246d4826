// Package supervisor is the top-level per-process orchestrator of
// §4.5: it watches NetIPAllocation pools via a dynamic informer
// (grounded on tkestack-galaxy/pkg/ipam/crd/crdcache.go, the pack's
// only dynamicinformer-backed CRD cache) and spawns/cancels one
// goroutine-backed, non-overlapping reconcile ticker per pool while
// leading.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/dynamic/dynamicinformer"
	"k8s.io/client-go/tools/cache"

	"github.com/darkbrains/netip-controller/internal/reconciler"
	netinfrav1alpha1 "github.com/darkbrains/netip-controller/pkg/apis/netinfra/v1alpha1"
)

// Recorder receives the outcome of every tick, for
// internal/telemetry/metrics to turn into Prometheus collectors
// without this package importing that one.
type Recorder interface {
	RecordTick(result reconciler.TickResult)
}

// Supervisor owns the pool watch and the set of running per-pool
// reconcile tasks.
type Supervisor struct {
	dynamicClient dynamic.Interface
	reconciler    *reconciler.Reconciler
	recorder      Recorder
	logger        *slog.Logger
	resync        time.Duration

	informer cache.SharedIndexInformer

	mu      sync.Mutex
	leading bool
	pools   map[string]*netinfrav1alpha1.NetIPAllocation
	tasks   map[string]context.CancelFunc
	wg      sync.WaitGroup

	firstTickDone atomic.Bool
}

// New builds a Supervisor. recorder may be nil to run without metrics
// (e.g. in tests).
func New(dynamicClient dynamic.Interface, rec *reconciler.Reconciler, recorder Recorder, logger *slog.Logger, resync time.Duration) *Supervisor {
	return &Supervisor{
		dynamicClient: dynamicClient,
		reconciler:    rec,
		recorder:      recorder,
		logger:        logger,
		resync:        resync,
		pools:         make(map[string]*netinfrav1alpha1.NetIPAllocation),
		tasks:         make(map[string]context.CancelFunc),
	}
}

// Start begins the pool watch and blocks until the informer's initial
// list has synced. The watch itself runs independently of leadership:
// every replica observes pool create/update/delete so non-leaders can
// still answer /readyz meaningfully.
func (s *Supervisor) Start(ctx context.Context) error {
	factory := dynamicinformer.NewDynamicSharedInformerFactory(s.dynamicClient, s.resync)
	informer := factory.ForResource(netinfrav1alpha1.GroupVersionResource).Informer()

	if _, err := informer.AddEventHandler(cache.ResourceEventHandlerFuncs{
		AddFunc:    s.handleUpsert,
		UpdateFunc: func(_, newObj any) { s.handleUpsert(newObj) },
		DeleteFunc: s.handleDelete,
	}); err != nil {
		return fmt.Errorf("register pool event handler: %w", err)
	}

	s.informer = informer
	go informer.Run(ctx.Done())

	if !cache.WaitForCacheSync(ctx.Done(), informer.HasSynced) {
		return fmt.Errorf("pool informer cache never synced")
	}
	return nil
}

// WaitForCacheSync reports whether the pool informer has completed its
// initial list+watch sync.
func (s *Supervisor) WaitForCacheSync(ctx context.Context) bool {
	if s.informer == nil {
		return false
	}
	return cache.WaitForCacheSync(ctx.Done(), s.informer.HasSynced)
}

// Ready reports whether at least one reconcile tick has completed
// since leadership was acquired, per §6's /readyz contract for leaders.
func (s *Supervisor) Ready() bool { return s.firstTickDone.Load() }

func (s *Supervisor) handleUpsert(obj any) {
	u, ok := obj.(*unstructured.Unstructured)
	if !ok {
		s.logger.Error("pool event handler received non-unstructured object")
		return
	}

	pool := &netinfrav1alpha1.NetIPAllocation{}
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(u.Object, pool); err != nil {
		s.logger.Error("failed to decode pool", slog.String("name", u.GetName()), slog.Any("err", err))
		return
	}

	s.mu.Lock()
	s.pools[pool.Name] = pool
	leading := s.leading
	s.mu.Unlock()

	if leading {
		s.restartPool(pool.Name)
	}
}

func (s *Supervisor) handleDelete(obj any) {
	u, ok := obj.(*unstructured.Unstructured)
	name := ""
	if ok {
		name = u.GetName()
	} else if d, ok := obj.(cache.DeletedFinalStateUnknown); ok {
		if u, ok := d.Obj.(*unstructured.Unstructured); ok {
			name = u.GetName()
		}
	}
	if name == "" {
		return
	}

	s.mu.Lock()
	delete(s.pools, name)
	s.mu.Unlock()
	s.cancelPool(name)
}

// OnAcquired is the leader gate's start-actuating edge: it spawns a
// reconcile task for every currently known pool.
func (s *Supervisor) OnAcquired(ctx context.Context) {
	s.mu.Lock()
	s.leading = true
	names := make([]string, 0, len(s.pools))
	for name := range s.pools {
		names = append(names, name)
	}
	s.mu.Unlock()

	for _, name := range names {
		s.spawnPool(ctx, name)
	}
}

// OnLost is the leader gate's stop-actuating edge: it cancels every
// running pool task cooperatively.
func (s *Supervisor) OnLost() {
	s.mu.Lock()
	s.leading = false
	tasks := s.tasks
	s.tasks = make(map[string]context.CancelFunc)
	s.mu.Unlock()

	for _, cancel := range tasks {
		cancel()
	}
	s.firstTickDone.Store(false)
}

func (s *Supervisor) spawnPool(ctx context.Context, name string) {
	s.mu.Lock()
	if _, exists := s.tasks[name]; exists {
		s.mu.Unlock()
		return
	}
	poolCtx, cancel := context.WithCancel(ctx)
	s.tasks[name] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runPoolTask(poolCtx, name)
}

func (s *Supervisor) cancelPool(name string) {
	s.mu.Lock()
	cancel, exists := s.tasks[name]
	if exists {
		delete(s.tasks, name)
	}
	s.mu.Unlock()
	if exists {
		cancel()
	}
}

// restartPool re-spawns a pool's task so a reconcileIntervalSeconds
// change takes effect on the next tick; existing in-flight work is
// cancelled cooperatively, consistent with every actuate call being
// idempotent.
func (s *Supervisor) restartPool(name string) {
	s.cancelPool(name)
	s.mu.Lock()
	leading := s.leading
	s.mu.Unlock()
	if leading {
		// spawnPool needs a parent ctx; reuse background since the
		// leader ctx is threaded through OnAcquired's initial spawns
		// and this restart only runs while still leading.
		s.spawnPool(context.Background(), name)
	}
}

// runPoolTask is the single-goroutine, non-overlapping reconcile loop
// for one pool (§5): the ticker channel is only drained after Reconcile
// returns, so a slow tick can never overlap the next one.
func (s *Supervisor) runPoolTask(ctx context.Context, name string) {
	defer s.wg.Done()

	s.mu.Lock()
	pool := s.pools[name]
	s.mu.Unlock()
	if pool == nil {
		return
	}

	interval := time.Duration(pool.Spec.EffectiveReconcileInterval()) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			current := s.pools[name]
			s.mu.Unlock()
			if current == nil {
				return
			}

			result := s.reconciler.Reconcile(ctx, current)
			s.logger.Info("tick complete", slog.String("pool", name),
				slog.Bool("healthy", result.Healthy()), slog.Int("actions", len(result.Actions)))
			if s.recorder != nil {
				s.recorder.RecordTick(result)
			}
			s.firstTickDone.Store(true)
		}
	}
}

// Shutdown cancels every pool task and waits for their goroutines to
// return.
func (s *Supervisor) Shutdown() {
	s.OnLost()
	s.wg.Wait()
}
