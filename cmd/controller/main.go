// Command controller is the netip-controller binary: it wires together
// the cluster view, cloud driver factory, reconciler, leader gate,
// pool supervisor, and HTTP surface described in §4-§6, then blocks
// until the process receives a termination signal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"

	"github.com/darkbrains/netip-controller/internal/cloud"
	"github.com/darkbrains/netip-controller/internal/cloud/aws"
	"github.com/darkbrains/netip-controller/internal/cloud/azure"
	"github.com/darkbrains/netip-controller/internal/cloud/gcp"
	"github.com/darkbrains/netip-controller/internal/clusterview"
	"github.com/darkbrains/netip-controller/internal/config"
	"github.com/darkbrains/netip-controller/internal/k8sutil"
	"github.com/darkbrains/netip-controller/internal/leader"
	"github.com/darkbrains/netip-controller/internal/reconciler"
	"github.com/darkbrains/netip-controller/internal/supervisor"
	"github.com/darkbrains/netip-controller/internal/telemetry/httpserver"
	"github.com/darkbrains/netip-controller/internal/telemetry/metrics"
)

// resyncPeriod is the SharedInformerFactory periodic full-resync
// interval; it is not the reconcile tick, only a defense against missed
// watch events.
const resyncPeriod = 10 * time.Minute

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("controller exited with error", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	restConfig, err := k8sutil.BuildRestConfig()
	if err != nil {
		return fmt.Errorf("build kubeconfig: %w", err)
	}

	k8sClient, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return fmt.Errorf("build kubernetes client: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return fmt.Errorf("build dynamic client: %w", err)
	}

	view := clusterview.New(k8sClient, resyncPeriod)
	view.Start(ctx.Done())
	if !view.WaitForCacheSync(ctx) {
		return fmt.Errorf("cluster view cache never synced")
	}

	drivers, err := buildDriverFactory(ctx, logger)
	if err != nil {
		return fmt.Errorf("build cloud driver factory: %w", err)
	}

	rec := reconciler.New(view, drivers, k8sClient, logger)

	recorder := metrics.Recorder{}
	registry := prometheus.NewRegistry()
	metrics.MustRegister(registry)
	metrics.ControllerInfo.WithLabelValues(cfg.ControllerVersion, cfg.PodName, cfg.ClusterName).Set(1)

	sup := supervisor.New(dynamicClient, rec, recorder, logger, resyncPeriod)
	if err := sup.Start(ctx); err != nil {
		return fmt.Errorf("start pool supervisor: %w", err)
	}

	var isLeader atomic.Bool
	gate := leader.New(leader.Config{
		LeaseName:      cfg.LeaseName,
		LeaseNamespace: cfg.LeaseNamespace,
		LeaseDuration:  cfg.LeaseDuration,
		Identity:       cfg.PodName,
	}, k8sClient, logger)
	gate.OnAcquired = func(leaderCtx context.Context) {
		isLeader.Store(true)
		metrics.ControllerIsLeader.WithLabelValues(cfg.PodName).Set(1)
		sup.OnAcquired(leaderCtx)
	}
	gate.OnLost = func() {
		isLeader.Store(false)
		metrics.ControllerIsLeader.WithLabelValues(cfg.PodName).Set(0)
		sup.OnLost()
	}

	router := httpserver.NewRouter(httpserver.Checks{
		ClusterViewSynced: func() bool { return sup.WaitForCacheSync(ctx) },
		IsLeader:          isLeader.Load,
		FirstTickComplete: sup.Ready,
	}, registry)

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.MetricsPort), Handler: router}
	go func() {
		logger.Info("http surface listening", slog.Int("port", cfg.MetricsPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", slog.Any("err", err))
		}
	}()

	go func() {
		if err := gate.Run(ctx); err != nil {
			logger.Error("leader gate exited", slog.Any("err", err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, draining")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	sup.Shutdown()
	return nil
}

// buildDriverFactory wires one cloud.Driver per provider behind
// cloud.Factory, per §4.2: gcp is fully implemented, aws/azure are
// wired placeholders (§9).
func buildDriverFactory(ctx context.Context, logger *slog.Logger) (cloud.Factory, error) {
	gcpDriver, err := gcp.New(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("build gcp driver: %w", err)
	}

	return cloud.NewFactory(map[string]cloud.Driver{
		"gcp":   gcpDriver,
		"aws":   aws.New(),
		"azure": azure.New(),
	}), nil
}
