// Package metrics defines the Prometheus collectors matching the
// original Python controller's utils/metrics.py names, grounded on
// tkestack-galaxy/pkg/ipam/metrics/metrics.go's package-level
// prometheus.New*Vec + MustRegister pattern.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/darkbrains/netip-controller/internal/reconciler"
)

var (
	CRDStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netipallocation_crd_status",
		Help: "Status of NetIPAllocation CRD (1=healthy, 0=unhealthy)",
	}, []string{"crd_name"})

	CRDReservedIPsTotal = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netipallocation_reserved_ips_total",
		Help: "Total number of reserved IPs in CRD",
	}, []string{"crd_name"})

	CRDAttachedIPsTotal = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netipallocation_attached_ips_total",
		Help: "Number of IPs currently attached to nodes",
	}, []string{"crd_name"})

	CRDUnattachedIPsTotal = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netipallocation_unattached_ips_total",
		Help: "Number of IPs not attached to any node",
	}, []string{"crd_name"})

	IPAttached = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netipallocation_ip_attached",
		Help: "Whether IP is attached to a node (1=attached, 0=not attached)",
	}, []string{"crd_name", "ip", "node"})

	NodeIPReady = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netipallocation_node_ip_ready",
		Help: "Whether node has ip.ready=true label (1=ready, 0=not ready)",
	}, []string{"node", "crd_name"})

	NodeCordoned = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netipallocation_node_cordoned",
		Help: "Whether node is cordoned (1=cordoned, 0=schedulable)",
	}, []string{"node"})

	ControllerIsLeader = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netipallocation_controller_is_leader",
		Help: "Whether this controller instance is the leader (1=leader, 0=not leader)",
	}, []string{"pod_name"})

	ControllerHealthy = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netipallocation_controller_healthy",
		Help: "Whether controller is healthy (1=healthy, 0=unhealthy)",
	}, []string{"pod_name"})

	ControllerReady = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netipallocation_controller_ready",
		Help: "Whether controller is ready (1=ready, 0=not ready)",
	}, []string{"pod_name"})

	ReconcileTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netipallocation_reconcile_total",
		Help: "Total number of reconciliation runs",
	}, []string{"crd_name", "status"})

	IPAttachTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netipallocation_ip_attach_total",
		Help: "Total number of IP attach operations",
	}, []string{"crd_name", "status"})

	IPDetachTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netipallocation_ip_detach_total",
		Help: "Total number of IP detach operations",
	}, []string{"crd_name", "status"})

	CloudAPIErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netipallocation_cloud_api_errors_total",
		Help: "Total number of cloud provider API errors",
	}, []string{"operation", "error_type"})

	ReconcileDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "netipallocation_reconcile_duration_seconds",
		Help:    "Time spent in reconciliation",
		Buckets: []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
	}, []string{"crd_name"})

	ControllerInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netipallocation_controller_info",
		Help: "Controller build/runtime information, value is always 1",
	}, []string{"version", "pod_name", "cluster_name"})
)

// MustRegister registers every collector above against reg.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		CRDStatus, CRDReservedIPsTotal, CRDAttachedIPsTotal, CRDUnattachedIPsTotal,
		IPAttached, NodeIPReady, NodeCordoned,
		ControllerIsLeader, ControllerHealthy, ControllerReady,
		ReconcileTotal, IPAttachTotal, IPDetachTotal, CloudAPIErrorsTotal,
		ReconcileDurationSeconds, ControllerInfo,
	)
}

// Recorder implements supervisor.Recorder, translating a TickResult
// into the gauge/counter/histogram updates of §4.1 Phase 5.
type Recorder struct{}

func (Recorder) RecordTick(result reconciler.TickResult) {
	status := "ok"
	if result.Err != nil {
		status = "error"
	}

	CRDReservedIPsTotal.WithLabelValues(result.PoolName).Set(float64(result.Reserved))
	CRDAttachedIPsTotal.WithLabelValues(result.PoolName).Set(float64(result.Attached))
	CRDUnattachedIPsTotal.WithLabelValues(result.PoolName).Set(float64(result.Unattached))
	ReconcileDurationSeconds.WithLabelValues(result.PoolName).Observe(result.Duration.Seconds())
	ReconcileTotal.WithLabelValues(result.PoolName, status).Inc()

	healthValue := 0.0
	if result.Healthy() {
		healthValue = 1.0
	}
	CRDStatus.WithLabelValues(result.PoolName).Set(healthValue)

	// Per-IP and per-node gauges are a full snapshot each tick: clear this
	// pool's prior series before setting the current ones so an IP that
	// moved node, or a node that dropped out of the eligible set, doesn't
	// leave a stale time series behind.
	IPAttached.DeletePartialMatch(prometheus.Labels{"crd_name": result.PoolName})
	for ip, node := range result.IPBindings {
		IPAttached.WithLabelValues(result.PoolName, ip, node).Set(1)
	}

	NodeIPReady.DeletePartialMatch(prometheus.Labels{"crd_name": result.PoolName})
	for _, n := range result.Nodes {
		NodeIPReady.WithLabelValues(n.Node, result.PoolName).Set(boolToFloat(n.Ready))
		NodeCordoned.WithLabelValues(n.Node).Set(boolToFloat(n.Cordoned))
	}

	for _, action := range result.Actions {
		actionStatus := "ok"
		if !action.Ok {
			actionStatus = "error"
		}
		switch action.Kind {
		case reconciler.ActionAttach:
			IPAttachTotal.WithLabelValues(result.PoolName, actionStatus).Inc()
		case reconciler.ActionDetach:
			IPDetachTotal.WithLabelValues(result.PoolName, actionStatus).Inc()
		}
	}

	if result.Err != nil {
		CloudAPIErrorsTotal.WithLabelValues("reconcile", string(result.ErrKind)).Inc()
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
