// Package httpserver serves /healthz, /readyz, and /metrics on a
// chi.Router, grounded on VerteraIO-vertera/internal/http/server.go's
// chi.NewRouter + middleware.Recoverer pattern. Readiness requires the
// caches to be synced and, on the leader, one completed reconcile tick;
// there is no staleness or time-threshold check.
package httpserver

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Checks is the set of callbacks the router consults on every /readyz
// request; all must be non-nil.
type Checks struct {
	// ClusterViewSynced reports whether the node/pod/pool caches have
	// completed their initial sync.
	ClusterViewSynced func() bool
	// IsLeader reports whether this replica currently holds the lease.
	IsLeader func() bool
	// FirstTickComplete reports whether at least one reconcile tick has
	// finished since leadership was acquired. Only consulted for leaders.
	FirstTickComplete func() bool
}

// NewRouter builds the health/metrics HTTP surface of §6.
func NewRouter(checks Checks, registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ready, reason := evaluateReadiness(checks)
		w.Header().Set("Cache-Control", "no-store")
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = fmt.Fprintf(w, "not-ready: %s", reason)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return r
}

func evaluateReadiness(checks Checks) (bool, string) {
	if !checks.ClusterViewSynced() {
		return false, "cluster-view-not-synced"
	}
	if checks.IsLeader() && !checks.FirstTickComplete() {
		return false, "leader-no-reconcile-tick-yet"
	}
	return true, "ok"
}
