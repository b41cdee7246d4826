// Package config parses the environment variables of §6 and their
// pflag-shadowing CLI flags, following cmd/provisioner/main.go's
// pflag.String/.Int/.Bool + parseLogLevel pattern. Flags default to the
// environment variable's value so either surface works.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

// Config holds every knob named in §6 plus the ambient pieces (log
// level, controller namespace) the teacher's cmd/* binaries always
// expose.
type Config struct {
	LeaseName      string
	LeaseNamespace string
	LeaseDuration  time.Duration
	MetricsPort    int
	LogLevel       string

	ControllerVersion string
	ClusterName        string

	PodName      string
	PodNamespace string
}

// Parse builds a Config from the process's environment and argv,
// flags taking precedence when both are set.
func Parse(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("controller", pflag.ContinueOnError)

	leaseName := fs.String("lease-name", envOr("LEASE_NAME", "ip-address-controller-leader"), "name of the leader-election Lease")
	leaseNamespace := fs.String("lease-namespace", envOr("LEASE_NAMESPACE", "default"), "namespace of the leader-election Lease")
	leaseDurationSeconds := fs.Int("lease-duration", envIntOr("LEASE_DURATION", 60), "leader-election lease duration in seconds")
	metricsPort := fs.Int("metrics-port", envIntOr("METRICS_PORT", 9999), "port the /metrics, /healthz, /readyz HTTP surface listens on")
	logLevel := fs.String("log-level", envOr("LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
	controllerVersion := fs.String("controller-version", envOr("CONTROLLER_VERSION", "dev"), "controller_version label reported on metrics")
	clusterName := fs.String("cluster-name", envOr("CLUSTER_NAME", ""), "optional cluster_name label reported on metrics")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &Config{
		LeaseName:         *leaseName,
		LeaseNamespace:    *leaseNamespace,
		LeaseDuration:     time.Duration(*leaseDurationSeconds) * time.Second,
		MetricsPort:       *metricsPort,
		LogLevel:          *logLevel,
		ControllerVersion: *controllerVersion,
		ClusterName:       *clusterName,
		PodName:           os.Getenv("POD_NAME"),
		PodNamespace:      os.Getenv("POD_NAMESPACE"),
	}, nil
}

// ParseLogLevel mirrors cmd/provisioner/main.go's parseLogLevel.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
