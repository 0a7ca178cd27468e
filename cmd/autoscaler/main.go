// Command autoscaler runs the ScalerController fleet described by a config
// file: one controller per configured cluster, the operator HTTP API, and
// graceful shutdown on SIGINT/SIGTERM. Grounded on the teacher's cmd/server
// entrypoint, generalized from a single simulated cluster to the
// config-driven cluster_ids list this domain manages.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/fleetscale/autoscaler-core/api"
	"github.com/fleetscale/autoscaler-core/internal/controller"
	"github.com/fleetscale/autoscaler-core/internal/logger"
	"github.com/fleetscale/autoscaler-core/internal/metrics"
	"github.com/fleetscale/autoscaler-core/internal/provisioner"
	"github.com/fleetscale/autoscaler-core/internal/resilience"
	"github.com/fleetscale/autoscaler-core/internal/resourcecluster"
	"github.com/fleetscale/autoscaler-core/internal/rulestore"
	"github.com/fleetscale/autoscaler-core/pkg/config"
	"github.com/fleetscale/autoscaler-core/pkg/database"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to config.yaml in ., ./configs or /etc/autoscaler)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	var db *database.DB
	if cfg.RuleStore.Type == "postgres" || cfg.Database.Host != "" {
		db, err = database.New(cfg.Database.ToDBConfig())
		if err != nil {
			logger.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()
	}

	var store rulestore.RuleStore
	switch cfg.RuleStore.Type {
	case "postgres":
		store = rulestore.NewPostgres(db)
	default:
		store = rulestore.NewMemory(nil)
	}

	var mgr *controller.Manager
	if db != nil {
		mgr = controller.NewWithAuditLog(cfg.Events.BufferSize, db)
	} else {
		mgr = controller.New(cfg.Events.BufferSize)
	}

	for _, clusterId := range cfg.Controller.ClusterIds {
		cluster := resourcecluster.NewResilient(resourcecluster.ResilientConfig{
			Cluster:       resourcecluster.NewSimulator(clusterId),
			MaxFailures:   cfg.Controller.ResourceClusterCircuitBreaker.MaxFailures,
			Timeout:       cfg.Controller.ResourceClusterCircuitBreaker.Timeout,
			RetryAttempts: cfg.Controller.RetryAttempts,
			OnStateChange: func(name string, from, to resilience.State) {
				logger.Warnf("circuit breaker %s: %s -> %s", name, from, to)
				metrics.Get().SetCircuitBreakerState(name, int(to))
			},
		})

		err := mgr.StartCluster(controller.ClusterSpec{
			ClusterId:       clusterId,
			SampleInterval:  cfg.Controller.SampleInterval,
			RefreshInterval: cfg.Controller.RefreshInterval,
			Clock:           clockwork.NewRealClock(),
			Cluster:         cluster,
			Store:           store,
			Provisioner:     provisioner.NewLoggingProvisioner(),
		})
		if err != nil {
			logger.Fatalf("failed to start controller for cluster %s: %v", clusterId, err)
		}
	}
	mgr.Start()

	server := api.NewServer(cfg.API, cfg.WebSocket, db, mgr)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatalf("api server error: %v", err)
		}
	}()
	logger.Infof("api server listening on :%d", cfg.API.Port)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutdown signal received, draining")

	shutdownTimeout := cfg.App.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("api server shutdown error: %v", err)
	}
	mgr.Stop()

	logger.Info("shutdown complete")
}
