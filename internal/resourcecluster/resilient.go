package resourcecluster

import (
	"context"
	"time"

	"github.com/fleetscale/autoscaler-core/internal/logger"
	"github.com/fleetscale/autoscaler-core/internal/resilience"
	"github.com/fleetscale/autoscaler-core/pkg/models"
)

// Resilient wraps a ResourceCluster with a circuit breaker and fixed retry
// count, exactly as the teacher's internal/collector.ResilientCollector
// wraps Collector. A repeatedly-failing cluster trips the breaker and fails
// fast instead of stacking retries tick after tick.
type Resilient struct {
	cluster        ResourceCluster
	circuitBreaker *resilience.CircuitBreaker
	retryAttempts  int
	retryDelay     time.Duration
}

type ResilientConfig struct {
	Cluster       ResourceCluster
	MaxFailures   int
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	OnStateChange func(name string, from, to resilience.State)
}

func NewResilient(cfg ResilientConfig) *Resilient {
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 1 * time.Second
	}

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:          "resourcecluster",
		MaxFailures:   cfg.MaxFailures,
		Timeout:       cfg.Timeout,
		OnStateChange: cfg.OnStateChange,
	})

	return &Resilient{
		cluster:        cfg.Cluster,
		circuitBreaker: cb,
		retryAttempts:  cfg.RetryAttempts,
		retryDelay:     cfg.RetryDelay,
	}
}

func (r *Resilient) GetUsage(ctx context.Context, req models.GetClusterUsageRequest) (models.GetClusterUsageResponse, error) {
	var resp models.GetClusterUsageResponse
	var lastErr error

	err := r.circuitBreaker.Execute(func() error {
		for attempt := 1; attempt <= r.retryAttempts; attempt++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			var err error
			resp, err = r.cluster.GetUsage(ctx, req)
			if err == nil {
				return nil
			}

			lastErr = err
			logger.WithCluster(req.ClusterId).Warnf("usage query attempt %d/%d failed: %v", attempt, r.retryAttempts, err)

			if attempt < r.retryAttempts {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(r.retryDelay):
				}
			}
		}
		return lastErr
	})

	return resp, err
}

func (r *Resilient) GetIdleInstances(ctx context.Context, req models.GetClusterIdleInstancesRequest) (models.GetClusterIdleInstancesResponse, error) {
	var resp models.GetClusterIdleInstancesResponse
	var lastErr error

	err := r.circuitBreaker.Execute(func() error {
		for attempt := 1; attempt <= r.retryAttempts; attempt++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			var err error
			resp, err = r.cluster.GetIdleInstances(ctx, req)
			if err == nil {
				return nil
			}

			lastErr = err
			logger.WithCluster(req.ClusterId).Warnf("idle instance query attempt %d/%d failed: %v", attempt, r.retryAttempts, err)

			if attempt < r.retryAttempts {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(r.retryDelay):
				}
			}
		}
		return lastErr
	})

	return resp, err
}

func (r *Resilient) CircuitState() resilience.State {
	return r.circuitBreaker.State()
}

func (r *Resilient) ResetCircuit() {
	r.circuitBreaker.Reset()
}
