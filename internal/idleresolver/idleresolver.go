// Package idleresolver implements IdleResolver: it turns a ScaleDown
// decision into a GetClusterIdleInstancesRequest, tracks it as a
// PendingScaleDown, and correlates the eventual reply back so the
// Dispatcher can build a ScaleRequest carrying concrete instance IDs.
// Grounded on the teacher's internal/scaler/state_tracker.go, which tracks
// in-flight scaling operations by cluster in the same request-then-correlate
// shape.
package idleresolver

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/fleetscale/autoscaler-core/pkg/models"
)

// ErrNoMaxInstanceCount is returned when total-desireSize is <= 0: the spec
// says to skip the query rather than issue a meaningless one.
var ErrNoMaxInstanceCount = errors.New("idleresolver: non-positive max instance count")

// Resolver owns the PendingScaleDown table for one cluster. Every method
// takes an internal mutex, so concurrent calls are safe; in practice the
// controller's single actor is its only caller.
type Resolver struct {
	clusterId string
	clock     clockwork.Clock
	ttl       time.Duration

	mu      sync.Mutex
	pending map[models.PendingScaleDownKey]models.PendingScaleDown
}

// New builds a Resolver whose pending entries expire after ttl (the spec
// mandates sampleInterval*2).
func New(clusterId string, clock clockwork.Clock, ttl time.Duration) *Resolver {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Resolver{
		clusterId: clusterId,
		clock:     clock,
		ttl:       ttl,
		pending:   make(map[models.PendingScaleDownKey]models.PendingScaleDown),
	}
}

// BuildQuery converts a ScaleDown decision into an idle-instance request and
// registers a PendingScaleDown entry awaiting the reply. Returns
// ErrNoMaxInstanceCount when total-desireSize is not positive, in which case
// no entry is registered and the caller should skip issuing the query.
func (r *Resolver) BuildQuery(decision models.ScaleDecision, machineDef models.MachineDefinition, total int) (models.GetClusterIdleInstancesRequest, error) {
	maxInstanceCount := total - decision.DesireSize
	if maxInstanceCount <= 0 {
		return models.GetClusterIdleInstancesRequest{}, ErrNoMaxInstanceCount
	}

	r.mu.Lock()
	r.pending[models.PendingScaleDownKey{SkuId: decision.SkuId, DesireSize: decision.DesireSize}] = models.PendingScaleDown{
		ClusterId:  r.clusterId,
		SkuId:      decision.SkuId,
		DesireSize: decision.DesireSize,
		CreatedAt:  r.clock.Now(),
	}
	r.mu.Unlock()

	return models.GetClusterIdleInstancesRequest{
		ClusterId:        r.clusterId,
		SkuId:            decision.SkuId,
		MachineDef:       machineDef,
		DesireSize:       decision.DesireSize,
		MaxInstanceCount: maxInstanceCount,
	}, nil
}

// Resolve correlates a GetClusterIdleInstancesResponse to a pending entry by
// (skuId, desireSize). Returns ok=false when no matching entry exists (the
// reply should be dropped by the caller, logged at debug); the entry is
// removed on a successful match.
func (r *Resolver) Resolve(resp models.GetClusterIdleInstancesResponse) (models.ScaleRequest, bool) {
	key := models.PendingScaleDownKey{SkuId: resp.SkuId, DesireSize: resp.DesireSize}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.pending[key]; !found {
		return models.ScaleRequest{}, false
	}
	delete(r.pending, key)

	return models.ScaleRequest{
		ClusterId:     r.clusterId,
		SkuId:         resp.SkuId,
		DesireSize:    resp.DesireSize,
		IdleInstances: resp.InstanceIds,
	}, true
}

// Sweep discards pending entries older than the configured ttl, returning
// how many were expired. Called once per tick.
func (r *Resolver) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	expired := 0
	for key, entry := range r.pending {
		if now.Sub(entry.CreatedAt) >= r.ttl {
			delete(r.pending, key)
			expired++
		}
	}
	return expired
}

// PendingCount reports the number of outstanding entries, for introspection
// and metrics.
func (r *Resolver) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Clear discards all pending entries, called on controller shutdown.
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = make(map[models.PendingScaleDownKey]models.PendingScaleDown)
}
