// Package rule implements AvailabilityRule: a pure per-SKU decision function
// with an embedded cooldown clock. Grounded on the teacher's
// internal/decision/engine.go Engine.Decide, generalized from a single
// cluster-wide CPU/memory decision to a per-SKU idle-headroom decision and
// given an injectable github.com/jonboulle/clockwork.Clock in place of the
// teacher's direct time.Now() calls.
package rule

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/fleetscale/autoscaler-core/pkg/models"
)

// AvailabilityRule applies one SKU's ScaleSpec to a usage sample, emitting at
// most one ScaleDecision per cooldown window. Safe for concurrent Apply
// calls, though the controller only ever calls it from its single actor
// goroutine.
type AvailabilityRule struct {
	spec  models.ScaleSpec
	clock clockwork.Clock

	mu           sync.Mutex
	lastActionAt time.Time
	hasActed     bool
}

// New constructs a rule with no recorded last action time.
func New(spec models.ScaleSpec, clock clockwork.Clock) *AvailabilityRule {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AvailabilityRule{spec: spec, clock: clock}
}

func (r *AvailabilityRule) Spec() models.ScaleSpec {
	return r.spec
}

// Apply runs the full decision algorithm for one usage sample: cooldown
// gate, desired-size computation, clamp, no-op rejection, emission. Returns
// nil when no decision should be emitted.
func (r *AvailabilityRule) Apply(usage models.UsageByMachineDefinition) *models.ScaleDecision {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hasActed && r.clock.Now().Sub(r.lastActionAt) < r.spec.CoolDown {
		return nil
	}

	target, scaleType, ok := desiredSize(r.spec, usage)
	if !ok {
		return nil
	}

	target = clamp(target, r.spec.MinSize, r.spec.MaxSize)

	if target == usage.TotalCount {
		return nil
	}

	r.lastActionAt = r.clock.Now()
	r.hasActed = true

	return &models.ScaleDecision{
		ClusterId:  r.spec.ClusterId,
		SkuId:      r.spec.SkuId,
		Type:       scaleType,
		DesireSize: target,
		MinSize:    target,
		MaxSize:    target,
	}
}

// desiredSize computes the candidate target size and direction before
// clamping. ok is false when idle sits within [minIdleToKeep, maxIdleToKeep]
// and no adjustment is warranted.
func desiredSize(spec models.ScaleSpec, usage models.UsageByMachineDefinition) (target int, scaleType models.ScaleType, ok bool) {
	switch {
	case usage.IdleCount < spec.MinIdleToKeep:
		return usage.TotalCount + (spec.MinIdleToKeep - usage.IdleCount), models.ScaleUp, true
	case usage.IdleCount > spec.MaxIdleToKeep:
		return usage.TotalCount - (usage.IdleCount - spec.MaxIdleToKeep), models.ScaleDown, true
	default:
		return 0, models.NoOp, false
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
