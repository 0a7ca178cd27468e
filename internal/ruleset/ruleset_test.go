package ruleset_test

import (
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/fleetscale/autoscaler-core/internal/ruleset"
	"github.com/fleetscale/autoscaler-core/pkg/models"
)

func TestReplaceFrom_KeysMatchSnapshot(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := ruleset.NewStore(ruleset.New("cluster-1", nil, clock))

	snapshot := map[models.SkuId]models.ScaleSpec{
		"small": {ClusterId: "cluster-1", SkuId: "small", MinSize: 1, MaxSize: 5},
		"large": {ClusterId: "cluster-1", SkuId: "large", MinSize: 2, MaxSize: 8},
	}

	next := store.ReplaceFrom("cluster-1", snapshot, clock)

	assert.ElementsMatch(t, []models.SkuId{"large", "small"}, next.Keys())
	assert.Equal(t, next, store.Load())
}

func TestReplaceFrom_ResetsCooldownStateForReloadedSku(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := ruleset.NewStore(ruleset.New("cluster-1", map[models.SkuId]models.ScaleSpec{
		"small": {ClusterId: "cluster-1", SkuId: "small", MinSize: 1, MaxSize: 5, MinIdleToKeep: 1, MaxIdleToKeep: 2},
	}, clock))

	r := store.Load().Get("small")
	decision := r.Apply(models.UsageByMachineDefinition{IdleCount: 0, TotalCount: 3})
	assert.NotNil(t, decision, "precondition: rule should have acted once")

	next := store.ReplaceFrom("cluster-1", map[models.SkuId]models.ScaleSpec{
		"small": {ClusterId: "cluster-1", SkuId: "small", MinSize: 1, MaxSize: 5, MinIdleToKeep: 1, MaxIdleToKeep: 2, CoolDown: 1000},
	}, clock)

	fresh := next.Get("small")
	assert.NotSame(t, r, fresh)
	decision2 := fresh.Apply(models.UsageByMachineDefinition{IdleCount: 0, TotalCount: 3})
	assert.NotNil(t, decision2, "reloaded rule must not inherit the prior cooldown")
}

func TestKeys_AscendingOrder(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rs := ruleset.New("cluster-1", map[models.SkuId]models.ScaleSpec{
		"zeta":  {SkuId: "zeta"},
		"alpha": {SkuId: "alpha"},
		"mu":    {SkuId: "mu"},
	}, clock)

	assert.Equal(t, []models.SkuId{"alpha", "mu", "zeta"}, rs.Keys())
}

func TestGet_UnknownSkuReturnsNil(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rs := ruleset.New("cluster-1", nil, clock)
	assert.Nil(t, rs.Get("missing"))
}
