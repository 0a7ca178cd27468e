package evaluator_test

import (
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetscale/autoscaler-core/internal/evaluator"
	"github.com/fleetscale/autoscaler-core/internal/ruleset"
	"github.com/fleetscale/autoscaler-core/pkg/models"
)

func TestEvaluate_E1_OrderedBySkuAndSkipsUnmanaged(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rules := ruleset.New("cluster-1", map[models.SkuId]models.ScaleSpec{
		"small": {ClusterId: "cluster-1", SkuId: "small", MinSize: 11, MaxSize: 15, MinIdleToKeep: 5, MaxIdleToKeep: 10},
		"large": {ClusterId: "cluster-1", SkuId: "large", MinSize: 1, MaxSize: 20, MinIdleToKeep: 1, MaxIdleToKeep: 2},
	}, clock)

	usage := models.ClusterUsage{
		ClusterId: "cluster-1",
		Usages: []models.UsageByMachineDefinition{
			{Def: models.MachineDefinition{SkuId: "medium"}, IdleCount: 8, TotalCount: 15},
			{Def: models.MachineDefinition{SkuId: "small"}, IdleCount: 4, TotalCount: 10},
			{Def: models.MachineDefinition{SkuId: "large"}, IdleCount: 16, TotalCount: 16},
		},
	}

	result := evaluator.Evaluate(usage, rules)

	require.Len(t, result.Decisions, 2)
	assert.Equal(t, models.SkuId("large"), result.Decisions[0].SkuId)
	assert.Equal(t, models.ScaleDown, result.Decisions[0].Type)
	assert.Equal(t, 2, result.Decisions[0].DesireSize)

	assert.Equal(t, models.SkuId("small"), result.Decisions[1].SkuId)
	assert.Equal(t, models.ScaleUp, result.Decisions[1].Type)
	assert.Equal(t, 11, result.Decisions[1].DesireSize)
}

func TestEvaluate_DropsInvalidUsage(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rules := ruleset.New("cluster-1", map[models.SkuId]models.ScaleSpec{
		"small": {ClusterId: "cluster-1", SkuId: "small", MinSize: 1, MaxSize: 10},
	}, clock)

	usage := models.ClusterUsage{
		ClusterId: "cluster-1",
		Usages: []models.UsageByMachineDefinition{
			{Def: models.MachineDefinition{SkuId: "small"}, IdleCount: 5, TotalCount: 2},
		},
	}

	result := evaluator.Evaluate(usage, rules)
	assert.Empty(t, result.Decisions)
	require.Len(t, result.Dropped, 1)
	assert.Equal(t, models.SkuId("small"), result.Dropped[0].Def.SkuId)
}

func TestEvaluate_NoUsageNoDecisions(t *testing.T) {
	clock := clockwork.NewFakeClock()
	rules := ruleset.New("cluster-1", nil, clock)
	result := evaluator.Evaluate(models.ClusterUsage{ClusterId: "cluster-1"}, rules)
	assert.Empty(t, result.Decisions)
	assert.Empty(t, result.Dropped)
}
