package idleresolver_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetscale/autoscaler-core/internal/idleresolver"
	"github.com/fleetscale/autoscaler-core/pkg/models"
)

func TestBuildQuery_MaxInstanceCountDerivation(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := idleresolver.New("cluster-1", clock, time.Minute)

	decision := models.ScaleDecision{SkuId: "large", Type: models.ScaleDown, DesireSize: 15}
	req, err := r.BuildQuery(decision, models.MachineDefinition{SkuId: "large"}, 16)

	require.NoError(t, err)
	assert.Equal(t, 1, req.MaxInstanceCount)
	assert.Equal(t, models.SkuId("large"), req.SkuId)
	assert.Equal(t, 15, req.DesireSize)
}

func TestBuildQuery_RejectsNonPositiveMaxInstanceCount(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := idleresolver.New("cluster-1", clock, time.Minute)

	decision := models.ScaleDecision{SkuId: "large", Type: models.ScaleDown, DesireSize: 16}
	_, err := r.BuildQuery(decision, models.MachineDefinition{}, 16)

	assert.ErrorIs(t, err, idleresolver.ErrNoMaxInstanceCount)
	assert.Equal(t, 0, r.PendingCount())
}

func TestResolve_CorrelatesAndRemovesEntry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := idleresolver.New("cluster-1", clock, time.Minute)

	decision := models.ScaleDecision{SkuId: "large", Type: models.ScaleDown, DesireSize: 15}
	_, err := r.BuildQuery(decision, models.MachineDefinition{}, 16)
	require.NoError(t, err)

	req, ok := r.Resolve(models.GetClusterIdleInstancesResponse{
		ClusterId:   "cluster-1",
		SkuId:       "large",
		DesireSize:  15,
		InstanceIds: []string{"agent1"},
	})

	require.True(t, ok)
	assert.Equal(t, []string{"agent1"}, req.IdleInstances)
	assert.Equal(t, 0, r.PendingCount())
}

func TestResolve_UnmatchedReplyIsDropped(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := idleresolver.New("cluster-1", clock, time.Minute)

	_, ok := r.Resolve(models.GetClusterIdleInstancesResponse{SkuId: "ghost", DesireSize: 3})
	assert.False(t, ok)
}

func TestSweep_ExpiresOldEntries(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := idleresolver.New("cluster-1", clock, 10*time.Second)

	decision := models.ScaleDecision{SkuId: "large", Type: models.ScaleDown, DesireSize: 15}
	_, err := r.BuildQuery(decision, models.MachineDefinition{}, 16)
	require.NoError(t, err)
	assert.Equal(t, 1, r.PendingCount())

	clock.Advance(5 * time.Second)
	assert.Equal(t, 0, r.Sweep())

	clock.Advance(6 * time.Second)
	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 0, r.PendingCount())
}
