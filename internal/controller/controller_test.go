package controller_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetscale/autoscaler-core/internal/controller"
	"github.com/fleetscale/autoscaler-core/internal/events"
	"github.com/fleetscale/autoscaler-core/internal/provisioner"
	"github.com/fleetscale/autoscaler-core/internal/resourcecluster"
	"github.com/fleetscale/autoscaler-core/internal/rulestore"
	"github.com/fleetscale/autoscaler-core/pkg/models"
)

func waitForEvent(t *testing.T, ch <-chan *models.ControllerEvent, eventType models.EventType, timeout time.Duration) *models.ControllerEvent {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case event := <-ch:
			if event.Type == eventType {
				return event
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event %s", eventType)
			return nil
		}
	}
}

// TestController_E1_ScaleUpAndScaleDownWithIdleResolution exercises the
// full tick: sample -> evaluate -> dispatch scale-up directly, route
// scale-down through the idle resolver, dispatch on the resolved reply.
func TestController_E1_ScaleUpAndScaleDownWithIdleResolution(t *testing.T) {
	sim := resourcecluster.NewSimulator("cluster-1")
	sim.Register(models.MachineDefinition{SkuId: "small"}, 10, 4)
	sim.Register(models.MachineDefinition{SkuId: "large"}, 16, 16)
	sim.Register(models.MachineDefinition{SkuId: "medium"}, 15, 8)

	store := rulestore.NewMemory(map[models.SkuId]models.ScaleSpec{
		"small": {ClusterId: "cluster-1", SkuId: "small", MinSize: 11, MaxSize: 15, MinIdleToKeep: 5, MaxIdleToKeep: 10},
		"large": {ClusterId: "cluster-1", SkuId: "large", MinSize: 11, MaxSize: 15, MinIdleToKeep: 5, MaxIdleToKeep: 15},
	})

	prov := provisioner.NewLoggingProvisioner()
	bus := events.NewEventBus(32)

	ctl, err := controller.New(controller.Config{
		ClusterId:       "cluster-1",
		SampleInterval:  30 * time.Millisecond,
		RefreshInterval: time.Hour,
		Cluster:         sim,
		Store:           store,
		Provisioner:     prov,
		EventBus:        bus,
	})
	require.NoError(t, err)

	allEvents := bus.SubscribeAll()
	ctl.Start()
	defer ctl.Stop()

	idleQuery := waitForEvent(t, allEvents, models.EventTypeIdleQueryIssued, time.Second)
	req, ok := idleQuery.Data.(*models.GetClusterIdleInstancesRequest)
	require.True(t, ok)
	assert.Equal(t, models.SkuId("large"), req.SkuId)
	assert.Equal(t, 1, req.MaxInstanceCount)

	dispatched := waitForEvent(t, allEvents, models.EventTypeScaleDispatched, time.Second)
	smallReq, ok := dispatched.Data.(*models.ScaleRequest)
	require.True(t, ok)
	assert.Equal(t, models.SkuId("small"), smallReq.SkuId)
	assert.Equal(t, 11, smallReq.DesireSize)
	assert.Empty(t, smallReq.IdleInstances)

	largeDispatch := waitForEvent(t, allEvents, models.EventTypeScaleDispatched, time.Second)
	largeReq, ok := largeDispatch.Data.(*models.ScaleRequest)
	require.True(t, ok)
	assert.Equal(t, models.SkuId("large"), largeReq.SkuId)
	assert.Equal(t, 15, largeReq.DesireSize)
	assert.NotEmpty(t, largeReq.IdleInstances)

	rs, ok := ctl.GetRuleSet(context.Background())
	require.True(t, ok)
	assert.NotContains(t, rs.Rules, models.SkuId("medium"))
}

// TestController_E2_RuleRefreshSwap verifies that after a refresh tick picks
// up a new snapshot, introspection reflects only the new SKU set.
func TestController_E2_RuleRefreshSwap(t *testing.T) {
	sim := resourcecluster.NewSimulator("cluster-1")
	sim.Register(models.MachineDefinition{SkuId: "small"}, 10, 4)
	sim.Register(models.MachineDefinition{SkuId: "large"}, 10, 4)
	sim.Register(models.MachineDefinition{SkuId: "medium"}, 10, 4)

	store := rulestore.NewMemory(map[models.SkuId]models.ScaleSpec{
		"small": {ClusterId: "cluster-1", SkuId: "small", MinSize: 1, MaxSize: 20},
		"large": {ClusterId: "cluster-1", SkuId: "large", MinSize: 1, MaxSize: 20},
	})

	bus := events.NewEventBus(32)

	ctl, err := controller.New(controller.Config{
		ClusterId:       "cluster-1",
		SampleInterval:  time.Hour,
		RefreshInterval: 30 * time.Millisecond,
		Cluster:         sim,
		Store:           store,
		Provisioner:     provisioner.NewLoggingProvisioner(),
		EventBus:        bus,
	})
	require.NoError(t, err)

	allEvents := bus.SubscribeAll()
	ctl.Start()
	defer ctl.Stop()

	rs, ok := ctl.GetRuleSet(context.Background())
	require.True(t, ok)
	assert.Contains(t, rs.Rules, models.SkuId("small"))
	assert.Contains(t, rs.Rules, models.SkuId("large"))

	store.Set(map[models.SkuId]models.ScaleSpec{
		"medium": {ClusterId: "cluster-1", SkuId: "medium", MinSize: 1, MaxSize: 20},
	})

	waitForEvent(t, allEvents, models.EventTypeRuleSetReloaded, time.Second)

	rs, ok = ctl.GetRuleSet(context.Background())
	require.True(t, ok)
	assert.Equal(t, map[models.SkuId]models.ScaleSpec{
		"medium": {ClusterId: "cluster-1", SkuId: "medium", MinSize: 1, MaxSize: 20},
	}, rs.Rules)
}
