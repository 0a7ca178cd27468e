// Package dispatcher implements Dispatcher: it converts a ready
// ScaleDecision (with, for ScaleDown, its resolved idle instance list) into
// a ScaleRequest and fires it at the Host Provisioner. Grounded on the
// teacher's internal/scaler.Scaler call sites in
// internal/orchestrator/pipeline.go's execute method, generalized from a
// single cluster-wide up/down call to a per-SKU ScaleRequest.
package dispatcher

import (
	"context"

	"github.com/fleetscale/autoscaler-core/internal/events"
	"github.com/fleetscale/autoscaler-core/internal/logger"
	"github.com/fleetscale/autoscaler-core/internal/metrics"
	"github.com/fleetscale/autoscaler-core/internal/provisioner"
	"github.com/fleetscale/autoscaler-core/pkg/models"
)

// Dispatcher sends ScaleRequests to a HostProvisioner and publishes a
// ScaleDispatched event for each. Dispatch is fire-and-forget: the
// provisioner's acknowledgement is not required to advance the controller's
// next tick, so errors are logged, not returned to the caller.
type Dispatcher struct {
	provisioner provisioner.HostProvisioner
	publisher   *events.Publisher
}

func New(p provisioner.HostProvisioner, publisher *events.Publisher) *Dispatcher {
	return &Dispatcher{provisioner: p, publisher: publisher}
}

// ScaleUp builds and dispatches a ScaleUp request; idleInstances is always
// omitted for this direction.
func (d *Dispatcher) ScaleUp(ctx context.Context, decision models.ScaleDecision) {
	req := &models.ScaleRequest{
		ClusterId:  decision.ClusterId,
		SkuId:      decision.SkuId,
		DesireSize: decision.DesireSize,
	}
	d.dispatch(ctx, req)
}

// ScaleDown builds and dispatches a ScaleDown request carrying the resolved
// idle instance IDs.
func (d *Dispatcher) ScaleDown(ctx context.Context, req models.ScaleRequest) {
	d.dispatch(ctx, &req)
}

func (d *Dispatcher) dispatch(ctx context.Context, req *models.ScaleRequest) {
	if err := d.provisioner.Scale(ctx, req); err != nil {
		logger.WithCluster(req.ClusterId).Errorf("scale dispatch failed for sku %s: %v", req.SkuId, err)
		d.publisher.Error(req.ClusterId, "scale dispatch failed", err)
		return
	}
	d.publisher.ScaleDispatched(req.ClusterId, req)
	metrics.Get().IncScaleDispatched(req.ClusterId, string(req.SkuId), dispatchType(req))
}

func dispatchType(req *models.ScaleRequest) string {
	if len(req.IdleInstances) > 0 {
		return "scale_down"
	}
	return "scale_up"
}
