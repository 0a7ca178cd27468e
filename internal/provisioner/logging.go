package provisioner

import (
	"context"

	"github.com/fleetscale/autoscaler-core/internal/logger"
	"github.com/fleetscale/autoscaler-core/pkg/models"
)

// LoggingProvisioner is a reference HostProvisioner for local/dev runs and
// integration tests: it records every request it receives and logs it,
// without touching a real fleet. Grounded on the teacher's
// internal/scaler/simulator_scaler.go SimulatorScaler.
type LoggingProvisioner struct {
	requests []models.ScaleRequest
}

func NewLoggingProvisioner() *LoggingProvisioner {
	return &LoggingProvisioner{}
}

func (p *LoggingProvisioner) Scale(ctx context.Context, req *models.ScaleRequest) error {
	p.requests = append(p.requests, *req)
	logger.WithCluster(req.ClusterId).Infof(
		"provisioner: scale sku=%s desireSize=%d idleInstances=%v",
		req.SkuId, req.DesireSize, req.IdleInstances,
	)
	return nil
}

// Requests returns every request observed so far, for test assertions.
func (p *LoggingProvisioner) Requests() []models.ScaleRequest {
	return p.requests
}
