// Package provisioner defines HostProvisioner, the out-of-scope external
// collaborator that actuates ScaleRequests against an underlying fleet.
// Grounded on the teacher's internal/scaler.Scaler interface.
package provisioner

import (
	"context"
	"errors"

	"github.com/fleetscale/autoscaler-core/pkg/models"
)

var (
	// ErrDispatchFailed is the DispatchError case of the error taxonomy:
	// the provisioner was unreachable or rejected the request.
	ErrDispatchFailed = errors.New("provisioner: dispatch failed")
)

// HostProvisioner executes a scale request against the underlying fleet.
// Idempotent: the controller may resend the same request after cooldown.
type HostProvisioner interface {
	Scale(ctx context.Context, req *models.ScaleRequest) error
}
