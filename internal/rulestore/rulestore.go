// Package rulestore defines RuleStore, the out-of-scope external
// collaborator persisting per-cluster ScaleSpecs. Grounded on the teacher's
// internal/collector.Collector/internal/scaler.Scaler pattern of a small
// consumed interface plus concrete implementations. No circuit breaker or
// retry wrapper is applied to it.
package rulestore

import (
	"context"
	"errors"

	"github.com/fleetscale/autoscaler-core/pkg/models"
)

// ErrUnavailable is the RuleStoreError case of the error taxonomy: the
// controller keeps its previous RuleSet and retries on the next RefreshTick.
var ErrUnavailable = errors.New("rulestore: unavailable")

// RuleStore returns the current rule snapshot for a cluster. An empty
// snapshot is valid: the controller idles with no managed SKUs.
type RuleStore interface {
	GetScaleRules(ctx context.Context, clusterId string) (models.RuleSetSnapshot, error)
}
