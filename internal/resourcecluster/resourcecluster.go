// Package resourcecluster defines ResourceCluster, the out-of-scope external
// collaborator owning the executor registry. Grounded on the teacher's
// internal/collector.Collector interface.
package resourcecluster

import (
	"context"
	"errors"

	"github.com/fleetscale/autoscaler-core/pkg/models"
)

var (
	// ErrTransient is the TransientQueryError case of the error taxonomy:
	// a usage or idle-instance query failed or timed out. The affected
	// tick is skipped. A failed usage query leaves cooldown untouched; an
	// idle-instance query is only issued after the rule has recorded its
	// action, so that cooldown stays in effect.
	ErrTransient   = errors.New("resourcecluster: transient query error")
	ErrClusterGone = errors.New("resourcecluster: cluster not found")
)

// ResourceCluster answers usage queries and idle-instance lookups for one
// cluster.
type ResourceCluster interface {
	GetUsage(ctx context.Context, req models.GetClusterUsageRequest) (models.GetClusterUsageResponse, error)
	GetIdleInstances(ctx context.Context, req models.GetClusterIdleInstancesRequest) (models.GetClusterIdleInstancesResponse, error)
}
