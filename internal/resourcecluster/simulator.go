package resourcecluster

import (
	"context"
	"sync"

	"github.com/fleetscale/autoscaler-core/pkg/models"
)

// executorSim is one registered executor within a SKU pool.
type executorSim struct {
	id   string
	idle bool
}

// skuPool tracks the registered executors for one SKU.
type skuPool struct {
	def       models.MachineDefinition
	executors []*executorSim
}

// Simulator is a reference ResourceCluster for local runs and integration
// tests: it tracks registered executors per SKU and answers usage snapshots
// and idle-instance lookups from in-memory state, instead of a real fleet.
// Grounded on the teacher's internal/simulator/cluster.go ClusterSim.
type Simulator struct {
	clusterId string

	mu    sync.RWMutex
	pools map[models.SkuId]*skuPool
}

func NewSimulator(clusterId string) *Simulator {
	return &Simulator{
		clusterId: clusterId,
		pools:     make(map[models.SkuId]*skuPool),
	}
}

// Register seeds a SKU pool with totalCount executors, idleCount of which
// start idle.
func (s *Simulator) Register(def models.MachineDefinition, totalCount, idleCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool := &skuPool{def: def}
	for i := 0; i < totalCount; i++ {
		pool.executors = append(pool.executors, &executorSim{
			id:   models.NewUUID(),
			idle: i < idleCount,
		})
	}
	s.pools[def.SkuId] = pool
}

func (s *Simulator) GetUsage(ctx context.Context, req models.GetClusterUsageRequest) (models.GetClusterUsageResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resp := models.GetClusterUsageResponse{ClusterId: req.ClusterId}
	for _, pool := range s.pools {
		idle := 0
		for _, ex := range pool.executors {
			if ex.idle {
				idle++
			}
		}
		resp.Usages = append(resp.Usages, models.UsageByMachineDefinition{
			Def:        pool.def,
			IdleCount:  idle,
			TotalCount: len(pool.executors),
		})
	}
	return resp, nil
}

func (s *Simulator) GetIdleInstances(ctx context.Context, req models.GetClusterIdleInstancesRequest) (models.GetClusterIdleInstancesResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resp := models.GetClusterIdleInstancesResponse{
		ClusterId:  req.ClusterId,
		SkuId:      req.SkuId,
		DesireSize: req.DesireSize,
	}

	pool, ok := s.pools[req.SkuId]
	if !ok {
		return resp, nil
	}

	count := 0
	for _, ex := range pool.executors {
		if !ex.idle {
			continue
		}
		if count >= req.MaxInstanceCount {
			break
		}
		resp.InstanceIds = append(resp.InstanceIds, ex.id)
		count++
	}
	return resp, nil
}
