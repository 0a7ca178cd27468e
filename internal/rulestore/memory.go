package rulestore

import (
	"context"
	"sync"

	"github.com/fleetscale/autoscaler-core/pkg/models"
)

// Memory is an in-memory RuleStore for tests and local runs. Safe for
// concurrent Set/GetScaleRules calls so a test can simulate a mid-run
// rule-refresh swap.
type Memory struct {
	mu    sync.RWMutex
	specs map[models.SkuId]models.ScaleSpec
}

func NewMemory(specs map[models.SkuId]models.ScaleSpec) *Memory {
	if specs == nil {
		specs = make(map[models.SkuId]models.ScaleSpec)
	}
	return &Memory{specs: specs}
}

func (m *Memory) GetScaleRules(ctx context.Context, clusterId string) (models.RuleSetSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rules := make(map[models.SkuId]models.ScaleSpec, len(m.specs))
	for k, v := range m.specs {
		rules[k] = v
	}
	return models.RuleSetSnapshot{ClusterId: clusterId, Rules: rules}, nil
}

// Set replaces the stored specs wholesale, simulating an operator pushing a
// new rule set to the store.
func (m *Memory) Set(specs map[models.SkuId]models.ScaleSpec) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.specs = specs
}
