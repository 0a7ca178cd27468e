package models

// UsageByMachineDefinition is a usage snapshot for one SKU at sample time.
type UsageByMachineDefinition struct {
	Def        MachineDefinition `json:"def"`
	IdleCount  int               `json:"idle_count"`
	TotalCount int               `json:"total_count"`
}

// Valid reports whether the snapshot respects idleCount <= totalCount and
// both counts are non-negative. Callers should drop entries that fail this
// check rather than act on them (spec's InvariantViolation handling).
func (u UsageByMachineDefinition) Valid() bool {
	return u.IdleCount >= 0 && u.TotalCount >= 0 && u.IdleCount <= u.TotalCount
}

// ClusterUsage is the set of per-SKU usage snapshots collected for one
// cluster at sample time. No ordering is implied by the slice itself —
// consumers that need determinism (the evaluator) sort by SkuId themselves.
type ClusterUsage struct {
	ClusterId string                     `json:"cluster_id"`
	Usages    []UsageByMachineDefinition `json:"usages"`
}
