package models

// This file carries the request/reply shapes for the three external
// collaborators named in the spec: the Resource Cluster, the Rule Store,
// and the Host Provisioner, plus the introspection surface.

// GetClusterUsageRequest asks the Resource Cluster for a fresh usage
// snapshot for every active SKU in a cluster.
type GetClusterUsageRequest struct {
	ClusterId string `json:"cluster_id"`
}

type GetClusterUsageResponse struct {
	ClusterId string                     `json:"cluster_id"`
	Usages    []UsageByMachineDefinition `json:"usages"`
}

// GetClusterIdleInstancesRequest asks the Resource Cluster which concrete
// executors of a SKU are idle and may be terminated, up to maxInstanceCount.
type GetClusterIdleInstancesRequest struct {
	ClusterId        string            `json:"cluster_id"`
	SkuId            SkuId             `json:"sku_id"`
	MachineDef       MachineDefinition `json:"machine_def"`
	DesireSize       int               `json:"desire_size"`
	MaxInstanceCount int               `json:"max_instance_count"`
}

type GetClusterIdleInstancesResponse struct {
	ClusterId  string   `json:"cluster_id"`
	SkuId      SkuId    `json:"sku_id"`
	DesireSize int      `json:"desire_size"`
	InstanceIds []string `json:"instance_ids"`
}

// RuleSetSnapshot is what the Rule Store returns for a cluster: a flat map
// of SKU to its current availability spec. An empty snapshot is valid — the
// controller just idles with no managed SKUs.
type RuleSetSnapshot struct {
	ClusterId string               `json:"cluster_id"`
	Rules     map[SkuId]ScaleSpec  `json:"rules"`
}

// ScaleRequest is dispatched to the Host Provisioner. Also known on the wire
// as ScaleResourceRequest in spec.md §6 — same struct. IdleInstances is nil
// for ScaleUp and populated for ScaleDown.
type ScaleRequest struct {
	ClusterId     string    `json:"cluster_id"`
	SkuId         SkuId     `json:"sku_id"`
	DesireSize    int       `json:"desire_size"`
	IdleInstances []string  `json:"idle_instances,omitempty"`
}

// GetRuleSetRequest/Response back the introspection surface used by tests
// and operators to see the rules a controller currently holds.
type GetRuleSetRequest struct {
	ClusterId string `json:"cluster_id"`
}

type GetRuleSetResponse struct {
	ClusterId string              `json:"cluster_id"`
	Rules     map[SkuId]ScaleSpec `json:"rules"`
}
