package models

// SkuId identifies a machine class within a cluster. Opaque to the core;
// uniqueness is only guaranteed within a single cluster.
type SkuId string

// MachineDefinition is an immutable descriptor of a SKU's hardware shape.
type MachineDefinition struct {
	SkuId       SkuId  `json:"sku_id"`
	CPUCores    int    `json:"cpu_cores"`
	MemMB       int    `json:"mem_mb"`
	NetworkMbps int    `json:"network_mbps"`
	DiskMB      int    `json:"disk_mb"`
	NumPorts    int    `json:"num_ports"`
}
