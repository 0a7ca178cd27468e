package models

import "time"

// PendingScaleDown is a scale-down decision awaiting resolution of which
// concrete idle instances to terminate. Each cluster's resolver keys its
// entries by (SkuId, DesireSize) so a late idle-instance reply can be
// correlated back.
type PendingScaleDown struct {
	ClusterId  string    `json:"cluster_id"`
	SkuId      SkuId     `json:"sku_id"`
	DesireSize int       `json:"desire_size"`
	CreatedAt  time.Time `json:"created_at"`
}

// PendingScaleDownKey identifies a PendingScaleDown entry for correlation.
type PendingScaleDownKey struct {
	SkuId      SkuId
	DesireSize int
}

func (p PendingScaleDown) Key() PendingScaleDownKey {
	return PendingScaleDownKey{SkuId: p.SkuId, DesireSize: p.DesireSize}
}
