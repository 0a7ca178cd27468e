package models

import "time"

// ScaleSpec is the per-SKU availability policy loaded from the rule store.
// Invariants: 0 <= MinSize <= MaxSize, 0 <= MinIdleToKeep <= MaxIdleToKeep,
// CoolDown >= 0. These are enforced by Validate, not by the zero value.
type ScaleSpec struct {
	ClusterId     string        `json:"cluster_id"`
	SkuId         SkuId         `json:"sku_id"`
	MinSize       int           `json:"min_size"`
	MaxSize       int           `json:"max_size"`
	MinIdleToKeep int           `json:"min_idle_to_keep"`
	MaxIdleToKeep int           `json:"max_idle_to_keep"`
	CoolDown      time.Duration `json:"cool_down"`
}

func (s ScaleSpec) Validate() error {
	if s.MinSize < 0 || s.MaxSize < s.MinSize {
		return ErrInvalidScaleSpec
	}
	if s.MinIdleToKeep < 0 || s.MaxIdleToKeep < s.MinIdleToKeep {
		return ErrInvalidScaleSpec
	}
	if s.CoolDown < 0 {
		return ErrInvalidScaleSpec
	}
	return nil
}
