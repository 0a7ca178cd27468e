package rulestore

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetscale/autoscaler-core/pkg/database"
	"github.com/fleetscale/autoscaler-core/pkg/models"
)

// Postgres is a durable RuleStore backed by database/sql + lib/pq, grounded
// on the teacher's pkg/database.DB wrapper. Specs are stored one row per
// (cluster_id, sku_id).
type Postgres struct {
	db *database.DB
}

func NewPostgres(db *database.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) GetScaleRules(ctx context.Context, clusterId string) (models.RuleSetSnapshot, error) {
	query := `
		SELECT sku_id, min_size, max_size, min_idle_to_keep, max_idle_to_keep, cool_down_secs
		FROM scale_specs
		WHERE cluster_id = $1`

	rows, err := p.db.QueryContext(ctx, query, clusterId)
	if err != nil {
		return models.RuleSetSnapshot{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	rules := make(map[models.SkuId]models.ScaleSpec)
	for rows.Next() {
		var skuId string
		var minSize, maxSize, minIdle, maxIdle, coolDownSecs int
		if err := rows.Scan(&skuId, &minSize, &maxSize, &minIdle, &maxIdle, &coolDownSecs); err != nil {
			return models.RuleSetSnapshot{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		rules[models.SkuId(skuId)] = models.ScaleSpec{
			ClusterId:     clusterId,
			SkuId:         models.SkuId(skuId),
			MinSize:       minSize,
			MaxSize:       maxSize,
			MinIdleToKeep: minIdle,
			MaxIdleToKeep: maxIdle,
			CoolDown:      time.Duration(coolDownSecs) * time.Second,
		}
	}
	if err := rows.Err(); err != nil {
		return models.RuleSetSnapshot{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return models.RuleSetSnapshot{ClusterId: clusterId, Rules: rules}, nil
}

// Upsert inserts or updates one SKU's spec row. No HTTP route calls it.
func (p *Postgres) Upsert(ctx context.Context, spec models.ScaleSpec) error {
	query := `
		INSERT INTO scale_specs
			(cluster_id, sku_id, min_size, max_size, min_idle_to_keep, max_idle_to_keep, cool_down_secs)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (cluster_id, sku_id) DO UPDATE SET
			min_size = EXCLUDED.min_size,
			max_size = EXCLUDED.max_size,
			min_idle_to_keep = EXCLUDED.min_idle_to_keep,
			max_idle_to_keep = EXCLUDED.max_idle_to_keep,
			cool_down_secs = EXCLUDED.cool_down_secs`

	_, err := p.db.ExecContext(ctx, query,
		spec.ClusterId, spec.SkuId, spec.MinSize, spec.MaxSize,
		spec.MinIdleToKeep, spec.MaxIdleToKeep, int(spec.CoolDown.Seconds()),
	)
	return err
}
