package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/fleetscale/autoscaler-core/pkg/models"
)

// DecisionRecord is a row persisted by internal/events.EventLogger whenever a
// ScaleDecision is emitted.
type DecisionRecord struct {
	ClusterId  string          `json:"cluster_id"`
	SkuId      models.SkuId    `json:"sku_id"`
	Type       models.ScaleType `json:"type"`
	DesireSize int             `json:"desire_size"`
	MinSize    int             `json:"min_size"`
	MaxSize    int             `json:"max_size"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ScaleRequestRecord is a row persisted whenever a ScaleRequest is dispatched.
type ScaleRequestRecord struct {
	ClusterId     string       `json:"cluster_id"`
	SkuId         models.SkuId `json:"sku_id"`
	DesireSize    int          `json:"desire_size"`
	IdleInstances []string     `json:"idle_instances"`
	DispatchedAt  time.Time    `json:"dispatched_at"`
}

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) GetDecisions(ctx context.Context, clusterId string, limit int) ([]DecisionRecord, error) {
	query := `
		SELECT cluster_id, sku_id, type, desire_size, min_size, max_size, created_at
		FROM scale_decisions
		WHERE cluster_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, clusterId, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []DecisionRecord
	for rows.Next() {
		var d DecisionRecord
		if err := rows.Scan(&d.ClusterId, &d.SkuId, &d.Type, &d.DesireSize, &d.MinSize, &d.MaxSize, &d.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, d)
	}
	return records, rows.Err()
}

func (r *EventRepository) GetScaleRequests(ctx context.Context, clusterId string, limit int) ([]ScaleRequestRecord, error) {
	query := `
		SELECT cluster_id, sku_id, desire_size, idle_instances, dispatched_at
		FROM scale_requests
		WHERE cluster_id = $1
		ORDER BY dispatched_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, clusterId, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ScaleRequestRecord
	for rows.Next() {
		var s ScaleRequestRecord
		var idleJSON []byte
		if err := rows.Scan(&s.ClusterId, &s.SkuId, &s.DesireSize, &idleJSON, &s.DispatchedAt); err != nil {
			return nil, err
		}
		if len(idleJSON) > 0 {
			if err := json.Unmarshal(idleJSON, &s.IdleInstances); err != nil {
				return nil, err
			}
		}
		records = append(records, s)
	}
	return records, rows.Err()
}
