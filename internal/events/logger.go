package events

import (
	"context"
	"encoding/json"

	"github.com/fleetscale/autoscaler-core/internal/logger"
	"github.com/fleetscale/autoscaler-core/pkg/database"
	"github.com/fleetscale/autoscaler-core/pkg/models"
)

// EventLogger drains a ControllerEvent channel, writes a structured log line
// for every event, and persists the two event types worth a durable record:
// emitted decisions and dispatched scale requests. Adapted from the
// teacher's internal/events/logger.go EventLogger.
type EventLogger struct {
	db        *database.DB
	eventChan <-chan *models.ControllerEvent
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewEventLogger(db *database.DB, eventChan <-chan *models.ControllerEvent) *EventLogger {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventLogger{
		db:        db,
		eventChan: eventChan,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (l *EventLogger) Start() {
	go l.run()
}

func (l *EventLogger) Stop() {
	l.cancel()
}

func (l *EventLogger) run() {
	for {
		select {
		case <-l.ctx.Done():
			return
		case event, ok := <-l.eventChan:
			if !ok {
				return
			}
			l.processEvent(event)
		}
	}
}

func (l *EventLogger) processEvent(event *models.ControllerEvent) {
	entry := logger.WithFields(map[string]interface{}{
		"event_type": event.Type,
		"cluster_id": event.ClusterId,
		"severity":   event.Severity,
	})

	switch event.Severity {
	case models.SeverityCritical:
		entry.Error(event.Message)
	case models.SeverityWarning:
		entry.Warn(event.Message)
	default:
		entry.Info(event.Message)
	}

	if l.db == nil {
		return
	}

	switch event.Type {
	case models.EventTypeDecisionEmitted:
		l.persistDecision(event)
	case models.EventTypeScaleDispatched:
		l.persistScaleRequest(event)
	}
}

func (l *EventLogger) persistDecision(event *models.ControllerEvent) {
	decision, ok := event.Data.(*models.ScaleDecision)
	if !ok {
		return
	}

	query := `
		INSERT INTO scale_decisions
			(cluster_id, sku_id, type, desire_size, min_size, max_size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := l.db.ExecContext(l.ctx, query,
		decision.ClusterId,
		decision.SkuId,
		decision.Type,
		decision.DesireSize,
		decision.MinSize,
		decision.MaxSize,
		event.Timestamp,
	)
	if err != nil {
		logger.Errorf("failed to persist scale decision: %v", err)
	}
}

func (l *EventLogger) persistScaleRequest(event *models.ControllerEvent) {
	req, ok := event.Data.(*models.ScaleRequest)
	if !ok {
		return
	}

	idleJSON, err := json.Marshal(req.IdleInstances)
	if err != nil {
		logger.Errorf("failed to marshal idle instances: %v", err)
		return
	}

	query := `
		INSERT INTO scale_requests
			(cluster_id, sku_id, desire_size, idle_instances, dispatched_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = l.db.ExecContext(l.ctx, query,
		req.ClusterId,
		req.SkuId,
		req.DesireSize,
		idleJSON,
		event.Timestamp,
	)
	if err != nil {
		logger.Errorf("failed to persist scale request: %v", err)
	}
}

func (l *EventLogger) LogToJSON(event *models.ControllerEvent) string {
	data, _ := json.Marshal(event)
	return string(data)
}
