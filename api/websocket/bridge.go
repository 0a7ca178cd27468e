package websocket

import (
	"context"
	"encoding/json"

	"github.com/fleetscale/autoscaler-core/internal/logger"
	"github.com/fleetscale/autoscaler-core/pkg/models"
)

// EventBridge forwards ControllerEvents onto the websocket hub. Adapted from
// the teacher's api/websocket/bridge.go EventBridge, which plays the same
// role for the orchestrator's event channel.
type EventBridge struct {
	hub        *Hub
	eventsChan <-chan *models.ControllerEvent
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewEventBridge(hub *Hub, eventsChan <-chan *models.ControllerEvent) *EventBridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventBridge{hub: hub, eventsChan: eventsChan, ctx: ctx, cancel: cancel}
}

func (b *EventBridge) Start() {
	go b.run()
	logger.Info("websocket event bridge started")
}

func (b *EventBridge) Stop() {
	b.cancel()
	logger.Info("websocket event bridge stopped")
}

func (b *EventBridge) run() {
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-b.eventsChan:
			if !ok {
				logger.Info("event channel closed, stopping bridge")
				return
			}
			b.forward(event)
		}
	}
}

func (b *EventBridge) forward(event *models.ControllerEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Errorf("failed to marshal websocket event: %v", err)
		return
	}
	b.hub.BroadcastToCluster(event.ClusterId, data)
}
