package events

import (
	"sync"

	"github.com/fleetscale/autoscaler-core/internal/logger"
	"github.com/fleetscale/autoscaler-core/pkg/models"
)

// EventBus fans a ControllerEvent out to any number of subscribers. Adapted
// from the teacher's internal/events/events.go: same subscribe-by-type plus
// subscribe-all, same non-blocking publish that drops on a full channel
// rather than stalling the controller's mailbox loop.
type EventBus struct {
	subscribers map[models.EventType][]chan *models.ControllerEvent
	allChans    []chan *models.ControllerEvent // Track channels from SubscribeAll
	mu          sync.RWMutex
	bufferSize  int
	closed      bool
}

func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &EventBus{
		subscribers: make(map[models.EventType][]chan *models.ControllerEvent),
		allChans:    make([]chan *models.ControllerEvent, 0),
		bufferSize:  bufferSize,
	}
}

func (b *EventBus) Subscribe(eventType models.EventType) <-chan *models.ControllerEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan *models.ControllerEvent, b.bufferSize)
	b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	return ch
}

func (b *EventBus) SubscribeAll() <-chan *models.ControllerEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan *models.ControllerEvent, b.bufferSize)

	for _, eventType := range allEventTypes() {
		b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	}

	b.allChans = append(b.allChans, ch)
	return ch
}

func (b *EventBus) Publish(event *models.ControllerEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	subscribers := b.subscribers[event.Type]
	for _, ch := range subscribers {
		select {
		case ch <- event:
		default:
			logger.Warnf("Event channel full, dropping event: %s", event.Type)
		}
	}
}

func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	// Close channels from SubscribeAll (only once each)
	for _, ch := range b.allChans {
		close(ch)
	}

	// Close individual subscriptions (skip if already in allChans)
	closedChans := make(map[chan *models.ControllerEvent]bool)
	for _, ch := range b.allChans {
		closedChans[ch] = true
	}

	for _, subscribers := range b.subscribers {
		for _, ch := range subscribers {
			if !closedChans[ch] {
				close(ch)
				closedChans[ch] = true
			}
		}
	}

	b.subscribers = make(map[models.EventType][]chan *models.ControllerEvent)
	b.allChans = nil
}

func allEventTypes() []models.EventType {
	return []models.EventType{
		models.EventTypeUsageSampled,
		models.EventTypeDecisionEmitted,
		models.EventTypeIdleQueryIssued,
		models.EventTypeScaleDispatched,
		models.EventTypeRuleSetReloaded,
		models.EventTypeAlert,
		models.EventTypeError,
	}
}
