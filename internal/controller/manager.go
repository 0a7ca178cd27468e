package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/fleetscale/autoscaler-core/internal/events"
	"github.com/fleetscale/autoscaler-core/internal/logger"
	"github.com/fleetscale/autoscaler-core/internal/provisioner"
	"github.com/fleetscale/autoscaler-core/internal/resourcecluster"
	"github.com/fleetscale/autoscaler-core/internal/rulestore"
	"github.com/fleetscale/autoscaler-core/pkg/database"
	"github.com/fleetscale/autoscaler-core/pkg/models"
)

// Manager owns one Controller per cluster and the shared event bus they all
// publish to. Grounded on the teacher's internal/orchestrator.Orchestrator,
// which plays the identical role for its per-cluster Pipelines.
type Manager struct {
	eventBus    *events.EventBus
	eventLogger *events.EventLogger

	mu          sync.RWMutex
	controllers map[string]*Controller
}

// ClusterSpec is everything Manager needs to start one cluster's Controller.
type ClusterSpec struct {
	ClusterId       string
	SampleInterval  time.Duration
	RefreshInterval time.Duration
	Clock           clockwork.Clock
	Cluster         resourcecluster.ResourceCluster
	Store           rulestore.RuleStore
	Provisioner     provisioner.HostProvisioner
}

func New(eventBufferSize int) *Manager {
	bus := events.NewEventBus(eventBufferSize)
	return &Manager{
		eventBus:    bus,
		eventLogger: events.NewEventLogger(nil, bus.SubscribeAll()),
		controllers: make(map[string]*Controller),
	}
}

// NewWithAuditLog wires a database-backed EventLogger subscribed to the same
// bus every Controller publishes to, so decisions and dispatched scale
// requests are persisted, not just logged.
func NewWithAuditLog(eventBufferSize int, db *database.DB) *Manager {
	bus := events.NewEventBus(eventBufferSize)
	return &Manager{
		eventBus:    bus,
		eventLogger: events.NewEventLogger(db, bus.SubscribeAll()),
		controllers: make(map[string]*Controller),
	}
}

func (m *Manager) Start() {
	m.eventLogger.Start()
}

func (m *Manager) Stop() {
	m.mu.Lock()
	controllers := make([]*Controller, 0, len(m.controllers))
	for _, c := range m.controllers {
		controllers = append(controllers, c)
	}
	m.controllers = make(map[string]*Controller)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, c := range controllers {
		wg.Add(1)
		go func(ctl *Controller) {
			defer wg.Done()
			ctl.Stop()
		}(c)
	}
	wg.Wait()

	m.eventLogger.Stop()
	m.eventBus.Close()
}

// StartCluster builds and starts a Controller for spec.ClusterId. Returns an
// error if a controller for that cluster is already running.
func (m *Manager) StartCluster(spec ClusterSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.controllers[spec.ClusterId]; exists {
		return fmt.Errorf("controller already running for cluster %s", spec.ClusterId)
	}

	ctl, err := New(Config{
		ClusterId:       spec.ClusterId,
		SampleInterval:  spec.SampleInterval,
		RefreshInterval: spec.RefreshInterval,
		Clock:           spec.Clock,
		Cluster:         spec.Cluster,
		Store:           spec.Store,
		Provisioner:     spec.Provisioner,
		EventBus:        m.eventBus,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize controller for cluster %s: %w", spec.ClusterId, err)
	}

	ctl.Start()
	m.controllers[spec.ClusterId] = ctl
	logger.WithCluster(spec.ClusterId).Info("cluster controller started")
	return nil
}

func (m *Manager) StopCluster(clusterId string) error {
	m.mu.Lock()
	ctl, exists := m.controllers[clusterId]
	if exists {
		delete(m.controllers, clusterId)
	}
	m.mu.Unlock()

	if !exists {
		return fmt.Errorf("no controller found for cluster %s", clusterId)
	}

	ctl.Stop()
	logger.WithCluster(clusterId).Info("cluster controller stopped")
	return nil
}

func (m *Manager) Controller(clusterId string) (*Controller, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.controllers[clusterId]
	return c, ok
}

// GetRuleSet routes an introspection request to the named cluster's
// controller. Returns ok=false if no controller runs for that cluster or the
// request could not be served before ctx expired.
func (m *Manager) GetRuleSet(ctx context.Context, clusterId string) (models.GetRuleSetResponse, bool) {
	ctl, exists := m.Controller(clusterId)
	if !exists {
		return models.GetRuleSetResponse{}, false
	}
	return ctl.GetRuleSet(ctx)
}

func (m *Manager) ListClusters() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	clusters := make([]string, 0, len(m.controllers))
	for id := range m.controllers {
		clusters = append(clusters, id)
	}
	return clusters
}

func (m *Manager) SubscribeEvents(eventType models.EventType) <-chan *models.ControllerEvent {
	return m.eventBus.Subscribe(eventType)
}

func (m *Manager) SubscribeAllEvents() <-chan *models.ControllerEvent {
	return m.eventBus.SubscribeAll()
}
