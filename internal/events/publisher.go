package events

import (
	"github.com/fleetscale/autoscaler-core/pkg/models"
)

// Publisher is the controller-facing handle on an EventBus: one typed method
// per observable moment in the tick cycle, so call sites never construct a
// ControllerEvent by hand. Adapted from the teacher's internal/events/publisher.go.
type Publisher struct {
	bus *EventBus
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) publish(event *models.ControllerEvent) {
	p.bus.Publish(event)
}

func (p *Publisher) UsageSampled(clusterID string, usage *models.ClusterUsage) {
	event := models.NewControllerEvent(models.EventTypeUsageSampled, clusterID, "cluster usage sampled").
		WithData(usage)
	p.publish(event)
}

func (p *Publisher) DecisionEmitted(clusterID string, decision *models.ScaleDecision) {
	msg := "scale decision: " + string(decision.Type)
	event := models.NewControllerEvent(models.EventTypeDecisionEmitted, clusterID, msg).
		WithData(decision)
	p.publish(event)
}

func (p *Publisher) IdleQueryIssued(clusterID string, req *models.GetClusterIdleInstancesRequest) {
	event := models.NewControllerEvent(models.EventTypeIdleQueryIssued, clusterID, "idle instance query issued").
		WithData(req)
	p.publish(event)
}

func (p *Publisher) ScaleDispatched(clusterID string, req *models.ScaleRequest) {
	msg := "scale request dispatched for sku " + string(req.SkuId)
	event := models.NewControllerEvent(models.EventTypeScaleDispatched, clusterID, msg).
		WithData(req)
	p.publish(event)
}

func (p *Publisher) RuleSetReloaded(clusterID string, ruleCount int) {
	event := models.NewControllerEvent(models.EventTypeRuleSetReloaded, clusterID, "rule set reloaded").
		WithData(map[string]interface{}{"rule_count": ruleCount})
	p.publish(event)
}

func (p *Publisher) Alert(clusterID string, severity models.EventSeverity, message string, data interface{}) {
	event := models.NewControllerEvent(models.EventTypeAlert, clusterID, message).
		WithSeverity(severity).
		WithData(data)
	p.publish(event)
}

func (p *Publisher) Error(clusterID string, message string, err error) {
	event := models.NewControllerEvent(models.EventTypeError, clusterID, message).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}
