// Package controller implements ScalerController: the single-threaded actor
// that owns a cluster's RuleSet and PendingScaleDown table, drives
// Evaluator -> IdleResolver -> Dispatcher on a sample timer, and reloads
// its RuleSet on an independent refresh timer. Grounded on the teacher's
// internal/orchestrator.Pipeline, generalized from one collect/analyze/
// decide/execute ticker to two independent tickers plus a FIFO mailbox of
// reply messages (usage, idle-instance, refresh), matching spec.md §5's
// "single-threaded actor, timers delivered as messages" model.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/fleetscale/autoscaler-core/internal/dispatcher"
	"github.com/fleetscale/autoscaler-core/internal/events"
	"github.com/fleetscale/autoscaler-core/internal/evaluator"
	"github.com/fleetscale/autoscaler-core/internal/idleresolver"
	"github.com/fleetscale/autoscaler-core/internal/logger"
	"github.com/fleetscale/autoscaler-core/internal/metrics"
	"github.com/fleetscale/autoscaler-core/internal/provisioner"
	"github.com/fleetscale/autoscaler-core/internal/resourcecluster"
	"github.com/fleetscale/autoscaler-core/internal/ruleset"
	"github.com/fleetscale/autoscaler-core/internal/rulestore"
	"github.com/fleetscale/autoscaler-core/pkg/models"
)

// Config configures a single cluster's controller. SampleInterval and
// RefreshInterval are independent, per spec.md §6.
type Config struct {
	ClusterId       string
	SampleInterval  time.Duration
	RefreshInterval time.Duration
	Clock           clockwork.Clock

	Cluster     resourcecluster.ResourceCluster
	Store       rulestore.RuleStore
	Provisioner provisioner.HostProvisioner
	EventBus    *events.EventBus
}

type usageResult struct {
	resp models.GetClusterUsageResponse
	err  error
}

type idleResult struct {
	resp models.GetClusterIdleInstancesResponse
	err  error
}

type refreshResult struct {
	snapshot models.RuleSetSnapshot
	err      error
}

type inspectRequest struct {
	replyCh chan models.GetRuleSetResponse
}

// Controller runs one cluster's actor loop. Every field below this comment
// that is not guarded by a channel handoff is owned exclusively by run's
// goroutine; nothing else touches rules, resolver, or lastUsage.
type Controller struct {
	cfg        Config
	dispatcher *dispatcher.Dispatcher
	publisher  *events.Publisher
	rules      *ruleset.Store
	resolver   *idleresolver.Resolver

	usageReplyCh   chan usageResult
	idleReplyCh    chan idleResult
	refreshReplyCh chan refreshResult
	inspectCh      chan inspectRequest
	stopCh         chan struct{}
	stoppedCh      chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once

	// owned exclusively by run()
	awaitingUsage bool
	lastUsage     map[models.SkuId]models.UsageByMachineDefinition
}

// New constructs a Controller and blocks on the first rule-store fetch, per
// spec.md §4.6's Initialized -> Running transition. It does not start the
// actor loop; call Start for that.
func New(cfg Config) (*Controller, error) {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	publisher := events.NewPublisher(cfg.EventBus)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SampleInterval)
	defer cancel()

	snapshot, err := cfg.Store.GetScaleRules(ctx, cfg.ClusterId)
	if err != nil {
		logger.WithCluster(cfg.ClusterId).Warnf("initial rule fetch failed, starting with empty rule set: %v", err)
		snapshot = models.RuleSetSnapshot{ClusterId: cfg.ClusterId, Rules: nil}
	}

	c := &Controller{
		cfg:            cfg,
		dispatcher:     dispatcher.New(cfg.Provisioner, publisher),
		publisher:      publisher,
		rules:          ruleset.NewStore(ruleset.New(cfg.ClusterId, snapshot.Rules, cfg.Clock)),
		resolver:       idleresolver.New(cfg.ClusterId, cfg.Clock, cfg.SampleInterval*2),
		usageReplyCh:   make(chan usageResult, 1),
		idleReplyCh:    make(chan idleResult, 8),
		refreshReplyCh: make(chan refreshResult, 1),
		inspectCh:      make(chan inspectRequest),
		stopCh:         make(chan struct{}),
		stoppedCh:      make(chan struct{}),
		lastUsage:      make(map[models.SkuId]models.UsageByMachineDefinition),
	}
	return c, nil
}

// Start launches the actor loop. Safe to call once; subsequent calls are a
// no-op.
func (c *Controller) Start() {
	c.startOnce.Do(func() {
		go c.run()
	})
}

// Stop cancels both timers, discards pending state, and drops subsequent
// replies. Blocks until the actor loop has exited.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
	<-c.stoppedCh
}

// GetRuleSet is the introspection message: a synchronous request/reply
// routed through the mailbox so it observes a consistent snapshot between
// ticks.
func (c *Controller) GetRuleSet(ctx context.Context) (models.GetRuleSetResponse, bool) {
	replyCh := make(chan models.GetRuleSetResponse, 1)
	select {
	case c.inspectCh <- inspectRequest{replyCh: replyCh}:
	case <-ctx.Done():
		return models.GetRuleSetResponse{}, false
	case <-c.stoppedCh:
		return models.GetRuleSetResponse{}, false
	}

	select {
	case resp := <-replyCh:
		return resp, true
	case <-ctx.Done():
		return models.GetRuleSetResponse{}, false
	}
}

func (c *Controller) run() {
	defer close(c.stoppedCh)

	sampleTicker := c.cfg.Clock.NewTicker(c.cfg.SampleInterval)
	defer sampleTicker.Stop()
	refreshTicker := c.cfg.Clock.NewTicker(c.cfg.RefreshInterval)
	defer refreshTicker.Stop()

	logger.WithCluster(c.cfg.ClusterId).Info("controller started")

	for {
		select {
		case <-c.stopCh:
			c.resolver.Clear()
			logger.WithCluster(c.cfg.ClusterId).Info("controller stopped")
			return

		case <-sampleTicker.Chan():
			if expired := c.resolver.Sweep(); expired > 0 {
				metrics.Get().IncPendingExpired(c.cfg.ClusterId, expired)
			}
			if c.awaitingUsage {
				// Previous UsageResponse hasn't been handled yet; don't
				// stack unbounded work (spec.md §5 ordering guarantee).
				continue
			}
			c.awaitingUsage = true
			go c.fetchUsage()

		case <-refreshTicker.Chan():
			go c.fetchRules()

		case result := <-c.usageReplyCh:
			c.awaitingUsage = false
			c.handleUsage(result)

		case result := <-c.idleReplyCh:
			c.handleIdle(result)

		case result := <-c.refreshReplyCh:
			c.handleRefresh(result)

		case req := <-c.inspectCh:
			req.replyCh <- c.buildRuleSetResponse()
		}
	}
}

func (c *Controller) fetchUsage() {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.SampleInterval)
	defer cancel()

	resp, err := c.cfg.Cluster.GetUsage(ctx, models.GetClusterUsageRequest{ClusterId: c.cfg.ClusterId})
	select {
	case c.usageReplyCh <- usageResult{resp: resp, err: err}:
	case <-c.stopCh:
	}
}

func (c *Controller) fetchIdleInstances(req models.GetClusterIdleInstancesRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.SampleInterval)
	defer cancel()

	resp, err := c.cfg.Cluster.GetIdleInstances(ctx, req)
	select {
	case c.idleReplyCh <- idleResult{resp: resp, err: err}:
	case <-c.stopCh:
	}
}

func (c *Controller) fetchRules() {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.RefreshInterval)
	defer cancel()

	snapshot, err := c.cfg.Store.GetScaleRules(ctx, c.cfg.ClusterId)
	select {
	case c.refreshReplyCh <- refreshResult{snapshot: snapshot, err: err}:
	case <-c.stopCh:
	}
}

func (c *Controller) handleUsage(result usageResult) {
	clusterId := c.cfg.ClusterId

	if result.err != nil {
		logger.WithCluster(clusterId).Warnf("usage query failed: %v", result.err)
		c.publisher.Error(clusterId, "usage query failed", result.err)
		return
	}

	usage := models.ClusterUsage{ClusterId: clusterId, Usages: result.resp.Usages}
	c.publisher.UsageSampled(clusterId, &usage)

	c.lastUsage = make(map[models.SkuId]models.UsageByMachineDefinition, len(usage.Usages))
	for _, u := range usage.Usages {
		c.lastUsage[u.Def.SkuId] = u
	}

	current := c.rules.Load()
	evalResult := evaluator.Evaluate(usage, current)

	for _, dropped := range evalResult.Dropped {
		logger.WithCluster(clusterId).Warnf("dropping invalid usage entry for sku %s: idle=%d total=%d", dropped.Def.SkuId, dropped.IdleCount, dropped.TotalCount)
		c.publisher.Alert(clusterId, models.SeverityWarning, "invariant violation in usage entry", dropped)
	}

	ctx := context.Background()
	for _, decision := range evalResult.Decisions {
		c.publisher.DecisionEmitted(clusterId, &decision)
		metrics.Get().IncDecision(clusterId, string(decision.SkuId), string(decision.Type))
		c.routeDecision(ctx, decision)
	}
}

func (c *Controller) routeDecision(ctx context.Context, decision models.ScaleDecision) {
	switch decision.Type {
	case models.ScaleUp:
		c.dispatcher.ScaleUp(ctx, decision)

	case models.ScaleDown:
		u, ok := c.lastUsage[decision.SkuId]
		if !ok {
			logger.WithCluster(c.cfg.ClusterId).Warnf("no usage sample for sku %s, skipping idle query", decision.SkuId)
			return
		}

		req, err := c.resolver.BuildQuery(decision, u.Def, u.TotalCount)
		if err != nil {
			logger.WithCluster(c.cfg.ClusterId).Debugf("skipping idle query for sku %s: %v", decision.SkuId, err)
			return
		}

		c.publisher.IdleQueryIssued(c.cfg.ClusterId, &req)
		metrics.Get().IncIdleQueryIssued(c.cfg.ClusterId, string(decision.SkuId))
		go c.fetchIdleInstances(req)
	}
}

func (c *Controller) handleIdle(result idleResult) {
	clusterId := c.cfg.ClusterId

	if result.err != nil {
		logger.WithCluster(clusterId).Warnf("idle instance query failed: %v", result.err)
		c.publisher.Error(clusterId, "idle instance query failed", result.err)
		return
	}

	req, ok := c.resolver.Resolve(result.resp)
	if !ok {
		logger.WithCluster(clusterId).Debugf("dropping unmatched idle instance reply for sku %s desireSize=%d", result.resp.SkuId, result.resp.DesireSize)
		metrics.Get().IncIdleQueryDropped(clusterId, string(result.resp.SkuId))
		return
	}
	metrics.Get().IncIdleQueryMatched(clusterId, string(result.resp.SkuId))

	c.dispatcher.ScaleDown(context.Background(), req)
}

func (c *Controller) handleRefresh(result refreshResult) {
	clusterId := c.cfg.ClusterId

	if result.err != nil {
		logger.WithCluster(clusterId).Warnf("rule store refresh failed, keeping previous rule set: %v", result.err)
		c.publisher.Error(clusterId, "rule store refresh failed", result.err)
		return
	}

	next := c.rules.ReplaceFrom(clusterId, result.snapshot.Rules, c.cfg.Clock)
	c.publisher.RuleSetReloaded(clusterId, next.Len())
	metrics.Get().IncRuleSetReload(clusterId)
}

func (c *Controller) buildRuleSetResponse() models.GetRuleSetResponse {
	current := c.rules.Load()
	resp := models.GetRuleSetResponse{ClusterId: c.cfg.ClusterId, Rules: make(map[models.SkuId]models.ScaleSpec)}
	for _, skuId := range current.Keys() {
		resp.Rules[skuId] = current.Get(skuId).Spec()
	}
	return resp
}
