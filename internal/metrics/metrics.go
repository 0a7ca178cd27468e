// Package metrics exposes the controller's operational counters as
// Prometheus metrics. Grounded on the teacher's internal/metrics/prometheus.go
// (a singleton exposing a /metrics handler) but rebuilt on
// github.com/prometheus/client_golang instead of the teacher's hand-rolled
// text exporter, since the domain stack carries that dependency and nothing
// else in this repo exercises it.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	DecisionsEmitted   *prometheus.CounterVec
	IdleQueriesIssued  *prometheus.CounterVec
	IdleQueriesMatched *prometheus.CounterVec
	IdleQueriesDropped *prometheus.CounterVec
	ScaleDispatched    *prometheus.CounterVec
	PendingExpired     *prometheus.CounterVec
	RuleSetReloads     *prometheus.CounterVec
	CircuitBreakerState *prometheus.GaugeVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide metrics registry, building it on first use.
func Get() *Metrics {
	once.Do(func() {
		instance = newMetrics()
	})
	return instance
}

func newMetrics() *Metrics {
	m := &Metrics{
		DecisionsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autoscaler_decisions_emitted_total",
			Help: "Scale decisions emitted by the evaluator, by cluster, sku and decision type.",
		}, []string{"cluster_id", "sku_id", "type"}),

		IdleQueriesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autoscaler_idle_queries_issued_total",
			Help: "Idle instance queries issued to the resource cluster.",
		}, []string{"cluster_id", "sku_id"}),

		IdleQueriesMatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autoscaler_idle_queries_matched_total",
			Help: "Idle instance replies correlated to a pending scale-down.",
		}, []string{"cluster_id", "sku_id"}),

		IdleQueriesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autoscaler_idle_queries_dropped_total",
			Help: "Idle instance replies with no matching pending scale-down (expired or stale).",
		}, []string{"cluster_id", "sku_id"}),

		ScaleDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autoscaler_scale_requests_dispatched_total",
			Help: "Scale requests handed to the host provisioner.",
		}, []string{"cluster_id", "sku_id", "type"}),

		PendingExpired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autoscaler_pending_scale_down_expired_total",
			Help: "Pending scale-down correlations swept for exceeding their TTL.",
		}, []string{"cluster_id"}),

		RuleSetReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "autoscaler_ruleset_reloads_total",
			Help: "Successful rule set reloads from the rule store.",
		}, []string{"cluster_id"}),

		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "autoscaler_circuit_breaker_state",
			Help: "Circuit breaker state by name: 0=closed, 1=open, 2=half-open.",
		}, []string{"name"}),
	}

	prometheus.MustRegister(
		m.DecisionsEmitted,
		m.IdleQueriesIssued,
		m.IdleQueriesMatched,
		m.IdleQueriesDropped,
		m.ScaleDispatched,
		m.PendingExpired,
		m.RuleSetReloads,
		m.CircuitBreakerState,
	)

	return m
}

// Handler serves the default registry in the Prometheus text exposition
// format, for mounting at GET /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) IncDecision(clusterId, skuId, decisionType string) {
	m.DecisionsEmitted.WithLabelValues(clusterId, skuId, decisionType).Inc()
}

func (m *Metrics) IncIdleQueryIssued(clusterId, skuId string) {
	m.IdleQueriesIssued.WithLabelValues(clusterId, skuId).Inc()
}

func (m *Metrics) IncIdleQueryMatched(clusterId, skuId string) {
	m.IdleQueriesMatched.WithLabelValues(clusterId, skuId).Inc()
}

func (m *Metrics) IncIdleQueryDropped(clusterId, skuId string) {
	m.IdleQueriesDropped.WithLabelValues(clusterId, skuId).Inc()
}

func (m *Metrics) IncScaleDispatched(clusterId, skuId, scaleType string) {
	m.ScaleDispatched.WithLabelValues(clusterId, skuId, scaleType).Inc()
}

func (m *Metrics) IncPendingExpired(clusterId string, n int) {
	m.PendingExpired.WithLabelValues(clusterId).Add(float64(n))
}

func (m *Metrics) IncRuleSetReload(clusterId string) {
	m.RuleSetReloads.WithLabelValues(clusterId).Inc()
}

func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
