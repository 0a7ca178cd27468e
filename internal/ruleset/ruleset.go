// Package ruleset implements RuleSet: an immutable, hot-swappable mapping of
// SkuId to AvailabilityRule. Grounded on the teacher's use of atomic state
// swaps for resilience bookkeeping (internal/resilience.CircuitBreaker's
// mutex-guarded state field generalizes here to a lock-free pointer swap,
// since RuleSet replacement must never block a SampleTick already reading
// the prior set).
package ruleset

import (
	"sort"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/fleetscale/autoscaler-core/internal/rule"
	"github.com/fleetscale/autoscaler-core/pkg/models"
)

// RuleSet is an immutable snapshot of rules for one cluster. Never mutated
// in place; a reload builds a new RuleSet and installs it via
// Store.ReplaceFrom.
type RuleSet struct {
	clusterId string
	rules     map[models.SkuId]*rule.AvailabilityRule
}

// New builds a RuleSet from a snapshot, constructing a fresh rule (with no
// recorded last action time) for every entry.
func New(clusterId string, specs map[models.SkuId]models.ScaleSpec, clock clockwork.Clock) *RuleSet {
	rules := make(map[models.SkuId]*rule.AvailabilityRule, len(specs))
	for skuId, spec := range specs {
		rules[skuId] = rule.New(spec, clock)
	}
	return &RuleSet{clusterId: clusterId, rules: rules}
}

func (s *RuleSet) Get(skuId models.SkuId) *rule.AvailabilityRule {
	if s == nil {
		return nil
	}
	return s.rules[skuId]
}

// Keys returns the managed SKUs in ascending order, matching the
// deterministic iteration order UsageEvaluator relies on.
func (s *RuleSet) Keys() []models.SkuId {
	if s == nil {
		return nil
	}
	keys := make([]models.SkuId, 0, len(s.rules))
	for skuId := range s.rules {
		keys = append(keys, skuId)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (s *RuleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Store holds the currently-installed RuleSet behind an atomic pointer, so a
// reload never blocks or races with a concurrent read from the controller's
// actor loop.
type Store struct {
	current atomic.Pointer[RuleSet]
}

func NewStore(initial *RuleSet) *Store {
	s := &Store{}
	s.current.Store(initial)
	return s
}

func (s *Store) Load() *RuleSet {
	return s.current.Load()
}

// ReplaceFrom builds a fresh RuleSet from snapshot and installs it
// atomically. Rules for SKUs absent from snapshot are discarded along with
// their cooldown state, by design.
func (s *Store) ReplaceFrom(clusterId string, snapshot map[models.SkuId]models.ScaleSpec, clock clockwork.Clock) *RuleSet {
	next := New(clusterId, snapshot, clock)
	s.current.Store(next)
	return next
}
