// Package evaluator implements UsageEvaluator: it turns a fresh ClusterUsage
// snapshot and the currently-installed RuleSet into an ordered sequence of
// ScaleDecisions. Grounded on the teacher's internal/analyzer.Analyzer,
// which performs the analogous "raw sample in, judged result out" step
// ahead of the decision engine; here the per-SKU judgement is delegated
// to each AvailabilityRule instead of computed inline.
package evaluator

import (
	"sort"

	"github.com/fleetscale/autoscaler-core/internal/ruleset"
	"github.com/fleetscale/autoscaler-core/pkg/models"
)

// Result is the outcome of one evaluation pass: the decisions emitted, plus
// any usage entries dropped for violating the idleCount <= totalCount
// invariant (InvariantViolation in the error taxonomy). Dropping is this
// package's job; logging/alerting the drop is the controller's.
type Result struct {
	Decisions []models.ScaleDecision
	Dropped   []models.UsageByMachineDefinition
}

// Evaluate invokes the rule for every managed SKU present in usage, in
// ascending SkuId order, and returns the decisions that were emitted.
// Unmanaged SKUs (no rule in the current RuleSet) are skipped. Evaluate has
// no side effects beyond rule state mutation.
func Evaluate(usage models.ClusterUsage, rules *ruleset.RuleSet) Result {
	sorted := make([]models.UsageByMachineDefinition, 0, len(usage.Usages))
	var result Result
	for _, u := range usage.Usages {
		if !u.Valid() {
			result.Dropped = append(result.Dropped, u)
			continue
		}
		sorted = append(sorted, u)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Def.SkuId < sorted[j].Def.SkuId
	})

	for _, u := range sorted {
		r := rules.Get(u.Def.SkuId)
		if r == nil {
			continue
		}
		if decision := r.Apply(u); decision != nil {
			decision.ClusterId = usage.ClusterId
			result.Decisions = append(result.Decisions, *decision)
		}
	}
	return result
}
