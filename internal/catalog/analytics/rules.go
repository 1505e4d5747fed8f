package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/snowgate-io/snowgate-ce/internal/catalog"
)

// ruleInput is the population-level view a rule evaluator sees. Rules are
// pure functions over this value plus the Config; they never perform I/O.
type ruleInput struct {
	items      []catalog.Item
	categories map[string]catalog.Category
	snapshots  map[string]*catalog.UsageSnapshot
}

// evaluator produces zero or one recommendation for its family.
type evaluator func(cfg Config, in ruleInput) *catalog.Recommendation

// ruleTable binds each family to its evaluator. Closed set: adding a rule
// means adding a constant in catalog and an entry here, not touching a
// dynamic registry.
var ruleTable = map[catalog.RuleFamily]evaluator{
	catalog.RuleInactiveItems:      evalInactiveItems,
	catalog.RuleLowUsage:           evalLowUsage,
	catalog.RuleHighAbandonment:    evalHighAbandonment,
	catalog.RuleSlowFulfillment:    evalSlowFulfillment,
	catalog.RuleDescriptionQuality: evalDescriptionQuality,
}

// EvaluateRules runs the selected rule families over the item population
// and its usage snapshots. An empty family set runs everything. Families
// must have been validated beforehand; unknown names are skipped with a
// warning here as a second line of defense.
func EvaluateRules(cfg Config, families []catalog.RuleFamily, in ruleInput) ([]catalog.Recommendation, []catalog.Warning) {
	selected := families
	if len(selected) == 0 {
		selected = catalog.UsageFamilies
	}

	var recs []catalog.Recommendation
	var warnings []catalog.Warning
	for _, family := range selected {
		eval, ok := ruleTable[family]
		if !ok {
			warnings = append(warnings, catalog.Warning{
				Code:    "unknown_rule_family",
				Message: fmt.Sprintf("rule family %q is not known; skipped", family),
			})
			continue
		}
		if rec := eval(cfg, in); rec != nil {
			recs = append(recs, *rec)
		}
	}
	return recs, warnings
}

func evalInactiveItems(cfg Config, in ruleInput) *catalog.Recommendation {
	var affected []string
	for _, item := range in.items {
		if item.Active {
			continue
		}
		if snap := in.snapshots[item.ID]; snap != nil && snap.OrderCount > 0 {
			continue
		}
		affected = append(affected, item.ID)
	}
	if len(affected) == 0 {
		return nil
	}
	sort.Strings(affected)
	return &catalog.Recommendation{
		Family:      catalog.RuleInactiveItems,
		Title:       "Consider retiring inactive catalog items",
		Description: "These items are marked as inactive but still exist in the catalog",
		Action:      "Review these items and consider removing them from the catalog",
		Impact:      catalog.ScoreLow,
		Effort:      catalog.ScoreLow,
		ItemIDs:     affected,
	}
}

// evalLowUsage ranks active items that saw any cart activity by order
// count and flags the bottom percentile. Rank-based percentile: the share
// of the population with a strictly smaller order count, so ties land in
// the same bucket.
func evalLowUsage(cfg Config, in ruleInput) *catalog.Recommendation {
	type ranked struct {
		id     string
		orders int
	}
	var population []ranked
	for _, item := range in.items {
		if !item.Active {
			continue
		}
		snap := in.snapshots[item.ID]
		if snap == nil || !snap.Sampled() {
			continue
		}
		population = append(population, ranked{id: item.ID, orders: snap.OrderCount})
	}
	if len(population) == 0 {
		return nil
	}

	var affected []string
	for _, candidate := range population {
		below := 0
		for _, other := range population {
			if other.orders < candidate.orders {
				below++
			}
		}
		if float64(below)/float64(len(population)) < cfg.LowUsagePercentile {
			affected = append(affected, candidate.id)
		}
	}
	if len(affected) == 0 {
		return nil
	}
	sort.Strings(affected)
	return &catalog.Recommendation{
		Family:      catalog.RuleLowUsage,
		Title:       "Items with low usage",
		Description: "These items have been ordered rarely or not at all in the analysis window",
		Action:      "Consider promoting these items, improving their descriptions, or retiring them",
		Impact:      catalog.ScoreMedium,
		Effort:      catalog.ScoreMedium,
		ItemIDs:     affected,
	}
}

func evalHighAbandonment(cfg Config, in ruleInput) *catalog.Recommendation {
	var affected []string
	for _, item := range in.items {
		snap := in.snapshots[item.ID]
		if snap == nil {
			continue
		}
		// The sample is all cart events; below the minimum the rate is
		// noise regardless of how extreme it looks.
		if snap.OrderCount+snap.AbandonCount < cfg.MinimumSampleSize {
			continue
		}
		if snap.AbandonmentRate >= cfg.AbandonmentThreshold {
			affected = append(affected, item.ID)
		}
	}
	if len(affected) == 0 {
		return nil
	}
	sort.Strings(affected)
	return &catalog.Recommendation{
		Family:      catalog.RuleHighAbandonment,
		Title:       "Items with high abandonment rates",
		Description: "These items are frequently added to carts but not ordered",
		Action:      "Review the item variables and simplify the ordering process",
		Impact:      catalog.ScoreHigh,
		Effort:      catalog.ScoreMedium,
		ItemIDs:     affected,
	}
}

// evalSlowFulfillment compares an item's mean fulfillment against the
// median of its own category. A category needs at least two measured
// items to have a baseline; one item cannot be slow relative to itself.
func evalSlowFulfillment(cfg Config, in ruleInput) *catalog.Recommendation {
	perCategory := make(map[string][]time.Duration)
	for _, item := range in.items {
		if snap := in.snapshots[item.ID]; snap != nil && snap.MeanFulfillment != nil {
			perCategory[item.CategoryID] = append(perCategory[item.CategoryID], *snap.MeanFulfillment)
		}
	}

	var affected []string
	for _, item := range in.items {
		snap := in.snapshots[item.ID]
		if snap == nil || snap.MeanFulfillment == nil {
			continue
		}
		peers := perCategory[item.CategoryID]
		if len(peers) < 2 {
			continue
		}
		median := medianDuration(peers)
		if median <= 0 {
			continue
		}
		if float64(*snap.MeanFulfillment) > cfg.SlowFulfillmentRatio*float64(median) {
			affected = append(affected, item.ID)
		}
	}
	if len(affected) == 0 {
		return nil
	}
	sort.Strings(affected)
	return &catalog.Recommendation{
		Family:      catalog.RuleSlowFulfillment,
		Title:       "Items with slow fulfillment times",
		Description: "These items take much longer than their category peers to fulfill",
		Action:      "Review the fulfillment workflow and identify bottlenecks",
		Impact:      catalog.ScoreHigh,
		Effort:      catalog.ScoreHigh,
		ItemIDs:     affected,
	}
}

func evalDescriptionQuality(cfg Config, in ruleInput) *catalog.Recommendation {
	var affected []string
	for _, item := range in.items {
		if !item.Active {
			continue
		}
		if item.Name == "" || len(item.ShortDescription) < cfg.MinDescriptionLength {
			affected = append(affected, item.ID)
		}
	}
	if len(affected) == 0 {
		return nil
	}
	sort.Strings(affected)
	return &catalog.Recommendation{
		Family:      catalog.RuleDescriptionQuality,
		Title:       "Items with poor description quality",
		Description: "These items have short or missing descriptions that may confuse users",
		Action:      "Improve the descriptions to be more detailed and specific",
		Impact:      catalog.ScoreLow,
		Effort:      catalog.ScoreLow,
		ItemIDs:     affected,
	}
}
