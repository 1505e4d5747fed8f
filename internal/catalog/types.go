// Package catalog defines the service catalog domain model shared by the
// analytics engine, the ServiceNow gateway, and the MCP tool surface.
package catalog

import "time"

// Item is a service catalog item (sc_cat_item). Items are read-only from
// the engine's perspective; the record store owns them.
type Item struct {
	ID               string `json:"sys_id"`
	Name             string `json:"name"`
	ShortDescription string `json:"short_description"`
	Description      string `json:"description,omitempty"`
	CategoryID       string `json:"category"`
	Active           bool   `json:"active"`
	Order            int    `json:"order"`
	Price            string `json:"price,omitempty"`
}

// Category is a service catalog category (sc_category). ParentID is empty
// for root categories.
type Category struct {
	ID          string `json:"sys_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ParentID    string `json:"parent,omitempty"`
	Active      bool   `json:"active"`
	Order       int    `json:"order"`
}

// Outcome of an order event.
type Outcome string

const (
	OutcomeOrdered   Outcome = "ordered"
	OutcomeAbandoned Outcome = "abandoned"
)

// Approval outcome carried by an order event. ApprovalNA marks events
// that never entered an approval flow.
type Approval string

const (
	ApprovalApproved Approval = "approved"
	ApprovalRejected Approval = "rejected"
	ApprovalNA       Approval = "n/a"
)

// OrderEvent is one append-only usage record for a catalog item within a
// bounded time window. Fulfillment is nil unless the order completed.
type OrderEvent struct {
	ItemID      string         `json:"item_id"`
	Timestamp   time.Time      `json:"timestamp"`
	Outcome     Outcome        `json:"outcome"`
	Fulfillment *time.Duration `json:"fulfillment,omitempty"`
	Approval    Approval       `json:"approval,omitempty"`
}

// UsageSnapshot holds derived per-item metrics for one analysis window.
// Optional metrics are pointers so that "no qualifying events" renders as
// an absent field rather than a zero.
type UsageSnapshot struct {
	ItemID            string         `json:"item_id"`
	Window            Window         `json:"window"`
	OrderCount        int            `json:"order_count"`
	AbandonCount      int            `json:"abandonment_count"`
	AbandonmentRate   float64        `json:"abandonment_rate"`
	MeanFulfillment   *time.Duration `json:"mean_fulfillment,omitempty"`
	MedianFulfillment *time.Duration `json:"median_fulfillment,omitempty"`
	ApprovalRate      *float64       `json:"approval_rate,omitempty"`
}

// Sampled reports whether the snapshot saw any cart activity at all.
func (s *UsageSnapshot) Sampled() bool {
	return s.OrderCount+s.AbandonCount > 0
}

// Score is the qualitative impact/effort ranking on a recommendation.
type Score string

const (
	ScoreLow    Score = "low"
	ScoreMedium Score = "medium"
	ScoreHigh   Score = "high"
)

// rank orders scores for sorting; higher is more.
func (s Score) rank() int {
	switch s {
	case ScoreHigh:
		return 3
	case ScoreMedium:
		return 2
	case ScoreLow:
		return 1
	}
	return 0
}

// RuleFamily tags a recommendation with the check that produced it.
// Usage-driven families come from the rules engine; the structural tags
// come from the structure analyzer.
type RuleFamily string

const (
	RuleInactiveItems      RuleFamily = "inactive_items"
	RuleLowUsage           RuleFamily = "low_usage"
	RuleHighAbandonment    RuleFamily = "high_abandonment"
	RuleSlowFulfillment    RuleFamily = "slow_fulfillment"
	RuleDescriptionQuality RuleFamily = "description_quality"

	DefectTooFewItems      RuleFamily = "too_few_items"
	DefectTooManyItems     RuleFamily = "too_many_items"
	DefectDeepNesting      RuleFamily = "deep_nesting"
	DefectNaming           RuleFamily = "naming_inconsistency"
	DefectPossibleDup      RuleFamily = "possible_duplicate"
	DefectOrphanedCategory RuleFamily = "orphaned_category"
)

// UsageFamilies is the closed set of rule families accepted by
// get_optimization_recommendations.
var UsageFamilies = []RuleFamily{
	RuleInactiveItems,
	RuleLowUsage,
	RuleHighAbandonment,
	RuleSlowFulfillment,
	RuleDescriptionQuality,
}

// IsUsageFamily reports whether f is one of the configurable usage rule
// families (as opposed to a structural defect tag).
func IsUsageFamily(f RuleFamily) bool {
	for _, known := range UsageFamilies {
		if f == known {
			return true
		}
	}
	return false
}

// Recommendation is one actionable finding. Value object: created by a
// single analysis run and discarded after rendering.
type Recommendation struct {
	Family      RuleFamily `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Action      string     `json:"action"`
	Impact      Score      `json:"impact"`
	Effort      Score      `json:"effort"`
	ItemIDs     []string   `json:"items,omitempty"`
	CategoryIDs []string   `json:"categories,omitempty"`
}

// AffectedCount is the number of records the recommendation names.
func (r *Recommendation) AffectedCount() int {
	return len(r.ItemIDs) + len(r.CategoryIDs)
}

// Less defines the deterministic report order: impact descending, effort
// ascending, affected count descending, then family and title for a
// stable total order.
func (r *Recommendation) Less(other *Recommendation) bool {
	if a, b := r.Impact.rank(), other.Impact.rank(); a != b {
		return a > b
	}
	if a, b := r.Effort.rank(), other.Effort.rank(); a != b {
		return a < b
	}
	if a, b := r.AffectedCount(), other.AffectedCount(); a != b {
		return a > b
	}
	if r.Family != other.Family {
		return r.Family < other.Family
	}
	return r.Title < other.Title
}

// Warning is a non-fatal data-quality note accumulated during a run.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
