package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowgate-io/snowgate-ce/internal/catalog"
)

func snapshotWith(itemID string, ordered, abandoned int) *catalog.UsageSnapshot {
	snap := &catalog.UsageSnapshot{
		ItemID:       itemID,
		OrderCount:   ordered,
		AbandonCount: abandoned,
	}
	if total := ordered + abandoned; total > 0 {
		snap.AbandonmentRate = float64(abandoned) / float64(total)
	}
	return snap
}

func findFamily(recs []catalog.Recommendation, family catalog.RuleFamily) *catalog.Recommendation {
	for i := range recs {
		if recs[i].Family == family {
			return &recs[i]
		}
	}
	return nil
}

func TestInactiveItemsRule(t *testing.T) {
	cfg := DefaultConfig()
	items := []catalog.Item{
		{ID: "live", Name: "Live", Active: true},
		{ID: "dormant", Name: "Dormant", Active: false},
		{ID: "retired_but_used", Name: "Retired", Active: false},
	}
	snaps := map[string]*catalog.UsageSnapshot{
		"retired_but_used": snapshotWith("retired_but_used", 3, 0),
	}

	recs, warnings := EvaluateRules(cfg, []catalog.RuleFamily{catalog.RuleInactiveItems},
		ruleInput{items: items, snapshots: snaps})
	assert.Empty(t, warnings)
	rec := findFamily(recs, catalog.RuleInactiveItems)
	require.NotNil(t, rec)
	assert.Equal(t, []string{"dormant"}, rec.ItemIDs,
		"inactive items with orders in the window are still in use")
	assert.Equal(t, catalog.ScoreLow, rec.Impact)
	assert.Equal(t, catalog.ScoreLow, rec.Effort)
}

func TestLowUsageRule(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LowUsagePercentile = 0.25

	var items []catalog.Item
	snaps := make(map[string]*catalog.UsageSnapshot)
	// Eight active items with usage 1..8: bottom 25% is the single item
	// with the lowest count (rank percentile 0 for i01, 1/8 for i02).
	counts := []int{1, 2, 3, 4, 5, 6, 7, 8}
	ids := []string{"i01", "i02", "i03", "i04", "i05", "i06", "i07", "i08"}
	for i, id := range ids {
		items = append(items, catalog.Item{ID: id, Name: "Item", Active: true})
		snaps[id] = snapshotWith(id, counts[i], 0)
	}

	recs, _ := EvaluateRules(cfg, []catalog.RuleFamily{catalog.RuleLowUsage},
		ruleInput{items: items, snapshots: snaps})
	rec := findFamily(recs, catalog.RuleLowUsage)
	require.NotNil(t, rec)
	assert.Equal(t, []string{"i01", "i02"}, rec.ItemIDs)

	t.Run("ties share a percentile bucket", func(t *testing.T) {
		snaps["i02"] = snapshotWith("i02", 1, 0)
		recs, _ := EvaluateRules(cfg, []catalog.RuleFamily{catalog.RuleLowUsage},
			ruleInput{items: items, snapshots: snaps})
		rec := findFamily(recs, catalog.RuleLowUsage)
		require.NotNil(t, rec)
		assert.Equal(t, []string{"i01", "i02"}, rec.ItemIDs)
		snaps["i02"] = snapshotWith("i02", 2, 0)
	})

	t.Run("zero-activity items are excluded from the ranking", func(t *testing.T) {
		withIdle := append([]catalog.Item{{ID: "idle", Name: "Idle", Active: true}}, items...)
		recs, _ := EvaluateRules(cfg, []catalog.RuleFamily{catalog.RuleLowUsage},
			ruleInput{items: withIdle, snapshots: snaps})
		rec := findFamily(recs, catalog.RuleLowUsage)
		require.NotNil(t, rec)
		assert.NotContains(t, rec.ItemIDs, "idle")
	})
}

func TestHighAbandonmentRule(t *testing.T) {
	t.Run("scenario: even split at the threshold fires", func(t *testing.T) {
		cfg := DefaultConfig() // threshold 0.5, minimum sample 5
		items := []catalog.Item{{ID: "a", Name: "A", Active: true}}
		snaps := map[string]*catalog.UsageSnapshot{"a": snapshotWith("a", 10, 10)}

		recs, _ := EvaluateRules(cfg, []catalog.RuleFamily{catalog.RuleHighAbandonment},
			ruleInput{items: items, snapshots: snaps})
		rec := findFamily(recs, catalog.RuleHighAbandonment)
		require.NotNil(t, rec)
		assert.Equal(t, []string{"a"}, rec.ItemIDs)
		assert.Equal(t, catalog.ScoreHigh, rec.Impact)
	})

	t.Run("never fires below the minimum sample size", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MinimumSampleSize = 5
		items := []catalog.Item{{ID: "a", Name: "A", Active: true}}
		// Abandonment rate 1.0, but only 4 events.
		snaps := map[string]*catalog.UsageSnapshot{"a": snapshotWith("a", 0, 4)}

		recs, _ := EvaluateRules(cfg, []catalog.RuleFamily{catalog.RuleHighAbandonment},
			ruleInput{items: items, snapshots: snaps})
		assert.Nil(t, findFamily(recs, catalog.RuleHighAbandonment))
	})

	t.Run("scenario: sample size met exactly fires", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MinimumSampleSize = 10
		items := []catalog.Item{{ID: "a", Name: "A", Active: true}}
		snaps := map[string]*catalog.UsageSnapshot{"a": snapshotWith("a", 2, 8)}

		recs, _ := EvaluateRules(cfg, []catalog.RuleFamily{catalog.RuleHighAbandonment},
			ruleInput{items: items, snapshots: snaps})
		rec := findFamily(recs, catalog.RuleHighAbandonment)
		require.NotNil(t, rec)
		assert.Equal(t, []string{"a"}, rec.ItemIDs)
	})
}

func TestSlowFulfillmentRule(t *testing.T) {
	cfg := DefaultConfig() // ratio 2.0
	mean := func(d time.Duration) *catalog.UsageSnapshot {
		snap := snapshotWith("", 3, 0)
		snap.MeanFulfillment = &d
		return snap
	}

	items := []catalog.Item{
		{ID: "fast1", Name: "F1", Active: true, CategoryID: "hw"},
		{ID: "fast2", Name: "F2", Active: true, CategoryID: "hw"},
		{ID: "slow", Name: "S", Active: true, CategoryID: "hw"},
	}
	snaps := map[string]*catalog.UsageSnapshot{
		"fast1": mean(24 * time.Hour),
		"fast2": mean(26 * time.Hour),
		"slow":  mean(120 * time.Hour),
	}

	recs, _ := EvaluateRules(cfg, []catalog.RuleFamily{catalog.RuleSlowFulfillment},
		ruleInput{items: items, snapshots: snaps})
	rec := findFamily(recs, catalog.RuleSlowFulfillment)
	require.NotNil(t, rec)
	assert.Equal(t, []string{"slow"}, rec.ItemIDs)

	t.Run("a lone measured item has no baseline", func(t *testing.T) {
		recs, _ := EvaluateRules(cfg, []catalog.RuleFamily{catalog.RuleSlowFulfillment},
			ruleInput{
				items:     []catalog.Item{{ID: "slow", Name: "S", Active: true, CategoryID: "hw"}},
				snapshots: map[string]*catalog.UsageSnapshot{"slow": mean(120 * time.Hour)},
			})
		assert.Nil(t, findFamily(recs, catalog.RuleSlowFulfillment))
	})
}

func TestDescriptionQualityRule(t *testing.T) {
	cfg := DefaultConfig() // min length 30
	items := []catalog.Item{
		{ID: "good", Name: "Good", Active: true, ShortDescription: "A well described catalog item for ordering hardware"},
		{ID: "terse", Name: "Terse", Active: true, ShortDescription: "Laptop"},
		{ID: "nameless", Active: true, ShortDescription: "A well described catalog item with no display name"},
		{ID: "inactive", Name: "Old", Active: false, ShortDescription: ""},
	}

	recs, _ := EvaluateRules(cfg, []catalog.RuleFamily{catalog.RuleDescriptionQuality},
		ruleInput{items: items})
	rec := findFamily(recs, catalog.RuleDescriptionQuality)
	require.NotNil(t, rec)
	assert.Equal(t, []string{"nameless", "terse"}, rec.ItemIDs)
}

func TestEvaluateRulesSelection(t *testing.T) {
	items := []catalog.Item{{ID: "dormant", Name: "Dormant", Active: false}}

	t.Run("empty family set runs every rule", func(t *testing.T) {
		recs, _ := EvaluateRules(DefaultConfig(), nil, ruleInput{items: items})
		assert.NotNil(t, findFamily(recs, catalog.RuleInactiveItems))
	})

	t.Run("explicit family set is exclusive", func(t *testing.T) {
		recs, _ := EvaluateRules(DefaultConfig(),
			[]catalog.RuleFamily{catalog.RuleLowUsage}, ruleInput{items: items})
		assert.Nil(t, findFamily(recs, catalog.RuleInactiveItems))
	})

	t.Run("unknown family is skipped with a warning", func(t *testing.T) {
		recs, warnings := EvaluateRules(DefaultConfig(),
			[]catalog.RuleFamily{"made_up"}, ruleInput{items: items})
		assert.Empty(t, recs)
		require.Len(t, warnings, 1)
		assert.Equal(t, "unknown_rule_family", warnings[0].Code)
	})
}
