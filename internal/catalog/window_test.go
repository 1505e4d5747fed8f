package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindow(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		days int
	}{
		{WindowLast7Days, 7},
		{WindowLast30Days, 30},
		{WindowLast90Days, 90},
		{WindowLastYear, 365},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, err := ParseWindow(tc.name, now)
			require.NoError(t, err)
			assert.Equal(t, tc.name, w.Name)
			assert.Equal(t, now, w.To)
			assert.Equal(t, now.AddDate(0, 0, -tc.days), w.From)
		})
	}

	t.Run("empty name defaults to last_90_days", func(t *testing.T) {
		w, err := ParseWindow("", now)
		require.NoError(t, err)
		assert.Equal(t, WindowLast90Days, w.Name)
	})

	t.Run("unknown name is rejected", func(t *testing.T) {
		_, err := ParseWindow("last_decade", now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "last_decade")
	})
}

func TestExplicitWindow(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("valid bounds", func(t *testing.T) {
		w, err := ExplicitWindow(from, to)
		require.NoError(t, err)
		assert.Equal(t, WindowCustom, w.Name)
		assert.Equal(t, from, w.From)
		assert.Equal(t, to, w.To)
	})

	t.Run("inverted bounds are rejected", func(t *testing.T) {
		_, err := ExplicitWindow(to, from)
		require.Error(t, err)
	})

	t.Run("equal bounds are rejected", func(t *testing.T) {
		_, err := ExplicitWindow(from, from)
		require.Error(t, err)
	})

	t.Run("a missing bound is rejected", func(t *testing.T) {
		_, err := ExplicitWindow(time.Time{}, to)
		require.Error(t, err)
	})
}

func TestWindowContains(t *testing.T) {
	w := Window{
		From: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	assert.True(t, w.Contains(w.From), "window is closed at the start")
	assert.False(t, w.Contains(w.To), "window is open at the end")
	assert.True(t, w.Contains(w.From.AddDate(0, 0, 15)))
	assert.False(t, w.Contains(w.From.Add(-time.Second)))
}

func TestRecommendationLess(t *testing.T) {
	high := Recommendation{Family: RuleHighAbandonment, Impact: ScoreHigh, Effort: ScoreMedium}
	low := Recommendation{Family: RuleDescriptionQuality, Impact: ScoreLow, Effort: ScoreLow}
	assert.True(t, high.Less(&low))
	assert.False(t, low.Less(&high))

	t.Run("equal scores fall back to affected count then family", func(t *testing.T) {
		wide := Recommendation{Family: RuleLowUsage, Impact: ScoreMedium, Effort: ScoreMedium, ItemIDs: []string{"a", "b"}}
		narrow := Recommendation{Family: RuleInactiveItems, Impact: ScoreMedium, Effort: ScoreMedium, ItemIDs: []string{"a"}}
		assert.True(t, wide.Less(&narrow))

		narrow.ItemIDs = []string{"a", "b"}
		assert.True(t, narrow.Less(&wide), "equal counts order by family name")
	})
}
