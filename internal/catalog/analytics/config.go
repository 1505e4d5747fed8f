// Package analytics implements the catalog optimization engine: usage
// metric aggregation, the recommendation rules engine, the structure
// analyzer, and the report assembler.
//
// The engine is a pure batch computation. All thresholds arrive in an
// explicit Config value so concurrent runs with different settings cannot
// interfere; nothing is read from ambient state.
package analytics

import (
	"fmt"

	"github.com/snowgate-io/snowgate-ce/internal/catalog"
)

// Config carries every tunable threshold used by the engine.
type Config struct {
	// LowUsagePercentile is the rank percentile below which active items
	// with usage are flagged as low_usage. 0.10 means bottom 10%.
	LowUsagePercentile float64 `json:"low_usage_percentile" mapstructure:"low_usage_percentile"`

	// AbandonmentThreshold is the abandonment rate at or above which
	// high_abandonment fires.
	AbandonmentThreshold float64 `json:"abandonment_threshold" mapstructure:"abandonment_threshold"`

	// MinimumSampleSize is the minimum number of cart events (ordered plus
	// abandoned) before high_abandonment is trusted on an item.
	MinimumSampleSize int `json:"minimum_sample_size" mapstructure:"minimum_sample_size"`

	// SlowFulfillmentRatio flags items whose mean fulfillment exceeds this
	// multiple of the category median.
	SlowFulfillmentRatio float64 `json:"slow_fulfillment_ratio" mapstructure:"slow_fulfillment_ratio"`

	// MinDescriptionLength is the shortest acceptable short_description.
	MinDescriptionLength int `json:"min_description_length" mapstructure:"min_description_length"`

	// MinCategoryItems / MaxCategoryItems bound the acceptable item count
	// per category.
	MinCategoryItems int `json:"min_category_items" mapstructure:"min_category_items"`
	MaxCategoryItems int `json:"max_category_items" mapstructure:"max_category_items"`

	// MaxCategoryDepth is the deepest acceptable distance from a root
	// category. Roots are at depth 0.
	MaxCategoryDepth int `json:"max_category_depth" mapstructure:"max_category_depth"`

	// SimilarityThreshold is the Jaccard token-set similarity in [0,1] at
	// or above which two item descriptions count as near-duplicates.
	SimilarityThreshold float64 `json:"similarity_threshold" mapstructure:"similarity_threshold"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		LowUsagePercentile:   0.10,
		AbandonmentThreshold: 0.5,
		MinimumSampleSize:    5,
		SlowFulfillmentRatio: 2.0,
		MinDescriptionLength: 30,
		MinCategoryItems:     1,
		MaxCategoryItems:     50,
		MaxCategoryDepth:     4,
		SimilarityThreshold:  0.85,
	}
}

// Validate fails fast on malformed thresholds so a bad configuration
// never reaches computation. Each error names the offending field.
func (c Config) Validate() error {
	if c.LowUsagePercentile < 0 || c.LowUsagePercentile > 1 {
		return fmt.Errorf("low_usage_percentile must be in [0,1], got %v", c.LowUsagePercentile)
	}
	if c.AbandonmentThreshold < 0 || c.AbandonmentThreshold > 1 {
		return fmt.Errorf("abandonment_threshold must be in [0,1], got %v", c.AbandonmentThreshold)
	}
	if c.MinimumSampleSize < 0 {
		return fmt.Errorf("minimum_sample_size must be >= 0, got %d", c.MinimumSampleSize)
	}
	if c.SlowFulfillmentRatio <= 0 {
		return fmt.Errorf("slow_fulfillment_ratio must be > 0, got %v", c.SlowFulfillmentRatio)
	}
	if c.MinDescriptionLength < 0 {
		return fmt.Errorf("min_description_length must be >= 0, got %d", c.MinDescriptionLength)
	}
	if c.MinCategoryItems < 0 {
		return fmt.Errorf("min_category_items must be >= 0, got %d", c.MinCategoryItems)
	}
	if c.MaxCategoryItems < c.MinCategoryItems {
		return fmt.Errorf("max_category_items (%d) must be >= min_category_items (%d)",
			c.MaxCategoryItems, c.MinCategoryItems)
	}
	if c.MaxCategoryDepth < 0 {
		return fmt.Errorf("max_category_depth must be >= 0, got %d", c.MaxCategoryDepth)
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in [0,1], got %v", c.SimilarityThreshold)
	}
	return nil
}

// ValidateFamilies rejects unknown rule family names before any work
// begins. An empty set means "all families".
func ValidateFamilies(families []catalog.RuleFamily) error {
	for _, f := range families {
		if !catalog.IsUsageFamily(f) {
			return fmt.Errorf("unknown rule family %q", f)
		}
	}
	return nil
}
