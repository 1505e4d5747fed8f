package analytics

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/snowgate-io/snowgate-ce/internal/catalog"
)

// Engine orchestrates the metrics aggregator, rules engine, structure
// analyzer, and report assembler over a Gateway. One Engine value is safe
// for concurrent use: every run derives its own snapshots and mutates
// nothing shared.
type Engine struct {
	gw     catalog.Gateway
	cfg    Config
	logger *log.Logger
	now    func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the run logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock overrides the clock; tests pin it for reproducible windows.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine validates the configuration and builds an engine. A malformed
// configuration fails here, before any computation begins.
func NewEngine(gw catalog.Gateway, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis configuration: %w", err)
	}
	e := &Engine{
		gw:     gw,
		cfg:    cfg,
		logger: log.New(io.Discard, "", 0),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// UsageParams select the scope of an analyze_usage run. From/To carry an
// explicit window; when both are set they take precedence over the named
// Window.
type UsageParams struct {
	Window          string    `json:"time_window"`
	From            time.Time `json:"from,omitempty"`
	To              time.Time `json:"to,omitempty"`
	CategoryID      string    `json:"category_id,omitempty"`
	IncludeInactive bool      `json:"include_inactive"`
}

// UsageReport is the analyze_usage result envelope.
type UsageReport struct {
	RunID     string                  `json:"run_id"`
	Success   bool                    `json:"success"`
	Message   string                  `json:"message"`
	Window    catalog.Window          `json:"window"`
	Snapshots []catalog.UsageSnapshot `json:"snapshots"`
	Warnings  []catalog.Warning       `json:"warnings,omitempty"`
}

// AnalyzeUsage produces one usage snapshot per item with activity in the
// window. Gateway failure on the whole fetch is fatal; partial data gaps
// degrade to warnings.
func (e *Engine) AnalyzeUsage(ctx context.Context, params UsageParams) (*UsageReport, error) {
	window, err := e.resolveWindow(params.Window, params.From, params.To)
	if err != nil {
		return nil, err
	}

	items, events, warnings, err := e.fetchUsageInputs(ctx, window, params.CategoryID, params.IncludeInactive)
	if err != nil {
		return nil, err
	}

	snapshots, aggWarnings := Aggregate(AggregateInput{
		Window:      window,
		Events:      events,
		Items:       items,
		IncludeZero: params.IncludeInactive,
	})
	warnings = append(warnings, aggWarnings...)

	report := &UsageReport{
		RunID:     uuid.NewString(),
		Success:   true,
		Window:    window,
		Snapshots: snapshots,
		Warnings:  warnings,
	}
	if len(snapshots) == 0 {
		report.Message = fmt.Sprintf("No catalog activity in window %s", window.Name)
	} else {
		report.Message = fmt.Sprintf("Computed usage metrics for %d items", len(snapshots))
	}
	e.logger.Printf("usage analysis %s: %d snapshots, %d warnings", report.RunID, len(snapshots), len(warnings))
	return report, nil
}

// RecommendationParams select the scope of a get_recommendations run.
// From/To carry an explicit window, as in UsageParams.
type RecommendationParams struct {
	Window     string               `json:"time_window"`
	From       time.Time            `json:"from,omitempty"`
	To         time.Time            `json:"to,omitempty"`
	CategoryID string               `json:"category_id,omitempty"`
	Families   []catalog.RuleFamily `json:"rule_families,omitempty"`
}

// Report is the get_recommendations result envelope.
type Report struct {
	RunID           string                     `json:"run_id"`
	Success         bool                       `json:"success"`
	Message         string                     `json:"message"`
	Window          catalog.Window             `json:"window"`
	Recommendations []catalog.Recommendation   `json:"recommendations"`
	FamilyCounts    map[catalog.RuleFamily]int `json:"family_counts"`
	Warnings        []catalog.Warning          `json:"warnings,omitempty"`
}

// Recommendations runs the rules engine and the structure analyzer, then
// assembles one ordered report. An explicit family set restricts the
// output to those families; empty means everything, structural findings
// included. A category filter scopes the run to usage rules only: the
// structure analyzer judges the whole taxonomy, and running it against a
// partial item set would flag out-of-scope categories as empty.
func (e *Engine) Recommendations(ctx context.Context, params RecommendationParams) (*Report, error) {
	if err := ValidateFamilies(params.Families); err != nil {
		return nil, err
	}
	window, err := e.resolveWindow(params.Window, params.From, params.To)
	if err != nil {
		return nil, err
	}

	// Inactive items are always fetched here: the inactive_items rule is
	// about them.
	items, events, warnings, err := e.fetchUsageInputs(ctx, window, params.CategoryID, true)
	if err != nil {
		return nil, err
	}
	categories, err := e.gw.FetchCategories(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("fetching categories: %w", err)
	}

	snapshots, aggWarnings := Aggregate(AggregateInput{
		Window: window,
		Events: events,
		Items:  items,
	})
	warnings = append(warnings, aggWarnings...)

	byID := make(map[string]*catalog.UsageSnapshot, len(snapshots))
	for i := range snapshots {
		byID[snapshots[i].ItemID] = &snapshots[i]
	}
	categoryIndex := make(map[string]catalog.Category, len(categories))
	for _, c := range categories {
		categoryIndex[c.ID] = c
	}
	itemList := sortedItems(items)

	in := ruleInput{items: itemList, categories: categoryIndex, snapshots: byID}
	recs, ruleWarnings := EvaluateRules(e.cfg, params.Families, in)
	warnings = append(warnings, ruleWarnings...)

	if params.CategoryID == "" {
		structural, structWarnings := AnalyzeStructure(e.cfg, categories, itemList)
		recs = append(recs, structural...)
		warnings = append(warnings, structWarnings...)
	}

	ordered, counts := Assemble(recs, params.Families)

	report := &Report{
		RunID:           uuid.NewString(),
		Success:         true,
		Message:         fmt.Sprintf("Found %d optimization recommendations", len(ordered)),
		Window:          window,
		Recommendations: ordered,
		FamilyCounts:    counts,
		Warnings:        warnings,
	}
	if len(ordered) == 0 {
		report.Message = "No optimization recommendations: the catalog looks healthy for this scope"
	}
	e.logger.Printf("recommendation run %s: %d recommendations, %d warnings", report.RunID, len(ordered), len(warnings))
	return report, nil
}

// StructureParams select the scope of an analyze_structure run.
type StructureParams struct {
	IncludeInactive bool `json:"include_inactive"`
}

// StructureReport is the analyze_structure result envelope.
type StructureReport struct {
	RunID           string                   `json:"run_id"`
	Success         bool                     `json:"success"`
	Message         string                   `json:"message"`
	Recommendations []catalog.Recommendation `json:"recommendations"`
	Warnings        []catalog.Warning        `json:"warnings,omitempty"`
}

// AnalyzeStructure inspects the category tree and item set without any
// usage data.
func (e *Engine) AnalyzeStructure(ctx context.Context, params StructureParams) (*StructureReport, error) {
	categories, err := e.gw.FetchCategories(ctx, params.IncludeInactive)
	if err != nil {
		return nil, fmt.Errorf("fetching categories: %w", err)
	}
	items, err := e.gw.FetchItems(ctx, catalog.ItemFilter{IncludeInactive: params.IncludeInactive})
	if err != nil {
		return nil, fmt.Errorf("fetching items: %w", err)
	}

	recs, warnings := AnalyzeStructure(e.cfg, categories, items)
	ordered, _ := Assemble(recs, nil)

	report := &StructureReport{
		RunID:           uuid.NewString(),
		Success:         true,
		Message:         fmt.Sprintf("Found %d structural findings across %d categories", len(ordered), len(categories)),
		Recommendations: ordered,
		Warnings:        warnings,
	}
	e.logger.Printf("structure analysis %s: %d findings, %d warnings", report.RunID, len(ordered), len(warnings))
	return report, nil
}

// resolveWindow picks the explicit bounds when given, otherwise resolves
// the named window against the clock. Mixing a name with only one bound
// is an error: a half-specified explicit window is a caller bug, not a
// fallback case.
func (e *Engine) resolveWindow(name string, from, to time.Time) (catalog.Window, error) {
	if from.IsZero() && to.IsZero() {
		return catalog.ParseWindow(name, e.now())
	}
	return catalog.ExplicitWindow(from, to)
}

// fetchUsageInputs pulls items and order events for a run. A failure of
// either fetch is fatal for the operation; the retry policy, if any,
// belongs to the gateway.
func (e *Engine) fetchUsageInputs(ctx context.Context, window catalog.Window, categoryID string, includeInactive bool) (map[string]catalog.Item, []catalog.OrderEvent, []catalog.Warning, error) {
	items, err := e.gw.FetchItems(ctx, catalog.ItemFilter{
		CategoryID:      categoryID,
		IncludeInactive: includeInactive,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetching catalog items: %w", err)
	}
	events, err := e.gw.FetchOrderEvents(ctx, window, categoryID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetching order events: %w", err)
	}

	index := make(map[string]catalog.Item, len(items))
	for _, item := range items {
		index[item.ID] = item
	}
	return index, events, nil, nil
}

func sortedItems(index map[string]catalog.Item) []catalog.Item {
	items := make([]catalog.Item, 0, len(index))
	for _, item := range index {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}
