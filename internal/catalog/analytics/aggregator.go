package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/snowgate-io/snowgate-ce/internal/catalog"
)

// AggregateInput bundles everything the metrics aggregator needs for one
// run. Items is the set of resolvable catalog items; events referencing
// an item outside it are treated as orphaned references.
type AggregateInput struct {
	Window catalog.Window
	Events []catalog.OrderEvent
	Items  map[string]catalog.Item

	// IncludeZero emits an all-zero snapshot for every known item without
	// events in the window. Off by default so "no data" stays
	// distinguishable from "data of zero".
	IncludeZero bool
}

// Aggregate partitions order events by item and derives one UsageSnapshot
// per item. Orphaned item references are skipped with a warning; they
// never abort the run.
func Aggregate(in AggregateInput) ([]catalog.UsageSnapshot, []catalog.Warning) {
	perItem := make(map[string][]catalog.OrderEvent)
	var warnings []catalog.Warning
	orphaned := make(map[string]bool)

	for _, ev := range in.Events {
		if !in.Window.From.IsZero() && !in.Window.Contains(ev.Timestamp) {
			continue
		}
		if _, ok := in.Items[ev.ItemID]; !ok {
			if !orphaned[ev.ItemID] {
				orphaned[ev.ItemID] = true
				warnings = append(warnings, catalog.Warning{
					Code:    "orphaned_item_reference",
					Message: fmt.Sprintf("order events reference unknown item %q; excluded from metrics", ev.ItemID),
				})
			}
			continue
		}
		perItem[ev.ItemID] = append(perItem[ev.ItemID], ev)
	}

	if in.IncludeZero {
		for id := range in.Items {
			if _, ok := perItem[id]; !ok {
				perItem[id] = nil
			}
		}
	}

	snapshots := make([]catalog.UsageSnapshot, 0, len(perItem))
	for id, events := range perItem {
		snapshots = append(snapshots, snapshotFor(id, in.Window, events))
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].ItemID < snapshots[j].ItemID
	})
	return snapshots, warnings
}

func snapshotFor(itemID string, window catalog.Window, events []catalog.OrderEvent) catalog.UsageSnapshot {
	snap := catalog.UsageSnapshot{ItemID: itemID, Window: window}

	var durations []time.Duration
	var approved, rejected int
	for _, ev := range events {
		switch ev.Outcome {
		case catalog.OutcomeOrdered:
			snap.OrderCount++
			if ev.Fulfillment != nil {
				durations = append(durations, *ev.Fulfillment)
			}
		case catalog.OutcomeAbandoned:
			snap.AbandonCount++
		}
		switch ev.Approval {
		case catalog.ApprovalApproved:
			approved++
		case catalog.ApprovalRejected:
			rejected++
		}
	}

	// No activity means no abandonment signal, not an error.
	if total := snap.OrderCount + snap.AbandonCount; total > 0 {
		snap.AbandonmentRate = float64(snap.AbandonCount) / float64(total)
	}

	if len(durations) > 0 {
		mean := meanDuration(durations)
		median := medianDuration(durations)
		snap.MeanFulfillment = &mean
		snap.MedianFulfillment = &median
	}

	if approved+rejected > 0 {
		rate := float64(approved) / float64(approved+rejected)
		snap.ApprovalRate = &rate
	}

	return snap
}

func meanDuration(ds []time.Duration) time.Duration {
	var sum time.Duration
	for _, d := range ds {
		sum += d
	}
	return sum / time.Duration(len(ds))
}

func medianDuration(ds []time.Duration) time.Duration {
	sorted := make([]time.Duration, len(ds))
	copy(sorted, ds)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
