// Package snowgateway implements catalog.Gateway over the ServiceNow
// Table API: items from sc_cat_item, categories from sc_category, and
// order events from sc_req_item.
package snowgateway

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/snowgate-io/snowgate-ce/internal/catalog"
	"github.com/snowgate-io/snowgate-ce/internal/snow"
)

// glideTime is the instance's datetime rendering (UTC).
const glideTime = "2006-01-02 15:04:05"

const fetchLimit = 10000

// Gateway reads catalog data from a ServiceNow instance.
type Gateway struct {
	client *snow.Client
	logger *log.Logger
}

// New builds a gateway over the given Table API client.
func New(client *snow.Client, logger *log.Logger) *Gateway {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Gateway{client: client, logger: logger}
}

// FetchItems lists catalog items, optionally scoped to a category.
func (g *Gateway) FetchItems(ctx context.Context, filter catalog.ItemFilter) ([]catalog.Item, error) {
	q := snow.Query{
		Fields: []string{"sys_id", "name", "short_description", "description", "category", "active", "order", "price"},
		Limit:  fetchLimit,
	}
	if !filter.IncludeInactive {
		q = q.Where("active", "=", "true")
	}
	if filter.CategoryID != "" {
		q = q.Where("category", "=", filter.CategoryID)
	}

	records, err := g.client.List(ctx, "sc_cat_item", q)
	if err != nil {
		return nil, err
	}

	items := make([]catalog.Item, 0, len(records))
	for _, rec := range records {
		items = append(items, catalog.Item{
			ID:               rec["sys_id"],
			Name:             rec["name"],
			ShortDescription: rec["short_description"],
			Description:      rec["description"],
			CategoryID:       rec["category"],
			Active:           rec["active"] == "true",
			Order:            atoiOrZero(rec["order"]),
			Price:            rec["price"],
		})
	}
	return items, nil
}

// FetchCategories lists catalog categories.
func (g *Gateway) FetchCategories(ctx context.Context, includeInactive bool) ([]catalog.Category, error) {
	q := snow.Query{
		Fields: []string{"sys_id", "title", "description", "parent", "active", "order"},
		Limit:  fetchLimit,
	}
	if !includeInactive {
		q = q.Where("active", "=", "true")
	}

	records, err := g.client.List(ctx, "sc_category", q)
	if err != nil {
		return nil, err
	}

	categories := make([]catalog.Category, 0, len(records))
	for _, rec := range records {
		categories = append(categories, catalog.Category{
			ID:          rec["sys_id"],
			Title:       rec["title"],
			Description: rec["description"],
			ParentID:    rec["parent"],
			Active:      rec["active"] == "true",
			Order:       atoiOrZero(rec["order"]),
		})
	}
	return categories, nil
}

// FetchOrderEvents derives order events from requested items opened in
// the window. A cancelled or incomplete request counts as abandoned;
// completed requests carry their fulfillment duration.
func (g *Gateway) FetchOrderEvents(ctx context.Context, window catalog.Window, categoryID string) ([]catalog.OrderEvent, error) {
	q := snow.Query{
		Fields: []string{"sys_id", "cat_item", "sys_created_on", "state", "closed_at", "approval"},
		Limit:  fetchLimit,
	}
	q = q.Where("sys_created_on", ">=", window.From.UTC().Format(glideTime))
	q = q.Where("sys_created_on", "<", window.To.UTC().Format(glideTime))
	if categoryID != "" {
		q = q.Where("cat_item.category", "=", categoryID)
	}

	records, err := g.client.List(ctx, "sc_req_item", q)
	if err != nil {
		return nil, err
	}

	events := make([]catalog.OrderEvent, 0, len(records))
	for _, rec := range records {
		ev, err := g.eventFromRecord(rec)
		if err != nil {
			g.logger.Printf("skipping malformed sc_req_item %s: %v", rec["sys_id"], err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (g *Gateway) eventFromRecord(rec snow.Record) (catalog.OrderEvent, error) {
	created, err := time.ParseInLocation(glideTime, rec["sys_created_on"], time.UTC)
	if err != nil {
		return catalog.OrderEvent{}, fmt.Errorf("bad sys_created_on %q: %w", rec["sys_created_on"], err)
	}

	ev := catalog.OrderEvent{
		ItemID:    rec["cat_item"],
		Timestamp: created,
		Outcome:   outcomeFromState(rec["state"]),
		Approval:  approvalFromField(rec["approval"]),
	}

	if ev.Outcome == catalog.OutcomeOrdered && rec["closed_at"] != "" {
		closed, err := time.ParseInLocation(glideTime, rec["closed_at"], time.UTC)
		if err == nil && closed.After(created) {
			d := closed.Sub(created)
			ev.Fulfillment = &d
		}
	}
	return ev, nil
}

func outcomeFromState(state string) catalog.Outcome {
	switch state {
	// Request item state values: negative states mean the request never
	// completed.
	case "closed_incomplete", "closed_skipped", "cancelled", "-4", "-5":
		return catalog.OutcomeAbandoned
	default:
		return catalog.OutcomeOrdered
	}
}

func approvalFromField(approval string) catalog.Approval {
	switch approval {
	case "approved":
		return catalog.ApprovalApproved
	case "rejected":
		return catalog.ApprovalRejected
	default:
		return catalog.ApprovalNA
	}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
