package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/snowgate-io/snowgate-ce/internal/catalog"
)

// Store is the byte cache the gateway decorator needs. RedisCache
// implements it; tests use an in-memory map.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Gateway is a read-through caching decorator around a catalog.Gateway.
// Cache errors are logged and fall back to the underlying fetch; they
// never fail an analysis run.
type Gateway struct {
	next   catalog.Gateway
	store  Store
	logger *log.Logger
}

// NewGateway wraps next with the given store.
func NewGateway(next catalog.Gateway, store Store, logger *log.Logger) *Gateway {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Gateway{next: next, store: store, logger: logger}
}

func (g *Gateway) FetchItems(ctx context.Context, filter catalog.ItemFilter) ([]catalog.Item, error) {
	key := fmt.Sprintf("items:%s:%t", filter.CategoryID, filter.IncludeInactive)
	var items []catalog.Item
	if g.lookup(ctx, key, &items) {
		return items, nil
	}
	items, err := g.next.FetchItems(ctx, filter)
	if err != nil {
		return nil, err
	}
	g.save(ctx, key, items)
	return items, nil
}

func (g *Gateway) FetchCategories(ctx context.Context, includeInactive bool) ([]catalog.Category, error) {
	key := fmt.Sprintf("categories:%t", includeInactive)
	var categories []catalog.Category
	if g.lookup(ctx, key, &categories) {
		return categories, nil
	}
	categories, err := g.next.FetchCategories(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	g.save(ctx, key, categories)
	return categories, nil
}

func (g *Gateway) FetchOrderEvents(ctx context.Context, window catalog.Window, categoryID string) ([]catalog.OrderEvent, error) {
	key := fmt.Sprintf("events:%s:%d:%d:%s", window.Name, window.From.Unix(), window.To.Unix(), categoryID)
	var events []catalog.OrderEvent
	if g.lookup(ctx, key, &events) {
		return events, nil
	}
	events, err := g.next.FetchOrderEvents(ctx, window, categoryID)
	if err != nil {
		return nil, err
	}
	g.save(ctx, key, events)
	return events, nil
}

// lookup reports whether the key was present and decoded into out.
func (g *Gateway) lookup(ctx context.Context, key string, out any) bool {
	raw, err := g.store.Get(ctx, key)
	if err != nil {
		g.logger.Printf("cache get %s failed, falling back to gateway: %v", key, err)
		return false
	}
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		g.logger.Printf("cache entry %s is corrupt, refetching: %v", key, err)
		return false
	}
	return true
}

func (g *Gateway) save(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		g.logger.Printf("cache encode %s failed: %v", key, err)
		return
	}
	if err := g.store.Set(ctx, key, raw); err != nil {
		g.logger.Printf("cache set %s failed: %v", key, err)
	}
}
