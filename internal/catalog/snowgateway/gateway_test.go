package snowgateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowgate-io/snowgate-ce/internal/catalog"
	"github.com/snowgate-io/snowgate-ce/internal/snow"
)

func gatewayFor(t *testing.T, handler http.HandlerFunc) (*Gateway, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	client := snow.NewClient(srv.URL, nil, time.Second)
	return New(client, nil), srv.Close
}

func TestFetchItems(t *testing.T) {
	gw, done := gatewayFor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/now/table/sc_cat_item", r.URL.Path)
		assert.Equal(t, "active=true^category=cat1", r.URL.Query().Get("sysparm_query"))
		_, _ = w.Write([]byte(`{"result":[
			{"sys_id":"i1","name":"Laptop","short_description":"A laptop","category":"cat1","active":"true","order":"100","price":"999"},
			{"sys_id":"i2","name":"Phone","short_description":"A phone","category":"cat1","active":"true","order":"not-a-number"}
		]}`))
	})
	defer done()

	items, err := gw.FetchItems(context.Background(), catalog.ItemFilter{CategoryID: "cat1"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Laptop", items[0].Name)
	assert.True(t, items[0].Active)
	assert.Equal(t, 100, items[0].Order)
	assert.Equal(t, 0, items[1].Order, "unparseable order degrades to zero")
}

func TestFetchCategories(t *testing.T) {
	gw, done := gatewayFor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/now/table/sc_category", r.URL.Path)
		assert.Empty(t, r.URL.Query().Get("sysparm_query"), "include_inactive drops the active filter")
		_, _ = w.Write([]byte(`{"result":[
			{"sys_id":"c1","title":"Hardware","active":"true"},
			{"sys_id":"c2","title":"Legacy","parent":"c1","active":"false"}
		]}`))
	})
	defer done()

	categories, err := gw.FetchCategories(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "c1", categories[1].ParentID)
	assert.False(t, categories[1].Active)
}

func TestFetchOrderEvents(t *testing.T) {
	window := catalog.Window{
		Name: catalog.WindowLast30Days,
		From: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	gw, done := gatewayFor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/now/table/sc_req_item", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("sysparm_query"), "sys_created_on>=2026-01-01 00:00:00")
		_, _ = w.Write([]byte(`{"result":[
			{"sys_id":"r1","cat_item":"i1","sys_created_on":"2026-01-10 09:00:00","state":"closed_complete","closed_at":"2026-01-12 09:00:00","approval":"approved"},
			{"sys_id":"r2","cat_item":"i1","sys_created_on":"2026-01-11 09:00:00","state":"cancelled","approval":"not requested"},
			{"sys_id":"r3","cat_item":"i2","sys_created_on":"garbage","state":"closed_complete"}
		]}`))
	})
	defer done()

	events, err := gw.FetchOrderEvents(context.Background(), window, "")
	require.NoError(t, err)
	require.Len(t, events, 2, "malformed rows are skipped, not fatal")

	require.Equal(t, catalog.OutcomeOrdered, events[0].Outcome)
	require.NotNil(t, events[0].Fulfillment)
	assert.Equal(t, 48*time.Hour, *events[0].Fulfillment)
	assert.Equal(t, catalog.ApprovalApproved, events[0].Approval)

	assert.Equal(t, catalog.OutcomeAbandoned, events[1].Outcome)
	assert.Nil(t, events[1].Fulfillment)
	assert.Equal(t, catalog.ApprovalNA, events[1].Approval)
}
