package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowgate-io/snowgate-ce/internal/catalog"
	"github.com/snowgate-io/snowgate-ce/internal/catalog/analytics"
	"github.com/snowgate-io/snowgate-ce/internal/snow"
)

type noAuth struct{}

func (noAuth) Headers(ctx context.Context) (http.Header, error) { return http.Header{}, nil }
func (noAuth) Invalidate()                                      {}

type stubGateway struct {
	items      []catalog.Item
	categories []catalog.Category
	events     []catalog.OrderEvent
}

func (g *stubGateway) FetchItems(ctx context.Context, f catalog.ItemFilter) ([]catalog.Item, error) {
	return g.items, nil
}

func (g *stubGateway) FetchCategories(ctx context.Context, includeInactive bool) ([]catalog.Category, error) {
	return g.categories, nil
}

func (g *stubGateway) FetchOrderEvents(ctx context.Context, w catalog.Window, categoryID string) ([]catalog.OrderEvent, error) {
	return g.events, nil
}

func newTestServer(t *testing.T, gw catalog.Gateway, handler http.Handler) *Server {
	t.Helper()
	if gw == nil {
		gw = &stubGateway{}
	}
	engine, err := analytics.NewEngine(gw, analytics.DefaultConfig(),
		analytics.WithClock(func() time.Time {
			return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		}))
	require.NoError(t, err)

	baseURL := "http://unused.invalid"
	if handler != nil {
		ts := httptest.NewServer(handler)
		t.Cleanup(ts.Close)
		baseURL = ts.URL
	}
	client := snow.NewClient(baseURL, noAuth{}, time.Second)
	return NewServer(client, engine, nil)
}

func handle(t *testing.T, s *Server, msg string) Response {
	t.Helper()
	raw, err := s.HandleMessage(context.Background(), []byte(msg))
	require.NoError(t, err)
	var resp Response
	require.NoError(t, json.Unmarshal(raw, &resp))
	return resp
}

func TestHandleMessageInitialize(t *testing.T) {
	s := newTestServer(t, nil, nil)
	resp := handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`)

	require.Nil(t, resp.Error)
	var result InitializeResult
	require.NoError(t, remarshal(resp.Result, &result))
	assert.Equal(t, ProtocolVersion, result.ProtocolVersion)
	assert.Equal(t, ServerName, result.ServerInfo.Name)
	assert.NotNil(t, result.Capabilities.Tools)
	assert.True(t, s.initialized)
}

func TestHandleMessageInitializedNotification(t *testing.T) {
	s := newTestServer(t, nil, nil)
	raw, err := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","method":"initialized"}`))
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestHandleMessageParseError(t *testing.T) {
	s := newTestServer(t, nil, nil)
	resp := handle(t, s, `{not json`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeParse, resp.Error.Code)
}

func TestHandleMessageBadVersion(t *testing.T) {
	s := newTestServer(t, nil, nil)
	resp := handle(t, s, `{"jsonrpc":"1.0","id":4,"method":"ping"}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidRequest, resp.Error.Code)
}

func TestHandleMessageMethodNotFound(t *testing.T) {
	s := newTestServer(t, nil, nil)
	resp := handle(t, s, `{"jsonrpc":"2.0","id":2,"method":"resources/list"}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMethodNotFound, resp.Error.Code)
}

func TestHandleMessageToolsList(t *testing.T) {
	s := newTestServer(t, nil, nil)
	resp := handle(t, s, `{"jsonrpc":"2.0","id":3,"method":"tools/list"}`)

	require.Nil(t, resp.Error)
	var result ToolsListResult
	require.NoError(t, remarshal(resp.Result, &result))
	require.Len(t, result.Tools, len(ToolRegistry))

	names := map[string]bool{}
	for _, tool := range result.Tools {
		names[tool.Name] = true
		assert.NotEmpty(t, tool.Description, tool.Name)
	}
	for _, want := range []string{
		"analyze_usage", "get_optimization_recommendations", "analyze_catalog_structure",
		"create_incident", "create_task", "create_change_request", "list_workflows",
	} {
		assert.True(t, names[want], want)
	}
}

func TestToolsCallUnknownTool(t *testing.T) {
	s := newTestServer(t, nil, nil)
	resp := handle(t, s, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"delete_everything","arguments":{}}}`)

	require.Nil(t, resp.Error)
	var result ToolCallResult
	require.NoError(t, remarshal(resp.Result, &result))
	assert.True(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Contains(t, result.Content[0].Text, "unknown tool")
}

func TestToolsCallAnalyzeUsage(t *testing.T) {
	gw := &stubGateway{
		items: []catalog.Item{{ID: "item-1", Name: "Laptop", Active: true}},
		events: []catalog.OrderEvent{
			{ItemID: "item-1", Outcome: catalog.OutcomeOrdered, Timestamp: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)},
		},
	}
	s := newTestServer(t, gw, nil)
	resp := handle(t, s, `{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"analyze_usage","arguments":{"time_window":"last_30_days"}}}`)

	require.Nil(t, resp.Error)
	var result ToolCallResult
	require.NoError(t, remarshal(resp.Result, &result))
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)

	var report analytics.UsageReport
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &report))
	assert.True(t, report.Success)
	assert.Equal(t, "last_30_days", report.Window.Name)
	require.Len(t, report.Snapshots, 1)
	assert.Equal(t, "item-1", report.Snapshots[0].ItemID)
}

func TestToolsCallRecommendationsRejectsBadFamily(t *testing.T) {
	s := newTestServer(t, nil, nil)
	resp := handle(t, s, `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"get_optimization_recommendations","arguments":{"recommendation_types":["nonsense"]}}}`)

	require.Nil(t, resp.Error)
	var result ToolCallResult
	require.NoError(t, remarshal(resp.Result, &result))
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "nonsense")
}

func TestToolsCallListCatalogItems(t *testing.T) {
	var gotQuery string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/now/table/sc_cat_item", r.URL.Path)
		gotQuery = r.URL.Query().Get("sysparm_query")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":[{"sys_id":"abc","name":"Laptop","active":"true"}]}`))
	})
	s := newTestServer(t, nil, handler)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":8,"method":"tools/call","params":{"name":"list_catalog_items","arguments":{"category_id":"cat-1","query":"laptop"}}}`)

	require.Nil(t, resp.Error)
	var result ToolCallResult
	require.NoError(t, remarshal(resp.Result, &result))
	require.False(t, result.IsError)
	assert.Equal(t, "active=true^category=cat-1^nameLIKElaptop^ORshort_descriptionLIKElaptop", gotQuery)
	assert.Contains(t, result.Content[0].Text, "Found 1 catalog items")
}

func TestToolsCallResolveIncidentByNumber(t *testing.T) {
	var patched map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet:
			require.Equal(t, "number=INC0010001", r.URL.Query().Get("sysparm_query"))
			w.Write([]byte(`{"result":[{"sys_id":"sys123","number":"INC0010001"}]}`))
		case r.Method == http.MethodPatch:
			require.Equal(t, "/api/now/table/incident/sys123", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
			w.Write([]byte(`{"result":{"sys_id":"sys123","number":"INC0010001","state":"6"}}`))
		default:
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})
	s := newTestServer(t, nil, handler)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":9,"method":"tools/call","params":{"name":"resolve_incident","arguments":{"incident_id":"INC0010001","resolution_code":"Solved (Permanently)","resolution_notes":"Replaced the dock"}}}`)

	require.Nil(t, resp.Error)
	var result ToolCallResult
	require.NoError(t, remarshal(resp.Result, &result))
	require.False(t, result.IsError)
	assert.Equal(t, "6", patched["state"])
	assert.Equal(t, "Solved (Permanently)", patched["close_code"])
	assert.Equal(t, "Replaced the dock", patched["close_notes"])
}

func TestToolsCallResolveIncidentMissingArgs(t *testing.T) {
	s := newTestServer(t, nil, nil)
	resp := handle(t, s, `{"jsonrpc":"2.0","id":10,"method":"tools/call","params":{"name":"resolve_incident","arguments":{"incident_id":"sys123"}}}`)

	var result ToolCallResult
	require.NoError(t, remarshal(resp.Result, &result))
	assert.True(t, result.IsError)
}

func TestToolsCallUpdateChangeByNumber(t *testing.T) {
	var patched map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet:
			require.Equal(t, "/api/now/table/change_request", r.URL.Path)
			require.Equal(t, "number=CHG0031001", r.URL.Query().Get("sysparm_query"))
			w.Write([]byte(`{"result":[{"sys_id":"chg77","number":"CHG0031001"}]}`))
		case r.Method == http.MethodPatch:
			require.Equal(t, "/api/now/table/change_request/chg77", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
			w.Write([]byte(`{"result":{"sys_id":"chg77","number":"CHG0031001","state":"-1"}}`))
		default:
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})
	s := newTestServer(t, nil, handler)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":12,"method":"tools/call","params":{"name":"update_change_request","arguments":{"change_id":"CHG0031001","state":"-1","work_notes":"CAB approved"}}}`)

	require.Nil(t, resp.Error)
	var result ToolCallResult
	require.NoError(t, remarshal(resp.Result, &result))
	require.False(t, result.IsError)
	assert.Equal(t, "-1", patched["state"])
	assert.Equal(t, "CAB approved", patched["work_notes"])
}

func TestToolsCallCreateChangeRequiresType(t *testing.T) {
	s := newTestServer(t, nil, nil)
	resp := handle(t, s, `{"jsonrpc":"2.0","id":13,"method":"tools/call","params":{"name":"create_change_request","arguments":{"short_description":"Patch the prod cluster"}}}`)

	var result ToolCallResult
	require.NoError(t, remarshal(resp.Result, &result))
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "type")
}

func TestToolsCallCreateTask(t *testing.T) {
	var created map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/now/table/task", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":{"sys_id":"task42","number":"TASK0000042"}}`))
	})
	s := newTestServer(t, nil, handler)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":14,"method":"tools/call","params":{"name":"create_task","arguments":{"short_description":"Rack the new switch","priority":"2"}}}`)

	require.Nil(t, resp.Error)
	var result ToolCallResult
	require.NoError(t, remarshal(resp.Result, &result))
	require.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "TASK0000042")
	assert.Equal(t, "Rack the new switch", created["short_description"])
	assert.Equal(t, "2", created["priority"])
}

func TestToolsCallListWorkflows(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/now/table/wf_workflow", r.URL.Path)
		require.Equal(t, "active=true^nameLIKEdeploy", r.URL.Query().Get("sysparm_query"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":[{"sys_id":"wf1","name":"Deploy Approval","active":"true"}]}`))
	})
	s := newTestServer(t, nil, handler)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":15,"method":"tools/call","params":{"name":"list_workflows","arguments":{"name":"deploy"}}}`)

	require.Nil(t, resp.Error)
	var result ToolCallResult
	require.NoError(t, remarshal(resp.Result, &result))
	require.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "Deploy Approval")
}

func TestToolsCallAnalyzeUsageExplicitWindow(t *testing.T) {
	s := newTestServer(t, &stubGateway{}, nil)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":16,"method":"tools/call","params":{"name":"analyze_usage","arguments":{"from":"2026-01-01","to":"2026-02-01"}}}`)

	require.Nil(t, resp.Error)
	var result ToolCallResult
	require.NoError(t, remarshal(resp.Result, &result))
	require.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, `"name": "custom"`)
}

func TestToolsCallAnalyzeUsageBadDate(t *testing.T) {
	s := newTestServer(t, &stubGateway{}, nil)

	resp := handle(t, s, `{"jsonrpc":"2.0","id":17,"method":"tools/call","params":{"name":"analyze_usage","arguments":{"from":"yesterday","to":"2026-02-01"}}}`)

	var result ToolCallResult
	require.NoError(t, remarshal(resp.Result, &result))
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "RFC 3339")
}

func TestToolsCallGetUserRequiresIdentifier(t *testing.T) {
	s := newTestServer(t, nil, nil)
	resp := handle(t, s, `{"jsonrpc":"2.0","id":11,"method":"tools/call","params":{"name":"get_user","arguments":{}}}`)

	var result ToolCallResult
	require.NoError(t, remarshal(resp.Result, &result))
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "user_id, user_name or email")
}

func TestArgHelpers(t *testing.T) {
	args := map[string]any{
		"limit":    float64(25),
		"name":     "laptop",
		"active":   true,
		"families": []any{"low_usage", 7, "inactive_items"},
	}

	assert.Equal(t, 25, getInt(args, "limit", 50))
	assert.Equal(t, 50, getInt(args, "missing", 50))
	assert.Equal(t, "laptop", getString(args, "name", ""))
	assert.Equal(t, "fallback", getString(args, "missing", "fallback"))
	assert.True(t, getBool(args, "active", false))
	assert.False(t, getBool(args, "missing", false))
	assert.Equal(t, []string{"low_usage", "inactive_items"}, getStringSlice(args, "families"))
	assert.Nil(t, getStringSlice(args, "missing"))
}

// remarshal converts a decoded any back into a typed struct.
func remarshal(from any, to any) error {
	raw, err := json.Marshal(from)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, to)
}
