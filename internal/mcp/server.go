package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/snowgate-io/snowgate-ce/internal/catalog"
	"github.com/snowgate-io/snowgate-ce/internal/catalog/analytics"
	"github.com/snowgate-io/snowgate-ce/internal/snow"
)

const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "snowgate-mcp"
	ServerVersion   = "0.3.0"
)

// Server handles MCP protocol messages. Record tools issue Table API
// calls through the snow client; the analytics tools run the catalog
// optimization engine. The instance's own ACLs govern what the
// configured credentials may read or write.
type Server struct {
	client      *snow.Client
	engine      *analytics.Engine
	logger      *log.Logger
	initialized bool
}

// NewServer creates a new MCP server instance.
func NewServer(client *snow.Client, engine *analytics.Engine, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{client: client, engine: engine, logger: logger}
}

// HandleMessage processes a JSON-RPC message and returns a response.
func (s *Server) HandleMessage(ctx context.Context, msg []byte) ([]byte, error) {
	var req Request
	if err := json.Unmarshal(msg, &req); err != nil {
		resp := ErrorResponse(nil, ErrCodeParse, "Parse error: "+err.Error())
		return json.Marshal(resp)
	}

	if req.JSONRPC != "2.0" {
		resp := ErrorResponse(req.ID, ErrCodeInvalidRequest, "Invalid JSON-RPC version")
		return json.Marshal(resp)
	}

	var resp Response
	switch req.Method {
	case "initialize":
		resp = s.handleInitialize(req)
	case "initialized":
		// Client acknowledgment, no response needed
		return nil, nil
	case "tools/list":
		resp = s.handleToolsList(req)
	case "tools/call":
		resp = s.handleToolsCall(ctx, req)
	case "ping":
		resp = SuccessResponse(req.ID, map[string]string{})
	default:
		resp = ErrorResponse(req.ID, ErrCodeMethodNotFound, "Method not found: "+req.Method)
	}

	return json.Marshal(resp)
}

func (s *Server) handleInitialize(req Request) Response {
	var params InitializeParams
	if req.Params != nil {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return ErrorResponse(req.ID, ErrCodeInvalidParams, "Invalid params: "+err.Error())
		}
	}

	s.initialized = true

	return SuccessResponse(req.ID, InitializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo: ServerInfo{
			Name:    ServerName,
			Version: ServerVersion,
		},
		Capabilities: ServerCapabilities{
			Tools: &ToolsCapability{},
		},
	})
}

func (s *Server) handleToolsList(req Request) Response {
	return SuccessResponse(req.ID, ToolsListResult{
		Tools: ToolRegistry,
	})
}

func (s *Server) handleToolsCall(ctx context.Context, req Request) Response {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return ErrorResponse(req.ID, ErrCodeInvalidParams, "Invalid params: "+err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Printf("tool %s failed: %v", params.Name, err)
		return SuccessResponse(req.ID, ToolCallResult{
			Content: []ContentBlock{TextContent(fmt.Sprintf("Error: %v", err))},
			IsError: true,
		})
	}

	return SuccessResponse(req.ID, result)
}

func (s *Server) executeTool(ctx context.Context, name string, args map[string]any) (*ToolCallResult, error) {
	switch name {
	case "analyze_usage":
		return s.toolAnalyzeUsage(ctx, args)
	case "get_optimization_recommendations":
		return s.toolRecommendations(ctx, args)
	case "analyze_catalog_structure":
		return s.toolAnalyzeStructure(ctx, args)
	case "list_catalog_items":
		return s.toolListCatalogItems(ctx, args)
	case "get_catalog_item":
		return s.toolGetCatalogItem(ctx, args)
	case "update_catalog_item":
		return s.toolUpdateCatalogItem(ctx, args)
	case "list_catalog_categories":
		return s.toolListCatalogCategories(ctx, args)
	case "create_task":
		return s.toolCreateTask(ctx, args)
	case "update_task":
		return s.toolUpdateTask(ctx, args)
	case "list_tasks":
		return s.toolListTasks(ctx, args)
	case "create_change_request":
		return s.toolCreateChange(ctx, args)
	case "update_change_request":
		return s.toolUpdateChange(ctx, args)
	case "list_change_requests":
		return s.toolListChanges(ctx, args)
	case "list_workflows":
		return s.toolListWorkflows(ctx, args)
	case "get_workflow":
		return s.toolGetWorkflow(ctx, args)
	case "create_incident":
		return s.toolCreateIncident(ctx, args)
	case "update_incident":
		return s.toolUpdateIncident(ctx, args)
	case "resolve_incident":
		return s.toolResolveIncident(ctx, args)
	case "list_incidents":
		return s.toolListIncidents(ctx, args)
	case "create_user":
		return s.toolCreateUser(ctx, args)
	case "get_user":
		return s.toolGetUser(ctx, args)
	case "list_users":
		return s.toolListUsers(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// Helper to get int from args
func getInt(args map[string]any, key string, defaultVal int) int {
	if v, ok := args[key]; ok {
		switch val := v.(type) {
		case float64:
			return int(val)
		case int:
			return val
		case json.Number:
			if i, err := val.Int64(); err == nil {
				return int(i)
			}
		}
	}
	return defaultVal
}

// Helper to get string from args
func getString(args map[string]any, key string, defaultVal string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultVal
}

// Helper to get bool from args
func getBool(args map[string]any, key string, defaultVal bool) bool {
	if v, ok := args[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// Helper to parse a date argument; accepts RFC 3339 or YYYY-MM-DD.
func getTime(args map[string]any, key string) (time.Time, error) {
	raw := getString(args, key, "")
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: cannot parse %q as RFC 3339 or YYYY-MM-DD", key, raw)
	}
	return t, nil
}

// Helper to get a string slice from args
func getStringSlice(args map[string]any, key string) []string {
	v, ok := args[key]
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, entry := range raw {
		if s, ok := entry.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Analytics tools

func (s *Server) toolAnalyzeUsage(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	from, err := getTime(args, "from")
	if err != nil {
		return nil, err
	}
	to, err := getTime(args, "to")
	if err != nil {
		return nil, err
	}
	report, err := s.engine.AnalyzeUsage(ctx, analytics.UsageParams{
		Window:          getString(args, "time_window", ""),
		From:            from,
		To:              to,
		CategoryID:      getString(args, "category_id", ""),
		IncludeInactive: getBool(args, "include_inactive", false),
	})
	if err != nil {
		return nil, err
	}
	return JSONResult(report)
}

func (s *Server) toolRecommendations(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	var families []catalog.RuleFamily
	for _, name := range getStringSlice(args, "recommendation_types") {
		families = append(families, catalog.RuleFamily(name))
	}
	from, err := getTime(args, "from")
	if err != nil {
		return nil, err
	}
	to, err := getTime(args, "to")
	if err != nil {
		return nil, err
	}
	report, err := s.engine.Recommendations(ctx, analytics.RecommendationParams{
		Window:     getString(args, "time_window", ""),
		From:       from,
		To:         to,
		CategoryID: getString(args, "category_id", ""),
		Families:   families,
	})
	if err != nil {
		return nil, err
	}
	return JSONResult(report)
}

func (s *Server) toolAnalyzeStructure(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	report, err := s.engine.AnalyzeStructure(ctx, analytics.StructureParams{
		IncludeInactive: getBool(args, "include_inactive", false),
	})
	if err != nil {
		return nil, err
	}
	return JSONResult(report)
}

// Catalog record tools

func (s *Server) toolListCatalogItems(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	limit := getInt(args, "limit", 50)
	q := snow.Query{
		Fields:       []string{"sys_id", "name", "short_description", "category", "active", "order", "price"},
		Limit:        limit,
		Offset:       getInt(args, "offset", 0),
		DisplayValue: false,
	}
	if !getBool(args, "include_inactive", false) {
		q = q.Where("active", "=", "true")
	}
	if categoryID := getString(args, "category_id", ""); categoryID != "" {
		q = q.Where("category", "=", categoryID)
	}
	if text := getString(args, "query", ""); text != "" {
		q.Conditions = append(q.Conditions, "nameLIKE"+text+"^ORshort_descriptionLIKE"+text)
	}

	records, err := s.client.List(ctx, "sc_cat_item", q)
	if err != nil {
		return nil, err
	}
	return JSONResult(map[string]any{
		"success": true,
		"message": fmt.Sprintf("Found %d catalog items", len(records)),
		"items":   records,
	})
}

func (s *Server) toolGetCatalogItem(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	itemID := getString(args, "item_id", "")
	if itemID == "" {
		return nil, fmt.Errorf("item_id is required")
	}
	record, err := s.client.Get(ctx, "sc_cat_item", itemID, snow.Query{})
	if err != nil {
		return nil, err
	}
	return JSONResult(map[string]any{
		"success": true,
		"message": "Retrieved catalog item: " + record["name"],
		"data":    record,
	})
}

func (s *Server) toolUpdateCatalogItem(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	itemID := getString(args, "item_id", "")
	if itemID == "" {
		return nil, fmt.Errorf("item_id is required")
	}

	// Only the provided fields go on the wire.
	body := map[string]any{}
	for _, field := range []string{"name", "short_description", "description", "category", "price"} {
		if v, ok := args[field]; ok {
			body[field] = v
		}
	}
	if v, ok := args["active"]; ok {
		if active, ok := v.(bool); ok {
			body["active"] = strconv.FormatBool(active)
		}
	}
	if _, ok := args["order"]; ok {
		body["order"] = strconv.Itoa(getInt(args, "order", 0))
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	record, err := s.client.Update(ctx, "sc_cat_item", itemID, body)
	if err != nil {
		return nil, err
	}
	return JSONResult(map[string]any{
		"success": true,
		"message": "Successfully updated catalog item: " + record["name"],
		"data":    record,
	})
}

func (s *Server) toolListCatalogCategories(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	q := snow.Query{
		Fields: []string{"sys_id", "title", "description", "parent", "active", "order"},
		Limit:  getInt(args, "limit", 50),
	}
	if !getBool(args, "include_inactive", false) {
		q = q.Where("active", "=", "true")
	}
	if text := getString(args, "query", ""); text != "" {
		q.Conditions = append(q.Conditions, "titleLIKE"+text+"^ORdescriptionLIKE"+text)
	}

	records, err := s.client.List(ctx, "sc_category", q)
	if err != nil {
		return nil, err
	}
	return JSONResult(map[string]any{
		"success":    true,
		"message":    fmt.Sprintf("Found %d catalog categories", len(records)),
		"categories": records,
	})
}

// Incident tools

func (s *Server) toolCreateIncident(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	short := getString(args, "short_description", "")
	if short == "" {
		return nil, fmt.Errorf("short_description is required")
	}

	body := map[string]any{"short_description": short}
	for _, field := range []string{"description", "caller_id", "category", "priority", "assignment_group"} {
		if v := getString(args, field, ""); v != "" {
			body[field] = v
		}
	}

	record, err := s.client.Create(ctx, "incident", body)
	if err != nil {
		return nil, err
	}
	return JSONResult(map[string]any{
		"success": true,
		"message": "Created incident: " + record["number"],
		"data":    record,
	})
}

// resolveRecordID accepts either a sys_id or a record number with the
// table's prefix (INC, TASK, CHG) and returns the sys_id.
func (s *Server) resolveRecordID(ctx context.Context, table, numberPrefix, id string) (string, error) {
	if len(id) < len(numberPrefix) || id[:len(numberPrefix)] != numberPrefix {
		return id, nil
	}
	records, err := s.client.List(ctx, table, snow.Query{Limit: 1}.Where("number", "=", id))
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", fmt.Errorf("%s not found: %s", table, id)
	}
	return records[0]["sys_id"], nil
}

func (s *Server) resolveIncidentID(ctx context.Context, id string) (string, error) {
	return s.resolveRecordID(ctx, "incident", "INC", id)
}

func (s *Server) toolUpdateIncident(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	incidentID := getString(args, "incident_id", "")
	if incidentID == "" {
		return nil, fmt.Errorf("incident_id is required")
	}
	sysID, err := s.resolveIncidentID(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	body := map[string]any{}
	for _, field := range []string{"short_description", "description", "state", "priority", "assigned_to", "work_notes"} {
		if v := getString(args, field, ""); v != "" {
			body[field] = v
		}
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	record, err := s.client.Update(ctx, "incident", sysID, body)
	if err != nil {
		return nil, err
	}
	return JSONResult(map[string]any{
		"success": true,
		"message": "Updated incident: " + record["number"],
		"data":    record,
	})
}

func (s *Server) toolResolveIncident(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	incidentID := getString(args, "incident_id", "")
	code := getString(args, "resolution_code", "")
	notes := getString(args, "resolution_notes", "")
	if incidentID == "" || code == "" || notes == "" {
		return nil, fmt.Errorf("incident_id, resolution_code and resolution_notes are required")
	}
	sysID, err := s.resolveIncidentID(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	record, err := s.client.Update(ctx, "incident", sysID, map[string]any{
		"state":       "6", // Resolved
		"close_code":  code,
		"close_notes": notes,
	})
	if err != nil {
		return nil, err
	}
	return JSONResult(map[string]any{
		"success": true,
		"message": "Resolved incident: " + record["number"],
		"data":    record,
	})
}

func (s *Server) toolListIncidents(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	limit := getInt(args, "limit", 20)
	if limit > 100 {
		limit = 100
	}
	q := snow.Query{
		Fields:       []string{"sys_id", "number", "short_description", "state", "priority", "assigned_to", "category", "sys_created_on"},
		Limit:        limit,
		Offset:       getInt(args, "offset", 0),
		DisplayValue: true,
	}
	for _, field := range []string{"state", "assigned_to", "category"} {
		if v := getString(args, field, ""); v != "" {
			q = q.Where(field, "=", v)
		}
	}

	records, err := s.client.List(ctx, "incident", q)
	if err != nil {
		return nil, err
	}
	return JSONResult(map[string]any{
		"success":   true,
		"message":   fmt.Sprintf("Found %d incidents", len(records)),
		"incidents": records,
	})
}

// Task tools

func (s *Server) toolCreateTask(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	short := getString(args, "short_description", "")
	if short == "" {
		return nil, fmt.Errorf("short_description is required")
	}

	body := map[string]any{"short_description": short}
	for _, field := range []string{"description", "priority", "assigned_to", "assignment_group", "due_date"} {
		if v := getString(args, field, ""); v != "" {
			body[field] = v
		}
	}

	record, err := s.client.Create(ctx, "task", body)
	if err != nil {
		return nil, err
	}
	return JSONResult(map[string]any{
		"success": true,
		"message": "Created task: " + record["number"],
		"data":    record,
	})
}

func (s *Server) toolUpdateTask(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	taskID := getString(args, "task_id", "")
	if taskID == "" {
		return nil, fmt.Errorf("task_id is required")
	}
	sysID, err := s.resolveRecordID(ctx, "task", "TASK", taskID)
	if err != nil {
		return nil, err
	}

	body := map[string]any{}
	for _, field := range []string{"short_description", "description", "state", "priority", "assigned_to", "work_notes"} {
		if v := getString(args, field, ""); v != "" {
			body[field] = v
		}
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	record, err := s.client.Update(ctx, "task", sysID, body)
	if err != nil {
		return nil, err
	}
	return JSONResult(map[string]any{
		"success": true,
		"message": "Updated task: " + record["number"],
		"data":    record,
	})
}

func (s *Server) toolListTasks(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	limit := getInt(args, "limit", 20)
	if limit > 100 {
		limit = 100
	}
	q := snow.Query{
		Fields:       []string{"sys_id", "number", "short_description", "state", "priority", "assigned_to", "due_date", "sys_created_on"},
		Limit:        limit,
		Offset:       getInt(args, "offset", 0),
		DisplayValue: true,
	}
	for _, field := range []string{"state", "assigned_to"} {
		if v := getString(args, field, ""); v != "" {
			q = q.Where(field, "=", v)
		}
	}

	records, err := s.client.List(ctx, "task", q)
	if err != nil {
		return nil, err
	}
	return JSONResult(map[string]any{
		"success": true,
		"message": fmt.Sprintf("Found %d tasks", len(records)),
		"tasks":   records,
	})
}

// Change request tools

func (s *Server) toolCreateChange(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	short := getString(args, "short_description", "")
	changeType := getString(args, "type", "")
	if short == "" || changeType == "" {
		return nil, fmt.Errorf("short_description and type are required")
	}

	body := map[string]any{"short_description": short, "type": changeType}
	for _, field := range []string{"description", "risk", "impact", "assignment_group", "start_date", "end_date"} {
		if v := getString(args, field, ""); v != "" {
			body[field] = v
		}
	}

	record, err := s.client.Create(ctx, "change_request", body)
	if err != nil {
		return nil, err
	}
	return JSONResult(map[string]any{
		"success": true,
		"message": "Created change request: " + record["number"],
		"data":    record,
	})
}

func (s *Server) toolUpdateChange(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	changeID := getString(args, "change_id", "")
	if changeID == "" {
		return nil, fmt.Errorf("change_id is required")
	}
	sysID, err := s.resolveRecordID(ctx, "change_request", "CHG", changeID)
	if err != nil {
		return nil, err
	}

	body := map[string]any{}
	for _, field := range []string{"short_description", "description", "state", "risk", "impact", "work_notes"} {
		if v := getString(args, field, ""); v != "" {
			body[field] = v
		}
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	record, err := s.client.Update(ctx, "change_request", sysID, body)
	if err != nil {
		return nil, err
	}
	return JSONResult(map[string]any{
		"success": true,
		"message": "Updated change request: " + record["number"],
		"data":    record,
	})
}

func (s *Server) toolListChanges(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	limit := getInt(args, "limit", 20)
	if limit > 100 {
		limit = 100
	}
	q := snow.Query{
		Fields:       []string{"sys_id", "number", "short_description", "type", "state", "risk", "impact", "assignment_group", "start_date", "end_date"},
		Limit:        limit,
		Offset:       getInt(args, "offset", 0),
		DisplayValue: true,
	}
	for _, field := range []string{"state", "type", "assignment_group"} {
		if v := getString(args, field, ""); v != "" {
			q = q.Where(field, "=", v)
		}
	}

	records, err := s.client.List(ctx, "change_request", q)
	if err != nil {
		return nil, err
	}
	return JSONResult(map[string]any{
		"success": true,
		"message": fmt.Sprintf("Found %d change requests", len(records)),
		"changes": records,
	})
}

// Workflow tools

func (s *Server) toolListWorkflows(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	q := snow.Query{
		Fields: []string{"sys_id", "name", "description", "active", "table"},
		Limit:  getInt(args, "limit", 20),
	}
	if getBool(args, "active", true) {
		q = q.Where("active", "=", "true")
	}
	if name := getString(args, "name", ""); name != "" {
		q.Conditions = append(q.Conditions, "nameLIKE"+name)
	}

	records, err := s.client.List(ctx, "wf_workflow", q)
	if err != nil {
		return nil, err
	}
	return JSONResult(map[string]any{
		"success":   true,
		"message":   fmt.Sprintf("Found %d workflows", len(records)),
		"workflows": records,
	})
}

func (s *Server) toolGetWorkflow(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	workflowID := getString(args, "workflow_id", "")
	if workflowID == "" {
		return nil, fmt.Errorf("workflow_id is required")
	}
	record, err := s.client.Get(ctx, "wf_workflow", workflowID, snow.Query{})
	if err != nil {
		return nil, err
	}
	return JSONResult(map[string]any{
		"success": true,
		"message": "Retrieved workflow: " + record["name"],
		"data":    record,
	})
}

// User tools

func (s *Server) toolCreateUser(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	userName := getString(args, "user_name", "")
	first := getString(args, "first_name", "")
	last := getString(args, "last_name", "")
	if userName == "" || first == "" || last == "" {
		return nil, fmt.Errorf("user_name, first_name and last_name are required")
	}

	body := map[string]any{
		"user_name":  userName,
		"first_name": first,
		"last_name":  last,
	}
	for _, field := range []string{"email", "department"} {
		if v := getString(args, field, ""); v != "" {
			body[field] = v
		}
	}

	record, err := s.client.Create(ctx, "sys_user", body)
	if err != nil {
		return nil, err
	}
	return JSONResult(map[string]any{
		"success": true,
		"message": "Created user: " + record["user_name"],
		"data":    record,
	})
}

func (s *Server) toolGetUser(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	if sysID := getString(args, "user_id", ""); sysID != "" {
		record, err := s.client.Get(ctx, "sys_user", sysID, snow.Query{})
		if err != nil {
			return nil, err
		}
		return JSONResult(map[string]any{"success": true, "data": record})
	}

	q := snow.Query{Limit: 1}
	switch {
	case getString(args, "user_name", "") != "":
		q = q.Where("user_name", "=", getString(args, "user_name", ""))
	case getString(args, "email", "") != "":
		q = q.Where("email", "=", getString(args, "email", ""))
	default:
		return nil, fmt.Errorf("one of user_id, user_name or email is required")
	}

	records, err := s.client.List(ctx, "sys_user", q)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("user not found")
	}
	return JSONResult(map[string]any{"success": true, "data": records[0]})
}

func (s *Server) toolListUsers(ctx context.Context, args map[string]any) (*ToolCallResult, error) {
	q := snow.Query{
		Fields: []string{"sys_id", "user_name", "first_name", "last_name", "email", "department", "active"},
		Limit:  getInt(args, "limit", 50),
	}
	if getBool(args, "active", true) {
		q = q.Where("active", "=", "true")
	}
	if text := getString(args, "query", ""); text != "" {
		q.Conditions = append(q.Conditions, "nameLIKE"+text+"^ORuser_nameLIKE"+text)
	}

	records, err := s.client.List(ctx, "sys_user", q)
	if err != nil {
		return nil, err
	}
	return JSONResult(map[string]any{
		"success": true,
		"message": fmt.Sprintf("Found %d users", len(records)),
		"users":   records,
	})
}
