package mcp

// ToolRegistry contains all available MCP tools for SnowGate.
var ToolRegistry = []Tool{
	// Catalog optimization engine
	{
		Name:        "analyze_usage",
		Description: "Compute per-item usage metrics (order counts, abandonment rate, fulfillment times, approval rate) for a time window.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"time_window": {
					Type:        "string",
					Description: "Analysis window",
					Enum:        []string{"last_7_days", "last_30_days", "last_90_days", "last_year"},
					Default:     "last_90_days",
				},
				"from": {
					Type:        "string",
					Description: "Explicit window start (YYYY-MM-DD or RFC 3339); overrides time_window when paired with 'to'",
				},
				"to": {
					Type:        "string",
					Description: "Explicit window end (YYYY-MM-DD or RFC 3339)",
				},
				"category_id": {
					Type:        "string",
					Description: "Restrict the analysis to one category",
				},
				"include_inactive": {
					Type:        "boolean",
					Description: "Emit zero-count snapshots for items without activity",
					Default:     false,
				},
			},
		},
	},
	{
		Name:        "get_optimization_recommendations",
		Description: "Get ranked recommendations for optimizing the service catalog, merged from usage rules and structural analysis.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"category_id": {
					Type:        "string",
					Description: "Filter by category ID",
				},
				"time_window": {
					Type:        "string",
					Description: "Usage window feeding the rules",
					Enum:        []string{"last_7_days", "last_30_days", "last_90_days", "last_year"},
					Default:     "last_90_days",
				},
				"from": {
					Type:        "string",
					Description: "Explicit window start (YYYY-MM-DD or RFC 3339); overrides time_window when paired with 'to'",
				},
				"to": {
					Type:        "string",
					Description: "Explicit window end (YYYY-MM-DD or RFC 3339)",
				},
				"recommendation_types": {
					Type:        "array",
					Description: "Rule families to include; empty means all",
					Items: &Property{
						Type: "string",
						Enum: []string{"inactive_items", "low_usage", "high_abandonment", "slow_fulfillment", "description_quality"},
					},
				},
			},
		},
	},
	{
		Name:        "analyze_catalog_structure",
		Description: "Inspect the category tree and item set for structural defects: size imbalance, deep nesting, naming drift, near-duplicates, orphaned categories.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"include_inactive": {
					Type:        "boolean",
					Description: "Whether to include inactive categories and items",
					Default:     false,
				},
			},
		},
	},

	// Catalog records
	{
		Name:        "list_catalog_items",
		Description: "List service catalog items with optional category and text filters.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"category_id": {
					Type:        "string",
					Description: "Filter by category ID",
				},
				"query": {
					Type:        "string",
					Description: "Match against item names and descriptions",
				},
				"include_inactive": {
					Type:        "boolean",
					Description: "Include inactive items",
					Default:     false,
				},
				"limit": {
					Type:        "integer",
					Description: "Maximum number of items to return (default 50)",
					Default:     50,
				},
				"offset": {
					Type:        "integer",
					Description: "Offset for pagination",
					Default:     0,
				},
			},
		},
	},
	{
		Name:        "get_catalog_item",
		Description: "Get detailed information about a specific catalog item.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"item_id": {
					Type:        "string",
					Description: "Catalog item sys_id",
				},
			},
			Required: []string{"item_id"},
		},
	},
	{
		Name:        "update_catalog_item",
		Description: "Update a catalog item. Only the provided fields change.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"item_id": {
					Type:        "string",
					Description: "Catalog item sys_id to update",
				},
				"name":              {Type: "string", Description: "New name for the item"},
				"short_description": {Type: "string", Description: "New short description"},
				"description":       {Type: "string", Description: "New detailed description"},
				"category":          {Type: "string", Description: "New category ID"},
				"price":             {Type: "string", Description: "New price"},
				"active":            {Type: "boolean", Description: "Whether the item is active"},
				"order":             {Type: "integer", Description: "Display order in the category"},
			},
			Required: []string{"item_id"},
		},
	},
	{
		Name:        "list_catalog_categories",
		Description: "List service catalog categories.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"query": {
					Type:        "string",
					Description: "Match against category titles and descriptions",
				},
				"include_inactive": {
					Type:        "boolean",
					Description: "Include inactive categories",
					Default:     false,
				},
				"limit": {
					Type:        "integer",
					Description: "Maximum number of categories to return (default 50)",
					Default:     50,
				},
			},
		},
	},

	// Incident records
	{
		Name:        "create_incident",
		Description: "Create a new incident.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"short_description": {Type: "string", Description: "Incident summary"},
				"description":       {Type: "string", Description: "Detailed description"},
				"caller_id":         {Type: "string", Description: "User who reported the incident"},
				"category":          {Type: "string", Description: "Incident category"},
				"priority":          {Type: "string", Description: "Priority (1=critical .. 5=planning)"},
				"assignment_group":  {Type: "string", Description: "Group to assign the incident to"},
			},
			Required: []string{"short_description"},
		},
	},
	{
		Name:        "update_incident",
		Description: "Update an incident by sys_id or number.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"incident_id":       {Type: "string", Description: "Incident sys_id or number (INC...)"},
				"short_description": {Type: "string", Description: "New summary"},
				"description":       {Type: "string", Description: "New description"},
				"state":             {Type: "string", Description: "New state code"},
				"priority":          {Type: "string", Description: "New priority"},
				"assigned_to":       {Type: "string", Description: "User to assign the incident to"},
				"work_notes":        {Type: "string", Description: "Work note to append"},
			},
			Required: []string{"incident_id"},
		},
	},
	{
		Name:        "resolve_incident",
		Description: "Resolve an incident with a resolution code and notes.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"incident_id":      {Type: "string", Description: "Incident sys_id or number (INC...)"},
				"resolution_code":  {Type: "string", Description: "Close code"},
				"resolution_notes": {Type: "string", Description: "Close notes"},
			},
			Required: []string{"incident_id", "resolution_code", "resolution_notes"},
		},
	},
	{
		Name:        "list_incidents",
		Description: "List incidents with optional filters.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"state":       {Type: "string", Description: "Filter by state code"},
				"assigned_to": {Type: "string", Description: "Filter by assignee"},
				"category":    {Type: "string", Description: "Filter by category"},
				"limit": {
					Type:        "integer",
					Description: "Maximum number of incidents to return (default 20, max 100)",
					Default:     20,
				},
				"offset": {
					Type:        "integer",
					Description: "Offset for pagination",
					Default:     0,
				},
			},
		},
	},

	// Task records
	{
		Name:        "create_task",
		Description: "Create a generic task.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"short_description": {Type: "string", Description: "Task summary"},
				"description":       {Type: "string", Description: "Detailed description"},
				"priority":          {Type: "string", Description: "Priority (1=critical .. 5=planning)"},
				"assigned_to":       {Type: "string", Description: "User to assign the task to"},
				"assignment_group":  {Type: "string", Description: "Group to assign the task to"},
				"due_date":          {Type: "string", Description: "Due date (YYYY-MM-DD)"},
			},
			Required: []string{"short_description"},
		},
	},
	{
		Name:        "update_task",
		Description: "Update a task by sys_id or number.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"task_id":           {Type: "string", Description: "Task sys_id or number (TASK...)"},
				"short_description": {Type: "string", Description: "New summary"},
				"description":       {Type: "string", Description: "New description"},
				"state":             {Type: "string", Description: "New state code"},
				"priority":          {Type: "string", Description: "New priority"},
				"assigned_to":       {Type: "string", Description: "User to assign the task to"},
				"work_notes":        {Type: "string", Description: "Work note to append"},
			},
			Required: []string{"task_id"},
		},
	},
	{
		Name:        "list_tasks",
		Description: "List tasks with optional filters.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"state":       {Type: "string", Description: "Filter by state code"},
				"assigned_to": {Type: "string", Description: "Filter by assignee"},
				"limit": {
					Type:        "integer",
					Description: "Maximum number of tasks to return (default 20, max 100)",
					Default:     20,
				},
				"offset": {
					Type:        "integer",
					Description: "Offset for pagination",
					Default:     0,
				},
			},
		},
	},

	// Change requests
	{
		Name:        "create_change_request",
		Description: "Create a change request.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"short_description": {Type: "string", Description: "Change summary"},
				"description":       {Type: "string", Description: "Detailed description"},
				"type":              {Type: "string", Description: "Change type", Enum: []string{"normal", "standard", "emergency"}},
				"risk":              {Type: "string", Description: "Risk level"},
				"impact":            {Type: "string", Description: "Impact"},
				"assignment_group":  {Type: "string", Description: "Group to assign the change to"},
				"start_date":        {Type: "string", Description: "Planned start (YYYY-MM-DD HH:MM:SS)"},
				"end_date":          {Type: "string", Description: "Planned end (YYYY-MM-DD HH:MM:SS)"},
			},
			Required: []string{"short_description", "type"},
		},
	},
	{
		Name:        "update_change_request",
		Description: "Update a change request by sys_id or number.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"change_id":         {Type: "string", Description: "Change sys_id or number (CHG...)"},
				"short_description": {Type: "string", Description: "New summary"},
				"description":       {Type: "string", Description: "New description"},
				"state":             {Type: "string", Description: "New state code"},
				"risk":              {Type: "string", Description: "New risk level"},
				"impact":            {Type: "string", Description: "New impact"},
				"work_notes":        {Type: "string", Description: "Work note to append"},
			},
			Required: []string{"change_id"},
		},
	},
	{
		Name:        "list_change_requests",
		Description: "List change requests with optional filters.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"state":            {Type: "string", Description: "Filter by state code"},
				"type":             {Type: "string", Description: "Filter by change type"},
				"assignment_group": {Type: "string", Description: "Filter by assignment group"},
				"limit": {
					Type:        "integer",
					Description: "Maximum number of changes to return (default 20, max 100)",
					Default:     20,
				},
				"offset": {
					Type:        "integer",
					Description: "Offset for pagination",
					Default:     0,
				},
			},
		},
	},

	// Workflow records
	{
		Name:        "list_workflows",
		Description: "List workflow definitions.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"name": {Type: "string", Description: "Filter by name (contains)"},
				"active": {
					Type:        "boolean",
					Description: "Filter by active workflows only",
					Default:     true,
				},
				"limit": {
					Type:        "integer",
					Description: "Maximum number of workflows to return (default 20)",
					Default:     20,
				},
			},
		},
	},
	{
		Name:        "get_workflow",
		Description: "Get a workflow definition by sys_id.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"workflow_id": {Type: "string", Description: "Workflow sys_id"},
			},
			Required: []string{"workflow_id"},
		},
	},

	// User records
	{
		Name:        "create_user",
		Description: "Create a user record.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"user_name":  {Type: "string", Description: "Login name"},
				"first_name": {Type: "string", Description: "First name"},
				"last_name":  {Type: "string", Description: "Last name"},
				"email":      {Type: "string", Description: "Email address"},
				"department": {Type: "string", Description: "Department"},
			},
			Required: []string{"user_name", "first_name", "last_name"},
		},
	},
	{
		Name:        "get_user",
		Description: "Look up a user by sys_id, login, or email.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"user_id":   {Type: "string", Description: "User sys_id"},
				"user_name": {Type: "string", Description: "Login name"},
				"email":     {Type: "string", Description: "Email address"},
			},
		},
	},
	{
		Name:        "list_users",
		Description: "List users in the instance.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"query": {
					Type:        "string",
					Description: "Match against names and logins",
				},
				"active": {
					Type:        "boolean",
					Description: "Filter by active users only",
					Default:     true,
				},
				"limit": {
					Type:        "integer",
					Description: "Maximum number of users to return (default 50)",
					Default:     50,
				},
			},
		},
	},
}
