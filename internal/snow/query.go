package snow

import (
	"net/url"
	"strconv"
	"strings"
)

// Query describes the sysparm_* parameters of a Table API list request.
type Query struct {
	// Conditions are joined with "^" (AND) into sysparm_query.
	Conditions []string
	// Fields limits the returned columns (sysparm_fields).
	Fields []string
	Limit  int
	Offset int
	// DisplayValue asks the instance to resolve reference fields to their
	// display values.
	DisplayValue bool
}

// Where appends an encoded condition, e.g. Where("active", "=", "true")
// or Where("category", "=", id). ServiceNow encodes equality as
// "field=value" inside sysparm_query.
func (q Query) Where(field, op, value string) Query {
	q.Conditions = append(q.Conditions, field+op+value)
	return q
}

// Values renders the query as URL parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	if len(q.Conditions) > 0 {
		v.Set("sysparm_query", strings.Join(q.Conditions, "^"))
	}
	if len(q.Fields) > 0 {
		v.Set("sysparm_fields", strings.Join(q.Fields, ","))
	}
	if q.Limit > 0 {
		v.Set("sysparm_limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("sysparm_offset", strconv.Itoa(q.Offset))
	}
	if q.DisplayValue {
		v.Set("sysparm_display_value", "true")
		v.Set("sysparm_exclude_reference_link", "true")
	}
	return v
}
