package defra

import (
	"context"
	"fmt"
	"strings"
)

// Sort directions for OrderBy.
const (
	ASC  = "ASC"
	DESC = "DESC"
)

// QueryBuilder builds a parameterized read query for one collection.
// Filter values always travel as variables, never inlined.
type QueryBuilder struct {
	collection string
	fields     []string
	filters    []filterDef
	order      string
	limit      int
	varIndex   int
}

type filterDef struct {
	field   string
	op      string
	varName string
	varType string
	value   any
}

// NewQuery starts a query that selects only _docID.
func NewQuery(collection string) *QueryBuilder {
	return &QueryBuilder{collection: collection, fields: []string{"_docID"}}
}

// Filter adds an equality filter.
func (q *QueryBuilder) Filter(field string, value any) *QueryBuilder {
	return q.addFilter(field, "_eq", inferGraphQLType(value), value)
}

// FilterIn matches any of values.
func (q *QueryBuilder) FilterIn(field string, values []string) *QueryBuilder {
	return q.addFilter(field, "_in", "[String!]", values)
}

func (q *QueryBuilder) addFilter(field, op, varType string, value any) *QueryBuilder {
	name := fmt.Sprintf("v%d", q.varIndex)
	q.varIndex++
	q.filters = append(q.filters, filterDef{field: field, op: op, varName: name, varType: varType, value: value})
	return q
}

// Fields replaces the selection set.
func (q *QueryBuilder) Fields(fields ...string) *QueryBuilder {
	q.fields = fields
	return q
}

// OrderBy sorts on field in direction (ASC or DESC).
func (q *QueryBuilder) OrderBy(field, direction string) *QueryBuilder {
	q.order = fmt.Sprintf("{%s: %s}", field, direction)
	return q
}

// Limit caps the number of returned documents.
func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.limit = n
	return q
}

// Build returns the query document and its variables.
func (q *QueryBuilder) Build() (string, map[string]any) {
	vars := make(map[string]any, len(q.filters))
	var defs, filters, args []string
	for _, f := range q.filters {
		defs = append(defs, fmt.Sprintf("$%s: %s", f.varName, f.varType))
		filters = append(filters, fmt.Sprintf("%s: {%s: $%s}", f.field, f.op, f.varName))
		vars[f.varName] = f.value
	}

	if len(filters) > 0 {
		args = append(args, fmt.Sprintf("filter: {%s}", strings.Join(filters, ", ")))
	}
	if q.order != "" {
		args = append(args, "order: "+q.order)
	}
	if q.limit > 0 {
		args = append(args, fmt.Sprintf("limit: %d", q.limit))
	}

	var b strings.Builder
	if len(defs) > 0 {
		fmt.Fprintf(&b, "query(%s) ", strings.Join(defs, ", "))
	}
	b.WriteString("{ ")
	b.WriteString(q.collection)
	if len(args) > 0 {
		fmt.Fprintf(&b, "(%s)", strings.Join(args, ", "))
	}
	fmt.Fprintf(&b, " { %s } }", strings.Join(q.fields, " "))
	return b.String(), vars
}

// Execute runs the query and returns the matching documents.
func (q *QueryBuilder) Execute(ctx context.Context, client *Client) ([]map[string]any, error) {
	query, vars := q.Build()
	data, err := client.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	items, _ := data[q.collection].([]any)
	docs := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			docs = append(docs, m)
		}
	}
	return docs, nil
}

func inferGraphQLType(v any) string {
	switch v.(type) {
	case int, int32, int64:
		return "Int"
	case float32, float64:
		return "Float"
	case bool:
		return "Boolean"
	default:
		return "String"
	}
}
