package defra

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// CreateMany inserts docs into collection with a single create mutation and
// returns the created documents with returnFields (plus _docID) selected.
func (c *Client) CreateMany(ctx context.Context, collection string, docs []map[string]any, returnFields ...string) ([]map[string]any, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	mutation, err := BuildCreateMany(collection, docs, returnFields...)
	if err != nil {
		return nil, err
	}

	data, err := c.Query(ctx, mutation, nil)
	if err != nil {
		return nil, fmt.Errorf("create_%s: %w", collection, err)
	}

	items, ok := data["create_"+collection].([]any)
	if !ok {
		return nil, fmt.Errorf("create_%s: unexpected response shape", collection)
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// BuildCreateMany renders the create mutation for docs.
func BuildCreateMany(collection string, docs []map[string]any, returnFields ...string) (string, error) {
	inputs := make([]string, len(docs))
	for i, doc := range docs {
		in, err := encodeObject(doc)
		if err != nil {
			return "", fmt.Errorf("document %d: %w", i, err)
		}
		inputs[i] = in
	}

	fields := append([]string{"_docID"}, returnFields...)
	return fmt.Sprintf("mutation { create_%s(input: [%s]) { %s } }",
		collection, strings.Join(inputs, ", "), strings.Join(fields, " ")), nil
}

// encodeObject writes m as a GraphQL input object literal with sorted keys.
func encodeObject(m map[string]any) (string, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, err := encodeValue(m[k])
		if err != nil {
			return "", fmt.Errorf("field %s: %w", k, err)
		}
		parts = append(parts, k+": "+v)
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

func encodeValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "null", nil
	case string:
		return quote(val)
	case time.Time:
		return quote(val.UTC().Format(time.RFC3339Nano))
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case []string:
		items := make([]any, len(val))
		for i, s := range val {
			items[i] = s
		}
		return encodeList(items)
	case []any:
		return encodeList(val)
	case map[string]any:
		return encodeObject(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return quote(string(b))
	}
}

func encodeList(items []any) (string, error) {
	parts := make([]string, len(items))
	for i, item := range items {
		s, err := encodeValue(item)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}

// quote produces a GraphQL string literal; JSON string escaping is compatible.
func quote(s string) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
