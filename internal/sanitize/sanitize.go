// Package sanitize turns a raw model reply into a list of candidate blocks.
//
// Models wrap JSON in markdown fences, return a bare object instead of an
// array, or nest the array under a "blocks" key. Sanitize strips the fences,
// parses the text once (no repair), and normalizes the three shapes into one
// list. It does not look inside the elements; Strict additionally validates
// each element against the block schema.
package sanitize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Julien-ser/ResumeWorthy/internal/blocks"
)

// fenceMarkers are removed wherever they appear, longest first.
var fenceMarkers = []string{"```json", "```"}

// Func is the shape shared by Sanitize and Strict.
type Func func(raw string) ([]any, error)

// Sanitize strips code fences, parses JSON and normalizes the result into a
// list. A parse failure is a *SchemaViolationError carrying the raw text.
func Sanitize(raw string) ([]any, error) {
	cleaned := StripFences(raw)

	var parsed any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, &SchemaViolationError{Raw: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	return Normalize(parsed), nil
}

// Strict is Sanitize followed by validation of every element against the
// block schema. The first violation fails the whole reply.
func Strict(raw string) ([]any, error) {
	items, err := Sanitize(raw)
	if err != nil {
		return nil, err
	}
	for i, item := range items {
		if err := blocks.Validate(item); err != nil {
			return nil, &SchemaViolationError{Raw: raw, Index: i + 1, Err: err}
		}
	}
	return items, nil
}

// For returns Strict when strict is set and Sanitize otherwise.
func For(strict bool) Func {
	if strict {
		return Strict
	}
	return Sanitize
}

// StripFences removes every markdown code fence marker and trims the result.
// Markers are removed textually, including ones inside string values.
func StripFences(s string) string {
	for _, m := range fenceMarkers {
		s = strings.ReplaceAll(s, m, "")
	}
	return strings.TrimSpace(s)
}

// Normalize maps a decoded JSON value onto a list of candidates:
//
//	[...]               -> as is
//	{"blocks": [...]}   -> the inner list
//	{"blocks": x}       -> [x]
//	{"blocks": null}    -> [value] (likewise false, 0 and "")
//	anything else       -> [value]
//
// The array check comes first.
func Normalize(v any) []any {
	switch val := v.(type) {
	case []any:
		return val
	case map[string]any:
		if inner, ok := val["blocks"]; ok && !falsy(inner) {
			if list, ok := inner.([]any); ok {
				return list
			}
			return []any{inner}
		}
		return []any{val}
	default:
		return []any{val}
	}
}

// falsy reports whether a decoded JSON value is null, false, zero or "".
func falsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case float64:
		return x == 0
	case string:
		return x == ""
	default:
		return false
	}
}
