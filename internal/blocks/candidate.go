package blocks

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Candidate is an untyped block record as produced by a language model.
// Nothing about its shape is guaranteed.
type Candidate = map[string]any

// ErrNotObject is returned when a candidate value is not a JSON object.
var ErrNotObject = errors.New("candidate is not an object")

// companyKeys are the keys models use for the organization a block belongs to,
// in order of preference.
var companyKeys = []string{"company", "organization", "organisation", "school", "institution"}

// FromCandidate converts an untyped candidate into a Block without validating it.
// Fields with unexpected types are coerced where a sensible string form exists
// and ignored otherwise. Any owner-like field in the candidate is ignored; the
// owner is assigned by the caller.
func FromCandidate(v any) (Block, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Block{}, fmt.Errorf("%w: got %T", ErrNotObject, v)
	}

	b := Block{
		Type: Type(strings.ToLower(strings.TrimSpace(scalarString(m["type"])))),
		Tags: stringList(m["tags"]),
	}

	content, _ := m["content"].(map[string]any)
	if content == nil {
		// Some models flatten the content fields into the block itself.
		content = m
	}

	b.Content = Content{
		Title:              scalarString(content["title"]),
		Company:            firstString(content, companyKeys),
		Location:           scalarString(content["location"]),
		DateRange:          scalarString(content["date_range"]),
		DescriptionBullets: stringList(content["description_bullets"]),
		SkillName:          scalarString(content["skill_name"]),
		Proficiency:        scalarString(content["proficiency"]),
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	return b, nil
}

// FromCandidates converts every candidate, skipping values that are not objects.
// The number of skipped values is returned alongside the blocks.
func FromCandidates(values []any) ([]Block, int) {
	out := make([]Block, 0, len(values))
	dropped := 0
	for _, v := range values {
		b, err := FromCandidate(v)
		if err != nil {
			dropped++
			continue
		}
		out = append(out, b)
	}
	return out, dropped
}

func firstString(m map[string]any, keys []string) string {
	for _, k := range keys {
		if s := scalarString(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// scalarString renders a JSON scalar as a string. Objects, arrays and null
// yield the empty string.
func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// stringList accepts an array of scalars or a single scalar.
func stringList(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		if s := scalarString(val); s != "" {
			return []string{s}
		}
		return nil
	}
}
