package sanitize

import (
	"errors"
	"reflect"
	"testing"
)

func TestSanitizeShapes(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantLen int
	}{
		{"bare array", `[{"type":"skill"},{"type":"summary"}]`, 2},
		{"fenced array", "```json\n[{\"type\":\"skill\"}]\n```", 1},
		{"fence without language", "```\n[]\n```", 0},
		{"blocks wrapper", `{"blocks":[{"type":"project"},{"type":"education"},{"type":"skill"}]}`, 3},
		{"single object", `{"type":"summary","content":{"title":"Profile"}}`, 1},
		{"blocks not a list", `{"blocks":{"type":"skill"}}`, 1},
		{"scalar", `42`, 1},
		{"surrounding whitespace", "\n\n  [{}]  \n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize(tt.raw)
			if err != nil {
				t.Fatalf("Sanitize() error = %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len(Sanitize()) = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestSanitizeSingleObjectIsWrapped(t *testing.T) {
	got, err := Sanitize(`{"type":"summary"}`)
	if err != nil {
		t.Fatalf("Sanitize() error = %v", err)
	}
	want := []any{map[string]any{"type": "summary"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sanitize() = %#v, want %#v", got, want)
	}
}

func TestSanitizeEmptyBlocksKeyWrapsObject(t *testing.T) {
	for _, raw := range []string{
		`{"blocks":null,"type":"summary"}`,
		`{"blocks":false,"type":"summary"}`,
		`{"blocks":0,"type":"summary"}`,
		`{"blocks":"","type":"summary"}`,
	} {
		t.Run(raw, func(t *testing.T) {
			got, err := Sanitize(raw)
			if err != nil {
				t.Fatalf("Sanitize() error = %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("len(Sanitize()) = %d, want 1", len(got))
			}
			obj, ok := got[0].(map[string]any)
			if !ok || obj["type"] != "summary" {
				t.Errorf("Sanitize() = %#v, want the whole object wrapped", got)
			}
		})
	}

	t.Run("empty list stays empty", func(t *testing.T) {
		got, err := Sanitize(`{"blocks":[]}`)
		if err != nil {
			t.Fatalf("Sanitize() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("len(Sanitize()) = %d, want 0", len(got))
		}
	})
}

func TestSanitizeMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"only fences", "```json\n```"},
		{"prose", "Sure! Here are your blocks:"},
		{"truncated", `[{"type":"skill"`},
		{"trailing comma", `[{"type":"skill"},]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sanitize(tt.raw)
			var sv *SchemaViolationError
			if !errors.As(err, &sv) {
				t.Fatalf("Sanitize() error = %v, want *SchemaViolationError", err)
			}
			if sv.Raw != tt.raw {
				t.Errorf("Raw = %q, want %q", sv.Raw, tt.raw)
			}
		})
	}
}

func TestSanitizeIdempotentOnCleanInput(t *testing.T) {
	raw := `[{"type":"skill","content":{"skill_name":"Go"},"tags":["lang"]}]`
	if StripFences(raw) != raw {
		t.Fatalf("StripFences() changed clean input")
	}
	a, err := Sanitize(raw)
	if err != nil {
		t.Fatalf("Sanitize() error = %v", err)
	}
	b, err := Sanitize("```json\n" + raw + "\n```")
	if err != nil {
		t.Fatalf("Sanitize() error = %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("fenced and unfenced results differ: %#v vs %#v", a, b)
	}
}

func TestStripFencesInsideStrings(t *testing.T) {
	// Markers are stripped textually, even inside values.
	got := StripFences("[\"use ```json blocks\"]")
	if got != `["use  blocks"]` {
		t.Errorf("StripFences() = %q", got)
	}
}

func TestStrict(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		raw := `[{"type":"experience","content":{"title":"Engineer","company":"Acme","description_bullets":["Built things"]},"tags":["go"]}]`
		got, err := Strict(raw)
		if err != nil {
			t.Fatalf("Strict() error = %v", err)
		}
		if len(got) != 1 {
			t.Errorf("len(Strict()) = %d, want 1", len(got))
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		raw := `[{"type":"skill","content":{}},{"type":"hobby","content":{}}]`
		_, err := Strict(raw)
		var sv *SchemaViolationError
		if !errors.As(err, &sv) {
			t.Fatalf("Strict() error = %v, want *SchemaViolationError", err)
		}
		if sv.Index != 2 {
			t.Errorf("Index = %d, want 2", sv.Index)
		}
	})

	t.Run("permissive keeps unknown type", func(t *testing.T) {
		if _, err := Sanitize(`[{"type":"hobby"}]`); err != nil {
			t.Fatalf("Sanitize() error = %v", err)
		}
	})
}

func TestFor(t *testing.T) {
	raw := `[{"type":"hobby"}]`
	if _, err := For(false)(raw); err != nil {
		t.Errorf("For(false)() error = %v", err)
	}
	if _, err := For(true)(raw); err == nil {
		t.Error("For(true)() expected error, got nil")
	}
}
