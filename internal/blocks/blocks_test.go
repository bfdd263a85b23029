package blocks

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseType(t *testing.T) {
	for _, typ := range Types {
		got, err := ParseType(string(typ))
		if err != nil {
			t.Fatalf("ParseType(%q) error = %v", typ, err)
		}
		if got != typ {
			t.Errorf("ParseType(%q) = %q", typ, got)
		}
	}

	if _, err := ParseType("hobby"); err == nil {
		t.Error("ParseType(hobby) expected error, got nil")
	}
}

func TestFromCandidate(t *testing.T) {
	t.Run("full block", func(t *testing.T) {
		var v any
		raw := `{
			"type": "experience",
			"content": {
				"title": "Founding Engineer",
				"company": "Resumeworthy",
				"location": "Remote",
				"date_range": "2023 - Present",
				"description_bullets": ["Built the ingest pipeline", "Shipped v1"]
			},
			"tags": ["Go", "Startup"],
			"user_id": "someone-else"
		}`
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		b, err := FromCandidate(v)
		if err != nil {
			t.Fatalf("FromCandidate() error = %v", err)
		}
		if b.Type != TypeExperience {
			t.Errorf("Type = %q, want experience", b.Type)
		}
		if b.Content.Company != "Resumeworthy" {
			t.Errorf("Company = %q", b.Content.Company)
		}
		if len(b.Content.DescriptionBullets) != 2 {
			t.Errorf("DescriptionBullets = %v", b.Content.DescriptionBullets)
		}
		if b.OwnerID != "" {
			t.Errorf("OwnerID = %q, owner must not come from candidate", b.OwnerID)
		}
		if len(b.Tags) != 2 || b.Tags[0] != "Go" {
			t.Errorf("Tags = %v", b.Tags)
		}
	})

	t.Run("organization and school fall back to company", func(t *testing.T) {
		tests := []struct {
			name string
			key  string
		}{
			{"organization", "organization"},
			{"school", "school"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				v := map[string]any{
					"type":    "education",
					"content": map[string]any{tt.key: "MIT"},
				}
				b, err := FromCandidate(v)
				if err != nil {
					t.Fatalf("FromCandidate() error = %v", err)
				}
				if b.Content.Company != "MIT" {
					t.Errorf("Company = %q, want MIT", b.Content.Company)
				}
			})
		}
	})

	t.Run("coerces loose shapes", func(t *testing.T) {
		v := map[string]any{
			"type":  "Skill",
			"tags":  "backend",
			"title": "Languages",
			"description_bullets": []any{
				"Go", 3.5, nil, map[string]any{"x": 1},
			},
		}
		b, err := FromCandidate(v)
		if err != nil {
			t.Fatalf("FromCandidate() error = %v", err)
		}
		if b.Type != TypeSkill {
			t.Errorf("Type = %q, want skill", b.Type)
		}
		if b.Content.Title != "Languages" {
			t.Errorf("Title = %q", b.Content.Title)
		}
		if len(b.Tags) != 1 || b.Tags[0] != "backend" {
			t.Errorf("Tags = %v", b.Tags)
		}
		want := []string{"Go", "3.5"}
		if len(b.Content.DescriptionBullets) != len(want) {
			t.Fatalf("DescriptionBullets = %v, want %v", b.Content.DescriptionBullets, want)
		}
		for i := range want {
			if b.Content.DescriptionBullets[i] != want[i] {
				t.Errorf("DescriptionBullets[%d] = %q, want %q", i, b.Content.DescriptionBullets[i], want[i])
			}
		}
	})

	t.Run("unknown type is kept", func(t *testing.T) {
		b, err := FromCandidate(map[string]any{"type": "hobby"})
		if err != nil {
			t.Fatalf("FromCandidate() error = %v", err)
		}
		if b.Type != "hobby" {
			t.Errorf("Type = %q, want hobby", b.Type)
		}
		if b.Tags == nil {
			t.Error("Tags should be an empty slice, not nil")
		}
	})

	t.Run("non-object", func(t *testing.T) {
		_, err := FromCandidate("just a string")
		if !errors.Is(err, ErrNotObject) {
			t.Fatalf("FromCandidate() error = %v, want ErrNotObject", err)
		}
	})
}

func TestFromCandidates(t *testing.T) {
	values := []any{
		map[string]any{"type": "skill"},
		"stray",
		42.0,
		map[string]any{"type": "summary"},
	}
	got, dropped := FromCandidates(values)
	if len(got) != 2 {
		t.Errorf("len(blocks) = %d, want 2", len(got))
	}
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"type":"skill","content":{"skill_name":"Go"},"tags":["lang"]}`, false},
		{"unknown type", `{"type":"hobby","content":{}}`, true},
		{"missing content", `{"type":"skill"}`, true},
		{"bullets not strings", `{"type":"project","content":{"description_bullets":[1,2]}}`, true},
		{"not an object", `["skill"]`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v any
			if err := json.Unmarshal([]byte(tt.raw), &v); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			err := Validate(v)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateBlock(t *testing.T) {
	b := Block{
		Type:    TypeExperience,
		Content: Content{Title: "Engineer", Company: "Acme"},
	}
	if err := ValidateBlock(b); err != nil {
		t.Fatalf("ValidateBlock() error = %v", err)
	}

	b.Type = "hobby"
	if err := ValidateBlock(b); err == nil {
		t.Fatal("ValidateBlock(hobby) expected error, got nil")
	}
}

func TestBlockLabel(t *testing.T) {
	tests := []struct {
		block Block
		want  string
	}{
		{Block{Type: TypeExperience, Content: Content{Title: "Engineer", Company: "Acme"}}, "Engineer @ Acme"},
		{Block{Type: TypeSkill, Content: Content{SkillName: "Go"}}, "Go"},
		{Block{Type: TypeSummary}, "summary"},
	}
	for _, tt := range tests {
		if got := tt.block.Label(); got != tt.want {
			t.Errorf("Label() = %q, want %q", got, tt.want)
		}
	}
}

func TestBlockJSONCreatedAt(t *testing.T) {
	unsaved := Block{OwnerID: "owner", Type: TypeSkill, Tags: []string{}}
	raw, err := json.Marshal(unsaved)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(raw), "created_at") {
		t.Errorf("unsaved block JSON = %s, want no created_at", raw)
	}

	saved := unsaved
	saved.CreatedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	raw, err = json.Marshal(saved)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(raw), `"created_at":"2025-03-01T12:00:00Z"`) {
		t.Errorf("saved block JSON = %s", raw)
	}
}
