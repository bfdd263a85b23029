package structuring

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubGenerator struct {
	reply string
	err   error

	calls      int
	lastSystem string
	lastUser   string
}

func (s *stubGenerator) Generate(_ context.Context, system, user string) (string, error) {
	s.calls++
	s.lastSystem = system
	s.lastUser = user
	return s.reply, s.err
}

func TestSystemPrompt(t *testing.T) {
	p := SystemPrompt()
	for _, want := range []string{
		"lossless data extraction engine",
		"'experience', 'education', 'project', 'skill', 'summary'",
		`"description_bullets": ["string"]`,
		"Output ONLY a raw JSON array.",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("SystemPrompt() missing %q", want)
		}
	}
}

func TestStructureSendsTextVerbatim(t *testing.T) {
	gen := &stubGenerator{reply: `[{"type":"summary"}]`}
	e := NewEngine(gen, nil)

	text := "Jane  Doe  Caf%C3%A9 \n Engineer "
	got, err := e.Structure(context.Background(), text)
	if err != nil {
		t.Fatalf("Structure() error = %v", err)
	}
	if got != gen.reply {
		t.Errorf("Structure() = %q, want raw reply", got)
	}
	if gen.calls != 1 {
		t.Errorf("calls = %d, want 1", gen.calls)
	}
	if gen.lastUser != UserPromptPrefix+"\n\n"+text {
		t.Errorf("user prompt = %q", gen.lastUser)
	}
	if gen.lastSystem != SystemPrompt() {
		t.Error("system prompt was not the instruction template")
	}
}

func TestStructureEmptyText(t *testing.T) {
	gen := &stubGenerator{reply: "[]"}
	e := NewEngine(gen, nil)
	if _, err := e.Structure(context.Background(), ""); err != nil {
		t.Fatalf("Structure() error = %v", err)
	}
	if gen.lastUser != UserPromptPrefix+"\n\n" {
		t.Errorf("user prompt = %q", gen.lastUser)
	}
}

func TestStructureFailures(t *testing.T) {
	boom := errors.New("503 service unavailable")

	tests := []struct {
		name    string
		gen     *stubGenerator
		wantErr error
	}{
		{"transport error", &stubGenerator{err: boom}, boom},
		{"empty reply", &stubGenerator{reply: ""}, ErrEmptyResponse},
		{"whitespace reply", &stubGenerator{reply: " \n\t "}, ErrEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tt.gen, nil)
			_, err := e.Structure(context.Background(), "text")

			var ie *InferenceError
			if !errors.As(err, &ie) {
				t.Fatalf("Structure() error = %v, want *InferenceError", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Structure() error = %v, want %v", err, tt.wantErr)
			}
			if tt.gen.calls != 1 {
				t.Errorf("calls = %d, want exactly 1 (no retry)", tt.gen.calls)
			}
		})
	}
}

func TestStructureNilGenerator(t *testing.T) {
	e := NewEngine(nil, nil)
	_, err := e.Structure(context.Background(), "text")
	var ie *InferenceError
	if !errors.As(err, &ie) {
		t.Fatalf("Structure() error = %v, want *InferenceError", err)
	}
}
