package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/Julien-ser/ResumeWorthy/internal/blocks"
	"github.com/Julien-ser/ResumeWorthy/internal/extract"
	"github.com/Julien-ser/ResumeWorthy/internal/providers"
	"github.com/Julien-ser/ResumeWorthy/internal/sanitize"
	"github.com/Julien-ser/ResumeWorthy/internal/store"
	"github.com/Julien-ser/ResumeWorthy/internal/structuring"
)

const owner = "fe99444d-be7f-421d-8868-28d6142f4a60"

type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) Extract(context.Context, []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeStructurer struct {
	reply    string
	err      error
	calls    int
	lastText string
}

func (f *fakeStructurer) Structure(_ context.Context, text string) (string, error) {
	f.calls++
	f.lastText = text
	return f.reply, f.err
}

type recordingInserter struct {
	err     error
	batches [][]blocks.Block
}

func (r *recordingInserter) InsertBlocks(_ context.Context, batch []blocks.Block) ([]blocks.Block, error) {
	r.batches = append(r.batches, batch)
	if r.err != nil {
		return nil, r.err
	}
	out := make([]blocks.Block, len(batch))
	for i, b := range batch {
		b.ID = "id"
		out[i] = b
	}
	return out, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPipeline(t *testing.T, ex Extractor, st Structurer, ins store.Inserter, sf sanitize.Func) *Pipeline {
	t.Helper()
	p, err := New(Config{Extractor: ex, Structurer: st, Store: ins, Sanitize: sf, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func TestIngest_Success(t *testing.T) {
	reply := "```json\n" + `[
		{"type":"experience","user_id":"attacker","content":{"title":"Founding Engineer","company":"Resumeworthy","description_bullets":["Built the ingestion pipeline"]},"tags":["go","go"]},
		{"type":"skill","content":{"skill_name":"Go"},"tags":[]},
		"stray string"
	]` + "\n```"
	ex := &fakeExtractor{text: "Jane Doe Founding Engineer "}
	st := &fakeStructurer{reply: reply}
	ins := &recordingInserter{}

	res, err := newPipeline(t, ex, st, ins, nil).Ingest(context.Background(), []byte("%PDF-"), owner)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if res.State != StateDone {
		t.Errorf("State = %s, want done", res.State)
	}
	if res.RequestID == "" {
		t.Error("RequestID not set")
	}
	if st.lastText != ex.text {
		t.Errorf("structurer got %q, want extracted text verbatim", st.lastText)
	}
	if len(ins.batches) != 1 {
		t.Fatalf("InsertBlocks called %d times, want 1", len(ins.batches))
	}
	batch := ins.batches[0]
	if len(batch) != 2 || res.Dropped != 1 {
		t.Fatalf("batch = %d blocks, dropped = %d, want 2 and 1", len(batch), res.Dropped)
	}
	for _, b := range batch {
		if b.OwnerID != owner {
			t.Errorf("OwnerID = %q, want %q", b.OwnerID, owner)
		}
	}
	if got := batch[0].Tags; len(got) != 2 {
		t.Errorf("duplicate tags collapsed: %v", got)
	}
	if len(res.Blocks) != 2 || res.Blocks[0].ID != "id" {
		t.Errorf("Blocks = %+v, want stored blocks", res.Blocks)
	}
	if res.TextLength != len(ex.text) {
		t.Errorf("TextLength = %d", res.TextLength)
	}
}

func TestIngest_EmptyResultStillInserts(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		reply string
	}{
		{"empty array", "some text ", "[]"},
		{"empty text", "", "[]"},
		{"empty blocks wrapper", "text", `{"blocks": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins := &recordingInserter{}
			st := &fakeStructurer{reply: tt.reply}
			res, err := newPipeline(t, &fakeExtractor{text: tt.text}, st, ins, nil).Ingest(context.Background(), nil, owner)
			if err != nil {
				t.Fatalf("Ingest() error = %v", err)
			}
			if st.calls != 1 {
				t.Errorf("structurer calls = %d, want 1", st.calls)
			}
			if len(ins.batches) != 1 || len(ins.batches[0]) != 0 {
				t.Errorf("batches = %v, want one empty batch", ins.batches)
			}
			if res.State != StateDone {
				t.Errorf("State = %s", res.State)
			}
		})
	}
}

func TestIngest_StageFailures(t *testing.T) {
	parseErr := &extract.DocumentParseError{Err: extract.ErrNotPDF}
	inferErr := &structuring.InferenceError{Err: errors.New("connection refused")}
	dbErr := errors.New("duplicate key")

	tests := []struct {
		name        string
		ex          *fakeExtractor
		st          *fakeStructurer
		ins         *recordingInserter
		wantStage   State
		wantTarget  any
		wantInserts int
		wantMsg     string
	}{
		{
			name:       "extract",
			ex:         &fakeExtractor{err: parseErr},
			st:         &fakeStructurer{},
			ins:        &recordingInserter{},
			wantStage:  StateExtracting,
			wantTarget: new(*extract.DocumentParseError),
			wantMsg:    "not a PDF",
		},
		{
			name:       "structure",
			ex:         &fakeExtractor{text: "t"},
			st:         &fakeStructurer{err: inferErr},
			ins:        &recordingInserter{},
			wantStage:  StateStructuring,
			wantTarget: new(*structuring.InferenceError),
			wantMsg:    "connection refused",
		},
		{
			name:       "sanitize",
			ex:         &fakeExtractor{text: "t"},
			st:         &fakeStructurer{reply: "Sure! Here you go: [oops"},
			ins:        &recordingInserter{},
			wantStage:  StateSanitizing,
			wantTarget: new(*sanitize.SchemaViolationError),
			wantMsg:    "not valid JSON",
		},
		{
			name:        "persist",
			ex:          &fakeExtractor{text: "t"},
			st:          &fakeStructurer{reply: `[{"type":"skill"}]`},
			ins:         &recordingInserter{err: dbErr},
			wantStage:   StatePersisting,
			wantTarget:  new(*PersistenceError),
			wantInserts: 1,
			wantMsg:     "duplicate key",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newPipeline(t, tt.ex, tt.st, tt.ins, nil).Ingest(context.Background(), []byte("x"), owner)
			if err == nil {
				t.Fatal("Ingest() expected error, got nil")
			}
			if res != nil {
				t.Errorf("Ingest() result = %+v, want nil on failure", res)
			}
			if !errors.As(err, tt.wantTarget) {
				t.Errorf("Ingest() error = %v, want %T", err, tt.wantTarget)
			}
			if stage, ok := Stage(err); !ok || stage != tt.wantStage {
				t.Errorf("Stage() = %s, %v, want %s", stage, ok, tt.wantStage)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error message %q does not include cause %q", err.Error(), tt.wantMsg)
			}
			if len(tt.ins.batches) != tt.wantInserts {
				t.Errorf("InsertBlocks calls = %d, want %d", len(tt.ins.batches), tt.wantInserts)
			}
		})
	}
}

func TestIngest_LaterStagesSkippedOnFailure(t *testing.T) {
	st := &fakeStructurer{reply: "[]"}
	ex := &fakeExtractor{err: &extract.DocumentParseError{Err: extract.ErrNotPDF}}
	_, _ = newPipeline(t, ex, st, &recordingInserter{}, nil).Ingest(context.Background(), nil, owner)
	if st.calls != 0 {
		t.Errorf("structurer called %d times after extraction failure", st.calls)
	}
}

func TestIngest_EmptyOwner(t *testing.T) {
	ex := &fakeExtractor{}
	_, err := newPipeline(t, ex, &fakeStructurer{}, &recordingInserter{}, nil).Ingest(context.Background(), nil, "")
	if !errors.Is(err, ErrEmptyOwner) {
		t.Errorf("Ingest() error = %v, want ErrEmptyOwner", err)
	}
	if ex.calls != 0 {
		t.Error("extraction ran without an owner")
	}
}

func TestIngest_StrictSanitizer(t *testing.T) {
	ins := &recordingInserter{}
	st := &fakeStructurer{reply: `[{"type":"hobby","content":{}}]`}

	_, err := newPipeline(t, &fakeExtractor{text: "t"}, st, ins, sanitize.For(true)).Ingest(context.Background(), nil, owner)
	var sv *sanitize.SchemaViolationError
	if !errors.As(err, &sv) {
		t.Fatalf("Ingest() error = %v, want *SchemaViolationError", err)
	}
	if len(ins.batches) != 0 {
		t.Error("strict violation still wrote blocks")
	}

	res, err := newPipeline(t, &fakeExtractor{text: "t"}, st, ins, sanitize.For(false)).Ingest(context.Background(), nil, owner)
	if err != nil {
		t.Fatalf("permissive Ingest() error = %v", err)
	}
	if res.Blocks[0].Type != "hobby" {
		t.Errorf("Type = %s, want unknown type kept", res.Blocks[0].Type)
	}
}

func TestIngest_WithProviderAndMemoryStore(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Latency = 0
	mock.ResponseText = `{"blocks":[{"type":"education","content":{"title":"BSc","school":"MIT"},"tags":["cs"]}]}`

	gen := providers.NewGenerator(mock, providers.GeneratorConfig{Temperature: structuring.Temperature, Logger: quietLogger()})
	engine := structuring.NewEngine(gen, quietLogger())
	mem := store.NewMemoryStore()

	p, err := New(Config{Extractor: &fakeExtractor{text: "BSc MIT "}, Structurer: engine, Store: mem, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	res, err := p.Ingest(context.Background(), nil, owner)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	req := mock.LastRequest()
	if req.Temperature != structuring.Temperature {
		t.Errorf("Temperature = %v, want %v", req.Temperature, structuring.Temperature)
	}
	if !strings.HasSuffix(req.Messages[1].Content, "BSc MIT ") {
		t.Errorf("user message = %q", req.Messages[1].Content)
	}

	listed, _ := mem.ListBlocks(context.Background())
	if len(listed) != 1 || listed[0].Content.Company != "MIT" || listed[0].ID != res.Blocks[0].ID {
		t.Errorf("stored = %+v", listed)
	}
}

func TestIngest_ExtractorRejectsNonPDF(t *testing.T) {
	ins := &recordingInserter{}
	st := &fakeStructurer{reply: "[]"}
	_, err := newPipeline(t, extract.New(quietLogger()), st, ins, nil).Ingest(context.Background(), []byte("hello"), owner)
	if !errors.Is(err, extract.ErrNotPDF) {
		t.Fatalf("Ingest() error = %v, want ErrNotPDF", err)
	}
	if st.calls != 0 || len(ins.batches) != 0 {
		t.Error("later stages ran after a parse failure")
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	if _, err := New(Config{Structurer: &fakeStructurer{}, Store: &recordingInserter{}}); err == nil {
		t.Error("New() without extractor expected error")
	}
	if _, err := New(Config{Extractor: &fakeExtractor{}, Store: &recordingInserter{}}); err == nil {
		t.Error("New() without structurer expected error")
	}
	if _, err := New(Config{Extractor: &fakeExtractor{}, Structurer: &fakeStructurer{}}); err == nil {
		t.Error("New() without store expected error")
	}
}

type retryingClient struct{ attempts int }

func (c *retryingClient) Name() string { return "retrying" }

func (c *retryingClient) Chat(_ context.Context, req *providers.ChatRequest) (*providers.ChatResult, error) {
	return &providers.ChatResult{
		Content:          `[{"type":"summary","content":{"title":"Profile"}}]`,
		Attempts:         c.attempts,
		PromptTokens:     40,
		CompletionTokens: 12,
		Provider:         "retrying",
		Success:          true,
	}, nil
}

func TestIngest_ReportsModelUsage(t *testing.T) {
	gen := providers.NewGenerator(&retryingClient{attempts: 3}, providers.GeneratorConfig{Logger: quietLogger()})
	ins := &recordingInserter{}
	p := newPipeline(t, &fakeExtractor{text: "Jane Doe"}, structuring.NewEngine(gen, quietLogger()), ins, nil)

	res, err := p.Ingest(context.Background(), []byte("%PDF-"), owner)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if res.LLM.Calls != 1 || res.LLM.Attempts != 3 {
		t.Errorf("LLM = %+v, want 1 call over 3 attempts", res.LLM)
	}
	if !res.LLM.Retried() {
		t.Error("Retried() = false, want true")
	}
	if res.LLM.PromptTokens != 40 || res.LLM.CompletionTokens != 12 {
		t.Errorf("tokens = %d/%d, want 40/12", res.LLM.PromptTokens, res.LLM.CompletionTokens)
	}
	if len(ins.batches) != 1 || len(res.Blocks) != 1 {
		t.Errorf("batches = %d, blocks = %d", len(ins.batches), len(res.Blocks))
	}
}

func TestIngest_UsageIsPerCall(t *testing.T) {
	gen := providers.NewGenerator(&retryingClient{attempts: 1}, providers.GeneratorConfig{Logger: quietLogger()})
	p := newPipeline(t, &fakeExtractor{text: "x"}, structuring.NewEngine(gen, quietLogger()), &recordingInserter{}, nil)

	for i := 0; i < 2; i++ {
		res, err := p.Ingest(context.Background(), []byte("%PDF-"), owner)
		if err != nil {
			t.Fatalf("Ingest() error = %v", err)
		}
		if res.LLM.Calls != 1 || res.LLM.Retried() {
			t.Errorf("run %d: LLM = %+v, want one unretried call", i, res.LLM)
		}
	}
}
