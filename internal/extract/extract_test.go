package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ledongthuc/pdf"
)

func TestDecodeRun(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "Senior Engineer", "Senior Engineer"},
		{"percent encoded", "Caf%C3%A9", "Café"},
		{"literal percent", "100% remote", "100% remote"},
		{"truncated escape", "growth %2", "growth %2"},
		{"invalid utf-8 falls back to latin-1", "caf%E9", "café"},
		{"legacy unicode escape", "%u00E9cole", "école"},
		{"surrogate pair", "%uD83D%uDE80 launch", "🚀 launch"},
		{"mixed good and bad", "50%%20off", "50% off"},
		{"plus is literal", "C++", "C++"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeRun(tt.in); got != tt.want {
				t.Errorf("decodeRun(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func glyphs(s string, x, y, size float64, font string) []pdf.Text {
	out := make([]pdf.Text, 0, len(s))
	for _, r := range s {
		out = append(out, pdf.Text{Font: font, FontSize: size, X: x, Y: y, W: size * 0.5, S: string(r)})
		x += size * 0.5
	}
	return out
}

func TestGroupRuns(t *testing.T) {
	t.Run("one line one font", func(t *testing.T) {
		got := groupRuns(glyphs("Resume", 10, 700, 12, "Helvetica"))
		if len(got) != 1 || got[0] != "Resume" {
			t.Errorf("groupRuns() = %q, want [Resume]", got)
		}
	})

	t.Run("new line starts a run", func(t *testing.T) {
		in := append(glyphs("Jane", 10, 700, 12, "Helvetica"), glyphs("Doe", 10, 680, 12, "Helvetica")...)
		got := groupRuns(in)
		if len(got) != 2 || got[0] != "Jane" || got[1] != "Doe" {
			t.Errorf("groupRuns() = %q, want [Jane Doe]", got)
		}
	})

	t.Run("font change starts a run", func(t *testing.T) {
		in := append(glyphs("Skills", 10, 700, 12, "Helvetica-Bold"), glyphs("Go", 46, 700, 12, "Helvetica")...)
		got := groupRuns(in)
		if len(got) != 2 {
			t.Errorf("groupRuns() = %q, want 2 runs", got)
		}
	})

	t.Run("wide gap starts a run", func(t *testing.T) {
		in := append(glyphs("2019", 10, 700, 10, "Helvetica"), glyphs("2023", 300, 700, 10, "Helvetica")...)
		got := groupRuns(in)
		if len(got) != 2 || got[1] != "2023" {
			t.Errorf("groupRuns() = %q, want [2019 2023]", got)
		}
	})

	t.Run("empty glyphs are skipped", func(t *testing.T) {
		if got := groupRuns([]pdf.Text{{S: ""}}); len(got) != 0 {
			t.Errorf("groupRuns() = %q, want none", got)
		}
	})
}

func TestAssemble(t *testing.T) {
	pages := [][]string{
		{"Jane", "Doe"},
		{},
		{"Caf%C3%A9"},
	}
	want := "Jane Doe Café "
	if got := assemble(pages); got != want {
		t.Errorf("assemble() = %q, want %q", got, want)
	}

	if got := assemble(nil); got != "" {
		t.Errorf("assemble(nil) = %q, want empty", got)
	}
}

func TestExtractRejectsNonPDF(t *testing.T) {
	e := New(nil)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrNotPDF},
		{"plain text", []byte("this is not a pdf"), ErrNotPDF},
		{"png header", []byte("\x89PNG\r\n\x1a\n...."), ErrNotPDF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Extract(context.Background(), tt.data)
			var perr *DocumentParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Extract() error = %v, want *DocumentParseError", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Extract() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExtractCorruptPDF(t *testing.T) {
	e := New(nil)
	data := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog\ngarbage without end")

	_, err := e.Extract(context.Background(), data)
	var perr *DocumentParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Extract() error = %v, want *DocumentParseError", err)
	}
}

func TestDocumentParseErrorMessage(t *testing.T) {
	cause := errors.New("bad xref")
	err := &DocumentParseError{Page: 3, Err: cause}
	if !errors.Is(err, cause) {
		t.Error("DocumentParseError should unwrap to its cause")
	}
	if got := err.Error(); got != "failed to parse document (page 3): bad xref" {
		t.Errorf("Error() = %q", got)
	}
}

// minimalPDF builds a one-page PDF whose page content stream is content,
// with a correct cross-reference table.
func minimalPDF(content string) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

const resumeContent = `BT /F1 12 Tf 72 720 Td (Jane Doe) Tj ET
BT /F1 12 Tf 72 700 Td (Engineer) Tj ET
BT /F1 12 Tf 72 680 Td (100%) Tj ET`

func TestExtract(t *testing.T) {
	e := New(nil)

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"text runs in order", resumeContent, "Jane Doe Engineer 100% "},
		{"no text runs", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Extract(context.Background(), minimalPDF(tt.content))
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).Extract(ctx, minimalPDF(resumeContent))
	var perr *DocumentParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Extract() error = %v, want *DocumentParseError", err)
	}
	if perr.Page != 1 {
		t.Errorf("Page = %d, want 1", perr.Page)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Extract() error = %v, want context.Canceled", err)
	}
}
