// Package extract turns a PDF byte stream into the plain text the structuring
// step feeds to the model.
//
// pdfcpu validates the container and counts pages; ledongthuc/pdf walks each
// page's content stream and yields positioned glyphs, which are regrouped into
// text runs. Every run is appended to the output followed by a single space,
// in page order and then content-stream order.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// MediaTypePDF is the only document type the extractor accepts.
const MediaTypePDF = "application/pdf"

// headerWindow is how far into the stream the %PDF- marker may appear.
const headerWindow = 1024

// PDFExtractor extracts text from PDF documents.
type PDFExtractor struct {
	logger *slog.Logger
}

// New creates a PDF extractor. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{logger: logger}
}

// pdfcpu mutates the configuration it is handed, so every call gets its own.
func relaxedConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Extract returns the text of every run in the document, each followed by a
// single space. A document with no text yields "" and a nil error.
// Any failure is a *DocumentParseError.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	start := time.Now()

	if !looksLikePDF(data) {
		return "", &DocumentParseError{Err: ErrNotPDF}
	}

	pageCount, err := e.validate(data)
	if err != nil {
		return "", &DocumentParseError{Err: err}
	}

	pages, err := decodePages(ctx, data)
	if err != nil {
		return "", err
	}

	text := assemble(pages)
	e.logger.Debug("extract.ok",
		"pages", pageCount,
		"decoded_pages", len(pages),
		"chars", len(text),
		"duration", time.Since(start),
	)
	return text, nil
}

func (e *PDFExtractor) validate(data []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("validator panic: %v", r)
		}
	}()

	if err := api.Validate(bytes.NewReader(data), relaxedConfig()); err != nil {
		return 0, fmt.Errorf("invalid pdf: %w", err)
	}
	n, err = api.PageCount(bytes.NewReader(data), relaxedConfig())
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return n, nil
}

// decodePages returns the raw (still percent-encoded) run strings of every page.
// Cancellation is checked between pages. The decoder panics on some malformed content streams; those panics surface as
// a DocumentParseError for the page being read.
func decodePages(ctx context.Context, data []byte) (pages [][]string, err error) {
	page := 0
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = &DocumentParseError{Page: page, Err: fmt.Errorf("decoder panic: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &DocumentParseError{Err: err}
	}

	n := reader.NumPage()
	pages = make([][]string, 0, n)
	for page = 1; page <= n; page++ {
		if err := ctx.Err(); err != nil {
			return nil, &DocumentParseError{Page: page, Err: err}
		}
		p := reader.Page(page)
		if p.V.IsNull() {
			continue
		}
		pages = append(pages, groupRuns(p.Content().Text))
	}
	return pages, nil
}

// assemble decodes every run and joins them in order, one trailing space per run.
func assemble(pages [][]string) string {
	var sb strings.Builder
	for _, runs := range pages {
		for _, run := range runs {
			sb.WriteString(decodeRun(run))
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func looksLikePDF(data []byte) bool {
	window := data
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	return bytes.Contains(window, []byte("%PDF-"))
}
