// Package export renders the block library as a spreadsheet.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Julien-ser/ResumeWorthy/internal/blocks"
)

// ContentType is the media type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const sheet = "Blocks"

var headers = []string{
	"Created At", "Type", "Title", "Organization", "Location", "Dates",
	"Skill", "Proficiency", "Bullets", "Tags", "Owner", "ID",
}

// Lister is the read side of a block store.
type Lister interface {
	ListBlocks(ctx context.Context) ([]blocks.Block, error)
}

// Filter narrows an export. Zero values match everything.
type Filter struct {
	OwnerID string
	Type    blocks.Type
}

// Match reports whether b passes the filter.
func (f Filter) Match(b blocks.Block) bool {
	return (f.OwnerID == "" || b.OwnerID == f.OwnerID) && (f.Type == "" || b.Type == f.Type)
}

// Service produces XLSX workbooks from a store.
type Service struct {
	store  Lister
	logger *slog.Logger
}

func NewService(store Lister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// BlocksXLSX returns a workbook with one row per block, newest first.
func (s *Service) BlocksXLSX(ctx context.Context, filter Filter) ([]byte, error) {
	start := time.Now()

	all, err := s.store.ListBlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, style)
	}

	row := 2
	for _, b := range all {
		if !filter.Match(b) {
			continue
		}
		values := []any{
			createdAt(b.CreatedAt),
			string(b.Type),
			b.Content.Title,
			b.Content.Company,
			b.Content.Location,
			b.Content.DateRange,
			b.Content.SkillName,
			b.Content.Proficiency,
			strings.Join(b.Content.DescriptionBullets, "\n"),
			strings.Join(b.Tags, ", "),
			b.OwnerID,
			b.ID,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 20)
	_ = f.SetColWidth(sheet, "B", "B", 12)
	_ = f.SetColWidth(sheet, "C", "D", 28)
	_ = f.SetColWidth(sheet, "E", "H", 16)
	_ = f.SetColWidth(sheet, "I", "I", 60)
	_ = f.SetColWidth(sheet, "J", "J", 24)
	_ = f.SetColWidth(sheet, "K", "L", 38)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", row-2,
		"owner_id", filter.OwnerID,
		"type", filter.Type,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func createdAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}
