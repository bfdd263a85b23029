package extract

import (
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// baselineTolerance is the largest Y drift (in points) still treated as the same line.
	baselineTolerance = 0.5
	// maxGapRatio is the largest forward gap between glyphs, as a fraction of
	// the font size, that keeps them in one run.
	maxGapRatio = 0.3
	// maxBacktrackRatio bounds kerning that moves the pen left within a run.
	maxBacktrackRatio = 0.5
)

// groupRuns rebuilds text runs from the per-glyph stream ledongthuc/pdf emits.
// Glyphs stay in one run while they share baseline, font and size and follow
// each other closely. Content-stream order is preserved.
func groupRuns(glyphs []pdf.Text) []string {
	var (
		runs []string
		cur  strings.Builder
		prev pdf.Text
		open bool
	)
	flush := func() {
		if open && cur.Len() > 0 {
			runs = append(runs, cur.String())
		}
		cur.Reset()
		open = false
	}

	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		if open && !continues(prev, g) {
			flush()
		}
		cur.WriteString(g.S)
		prev = g
		open = true
	}
	flush()
	return runs
}

func continues(prev, next pdf.Text) bool {
	if prev.Font != next.Font || prev.FontSize != next.FontSize {
		return false
	}
	if math.Abs(prev.Y-next.Y) > baselineTolerance {
		return false
	}
	size := next.FontSize
	if size <= 0 {
		size = 1
	}
	gap := next.X - (prev.X + prev.W)
	return gap <= size*maxGapRatio && gap >= -size*maxBacktrackRatio
}
