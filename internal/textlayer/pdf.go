package textlayer

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/clarencejohnson126/angebotsagent/internal/common"
)

func (l *Loader) loadPDF(ctx context.Context, path string) ([][]string, []string, error) {
	if l.cfg.PDFBackend == common.PDFBackendPDFToText {
		return l.pdfToText(ctx, path)
	}
	pages, warns, err := readPDF(path, l.logger)
	if err != nil {
		return nil, nil, err
	}
	if !hasText(pages) {
		return nil, warns, common.ErrNoTextLayer
	}
	return pages, warns, nil
}

func (l *Loader) pdfToText(ctx context.Context, path string) ([][]string, []string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := l.runner.Run(ctx, l.cfg.PDFToTextBin, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, []string{strings.TrimSpace(string(errb))}, fmt.Errorf("pdftotext: %w", err)
	}
	pages := SplitPages(string(out))
	if !hasText(pages) {
		return nil, nil, common.ErrNoTextLayer
	}
	return pages, nil, nil
}

// readPDF reads the embedded text layer row by row. Pages that cannot be
// decoded stay empty so page indices are preserved.
func readPDF(path string, logger *zap.Logger) ([][]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return nil, nil, fmt.Errorf("open pdf: %w", err)
	}

	n := r.NumPage()
	pages := make([][]string, n)
	var warns []string
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			logger.Warn("textlayer.pdf.page_failed", zap.Int("page", i), zap.Error(err))
			warns = append(warns, fmt.Sprintf("Page %d: text layer unreadable", i-1))
			continue
		}
		pages[i-1] = NormalizeLines(rowLines(rows))
	}
	return pages, warns, nil
}

// rowLines renders rows top to bottom. Fragments on a row are ordered by X
// and separated by a space where the gap is wider than a fifth of the font
// size.
func rowLines(rows pdf.Rows) []string {
	sorted := make(pdf.Rows, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position > sorted[j].Position })

	lines := make([]string, 0, len(sorted))
	for _, row := range sorted {
		frags := make(pdf.TextHorizontal, len(row.Content))
		copy(frags, row.Content)
		sort.SliceStable(frags, func(i, j int) bool { return frags[i].X < frags[j].X })

		var b strings.Builder
		var end float64
		for k, t := range frags {
			if k > 0 && t.X-end > t.FontSize/5 && !strings.HasPrefix(t.S, " ") {
				b.WriteByte(' ')
			}
			b.WriteString(t.S)
			end = t.X + t.W
		}
		lines = append(lines, b.String())
	}
	return lines
}

func hasText(pages [][]string) bool {
	for _, p := range pages {
		if len(p) > 0 {
			return true
		}
	}
	return false
}
