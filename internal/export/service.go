// Package export renders take-off and LV results as XLSX workbooks.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/clarencejohnson126/angebotsagent/constants"
	"github.com/clarencejohnson126/angebotsagent/internal/common"
	"github.com/clarencejohnson126/angebotsagent/internal/entity"
	"github.com/clarencejohnson126/angebotsagent/internal/repository"
)

// Sheet names.
const (
	SheetRooms      = "Raeume"
	SheetCategories = "Kategorien"
	SheetWarnings   = "Hinweise"
	SheetLV         = "LV"
)

// Service loads stored job results and produces XLSX bytes for exports.
type Service struct {
	jobs   repository.ExtractJobRepository
	logger *zap.Logger
}

func NewService(jobs repository.ExtractJobRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{jobs: jobs, logger: logger}
}

// ExportJobXLSX renders the stored result of a finished job.
func (s *Service) ExportJobXLSX(ctx context.Context, jobID uuid.UUID) ([]byte, error) {
	start := time.Now()
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}
	if len(job.ResultJSON) == 0 {
		return nil, common.NewAppError("EXPORT_ERROR", "job has no result", common.ErrNotFound)
	}

	var out []byte
	switch constants.JobKind(job.Kind) {
	case constants.JobKindAreas:
		var res entity.ExtractionResult
		if err := json.Unmarshal(job.ResultJSON, &res); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		out, err = AreasXLSX(res)
	case constants.JobKindLV:
		var doc entity.LVDocument
		if err := json.Unmarshal(job.ResultJSON, &doc); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		out, err = LVXLSX(doc)
	default:
		return nil, common.NewAppError("EXPORT_ERROR", "unknown job kind "+job.Kind, common.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("export.xlsx.ok",
		zap.Stringer("job_id", jobID),
		zap.String("kind", job.Kind),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return out, nil
}

// AreasXLSX writes rooms, category totals and warnings on separate sheets.
func AreasXLSX(res entity.ExtractionResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetRooms); err != nil {
		return nil, err
	}

	w := sheetWriter{f: f, sheet: SheetRooms}
	w.header("Raum-Nr.", "Bezeichnung", "Kategorie", "Fläche m²", "Faktor", "Angerechnet m²", "Seite", "Muster", "Quelle")
	for _, r := range res.Rooms {
		w.row(r.RoomNumber, r.RoomName, string(r.Category), r.AreaM2, r.Factor, r.CountedM2, r.Page+1, r.ExtractionPattern, truncate(r.SourceText, 140))
	}
	w.row("Summe", "", "", res.TotalAreaM2, "", res.TotalCountedM2)
	_ = f.SetColWidth(SheetRooms, "A", "A", 12)
	_ = f.SetColWidth(SheetRooms, "B", "B", 32)
	_ = f.SetColWidth(SheetRooms, "C", "C", 14)
	_ = f.SetColWidth(SheetRooms, "D", "G", 14)
	_ = f.SetColWidth(SheetRooms, "I", "I", 48)

	if _, err := f.NewSheet(SheetCategories); err != nil {
		return nil, err
	}
	w = sheetWriter{f: f, sheet: SheetCategories}
	w.header("Kategorie", "Angerechnet m²")
	cats := make([]string, 0, len(res.TotalsByCategory))
	for c := range res.TotalsByCategory {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		w.row(c, res.TotalsByCategory[c])
	}

	if _, err := f.NewSheet(SheetWarnings); err != nil {
		return nil, err
	}
	w = sheetWriter{f: f, sheet: SheetWarnings}
	w.header("Hinweis")
	for _, msg := range res.Warnings {
		w.row(msg)
	}
	w.row(fmt.Sprintf("Stil: %s, Methode: %s, Seiten: %d", res.BlueprintStyle, res.ExtractionMethod, res.PageCount))
	_ = f.SetColWidth(SheetWarnings, "A", "A", 80)

	return write(f)
}

// LVXLSX writes one row per LV position.
func LVXLSX(doc entity.LVDocument) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetLV); err != nil {
		return nil, err
	}

	w := sheetWriter{f: f, sheet: SheetLV}
	w.header("OZ", "Kurztext", "Menge", "Einheit", "EP", "GP", "Hinweis", "Seite", "Konfidenz", "Quelle")
	for _, p := range doc.Positions {
		w.row(p.PositionNumber, p.Title, deref(p.Quantity), derefStr(p.Unit), deref(p.UnitPrice), deref(p.TotalPrice),
			derefStr(p.Marker), p.Page, p.Confidence, p.Source)
	}
	_ = f.SetColWidth(SheetLV, "A", "A", 18)
	_ = f.SetColWidth(SheetLV, "B", "B", 48)
	return write(f)
}

type sheetWriter struct {
	f     *excelize.File
	sheet string
	next  int
}

func (w *sheetWriter) header(cols ...string) {
	vals := make([]any, len(cols))
	for i, c := range cols {
		vals[i] = c
	}
	w.row(vals...)
}

func (w *sheetWriter) row(vals ...any) {
	w.next++
	for i, v := range vals {
		cell, _ := excelize.CoordinatesToCellName(i+1, w.next)
		_ = w.f.SetCellValue(w.sheet, cell, v)
	}
}

func write(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// deref returns "" for missing numbers so the cell stays empty.
func deref(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}

func derefStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
