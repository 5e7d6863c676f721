package area

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clarencejohnson126/angebotsagent/constants"
	"github.com/clarencejohnson126/angebotsagent/internal/core/germannum"
	"github.com/clarencejohnson126/angebotsagent/internal/entity"
)

// Method is the extraction method recorded on every regular result.
const Method = "unified_extraction"

var (
	ErrNoPages      = errors.New("document has no pages")
	ErrInvalidStyle = errors.New("invalid blueprint style")
)

// Options tunes Extract. The zero value detects the style, reads all pages
// sequentially and logs nothing.
type Options struct {
	// Style overrides detection; one of haardtring, leiq, omniturm, unknown.
	Style string
	// Pages restricts extraction to these 0-based page indices.
	Pages []int
	// Workers bounds concurrent page scans. Output does not depend on it.
	Workers int
	// NoRescue disables the document-wide NRF scan on empty results.
	NoRescue bool
	Logger   *zap.Logger
}

type pageOutcome struct {
	rooms    []entity.ExtractedRoom
	warnings []string
}

// Extract runs style detection, per-page extraction with fallbacks and
// aggregation. Only an empty document and an invalid style override are
// errors; everything else degrades into warnings.
func Extract(pages [][]string, opts Options) (entity.ExtractionResult, error) {
	if len(pages) == 0 {
		return entity.ExtractionResult{}, ErrNoPages
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var warnings []string
	style, err := resolveStyle(pages, opts.Style, &warnings)
	if err != nil {
		return entity.ExtractionResult{}, err
	}
	if style == constants.StyleUnknown {
		warnings = append(warnings, "Unknown blueprint style, trying flexible extraction")
	}

	selected, missing := selectPages(len(pages), opts.Pages)
	for _, idx := range missing {
		warnings = append(warnings, fmt.Sprintf("Page %d does not exist", idx))
	}

	outcomes := make([]pageOutcome, len(selected))
	var g errgroup.Group
	g.SetLimit(max(opts.Workers, 1))
	for k, idx := range selected {
		g.Go(func() error {
			outcomes[k] = extractPage(pages[idx], idx, style)
			return nil
		})
	}
	_ = g.Wait()

	var rooms []entity.ExtractedRoom
	for k, o := range outcomes {
		rooms = append(rooms, o.rooms...)
		warnings = append(warnings, o.warnings...)
		logger.Debug("area.page.done",
			zap.Int("page", selected[k]),
			zap.Int("rooms", len(o.rooms)),
			zap.Int("warnings", len(o.warnings)))
	}

	method := Method
	if len(rooms) == 0 && !opts.NoRescue && len(selected) > 0 {
		if rescued := rescueScan(pages, selected); len(rescued) > 0 {
			rooms = rescued
			method = RescueMethod
			warnings = append(warnings, "No room identifiers matched, used NRF-only scan")
		}
	}

	res := aggregate(rooms, len(pages), style, method, warnings)
	logger.Debug("area.extract.ok",
		zap.String("style", string(style)),
		zap.Int("rooms", res.RoomCount),
		zap.Float64("total_counted_m2", res.TotalCountedM2))
	return res, nil
}

func resolveStyle(pages [][]string, override string, warnings *[]string) (constants.BlueprintStyle, error) {
	if strings.TrimSpace(override) != "" {
		s, ok := constants.ParseStyle(override)
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrInvalidStyle, override)
		}
		return s, nil
	}
	d := DetectPages(pages)
	if d.Ambiguous {
		*warnings = append(*warnings, fmt.Sprintf(
			"Mixed blueprint signals (%s), using %s", strings.Join(d.Families, ", "), d.Style))
	}
	return d.Style, nil
}

// selectPages keeps the requested order; unknown indices are returned as missing.
func selectPages(n int, requested []int) (selected, missing []int) {
	if requested == nil {
		selected = make([]int, n)
		for i := range selected {
			selected[i] = i
		}
		return selected, nil
	}
	for _, idx := range requested {
		if idx < 0 || idx >= n {
			missing = append(missing, idx)
			continue
		}
		selected = append(selected, idx)
	}
	return selected, missing
}

// extractPage runs the primary extractor, then the other styles, then the
// generic pairing, and stops at the first one that yields rooms.
func extractPage(lines []string, page int, style constants.BlueprintStyle) pageOutcome {
	primary := profileFor(style)

	var first pageScan
	if primary != nil {
		first = primary.scan(lines, page)
	} else {
		first = scanGeneric(lines, page)
	}
	if len(first.rooms) > 0 {
		return pageOutcome{rooms: first.rooms, warnings: scanWarnings(page, first)}
	}

	for _, alt := range constants.ConcreteStyles {
		if alt == style {
			continue
		}
		s := profileFor(alt).scan(lines, page)
		if len(s.rooms) > 0 {
			w := append([]string{fmt.Sprintf("Page %d: Used %s pattern as fallback", page, alt)}, scanWarnings(page, s)...)
			return pageOutcome{rooms: s.rooms, warnings: w}
		}
	}

	last := first
	if primary != nil {
		s := scanGeneric(lines, page)
		if len(s.rooms) > 0 {
			w := append([]string{fmt.Sprintf("Page %d: Used generic flexible extraction", page)}, scanWarnings(page, s)...)
			return pageOutcome{rooms: s.rooms, warnings: w}
		}
		// the generic pass is the only one that range-checks areas
		last.outOfRange += s.outOfRange
		last.malformed = max(last.malformed, s.malformed)
	}

	w := append([]string{fmt.Sprintf("Page %d: No rooms found", page)}, scanWarnings(page, last)...)
	return pageOutcome{warnings: w}
}

func scanWarnings(page int, s pageScan) []string {
	var w []string
	if s.idsWithoutArea > 0 {
		w = append(w, fmt.Sprintf("Page %d: %d room identifiers without area", page, s.idsWithoutArea))
	}
	if s.malformed > 0 {
		w = append(w, fmt.Sprintf("Page %d: %d malformed numbers skipped", page, s.malformed))
	}
	if s.outOfRange > 0 {
		w = append(w, fmt.Sprintf("Page %d: %d areas outside %s-%s m² discarded",
			page, s.outOfRange, germannum.Format(MinRoomArea, 1), germannum.Format(MaxRoomArea, 0)))
	}
	return append(w, s.notes...)
}

func aggregate(rooms []entity.ExtractedRoom, pageCount int, style constants.BlueprintStyle, method string, warnings []string) entity.ExtractionResult {
	var totalArea, totalCounted float64
	byCat := make(map[string]float64)
	for _, r := range rooms {
		totalArea += r.AreaM2
		totalCounted += r.CountedM2
		byCat[string(r.Category)] += r.CountedM2
	}
	for k, v := range byCat {
		byCat[k] = germannum.Round2(v)
	}
	if rooms == nil {
		rooms = []entity.ExtractedRoom{}
	}
	if warnings == nil {
		warnings = []string{}
	}
	return entity.ExtractionResult{
		Rooms:            rooms,
		TotalAreaM2:      germannum.Round2(totalArea),
		TotalCountedM2:   germannum.Round2(totalCounted),
		RoomCount:        len(rooms),
		PageCount:        pageCount,
		BlueprintStyle:   string(style),
		ExtractionMethod: method,
		Warnings:         warnings,
		TotalsByCategory: byCat,
	}
}

// Summary is the short form of a result used by listings and the CLI.
type Summary struct {
	TotalRooms     int                `json:"total_rooms" yaml:"total_rooms"`
	TotalAreaM2    float64            `json:"total_area_m2" yaml:"total_area_m2"`
	TotalCountedM2 float64            `json:"total_counted_m2" yaml:"total_counted_m2"`
	BlueprintStyle string             `json:"blueprint_style" yaml:"blueprint_style"`
	Categories     map[string]float64 `json:"categories" yaml:"categories"`
	HasWarnings    bool               `json:"has_warnings" yaml:"has_warnings"`
}

func Summarize(res entity.ExtractionResult) Summary {
	return Summary{
		TotalRooms:     res.RoomCount,
		TotalAreaM2:    res.TotalAreaM2,
		TotalCountedM2: res.TotalCountedM2,
		BlueprintStyle: res.BlueprintStyle,
		Categories:     res.TotalsByCategory,
		HasWarnings:    len(res.Warnings) > 0,
	}
}
