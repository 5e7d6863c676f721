package llm

import (
	"fmt"
	"strings"

	"github.com/clarencejohnson126/angebotsagent/internal/core/lv"
	"github.com/clarencejohnson126/angebotsagent/internal/entity"
)

const (
	SourceLLM     = "llm"
	Method        = "lv_llm"
	llmConfidence = 0.5
)

// ToPositions turns a model answer into LV positions. A position is kept only
// when its ordinal number occurs as a token in the page text; the page it is
// found on wins over the page the model reported. Duplicates keep the first.
func ToPositions(ext LVExtraction, pages [][]string) ([]entity.LVPosition, []string) {
	out := make([]entity.LVPosition, 0, len(ext.Positions))
	var warnings []string
	seen := make(map[string]struct{}, len(ext.Positions))

	for _, f := range ext.Positions {
		num := strings.TrimSpace(f.PositionNumber)
		if num == "" {
			continue
		}
		if _, dup := seen[num]; dup {
			continue
		}
		page, ok := findToken(pages, num)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("Position %s not found in source text, dropped", num))
			continue
		}
		seen[num] = struct{}{}

		pos := entity.LVPosition{
			PositionNumber: num,
			Title:          strings.TrimSpace(f.Title),
			Quantity:       f.Quantity,
			UnitPrice:      f.UnitPrice,
			TotalPrice:     f.TotalPrice,
			Page:           page,
			PageReference:  fmt.Sprintf("Seite %d", page),
			Confidence:     llmConfidence,
			Source:         SourceLLM,
		}
		if pn, ok := lv.ParsePositionNumber(num); ok {
			pos.Depth = pn.Depth
		}
		if u, ok := lv.ParseEinheit(f.Unit); ok {
			s := u.String()
			pos.Unit = &s
		}
		out = append(out, pos)
	}
	return out, warnings
}

// ToDocument wraps grounded positions into an LV document.
func ToDocument(ext LVExtraction, pages [][]string) entity.LVDocument {
	positions, warnings := ToPositions(ext, pages)
	if warnings == nil {
		warnings = []string{}
	}
	if len(positions) == 0 {
		warnings = append(warnings, "No LV positions found")
	}
	return entity.LVDocument{
		Positions: positions,
		Summary:   lv.Summarize(positions),
		PageCount: len(pages),
		Method:    Method,
		Warnings:  warnings,
	}
}

// findToken returns the 1-based page of the first line containing num as a
// whitespace separated token.
func findToken(pages [][]string, num string) (int, bool) {
	for i, lines := range pages {
		for _, l := range lines {
			if !strings.Contains(l, num) {
				continue
			}
			for _, tok := range strings.Fields(l) {
				if tok == num {
					return i + 1, true
				}
			}
		}
	}
	return 0, false
}
