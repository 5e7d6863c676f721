// Package lv parses German Leistungsverzeichnis (bill of quantities) text:
// ordinal numbers (OZ), units of measure, position markers, quantity and
// price columns, and whole documents into positions.
package lv

import (
	"regexp"
	"strings"
)

// PositionNumber is a parsed LV ordinal number such as 04.02.03..0010.
// Depth counts the filled components (1-4).
type PositionNumber struct {
	Full     string `json:"full"`
	Level1   string `json:"level1,omitempty"`
	Level2   string `json:"level2,omitempty"`
	Level3   string `json:"level3,omitempty"`
	Position string `json:"position"`
	Depth    int    `json:"depth"`
}

type positionFormat struct {
	name string
	re   *regexp.Regexp
	// levels lists the submatch index for Level1..Level3; 0 means unused.
	levels [3]int
	pos    int
}

// positionFormats are tried in order; the first match wins.
var positionFormats = []positionFormat{
	{"double-dot", regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{1,2})\.\.(\d{1,4})\.?$`), [3]int{1, 2, 3}, 4},
	{"single-dot-4", regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{1,2})\.(\d{4})\.?$`), [3]int{1, 2, 3}, 4},
	{"single-dot-3", regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{2,4})\.?$`), [3]int{1, 2, 0}, 3},
	{"ordinal", regexp.MustCompile(`^(\d{1,4})\.?$`), [3]int{0, 0, 0}, 1},
	{"space", regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})(?:\.(\d{1,2}))?\s+(\d{1,4})\.?$`), [3]int{1, 2, 3}, 4},
}

// ParsePositionNumber parses an ordinal number. Unknown shapes fall back to
// splitting on dots, so only blank input reports false.
func ParsePositionNumber(text string) (PositionNumber, bool) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return PositionNumber{}, false
	}

	for _, f := range positionFormats {
		m := f.re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		pn := PositionNumber{Full: raw, Position: m[f.pos]}
		dst := []*string{&pn.Level1, &pn.Level2, &pn.Level3}
		for i, g := range f.levels {
			if g > 0 {
				*dst[i] = m[g]
			}
		}
		pn.Depth = depthOf(pn)
		return pn, true
	}
	return fallbackPosition(raw), true
}

func fallbackPosition(raw string) PositionNumber {
	s := raw
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", ".")
	}
	s = strings.Trim(s, ". ")

	var parts []string
	for _, p := range strings.Split(s, ".") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	pn := PositionNumber{Full: raw}
	switch len(parts) {
	case 0:
		pn.Position = raw
	default:
		pn.Position = parts[len(parts)-1]
		levels := parts[:len(parts)-1]
		if len(levels) > 3 {
			levels = append(levels[:2:2], strings.Join(levels[2:], "."))
		}
		dst := []*string{&pn.Level1, &pn.Level2, &pn.Level3}
		for i, l := range levels {
			*dst[i] = l
		}
	}
	pn.Depth = depthOf(pn)
	return pn
}

func depthOf(pn PositionNumber) int {
	d := 0
	for _, s := range []string{pn.Level1, pn.Level2, pn.Level3, pn.Position} {
		if s != "" {
			d++
		}
	}
	return max(d, 1)
}
