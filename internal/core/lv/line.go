package lv

import (
	"regexp"
	"strings"

	"github.com/clarencejohnson126/angebotsagent/internal/core/germannum"
)

// ParsedLVLine is one LV text line split into its columns. Fields that are
// not present in the line stay nil.
type ParsedLVLine struct {
	Position   *PositionNumber `json:"position,omitempty"`
	ShortText  string          `json:"short_text"`
	Quantity   *float64        `json:"quantity,omitempty"`
	Unit       *Einheit        `json:"unit,omitempty"`
	UnitPrice  *float64        `json:"unit_price,omitempty"`
	TotalPrice *float64        `json:"total_price,omitempty"`
	Marker     *Marker         `json:"marker,omitempty"`
}

var (
	dottedToken   = regexp.MustCompile(`^\d{1,2}(?:\.{1,2}\d{1,4}){1,4}\.?$`)
	ordinalToken  = regexp.MustCompile(`^\d{1,4}\.$`)
	letterOZToken = regexp.MustCompile(`^[A-Z]\.\d{1,2}\.\d{2,4}\.?$`)
	headToken     = regexp.MustCompile(`^\d{1,2}\.\d{1,2}(?:\.\d{1,2})?$`)
	tailToken     = regexp.MustCompile(`^\d{3,4}\.?$`)
	numberToken   = regexp.MustCompile(`^-?[\d.,]+$`)
	gluedQuantity = regexp.MustCompile(`^([\d.,]+)([A-Za-zÄÖÜäöü²³^.]+)$`)
)

var currencyTokens = map[string]struct{}{"€": {}, "eur": {}, "euro": {}}

// ParseLVLine splits a line of the form
//
//	<OZ> <short text> <quantity> <unit> [<unit price> [<total price>]]
//
// into its columns. Any column may be missing.
func ParseLVLine(text string) ParsedLVLine {
	var out ParsedLVLine
	if m, ok := DetectLVMarker(text); ok {
		out.Marker = &m
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return out
	}

	rest := fields
	if pn, n, ok := leadingPosition(fields); ok {
		out.Position = &pn
		rest = fields[n:]
	}
	rest = dropCurrency(rest)

	qtyAt, unitAt := -1, -1
	for k := len(rest) - 1; k >= 0; k-- {
		if !allNumbers(rest[k+1:]) {
			continue
		}
		if m := gluedQuantity.FindStringSubmatch(rest[k]); m != nil {
			if _, uok := ParseEinheit(m[2]); uok && isNumber(m[1]) {
				qtyAt, unitAt = k, k
				break
			}
		}
		if _, uok := ParseEinheit(rest[k]); uok && k > 0 && isNumber(rest[k-1]) {
			qtyAt, unitAt = k-1, k
			break
		}
	}

	if qtyAt < 0 {
		out.ShortText = strings.Join(rest, " ")
		return out
	}

	out.ShortText = strings.Join(rest[:qtyAt], " ")
	qtyText, unitText := rest[qtyAt], rest[unitAt]
	if qtyAt == unitAt {
		m := gluedQuantity.FindStringSubmatch(rest[qtyAt])
		qtyText, unitText = m[1], m[2]
	}
	if q, ok := germannum.Parse(qtyText); ok {
		out.Quantity = &q
	}
	if u, ok := ParseEinheit(unitText); ok {
		out.Unit = &u
	}

	prices := rest[unitAt+1:]
	if len(prices) > 0 {
		if v, ok := germannum.Parse(prices[0]); ok {
			out.UnitPrice = &v
		}
	}
	if len(prices) > 1 {
		if v, ok := germannum.Parse(prices[1]); ok {
			out.TotalPrice = &v
		}
	}
	return out
}

// leadingPosition recognizes an ordinal number at the start of a line and
// returns how many fields it spans.
func leadingPosition(fields []string) (PositionNumber, int, bool) {
	first := fields[0]
	if len(fields) > 1 && headToken.MatchString(first) && tailToken.MatchString(fields[1]) {
		pn, ok := ParsePositionNumber(first + " " + fields[1])
		return pn, 2, ok
	}
	if dottedToken.MatchString(first) || ordinalToken.MatchString(first) || letterOZToken.MatchString(first) {
		pn, ok := ParsePositionNumber(first)
		return pn, 1, ok
	}
	return PositionNumber{}, 0, false
}

func dropCurrency(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, cur := currencyTokens[strings.ToLower(f)]; cur {
			continue
		}
		out = append(out, strings.TrimSuffix(f, "€"))
	}
	return out
}

func isNumber(tok string) bool {
	if !numberToken.MatchString(tok) {
		return false
	}
	_, ok := germannum.Parse(tok)
	return ok
}

func allNumbers(toks []string) bool {
	for _, t := range toks {
		if !isNumber(t) {
			return false
		}
	}
	return true
}
