package lv

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/clarencejohnson126/angebotsagent/internal/core/germannum"
	"github.com/clarencejohnson126/angebotsagent/internal/entity"
)

// Method and source recorded on deterministically parsed LV documents.
const (
	Method       = "lv_regex"
	SourceRegex  = "regex"
	descMaxLines = 3
	titleMaxLen  = 100
)

// Quality labels of an LV extraction.
const (
	QualityGood         = "gut"
	QualityMedium       = "mittel"
	QualityNeedsReview  = "pruefung_erforderlich"
	QualityNoPositions  = "keine_positionen"
	confidenceDotted    = 0.8
	confidenceOrdinal   = 0.6
	confidenceWithUnit  = 0.85
	confidenceQtyNoUnit = 0.6
)

var mengeLine = regexp.MustCompile(`(?i)\bMenge[:\s]+([\d.,]+)\s*(\S+)?`)

type draft struct {
	pos        entity.LVPosition
	desc       []string
	long       []string
	hasQty     bool
	confidence float64
}

// ExtractPositions walks the pages of an LV and groups lines into positions.
// A line starting with an ordinal number opens a position; following lines
// add quantity, description (first three lines) and long text.
func ExtractPositions(pages [][]string) entity.LVDocument {
	var (
		positions []entity.LVPosition
		cur       *draft
	)
	flush := func() {
		if cur != nil {
			positions = append(positions, cur.finalize())
			cur = nil
		}
	}

	for p, lines := range pages {
		page := p + 1
		for _, raw := range lines {
			line := strings.TrimSpace(raw)
			if line == "" {
				continue
			}

			parsed := ParseLVLine(line)
			if start, conf, ok := positionStart(parsed); ok {
				flush()
				cur = newDraft(start, parsed, page, conf)
				continue
			}
			if cur == nil {
				continue
			}
			cur.addLine(line, parsed)
		}
	}
	flush()

	if positions == nil {
		positions = []entity.LVPosition{}
	}
	doc := entity.LVDocument{
		Positions: positions,
		Summary:   Summarize(positions),
		PageCount: len(pages),
		Method:    Method,
		Warnings:  []string{},
	}
	if len(positions) == 0 {
		doc.Warnings = append(doc.Warnings, "No LV positions found")
	}
	return doc
}

// positionStart decides whether a parsed line opens a new position. Bare
// ordinals ("3.") only count when text follows them.
func positionStart(l ParsedLVLine) (PositionNumber, float64, bool) {
	if l.Position == nil {
		return PositionNumber{}, 0, false
	}
	if l.Position.Depth >= 2 {
		return *l.Position, confidenceDotted, true
	}
	if l.ShortText != "" {
		return *l.Position, confidenceOrdinal, true
	}
	return PositionNumber{}, 0, false
}

func newDraft(pn PositionNumber, l ParsedLVLine, page int, conf float64) *draft {
	d := &draft{
		pos: entity.LVPosition{
			PositionNumber: pn.Full,
			Depth:          pn.Depth,
			Title:          strings.TrimLeft(l.ShortText, ":- "),
			Page:           page,
			PageReference:  fmt.Sprintf("Seite %d", page),
			Source:         SourceRegex,
		},
		confidence: conf,
	}
	if l.Quantity != nil {
		d.setQuantity(*l.Quantity, l.Unit)
	}
	d.pos.UnitPrice = l.UnitPrice
	d.pos.TotalPrice = l.TotalPrice
	if l.Marker != nil {
		m := string(*l.Marker)
		d.pos.Marker = &m
	}
	return d
}

func (d *draft) setQuantity(q float64, unit *Einheit) {
	d.pos.Quantity = &q
	d.hasQty = true
	if unit != nil {
		u := string(*unit)
		d.pos.Unit = &u
		d.confidence = max(d.confidence, confidenceWithUnit)
	} else {
		d.confidence = max(d.confidence, confidenceQtyNoUnit)
	}
}

func (d *draft) addLine(line string, l ParsedLVLine) {
	if !d.hasQty {
		switch {
		case l.Quantity != nil:
			d.setQuantity(*l.Quantity, l.Unit)
			if d.pos.UnitPrice == nil {
				d.pos.UnitPrice = l.UnitPrice
				d.pos.TotalPrice = l.TotalPrice
			}
		default:
			if m := mengeLine.FindStringSubmatch(line); m != nil {
				if q, ok := germannum.Parse(m[1]); ok {
					var unit *Einheit
					if u, uok := ParseEinheit(m[2]); uok {
						unit = &u
					}
					d.setQuantity(q, unit)
				}
			}
		}
	}
	if d.pos.Marker == nil && l.Marker != nil {
		m := string(*l.Marker)
		d.pos.Marker = &m
	}
	if len(d.desc) < descMaxLines {
		d.desc = append(d.desc, line)
	} else {
		d.long = append(d.long, line)
	}
}

func (d *draft) finalize() entity.LVPosition {
	p := d.pos
	description := strings.Join(d.desc, " ")
	if p.Title == "" && description != "" {
		p.Title = truncateRunes(description, titleMaxLen)
	}
	if description != p.Title {
		p.Description = description
	}
	p.LongText = strings.Join(d.long, "\n")
	p.Confidence = d.confidence
	return p
}

// Summarize computes counts, unit distribution and a quality label.
func Summarize(positions []entity.LVPosition) entity.LVSummary {
	s := entity.LVSummary{
		TotalPositions:   len(positions),
		UnitDistribution: map[string]int{},
	}
	var confSum float64
	for _, p := range positions {
		if p.Quantity != nil {
			s.WithQuantity++
		}
		if p.Unit != nil {
			s.WithUnit++
			s.UnitDistribution[*p.Unit]++
		}
		confSum += p.Confidence
	}
	if s.TotalPositions > 0 {
		s.AverageConfidence = germannum.Round2(confSum / float64(s.TotalPositions))
	}
	s.Quality = assessQuality(s.TotalPositions, s.WithQuantity, s.AverageConfidence)
	return s
}

func assessQuality(total, withQty int, avgConf float64) string {
	if total == 0 {
		return QualityNoPositions
	}
	ratio := float64(withQty) / float64(total)
	switch {
	case avgConf >= 0.8 && ratio >= 0.8:
		return QualityGood
	case avgConf >= 0.6 && ratio >= 0.5:
		return QualityMedium
	default:
		return QualityNeedsReview
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
