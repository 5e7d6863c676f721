package area

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clarencejohnson126/angebotsagent/internal/core/germannum"
	"github.com/clarencejohnson126/angebotsagent/internal/entity"
)

// pageScan is the outcome of running one extractor over one page.
type pageScan struct {
	rooms []entity.ExtractedRoom
	// idsWithoutArea counts identifiers whose window held no area.
	idsWithoutArea int
	malformed      int
	outOfRange     int
	notes          []string
}

// roomFields collects what the window after one identifier holds.
type roomFields struct {
	name         string
	area         float64
	hasArea      bool
	source       string
	tag          string
	perimeter    *float64
	height       *float64
	override     *float64
	overrideText string
}

// scan runs the style scanner over the lines of one page.
func (p *styleProfile) scan(lines []string, page int) pageScan {
	var out pageScan
	emitted := make(map[string]struct{})

	for i := 0; i < len(lines); i++ {
		id, ok := p.matchID(strings.TrimSpace(lines[i]))
		if !ok {
			continue
		}
		if _, seen := emitted[id]; seen {
			continue
		}

		f := p.collect(lines, i, &out)
		if !f.hasArea {
			out.idsWithoutArea++
			continue
		}

		room := newRoom(id, f.name, f.area, page, f.source, f.tag, f.override != nil)
		room.PerimeterM = f.perimeter
		room.HeightM = f.height
		if f.override != nil {
			room.OverrideM2 = f.override
			room.OverrideText = f.overrideText
			if math.Abs(*f.override-room.CountedM2) > 0.01 {
				out.notes = append(out.notes, fmt.Sprintf(
					"Page %d: room %s states 50%% area %s m², computed %s m²",
					page, id, germannum.Format(*f.override, 2), germannum.Format(room.CountedM2, 2)))
			}
		}
		out.rooms = append(out.rooms, room)
		emitted[id] = struct{}{}
	}
	return out
}

// collect walks the lookahead window after the identifier at index at. It
// stops at the next identifier line.
func (p *styleProfile) collect(lines []string, at int, out *pageScan) roomFields {
	var f roomFields
	end := min(len(lines), at+1+Lookahead)

	for j := at + 1; j < end; j++ {
		cur := strings.TrimSpace(lines[j])
		if cur == "" {
			continue
		}
		if _, isID := p.matchID(cur); isID {
			break
		}

		if p.shaft != nil && !f.hasArea {
			if m := p.shaft.FindStringSubmatch(cur); m != nil {
				j += p.collectShaft(lines, j, m[1], &f, out)
				continue
			}
		}

		if !f.hasArea {
			if consumed, matched := p.matchArea(lines, j, &f, out); matched {
				j += consumed
				continue
			}
		}

		if f.perimeter == nil && p.perimeter != nil {
			if v, ok := captureNumber(p.perimeter, cur, out); ok {
				f.perimeter = &v
				continue
			}
		}
		if f.height == nil && p.height != nil {
			if v, ok := captureNumber(p.height, cur, out); ok {
				f.height = &v
				continue
			}
		}
		if f.override == nil && p.override != nil {
			if v, ok := captureNumber(p.override, cur, out); ok {
				f.override = &v
				f.overrideText = cur
				continue
			}
		}

		if f.name == "" && p.acceptsName(cur) {
			f.name = cur
		}
	}
	return f
}

// matchArea tries every area label of the style on line j. consumed is the
// number of extra lines taken by a split label.
func (p *styleProfile) matchArea(lines []string, j int, f *roomFields, out *pageScan) (consumed int, matched bool) {
	cur := strings.TrimSpace(lines[j])
	for _, l := range p.labels {
		if m := l.inline.FindStringSubmatch(cur); m != nil {
			v, ok := germannum.Parse(m[1])
			if !ok {
				out.malformed++
				return 0, true
			}
			f.area, f.hasArea = v, true
			f.source, f.tag = m[0], l.tag
			return 0, true
		}
		if l.split != "" && strings.EqualFold(cur, l.split) && j+1 < len(lines) {
			next := strings.TrimSpace(lines[j+1])
			m := splitValue.FindStringSubmatch(next)
			if m == nil {
				continue
			}
			v, ok := germannum.Parse(m[1])
			if !ok {
				out.malformed++
				return 1, true
			}
			f.area, f.hasArea = v, true
			f.source, f.tag = cur+"\n"+m[0], l.tag
			return 1, true
		}
	}
	return 0, false
}

// collectShaft handles "Schacht 01" followed by a type line and an
// unlabelled area line. It returns the number of extra lines consumed. A name
// already taken from the window is kept.
func (p *styleProfile) collectShaft(lines []string, j int, shaftName string, f *roomFields, out *pageScan) int {
	keepName := f.name != ""
	if !keepName {
		f.name = shaftName
	}
	if j+1 >= len(lines) {
		return 0
	}
	typeLine := strings.TrimSpace(lines[j+1])
	if splitValue.MatchString(typeLine) {
		p.takeShaftArea(typeLine, f, out)
		return 1
	}
	if !keepName && typeLine != "" && !startsNumeric(typeLine) {
		f.name = fmt.Sprintf("%s (%s)", shaftName, typeLine)
	}
	if f.hasArea || j+2 >= len(lines) {
		return 1
	}
	areaLine := strings.TrimSpace(lines[j+2])
	if !splitValue.MatchString(areaLine) {
		return 1
	}
	p.takeShaftArea(areaLine, f, out)
	return 2
}

func (p *styleProfile) takeShaftArea(line string, f *roomFields, out *pageScan) {
	m := splitValue.FindStringSubmatch(line)
	v, ok := germannum.Parse(m[1])
	if !ok {
		out.malformed++
		return
	}
	f.area, f.hasArea = v, true
	f.source, f.tag = m[0], "Schacht"
}

func startsNumeric(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsDigit(r) || r == ','
}

func captureNumber(re *regexp.Regexp, line string, out *pageScan) (float64, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	v, ok := germannum.Parse(m[1])
	if !ok {
		out.malformed++
		return 0, false
	}
	return v, true
}
