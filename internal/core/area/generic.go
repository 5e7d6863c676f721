package area

import (
	"regexp"
	"strings"

	"github.com/clarencejohnson126/angebotsagent/internal/core/germannum"
)

// Plausible room area range in m², inclusive.
const (
	MinRoomArea = 0.5
	MaxRoomArea = 10000.0
)

// GenericPattern tags rooms produced by the flexible extractor.
const GenericPattern = "generic"

// Areas following their identifier win ties over areas above it.
const afterIDBias = 0.5

var flexibleAreas = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:NRF|NGF|BGF|Fläche|Fl|FL|GF|WF|NF)\s*[=:]\s*(\d[\d.,]*)\s*m[²2]?`),
	regexp.MustCompile(`(?i)^F\s*[=:]\s*(\d[\d.,]*)\s*m[²2]?`),
	regexp.MustCompile(`(?i)(?:NRF|NGF|Fläche)\s*[=:]\s*(\d[\d.,]*)\s*qm\b`),
}

var flexibleIDs = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^([A-Z]+\d*[._][A-Z0-9]+[._][A-Z0-9]+[._][A-Z0-9]+)`),
	regexp.MustCompile(`^(\d+_[a-z]\d+\.\d+)`),
	regexp.MustCompile(`(?i)^([EOU]G\d*[._]\d{3})`),
	regexp.MustCompile(`(?i)^([A-Z][._]\d{3})`),
}

var genericLabelLine = regexp.MustCompile(`(?i)^(NRF|NGF|F|U|LH|BA|B|W|D|OK|UK|UKRD|OKFF)[\s:=]`)

type areaHit struct {
	line   int
	value  float64
	source string
}

type idHit struct {
	id   string
	line int
}

// scanGeneric pairs flexible area labels with flexible room identifiers by
// nearest line distance. Pairing is greedy in identifier order and every
// area is used at most once.
func scanGeneric(lines []string, page int) pageScan {
	var out pageScan

	var areas []areaHit
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		for _, re := range flexibleAreas {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			v, ok := germannum.Parse(m[1])
			switch {
			case !ok:
				out.malformed++
			case v < MinRoomArea || v > MaxRoomArea:
				out.outOfRange++
			default:
				areas = append(areas, areaHit{line: i, value: v, source: m[0]})
			}
			break
		}
	}

	var ids []idHit
	seen := make(map[string]struct{})
	for i, raw := range lines {
		id, ok := matchFlexibleID(strings.TrimSpace(raw))
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, idHit{id: id, line: i})
	}

	used := make([]bool, len(areas))
	for _, r := range ids {
		best := -1
		bestDist := float64(Lookahead)
		for k, a := range areas {
			if used[k] {
				continue
			}
			d := float64(abs(a.line - r.line))
			if a.line > r.line {
				d -= afterIDBias
			}
			if d < bestDist {
				best, bestDist = k, d
			}
		}
		if best < 0 {
			out.idsWithoutArea++
			continue
		}
		used[best] = true
		a := areas[best]
		name := genericName(lines, r.line, a.line)
		out.rooms = append(out.rooms, newRoom(r.id, name, a.value, page, a.source, GenericPattern, false))
	}
	return out
}

func matchFlexibleID(line string) (string, bool) {
	for _, re := range flexibleIDs {
		if m := re.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// genericName returns the first name-like line between an identifier and
// its area, looking at most five lines ahead.
func genericName(lines []string, idLine, areaLine int) string {
	start := idLine + 1
	end := min(areaLine, start+5, len(lines))
	for j := start; j < end; j++ {
		if cand := strings.TrimSpace(lines[j]); genericAcceptsName(cand) {
			return cand
		}
	}
	return ""
}

func genericAcceptsName(line string) bool {
	line = strings.TrimSpace(line)
	if len([]rune(line)) < 2 {
		return false
	}
	if bareValue.MatchString(line) || genericLabelLine.MatchString(line) {
		return false
	}
	if _, isID := matchFlexibleID(line); isID {
		return false
	}
	for _, re := range flexibleAreas {
		if re.MatchString(line) {
			return false
		}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
