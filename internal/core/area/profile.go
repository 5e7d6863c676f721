package area

import (
	"regexp"
	"strings"

	"github.com/clarencejohnson126/angebotsagent/constants"
)

// Lookahead is how many lines after an identifier are searched for its fields.
const Lookahead = 15

// areaLabel is one way a style writes an area: inline ("F: 22,79 m²") or as a
// bare label line with the value on the next line.
type areaLabel struct {
	inline *regexp.Regexp // group 1 is the number
	split  string
	tag    string
}

// styleProfile configures the shared scanner for one blueprint style.
type styleProfile struct {
	style      constants.BlueprintStyle
	ids        []*regexp.Regexp // anchored, group 1 is the room number
	labels     []areaLabel
	perimeter  *regexp.Regexp
	height     *regexp.Regexp
	override   *regexp.Regexp
	rejectName *regexp.Regexp
	// shaft names an unlabelled "Schacht NN" block: type line, then area line.
	shaft *regexp.Regexp
}

var (
	splitValue    = regexp.MustCompile(`^(\d[\d.,]*)\s*m[²2]?`)
	perimeterLine = regexp.MustCompile(`(?i)^U[=:]\s*(\d[\d.,]*)\s*m\b`)
	heightLine    = regexp.MustCompile(`(?i)^L(?:R)?H[=:]\s*(\d[\d.,]*)\s*m\b`)
	halfLine      = regexp.MustCompile(`(?i)^50%:\s*(\d[\d.,]*)\s*m[²2]?`)
	bareValue     = regexp.MustCompile(`^[\d.,\s]+(?:m[²2]?|qm)?$`)
)

var haardtringProfile = &styleProfile{
	style: constants.StyleHaardtring,
	ids: []*regexp.Regexp{
		regexp.MustCompile(`^(R\d+\.E\d+\.\d+\.\d+)`),
		regexp.MustCompile(`^(R\d+[A-Z])\b`),
		regexp.MustCompile(`^(E\.[A-Z0-9]+(?:\.\d+)+)`),
	},
	labels: []areaLabel{
		{inline: regexp.MustCompile(`(?i)^F:\s*(\d[\d.,]*)\s*m[²2]?`), split: "F:", tag: "F:"},
	},
	perimeter:  perimeterLine,
	height:     heightLine,
	override:   halfLine,
	rejectName: regexp.MustCompile(`(?i)^(F:|F=|50%:|BA:|B:|W:|D:|[\d,]+)`),
}

var leiqProfile = &styleProfile{
	style: constants.StyleLeiQ,
	ids: []*regexp.Regexp{
		regexp.MustCompile(`^(B\.\d+\.[0-9A-Z]+\.[A-Z]?\d+(?:-[A-Z])?)`),
	},
	labels: []areaLabel{
		{inline: regexp.MustCompile(`(?i)^NRF[=:]\s*(\d[\d.,]*)\s*m[²2]?`), split: "NRF:", tag: "NRF:"},
		{inline: regexp.MustCompile(`(?i)^F=\s*(\d[\d.,]*)\s*m[²2]?`), split: "F=", tag: "F="},
		{inline: regexp.MustCompile(`(?i)^F:\s*(\d[\d.,]*)\s*m[²2]?`), split: "F:", tag: "F:"},
	},
	perimeter:  perimeterLine,
	height:     heightLine,
	override:   halfLine,
	rejectName: regexp.MustCompile(`(?i)^(NRF|F[=:]|U[=:]|LH[=:]|LRH[=:]|50%:|B\.|[\d,]+)`),
}

var omniturmProfile = &styleProfile{
	style: constants.StyleOmniturm,
	ids: []*regexp.Regexp{
		regexp.MustCompile(`^(\d+_[a-z]\d+\.\d+)`),
		regexp.MustCompile(`^(BT\d+\.[A-Z]+\.\d+)`),
		regexp.MustCompile(`^(B\.\d+\.[0-9A-Z]+\.[A-Z]?\d+(?:-[A-Z])?)`),
	},
	labels: []areaLabel{
		{inline: regexp.MustCompile(`(?i)^NGF:\s*(\d[\d.,]*)\s*m[²2]?`), split: "NGF:", tag: "NGF:"},
	},
	perimeter:  perimeterLine,
	height:     heightLine,
	override:   halfLine,
	rejectName: regexp.MustCompile(`(?i)^(NGF|UKRD|UKFD|OKFF|OKRF|LRH|LH|U[=:]|50%:|[\d,]+\s*m|[\d,]+$|Schacht)`),
	shaft:      regexp.MustCompile(`(?i)^(Schacht\s*\d+)`),
}

// profileFor returns nil for styles without a dedicated scanner.
func profileFor(style constants.BlueprintStyle) *styleProfile {
	switch style {
	case constants.StyleHaardtring:
		return haardtringProfile
	case constants.StyleLeiQ:
		return leiqProfile
	case constants.StyleOmniturm:
		return omniturmProfile
	}
	return nil
}

func (p *styleProfile) matchID(line string) (string, bool) {
	for _, re := range p.ids {
		if m := re.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}

func (p *styleProfile) isFieldLine(line string) bool {
	for _, l := range p.labels {
		if l.inline.MatchString(line) || strings.EqualFold(line, l.split) {
			return true
		}
	}
	for _, re := range []*regexp.Regexp{p.perimeter, p.height, p.override} {
		if re != nil && re.MatchString(line) {
			return true
		}
	}
	return false
}

// acceptsName is the room-name predicate of a style: the first line after an
// identifier that passes it becomes the room name.
func (p *styleProfile) acceptsName(line string) bool {
	line = strings.TrimSpace(line)
	if len([]rune(line)) < 2 {
		return false
	}
	if _, isID := p.matchID(line); isID {
		return false
	}
	if p.rejectName.MatchString(line) || bareValue.MatchString(line) {
		return false
	}
	return !p.isFieldLine(line)
}

// AcceptsRoomName exposes the per-style name predicate.
func AcceptsRoomName(style constants.BlueprintStyle, line string) bool {
	if p := profileFor(style); p != nil {
		return p.acceptsName(line)
	}
	return genericAcceptsName(line)
}
