package area

import (
	"regexp"
	"strings"

	"github.com/clarencejohnson126/angebotsagent/constants"
)

var (
	sigFColon  = regexp.MustCompile(`\bF:\s*\d[\d,]*`)
	sigFEquals = regexp.MustCompile(`\bF=\s*\d[\d.,]*`)
	sigNRF     = regexp.MustCompile(`(?i)\bNRF:\s*\d[\d,]*`)
	sigNGF     = regexp.MustCompile(`(?i)\bNGF:\s*\d[\d.,]*`)

	sigRFull       = regexp.MustCompile(`\bR\d+\.E\d+\.\d+\.\d+\b`)
	sigRSimple     = regexp.MustCompile(`\bR\d+[A-Z]\b`)
	sigEApartment  = regexp.MustCompile(`\bE\.[A-Z0-9]+\.\d+\.\d+\b`)
	sigHaardtCodes = regexp.MustCompile(`\b(?:BA|B|W|D):\s*\d`)
	sigBPattern    = regexp.MustCompile(`\bB\.\d+\.\d+\.\d+\b`)
	sigGrid        = regexp.MustCompile(`\b\d+_[a-z]\d+\.\d+\b`)
	sigBT          = regexp.MustCompile(`\bBT\d+\.[A-Z]+\.\d+\b`)
)

// Signals lists which dialect markers were seen in a document.
type Signals struct {
	FColon      bool `json:"f_colon"`
	FEquals     bool `json:"f_equals"`
	NRF         bool `json:"nrf"`
	NGF         bool `json:"ngf"`
	RPattern    bool `json:"r_pattern"`
	HaardtCodes bool `json:"haardtring_codes"`
	BPattern    bool `json:"b_pattern"`
	GridPattern bool `json:"grid_pattern"`
}

// Detection is the outcome of DetectStyle.
type Detection struct {
	Style     constants.BlueprintStyle
	Signals   Signals
	Ambiguous bool
	// Families names the area-label families present, in fixed order.
	Families []string
}

// DetectStyle classifies a whole document by its area labels and room
// identifier shapes. Paired signals beat single signals:
//
//	F: + R-pattern (or BA:/B:/W:/D: codes)  haardtring
//	NRF:/F= + B-pattern                      leiq
//	NGF: + grid/BT/B-pattern                 omniturm
//	NGF: alone                               omniturm
//	NRF:/F= alone                            leiq
//	F: alone                                 haardtring
//
// Ambiguous is set when more than one area-label family occurs.
func DetectStyle(text string) Detection {
	s := Signals{
		FColon:      sigFColon.MatchString(text),
		FEquals:     sigFEquals.MatchString(text),
		NRF:         sigNRF.MatchString(text),
		NGF:         sigNGF.MatchString(text),
		RPattern:    sigRFull.MatchString(text) || sigRSimple.MatchString(text) || sigEApartment.MatchString(text),
		HaardtCodes: sigHaardtCodes.MatchString(text),
		BPattern:    sigBPattern.MatchString(text),
		GridPattern: sigGrid.MatchString(text) || sigBT.MatchString(text),
	}

	d := Detection{Signals: s}
	if s.FColon {
		d.Families = append(d.Families, "F:")
	}
	if s.NRF || s.FEquals {
		d.Families = append(d.Families, "NRF:/F=")
	}
	if s.NGF {
		d.Families = append(d.Families, "NGF:")
	}
	d.Ambiguous = len(d.Families) > 1

	leiqLabel := s.NRF || s.FEquals
	switch {
	case s.FColon && (s.RPattern || s.HaardtCodes):
		d.Style = constants.StyleHaardtring
	case leiqLabel && s.BPattern:
		d.Style = constants.StyleLeiQ
	case s.NGF && (s.GridPattern || s.BPattern):
		d.Style = constants.StyleOmniturm
	case s.NGF:
		d.Style = constants.StyleOmniturm
	case leiqLabel:
		d.Style = constants.StyleLeiQ
	case s.FColon:
		d.Style = constants.StyleHaardtring
	default:
		d.Style = constants.StyleUnknown
	}
	return d
}

// DetectPages joins pages with newlines and runs DetectStyle.
func DetectPages(pages [][]string) Detection {
	var b strings.Builder
	for _, page := range pages {
		for _, line := range page {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return DetectStyle(b.String())
}
