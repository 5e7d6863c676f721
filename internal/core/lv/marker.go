package lv

import "regexp"

// Marker flags positions that are not ordinary priced work.
type Marker string

const (
	// Bedarfs- or Eventualposition: priced, only ordered if needed.
	MarkerContingent Marker = "bedarfsposition"
	// Only a unit price is asked for, no total.
	MarkerUnitPriceOnly Marker = "nur_einheitspreis"
	// Work is included in another position.
	MarkerIncludedElsewhere Marker = "enthalten"
	// Position is dropped (entfällt).
	MarkerExcluded Marker = "entfaellt"
	// Product named "oder gleichwertig".
	MarkerOrEquivalent Marker = "oder_gleichwertig"
)

var markerRules = []struct {
	marker Marker
	re     *regexp.Regexp
}{
	{MarkerContingent, regexp.MustCompile(`(?i)\b(?:bedarfs|eventual)\s*-?\s*pos(?:ition|\.)?`)},
	{MarkerUnitPriceOnly, regexp.MustCompile(`(?i)\bnur\s*-?\s*(?:einheitspreis|e\.?\s?p\.?)(?:\s|$|[,;)])`)},
	{MarkerIncludedElsewhere, regexp.MustCompile(`(?i)\benthalten\s+in\b|\bin\s+pos(?:ition|\.)?\s*[\d.]+\s+enthalten\b|\beinkalkuliert\b`)},
	{MarkerExcluded, regexp.MustCompile(`(?i)\bentf(?:ä|ae)llt\b`)},
	{MarkerOrEquivalent, regexp.MustCompile(`(?i)\boder\s+gleichwertig|\bo\.\s?glw\.?|\bgleichwertiger\s+art\b`)},
}

// DetectLVMarker returns the first marker, in fixed order, that text carries.
func DetectLVMarker(text string) (Marker, bool) {
	for _, r := range markerRules {
		if r.re.MatchString(text) {
			return r.marker, true
		}
	}
	return "", false
}

func (m Marker) String() string { return string(m) }
