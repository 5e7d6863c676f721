package lv

import (
	"regexp"
	"strings"

	"github.com/clarencejohnson126/angebotsagent/internal/entity"
)

// DefaultTenderPages is how many leading pages ExtractTenderSummary reads by default.
const DefaultTenderPages = 5

const tenderValueMax = 200

var tenderFields = []struct {
	name     string
	patterns []*regexp.Regexp
}{
	{"project_name", []*regexp.Regexp{
		regexp.MustCompile(`(?im)\bProjekt[:\s]+(.+)`),
		regexp.MustCompile(`(?im)\bBauvorhaben[:\s]+(.+)`),
		regexp.MustCompile(`(?im)\bObjekt[:\s]+(.+)`),
	}},
	{"client", []*regexp.Regexp{
		regexp.MustCompile(`(?im)\bAuftraggeber[:\s]+(.+)`),
		regexp.MustCompile(`(?im)\bBauherr[:\s]+(.+)`),
		regexp.MustCompile(`(?m)^\s*AG[:\s]+(.+)`),
	}},
	{"deadline", []*regexp.Regexp{
		regexp.MustCompile(`(?im)\bAbgabe(?:frist|termin)?[:\s]+(\d{1,2}[.\-/]\d{1,2}[.\-/]\d{2,4})`),
		regexp.MustCompile(`(?im)\bSubmission[:\s]+(\d{1,2}[.\-/]\d{1,2}[.\-/]\d{2,4})`),
		regexp.MustCompile(`(?im)\bbis(?:\s+zum)?[:\s]+(\d{1,2}[.\-/]\d{1,2}[.\-/]\d{2,4})`),
	}},
	{"location", []*regexp.Regexp{
		regexp.MustCompile(`(?im)\bBauort[:\s]+(.+)`),
		regexp.MustCompile(`(?im)\bStandort[:\s]+(.+)`),
		regexp.MustCompile(`(?im)\bAdresse[:\s]+(.+)`),
	}},
	{"lot", []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bLos\s*(\d+)`),
		regexp.MustCompile(`(?i)\bBauabschnitt\s*(\d+)`),
		regexp.MustCompile(`\bBA\s*(\d+)`),
	}},
}

// ExtractTenderSummary reads project facts from the first maxPages pages.
// Confidence is the share of the five fields that were found.
func ExtractTenderSummary(pages [][]string, maxPages int) entity.TenderSummary {
	if maxPages <= 0 {
		maxPages = DefaultTenderPages
	}
	var b strings.Builder
	for _, lines := range pages[:min(maxPages, len(pages))] {
		for _, l := range lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	text := b.String()

	var out entity.TenderSummary
	found := 0
	for _, f := range tenderFields {
		for _, re := range f.patterns {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			v := truncateRunes(strings.Join(strings.Fields(m[1]), " "), tenderValueMax)
			if v == "" {
				continue
			}
			switch f.name {
			case "project_name":
				out.ProjectName = v
			case "client":
				out.Client = v
			case "deadline":
				out.Deadline = v
			case "location":
				out.Location = v
			case "lot":
				out.Lot = v
			}
			found++
			break
		}
	}
	out.Confidence = float64(found) / float64(len(tenderFields))
	return out
}
