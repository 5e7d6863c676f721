package textlayer

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
)

// NormalizeLine composes the line to NFC and collapses tabs and runs of
// spaces. Numbers and letters are never rewritten.
func NormalizeLine(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SplitPages turns a text layer into pages of normalized lines. Pages are
// separated by form feeds; blank lines are dropped.
func SplitPages(text string) [][]string {
	text = reCRLF.ReplaceAllString(text, "\n")
	raw := strings.Split(text, "\f")
	// pdftotext terminates the last page with \f as well
	if len(raw) > 1 && strings.TrimSpace(raw[len(raw)-1]) == "" {
		raw = raw[:len(raw)-1]
	}
	pages := make([][]string, 0, len(raw))
	for _, p := range raw {
		pages = append(pages, NormalizeLines(strings.Split(p, "\n")))
	}
	return pages
}

// NormalizeLines normalizes every line and drops the empty ones.
func NormalizeLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = NormalizeLine(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// JoinPages renders pages back into a form-feed separated text layer.
func JoinPages(pages [][]string) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strings.Join(p, "\n")
	}
	return strings.Join(parts, "\f")
}
