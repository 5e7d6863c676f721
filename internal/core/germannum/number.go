// Package germannum parses and formats numbers written with German
// separators ("1.070,55" is one thousand seventy and 55 hundredths).
package germannum

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var numberToken = regexp.MustCompile(`\d+(?:[.,]\d+)*`)

// Parse converts a German formatted number.
//
// Both '.' and ',' present: dots are thousands separators, the comma is the
// decimal separator. Only ',' present: it is the decimal separator. Only '.'
// present: the text is read as is. Blank and placeholder text ("....") is not
// a number.
func Parse(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" || strings.Trim(s, ".") == "" {
		return 0, false
	}

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case hasComma:
		s = strings.Replace(s, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseFromText parses the first number-looking token inside text, e.g. the
// value of "NRF: 176,99 m²".
func ParseFromText(text string) (float64, bool) {
	tok := numberToken.FindString(text)
	if tok == "" {
		return 0, false
	}
	return Parse(tok)
}

// Format renders v with the given number of decimals, '.' grouping thousands
// and ',' as decimal separator. Format(1070.55, 2) == "1.070,55".
func Format(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	raw := strconv.FormatFloat(v, 'f', decimals, 64)

	sign := ""
	if strings.HasPrefix(raw, "-") {
		sign = "-"
		raw = raw[1:]
	}
	intPart, fracPart, _ := strings.Cut(raw, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if fracPart != "" {
		b.WriteByte(',')
		b.WriteString(fracPart)
	}
	return b.String()
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
