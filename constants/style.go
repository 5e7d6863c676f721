package constants

import "strings"

// BlueprintStyle names a known floor-plan annotation dialect.
type BlueprintStyle string

const (
	StyleHaardtring BlueprintStyle = "haardtring"
	StyleLeiQ       BlueprintStyle = "leiq"
	StyleOmniturm   BlueprintStyle = "omniturm"
	StyleUnknown    BlueprintStyle = "unknown"
)

// ConcreteStyles are the styles with a dedicated extractor, in cascade order.
var ConcreteStyles = []BlueprintStyle{StyleHaardtring, StyleLeiQ, StyleOmniturm}

// ParseStyle validates a caller supplied style override.
func ParseStyle(s string) (BlueprintStyle, bool) {
	switch BlueprintStyle(strings.ToLower(strings.TrimSpace(s))) {
	case StyleHaardtring:
		return StyleHaardtring, true
	case StyleLeiQ:
		return StyleLeiQ, true
	case StyleOmniturm:
		return StyleOmniturm, true
	case StyleUnknown:
		return StyleUnknown, true
	}
	return "", false
}

func (s BlueprintStyle) String() string { return string(s) }

// StyleNames lists the accepted override values.
func StyleNames() []string {
	return []string{string(StyleHaardtring), string(StyleLeiQ), string(StyleOmniturm), string(StyleUnknown)}
}
