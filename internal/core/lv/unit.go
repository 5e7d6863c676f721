package lv

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Einheit is a canonical unit of measure.
type Einheit string

const (
	Meter       Einheit = "m"
	SquareMeter Einheit = "m²"
	CubicMeter  Einheit = "m³"
	Piece       Einheit = "Stk"
	Kilogram    Einheit = "kg"
	Tonne       Einheit = "t"
	Liter       Einheit = "l"
	Hour        Einheit = "h"
	LumpSum     Einheit = "psch"
)

var unitVariants = map[string]Einheit{
	"m": Meter, "lfm": Meter, "lfdm": Meter, "lm": Meter, "lfd.m": Meter, "lfd. m": Meter,
	"m²": SquareMeter, "m2": SquareMeter, "qm": SquareMeter, "m^2": SquareMeter,
	"m³": CubicMeter, "m3": CubicMeter, "cbm": CubicMeter, "m^3": CubicMeter,
	"stk": Piece, "stck": Piece, "st": Piece, "stück": Piece,
	"kg": Kilogram, "kilogramm": Kilogram,
	"t": Tonne, "to": Tonne, "tonne": Tonne, "tonnen": Tonne,
	"l": Liter, "ltr": Liter, "liter": Liter,
	"h": Hour, "std": Hour, "stunde": Hour, "stunden": Hour,
	"psch": LumpSum, "pauschal": LumpSum, "pschl": LumpSum,
}

// ParseEinheit maps a unit spelling to its canonical form. A single trailing
// dot is ignored ("Stk.", "psch."). Unknown units report false.
func ParseEinheit(text string) (Einheit, bool) {
	key := strings.ToLower(strings.TrimSpace(norm.NFC.String(text)))
	if key == "" {
		return "", false
	}
	if u, ok := unitVariants[key]; ok {
		return u, true
	}
	if trimmed := strings.TrimSuffix(key, "."); trimmed != key {
		u, ok := unitVariants[trimmed]
		return u, ok
	}
	return "", false
}

func (e Einheit) String() string { return string(e) }
