package area

import (
	"testing"

	"github.com/clarencejohnson126/angebotsagent/constants"
)

func TestDetectStyle(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		want      constants.BlueprintStyle
		ambiguous bool
	}{
		{"haardtring pair", "R2.E5.3.5\nWohnen\nF: 22,79 m²", constants.StyleHaardtring, false},
		{"haardtring short id", "R1A\nKüche\nF:\n22,79 m²", constants.StyleHaardtring, false},
		{"haardtring codes", "Wohnen\nF: 22,79 m²\nBA: 1", constants.StyleHaardtring, false},
		{"leiq pair", "B.00.2.002\nLobby\nNRF: 176,99 m²", constants.StyleLeiQ, false},
		{"leiq legacy", "B.01.1.010\nBüro\nF= 50.37 m²", constants.StyleLeiQ, false},
		{"omniturm grid", "03_b6.12\nBüro\nNGF: 20,79 m2", constants.StyleOmniturm, false},
		{"omniturm b-pattern", "B.00.2.002\nNGF: 10,00 m2", constants.StyleOmniturm, false},
		{"ngf alone", "NGF: 20,79 m2", constants.StyleOmniturm, false},
		{"nrf alone", "NRF: 12,00 m²", constants.StyleLeiQ, false},
		{"f alone", "F: 22,79 m²", constants.StyleHaardtring, false},
		{"nothing", "Lageplan M 1:500", constants.StyleUnknown, false},
		{"haardtring wins tie", "R2.E5.3.5\nF: 22,79 m²\nB.00.2.002\nNRF: 10,00 m²", constants.StyleHaardtring, true},
		{"leiq beats omniturm", "B.00.2.002\nNRF: 10,00 m²\nNGF: 11,00 m2", constants.StyleLeiQ, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DetectStyle(tt.text)
			if d.Style != tt.want {
				t.Errorf("DetectStyle() style = %s, want %s (signals %+v)", d.Style, tt.want, d.Signals)
			}
			if d.Ambiguous != tt.ambiguous {
				t.Errorf("DetectStyle() ambiguous = %v, want %v (families %v)", d.Ambiguous, tt.ambiguous, d.Families)
			}
		})
	}
}

func TestDetectStyleNRFIsNotFColon(t *testing.T) {
	d := DetectStyle("NRF: 12,00 m²\nNGF: 3,00 m2")
	if d.Signals.FColon {
		t.Error("NRF:/NGF: must not count as F:")
	}
}

func TestDetectPagesDeterministic(t *testing.T) {
	pages := [][]string{{"B.00.2.002", "Lobby"}, {"NRF: 176,99 m²"}}
	a := DetectPages(pages)
	b := DetectPages(pages)
	if a.Style != b.Style || a.Style != constants.StyleLeiQ {
		t.Errorf("DetectPages() = %s, %s", a.Style, b.Style)
	}
}
