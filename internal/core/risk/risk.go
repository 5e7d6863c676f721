// Package risk flags LV positions whose stated quantity disagrees with a
// measured take-off (Nachtragspotenzial).
package risk

import (
	"fmt"
	"math"
	"sort"

	"github.com/clarencejohnson126/angebotsagent/constants"
	"github.com/clarencejohnson126/angebotsagent/internal/core/germannum"
	"github.com/clarencejohnson126/angebotsagent/internal/entity"
)

const (
	CategoryQuantityMismatch = "mengenabweichung"
	SeverityMedium           = "medium"
	SeverityHigh             = "high"

	// Deviations above MediumThreshold percent are reported; above
	// HighThreshold they are high severity.
	MediumThreshold = 10.0
	HighThreshold   = 20.0
)

// Takeoff is a measured quantity for one LV position.
type Takeoff struct {
	PositionNumber string  `json:"position_number"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit,omitempty"`
}

// Risk is one finding.
type Risk struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Category         string  `json:"category"`
	Severity         string  `json:"severity"`
	SourceReference  string  `json:"source_reference"`
	DeviationPercent float64 `json:"deviation_percent"`
}

// CompareQuantities reports every position whose take-off deviates from the
// LV quantity by more than MediumThreshold percent. Positions without a
// quantity and take-offs of zero are skipped.
func CompareQuantities(positions []entity.LVPosition, takeoffs []Takeoff) []Risk {
	byPos := make(map[string][]Takeoff, len(takeoffs))
	for _, t := range takeoffs {
		byPos[t.PositionNumber] = append(byPos[t.PositionNumber], t)
	}

	risks := []Risk{}
	for _, p := range positions {
		if p.Quantity == nil || *p.Quantity == 0 {
			continue
		}
		lvQty := *p.Quantity
		for _, t := range byPos[p.PositionNumber] {
			if t.Quantity == 0 {
				continue
			}
			diff := math.Abs(t.Quantity-lvQty) / lvQty * 100
			if diff <= MediumThreshold {
				continue
			}
			severity := SeverityMedium
			if diff > HighThreshold {
				severity = SeverityHigh
			}
			risks = append(risks, Risk{
				Title: fmt.Sprintf("Mengenabweichung Position %s", p.PositionNumber),
				Description: fmt.Sprintf("LV: %s, Messung: %s (Abweichung: %s%%)",
					germannum.Format(lvQty, 2), germannum.Format(t.Quantity, 2), germannum.Format(diff, 1)),
				Category:         CategoryQuantityMismatch,
				Severity:         severity,
				SourceReference:  fmt.Sprintf("LV Position %s", p.PositionNumber),
				DeviationPercent: math.Round(diff*10) / 10,
			})
		}
	}
	return risks
}

// TakeoffsFromAreas turns an area result into take-offs: each LV position
// mapped to room categories gets the summed counted m² of those categories.
func TakeoffsFromAreas(res entity.ExtractionResult, mapping map[string][]constants.RoomCategory) []Takeoff {
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Takeoff, 0, len(keys))
	for _, pos := range keys {
		var sum float64
		for _, cat := range mapping[pos] {
			sum += res.TotalsByCategory[string(cat)]
		}
		out = append(out, Takeoff{PositionNumber: pos, Quantity: germannum.Round2(sum), Unit: "m²"})
	}
	return out
}
