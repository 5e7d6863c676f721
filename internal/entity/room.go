package entity

import "github.com/clarencejohnson126/angebotsagent/constants"

// FactorSource records why a room's area factor is what it is.
type FactorSource string

const (
	FactorSourceNone           FactorSource = "none"
	FactorSourceDefaultOutdoor FactorSource = "default_outdoor"
	FactorSourceExplicit50     FactorSource = "explicit_50%"
)

// BoundingBox is the position of a room label on its page, in PDF points.
// Text-only inputs carry no coordinates, so it stays nil for them.
type BoundingBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// ExtractedRoom is one room recovered from a floor-plan text layer.
// CountedM2 is always round(AreaM2*Factor, 2) and SourceText holds the
// literal matched area text.
type ExtractedRoom struct {
	RoomNumber        string                 `json:"room_number"`
	RoomName          string                 `json:"room_name"`
	AreaM2            float64                `json:"area_m2"`
	CountedM2         float64                `json:"counted_m2"`
	Factor            float64                `json:"factor"`
	Page              int                    `json:"page"`
	SourceText        string                 `json:"source_text"`
	ExtractionPattern string                 `json:"extraction_pattern"`
	Category          constants.RoomCategory `json:"category"`
	PerimeterM        *float64               `json:"perimeter_m,omitempty"`
	HeightM           *float64               `json:"height_m,omitempty"`
	BBox              *BoundingBox           `json:"bbox,omitempty"`
	FactorSource      FactorSource           `json:"factor_source,omitempty"`
	OverrideM2        *float64               `json:"override_m2,omitempty"`
	OverrideText      string                 `json:"override_text,omitempty"`
}

// ExtractionResult is the aggregated take-off for one document.
type ExtractionResult struct {
	Rooms            []ExtractedRoom    `json:"rooms"`
	TotalAreaM2      float64            `json:"total_area_m2"`
	TotalCountedM2   float64            `json:"total_counted_m2"`
	RoomCount        int                `json:"room_count"`
	PageCount        int                `json:"page_count"`
	BlueprintStyle   string             `json:"blueprint_style"`
	ExtractionMethod string             `json:"extraction_method"`
	Warnings         []string           `json:"warnings"`
	TotalsByCategory map[string]float64 `json:"totals_by_category"`
}
