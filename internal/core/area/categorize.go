package area

import (
	"github.com/clarencejohnson126/angebotsagent/constants"
	"github.com/clarencejohnson126/angebotsagent/internal/core/germannum"
	"github.com/clarencejohnson126/angebotsagent/internal/entity"
)

// OutdoorFactor is the share of an outdoor area that counts towards the living/usable area.
const OutdoorFactor = 0.5

// Categorize maps a room name to its category; unknown names are Other.
func Categorize(name string) constants.RoomCategory {
	cat, _ := constants.CategorizeName(name)
	return cat
}

// ResolveFactor picks the area factor with its provenance. An explicit
// "50%:" line wins over the outdoor default.
func ResolveFactor(cat constants.RoomCategory, explicitHalf bool) (float64, entity.FactorSource) {
	switch {
	case explicitHalf:
		return OutdoorFactor, entity.FactorSourceExplicit50
	case cat == constants.Outdoor:
		return OutdoorFactor, entity.FactorSourceDefaultOutdoor
	default:
		return 1.0, entity.FactorSourceNone
	}
}

// newRoom fills the derived fields of a room. counted is always
// round(area*factor, 2).
func newRoom(number, name string, areaM2 float64, page int, source, pattern string, explicitHalf bool) entity.ExtractedRoom {
	cat := Categorize(name)
	factor, fs := ResolveFactor(cat, explicitHalf)
	return entity.ExtractedRoom{
		RoomNumber:        number,
		RoomName:          name,
		AreaM2:            areaM2,
		CountedM2:         germannum.Round2(areaM2 * factor),
		Factor:            factor,
		Page:              page,
		SourceText:        source,
		ExtractionPattern: pattern,
		Category:          cat,
		FactorSource:      fs,
	}
}
