package risk

import (
	"testing"

	"github.com/clarencejohnson126/angebotsagent/constants"
	"github.com/clarencejohnson126/angebotsagent/internal/entity"
)

func qty(v float64) *float64 { return &v }

func TestCompareQuantities(t *testing.T) {
	positions := []entity.LVPosition{
		{PositionNumber: "01.02.0010", Quantity: qty(100)},
		{PositionNumber: "01.02.0020", Quantity: qty(100)},
		{PositionNumber: "01.02.0030", Quantity: qty(100)},
		{PositionNumber: "01.02.0040"},
	}
	takeoffs := []Takeoff{
		{PositionNumber: "01.02.0010", Quantity: 105},
		{PositionNumber: "01.02.0020", Quantity: 115},
		{PositionNumber: "01.02.0030", Quantity: 70},
		{PositionNumber: "01.02.0040", Quantity: 50},
		{PositionNumber: "09.99.9999", Quantity: 1},
	}

	risks := CompareQuantities(positions, takeoffs)
	if len(risks) != 2 {
		t.Fatalf("risks = %d, want 2: %+v", len(risks), risks)
	}
	if risks[0].Severity != SeverityMedium || risks[0].Title != "Mengenabweichung Position 01.02.0020" {
		t.Errorf("risk 0 = %+v", risks[0])
	}
	if risks[1].Severity != SeverityHigh || risks[1].DeviationPercent != 30 {
		t.Errorf("risk 1 = %+v", risks[1])
	}
	if risks[1].Description != "LV: 100,00, Messung: 70,00 (Abweichung: 30,0%)" {
		t.Errorf("description = %q", risks[1].Description)
	}
}

func TestCompareQuantitiesBoundary(t *testing.T) {
	positions := []entity.LVPosition{{PositionNumber: "1.", Quantity: qty(100)}}
	if r := CompareQuantities(positions, []Takeoff{{PositionNumber: "1.", Quantity: 110}}); len(r) != 0 {
		t.Errorf("10%% deviation must not be reported: %+v", r)
	}
	r := CompareQuantities(positions, []Takeoff{{PositionNumber: "1.", Quantity: 120}})
	if len(r) != 1 || r[0].Severity != SeverityMedium {
		t.Errorf("20%% deviation: %+v", r)
	}
}

func TestTakeoffsFromAreas(t *testing.T) {
	res := entity.ExtractionResult{TotalsByCategory: map[string]float64{"office": 120.5, "circulation": 30.25, "outdoor": 6}}
	got := TakeoffsFromAreas(res, map[string][]constants.RoomCategory{
		"02.01.0010": {constants.Office, constants.Circulation},
		"02.01.0020": {constants.Outdoor},
	})
	if len(got) != 2 || got[0].PositionNumber != "02.01.0010" || got[0].Quantity != 150.75 || got[1].Quantity != 6 {
		t.Errorf("takeoffs = %+v", got)
	}
}
