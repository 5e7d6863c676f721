package area

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/clarencejohnson126/angebotsagent/internal/core/germannum"
	"github.com/clarencejohnson126/angebotsagent/internal/entity"
)

func hasWarning(res entity.ExtractionResult, substr string) bool {
	for _, w := range res.Warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestExtractErrors(t *testing.T) {
	if _, err := Extract(nil, Options{}); !errors.Is(err, ErrNoPages) {
		t.Errorf("Extract(nil) err = %v, want ErrNoPages", err)
	}
	_, err := Extract([][]string{{"x"}}, Options{Style: "gothic"})
	if !errors.Is(err, ErrInvalidStyle) {
		t.Errorf("Extract(style=gothic) err = %v, want ErrInvalidStyle", err)
	}
}

func TestExtractLeiQEndToEnd(t *testing.T) {
	res, err := Extract([][]string{{"B.00.2.002", "Lobby", "NRF: 176,99 m²"}}, Options{})
	if err != nil {
		t.Fatalf("Extract() err = %v", err)
	}
	if res.BlueprintStyle != "leiq" || res.ExtractionMethod != Method {
		t.Errorf("style = %s method = %s", res.BlueprintStyle, res.ExtractionMethod)
	}
	if res.RoomCount != 1 || !approx(res.TotalAreaM2, 176.99) || !approx(res.TotalCountedM2, 176.99) {
		t.Errorf("result = %+v", res)
	}
	if !approx(res.TotalsByCategory["circulation"], 176.99) {
		t.Errorf("totals = %v", res.TotalsByCategory)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestExtractHaardtringBalcony(t *testing.T) {
	res, err := Extract([][]string{{"R2.E5.3.5", "Balkon", "F: 12,00 m²"}}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.RoomCount != 1 || !approx(res.TotalAreaM2, 12) || !approx(res.TotalCountedM2, 6) {
		t.Errorf("result = %+v", res)
	}
	if res.Rooms[0].FactorSource != entity.FactorSourceDefaultOutdoor {
		t.Errorf("factor source = %s", res.Rooms[0].FactorSource)
	}
}

func TestExtractCascade(t *testing.T) {
	t.Run("other style as fallback", func(t *testing.T) {
		res, err := Extract([][]string{{"R2.E5.3.5", "Wohnen", "F: 22,79 m²"}}, Options{Style: "leiq"})
		if err != nil {
			t.Fatal(err)
		}
		if res.RoomCount != 1 || !hasWarning(res, "Page 0: Used haardtring pattern as fallback") {
			t.Errorf("result = %+v", res)
		}
		if res.BlueprintStyle != "leiq" {
			t.Errorf("style = %s", res.BlueprintStyle)
		}
	})

	t.Run("generic as last resort", func(t *testing.T) {
		res, err := Extract([][]string{{"EG_001", "Büro", "BGF: 12,00 m²"}}, Options{Style: "haardtring"})
		if err != nil {
			t.Fatal(err)
		}
		if res.RoomCount != 1 || !hasWarning(res, "Page 0: Used generic flexible extraction") {
			t.Errorf("result = %+v", res)
		}
	})

	t.Run("unknown style starts generic", func(t *testing.T) {
		res, err := Extract([][]string{{"EG_001", "Büro", "BGF: 12,00 m²"}}, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if res.BlueprintStyle != "unknown" || res.RoomCount != 1 {
			t.Errorf("result = %+v", res)
		}
		if !hasWarning(res, "Unknown blueprint style") || hasWarning(res, "fallback") {
			t.Errorf("warnings = %v", res.Warnings)
		}
	})
}

func TestExtractEmptyResultIsExplained(t *testing.T) {
	res, err := Extract([][]string{{"Legende", "M 1:100"}}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.RoomCount != 0 || res.Rooms == nil {
		t.Errorf("rooms = %v", res.Rooms)
	}
	if len(res.Warnings) == 0 || !hasWarning(res, "Page 0: No rooms found") {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestExtractNoRoomsKeepsGenericCounts(t *testing.T) {
	pages := [][]string{{"EG_001", "Büro", "Fläche: 20000 m²"}}
	res, err := Extract(pages, Options{Style: "leiq", NoRescue: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.RoomCount != 0 {
		t.Fatalf("rooms = %v", res.Rooms)
	}
	if !hasWarning(res, "Page 0: No rooms found") || !hasWarning(res, "Page 0: 1 areas outside") {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestExtractPageSelection(t *testing.T) {
	pages := [][]string{
		{"B.00.2.001", "Büro", "NRF: 10,00 m²"},
		{"B.00.2.002", "Flur", "NRF: 5,00 m²"},
	}
	res, err := Extract(pages, Options{Pages: []int{1, 7}})
	if err != nil {
		t.Fatal(err)
	}
	if res.RoomCount != 1 || res.Rooms[0].Page != 1 || res.PageCount != 2 {
		t.Errorf("result = %+v", res)
	}
	if !hasWarning(res, "Page 7 does not exist") {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestExtractAmbiguousDocument(t *testing.T) {
	pages := [][]string{
		{"R2.E5.3.5", "Wohnen", "F: 22,79 m²"},
		{"B.00.2.002", "Lobby", "NRF: 10,00 m²"},
	}
	res, err := Extract(pages, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.BlueprintStyle != "haardtring" || !hasWarning(res, "Mixed blueprint signals") {
		t.Errorf("style = %s warnings = %v", res.BlueprintStyle, res.Warnings)
	}
	if res.RoomCount != 2 || !hasWarning(res, "Page 1: Used leiq pattern as fallback") {
		t.Errorf("result = %+v", res)
	}
}

func TestExtractRescue(t *testing.T) {
	res, err := Extract([][]string{{"Grundriss", "NRF: 12,50 m²", "NRF: 7,25 m²"}}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.ExtractionMethod != RescueMethod || res.RoomCount != 2 {
		t.Fatalf("result = %+v", res)
	}
	if res.Rooms[0].RoomNumber != "room_001" || res.Rooms[1].RoomNumber != "room_002" {
		t.Errorf("numbers = %s %s", res.Rooms[0].RoomNumber, res.Rooms[1].RoomNumber)
	}

	res, err = Extract([][]string{{"Grundriss", "NRF: 12,50 m²"}}, Options{NoRescue: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.RoomCount != 0 || res.ExtractionMethod != Method {
		t.Errorf("NoRescue result = %+v", res)
	}
}

func samplePages() [][]string {
	var pages [][]string
	for p := 0; p < 8; p++ {
		pages = append(pages, []string{
			fmt.Sprintf("B.0%d.2.001", p), "Büro", fmt.Sprintf("NRF: %d,25 m²", 10+p),
			fmt.Sprintf("B.0%d.2.002", p), "Balkon", "NRF: 6,40 m²", "U: 10,2 m",
			fmt.Sprintf("B.0%d.2.003", p), "WC", "NRF:", "3,10 m²",
		})
	}
	pages = append(pages, []string{"Schnitt A-A"})
	return pages
}

func TestExtractConcurrencyMatchesSequential(t *testing.T) {
	pages := samplePages()
	seq, err := Extract(pages, Options{Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	par, err := Extract(pages, Options{Workers: 4})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(seq, par) {
		t.Error("parallel extraction differs from sequential")
	}
	again, _ := Extract(pages, Options{Workers: 1})
	if !reflect.DeepEqual(seq, again) {
		t.Error("extraction is not idempotent")
	}
}

func TestExtractInvariants(t *testing.T) {
	res, err := Extract(samplePages(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.RoomCount != 24 {
		t.Fatalf("room count = %d, want 24", res.RoomCount)
	}

	var sumArea, sumCounted float64
	byCat := map[string]float64{}
	for _, r := range res.Rooms {
		if r.CountedM2 != germannum.Round2(r.AreaM2*r.Factor) {
			t.Errorf("%s: counted %v != round(%v*%v)", r.RoomNumber, r.CountedM2, r.AreaM2, r.Factor)
		}
		if r.SourceText == "" {
			t.Errorf("%s: empty source text", r.RoomNumber)
		}
		if v, ok := germannum.ParseFromText(r.SourceText); !ok || v != r.AreaM2 {
			t.Errorf("%s: source %q parses to %v, area %v", r.RoomNumber, r.SourceText, v, r.AreaM2)
		}
		sumArea += r.AreaM2
		sumCounted += r.CountedM2
		byCat[string(r.Category)] += r.CountedM2
	}
	if res.TotalAreaM2 != germannum.Round2(sumArea) || res.TotalCountedM2 != germannum.Round2(sumCounted) {
		t.Errorf("totals %v/%v, sums %v/%v", res.TotalAreaM2, res.TotalCountedM2, sumArea, sumCounted)
	}
	for k, v := range byCat {
		if res.TotalsByCategory[k] != germannum.Round2(v) {
			t.Errorf("category %s: %v != %v", k, res.TotalsByCategory[k], germannum.Round2(v))
		}
	}
	if !hasWarning(res, "Page 8: No rooms found") {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestExtractRejectsValuesWithoutLeadingDigit(t *testing.T) {
	pages := [][]string{
		{"R1A", "Bad", "F: ,5 m²"},
		{"R2B", "Flur", "F: 5,25 m²"},
		{"EG_002", "Lager", "Fläche: ,75 m²"},
	}
	res, err := Extract(pages, Options{NoRescue: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.RoomCount != 1 || res.Rooms[0].RoomNumber != "R2B" {
		t.Fatalf("rooms = %+v", res.Rooms)
	}
	for _, r := range res.Rooms {
		if v, ok := germannum.ParseFromText(r.SourceText); !ok || v != r.AreaM2 {
			t.Errorf("%s: source %q parses to %v, area %v", r.RoomNumber, r.SourceText, v, r.AreaM2)
		}
	}
}

func TestSummarize(t *testing.T) {
	res, _ := Extract([][]string{{"B.00.2.002", "Lobby", "NRF: 176,99 m²"}}, Options{})
	s := Summarize(res)
	if s.TotalRooms != 1 || s.HasWarnings || s.BlueprintStyle != "leiq" {
		t.Errorf("summary = %+v", s)
	}
}

func TestExtractedRoomJSONOmitsBBox(t *testing.T) {
	res, err := Extract([][]string{{"R2B", "Flur", "F: 5,25 m²"}}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.RoomCount != 1 || res.Rooms[0].BBox != nil {
		t.Fatalf("rooms = %+v", res.Rooms)
	}
	raw, err := json.Marshal(res.Rooms[0])
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["bbox"]; ok {
		t.Errorf("bbox present in %s", raw)
	}
	if m["room_number"] != "R2B" || m["source_text"] == "" {
		t.Errorf("room json = %s", raw)
	}
}
