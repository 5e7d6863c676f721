package lv

import (
	"testing"
)

func TestExtractPositions(t *testing.T) {
	pages := [][]string{
		{
			"Leistungsverzeichnis Rohbau",
			"01.02.0010 Baustelleneinrichtung",
			"Einrichten und Räumen der Baustelle",
			"1,000 psch",
			"01.02.0020 Mauerwerk KS 24 cm",
			"Kalksandstein-Mauerwerk",
			"Fabrikat XY oder gleichwertig",
			"Druckfestigkeitsklasse 20",
			"Rohdichte 2,0",
			"Menge: 125,50 m²",
		},
		{
			"01.02.0030 Stahlbetondecke 20 cm 340,000 m² 85,00 28.900,00",
			"3. Stundenlohnarbeiten",
			"Menge: 40",
		},
	}

	doc := ExtractPositions(pages)
	if len(doc.Positions) != 4 {
		t.Fatalf("positions = %d, want 4: %+v", len(doc.Positions), doc.Positions)
	}
	if doc.PageCount != 2 || doc.Method != Method {
		t.Errorf("page count = %d method = %s", doc.PageCount, doc.Method)
	}

	p0 := doc.Positions[0]
	if p0.PositionNumber != "01.02.0010" || p0.Title != "Baustelleneinrichtung" {
		t.Errorf("p0 = %+v", p0)
	}
	if !ptrEq(p0.Quantity, 1) || p0.Unit == nil || *p0.Unit != "psch" || p0.Confidence != 0.85 {
		t.Errorf("p0 quantity = %v unit = %v conf = %v", p0.Quantity, p0.Unit, p0.Confidence)
	}
	if p0.Page != 1 || p0.PageReference != "Seite 1" {
		t.Errorf("p0 page = %d %q", p0.Page, p0.PageReference)
	}

	p1 := doc.Positions[1]
	if p1.Marker == nil || *p1.Marker != string(MarkerOrEquivalent) {
		t.Errorf("p1 marker = %v", p1.Marker)
	}
	if p1.Description != "Kalksandstein-Mauerwerk Fabrikat XY oder gleichwertig Druckfestigkeitsklasse 20" {
		t.Errorf("p1 description = %q", p1.Description)
	}
	if p1.LongText != "Rohdichte 2,0\nMenge: 125,50 m²" {
		t.Errorf("p1 long text = %q", p1.LongText)
	}
	if !ptrEq(p1.Quantity, 125.5) || *p1.Unit != "m²" {
		t.Errorf("p1 quantity = %v", p1.Quantity)
	}

	p2 := doc.Positions[2]
	if p2.Page != 2 || !ptrEq(p2.Quantity, 340) || !ptrEq(p2.UnitPrice, 85) || !ptrEq(p2.TotalPrice, 28900) {
		t.Errorf("p2 = %+v", p2)
	}

	p3 := doc.Positions[3]
	if p3.Depth != 1 || !ptrEq(p3.Quantity, 40) || p3.Unit != nil || p3.Confidence != 0.6 {
		t.Errorf("p3 = %+v", p3)
	}

	s := doc.Summary
	if s.TotalPositions != 4 || s.WithQuantity != 4 || s.WithUnit != 3 {
		t.Errorf("summary = %+v", s)
	}
	if s.UnitDistribution["m²"] != 2 || s.UnitDistribution["psch"] != 1 {
		t.Errorf("units = %v", s.UnitDistribution)
	}
	// (0.85*3 + 0.6) / 4 = 0.7875
	if s.AverageConfidence != 0.79 || s.Quality != QualityMedium {
		t.Errorf("confidence = %v quality = %s", s.AverageConfidence, s.Quality)
	}
}

func TestExtractPositionsEmpty(t *testing.T) {
	doc := ExtractPositions([][]string{{"Vorbemerkungen", "Allgemeines"}})
	if len(doc.Positions) != 0 || doc.Summary.Quality != QualityNoPositions || len(doc.Warnings) == 0 {
		t.Errorf("doc = %+v", doc)
	}
}

func TestAssessQuality(t *testing.T) {
	tests := []struct {
		total, withQty int
		conf           float64
		want           string
	}{
		{0, 0, 0, QualityNoPositions},
		{10, 9, 0.85, QualityGood},
		{10, 6, 0.7, QualityMedium},
		{10, 2, 0.9, QualityNeedsReview},
		{10, 10, 0.5, QualityNeedsReview},
	}
	for _, tt := range tests {
		if got := assessQuality(tt.total, tt.withQty, tt.conf); got != tt.want {
			t.Errorf("assessQuality(%d,%d,%v) = %s, want %s", tt.total, tt.withQty, tt.conf, got, tt.want)
		}
	}
}

func TestExtractTenderSummary(t *testing.T) {
	pages := [][]string{
		{
			"Ausschreibung Los 3 Trockenbau",
			"Bauvorhaben: Neubau Bürogebäude Haardtring",
			"Auftraggeber:   Stadt Darmstadt   Hochbauamt",
			"Bauort: Haardtring 100, 64295 Darmstadt",
			"Abgabefrist: 15.03.2025, 11:00 Uhr",
		},
	}
	s := ExtractTenderSummary(pages, 0)
	if s.ProjectName != "Neubau Bürogebäude Haardtring" {
		t.Errorf("project = %q", s.ProjectName)
	}
	if s.Client != "Stadt Darmstadt Hochbauamt" {
		t.Errorf("client = %q", s.Client)
	}
	if s.Deadline != "15.03.2025" || s.Lot != "3" {
		t.Errorf("deadline = %q lot = %q", s.Deadline, s.Lot)
	}
	if s.Location != "Haardtring 100, 64295 Darmstadt" || s.Confidence != 1 {
		t.Errorf("location = %q confidence = %v", s.Location, s.Confidence)
	}

	if got := ExtractTenderSummary([][]string{{"Inhaltsverzeichnis"}}, 5); got.Confidence != 0 {
		t.Errorf("empty confidence = %v", got.Confidence)
	}
}
