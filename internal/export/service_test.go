package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/clarencejohnson126/angebotsagent/constants"
	"github.com/clarencejohnson126/angebotsagent/internal/common"
	"github.com/clarencejohnson126/angebotsagent/internal/entity"
)

func sampleResult() entity.ExtractionResult {
	return entity.ExtractionResult{
		Rooms: []entity.ExtractedRoom{
			{RoomNumber: "R1.01", RoomName: "Büro", AreaM2: 20.5, CountedM2: 20.5, Factor: 1, Category: constants.Office, ExtractionPattern: "leiq_nrf"},
			{RoomNumber: "R1.02", RoomName: "Balkon", AreaM2: 6, CountedM2: 3, Factor: 0.5, Page: 1, Category: constants.Outdoor, ExtractionPattern: "leiq_nrf"},
		},
		TotalAreaM2:      26.5,
		TotalCountedM2:   23.5,
		RoomCount:        2,
		PageCount:        2,
		BlueprintStyle:   "leiq",
		ExtractionMethod: "unified_extraction",
		Warnings:         []string{"Page 1: 1 room identifiers without area"},
		TotalsByCategory: map[string]float64{"office": 20.5, "outdoor": 3},
	}
}

func openBook(t *testing.T, b []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestAreasXLSX(t *testing.T) {
	b, err := AreasXLSX(sampleResult())
	if err != nil {
		t.Fatalf("AreasXLSX: %v", err)
	}
	f := openBook(t, b)

	rows, err := f.GetRows(SheetRooms)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 || rows[0][0] != "Raum-Nr." || rows[2][1] != "Balkon" || rows[2][6] != "2" {
		t.Errorf("rooms sheet = %q", rows)
	}
	if rows[3][0] != "Summe" || rows[3][5] != "23.5" {
		t.Errorf("sum row = %q", rows[3])
	}

	cats, _ := f.GetRows(SheetCategories)
	if len(cats) != 3 || cats[1][0] != "office" || cats[2][0] != "outdoor" {
		t.Errorf("categories = %q", cats)
	}
	hints, _ := f.GetRows(SheetWarnings)
	if len(hints) != 3 || hints[1][0] != "Page 1: 1 room identifiers without area" {
		t.Errorf("warnings = %q", hints)
	}
}

func TestLVXLSX(t *testing.T) {
	qty, unit := 125.5, "m²"
	b, err := LVXLSX(entity.LVDocument{Positions: []entity.LVPosition{
		{PositionNumber: "01.02.0020", Title: "Mauerwerk", Quantity: &qty, Unit: &unit, Page: 1, Confidence: 0.85, Source: "regex"},
		{PositionNumber: "01.02.0030", Title: "Zulage", Page: 2, Confidence: 0.6, Source: "regex"},
	}})
	if err != nil {
		t.Fatal(err)
	}
	rows, _ := openBook(t, b).GetRows(SheetLV)
	if len(rows) != 3 || rows[1][2] != "125.5" || rows[1][3] != "m²" || rows[2][2] != "" {
		t.Errorf("lv sheet = %q", rows)
	}
}

type stubJobs struct {
	job *entity.ExtractionJob
}

func (s stubJobs) Start(context.Context, uuid.UUID, constants.JobKind, string) (*entity.ExtractionJob, error) {
	return nil, errors.New("not used")
}
func (s stubJobs) FinishAreas(context.Context, uuid.UUID, entity.ExtractionResult) error { return nil }
func (s stubJobs) FinishLV(context.Context, uuid.UUID, entity.LVDocument, string) error { return nil }
func (s stubJobs) FinishFailure(context.Context, uuid.UUID, string) error { return nil }
func (s stubJobs) LatestForDocument(context.Context, uuid.UUID, constants.JobKind) (*entity.ExtractionJob, error) {
	return s.job, nil
}
func (s stubJobs) Get(_ context.Context, id uuid.UUID) (*entity.ExtractionJob, error) {
	if s.job == nil || s.job.ID != id {
		return nil, common.ErrNotFound
	}
	return s.job, nil
}

func TestExportJobXLSX(t *testing.T) {
	payload, _ := json.Marshal(sampleResult())
	job := &entity.ExtractionJob{ID: uuid.New(), Kind: string(constants.JobKindAreas), ResultJSON: payload}
	svc := NewService(stubJobs{job: job}, nil)

	b, err := svc.ExportJobXLSX(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("ExportJobXLSX: %v", err)
	}
	rows, _ := openBook(t, b).GetRows(SheetRooms)
	if len(rows) != 4 {
		t.Errorf("rows = %d", len(rows))
	}

	if _, err := svc.ExportJobXLSX(context.Background(), uuid.New()); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("missing job err = %v", err)
	}

	empty := &entity.ExtractionJob{ID: uuid.New(), Kind: string(constants.JobKindLV)}
	if _, err := NewService(stubJobs{job: empty}, nil).ExportJobXLSX(context.Background(), empty.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("job without result err = %v", err)
	}
}
