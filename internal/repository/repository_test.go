package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clarencejohnson126/angebotsagent/constants"
	"github.com/clarencejohnson126/angebotsagent/internal/common"
	"github.com/clarencejohnson126/angebotsagent/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	cfg := common.DatabaseConfig{
		Driver:          common.DriverSQLite,
		DSN:             "file:" + filepath.Join(t.TempDir(), "test.db"),
		ConnectAttempts: 1,
	}
	db, err := Open(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func f64(v float64) *float64 { return &v }
func str(v string) *string { return &v }

func TestDocumentUpsertByHash(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewDocumentRepository(db, zap.NewNop())

	doc := entity.Document{SourcePath: "/in/plan.pdf", ContentHash: []byte{1, 2, 3}, Filename: "plan.pdf", FileExt: "pdf", FileSize: 42}
	first, existed, err := repo.UpsertByHash(ctx, doc)
	if err != nil || existed {
		t.Fatalf("first upsert = %v, existed %v", err, existed)
	}
	second, existed, err := repo.UpsertByHash(ctx, doc)
	if err != nil || !existed || second.ID != first.ID {
		t.Fatalf("second upsert = %+v existed %v err %v", second, existed, err)
	}

	if err := repo.SetPageCount(ctx, first.ID, 7); err != nil {
		t.Fatalf("SetPageCount: %v", err)
	}
	got, err := repo.GetByID(ctx, first.ID)
	if err != nil || got.PageCount != 7 || got.Filename != "plan.pdf" {
		t.Errorf("GetByID = %+v, %v", got, err)
	}

	if _, err := repo.GetByID(ctx, uuid.New()); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("missing document err = %v", err)
	}
}

func TestExtractJobLifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	docs := NewDocumentRepository(db, zap.NewNop())
	jobs := NewExtractJobRepository(db, zap.NewNop())
	results := NewResultRepository(db, zap.NewNop())

	doc, err := docs.Create(ctx, entity.Document{SourcePath: "a.txt", ContentHash: []byte("h"), Filename: "a.txt", FileExt: "txt"})
	if err != nil {
		t.Fatal(err)
	}

	job, err := jobs.Start(ctx, doc.ID, constants.JobKindAreas, "TXT")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	res := entity.ExtractionResult{
		Rooms: []entity.ExtractedRoom{
			{RoomNumber: "R1.01", RoomName: "Büro", AreaM2: 20, CountedM2: 20, Factor: 1, Category: constants.Office, ExtractionPattern: "leiq_nrf", FactorSource: entity.FactorSourceNone, SourceText: "NRF: 20,00 m²"},
			{RoomNumber: "R1.02", RoomName: "Balkon", AreaM2: 6, CountedM2: 3, Factor: 0.5, Page: 1, Category: constants.Outdoor, ExtractionPattern: "leiq_nrf", FactorSource: entity.FactorSourceDefaultOutdoor, SourceText: "NRF: 6,00 m²"},
		},
		RoomCount:        2,
		BlueprintStyle:   "leiq",
		ExtractionMethod: "unified_extraction",
		Warnings:         []string{"Page 1: 1 room identifiers without area"},
	}
	if err := jobs.FinishAreas(ctx, job.ID, res); err != nil {
		t.Fatalf("FinishAreas: %v", err)
	}

	stored, err := jobs.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Status == nil || *stored.Status != string(constants.JobStatusPartial) || stored.FinishedAt == nil {
		t.Errorf("job = %+v", stored)
	}
	if stored.BlueprintStyle == nil || *stored.BlueprintStyle != "leiq" || stored.WarningCount != 1 || len(stored.ResultJSON) == 0 {
		t.Errorf("job fields = %+v", stored)
	}

	rooms, err := results.ListRooms(ctx, job.ID)
	if err != nil || len(rooms) != 2 {
		t.Fatalf("ListRooms = %d, %v", len(rooms), err)
	}
	if rooms[1].RoomName != "Balkon" || rooms[1].CountedM2 != 3 || rooms[1].FactorSource != entity.FactorSourceDefaultOutdoor {
		t.Errorf("room = %+v", rooms[1])
	}

	latest, err := jobs.LatestForDocument(ctx, doc.ID, constants.JobKindAreas)
	if err != nil || latest.ID != job.ID {
		t.Errorf("LatestForDocument = %+v, %v", latest, err)
	}
	if _, err := jobs.LatestForDocument(ctx, doc.ID, constants.JobKindLV); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("no lv job err = %v", err)
	}
}

func TestExtractJobLVAndFailure(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	docs := NewDocumentRepository(db, zap.NewNop())
	jobs := NewExtractJobRepository(db, zap.NewNop())
	results := NewResultRepository(db, zap.NewNop())

	doc, err := docs.Create(ctx, entity.Document{SourcePath: "lv.txt", ContentHash: []byte("lv"), Filename: "lv.txt", FileExt: "txt"})
	if err != nil {
		t.Fatal(err)
	}

	job, err := jobs.Start(ctx, doc.ID, constants.JobKindLV, "TXT")
	if err != nil {
		t.Fatal(err)
	}
	lvDoc := entity.LVDocument{
		Method: "lv_regex",
		Positions: []entity.LVPosition{
			{PositionNumber: "01.02.0010", Title: "Baustelleneinrichtung", Quantity: f64(1), Unit: str("psch"), Page: 1, Confidence: 0.85, Source: "regex"},
			{PositionNumber: "01.02.0020", Title: "Mauerwerk", Page: 1, Confidence: 0.6, Source: "regex", Marker: str("bedarfsposition")},
		},
	}
	if err := jobs.FinishLV(ctx, job.ID, lvDoc, ""); err != nil {
		t.Fatalf("FinishLV: %v", err)
	}
	positions, err := results.ListPositions(ctx, job.ID)
	if err != nil || len(positions) != 2 {
		t.Fatalf("ListPositions = %d, %v", len(positions), err)
	}
	if positions[0].Quantity == nil || *positions[0].Quantity != 1 || *positions[0].Unit != "psch" {
		t.Errorf("position 0 = %+v", positions[0])
	}
	if positions[1].Quantity != nil || positions[1].Marker == nil || *positions[1].Marker != "bedarfsposition" {
		t.Errorf("position 1 = %+v", positions[1])
	}
	stored, _ := jobs.Get(ctx, job.ID)
	if stored == nil || *stored.Status != string(constants.JobStatusOK) {
		t.Errorf("lv job = %+v", stored)
	}

	failed, err := jobs.Start(ctx, doc.ID, constants.JobKindLV, "PDF")
	if err != nil {
		t.Fatal(err)
	}
	if err := jobs.FinishFailure(ctx, failed.ID, "document has no text layer"); err != nil {
		t.Fatal(err)
	}
	stored, err = jobs.Get(ctx, failed.ID)
	if err != nil || *stored.Status != string(constants.JobStatusFailed) || stored.ErrorMessage == nil {
		t.Errorf("failed job = %+v, %v", stored, err)
	}
}
