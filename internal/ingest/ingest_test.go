package ingest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clarencejohnson126/angebotsagent/internal/common"
	"github.com/clarencejohnson126/angebotsagent/internal/entity"
)

type memDocs struct {
	mu   sync.Mutex
	rows []entity.Document
}

func (m *memDocs) GetByID(_ context.Context, id uuid.UUID) (*entity.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.rows {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memDocs) GetByHash(_ context.Context, hash []byte) (*entity.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.rows {
		if bytes.Equal(d.ContentHash, hash) {
			return &d, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memDocs) Create(_ context.Context, doc entity.Document) (*entity.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc.ID = uuid.New()
	m.rows = append(m.rows, doc)
	return &doc, nil
}

func (m *memDocs) UpsertByHash(ctx context.Context, doc entity.Document) (*entity.Document, bool, error) {
	if d, err := m.GetByHash(ctx, doc.ContentHash); err == nil {
		return d, true, nil
	}
	d, err := m.Create(ctx, doc)
	return d, false, err
}

func (m *memDocs) SetPageCount(context.Context, uuid.UUID, int) error { return nil }

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestIngestPath(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "plan.txt")
	b := filepath.Join(dir, "copy.txt")
	writeFile(t, a, "R1.01 Büro\nNRF: 12,50 m²")
	writeFile(t, b, "R1.01 Büro\nNRF: 12,50 m²")

	ing := NewFSIngestor(&memDocs{}, nil)
	first, err := ing.IngestPath(context.Background(), a)
	if err != nil {
		t.Fatalf("IngestPath: %v", err)
	}
	if first.Deduplicated || first.FileExt != "txt" || len(first.HashHex) != 64 || first.FileSize == 0 {
		t.Errorf("first = %+v", first)
	}

	second, err := ing.IngestPath(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Deduplicated || second.DocumentID != first.DocumentID || second.SourcePath != first.SourcePath {
		t.Errorf("second = %+v", second)
	}

	bad := filepath.Join(dir, "plan.dwg")
	writeFile(t, bad, "x")
	if _, err := ing.IngestPath(context.Background(), bad); !errors.Is(err, common.ErrUnsupportedFormat) {
		t.Errorf("dwg err = %v", err)
	}
}

func TestIngestDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	writeFile(t, filepath.Join(dir, "sub", "b.json"), `{"pages":[]}`)
	writeFile(t, filepath.Join(dir, "sub", "c.txt"), "a")
	writeFile(t, filepath.Join(dir, ".hidden", "d.txt"), "d")
	writeFile(t, filepath.Join(dir, "notes.docx"), "x")

	ing := NewFSIngestor(&memDocs{}, nil)
	results, stats, err := ing.IngestDirectory(context.Background(), dir, true)
	if err != nil {
		t.Fatalf("IngestDirectory: %v", err)
	}
	if stats.Matched != 3 || stats.Succeeded != 3 || stats.Deduplicated != 1 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if len(results) != 3 {
		t.Errorf("results = %+v", results)
	}

	if _, _, err := ing.IngestDirectory(context.Background(), "  ", false); err == nil {
		t.Error("blank root must fail")
	}
}

func TestWatcherEmitsNewFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "existing.txt"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}, InitialScan: true, Debounce: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("StartWatcher: %v", err)
	}

	want := map[string]bool{
		filepath.Join(dir, "existing.txt"): false,
		filepath.Join(dir, "new.txt"):      false,
	}
	writeFile(t, filepath.Join(dir, "new.txt"), "y")
	writeFile(t, filepath.Join(dir, "ignored.dwg"), "z")

	timeout := time.After(5 * time.Second)
	for seen := 0; seen < len(want); {
		select {
		case p := <-events:
			done, ok := want[p]
			if !ok {
				t.Fatalf("unexpected event %q", p)
			}
			if !done {
				want[p] = true
				seen++
			}
		case <-timeout:
			t.Fatalf("timed out, seen = %v", want)
		}
	}

	cancel()
	for range events {
	}
}

func TestStartWatcherNoRoots(t *testing.T) {
	if _, _, err := StartWatcher(context.Background(), WatchConfig{}); err == nil {
		t.Error("expected error without roots")
	}
}
