package async

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clarencejohnson126/angebotsagent/constants"
	"github.com/clarencejohnson126/angebotsagent/internal/core"
)

type recordingProcessor struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingProcessor) record(call string) (*core.Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	if call == "auto:bad.txt" {
		return nil, errors.New("boom")
	}
	return &core.Outcome{JobID: uuid.New()}, nil
}

func (r *recordingProcessor) ProcessAreas(_ context.Context, path string, _ core.AreaOptions) (*core.Outcome, error) {
	return r.record("areas:" + path)
}

func (r *recordingProcessor) ProcessLV(_ context.Context, path string) (*core.Outcome, error) {
	return r.record("lv:" + path)
}

func (r *recordingProcessor) ProcessAuto(_ context.Context, path string) (*core.Outcome, error) {
	return r.record("auto:" + path)
}

func TestProcessorQueueDispatch(t *testing.T) {
	proc := &recordingProcessor{}
	q := NewProcessorQueue(proc, nil, WithWorkers(3), WithQueueSize(8), WithProcessTimeout(time.Second))

	ctx := context.Background()
	jobs := []Job{
		{Path: "plan.pdf", Kind: constants.JobKindAreas},
		{Path: "lv.pdf", Kind: constants.JobKindLV},
		{Path: "inbox.txt"},
		{Path: "bad.txt"},
	}
	for _, j := range jobs {
		if err := q.Enqueue(ctx, j); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	q.Shutdown(sctx)

	got := append([]string(nil), proc.calls...)
	sort.Strings(got)
	want := []string{"areas:plan.pdf", "auto:bad.txt", "auto:inbox.txt", "lv:lv.pdf"}
	if len(got) != len(want) {
		t.Fatalf("calls = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("calls = %v, want %v", got, want)
			break
		}
	}

	if err := q.Enqueue(ctx, Job{Path: "late.pdf"}); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("enqueue after shutdown err = %v", err)
	}
}
