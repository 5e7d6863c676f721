// Package async runs document extractions on a bounded worker pool; the
// daemon feeds it from the inbox watcher.
package async

import (
	"context"
	"time"

	"github.com/clarencejohnson126/angebotsagent/constants"
)

// Job is one document to extract. An empty Kind lets the processor classify
// the document.
type Job struct {
	Path        string
	Kind        constants.JobKind
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
