// Package metrics provides Prometheus metrics for the extraction pipeline
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/clarencejohnson126/angebotsagent/internal/entity"
)

var (
	DocumentsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "takeoff_documents_processed_total",
			Help: "Documents run through an extraction job",
		},
		[]string{"kind", "status"},
	)

	PagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "takeoff_pages_processed_total",
			Help: "Pages scanned by the extractors",
		},
		[]string{"kind"},
	)

	RoomsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "takeoff_rooms_extracted_total",
			Help: "Rooms emitted per blueprint style and extraction pattern",
		},
		[]string{"style", "pattern"},
	)

	PositionsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "takeoff_lv_positions_extracted_total",
			Help: "LV positions emitted per source",
		},
		[]string{"source"},
	)

	Fallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "takeoff_fallbacks_total",
			Help: "Pages or documents that needed a fallback extractor",
		},
		[]string{"kind"},
	)

	Warnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "takeoff_warnings_total",
			Help: "Warnings attached to extraction results",
		},
		[]string{"kind"},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "takeoff_extraction_duration_seconds",
			Help:    "Wall time of one extraction job",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"kind"},
	)

	LLMCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "takeoff_llm_calls_total",
			Help: "Calls to the LLM fallback",
		},
		[]string{"status"},
	)
)

// RecordAreas records one area extraction.
func RecordAreas(res entity.ExtractionResult, status string, duration time.Duration) {
	DocumentsProcessed.WithLabelValues("areas", status).Inc()
	PagesProcessed.WithLabelValues("areas").Add(float64(res.PageCount))
	for _, r := range res.Rooms {
		RoomsExtracted.WithLabelValues(res.BlueprintStyle, r.ExtractionPattern).Inc()
	}
	fallbacks := 0
	for _, w := range res.Warnings {
		if isFallbackWarning(w) {
			fallbacks++
		}
	}
	Fallbacks.WithLabelValues("areas").Add(float64(fallbacks))
	Warnings.WithLabelValues("areas").Add(float64(len(res.Warnings)))
	ExtractionDuration.WithLabelValues("areas").Observe(duration.Seconds())
}

// RecordLV records one LV extraction.
func RecordLV(doc entity.LVDocument, status string, duration time.Duration) {
	DocumentsProcessed.WithLabelValues("lv", status).Inc()
	PagesProcessed.WithLabelValues("lv").Add(float64(doc.PageCount))
	for _, p := range doc.Positions {
		PositionsExtracted.WithLabelValues(p.Source).Inc()
	}
	Warnings.WithLabelValues("lv").Add(float64(len(doc.Warnings)))
	ExtractionDuration.WithLabelValues("lv").Observe(duration.Seconds())
}

// RecordLLMCall records the outcome of one LLM request.
func RecordLLMCall(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	LLMCalls.WithLabelValues(status).Inc()
	if err == nil {
		Fallbacks.WithLabelValues("lv").Inc()
	}
}

func isFallbackWarning(w string) bool {
	return strings.Contains(w, "as fallback") || strings.Contains(w, "generic flexible extraction")
}

// Timer is a helper for measuring duration
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
