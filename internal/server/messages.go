package server

import (
	"github.com/clarencejohnson126/angebotsagent/internal/core/risk"
	"github.com/clarencejohnson126/angebotsagent/internal/entity"
	"github.com/clarencejohnson126/angebotsagent/internal/ingest"
)

type ExtractAreasRequest struct {
	Path  string `json:"path"`
	Style string `json:"style,omitempty"`
	Pages []int  `json:"pages,omitempty"` // 0-based
}

type ExtractAreasResponse struct {
	DocumentID   string                  `json:"document_id"`
	JobID        string                  `json:"job_id"`
	Deduplicated bool                    `json:"deduplicated"`
	Result       entity.ExtractionResult `json:"result"`
}

type ExtractLVRequest struct {
	Path string `json:"path"`
}

type ExtractLVResponse struct {
	DocumentID   string                `json:"document_id"`
	JobID        string                `json:"job_id"`
	Deduplicated bool                  `json:"deduplicated"`
	Document     entity.LVDocument     `json:"document"`
	Tender       *entity.TenderSummary `json:"tender,omitempty"`
}

type ParseLVLineRequest struct {
	Line string `json:"line"`
}

type GetJobRequest struct {
	JobID string `json:"job_id"`
}

type ExportJobRequest struct {
	JobID string `json:"job_id"`
}

type ExportJobResponse struct {
	Filename string `json:"filename"`
	XLSX     []byte `json:"xlsx"`
}

type CompareQuantitiesRequest struct {
	Positions []entity.LVPosition `json:"positions"`
	Takeoffs  []risk.Takeoff      `json:"takeoffs"`
}

type CompareQuantitiesResponse struct {
	Risks []risk.Risk `json:"risks"`
}

type IngestDirectoryRequest struct {
	RootPath   string `json:"root_path"`
	SkipHidden *bool  `json:"skip_hidden,omitempty"` // default true
}

type IngestDirectoryResponse struct {
	Stats   ingest.DirStats   `json:"stats"`
	Results []IngestedOutcome `json:"results"`
}

// IngestedOutcome is one file of a directory run.
type IngestedOutcome struct {
	SourcePath   string `json:"source_path"`
	DocumentID   string `json:"document_id,omitempty"`
	JobID        string `json:"job_id,omitempty"`
	Kind         string `json:"kind,omitempty"`
	Deduplicated bool   `json:"deduplicated"`
	Error        string `json:"error,omitempty"`
}
