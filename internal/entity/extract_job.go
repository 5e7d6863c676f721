package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExtractionJob represents one extraction run over a document.
type ExtractionJob struct {
	ID             uuid.UUID       `json:"id"`
	DocumentID     uuid.UUID       `json:"document_id"`
	Kind           string          `json:"kind"`
	Format         string          `json:"format"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     *time.Time      `json:"finished_at,omitempty"`
	Status         *string         `json:"status,omitempty"`
	ErrorMessage   *string         `json:"error_message,omitempty"`
	BlueprintStyle *string         `json:"blueprint_style,omitempty"`
	Method         *string         `json:"method,omitempty"`
	WarningCount   int             `json:"warning_count"`
	ResultJSON     json.RawMessage `json:"result_json,omitempty"`
	ModelName      *string         `json:"model_name,omitempty"`
}
