// Package llm is the alternate LV path: when the regex parser finds no
// positions, a chat model is asked for them under a strict JSON schema and
// every answer is checked against the source text.
package llm

import "context"

// PositionFields is the normalized shape we want from the LLM for one position.
type PositionFields struct {
	PositionNumber string   `json:"position_number"`
	Title          string   `json:"title"`
	Quantity       *float64 `json:"quantity,omitempty"`
	Unit           string   `json:"unit,omitempty"`
	UnitPrice      *float64 `json:"unit_price,omitempty"`
	TotalPrice     *float64 `json:"total_price,omitempty"`
	Page           int      `json:"page,omitempty"` // 1-based
}

// LVExtraction is the top-level LLM answer.
type LVExtraction struct {
	Positions []PositionFields `json:"positions"`
}

type ExtractRequest struct {
	Pages        [][]string
	FilenameHint string
	MaxChars     int // prompt budget for the page text; 0 = DefaultMaxChars
}

// PositionExtractor is the interface the processor depends on.
type PositionExtractor interface {
	ExtractPositions(ctx context.Context, req ExtractRequest) (LVExtraction, []byte /*rawJSON*/, error)
	ModelName() string
}
