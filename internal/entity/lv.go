package entity

// LVPosition is one priced line item of a Leistungsverzeichnis.
type LVPosition struct {
	PositionNumber string   `json:"position_number"`
	Depth          int      `json:"depth"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	LongText       string   `json:"long_text,omitempty"`
	Quantity       *float64 `json:"quantity,omitempty"`
	Unit           *string  `json:"unit,omitempty"`
	UnitPrice      *float64 `json:"unit_price,omitempty"`
	TotalPrice     *float64 `json:"total_price,omitempty"`
	Marker         *string  `json:"marker,omitempty"`
	Page           int      `json:"page"`
	PageReference  string   `json:"page_reference"`
	Confidence     float64  `json:"confidence"`
	Source         string   `json:"source"`
}

// LVSummary aggregates extraction quality over a document.
type LVSummary struct {
	TotalPositions    int            `json:"total_positions"`
	WithQuantity      int            `json:"with_quantity"`
	WithUnit          int            `json:"with_unit"`
	UnitDistribution  map[string]int `json:"unit_distribution"`
	AverageConfidence float64        `json:"average_confidence"`
	Quality           string         `json:"quality"`
}

// LVDocument is the parsed LV of one tender document.
type LVDocument struct {
	Positions []LVPosition `json:"positions"`
	Summary   LVSummary    `json:"summary"`
	PageCount int          `json:"page_count"`
	Method    string       `json:"method"`
	Warnings  []string     `json:"warnings"`
}

// TenderSummary holds header facts of a tender (Ausschreibung).
type TenderSummary struct {
	ProjectName string  `json:"project_name,omitempty"`
	Client      string  `json:"client,omitempty"`
	Deadline    string  `json:"deadline,omitempty"`
	Location    string  `json:"location,omitempty"`
	Lot         string  `json:"lot,omitempty"`
	Confidence  float64 `json:"confidence"`
}
