package model

import "time"

// Hexagon tracks the fetch state of a single H3 cell. The cell index is the
// opaque string form produced by the hex-grid library.
type Hexagon struct {
	HexagonID         string    `json:"hexagon_id" db:"hexagon_id"`
	BusinessesFetched bool      `json:"businesses_fetched" db:"businesses_fetched"`
	NoBusinessesFound bool      `json:"no_businesses_found" db:"no_businesses_found"`
	CreatedAt         time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// FetchRun records one Places fetch pass over a hexagon for cost accounting.
type FetchRun struct {
	ID              string     `json:"id" db:"id"`
	HexagonID       string     `json:"hexagon_id" db:"hexagon_id"`
	BusinessesFound int        `json:"businesses_found" db:"businesses_found"`
	APICalls        int        `json:"api_calls" db:"api_calls"`
	CostUSD         float64    `json:"cost_usd" db:"cost_usd"`
	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}
