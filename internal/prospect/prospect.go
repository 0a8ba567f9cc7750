// Package prospect orchestrates hexagon-based business discovery: resolving
// hex cells, fetching nearby businesses from the Places API, persisting raws,
// and serving analyzed payloads.
package prospect

import (
	"encoding/json"

	"github.com/sells-group/prospect-cli/internal/analyzer"
	"github.com/sells-group/prospect-cli/internal/model"
)

// Per-call Places API cost estimates (USD), used for fetch-run accounting.
const (
	nearbySearchCostUSD = 0.032
	placeDetailsCostUSD = 0.017
)

// Payload is the enriched hexagon view the API and CLI render.
type Payload struct {
	Hexagon      *model.Hexagon         `json:"hexagon"`
	Boundary     json.RawMessage        `json:"boundary,omitempty"`
	Businesses   []analyzer.Enriched    `json:"businesses"`
	AreaAnalysis *analyzer.AreaAnalysis `json:"areaAnalysis"`
}

// Comparison is the on-demand competitor benchmark for one business.
type Comparison struct {
	Business    model.Business    `json:"business"`
	Presence    analyzer.Presence `json:"presence"`
	Competitors []RankedPeer      `json:"competitors"`
}

// RankedPeer pairs a competitor with its presence score.
type RankedPeer struct {
	Business model.Business    `json:"business"`
	Presence analyzer.Presence `json:"presence"`
}

// FetchResult summarizes one Places fetch over a hexagon.
type FetchResult struct {
	RunID           string  `json:"run_id"`
	BusinessesFound int     `json:"businesses_found"`
	APICalls        int     `json:"api_calls"`
	CostUSD         float64 `json:"cost_usd"`
}
