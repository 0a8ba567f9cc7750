package analyzer

import (
	"sort"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Analysis is the derived opportunity view of a business.
type Analysis struct {
	OpportunityScore int       `json:"opportunityScore"`
	Insights         []Insight `json:"insights"`
	Priority         string    `json:"priority"`
}

// Enriched is a business together with its computed analysis. The embedded
// raw record stays authoritative; Analysis is recomputed on every read.
type Enriched struct {
	model.Business
	Analysis Analysis `json:"analysis"`
}

// Result is the batch output: enriched businesses sorted by opportunity,
// plus the aggregate area view.
type Result struct {
	Businesses   []Enriched   `json:"businesses"`
	AreaAnalysis AreaAnalysis `json:"areaAnalysis"`
}

// Enrich attaches the computed analysis block to a business.
func Enrich(b *model.Business) Enriched {
	score := Score(b)
	return Enriched{
		Business: *b,
		Analysis: Analysis{
			OpportunityScore: score,
			Insights:         Insights(b),
			Priority:         PriorityForScore(score),
		},
	}
}

// Process enriches every business, sorts the result by descending opportunity
// score (stable for ties), and computes the area analysis over the original
// unsorted input so aggregate stats reflect every record.
func Process(businesses []model.Business) Result {
	enriched := make([]Enriched, len(businesses))
	for i := range businesses {
		enriched[i] = Enrich(&businesses[i])
	}

	sort.SliceStable(enriched, func(i, j int) bool {
		return enriched[i].Analysis.OpportunityScore > enriched[j].Analysis.OpportunityScore
	})

	return Result{
		Businesses:   enriched,
		AreaAnalysis: AnalyzeArea(businesses),
	}
}
