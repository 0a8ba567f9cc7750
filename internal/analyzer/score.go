// Package analyzer computes opportunity scores, insights, presence benchmarks,
// and area aggregates for prospect businesses. Every function here is a pure,
// deterministic transformation of its inputs: no I/O, no shared state.
package analyzer

import "github.com/sells-group/prospect-cli/internal/model"

// Priority tiers derived from the opportunity score.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Score thresholds for the priority tiers. Both bounds are exclusive:
// a score of exactly 70 is medium, exactly 40 is low.
const (
	highScoreThreshold   = 70
	mediumScoreThreshold = 40
)

// Score returns the opportunity score for a business on a 0-100 scale.
// Each clause is an independent additive signal; the sum is capped at 100.
func Score(b *model.Business) int {
	score := 0

	// A missing website is the strongest opportunity signal, more so for
	// types that depend on web presence.
	if b.Website == "" {
		score += 30
		if anyType(b.Types, webDependentCategories) {
			score += 10
		}
	}

	// Review coverage. The two clauses are mutually exclusive.
	switch {
	case len(b.Reviews) == 0:
		score += 25
	case len(b.Reviews) < 5:
		score += 15
	}

	// Established but struggling: plenty of reviews, poor rating.
	if b.Rating != nil && b.UserRatingsTotal != nil {
		if *b.Rating < 4.0 && *b.UserRatingsTotal > 50 {
			score += 20
		}
	}

	if b.Phone == "" {
		score += 15
	}

	// Popularity proxy; missing fields count as zero.
	popularity := b.RatingValue() * float64(b.ReviewCount())
	if popularity > 1000 {
		score += 20
	} else if popularity > 500 {
		score += 10
	}

	if anyType(b.Types, priorityCategories) {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

// PriorityForScore maps an opportunity score to its priority tier.
func PriorityForScore(score int) string {
	switch {
	case score > highScoreThreshold:
		return PriorityHigh
	case score > mediumScoreThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
