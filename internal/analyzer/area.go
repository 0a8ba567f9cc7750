package analyzer

import (
	"sort"

	"github.com/sells-group/prospect-cli/internal/model"
)

// CategoryCount pairs a category with its business count.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// AreaAnalysis summarizes opportunity statistics for the businesses in an
// area. It is ephemeral: derived on every read, never persisted.
type AreaAnalysis struct {
	TotalBusinesses   int             `json:"totalBusinesses"`
	HighOpportunity   int             `json:"highOpportunity"`
	MediumOpportunity int             `json:"mediumOpportunity"`
	LowOpportunity    int             `json:"lowOpportunity"`
	NoWebsite         int             `json:"noWebsite"`
	NoReviews         int             `json:"noReviews"`
	LowRating         int             `json:"lowRating"`
	CategoryBreakdown map[string]int  `json:"categoryBreakdown"`
	AverageRating     float64         `json:"averageRating"`
	TotalReviews      int             `json:"totalReviews"`
	TopCategories     []CategoryCount `json:"topCategories"`
}

// AnalyzeArea accumulates area statistics over a business list in one pass.
// An empty input yields zero counts, an average rating of 0, and an empty
// top-categories list.
func AnalyzeArea(businesses []model.Business) AreaAnalysis {
	stats := AreaAnalysis{
		TotalBusinesses:   len(businesses),
		CategoryBreakdown: make(map[string]int),
		TopCategories:     []CategoryCount{},
	}

	var ratingSum float64
	ratedBusinesses := 0

	// firstSeen records category encounter order for the stable tie-break.
	firstSeen := make(map[string]int)

	for i := range businesses {
		b := &businesses[i]

		score := Score(b)
		switch {
		case score > highScoreThreshold:
			stats.HighOpportunity++
		case score > mediumScoreThreshold:
			stats.MediumOpportunity++
		default:
			stats.LowOpportunity++
		}

		if b.Website == "" {
			stats.NoWebsite++
		}
		if len(b.Reviews) == 0 {
			stats.NoReviews++
		}
		if b.Rating != nil {
			ratingSum += *b.Rating
			ratedBusinesses++
			if *b.Rating < 4.0 {
				stats.LowRating++
			}
		}

		for _, t := range b.Types {
			if !allowedTypeSet[t] {
				continue
			}
			if _, ok := firstSeen[t]; !ok {
				firstSeen[t] = len(firstSeen)
			}
			stats.CategoryBreakdown[t]++
		}

		stats.TotalReviews += b.ReviewCount()
	}

	if ratedBusinesses > 0 {
		stats.AverageRating = ratingSum / float64(ratedBusinesses)
	}

	ranked := make([]CategoryCount, 0, len(stats.CategoryBreakdown))
	for category, count := range stats.CategoryBreakdown {
		ranked = append(ranked, CategoryCount{Category: category, Count: count})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return firstSeen[ranked[i].Category] < firstSeen[ranked[j].Category]
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	stats.TopCategories = ranked

	return stats
}
