package analyzer

import (
	"sort"

	"github.com/sells-group/prospect-cli/internal/model"
)

// DefaultCompetitorCount is how many competitors a comparison shows.
const DefaultCompetitorCount = 3

// FindCompetitors returns up to n businesses from pool that share at least
// one category with target, ranked by descending presence score. The target
// itself is always excluded. Ties keep the order candidates were encountered.
// If n <= 0 the default of 3 applies.
func FindCompetitors(target *model.Business, pool []model.Business, n int) []model.Business {
	if target == nil {
		return nil
	}
	if n <= 0 {
		n = DefaultCompetitorCount
	}

	targetTypes := make(map[string]bool, len(target.Types))
	for _, t := range target.Types {
		targetTypes[t] = true
	}

	var competitors []model.Business
	for _, candidate := range pool {
		if candidate.PlaceID == target.PlaceID {
			continue
		}
		if !anyType(candidate.Types, targetTypes) {
			continue
		}
		competitors = append(competitors, candidate)
	}

	sort.SliceStable(competitors, func(i, j int) bool {
		return PresenceScore(&competitors[i]).Score > PresenceScore(&competitors[j]).Score
	})

	if len(competitors) > n {
		competitors = competitors[:n]
	}
	return competitors
}
