package analyzer

import (
	"fmt"
	"math"
	"strings"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Per-dimension maximums for the online presence benchmark.
const (
	presenceMaxWebsite = 30
	presenceMaxReviews = 35
	presenceMaxPhotos  = 15
	presenceMaxContact = 20
)

// Dimension is one component of a presence score breakdown.
type Dimension struct {
	Score    int    `json:"score"`
	MaxScore int    `json:"maxScore"`
	Details  string `json:"details"`
}

// Presence is a percentage-of-max benchmark of a business's online
// visibility, used only for peer comparison. It deliberately uses a
// different weighting model than the opportunity score: the two answer
// different questions and must not be unified.
type Presence struct {
	Score            int                  `json:"score"`
	Breakdown        map[string]Dimension `json:"breakdown"`
	TotalScore       int                  `json:"totalScore"`
	MaxPossibleScore int                  `json:"maxPossibleScore"`
}

// PresenceScore benchmarks a business's online presence across four weighted
// dimensions and returns the composite percentage with its breakdown.
func PresenceScore(b *model.Business) Presence {
	breakdown := make(map[string]Dimension, 4)
	total := 0
	maxTotal := 0

	// Website (30).
	maxTotal += presenceMaxWebsite
	if b.Website != "" {
		total += presenceMaxWebsite
		breakdown["website"] = Dimension{
			Score:    presenceMaxWebsite,
			MaxScore: presenceMaxWebsite,
			Details:  "Has a business website",
		}
	} else {
		breakdown["website"] = Dimension{
			MaxScore: presenceMaxWebsite,
			Details:  "No website found",
		}
	}

	// Reviews and rating (35): quality up to 15, quantity up to 20.
	maxTotal += presenceMaxReviews
	if b.Rating != nil && b.UserRatingsTotal != nil {
		reviewScore := int(math.Min(15, *b.Rating*3))
		reviewScore += reviewQuantityScore(*b.UserRatingsTotal)
		total += reviewScore
		breakdown["reviews"] = Dimension{
			Score:    reviewScore,
			MaxScore: presenceMaxReviews,
			Details:  fmt.Sprintf("%.1f★ rating with %d reviews", *b.Rating, *b.UserRatingsTotal),
		}
	} else {
		breakdown["reviews"] = Dimension{
			MaxScore: presenceMaxReviews,
			Details:  "No reviews or rating",
		}
	}

	// Photos (15).
	maxTotal += presenceMaxPhotos
	if n := len(b.Photos); n > 0 {
		photoScore := n * 3
		if photoScore > presenceMaxPhotos {
			photoScore = presenceMaxPhotos
		}
		total += photoScore
		breakdown["photos"] = Dimension{
			Score:    photoScore,
			MaxScore: presenceMaxPhotos,
			Details:  fmt.Sprintf("%d photos available", n),
		}
	} else {
		breakdown["photos"] = Dimension{
			MaxScore: presenceMaxPhotos,
			Details:  "No photos found",
		}
	}

	// Contact information (20).
	maxTotal += presenceMaxContact
	contactScore := 0
	var contactParts []string
	if b.Phone != "" {
		contactScore += 10
		contactParts = append(contactParts, "phone number")
	}
	if b.FormattedAddress != "" {
		contactScore += 5
		contactParts = append(contactParts, "address")
	}
	if b.OpeningHours != nil {
		contactScore += 5
		contactParts = append(contactParts, "business hours")
	}
	total += contactScore
	contactDetails := "Limited contact information"
	if len(contactParts) > 0 {
		contactDetails = "Has " + strings.Join(contactParts, ", ")
	}
	breakdown["contact"] = Dimension{
		Score:    contactScore,
		MaxScore: presenceMaxContact,
		Details:  contactDetails,
	}

	final := 0
	if maxTotal > 0 {
		final = int(math.Round(float64(total) / float64(maxTotal) * 100))
	}

	return Presence{
		Score:            final,
		Breakdown:        breakdown,
		TotalScore:       total,
		MaxPossibleScore: maxTotal,
	}
}

// reviewQuantityScore tiers the review count: 100+ (20), 51-99 (15),
// 11-50 (10), 1-10 (5), none (0).
func reviewQuantityScore(count int) int {
	switch {
	case count >= 100:
		return 20
	case count >= 51:
		return 15
	case count >= 11:
		return 10
	case count > 0:
		return 5
	default:
		return 0
	}
}
