package analyzer

import (
	"fmt"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Insight is a single actionable observation about a business. Insights carry
// no identity; they are regenerated on every read.
type Insight struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Message  string `json:"message"`
	Action   string `json:"action"`
}

// Insights generates the ordered insight list for a business. The output
// order follows the fixed check order (website, reviews, rating, contact,
// industry) rather than priority.
func Insights(b *model.Business) []Insight {
	var insights []Insight

	if b.Website == "" {
		insights = append(insights, Insight{
			Type:     "website",
			Priority: PriorityHigh,
			Message:  "No website detected - prime candidate for web development services",
			Action:   "Offer website development",
		})
	}

	switch {
	case len(b.Reviews) == 0:
		insights = append(insights, Insight{
			Type:     "reviews",
			Priority: PriorityHigh,
			Message:  "No online reviews - needs reputation management",
			Action:   "Offer review management",
		})
	case len(b.Reviews) < 5:
		insights = append(insights, Insight{
			Type:     "reviews",
			Priority: PriorityMedium,
			Message:  "Limited online reviews - could benefit from review generation",
			Action:   "Propose review strategy",
		})
	}

	if b.Rating != nil && *b.Rating < 4.0 {
		insights = append(insights, Insight{
			Type:     "rating",
			Priority: PriorityHigh,
			Message:  fmt.Sprintf("Low rating (%.1f) - needs reputation improvement", *b.Rating),
			Action:   "Offer reputation management",
		})
	}

	if b.Phone == "" {
		insights = append(insights, Insight{
			Type:     "contact",
			Priority: PriorityMedium,
			Message:  "No phone number listed - may need better online presence",
			Action:   "Suggest contact management",
		})
	}

	// Can co-occur with the website insight above.
	if b.Website == "" && anyType(b.Types, webDependentCategories) {
		insights = append(insights, Insight{
			Type:     "industry",
			Priority: PriorityHigh,
			Message:  "Business type typically requires strong web presence",
			Action:   "Priority for web development",
		})
	}

	return insights
}
