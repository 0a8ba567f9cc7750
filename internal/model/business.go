// Package model holds the domain types shared across the prospecting pipeline.
package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// Status represents the outreach state of a business. It only changes through
// an explicit user action; new rows always start as StatusNew.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusResponded Status = "responded"
	StatusConverted Status = "converted"
	StatusRejected  Status = "rejected"
	StatusIgnored   Status = "ignored"
	StatusFollowUp  Status = "follow_up"
)

// validStatuses is the closed set of outreach states.
var validStatuses = map[Status]bool{
	StatusNew:       true,
	StatusContacted: true,
	StatusResponded: true,
	StatusConverted: true,
	StatusRejected:  true,
	StatusIgnored:   true,
	StatusFollowUp:  true,
}

// ParseStatus validates a raw status string and returns the typed Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !validStatuses[st] {
		return "", eris.Errorf("model: invalid status %q", s)
	}
	return st, nil
}

// Statuses returns the valid outreach statuses in a fixed display order.
func Statuses() []Status {
	return []Status{
		StatusNew, StatusContacted, StatusResponded, StatusConverted,
		StatusRejected, StatusIgnored, StatusFollowUp,
	}
}

// Location is a WGS84 point.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Review is a single user review attached to a business.
type Review struct {
	Rating       float64 `json:"rating"`
	AuthorName   string  `json:"author_name"`
	Text         string  `json:"text"`
	RelativeTime string  `json:"relative_time_description,omitempty"`
}

// OpeningHours holds the subset of Places opening-hours data we keep.
type OpeningHours struct {
	OpenNow     *bool    `json:"open_now,omitempty"`
	WeekdayText []string `json:"weekday_text,omitempty"`
}

// Business is a raw place record as persisted. It is the authoritative row;
// opportunity analysis is derived from it on every read and never stored.
type Business struct {
	PlaceID          string        `json:"place_id" db:"place_id"`
	Name             string        `json:"name" db:"name"`
	FormattedAddress string        `json:"formatted_address,omitempty" db:"formatted_address"`
	Phone            string        `json:"formatted_phone_number,omitempty" db:"formatted_phone_number"`
	Website          string        `json:"website,omitempty" db:"website"`
	Rating           *float64      `json:"rating,omitempty" db:"rating"`
	UserRatingsTotal *int          `json:"user_ratings_total,omitempty" db:"user_ratings_total"`
	Types            []string      `json:"types" db:"types"`
	BusinessStatus   string        `json:"business_status,omitempty" db:"business_status"`
	Photos           []string      `json:"photos,omitempty" db:"photos"`
	Icon             string        `json:"icon,omitempty" db:"icon"`
	URL              string        `json:"url,omitempty" db:"url"`
	PriceLevel       *int          `json:"price_level,omitempty" db:"price_level"`
	OpeningHours     *OpeningHours `json:"opening_hours,omitempty" db:"opening_hours"`
	Reviews          []Review      `json:"reviews,omitempty" db:"reviews"`
	Location         Location      `json:"location"`
	HexagonID        string        `json:"hexagon_id" db:"hexagon_id"`
	Status           Status        `json:"status" db:"status"`
	CreatedAt        time.Time     `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at,omitempty" db:"updated_at"`
}

// RatingValue returns the rating, treating a missing rating as 0.
func (b *Business) RatingValue() float64 {
	if b.Rating == nil {
		return 0
	}
	return *b.Rating
}

// ReviewCount returns the total user ratings, treating missing as 0.
func (b *Business) ReviewCount() int {
	if b.UserRatingsTotal == nil {
		return 0
	}
	return *b.UserRatingsTotal
}
