// Package places is a client for the Google Maps Places web service
// (nearby search and place details).
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// API response statuses we branch on.
const (
	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
)

// Client performs Places API operations.
type Client interface {
	NearbySearch(ctx context.Context, req NearbySearchRequest) (*NearbySearchResponse, error)
	PlaceDetails(ctx context.Context, placeID string) (*PlaceDetails, error)
}

// NearbySearchRequest describes one page of a nearby search.
type NearbySearchRequest struct {
	Lat       float64
	Lng       float64
	RadiusM   int
	PageToken string
}

// NearbySearchResponse is one page of nearby search results.
type NearbySearchResponse struct {
	Results       []NearbyPlace `json:"results"`
	NextPageToken string        `json:"next_page_token"`
	Status        string        `json:"status"`
	ErrorMessage  string        `json:"error_message"`
}

// NearbyPlace is the summary record nearby search returns per place.
type NearbyPlace struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Vicinity         string   `json:"vicinity"`
	Geometry         Geometry `json:"geometry"`
	Rating           *float64 `json:"rating"`
	UserRatingsTotal *int     `json:"user_ratings_total"`
	Types            []string `json:"types"`
	BusinessStatus   string   `json:"business_status"`
	Photos           []Photo  `json:"photos"`
	Icon             string   `json:"icon"`
}

// PlaceDetails is the full record from the place details endpoint.
type PlaceDetails struct {
	PlaceID          string        `json:"place_id"`
	Name             string        `json:"name"`
	FormattedAddress string        `json:"formatted_address"`
	Phone            string        `json:"formatted_phone_number"`
	Website          string        `json:"website"`
	Geometry         Geometry      `json:"geometry"`
	Rating           *float64      `json:"rating"`
	UserRatingsTotal *int          `json:"user_ratings_total"`
	Types            []string      `json:"types"`
	BusinessStatus   string        `json:"business_status"`
	Photos           []Photo       `json:"photos"`
	Icon             string        `json:"icon"`
	URL              string        `json:"url"`
	PriceLevel       *int          `json:"price_level"`
	OpeningHours     *OpeningHours `json:"opening_hours"`
	Reviews          []Review      `json:"reviews"`
}

// Geometry holds the place coordinates.
type Geometry struct {
	Location LatLng `json:"location"`
}

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Photo is a photo reference attached to a place.
type Photo struct {
	PhotoReference string `json:"photo_reference"`
}

// OpeningHours is the opening-hours block from place details.
type OpeningHours struct {
	OpenNow     *bool    `json:"open_now,omitempty"`
	WeekdayText []string `json:"weekday_text,omitempty"`
}

// Review is a user review from place details.
type Review struct {
	Rating       float64 `json:"rating"`
	AuthorName   string  `json:"author_name"`
	Text         string  `json:"text"`
	RelativeTime string  `json:"relative_time_description"`
}

// detailsFields is the field mask requested from place details.
var detailsFields = strings.Join([]string{
	"place_id", "name", "formatted_address", "formatted_phone_number",
	"website", "opening_hours", "rating", "user_ratings_total", "geometry",
	"types", "business_status", "photos", "icon", "url", "price_level",
	"reviews",
}, ",")

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) NearbySearch(ctx context.Context, req NearbySearchRequest) (*NearbySearchResponse, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	if req.PageToken != "" {
		// A page token carries the original search parameters.
		params.Set("pagetoken", req.PageToken)
	} else {
		params.Set("location", fmt.Sprintf("%f,%f", req.Lat, req.Lng))
		params.Set("radius", fmt.Sprintf("%d", req.RadiusM))
	}

	var result NearbySearchResponse
	if err := c.get(ctx, "/nearbysearch/json", params, &result); err != nil {
		return nil, err
	}

	if result.Status != StatusOK && result.Status != StatusZeroResults {
		return nil, eris.Errorf("places: nearby search returned status %s: %s", result.Status, result.ErrorMessage)
	}
	return &result, nil
}

type detailsResponse struct {
	Result       PlaceDetails `json:"result"`
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message"`
}

func (c *httpClient) PlaceDetails(ctx context.Context, placeID string) (*PlaceDetails, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("place_id", placeID)
	params.Set("fields", detailsFields)

	var result detailsResponse
	if err := c.get(ctx, "/details/json", params, &result); err != nil {
		return nil, err
	}

	if result.Status != StatusOK {
		return nil, eris.Errorf("places: details for %s returned status %s: %s", placeID, result.Status, result.ErrorMessage)
	}
	return &result.Result, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "places: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("places: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "places: unmarshal response")
	}
	return nil
}
