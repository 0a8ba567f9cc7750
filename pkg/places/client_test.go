package places

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearbySearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nearbysearch/json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "40.748400,-73.985700", r.URL.Query().Get("location"))
		assert.Equal(t, "500", r.URL.Query().Get("radius"))
		assert.Empty(t, r.URL.Query().Get("pagetoken"))

		fmt.Fprint(w, `{
			"status": "OK",
			"next_page_token": "token-2",
			"results": [
				{"place_id": "p1", "name": "Cafe One", "vicinity": "1 Main St",
				 "geometry": {"location": {"lat": 40.75, "lng": -73.98}},
				 "rating": 4.5, "user_ratings_total": 12,
				 "types": ["cafe", "point_of_interest"]}
			]
		}`)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	resp, err := client.NearbySearch(context.Background(), NearbySearchRequest{
		Lat: 40.7484, Lng: -73.9857, RadiusM: 500,
	})
	require.NoError(t, err)

	assert.Equal(t, "token-2", resp.NextPageToken)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "p1", resp.Results[0].PlaceID)
	assert.Equal(t, "Cafe One", resp.Results[0].Name)
	require.NotNil(t, resp.Results[0].Rating)
	assert.Equal(t, 4.5, *resp.Results[0].Rating)
}

func TestNearbySearch_PageTokenReplacesLocation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token-2", r.URL.Query().Get("pagetoken"))
		assert.Empty(t, r.URL.Query().Get("location"))
		assert.Empty(t, r.URL.Query().Get("radius"))
		fmt.Fprint(w, `{"status": "OK", "results": []}`)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	_, err := client.NearbySearch(context.Background(), NearbySearchRequest{
		Lat: 40.7484, Lng: -73.9857, RadiusM: 500, PageToken: "token-2",
	})
	require.NoError(t, err)
}

func TestNearbySearch_ZeroResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status": "ZERO_RESULTS", "results": []}`)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	resp, err := client.NearbySearch(context.Background(), NearbySearchRequest{Lat: 1, Lng: 1, RadiusM: 500})
	require.NoError(t, err)
	assert.Equal(t, StatusZeroResults, resp.Status)
	assert.Empty(t, resp.Results)
}

func TestNearbySearch_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid"}`)
	}))
	defer server.Close()

	client := NewClient("bad-key", WithBaseURL(server.URL))
	_, err := client.NearbySearch(context.Background(), NearbySearchRequest{Lat: 1, Lng: 1, RadiusM: 500})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestPlaceDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/details/json", r.URL.Path)
		assert.Equal(t, "p1", r.URL.Query().Get("place_id"))
		assert.Contains(t, r.URL.Query().Get("fields"), "formatted_phone_number")

		fmt.Fprint(w, `{
			"status": "OK",
			"result": {
				"place_id": "p1", "name": "Cafe One",
				"formatted_address": "1 Main St, New York, NY",
				"formatted_phone_number": "(212) 555-0100",
				"website": "https://cafeone.example.com",
				"opening_hours": {"open_now": true, "weekday_text": ["Monday: 8AM-6PM"]},
				"reviews": [{"rating": 5, "author_name": "Ann", "text": "Great"}]
			}
		}`)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	details, err := client.PlaceDetails(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, "(212) 555-0100", details.Phone)
	assert.Equal(t, "https://cafeone.example.com", details.Website)
	require.NotNil(t, details.OpeningHours)
	require.NotNil(t, details.OpeningHours.OpenNow)
	assert.True(t, *details.OpeningHours.OpenNow)
	require.Len(t, details.Reviews, 1)
	assert.Equal(t, "Ann", details.Reviews[0].AuthorName)
}

func TestPlaceDetails_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status": "NOT_FOUND"}`)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	_, err := client.PlaceDetails(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_FOUND")
}

func TestGet_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	_, err := client.PlaceDetails(context.Background(), "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
