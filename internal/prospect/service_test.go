package prospect

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/hexgrid"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/pkg/places"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

var testGoogleConfig = config.GoogleConfig{
	APIKey:             "test-key",
	RadiusM:            500,
	RateLimit:          1000, // effectively unthrottled in tests
	PageTokenDelayMS:   1,
	MaxRetries:         3,
	DetailsConcurrency: 2,
}

func newTestService(t *testing.T, st *mockStore, pc *mockPlacesClient) (*Service, string) {
	t.Helper()
	grid, err := hexgrid.New(hexgrid.DefaultResolution)
	require.NoError(t, err)

	hexagonID, err := grid.CellForLocation(model.Location{Lat: 40.7484, Lng: -73.9857})
	require.NoError(t, err)

	cfg := testGoogleConfig
	return NewService(st, pc, grid, &cfg), hexagonID
}

func nearbyPage(token string, ids ...string) *places.NearbySearchResponse {
	resp := &places.NearbySearchResponse{Status: places.StatusOK, NextPageToken: token}
	for _, id := range ids {
		resp.Results = append(resp.Results, places.NearbyPlace{
			PlaceID: id,
			Name:    "Business " + id,
			Types:   []string{"restaurant"},
		})
	}
	return resp
}

func TestGetHexagon_CreatesRowOnFirstSight(t *testing.T) {
	st := newMockStore()
	svc, hexagonID := newTestService(t, st, &mockPlacesClient{})

	payload, err := svc.GetHexagon(context.Background(), hexagonID)
	require.NoError(t, err)

	require.NotNil(t, payload.Hexagon)
	assert.Equal(t, hexagonID, payload.Hexagon.HexagonID)
	assert.NotNil(t, st.hexagons[hexagonID])
	assert.Empty(t, payload.Businesses)
	assert.Nil(t, payload.AreaAnalysis)
	assert.NotEmpty(t, payload.Boundary)
}

func TestGetHexagon_InvalidID(t *testing.T) {
	svc, _ := newTestService(t, newMockStore(), &mockPlacesClient{})

	_, err := svc.GetHexagon(context.Background(), "not-a-cell")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid hexagon id")
}

func TestGetHexagon_AnalyzesStoredBusinesses(t *testing.T) {
	st := newMockStore()
	svc, hexagonID := newTestService(t, st, &mockPlacesClient{})

	st.hexagons[hexagonID] = &model.Hexagon{HexagonID: hexagonID, BusinessesFetched: true}
	st.businesses["p1"] = model.Business{
		PlaceID: "p1", Name: "Gap City", Types: []string{"restaurant"},
		HexagonID: hexagonID, Status: model.StatusNew,
	}
	st.businesses["p2"] = model.Business{
		PlaceID: "p2", Name: "Solid Co", Website: "https://example.com",
		Phone: "555-0100", Types: []string{"cafe"},
		HexagonID: hexagonID, Status: model.StatusContacted,
	}

	payload, err := svc.GetHexagon(context.Background(), hexagonID)
	require.NoError(t, err)

	require.Len(t, payload.Businesses, 2)
	// Sorted by descending opportunity score.
	assert.Equal(t, "p1", payload.Businesses[0].PlaceID)
	assert.Equal(t, 90, payload.Businesses[0].Analysis.OpportunityScore)
	require.NotNil(t, payload.AreaAnalysis)
	assert.Equal(t, 2, payload.AreaAnalysis.TotalBusinesses)
}

func TestFetchHexagon(t *testing.T) {
	st := newMockStore()
	pc := &mockPlacesClient{
		pages: []*places.NearbySearchResponse{
			nearbyPage("token-2", "p1", "p2"),
			nearbyPage("", "p3"),
		},
		details: map[string]*places.PlaceDetails{
			"p1": {PlaceID: "p1", Name: "Cafe One", Website: "https://example.com", Types: []string{"restaurant"}},
			"p2": {PlaceID: "p2", Name: "Cafe Two", Types: []string{"restaurant"}},
			"p3": {PlaceID: "p3", Name: "Cafe Three", Types: []string{"restaurant"}},
		},
	}
	svc, hexagonID := newTestService(t, st, pc)

	payload, result, err := svc.FetchHexagon(context.Background(), hexagonID)
	require.NoError(t, err)

	assert.Equal(t, 3, result.BusinessesFound)
	assert.Equal(t, 5, result.APICalls) // 2 searches + 3 details
	assert.InDelta(t, 2*0.032+3*0.017, result.CostUSD, 0.0001)

	assert.Len(t, st.upserted, 3)
	require.NotNil(t, payload.Hexagon)
	assert.True(t, payload.Hexagon.BusinessesFetched)
	assert.False(t, payload.Hexagon.NoBusinessesFound)
	assert.Len(t, payload.Businesses, 3)

	run, ok := st.completedRuns["run-"+hexagonID]
	require.True(t, ok)
	assert.Equal(t, 3.0, run[0])
	assert.Equal(t, 5.0, run[1])
}

func TestFetchHexagon_FiltersDisallowedTypes(t *testing.T) {
	st := newMockStore()
	page := nearbyPage("", "p1")
	page.Results = append(page.Results, places.NearbyPlace{
		PlaceID: "skip", Name: "POI Only", Types: []string{"point_of_interest"},
	})
	pc := &mockPlacesClient{
		pages:   []*places.NearbySearchResponse{page},
		details: map[string]*places.PlaceDetails{"p1": {PlaceID: "p1", Name: "Cafe One", Types: []string{"restaurant"}}},
	}
	svc, hexagonID := newTestService(t, st, pc)

	_, result, err := svc.FetchHexagon(context.Background(), hexagonID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.BusinessesFound)
	assert.NotContains(t, st.businesses, "skip")
}

func TestFetchHexagon_EmptyArea(t *testing.T) {
	st := newMockStore()
	pc := &mockPlacesClient{} // ZERO_RESULTS immediately
	svc, hexagonID := newTestService(t, st, pc)

	payload, result, err := svc.FetchHexagon(context.Background(), hexagonID)
	require.NoError(t, err)

	assert.Equal(t, 0, result.BusinessesFound)
	require.NotNil(t, payload.Hexagon)
	assert.True(t, payload.Hexagon.BusinessesFetched)
	assert.True(t, payload.Hexagon.NoBusinessesFound)
	assert.Nil(t, payload.AreaAnalysis)
}

func TestFetchHexagon_RetriesTransientErrors(t *testing.T) {
	st := newMockStore()
	pc := &mockPlacesClient{
		searchErrs: []error{eris.New("places: send request: connection reset")},
		pages:      []*places.NearbySearchResponse{nearbyPage("", "p1")},
		details:    map[string]*places.PlaceDetails{"p1": {PlaceID: "p1", Name: "Cafe One", Types: []string{"restaurant"}}},
	}
	svc, hexagonID := newTestService(t, st, pc)

	_, result, err := svc.FetchHexagon(context.Background(), hexagonID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.BusinessesFound)
	assert.Equal(t, 2, pc.searchCalls)
}

func TestFetchHexagon_GivesUpAfterMaxRetries(t *testing.T) {
	st := newMockStore()
	pc := &mockPlacesClient{
		searchErrs: []error{
			eris.New("transient"), eris.New("transient"), eris.New("transient"),
		},
	}
	svc, hexagonID := newTestService(t, st, pc)

	_, _, err := svc.FetchHexagon(context.Background(), hexagonID)
	require.Error(t, err)
	assert.Equal(t, 3, pc.searchCalls)
}

func TestFetchHexagon_DetailsFallbackToNearbyFields(t *testing.T) {
	st := newMockStore()
	pc := &mockPlacesClient{
		pages:   []*places.NearbySearchResponse{nearbyPage("", "p1")},
		details: map[string]*places.PlaceDetails{}, // every details call fails
	}
	svc, hexagonID := newTestService(t, st, pc)

	_, result, err := svc.FetchHexagon(context.Background(), hexagonID)
	require.NoError(t, err)

	assert.Equal(t, 1, result.BusinessesFound)
	b := st.businesses["p1"]
	assert.Equal(t, "Business p1", b.Name)
	assert.Equal(t, []string{"restaurant"}, b.Types)
}

func TestUpdateStatus(t *testing.T) {
	st := newMockStore()
	st.businesses["p1"] = model.Business{PlaceID: "p1", Name: "Cafe One", Status: model.StatusNew}
	svc, _ := newTestService(t, st, &mockPlacesClient{})

	b, err := svc.UpdateStatus(context.Background(), "p1", "contacted")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, model.StatusContacted, b.Status)
	assert.Equal(t, model.StatusContacted, st.statusUpdates["p1"])
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	st := newMockStore()
	svc, _ := newTestService(t, st, &mockPlacesClient{})

	_, err := svc.UpdateStatus(context.Background(), "p1", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")
	assert.Empty(t, st.statusUpdates)
}

func TestCompare(t *testing.T) {
	st := newMockStore()
	st.businesses["target"] = model.Business{
		PlaceID: "target", Name: "Target", Types: []string{"restaurant"}, HexagonID: "hex1",
	}
	st.businesses["peer"] = model.Business{
		PlaceID: "peer", Name: "Peer", Types: []string{"restaurant"},
		Website: "https://example.com", HexagonID: "hex1",
	}
	st.businesses["other"] = model.Business{
		PlaceID: "other", Name: "Other", Types: []string{"pharmacy"}, HexagonID: "hex1",
	}
	svc, _ := newTestService(t, st, &mockPlacesClient{})

	cmp, err := svc.Compare(context.Background(), "target", 3)
	require.NoError(t, err)

	assert.Equal(t, "Target", cmp.Business.Name)
	require.Len(t, cmp.Competitors, 1)
	assert.Equal(t, "peer", cmp.Competitors[0].Business.PlaceID)
	assert.Greater(t, cmp.Competitors[0].Presence.Score, cmp.Presence.Score)
}

func TestCompare_NotFound(t *testing.T) {
	svc, _ := newTestService(t, newMockStore(), &mockPlacesClient{})

	_, err := svc.Compare(context.Background(), "missing", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
