package prospect

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/pkg/places"
)

// mockStore implements store.Store for testing.
type mockStore struct {
	hexagons   map[string]*model.Hexagon
	businesses map[string]model.Business

	upserted        []model.Business
	statusUpdates   map[string]model.Status
	fetchRuns       []string
	completedRuns   map[string][3]float64 // found, apiCalls, cost
	hexagonStatuses map[string][2]bool    // fetched, noBusinesses
}

func newMockStore() *mockStore {
	return &mockStore{
		hexagons:        make(map[string]*model.Hexagon),
		businesses:      make(map[string]model.Business),
		statusUpdates:   make(map[string]model.Status),
		completedRuns:   make(map[string][3]float64),
		hexagonStatuses: make(map[string][2]bool),
	}
}

func (m *mockStore) GetHexagon(_ context.Context, hexagonID string) (*model.Hexagon, error) {
	return m.hexagons[hexagonID], nil
}

func (m *mockStore) CreateHexagon(_ context.Context, hex model.Hexagon) (*model.Hexagon, error) {
	m.hexagons[hex.HexagonID] = &hex
	return &hex, nil
}

func (m *mockStore) UpdateHexagonStatus(_ context.Context, hexagonID string, fetched, noBusinesses bool) error {
	m.hexagonStatuses[hexagonID] = [2]bool{fetched, noBusinesses}
	if hex := m.hexagons[hexagonID]; hex != nil {
		hex.BusinessesFetched = fetched
		hex.NoBusinessesFound = noBusinesses
	}
	return nil
}

func (m *mockStore) ListHexagonIDs(_ context.Context) ([]string, []string, error) {
	var fetched, empty []string
	for id, hex := range m.hexagons {
		if !hex.BusinessesFetched {
			continue
		}
		if hex.NoBusinessesFound {
			empty = append(empty, id)
		} else {
			fetched = append(fetched, id)
		}
	}
	return fetched, empty, nil
}

func (m *mockStore) UpsertBusinesses(_ context.Context, businesses []model.Business) (int64, error) {
	m.upserted = append(m.upserted, businesses...)
	for _, b := range businesses {
		if existing, ok := m.businesses[b.PlaceID]; ok {
			// Raw fields refresh, outreach status sticks.
			b.Status = existing.Status
		}
		m.businesses[b.PlaceID] = b
	}
	return int64(len(businesses)), nil
}

func (m *mockStore) GetBusinessesByHexagon(_ context.Context, hexagonID string) ([]model.Business, error) {
	var out []model.Business
	for _, b := range m.businesses {
		if b.HexagonID == hexagonID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockStore) GetBusiness(_ context.Context, placeID string) (*model.Business, error) {
	b, ok := m.businesses[placeID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *mockStore) UpdateBusinessStatus(_ context.Context, placeID string, status model.Status) error {
	b, ok := m.businesses[placeID]
	if !ok {
		return eris.Errorf("mock: business %s not found", placeID)
	}
	b.Status = status
	m.businesses[placeID] = b
	m.statusUpdates[placeID] = status
	return nil
}

func (m *mockStore) CreateFetchRun(_ context.Context, hexagonID string) (string, error) {
	id := "run-" + hexagonID
	m.fetchRuns = append(m.fetchRuns, id)
	return id, nil
}

func (m *mockStore) CompleteFetchRun(_ context.Context, runID string, found, apiCalls int, costUSD float64) error {
	m.completedRuns[runID] = [3]float64{float64(found), float64(apiCalls), costUSD}
	return nil
}

func (m *mockStore) Migrate(_ context.Context) error { return nil }
func (m *mockStore) Close() error                    { return nil }

// mockPlacesClient implements places.Client with canned pages and details.
type mockPlacesClient struct {
	pages       []*places.NearbySearchResponse
	details     map[string]*places.PlaceDetails
	searchErrs  []error // consumed before pages; simulates transient failures
	searchCalls int
	detailCalls int
}

func (m *mockPlacesClient) NearbySearch(_ context.Context, req places.NearbySearchRequest) (*places.NearbySearchResponse, error) {
	m.searchCalls++
	if len(m.searchErrs) > 0 {
		err := m.searchErrs[0]
		m.searchErrs = m.searchErrs[1:]
		return nil, err
	}
	if len(m.pages) == 0 {
		return &places.NearbySearchResponse{Status: places.StatusZeroResults}, nil
	}
	page := m.pages[0]
	m.pages = m.pages[1:]
	return page, nil
}

func (m *mockPlacesClient) PlaceDetails(_ context.Context, placeID string) (*places.PlaceDetails, error) {
	m.detailCalls++
	d, ok := m.details[placeID]
	if !ok {
		return nil, eris.Errorf("mock: no details for %s", placeID)
	}
	return d, nil
}
