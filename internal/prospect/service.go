package prospect

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospect-cli/internal/analyzer"
	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/hexgrid"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/places"
)

// Service coordinates the store, the Places client, and the hex grid.
type Service struct {
	store   store.Store
	places  places.Client
	grid    *hexgrid.Grid
	limiter *rate.Limiter
	cfg     *config.GoogleConfig
}

// NewService creates a Service with the given collaborators.
func NewService(st store.Store, pc places.Client, grid *hexgrid.Grid, cfg *config.GoogleConfig) *Service {
	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = 10
	}
	return &Service{
		store:   st,
		places:  pc,
		grid:    grid,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), 1),
		cfg:     cfg,
	}
}

// GetHexagon returns the analyzed payload for a hexagon, creating its row on
// first sight. A hexagon without businesses yields a nil area analysis.
func (s *Service) GetHexagon(ctx context.Context, hexagonID string) (*Payload, error) {
	if !hexgrid.ValidCell(hexagonID) {
		return nil, eris.Errorf("prospect: invalid hexagon id %q", hexagonID)
	}

	hex, err := s.store.GetHexagon(ctx, hexagonID)
	if err != nil {
		return nil, err
	}
	if hex == nil {
		hex, err = s.store.CreateHexagon(ctx, model.Hexagon{HexagonID: hexagonID})
		if err != nil {
			return nil, err
		}
	}

	businesses, err := s.store.GetBusinessesByHexagon(ctx, hexagonID)
	if err != nil {
		return nil, err
	}

	return s.buildPayload(hex, businesses)
}

// FetchHexagon pulls businesses for a hexagon from the Places API, persists
// them, and returns the analyzed payload together with fetch statistics.
func (s *Service) FetchHexagon(ctx context.Context, hexagonID string) (*Payload, *FetchResult, error) {
	center, err := s.grid.Center(hexagonID)
	if err != nil {
		return nil, nil, err
	}

	log := zap.L().With(zap.String("hexagon_id", hexagonID))

	runID, err := s.store.CreateFetchRun(ctx, hexagonID)
	if err != nil {
		return nil, nil, err
	}

	raw, searchCalls, err := s.fetchAllPages(ctx, center)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "prospect: fetch hexagon %s", hexagonID)
	}

	// Drop places with no allow-listed type before any scoring sees them.
	var filtered []places.NearbyPlace
	for _, p := range raw {
		if len(analyzer.FilterAllowedTypes(p.Types)) > 0 {
			filtered = append(filtered, p)
		}
	}
	log.Info("nearby search complete",
		zap.Int("raw_results", len(raw)),
		zap.Int("allowed", len(filtered)),
	)

	businesses, detailCalls := s.fetchDetails(ctx, hexagonID, filtered)

	// Upsert the hexagon row with the fetch outcome.
	hex, err := s.store.GetHexagon(ctx, hexagonID)
	if err != nil {
		return nil, nil, err
	}
	if hex == nil {
		hex, err = s.store.CreateHexagon(ctx, model.Hexagon{
			HexagonID:         hexagonID,
			BusinessesFetched: true,
			NoBusinessesFound: len(businesses) == 0,
		})
		if err != nil {
			return nil, nil, err
		}
	} else {
		if err := s.store.UpdateHexagonStatus(ctx, hexagonID, true, len(businesses) == 0); err != nil {
			return nil, nil, err
		}
		hex.BusinessesFetched = true
		hex.NoBusinessesFound = len(businesses) == 0
	}

	if _, err := s.store.UpsertBusinesses(ctx, businesses); err != nil {
		return nil, nil, err
	}

	// Reload so the payload reflects stored rows (and preserved statuses).
	stored, err := s.store.GetBusinessesByHexagon(ctx, hexagonID)
	if err != nil {
		return nil, nil, err
	}

	apiCalls := searchCalls + detailCalls
	cost := float64(searchCalls)*nearbySearchCostUSD + float64(detailCalls)*placeDetailsCostUSD
	if err := s.store.CompleteFetchRun(ctx, runID, len(stored), apiCalls, cost); err != nil {
		log.Warn("complete fetch run failed", zap.String("run_id", runID), zap.Error(err))
	}

	log.Info("fetch complete",
		zap.Int("businesses", len(stored)),
		zap.Int("api_calls", apiCalls),
		zap.Float64("cost_usd", cost),
	)

	payload, err := s.buildPayload(hex, stored)
	if err != nil {
		return nil, nil, err
	}
	result := &FetchResult{
		RunID:           runID,
		BusinessesFound: len(stored),
		APICalls:        apiCalls,
		CostUSD:         cost,
	}
	return payload, result, nil
}

// fetchAllPages paginates nearby search around a center point. Page tokens
// need a settle delay before they become valid; each page gets a bounded
// retry budget and ZERO_RESULTS ends pagination cleanly.
func (s *Service) fetchAllPages(ctx context.Context, center model.Location) ([]places.NearbyPlace, int, error) {
	var (
		results   []places.NearbyPlace
		pageToken string
		apiCalls  int
	)

	tokenDelay := time.Duration(s.cfg.PageTokenDelayMS) * time.Millisecond
	maxRetries := s.cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	for {
		if pageToken != "" {
			select {
			case <-time.After(tokenDelay):
			case <-ctx.Done():
				return results, apiCalls, ctx.Err()
			}
		}

		var resp *places.NearbySearchResponse
		var err error
		for attempt := 0; attempt < maxRetries; attempt++ {
			if err = s.limiter.Wait(ctx); err != nil {
				return results, apiCalls, eris.Wrap(err, "prospect: rate limit wait")
			}
			resp, err = s.places.NearbySearch(ctx, places.NearbySearchRequest{
				Lat:       center.Lat,
				Lng:       center.Lng,
				RadiusM:   s.cfg.RadiusM,
				PageToken: pageToken,
			})
			apiCalls++
			if err == nil {
				break
			}
			zap.L().Debug("nearby search attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
			select {
			case <-time.After(tokenDelay):
			case <-ctx.Done():
				return results, apiCalls, ctx.Err()
			}
		}
		if err != nil {
			return results, apiCalls, err
		}

		results = append(results, resp.Results...)
		if resp.Status == places.StatusZeroResults || resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return results, apiCalls, nil
}

// fetchDetails resolves full place details with bounded concurrency. A failed
// details call falls back to the nearby-search fields rather than dropping
// the place.
func (s *Service) fetchDetails(ctx context.Context, hexagonID string, nearby []places.NearbyPlace) ([]model.Business, int) {
	concurrency := s.cfg.DetailsConcurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	businesses := make([]model.Business, len(nearby))
	var mu sync.Mutex
	detailCalls := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, p := range nearby {
		g.Go(func() error {
			if err := s.limiter.Wait(gctx); err != nil {
				businesses[i] = businessFromNearby(p, hexagonID)
				return nil
			}

			details, err := s.places.PlaceDetails(gctx, p.PlaceID)
			mu.Lock()
			detailCalls++
			mu.Unlock()
			if err != nil {
				zap.L().Debug("place details failed, using nearby fields",
					zap.String("place_id", p.PlaceID), zap.Error(err))
				businesses[i] = businessFromNearby(p, hexagonID)
				return nil
			}
			businesses[i] = businessFromDetails(p, details, hexagonID)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; fallbacks handle failures

	return businesses, detailCalls
}

// UpdateStatus validates and applies an outreach status change, returning
// the updated row.
func (s *Service) UpdateStatus(ctx context.Context, placeID, rawStatus string) (*model.Business, error) {
	status, err := model.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateBusinessStatus(ctx, placeID, status); err != nil {
		return nil, err
	}
	return s.store.GetBusiness(ctx, placeID)
}

// ExistingHexagons lists fetched hexagon IDs, split into those with
// businesses and those confirmed empty.
func (s *Service) ExistingHexagons(ctx context.Context) (fetched []string, empty []string, err error) {
	return s.store.ListHexagonIDs(ctx)
}

// Compare benchmarks a business against the top competitors in its hexagon.
func (s *Service) Compare(ctx context.Context, placeID string, topN int) (*Comparison, error) {
	target, err := s.store.GetBusiness(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, eris.Errorf("prospect: business %s not found", placeID)
	}

	pool, err := s.store.GetBusinessesByHexagon(ctx, target.HexagonID)
	if err != nil {
		return nil, err
	}

	competitors := analyzer.FindCompetitors(target, pool, topN)
	peers := make([]RankedPeer, 0, len(competitors))
	for i := range competitors {
		peers = append(peers, RankedPeer{
			Business: competitors[i],
			Presence: analyzer.PresenceScore(&competitors[i]),
		})
	}

	return &Comparison{
		Business:    *target,
		Presence:    analyzer.PresenceScore(target),
		Competitors: peers,
	}, nil
}

// buildPayload assembles the hexagon payload: boundary polygon plus the
// processed business list. Analysis is always recomputed here, never read
// from storage.
func (s *Service) buildPayload(hex *model.Hexagon, businesses []model.Business) (*Payload, error) {
	payload := &Payload{
		Hexagon:    hex,
		Businesses: []analyzer.Enriched{},
	}

	if polygon, err := s.grid.Boundary(hex.HexagonID); err == nil {
		if encoded, err := geojson.Marshal(polygon); err == nil {
			payload.Boundary = encoded
		}
	}

	if len(businesses) > 0 {
		result := analyzer.Process(businesses)
		payload.Businesses = result.Businesses
		payload.AreaAnalysis = &result.AreaAnalysis
	}

	return payload, nil
}

// businessFromNearby maps nearby-search fields onto a Business row.
func businessFromNearby(p places.NearbyPlace, hexagonID string) model.Business {
	return model.Business{
		PlaceID:          p.PlaceID,
		Name:             p.Name,
		FormattedAddress: p.Vicinity,
		Rating:           p.Rating,
		UserRatingsTotal: p.UserRatingsTotal,
		Types:            analyzer.FilterAllowedTypes(p.Types),
		BusinessStatus:   p.BusinessStatus,
		Photos:           photoReferences(p.Photos),
		Icon:             p.Icon,
		Location:         model.Location{Lat: p.Geometry.Location.Lat, Lng: p.Geometry.Location.Lng},
		HexagonID:        hexagonID,
		Status:           model.StatusNew,
	}
}

// businessFromDetails maps a full details record onto a Business row.
func businessFromDetails(p places.NearbyPlace, d *places.PlaceDetails, hexagonID string) model.Business {
	b := model.Business{
		PlaceID:          p.PlaceID,
		Name:             d.Name,
		FormattedAddress: d.FormattedAddress,
		Phone:            d.Phone,
		Website:          d.Website,
		Rating:           d.Rating,
		UserRatingsTotal: d.UserRatingsTotal,
		Types:            analyzer.FilterAllowedTypes(d.Types),
		BusinessStatus:   d.BusinessStatus,
		Photos:           photoReferences(d.Photos),
		Icon:             d.Icon,
		URL:              d.URL,
		PriceLevel:       d.PriceLevel,
		Location:         model.Location{Lat: d.Geometry.Location.Lat, Lng: d.Geometry.Location.Lng},
		HexagonID:        hexagonID,
		Status:           model.StatusNew,
	}
	if d.OpeningHours != nil {
		b.OpeningHours = &model.OpeningHours{
			OpenNow:     d.OpeningHours.OpenNow,
			WeekdayText: d.OpeningHours.WeekdayText,
		}
	}
	for _, r := range d.Reviews {
		b.Reviews = append(b.Reviews, model.Review{
			Rating:       r.Rating,
			AuthorName:   r.AuthorName,
			Text:         r.Text,
			RelativeTime: r.RelativeTime,
		})
	}
	return b
}

func photoReferences(photos []places.Photo) []string {
	var refs []string
	for _, p := range photos {
		if p.PhotoReference != "" {
			refs = append(refs, p.PhotoReference)
		}
	}
	return refs
}
