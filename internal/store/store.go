// Package store persists hexagons and businesses. The raw business row is
// the source of truth; derived analysis is recomputed on read and never
// written here.
package store

import (
	"context"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Store defines the persistence interface for the prospecting pipeline.
// Lookup methods return (nil, nil) when the row does not exist.
type Store interface {
	// Hexagons
	GetHexagon(ctx context.Context, hexagonID string) (*model.Hexagon, error)
	CreateHexagon(ctx context.Context, hex model.Hexagon) (*model.Hexagon, error)
	UpdateHexagonStatus(ctx context.Context, hexagonID string, fetched, noBusinesses bool) error
	ListHexagonIDs(ctx context.Context) (fetched []string, empty []string, err error)

	// Businesses
	UpsertBusinesses(ctx context.Context, businesses []model.Business) (int64, error)
	GetBusinessesByHexagon(ctx context.Context, hexagonID string) ([]model.Business, error)
	GetBusiness(ctx context.Context, placeID string) (*model.Business, error)
	UpdateBusinessStatus(ctx context.Context, placeID string, status model.Status) error

	// Fetch runs
	CreateFetchRun(ctx context.Context, hexagonID string) (string, error)
	CompleteFetchRun(ctx context.Context, runID string, found, apiCalls int, costUSD float64) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
