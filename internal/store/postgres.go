package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/db"
	"github.com/sells-group/prospect-cli/internal/model"
)

// PostgresStore implements Store using pgx.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore on an existing pool.
func NewPostgres(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS hexagons (
	hexagon_id          TEXT PRIMARY KEY,
	businesses_fetched  BOOLEAN NOT NULL DEFAULT FALSE,
	no_businesses_found BOOLEAN NOT NULL DEFAULT FALSE,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS businesses (
	place_id               TEXT PRIMARY KEY,
	name                   TEXT NOT NULL,
	formatted_address      TEXT,
	formatted_phone_number TEXT,
	website                TEXT,
	rating                 DOUBLE PRECISION,
	user_ratings_total     INTEGER,
	types                  JSONB,
	business_status        TEXT,
	photos                 JSONB,
	icon                   TEXT,
	url                    TEXT,
	price_level            INTEGER,
	opening_hours          JSONB,
	reviews                JSONB,
	lat                    DOUBLE PRECISION NOT NULL DEFAULT 0,
	lng                    DOUBLE PRECISION NOT NULL DEFAULT 0,
	hexagon_id             TEXT NOT NULL REFERENCES hexagons(hexagon_id),
	status                 TEXT NOT NULL DEFAULT 'new',
	created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS fetch_runs (
	id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	hexagon_id      TEXT NOT NULL,
	businesses_found INTEGER NOT NULL DEFAULT 0,
	api_calls       INTEGER NOT NULL DEFAULT 0,
	cost_usd        DOUBLE PRECISION NOT NULL DEFAULT 0,
	started_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at    TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_businesses_hexagon_id ON businesses(hexagon_id);
CREATE INDEX IF NOT EXISTS idx_businesses_status ON businesses(status);
CREATE INDEX IF NOT EXISTS idx_fetch_runs_hexagon_id ON fetch_runs(hexagon_id);
`

// Migrate creates the schema if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// GetHexagon fetches a hexagon row, returning (nil, nil) when absent.
func (s *PostgresStore) GetHexagon(ctx context.Context, hexagonID string) (*model.Hexagon, error) {
	var hex model.Hexagon
	err := s.pool.QueryRow(ctx,
		`SELECT hexagon_id, businesses_fetched, no_businesses_found, created_at, updated_at
		 FROM hexagons WHERE hexagon_id = $1`,
		hexagonID,
	).Scan(&hex.HexagonID, &hex.BusinessesFetched, &hex.NoBusinessesFound, &hex.CreatedAt, &hex.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get hexagon %s", hexagonID)
	}
	return &hex, nil
}

// CreateHexagon inserts a hexagon row and returns it.
func (s *PostgresStore) CreateHexagon(ctx context.Context, hex model.Hexagon) (*model.Hexagon, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO hexagons (hexagon_id, businesses_fetched, no_businesses_found)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (hexagon_id) DO UPDATE SET updated_at = now()
		 RETURNING hexagon_id, businesses_fetched, no_businesses_found, created_at, updated_at`,
		hex.HexagonID, hex.BusinessesFetched, hex.NoBusinessesFound,
	).Scan(&hex.HexagonID, &hex.BusinessesFetched, &hex.NoBusinessesFound, &hex.CreatedAt, &hex.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: create hexagon %s", hex.HexagonID)
	}
	return &hex, nil
}

// UpdateHexagonStatus records the fetch outcome for a hexagon.
func (s *PostgresStore) UpdateHexagonStatus(ctx context.Context, hexagonID string, fetched, noBusinesses bool) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE hexagons SET businesses_fetched = $2, no_businesses_found = $3, updated_at = now()
		 WHERE hexagon_id = $1`,
		hexagonID, fetched, noBusinesses,
	)
	return eris.Wrapf(err, "postgres: update hexagon %s", hexagonID)
}

// ListHexagonIDs returns fetched hexagon IDs split into those with and
// without businesses.
func (s *PostgresStore) ListHexagonIDs(ctx context.Context) (fetched []string, empty []string, err error) {
	rows, err := s.pool.Query(ctx,
		`SELECT hexagon_id, no_businesses_found FROM hexagons WHERE businesses_fetched ORDER BY hexagon_id`,
	)
	if err != nil {
		return nil, nil, eris.Wrap(err, "postgres: list hexagons")
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var noBusinesses bool
		if err := rows.Scan(&id, &noBusinesses); err != nil {
			return nil, nil, eris.Wrap(err, "postgres: scan hexagon")
		}
		if noBusinesses {
			empty = append(empty, id)
		} else {
			fetched = append(fetched, id)
		}
	}
	return fetched, empty, eris.Wrap(rows.Err(), "postgres: iterate hexagons")
}

var businessColumns = []string{
	"place_id", "name", "formatted_address", "formatted_phone_number",
	"website", "rating", "user_ratings_total", "types", "business_status",
	"photos", "icon", "url", "price_level", "opening_hours", "reviews",
	"lat", "lng", "hexagon_id", "status",
}

// UpsertBusinesses bulk-upserts business rows keyed by place_id. Outreach
// status is preserved for existing rows: only the raw place fields update.
func (s *PostgresStore) UpsertBusinesses(ctx context.Context, businesses []model.Business) (int64, error) {
	if len(businesses) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(businesses))
	for i := range businesses {
		b := &businesses[i]
		types, err := json.Marshal(b.Types)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal types for %s", b.PlaceID)
		}
		photos, err := json.Marshal(b.Photos)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal photos for %s", b.PlaceID)
		}
		var hours []byte
		if b.OpeningHours != nil {
			if hours, err = json.Marshal(b.OpeningHours); err != nil {
				return 0, eris.Wrapf(err, "postgres: marshal opening hours for %s", b.PlaceID)
			}
		}
		var reviews []byte
		if b.Reviews != nil {
			if reviews, err = json.Marshal(b.Reviews); err != nil {
				return 0, eris.Wrapf(err, "postgres: marshal reviews for %s", b.PlaceID)
			}
		}

		status := b.Status
		if status == "" {
			status = model.StatusNew
		}

		rows = append(rows, []any{
			b.PlaceID, b.Name, b.FormattedAddress, b.Phone, b.Website,
			b.Rating, b.UserRatingsTotal, types, b.BusinessStatus,
			photos, b.Icon, b.URL, b.PriceLevel, hours, reviews,
			b.Location.Lat, b.Location.Lng, b.HexagonID, string(status),
		})
	}

	cfg := db.UpsertConfig{
		Table:        "businesses",
		Columns:      businessColumns,
		ConflictKeys: []string{"place_id"},
		// status stays out of the update set so refreshes never clobber
		// a user's outreach state.
		UpdateCols: []string{
			"name", "formatted_address", "formatted_phone_number", "website",
			"rating", "user_ratings_total", "types", "business_status",
			"photos", "icon", "url", "price_level", "opening_hours",
			"reviews", "lat", "lng", "hexagon_id",
		},
	}

	return db.BulkUpsert(ctx, s.pool, cfg, rows)
}

const selectBusiness = `SELECT place_id, name, formatted_address, formatted_phone_number,
	website, rating, user_ratings_total, types, business_status, photos,
	icon, url, price_level, opening_hours, reviews, lat, lng, hexagon_id,
	status, created_at, updated_at FROM businesses`

// GetBusinessesByHexagon fetches all business rows for a hexagon.
func (s *PostgresStore) GetBusinessesByHexagon(ctx context.Context, hexagonID string) ([]model.Business, error) {
	rows, err := s.pool.Query(ctx, selectBusiness+` WHERE hexagon_id = $1 ORDER BY place_id`, hexagonID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: businesses for hexagon %s", hexagonID)
	}
	defer rows.Close()

	var businesses []model.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		businesses = append(businesses, *b)
	}
	return businesses, eris.Wrap(rows.Err(), "postgres: iterate businesses")
}

// GetBusiness fetches a single business by place ID, (nil, nil) when absent.
func (s *PostgresStore) GetBusiness(ctx context.Context, placeID string) (*model.Business, error) {
	rows, err := s.pool.Query(ctx, selectBusiness+` WHERE place_id = $1`, placeID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get business %s", placeID)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, eris.Wrap(rows.Err(), "postgres: get business")
	}
	return scanBusiness(rows)
}

// UpdateBusinessStatus mutates only the outreach status column.
func (s *PostgresStore) UpdateBusinessStatus(ctx context.Context, placeID string, status model.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE businesses SET status = $2, updated_at = now() WHERE place_id = $1`,
		placeID, string(status),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update status for %s", placeID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: business %s not found", placeID)
	}
	return nil
}

// CreateFetchRun opens a fetch-run row and returns its ID.
func (s *PostgresStore) CreateFetchRun(ctx context.Context, hexagonID string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO fetch_runs (hexagon_id) VALUES ($1) RETURNING id`,
		hexagonID,
	).Scan(&id)
	if err != nil {
		return "", eris.Wrapf(err, "postgres: create fetch run for %s", hexagonID)
	}
	return id, nil
}

// CompleteFetchRun records the outcome of a fetch run.
func (s *PostgresStore) CompleteFetchRun(ctx context.Context, runID string, found, apiCalls int, costUSD float64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE fetch_runs SET businesses_found = $2, api_calls = $3, cost_usd = $4, completed_at = now()
		 WHERE id = $1`,
		runID, found, apiCalls, costUSD,
	)
	return eris.Wrapf(err, "postgres: complete fetch run %s", runID)
}

// scanBusiness decodes one business row, including its JSON-encoded columns.
func scanBusiness(rows pgx.Rows) (*model.Business, error) {
	var b model.Business
	var types, photos, hours, revs []byte
	var status string
	err := rows.Scan(
		&b.PlaceID, &b.Name, &b.FormattedAddress, &b.Phone, &b.Website,
		&b.Rating, &b.UserRatingsTotal, &types, &b.BusinessStatus, &photos,
		&b.Icon, &b.URL, &b.PriceLevel, &hours, &revs,
		&b.Location.Lat, &b.Location.Lng, &b.HexagonID,
		&status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan business")
	}

	if len(types) > 0 {
		if err := json.Unmarshal(types, &b.Types); err != nil {
			return nil, eris.Wrapf(err, "postgres: decode types for %s", b.PlaceID)
		}
	}
	if len(photos) > 0 {
		if err := json.Unmarshal(photos, &b.Photos); err != nil {
			return nil, eris.Wrapf(err, "postgres: decode photos for %s", b.PlaceID)
		}
	}
	if len(hours) > 0 {
		if err := json.Unmarshal(hours, &b.OpeningHours); err != nil {
			return nil, eris.Wrapf(err, "postgres: decode opening hours for %s", b.PlaceID)
		}
	}
	if len(revs) > 0 {
		if err := json.Unmarshal(revs, &b.Reviews); err != nil {
			return nil, eris.Wrapf(err, "postgres: decode reviews for %s", b.PlaceID)
		}
	}

	b.Status = model.Status(status)
	return &b, nil
}
