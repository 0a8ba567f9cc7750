package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/prospect-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It is the local
// single-user backend; Postgres is the default.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS hexagons (
	hexagon_id          TEXT PRIMARY KEY,
	businesses_fetched  INTEGER NOT NULL DEFAULT 0,
	no_businesses_found INTEGER NOT NULL DEFAULT 0,
	created_at          DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS businesses (
	place_id               TEXT PRIMARY KEY,
	name                   TEXT NOT NULL,
	formatted_address      TEXT,
	formatted_phone_number TEXT,
	website                TEXT,
	rating                 REAL,
	user_ratings_total     INTEGER,
	types                  TEXT,
	business_status        TEXT,
	photos                 TEXT,
	icon                   TEXT,
	url                    TEXT,
	price_level            INTEGER,
	opening_hours          TEXT,
	reviews                TEXT,
	lat                    REAL NOT NULL DEFAULT 0,
	lng                    REAL NOT NULL DEFAULT 0,
	hexagon_id             TEXT NOT NULL REFERENCES hexagons(hexagon_id),
	status                 TEXT NOT NULL DEFAULT 'new',
	created_at             DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at             DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS fetch_runs (
	id               TEXT PRIMARY KEY,
	hexagon_id       TEXT NOT NULL,
	businesses_found INTEGER NOT NULL DEFAULT 0,
	api_calls        INTEGER NOT NULL DEFAULT 0,
	cost_usd         REAL NOT NULL DEFAULT 0,
	started_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at     DATETIME
);

CREATE INDEX IF NOT EXISTS idx_businesses_hexagon_id ON businesses(hexagon_id);
CREATE INDEX IF NOT EXISTS idx_businesses_status ON businesses(status);
CREATE INDEX IF NOT EXISTS idx_fetch_runs_hexagon_id ON fetch_runs(hexagon_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetHexagon(ctx context.Context, hexagonID string) (*model.Hexagon, error) {
	var hex model.Hexagon
	err := s.db.QueryRowContext(ctx,
		`SELECT hexagon_id, businesses_fetched, no_businesses_found, created_at, updated_at
		 FROM hexagons WHERE hexagon_id = ?`,
		hexagonID,
	).Scan(&hex.HexagonID, &hex.BusinessesFetched, &hex.NoBusinessesFound, &hex.CreatedAt, &hex.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get hexagon %s", hexagonID)
	}
	return &hex, nil
}

func (s *SQLiteStore) CreateHexagon(ctx context.Context, hex model.Hexagon) (*model.Hexagon, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO hexagons (hexagon_id, businesses_fetched, no_businesses_found, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (hexagon_id) DO UPDATE SET updated_at = excluded.updated_at`,
		hex.HexagonID, hex.BusinessesFetched, hex.NoBusinessesFound, now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: create hexagon %s", hex.HexagonID)
	}
	return s.GetHexagon(ctx, hex.HexagonID)
}

func (s *SQLiteStore) UpdateHexagonStatus(ctx context.Context, hexagonID string, fetched, noBusinesses bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE hexagons SET businesses_fetched = ?, no_businesses_found = ?, updated_at = ?
		 WHERE hexagon_id = ?`,
		fetched, noBusinesses, time.Now().UTC(), hexagonID,
	)
	return eris.Wrapf(err, "sqlite: update hexagon %s", hexagonID)
}

func (s *SQLiteStore) ListHexagonIDs(ctx context.Context) (fetched []string, empty []string, err error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT hexagon_id, no_businesses_found FROM hexagons WHERE businesses_fetched = 1 ORDER BY hexagon_id`,
	)
	if err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: list hexagons")
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var id string
		var noBusinesses bool
		if err := rows.Scan(&id, &noBusinesses); err != nil {
			return nil, nil, eris.Wrap(err, "sqlite: scan hexagon")
		}
		if noBusinesses {
			empty = append(empty, id)
		} else {
			fetched = append(fetched, id)
		}
	}
	return fetched, empty, eris.Wrap(rows.Err(), "sqlite: iterate hexagons")
}

// UpsertBusinesses upserts rows one at a time inside a transaction; SQLite
// has no COPY path. Outreach status is never overwritten.
func (s *SQLiteStore) UpsertBusinesses(ctx context.Context, businesses []model.Business) (int64, error) {
	if len(businesses) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO businesses (
			place_id, name, formatted_address, formatted_phone_number, website,
			rating, user_ratings_total, types, business_status, photos, icon,
			url, price_level, opening_hours, reviews, lat, lng, hexagon_id,
			status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (place_id) DO UPDATE SET
			name = excluded.name,
			formatted_address = excluded.formatted_address,
			formatted_phone_number = excluded.formatted_phone_number,
			website = excluded.website,
			rating = excluded.rating,
			user_ratings_total = excluded.user_ratings_total,
			types = excluded.types,
			business_status = excluded.business_status,
			photos = excluded.photos,
			icon = excluded.icon,
			url = excluded.url,
			price_level = excluded.price_level,
			opening_hours = excluded.opening_hours,
			reviews = excluded.reviews,
			lat = excluded.lat,
			lng = excluded.lng,
			hexagon_id = excluded.hexagon_id,
			updated_at = excluded.updated_at`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close() //nolint:errcheck

	now := time.Now().UTC()
	var count int64
	for i := range businesses {
		b := &businesses[i]

		types, hErr := marshalNullable(b.Types)
		if hErr != nil {
			return 0, eris.Wrapf(hErr, "sqlite: marshal types for %s", b.PlaceID)
		}
		photos, hErr := marshalNullable(b.Photos)
		if hErr != nil {
			return 0, eris.Wrapf(hErr, "sqlite: marshal photos for %s", b.PlaceID)
		}
		var hours, reviews any
		if b.OpeningHours != nil {
			if hours, hErr = marshalNullable(b.OpeningHours); hErr != nil {
				return 0, eris.Wrapf(hErr, "sqlite: marshal opening hours for %s", b.PlaceID)
			}
		}
		if b.Reviews != nil {
			if reviews, hErr = marshalNullable(b.Reviews); hErr != nil {
				return 0, eris.Wrapf(hErr, "sqlite: marshal reviews for %s", b.PlaceID)
			}
		}

		status := b.Status
		if status == "" {
			status = model.StatusNew
		}

		if _, err := stmt.ExecContext(ctx,
			b.PlaceID, b.Name, b.FormattedAddress, b.Phone, b.Website,
			b.Rating, b.UserRatingsTotal, types, b.BusinessStatus, photos,
			b.Icon, b.URL, b.PriceLevel, hours, reviews,
			b.Location.Lat, b.Location.Lng, b.HexagonID,
			string(status), now, now,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert business %s", b.PlaceID)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit tx")
	}
	return count, nil
}

func (s *SQLiteStore) GetBusinessesByHexagon(ctx context.Context, hexagonID string) ([]model.Business, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelectBusiness+` WHERE hexagon_id = ? ORDER BY place_id`, hexagonID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: businesses for hexagon %s", hexagonID)
	}
	defer rows.Close() //nolint:errcheck

	var businesses []model.Business
	for rows.Next() {
		b, err := scanSQLiteBusiness(rows)
		if err != nil {
			return nil, err
		}
		businesses = append(businesses, *b)
	}
	return businesses, eris.Wrap(rows.Err(), "sqlite: iterate businesses")
}

func (s *SQLiteStore) GetBusiness(ctx context.Context, placeID string) (*model.Business, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelectBusiness+` WHERE place_id = ?`, placeID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get business %s", placeID)
	}
	defer rows.Close() //nolint:errcheck

	if !rows.Next() {
		return nil, eris.Wrap(rows.Err(), "sqlite: get business")
	}
	return scanSQLiteBusiness(rows)
}

func (s *SQLiteStore) UpdateBusinessStatus(ctx context.Context, placeID string, status model.Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE businesses SET status = ?, updated_at = ? WHERE place_id = ?`,
		string(status), time.Now().UTC(), placeID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update status for %s", placeID)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if affected == 0 {
		return eris.Errorf("sqlite: business %s not found", placeID)
	}
	return nil
}

func (s *SQLiteStore) CreateFetchRun(ctx context.Context, hexagonID string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fetch_runs (id, hexagon_id, started_at) VALUES (?, ?, ?)`,
		id, hexagonID, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: create fetch run for %s", hexagonID)
	}
	return id, nil
}

func (s *SQLiteStore) CompleteFetchRun(ctx context.Context, runID string, found, apiCalls int, costUSD float64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE fetch_runs SET businesses_found = ?, api_calls = ?, cost_usd = ?, completed_at = ?
		 WHERE id = ?`,
		found, apiCalls, costUSD, time.Now().UTC(), runID,
	)
	return eris.Wrapf(err, "sqlite: complete fetch run %s", runID)
}

const sqliteSelectBusiness = `SELECT place_id, name, formatted_address, formatted_phone_number,
	website, rating, user_ratings_total, types, business_status, photos,
	icon, url, price_level, opening_hours, reviews, lat, lng, hexagon_id,
	status, created_at, updated_at FROM businesses`

// marshalNullable JSON-encodes v, returning nil for a nil slice so the
// column stores NULL instead of "null".
func marshalNullable(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	return string(data), nil
}

func scanSQLiteBusiness(rows *sql.Rows) (*model.Business, error) {
	var b model.Business
	var addr, phone, website, bizStatus, icon, bizURL sql.NullString
	var types, photos, hours, revs sql.NullString
	var status string

	err := rows.Scan(
		&b.PlaceID, &b.Name, &addr, &phone, &website,
		&b.Rating, &b.UserRatingsTotal, &types, &bizStatus, &photos,
		&icon, &bizURL, &b.PriceLevel, &hours, &revs,
		&b.Location.Lat, &b.Location.Lng, &b.HexagonID,
		&status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan business")
	}

	b.FormattedAddress = addr.String
	b.Phone = phone.String
	b.Website = website.String
	b.BusinessStatus = bizStatus.String
	b.Icon = icon.String
	b.URL = bizURL.String
	b.Status = model.Status(status)

	if types.Valid {
		if err := json.Unmarshal([]byte(types.String), &b.Types); err != nil {
			return nil, eris.Wrapf(err, "sqlite: decode types for %s", b.PlaceID)
		}
	}
	if photos.Valid {
		if err := json.Unmarshal([]byte(photos.String), &b.Photos); err != nil {
			return nil, eris.Wrapf(err, "sqlite: decode photos for %s", b.PlaceID)
		}
	}
	if hours.Valid {
		if err := json.Unmarshal([]byte(hours.String), &b.OpeningHours); err != nil {
			return nil, eris.Wrapf(err, "sqlite: decode opening hours for %s", b.PlaceID)
		}
	}
	if revs.Valid {
		if err := json.Unmarshal([]byte(revs.String), &b.Reviews); err != nil {
			return nil, eris.Wrapf(err, "sqlite: decode reviews for %s", b.PlaceID)
		}
	}

	return &b, nil
}
