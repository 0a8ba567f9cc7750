package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/db"
	"github.com/sells-group/prospect-cli/internal/hexgrid"
	"github.com/sells-group/prospect-cli/internal/prospect"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/places"
)

// openStore opens the configured store backend and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}

	var st store.Store
	switch cfg.Store.Driver {
	case "postgres":
		pool, err := db.Connect(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st = store.NewPostgres(pool)
	case "sqlite":
		sq, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		st = sq
	default:
		return nil, eris.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// newService builds the prospect service with its collaborators. The caller
// owns closing the returned store.
func newService(ctx context.Context) (*prospect.Service, store.Store, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	grid, err := hexgrid.New(cfg.Grid.Resolution)
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, nil, err
	}

	var opts []places.Option
	if cfg.Google.BaseURL != "" {
		opts = append(opts, places.WithBaseURL(cfg.Google.BaseURL))
	}
	client := places.NewClient(cfg.Google.APIKey, opts...)

	return prospect.NewService(st, client, grid, &cfg.Google), st, nil
}
