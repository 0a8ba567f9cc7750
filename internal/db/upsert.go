package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// UpsertConfig describes a COPY-based bulk upsert into one table.
type UpsertConfig struct {
	Table        string   // target table, optionally schema-qualified
	Columns      []string // columns in row order
	ConflictKeys []string // unique-constraint columns
	UpdateCols   []string // columns rewritten on conflict; nil = every non-key column
}

func (c UpsertConfig) validate() error {
	if len(c.Columns) == 0 {
		return eris.New("db: upsert: no columns specified")
	}
	if len(c.ConflictKeys) == 0 {
		return eris.New("db: upsert: no conflict keys specified")
	}
	return nil
}

// tempName derives a session-local staging table name from the target.
func (c UpsertConfig) tempName() string {
	return "_tmp_upsert_" + strings.ReplaceAll(c.Table, ".", "_")
}

// updateColumns resolves the ON CONFLICT SET column list, defaulting to
// everything outside the conflict keys.
func (c UpsertConfig) updateColumns() []string {
	if c.UpdateCols != nil {
		return c.UpdateCols
	}
	keys := make(map[string]bool, len(c.ConflictKeys))
	for _, k := range c.ConflictKeys {
		keys[k] = true
	}
	var cols []string
	for _, col := range c.Columns {
		if !keys[col] {
			cols = append(cols, col)
		}
	}
	return cols
}

// createSQL builds the staging-table DDL. ON COMMIT DROP ties its lifetime
// to the surrounding transaction.
func (c UpsertConfig) createSQL() string {
	return fmt.Sprintf(
		"CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP",
		pgx.Identifier{c.tempName()}.Sanitize(),
		sanitizeTable(c.Table),
	)
}

// mergeSQL builds the INSERT ... ON CONFLICT DO UPDATE that folds the staged
// rows into the target table.
func (c UpsertConfig) mergeSQL() string {
	cols := quoteAndJoin(c.Columns)
	set := make([]string, 0, len(c.Columns))
	for _, col := range c.updateColumns() {
		q := pgx.Identifier{col}.Sanitize()
		set = append(set, q+" = EXCLUDED."+q)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (%s) DO UPDATE SET %s",
		sanitizeTable(c.Table),
		cols,
		cols,
		pgx.Identifier{c.tempName()}.Sanitize(),
		quoteAndJoin(c.ConflictKeys),
		strings.Join(set, ", "),
	)
}

// BulkUpsert stages rows through a temp table with COPY, then merges them into
// the target with a single INSERT ... ON CONFLICT. Returns rows affected by
// the merge.
func BulkUpsert(ctx context.Context, pool Pool, cfg UpsertConfig, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := cfg.validate(); err != nil {
		return 0, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: upsert: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, cfg.createSQL()); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: create temp table for %s", cfg.Table)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{cfg.tempName()}, cfg.Columns, pgx.CopyFromRows(rows)); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: COPY into temp table for %s", cfg.Table)
	}

	tag, err := tx.Exec(ctx, cfg.mergeSQL())
	if err != nil {
		return 0, eris.Wrapf(err, "db: upsert: INSERT ON CONFLICT for %s", cfg.Table)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: upsert: commit tx")
	}
	return tag.RowsAffected(), nil
}

// sanitizeTable handles schema-qualified table names like "prospect.businesses".
func sanitizeTable(table string) string {
	parts := strings.SplitN(table, ".", 2)
	if len(parts) == 2 {
		return pgx.Identifier{parts[0], parts[1]}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}

func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
