package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgres(mock), mock
}

func hexagonRows() *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"hexagon_id", "businesses_fetched", "no_businesses_found", "created_at", "updated_at",
	}).AddRow("8828308281fffff", true, false, now, now)
}

func TestGetHexagon(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT hexagon_id, businesses_fetched").
		WithArgs("8828308281fffff").
		WillReturnRows(hexagonRows())

	hex, err := store.GetHexagon(context.Background(), "8828308281fffff")
	require.NoError(t, err)
	require.NotNil(t, hex)
	assert.Equal(t, "8828308281fffff", hex.HexagonID)
	assert.True(t, hex.BusinessesFetched)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetHexagon_Absent(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT hexagon_id, businesses_fetched").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	hex, err := store.GetHexagon(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, hex)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateHexagon(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO hexagons").
		WithArgs("8828308281fffff", false, false).
		WillReturnRows(hexagonRows())

	hex, err := store.CreateHexagon(context.Background(), model.Hexagon{HexagonID: "8828308281fffff"})
	require.NoError(t, err)
	assert.Equal(t, "8828308281fffff", hex.HexagonID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateHexagonStatus(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE hexagons SET").
		WithArgs("8828308281fffff", true, true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := store.UpdateHexagonStatus(context.Background(), "8828308281fffff", true, true)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListHexagonIDs(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT hexagon_id, no_businesses_found FROM hexagons").
		WillReturnRows(pgxmock.NewRows([]string{"hexagon_id", "no_businesses_found"}).
			AddRow("aaa", false).
			AddRow("bbb", true).
			AddRow("ccc", false))

	fetched, empty, err := store.ListHexagonIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"aaa", "ccc"}, fetched)
	assert.Equal(t, []string{"bbb"}, empty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func businessRow() *pgxmock.Rows {
	now := time.Now()
	rating := 4.2
	total := 31
	return pgxmock.NewRows([]string{
		"place_id", "name", "formatted_address", "formatted_phone_number",
		"website", "rating", "user_ratings_total", "types", "business_status",
		"photos", "icon", "url", "price_level", "opening_hours", "reviews",
		"lat", "lng", "hexagon_id", "status", "created_at", "updated_at",
	}).AddRow(
		"p1", "Cafe One", "1 Main St", "555-0100",
		"https://example.com", &rating, &total, []byte(`["cafe"]`), "OPERATIONAL",
		[]byte(`["ref1"]`), "", "", nil, []byte(`{"open_now":true}`),
		[]byte(`[{"rating":5,"author_name":"Ann","text":"Great"}]`),
		40.75, -73.98, "8828308281fffff", "contacted", now, now,
	)
}

func TestGetBusiness(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT place_id, name").
		WithArgs("p1").
		WillReturnRows(businessRow())

	b, err := store.GetBusiness(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "Cafe One", b.Name)
	assert.Equal(t, []string{"cafe"}, b.Types)
	assert.Equal(t, model.StatusContacted, b.Status)
	require.NotNil(t, b.OpeningHours)
	require.NotNil(t, b.OpeningHours.OpenNow)
	assert.True(t, *b.OpeningHours.OpenNow)
	require.Len(t, b.Reviews, 1)
	assert.Equal(t, "Ann", b.Reviews[0].AuthorName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBusiness_Absent(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT place_id, name").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"place_id"}))

	b, err := store.GetBusiness(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, b)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBusinessesByHexagon(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT place_id, name").
		WithArgs("8828308281fffff").
		WillReturnRows(businessRow())

	businesses, err := store.GetBusinessesByHexagon(context.Background(), "8828308281fffff")
	require.NoError(t, err)
	require.Len(t, businesses, 1)
	assert.Equal(t, "p1", businesses[0].PlaceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBusinessStatus(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE businesses SET status").
		WithArgs("p1", "converted").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := store.UpdateBusinessStatus(context.Background(), "p1", model.StatusConverted)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBusinessStatus_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE businesses SET status").
		WithArgs("missing", "contacted").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := store.UpdateBusinessStatus(context.Background(), "missing", model.StatusContacted)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchRunLifecycle(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO fetch_runs").
		WithArgs("8828308281fffff").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("run-1"))
	mock.ExpectExec("UPDATE fetch_runs SET").
		WithArgs("run-1", 12, 3, 0.147).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	id, err := store.CreateFetchRun(context.Background(), "8828308281fffff")
	require.NoError(t, err)
	assert.Equal(t, "run-1", id)

	err = store.CompleteFetchRun(context.Background(), "run-1", 12, 3, 0.147)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertBusinesses_Empty(t *testing.T) {
	store, _ := newMockStore(t)

	n, err := store.UpsertBusinesses(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestUpsertBusinesses_PreservesStatusColumn(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TEMP TABLE").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_businesses"}, businessColumns).
		WillReturnResult(1)
	// The conflict update must not touch status.
	mock.ExpectExec(`ON CONFLICT \("place_id"\) DO UPDATE SET "name" = EXCLUDED`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := store.UpsertBusinesses(context.Background(), []model.Business{
		{PlaceID: "p1", Name: "Cafe One", HexagonID: "8828308281fffff"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
