package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgres_GetItem_Missing(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .+ FROM inventory_items`).
		WithArgs("u1", "chicken").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "canonical_name", "display_name", "quantity", "unit",
			"provenance", "status", "needs_reconciliation", "reconcile_notes",
			"created_at", "updated_at",
		}))

	item, err := st.GetItem(context.Background(), "u1", "chicken")
	require.NoError(t, err)
	assert.Nil(t, item)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetItem_Found(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	qty := 500.0
	mock.ExpectQuery(`SELECT .+ FROM inventory_items`).
		WithArgs("u1", "chicken").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "canonical_name", "display_name", "quantity", "unit",
			"provenance", "status", "needs_reconciliation", "reconcile_notes",
			"created_at", "updated_at",
		}).AddRow(
			"id-1", "u1", "chicken", "Chicken", &qty, "grams",
			"scan", "available", false, []string{}, now, now,
		))

	item, err := st.GetItem(context.Background(), "u1", "chicken")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Chicken", item.DisplayName)
	require.NotNil(t, item.Quantity)
	assert.Equal(t, 500.0, *item.Quantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ClaimDetection(t *testing.T) {
	st, mock := newMockPostgresStore(t)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO applied_detections`).
		WithArgs("det-1", "u1", "onion", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO applied_detections`).
		WithArgs("det-1", "u1", "onion", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	claimed, err := st.ClaimDetection(ctx, "det-1", "u1", "onion")
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = st.ClaimDetection(ctx, "det-1", "u1", "onion")
	require.NoError(t, err)
	assert.False(t, claimed, "conflicting insert affects no rows")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_AppendReconcileNote_NoItem(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE inventory_items`).
		WithArgs("note", pgxmock.AnyArg(), "u1", "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := st.AppendReconcileNote(context.Background(), "u1", "ghost", "note")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CorrectionCounts(t *testing.T) {
	st, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT chosen, count FROM corrections`).
		WithArgs("u1", "kale").
		WillReturnRows(pgxmock.NewRows([]string{"chosen", "count"}).
			AddRow("spinach", 2).
			AddRow("chard", 1))

	counts, err := st.CorrectionCounts(context.Background(), "u1", "kale")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"spinach": 2, "chard": 1}, counts)
	require.NoError(t, mock.ExpectationsWereMet())
}
