package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrylens/pantry-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func floatPtr(f float64) *float64 { return &f }

// --- Inventory ---

func TestSQLite_GetItem_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	item, err := st.GetItem(context.Background(), "u1", "chicken")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestSQLite_PutAndGetItem(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	err := st.PutItem(ctx, &model.InventoryItem{
		UserID:        "u1",
		CanonicalName: "chicken",
		DisplayName:   "Chicken",
		Quantity:      floatPtr(500),
		Unit:          model.UnitGram,
		Provenance:    model.ProvenanceManual,
		Status:        model.StatusAvailable,
	})
	require.NoError(t, err)

	item, err := st.GetItem(ctx, "u1", "chicken")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Chicken", item.DisplayName)
	require.NotNil(t, item.Quantity)
	assert.Equal(t, 500.0, *item.Quantity)
	assert.Equal(t, model.UnitGram, item.Unit)
	assert.Equal(t, model.ProvenanceManual, item.Provenance)
	assert.False(t, item.NeedsReconciliation)
}

func TestSQLite_PutItem_NilQuantity(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	err := st.PutItem(ctx, &model.InventoryItem{
		UserID:        "u1",
		CanonicalName: "basil",
		DisplayName:   "Basil",
		Provenance:    model.ProvenanceScan,
		Status:        model.StatusAvailable,
	})
	require.NoError(t, err)

	item, err := st.GetItem(ctx, "u1", "basil")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Nil(t, item.Quantity)
}

func TestSQLite_ListInventory_ScopedToUser(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, name := range []string{"rice", "milk"} {
		require.NoError(t, st.PutItem(ctx, &model.InventoryItem{
			UserID: "u1", CanonicalName: name, DisplayName: name,
			Provenance: model.ProvenanceManual, Status: model.StatusAvailable,
		}))
	}
	require.NoError(t, st.PutItem(ctx, &model.InventoryItem{
		UserID: "u2", CanonicalName: "kale", DisplayName: "Kale",
		Provenance: model.ProvenanceManual, Status: model.StatusAvailable,
	}))

	items, err := st.ListInventory(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "milk", items[0].CanonicalName, "sorted by canonical name")
	assert.Equal(t, "rice", items[1].CanonicalName)
}

func TestSQLite_DeleteItem(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.PutItem(ctx, &model.InventoryItem{
		UserID: "u1", CanonicalName: "rice", DisplayName: "Rice",
		Provenance: model.ProvenanceManual, Status: model.StatusAvailable,
	}))
	require.NoError(t, st.DeleteItem(ctx, "u1", "rice"))

	item, err := st.GetItem(ctx, "u1", "rice")
	require.NoError(t, err)
	assert.Nil(t, item)
}

// --- Scan upsert ---

func TestSQLite_UpsertScanItem_CreatesThenIncrements(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	delta := ScanDelta{CanonicalName: "onion", DisplayName: "Onion", Quantity: floatPtr(3), Unit: model.UnitPiece}

	item, err := st.UpsertScanItem(ctx, "u1", delta)
	require.NoError(t, err)
	require.NotNil(t, item)
	require.NotNil(t, item.Quantity)
	assert.Equal(t, 3.0, *item.Quantity)
	assert.Equal(t, model.ProvenanceScan, item.Provenance)

	item, err = st.UpsertScanItem(ctx, "u1", delta)
	require.NoError(t, err)
	require.NotNil(t, item.Quantity)
	assert.Equal(t, 6.0, *item.Quantity, "second confirmation increments")
}

func TestSQLite_UpsertScanItem_UnitMismatchDoesNotSum(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.UpsertScanItem(ctx, "u1", ScanDelta{
		CanonicalName: "onion", DisplayName: "Onion", Quantity: floatPtr(500), Unit: model.UnitGram,
	})
	require.NoError(t, err)

	item, err := st.UpsertScanItem(ctx, "u1", ScanDelta{
		CanonicalName: "onion", DisplayName: "Onion", Quantity: floatPtr(3), Unit: model.UnitPiece,
	})
	require.NoError(t, err)
	require.NotNil(t, item.Quantity)
	assert.Equal(t, 500.0, *item.Quantity, "incompatible units are never summed")
	assert.Equal(t, model.UnitGram, item.Unit)
}

func TestSQLite_AppendReconcileNote(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.UpsertScanItem(ctx, "u1", ScanDelta{
		CanonicalName: "onion", DisplayName: "Onion", Quantity: floatPtr(500), Unit: model.UnitGram,
	})
	require.NoError(t, err)

	require.NoError(t, st.AppendReconcileNote(ctx, "u1", "onion", "+3 pieces (scan abc)"))
	require.NoError(t, st.AppendReconcileNote(ctx, "u1", "onion", "+1 pieces (scan def)"))

	item, err := st.GetItem(ctx, "u1", "onion")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.True(t, item.NeedsReconciliation)
	assert.Equal(t, []string{"+3 pieces (scan abc)", "+1 pieces (scan def)"}, item.ReconcileNotes)
}

func TestSQLite_AppendReconcileNote_NoItem(t *testing.T) {
	st := newTestSQLiteStore(t)
	err := st.AppendReconcileNote(context.Background(), "u1", "ghost", "note")
	require.Error(t, err)
}

// --- Idempotence markers ---

func TestSQLite_ClaimDetection_OnlyOnce(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	claimed, err := st.ClaimDetection(ctx, "det-1", "u1", "onion")
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = st.ClaimDetection(ctx, "det-1", "u1", "onion")
	require.NoError(t, err)
	assert.False(t, claimed, "second claim of the same detection id fails")
}

func TestSQLite_ReleaseDetection_AllowsReclaim(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	claimed, err := st.ClaimDetection(ctx, "det-2", "u1", "rice")
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, st.ReleaseDetection(ctx, "det-2"))

	claimed, err = st.ClaimDetection(ctx, "det-2", "u1", "rice")
	require.NoError(t, err)
	assert.True(t, claimed)
}

// --- Corrections ---

func TestSQLite_Corrections_Accumulate(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.IncrementCorrection(ctx, "u1", "kale", "spinach"))
	require.NoError(t, st.IncrementCorrection(ctx, "u1", "kale", "spinach"))
	require.NoError(t, st.IncrementCorrection(ctx, "u1", "kale", "chard"))
	require.NoError(t, st.IncrementCorrection(ctx, "u2", "kale", "lettuce"))

	counts, err := st.CorrectionCounts(ctx, "u1", "kale")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"spinach": 2, "chard": 1}, counts)

	counts, err = st.CorrectionCounts(ctx, "u1", "onion")
	require.NoError(t, err)
	assert.Empty(t, counts)
}
