// Package store persists inventory, applied-detection markers, and
// correction counters behind a driver-agnostic interface with SQLite
// and Postgres implementations.
package store

import (
	"context"

	"github.com/pantrylens/pantry-cli/internal/model"
)

// ScanDelta is the quantity contribution of one confirmed detection.
// When an item already exists the caller converts Quantity into the
// stored unit before upserting; the increment is applied atomically in
// SQL so concurrent confirmations never lose an update.
type ScanDelta struct {
	CanonicalName string
	DisplayName   string
	Quantity      *float64
	Unit          model.Unit
}

// Store defines the persistence interface for the reconciliation engine.
type Store interface {
	// Inventory
	GetItem(ctx context.Context, userID, canonicalName string) (*model.InventoryItem, error)
	ListInventory(ctx context.Context, userID string) ([]model.InventoryItem, error)
	PutItem(ctx context.Context, item *model.InventoryItem) error
	DeleteItem(ctx context.Context, userID, canonicalName string) error
	UpsertScanItem(ctx context.Context, userID string, delta ScanDelta) (*model.InventoryItem, error)
	AppendReconcileNote(ctx context.Context, userID, canonicalName, note string) error

	// Idempotence markers. ClaimDetection returns false when the
	// detection id was already applied; ReleaseDetection undoes a claim
	// after a failed mutation so the batch can be retried.
	ClaimDetection(ctx context.Context, detectionID, userID, canonicalName string) (bool, error)
	ReleaseDetection(ctx context.Context, detectionID string) error

	// Correction-frequency signal for suggestion ranking.
	IncrementCorrection(ctx context.Context, userID, detected, chosen string) error
	CorrectionCounts(ctx context.Context, userID, detected string) (map[string]int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
