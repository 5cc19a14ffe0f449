package model

import "time"

// Provenance records how an inventory item came to exist.
type Provenance string

const (
	ProvenanceScan      Provenance = "scan"
	ProvenanceManual    Provenance = "manual"
	ProvenanceDeduction Provenance = "recipe-deduction"
)

// ItemStatus is the lifecycle state of an inventory item.
type ItemStatus string

const (
	StatusAvailable ItemStatus = "available"
	StatusUsed      ItemStatus = "used"
	StatusExpired   ItemStatus = "expired"
)

// InventoryItem is a persisted inventory record. At most one available
// item exists per (user, canonical name); confirming a second detection
// of the same ingredient increments the existing row.
type InventoryItem struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	CanonicalName string     `json:"canonical_name"`
	DisplayName   string     `json:"display_name"`
	Quantity      *float64   `json:"quantity,omitempty"`
	Unit          Unit       `json:"unit,omitempty"`
	Provenance    Provenance `json:"provenance"`
	Status        ItemStatus `json:"status"`

	// NeedsReconciliation is set when a confirmed quantity could not be
	// merged because its unit is incompatible with the stored one. The
	// unmerged amount is kept in ReconcileNotes for manual resolution.
	NeedsReconciliation bool     `json:"needs_reconciliation,omitempty"`
	ReconcileNotes      []string `json:"reconcile_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
