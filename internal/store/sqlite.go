package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/pantrylens/pantry-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
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
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS inventory_items (
	id                   TEXT PRIMARY KEY,
	user_id              TEXT NOT NULL,
	canonical_name       TEXT NOT NULL,
	display_name         TEXT NOT NULL,
	quantity             REAL,
	unit                 TEXT NOT NULL DEFAULT '',
	provenance           TEXT NOT NULL,
	status               TEXT NOT NULL DEFAULT 'available',
	needs_reconciliation INTEGER NOT NULL DEFAULT 0,
	reconcile_notes      TEXT NOT NULL DEFAULT '[]',
	created_at           DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at           DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_active
	ON inventory_items(user_id, canonical_name) WHERE status = 'available';
CREATE INDEX IF NOT EXISTS idx_inventory_user ON inventory_items(user_id);

CREATE TABLE IF NOT EXISTS applied_detections (
	detection_id   TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	canonical_name TEXT NOT NULL,
	applied_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS corrections (
	user_id  TEXT NOT NULL,
	detected TEXT NOT NULL,
	chosen   TEXT NOT NULL,
	count    INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, detected, chosen)
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteItemColumns = `id, user_id, canonical_name, display_name, quantity, unit, provenance, status, needs_reconciliation, reconcile_notes, created_at, updated_at`

func (s *SQLiteStore) GetItem(ctx context.Context, userID, canonicalName string) (*model.InventoryItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteItemColumns+` FROM inventory_items
		 WHERE user_id = ? AND canonical_name = ? AND status = 'available'`,
		userID, canonicalName,
	)
	item, err := scanSQLiteItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get item %s", canonicalName)
	}
	return item, nil
}

func (s *SQLiteStore) ListInventory(ctx context.Context, userID string) ([]model.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteItemColumns+` FROM inventory_items
		 WHERE user_id = ? AND status = 'available' ORDER BY canonical_name`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list inventory")
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		item, err := scanSQLiteItem(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan item")
		}
		items = append(items, *item)
	}
	return items, eris.Wrap(rows.Err(), "sqlite: iterate inventory")
}

func (s *SQLiteStore) PutItem(ctx context.Context, item *model.InventoryItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	noteList := item.ReconcileNotes
	if noteList == nil {
		noteList = []string{}
	}
	notes, err := json.Marshal(noteList)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal notes")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO inventory_items (`+sqliteItemColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, canonical_name) WHERE status = 'available' DO UPDATE SET
			display_name = excluded.display_name,
			quantity = excluded.quantity,
			unit = excluded.unit,
			provenance = excluded.provenance,
			needs_reconciliation = excluded.needs_reconciliation,
			reconcile_notes = excluded.reconcile_notes,
			updated_at = excluded.updated_at`,
		item.ID, item.UserID, item.CanonicalName, item.DisplayName,
		nullableFloat(item.Quantity), string(item.Unit), string(item.Provenance), string(item.Status),
		boolToInt(item.NeedsReconciliation), string(notes), item.CreatedAt, item.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: put item %s", item.CanonicalName)
}

func (s *SQLiteStore) DeleteItem(ctx context.Context, userID, canonicalName string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM inventory_items WHERE user_id = ? AND canonical_name = ? AND status = 'available'`,
		userID, canonicalName,
	)
	return eris.Wrapf(err, "sqlite: delete item %s", canonicalName)
}

// UpsertScanItem creates or increments the active item for a canonical
// name. The increment happens in the upsert statement itself; the
// quantity is only added when the stored unit matches the delta's unit,
// so incompatible units are never silently summed.
func (s *SQLiteStore) UpsertScanItem(ctx context.Context, userID string, delta ScanDelta) (*model.InventoryItem, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO inventory_items (id, user_id, canonical_name, display_name, quantity, unit, provenance, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 'scan', 'available', ?, ?)
		 ON CONFLICT(user_id, canonical_name) WHERE status = 'available' DO UPDATE SET
			quantity = CASE
				WHEN excluded.quantity IS NOT NULL AND inventory_items.unit = excluded.unit
					THEN COALESCE(inventory_items.quantity, 0) + excluded.quantity
				ELSE inventory_items.quantity
			END,
			updated_at = excluded.updated_at`,
		uuid.New().String(), userID, delta.CanonicalName, delta.DisplayName,
		nullableFloat(delta.Quantity), string(delta.Unit), now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: upsert scan item %s", delta.CanonicalName)
	}
	return s.GetItem(ctx, userID, delta.CanonicalName)
}

func (s *SQLiteStore) AppendReconcileNote(ctx context.Context, userID, canonicalName, note string) error {
	noteJSON, err := json.Marshal(note)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal note")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE inventory_items
		 SET reconcile_notes = json_insert(reconcile_notes, '$[#]', json(?)),
			 needs_reconciliation = 1,
			 updated_at = ?
		 WHERE user_id = ? AND canonical_name = ? AND status = 'available'`,
		string(noteJSON), time.Now().UTC(), userID, canonicalName,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: append reconcile note %s", canonicalName)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: no active item %s for reconcile note", canonicalName)
	}
	return nil
}

func (s *SQLiteStore) ClaimDetection(ctx context.Context, detectionID, userID, canonicalName string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO applied_detections (detection_id, user_id, canonical_name, applied_at)
		 VALUES (?, ?, ?, ?) ON CONFLICT(detection_id) DO NOTHING`,
		detectionID, userID, canonicalName, time.Now().UTC(),
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: claim detection %s", detectionID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}

func (s *SQLiteStore) ReleaseDetection(ctx context.Context, detectionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM applied_detections WHERE detection_id = ?`, detectionID,
	)
	return eris.Wrapf(err, "sqlite: release detection %s", detectionID)
}

func (s *SQLiteStore) IncrementCorrection(ctx context.Context, userID, detected, chosen string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO corrections (user_id, detected, chosen, count) VALUES (?, ?, ?, 1)
		 ON CONFLICT(user_id, detected, chosen) DO UPDATE SET count = count + 1`,
		userID, detected, chosen,
	)
	return eris.Wrapf(err, "sqlite: increment correction %s->%s", detected, chosen)
}

func (s *SQLiteStore) CorrectionCounts(ctx context.Context, userID, detected string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chosen, count FROM corrections WHERE user_id = ? AND detected = ?`,
		userID, detected,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: correction counts")
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var chosen string
		var count int
		if err := rows.Scan(&chosen, &count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan correction")
		}
		counts[chosen] = count
	}
	return counts, eris.Wrap(rows.Err(), "sqlite: iterate corrections")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteItem(row rowScanner) (*model.InventoryItem, error) {
	var item model.InventoryItem
	var quantity sql.NullFloat64
	var unit, provenance, status, notesJSON string
	var needsReconciliation int

	err := row.Scan(
		&item.ID, &item.UserID, &item.CanonicalName, &item.DisplayName,
		&quantity, &unit, &provenance, &status,
		&needsReconciliation, &notesJSON, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if quantity.Valid {
		item.Quantity = &quantity.Float64
	}
	item.Unit = model.Unit(unit)
	item.Provenance = model.Provenance(provenance)
	item.Status = model.ItemStatus(status)
	item.NeedsReconciliation = needsReconciliation != 0
	if err := json.Unmarshal([]byte(notesJSON), &item.ReconcileNotes); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal notes")
	}
	return &item, nil
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
