package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/pantrylens/pantry-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies
// it for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS inventory_items (
	id                   TEXT PRIMARY KEY,
	user_id              TEXT NOT NULL,
	canonical_name       TEXT NOT NULL,
	display_name         TEXT NOT NULL,
	quantity             DOUBLE PRECISION,
	unit                 TEXT NOT NULL DEFAULT '',
	provenance           TEXT NOT NULL,
	status               TEXT NOT NULL DEFAULT 'available',
	needs_reconciliation BOOLEAN NOT NULL DEFAULT FALSE,
	reconcile_notes      JSONB NOT NULL DEFAULT '[]',
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_active
	ON inventory_items(user_id, canonical_name) WHERE status = 'available';
CREATE INDEX IF NOT EXISTS idx_inventory_user ON inventory_items(user_id);

CREATE TABLE IF NOT EXISTS applied_detections (
	detection_id   TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	canonical_name TEXT NOT NULL,
	applied_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS corrections (
	user_id  TEXT NOT NULL,
	detected TEXT NOT NULL,
	chosen   TEXT NOT NULL,
	count    INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, detected, chosen)
);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const pgItemColumns = `id, user_id, canonical_name, display_name, quantity, unit, provenance, status, needs_reconciliation, reconcile_notes, created_at, updated_at`

func (s *PostgresStore) GetItem(ctx context.Context, userID, canonicalName string) (*model.InventoryItem, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgItemColumns+` FROM inventory_items
		 WHERE user_id = $1 AND canonical_name = $2 AND status = 'available'`,
		userID, canonicalName,
	)
	item, err := scanPostgresItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get item %s", canonicalName)
	}
	return item, nil
}

func (s *PostgresStore) ListInventory(ctx context.Context, userID string) ([]model.InventoryItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgItemColumns+` FROM inventory_items
		 WHERE user_id = $1 AND status = 'available' ORDER BY canonical_name`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list inventory")
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		item, err := scanPostgresItem(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan item")
		}
		items = append(items, *item)
	}
	return items, eris.Wrap(rows.Err(), "postgres: iterate inventory")
}

func (s *PostgresStore) PutItem(ctx context.Context, item *model.InventoryItem) error {
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
		return eris.Wrap(err, "postgres: marshal notes")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO inventory_items (`+pgItemColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (user_id, canonical_name) WHERE status = 'available' DO UPDATE SET
			display_name = EXCLUDED.display_name,
			quantity = EXCLUDED.quantity,
			unit = EXCLUDED.unit,
			provenance = EXCLUDED.provenance,
			needs_reconciliation = EXCLUDED.needs_reconciliation,
			reconcile_notes = EXCLUDED.reconcile_notes,
			updated_at = EXCLUDED.updated_at`,
		item.ID, item.UserID, item.CanonicalName, item.DisplayName,
		item.Quantity, string(item.Unit), string(item.Provenance), string(item.Status),
		item.NeedsReconciliation, notes, item.CreatedAt, item.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: put item %s", item.CanonicalName)
}

func (s *PostgresStore) DeleteItem(ctx context.Context, userID, canonicalName string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM inventory_items WHERE user_id = $1 AND canonical_name = $2 AND status = 'available'`,
		userID, canonicalName,
	)
	return eris.Wrapf(err, "postgres: delete item %s", canonicalName)
}

// UpsertScanItem creates or increments the active item for a canonical
// name. The increment is a single atomic statement: concurrent
// confirmations of the same ingredient serialize on the row and never
// lose an update. Quantities are only summed when the units match.
func (s *PostgresStore) UpsertScanItem(ctx context.Context, userID string, delta ScanDelta) (*model.InventoryItem, error) {
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO inventory_items (id, user_id, canonical_name, display_name, quantity, unit, provenance, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, 'scan', 'available', $7, $7)
		 ON CONFLICT (user_id, canonical_name) WHERE status = 'available' DO UPDATE SET
			quantity = CASE
				WHEN EXCLUDED.quantity IS NOT NULL AND inventory_items.unit = EXCLUDED.unit
					THEN COALESCE(inventory_items.quantity, 0) + EXCLUDED.quantity
				ELSE inventory_items.quantity
			END,
			updated_at = EXCLUDED.updated_at`,
		uuid.New().String(), userID, delta.CanonicalName, delta.DisplayName,
		delta.Quantity, string(delta.Unit), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert scan item %s", delta.CanonicalName)
	}
	return s.GetItem(ctx, userID, delta.CanonicalName)
}

func (s *PostgresStore) AppendReconcileNote(ctx context.Context, userID, canonicalName, note string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE inventory_items
		 SET reconcile_notes = reconcile_notes || to_jsonb($1::text),
			 needs_reconciliation = TRUE,
			 updated_at = $2
		 WHERE user_id = $3 AND canonical_name = $4 AND status = 'available'`,
		note, time.Now().UTC(), userID, canonicalName,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: append reconcile note %s", canonicalName)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: no active item %s for reconcile note", canonicalName)
	}
	return nil
}

func (s *PostgresStore) ClaimDetection(ctx context.Context, detectionID, userID, canonicalName string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO applied_detections (detection_id, user_id, canonical_name, applied_at)
		 VALUES ($1, $2, $3, $4) ON CONFLICT (detection_id) DO NOTHING`,
		detectionID, userID, canonicalName, time.Now().UTC(),
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: claim detection %s", detectionID)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) ReleaseDetection(ctx context.Context, detectionID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM applied_detections WHERE detection_id = $1`, detectionID,
	)
	return eris.Wrapf(err, "postgres: release detection %s", detectionID)
}

func (s *PostgresStore) IncrementCorrection(ctx context.Context, userID, detected, chosen string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO corrections (user_id, detected, chosen, count) VALUES ($1, $2, $3, 1)
		 ON CONFLICT (user_id, detected, chosen) DO UPDATE SET count = corrections.count + 1`,
		userID, detected, chosen,
	)
	return eris.Wrapf(err, "postgres: increment correction %s->%s", detected, chosen)
}

func (s *PostgresStore) CorrectionCounts(ctx context.Context, userID, detected string) (map[string]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT chosen, count FROM corrections WHERE user_id = $1 AND detected = $2`,
		userID, detected,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: correction counts")
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var chosen string
		var count int
		if err := rows.Scan(&chosen, &count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan correction")
		}
		counts[chosen] = count
	}
	return counts, eris.Wrap(rows.Err(), "postgres: iterate corrections")
}

func scanPostgresItem(row pgx.Row) (*model.InventoryItem, error) {
	var item model.InventoryItem
	var quantity *float64
	var unit, provenance, status string
	var notes []string

	err := row.Scan(
		&item.ID, &item.UserID, &item.CanonicalName, &item.DisplayName,
		&quantity, &unit, &provenance, &status,
		&item.NeedsReconciliation, &notes, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Quantity = quantity
	item.Unit = model.Unit(unit)
	item.Provenance = model.Provenance(provenance)
	item.Status = model.ItemStatus(status)
	item.ReconcileNotes = notes
	return &item, nil
}
