package waterfall

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"

	"github.com/pantrylens/pantry-cli/internal/model"
	"github.com/pantrylens/pantry-cli/internal/store"
)

// StoreResolver reads the live inventory from the store.
type StoreResolver struct {
	store store.Store
}

// NewStoreResolver creates a StoreResolver.
func NewStoreResolver(st store.Store) *StoreResolver {
	return &StoreResolver{store: st}
}

func (r *StoreResolver) Name() string { return "store" }

func (r *StoreResolver) Resolve(ctx context.Context, userID string) (*Snapshot, error) {
	items, err := r.store.ListInventory(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Snapshot{AsOf: time.Now().UTC(), Items: items}, nil
}

// snapshotFile is the on-disk layout of the local snapshot cache.
type snapshotFile struct {
	SavedAt time.Time                        `json:"saved_at"`
	Users   map[string][]model.InventoryItem `json:"users"`
}

// FileResolver serves the last saved inventory snapshot from a local
// JSON file. Snapshots it serves are marked stale.
type FileResolver struct {
	path string
}

// NewFileResolver creates a FileResolver for a snapshot path.
func NewFileResolver(path string) *FileResolver {
	return &FileResolver{path: path}
}

func (r *FileResolver) Name() string { return "snapshot-file" }

func (r *FileResolver) Resolve(_ context.Context, userID string) (*Snapshot, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, eris.Wrapf(err, "waterfall: read snapshot %s", r.path)
	}
	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrapf(err, "waterfall: parse snapshot %s", r.path)
	}
	items, ok := file.Users[userID]
	if !ok {
		return nil, eris.Errorf("waterfall: no snapshot for user %s", userID)
	}
	return &Snapshot{Stale: true, AsOf: file.SavedAt, Items: items}, nil
}

// Save writes a user's inventory into the snapshot file, preserving
// other users' entries.
func (r *FileResolver) Save(userID string, items []model.InventoryItem) error {
	file := snapshotFile{Users: make(map[string][]model.InventoryItem)}
	if data, err := os.ReadFile(r.path); err == nil {
		// Best effort: a corrupt snapshot is overwritten, not fatal.
		_ = json.Unmarshal(data, &file)
		if file.Users == nil {
			file.Users = make(map[string][]model.InventoryItem)
		}
	}
	file.SavedAt = time.Now().UTC()
	file.Users[userID] = items

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return eris.Wrap(err, "waterfall: marshal snapshot")
	}
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "waterfall: create snapshot dir %s", dir)
		}
	}
	return eris.Wrapf(os.WriteFile(r.path, data, 0o644), "waterfall: write snapshot %s", r.path)
}

// EmptyResolver terminates the cascade with an empty, stale inventory.
type EmptyResolver struct{}

func (EmptyResolver) Name() string { return "empty-baseline" }

func (EmptyResolver) Resolve(context.Context, string) (*Snapshot, error) {
	return &Snapshot{Stale: true, AsOf: time.Now().UTC()}, nil
}
