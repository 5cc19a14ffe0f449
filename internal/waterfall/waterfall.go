// Package waterfall resolves an inventory snapshot through an ordered
// cascade of sources. The primary source is the store; when it is
// unreachable the chain falls through to the last local snapshot file,
// and finally to an empty baseline so read-only commands keep working
// offline.
package waterfall

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pantrylens/pantry-cli/internal/model"
)

// Snapshot is a resolved inventory view with its provenance.
type Snapshot struct {
	Source string                `json:"source"`
	Stale  bool                  `json:"stale"`
	AsOf   time.Time             `json:"as_of"`
	Items  []model.InventoryItem `json:"items"`
}

// Resolver is one source in the cascade.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, userID string) (*Snapshot, error)
}

// Chain tries resolvers in order and returns the first snapshot.
type Chain struct {
	resolvers []Resolver
}

// NewChain creates a Chain. Order matters: earlier resolvers are
// authoritative, later ones are fallbacks.
func NewChain(resolvers ...Resolver) *Chain {
	return &Chain{resolvers: resolvers}
}

// Resolve walks the cascade. A resolver error is logged and the next
// resolver is tried; only exhaustion of the whole chain is an error.
func (c *Chain) Resolve(ctx context.Context, userID string) (*Snapshot, error) {
	for _, r := range c.resolvers {
		snap, err := r.Resolve(ctx, userID)
		if err != nil {
			zap.L().Warn("waterfall: resolver failed, falling through",
				zap.String("resolver", r.Name()),
				zap.Error(err),
			)
			continue
		}
		if snap == nil {
			continue
		}
		snap.Source = r.Name()
		return snap, nil
	}
	return nil, eris.New("waterfall: all resolvers exhausted")
}
