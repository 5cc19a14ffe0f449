package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/pantrylens/pantry-cli/internal/canonical"
	"github.com/pantrylens/pantry-cli/internal/classify"
	"github.com/pantrylens/pantry-cli/internal/confirm"
	"github.com/pantrylens/pantry-cli/internal/store"
	"github.com/pantrylens/pantry-cli/internal/sufficiency"
	"github.com/pantrylens/pantry-cli/internal/suggest"
	"github.com/pantrylens/pantry-cli/internal/waterfall"
)

// engine bundles the wired components behind the CLI commands.
type engine struct {
	store      store.Store
	registry   *canonical.Registry
	classifier *classify.Classifier
	workflow   *confirm.Workflow
	checker    *sufficiency.Checker
	snapshots  *waterfall.FileResolver
	inventory  *waterfall.Chain
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.SQLitePath)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initEngine(ctx context.Context) (*engine, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}

	reg, err := canonical.LoadWithFloor(cfg.Canonical.SimilarityFloor)
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "load ingredient reference")
	}

	suggester := suggest.New(reg, st).WithFuzzyThreshold(cfg.Suggest.FuzzyThreshold)
	classifier := classify.New(reg, suggester).WithMaxConcurrency(cfg.Classify.MaxConcurrency)
	snapshots := waterfall.NewFileResolver(cfg.Sufficiency.SnapshotPath)

	return &engine{
		store:      st,
		registry:   reg,
		classifier: classifier,
		workflow:   confirm.New(st, reg),
		checker:    sufficiency.New(st, reg),
		snapshots:  snapshots,
		inventory: waterfall.NewChain(
			waterfall.NewStoreResolver(st),
			snapshots,
			waterfall.EmptyResolver{},
		),
	}, nil
}

func (e *engine) Close() {
	e.store.Close() //nolint:errcheck
}
