// Package app wires configuration, persistence and the stores into one
// process-wide object.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"nutriplan/internal/blob"
	"nutriplan/internal/config"
	"nutriplan/internal/core"
	"nutriplan/internal/export"
	"nutriplan/internal/importer"
	"nutriplan/internal/logging"
	"nutriplan/internal/persistence"
)

// App owns the persistence adapter and both stores for the life of the process.
type App struct {
	cfg     *config.Config
	logger  core.Logger
	adapter persistence.Adapter

	FoodLog *core.FoodLogStore
	Grocery *core.GroceryStore

	blobOnce sync.Once
	blobs    blob.Store
	blobErr  error
}

// Open validates cfg, opens the configured backend and hydrates both stores
// concurrently. Extra options are applied to both stores after the ones
// derived from cfg.
func Open(ctx context.Context, cfg *config.Config, logger core.Logger, opts ...core.Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	adapter, err := persistence.Open(ctx, cfg.Persistence())
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	storeOpts := append([]core.Option{
		core.WithLogger(logger),
		core.WithSampleData(cfg.SampleData),
		core.WithPersistTimeout(cfg.PersistTimeout()),
	}, opts...)

	a := &App{cfg: cfg, logger: logger, adapter: adapter}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := core.NewFoodLogStore(gctx, adapter, storeOpts...)
		a.FoodLog = s
		return err
	})
	g.Go(func() error {
		s, err := core.NewGroceryStore(gctx, adapter, storeOpts...)
		a.Grocery = s
		return err
	})
	if err := g.Wait(); err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("hydrate stores: %w", err)
	}
	logger.Info("stores ready", "driver", adapter.Driver(), "days", len(a.FoodLog.Dates()), "grocery_items", len(a.Grocery.Items()))
	return a, nil
}

// Config returns the configuration the app was opened with.
func (a *App) Config() *config.Config { return a.cfg }

// Driver reports the persistence backend in use.
func (a *App) Driver() string { return a.adapter.Driver() }

// Flush waits until both stores have written their latest snapshots.
func (a *App) Flush(ctx context.Context) error {
	return errors.Join(a.FoodLog.Flush(ctx), a.Grocery.Flush(ctx))
}

// Close flushes and stops both stores, then closes the backend.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.FoodLog != nil {
		errs = append(errs, a.FoodLog.Close(ctx))
	}
	if a.Grocery != nil {
		errs = append(errs, a.Grocery.Close(ctx))
	}
	errs = append(errs, a.adapter.Close())
	return errors.Join(errs...)
}

// Blobs opens the configured blob store on first use.
func (a *App) Blobs(ctx context.Context) (blob.Store, error) {
	a.blobOnce.Do(func() {
		a.blobs, a.blobErr = blob.Open(ctx, a.cfg.BlobStore())
	})
	return a.blobs, a.blobErr
}

// Publisher returns an export publisher over the configured blob store.
func (a *App) Publisher(ctx context.Context) (*export.Publisher, error) {
	bs, err := a.Blobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	return export.NewPublisher(bs, a.cfg.Export.Prefix, a.cfg.PresignExpiry()), nil
}

// Watcher returns a recipe watcher feeding the grocery list from the
// configured inbox directory.
func (a *App) Watcher() (*importer.Watcher, error) {
	return importer.NewWatcher(a.cfg.Watch.Dir, a.Grocery, a.logger, a.cfg.WatchDebounce())
}
