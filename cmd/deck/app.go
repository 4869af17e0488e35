package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/baiirun/deck/internal/config"
	"github.com/baiirun/deck/internal/db"
	"github.com/baiirun/deck/internal/logging"
	"github.com/baiirun/deck/internal/model"
	"github.com/baiirun/deck/internal/store"
)

// app is everything a command needs: the authoritative store, the repository
// it is flushed to, and the ambient config and logger.
type app struct {
	cfg   *config.Config
	log   *logging.Logger
	repo  db.Repository
	store *store.Store

	unsubscribe func()
	mu          sync.Mutex
	saveErr     error
}

// openApp loads config, opens the configured repository and seeds a store
// from the last snapshot. Every successful mutation is saved back.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	repo, err := openRepository(ctx, cfg.Storage)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	a, err := newApp(ctx, cfg, logger, repo)
	if err != nil {
		_ = repo.Close()
		_ = logger.Close()
		return nil, err
	}
	return a, nil
}

func openRepository(ctx context.Context, cfg config.StorageConfig) (db.Repository, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return db.NewMemory(), nil
	case config.DriverPostgres:
		pg, err := db.OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return pg, nil
	default:
		database, err := db.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := database.Init(); err != nil {
			_ = database.Close()
			return nil, err
		}
		return database, nil
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger *logging.Logger, repo db.Repository, opts ...store.Option) (*app, error) {
	snap, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	opts = append([]store.Option{store.WithSnapshot(snap), store.WithLogger(logger.Logger)}, opts...)

	a := &app{cfg: cfg, log: logger, repo: repo, store: store.New(opts...)}
	a.unsubscribe = a.store.Subscribe(func(s model.Snapshot) {
		err := repo.Save(ctx, s)
		if err != nil {
			logger.Error("snapshot save failed", "err", err)
		}
		a.mu.Lock()
		a.saveErr = errors.Join(a.saveErr, err)
		a.mu.Unlock()
	})
	logger.Debug("app opened", "driver", cfg.Storage.Driver, "people", len(snap.People), "tasks", len(snap.Tasks))
	return a, nil
}

// persistErr reports any snapshot save that failed since the app opened.
func (a *app) persistErr() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.saveErr != nil {
		return fmt.Errorf("failed to save changes: %w", a.saveErr)
	}
	return nil
}

func (a *app) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	err := a.repo.Close()
	return errors.Join(err, a.log.Close())
}

// withApp opens the app, runs fn and closes it, surfacing save failures.
func withApp(ctx context.Context, fn func(a *app) error) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := fn(a); err != nil {
		return err
	}
	return a.persistErr()
}
