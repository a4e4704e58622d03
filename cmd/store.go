package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-id/internal/config"
	"github.com/kozaktomas/face-id/internal/identity"
	"github.com/kozaktomas/face-id/internal/identity/postgres"
)

// newStoreFromConfig creates a store with the dimension and distance metric
// of the configured embedding model.
func newStoreFromConfig(cfg *config.Config) *identity.Store {
	if cfg.Matching.Metric == "cosine" {
		return identity.NewStore(cfg.Matching.Dim, identity.WithDistanceFunc(identity.CosineDistance))
	}
	return identity.NewStore(cfg.Matching.Dim)
}

// openStore connects to the database, loads all persisted identities into a
// fresh store and returns both. CLI commands are short-lived processes, so
// the database is the only state that survives between them.
func openStore(cfg *config.Config) (*identity.Store, *postgres.Repository, *postgres.Pool, error) {
	if cfg.Database.URL == "" {
		return nil, nil, nil, errors.New("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	repo := postgres.NewRepository(pool, cfg.Matching.Model)
	records, err := repo.LoadAll(context.Background())
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("failed to load identities: %w", err)
	}

	store := newStoreFromConfig(cfg)
	if err := store.Load(records); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("failed to rebuild store: %w", err)
	}

	return store, repo, pool, nil
}
