// File: cmd/factory.go
package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/obscuraops/multipass/internal/browserctx"
	"github.com/obscuraops/multipass/internal/config"
	"github.com/obscuraops/multipass/internal/identity"
	"github.com/obscuraops/multipass/internal/observability"
	"github.com/obscuraops/multipass/internal/store"
)

// newStore opens the database pool and wraps it in the repository. The
// returned cleanup closes the pool.
func newStore(ctx context.Context) (*store.Store, func(), error) {
	cfg := config.Get()
	if cfg.Postgres.URL == "" {
		return nil, nil, fmt.Errorf("postgres.url is not configured (set MULTIPASS_POSTGRES_URL)")
	}

	pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s, err := store.New(ctx, pool, observability.GetLogger())
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	return s, pool.Close, nil
}

// newIdentityManager wires the full identity stack: repository, browser
// context registry and manager.
func newIdentityManager(ctx context.Context) (*identity.Manager, func(), error) {
	s, cleanup, err := newStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	cfg := config.Get()
	logger := observability.GetLogger()
	registry := browserctx.NewRegistry(cfg.Browser.DataDir, logger)
	return identity.NewManager(s, registry, logger), cleanup, nil
}
