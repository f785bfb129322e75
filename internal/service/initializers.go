// File: internal/service/initializers.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xkilldash9x/fleetwatch/internal/browser"
	"github.com/xkilldash9x/fleetwatch/internal/config"
	"github.com/xkilldash9x/fleetwatch/internal/store"
)

// ErrNoDatabase is returned by InitializeStore when database.url is empty.
var ErrNoDatabase = errors.New("database URL is not configured (hint: check FLEETWATCH_DATABASE_URL)")

// InitializeStore connects to PostgreSQL, applies the schema and returns the
// store with a cleanup that closes the pool.
func InitializeStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*store.Store, func(), error) {
	if cfg.URL == "" {
		return nil, nil, ErrNoDatabase
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to parse PGX pool config: %w", err)
	}
	// One writer per cycle; a small pool is plenty.
	poolConfig.MaxConns = 4
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create PGX connection pool: %w", err)
	}

	s, err := store.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	logger.Info("Cycle history enabled.", zap.String("host", poolConfig.ConnConfig.Host), zap.String("database", poolConfig.ConnConfig.Database))
	cleanup := func() {
		logger.Debug("Closing PostgreSQL connection pool.")
		pool.Close()
	}
	return s, cleanup, nil
}

// LaunchBrowser starts Chrome according to cfg.
func LaunchBrowser(ctx context.Context, cfg config.Interface, logger *zap.Logger) (Browser, error) {
	m, err := browser.NewManager(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return managerBrowser{m}, nil
}

// managerBrowser adapts *browser.Manager to Browser.
type managerBrowser struct {
	*browser.Manager
}

func (b managerBrowser) NewTab(ctx context.Context) (Tab, error) {
	s, err := b.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

var _ Tab = (*browser.Session)(nil)
