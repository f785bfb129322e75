// File: internal/service/components.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/fleetwatch/internal/config"
	"github.com/xkilldash9x/fleetwatch/internal/ogame"
	"github.com/xkilldash9x/fleetwatch/internal/sentinel"
	"github.com/xkilldash9x/fleetwatch/internal/store"
)

const shutdownTimeout = 30 * time.Second

// Tab is a browser tab the game client can drive.
type Tab interface {
	ogame.Page
	Close(ctx context.Context) error
}

// Browser hands out tabs and owns the browser process.
type Browser interface {
	NewTab(ctx context.Context) (Tab, error)
	Shutdown(ctx context.Context) error
}

// Components holds everything a game command needs, in start order.
type Components struct {
	Browser Browser
	Tab     Tab
	Game    *ogame.Client
	// Store is nil when no database is configured.
	Store *store.Store

	closeStore func()
	logger     *zap.Logger
}

// Recorder returns the cycle history sink, or nil when history is disabled.
func (c *Components) Recorder() sentinel.Recorder {
	if c.Store == nil {
		return nil
	}
	return c.Store
}

// NewSentinel builds the watch loop on top of the game client.
func (c *Components) NewSentinel(cfg config.Interface, logger *zap.Logger, opts ...sentinel.Option) *sentinel.Sentinel {
	if rec := c.Recorder(); rec != nil {
		opts = append([]sentinel.Option{sentinel.WithRecorder(rec)}, opts...)
	}
	return sentinel.New(SentinelConfig(cfg), c.Game, logger, opts...)
}

// SentinelConfig extracts the loop settings from the application config.
func SentinelConfig(cfg config.Interface) sentinel.Config {
	return sentinel.Config{
		Email:         cfg.Account().Email,
		Password:      cfg.Account().Password,
		Planets:       cfg.Planets(),
		RefreshPeriod: cfg.Sentinel().RefreshPeriod,
	}
}

// Shutdown releases the components in reverse start order. It runs on its own
// deadline so a cancelled command context still closes the browser.
func (c *Components) Shutdown() {
	logger := c.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("Beginning components shutdown sequence.")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if c.Tab != nil {
		if err := c.Tab.Close(ctx); err != nil {
			logger.Warn("Error closing browser tab.", zap.Error(err))
		}
	}
	if c.Browser != nil {
		if err := c.Browser.Shutdown(ctx); err != nil {
			logger.Warn("Error during browser shutdown.", zap.Error(err))
		} else {
			logger.Debug("Browser shut down.")
		}
	}
	if c.closeStore != nil {
		c.closeStore()
		logger.Debug("Database connection pool closed.")
	}
	logger.Info("All components shut down.")
}
