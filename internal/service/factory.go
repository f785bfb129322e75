// File: internal/service/factory.go
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/fleetwatch/internal/config"
	"github.com/xkilldash9x/fleetwatch/internal/ogame"
	"github.com/xkilldash9x/fleetwatch/internal/store"
)

// ComponentFactory creates the set of components a game command needs.
// The abstraction keeps the commands testable without a browser.
type ComponentFactory interface {
	Create(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*Components, error)
}

type (
	storeOpener     func(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*store.Store, func(), error)
	browserLauncher func(ctx context.Context, cfg config.Interface, logger *zap.Logger) (Browser, error)
)

// concreteFactory is the production implementation of the ComponentFactory.
type concreteFactory struct {
	openStore     storeOpener
	launchBrowser browserLauncher
}

// NewComponentFactory creates a new production-ready component factory.
func NewComponentFactory() ComponentFactory {
	return &concreteFactory{
		openStore:     InitializeStore,
		launchBrowser: LaunchBrowser,
	}
}

// Create wires store, browser, tab and game client. On failure everything
// already started is shut down again.
func (f *concreteFactory) Create(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*Components, error) {
	components := &Components{logger: logger}

	var initializationErr error
	defer func() {
		if initializationErr != nil {
			logger.Warn("Initialization failed, shutting down partially created components.", zap.Error(initializationErr))
			components.Shutdown()
		}
	}()

	// 1. Store. History is optional.
	s, closeStore, err := f.openStore(ctx, cfg.Database(), logger)
	switch {
	case errors.Is(err, ErrNoDatabase):
		logger.Info("No database configured; cycle history is disabled.")
	case err != nil:
		initializationErr = fmt.Errorf("failed to initialize database store: %w", err)
		return nil, initializationErr
	default:
		components.Store = s
		components.closeStore = closeStore
	}

	// 2. Browser.
	b, err := f.launchBrowser(ctx, cfg, logger)
	if err != nil {
		initializationErr = fmt.Errorf("failed to initialize browser: %w", err)
		return nil, initializationErr
	}
	components.Browser = b
	logger.Debug("Browser initialized.")

	// 3. Tab.
	tab, err := b.NewTab(ctx)
	if err != nil {
		initializationErr = fmt.Errorf("failed to open browser tab: %w", err)
		return nil, initializationErr
	}
	components.Tab = tab

	// 4. Game client.
	components.Game = ogame.NewClient(tab, cfg, logger)

	logger.Info("All components initialized successfully.")
	return components, nil
}
