// internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/fleetwatch/api/schemas"
	"github.com/xkilldash9x/fleetwatch/internal/config"
)

const launchTimeout = 30 * time.Second

// Manager owns the Chrome process, or the connection to a remote one, and
// hands out tabs as Sessions.
type Manager struct {
	logger  *zap.Logger
	cfg     config.BrowserConfig
	network config.NetworkConfig
	persona schemas.Persona

	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc
	// browserCtx is the first chromedp context; cancelling it closes Chrome,
	// so sessions are opened as its children instead.
	browserCtx    context.Context
	browserCancel context.CancelFunc

	wg sync.WaitGroup
}

// NewManager launches (or attaches to) Chrome and checks it responds.
func NewManager(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*Manager, error) {
	m := &Manager{
		logger:  logger.Named("browser_manager"),
		cfg:     cfg.Browser(),
		network: cfg.Network(),
		persona: schemas.DefaultPersona,
	}
	if err := m.launch(ctx); err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	return m, nil
}

func (m *Manager) launch(ctx context.Context) error {
	if m.cfg.RemoteURL != "" {
		m.logger.Info("Attaching to remote browser.", zap.String("url", m.cfg.RemoteURL))
		m.allocatorCtx, m.allocatorCancel = chromedp.NewRemoteAllocator(ctx, m.cfg.RemoteURL)
	} else {
		m.logger.Info("Launching browser.", zap.Bool("headless", m.cfg.Headless), zap.String("user_data_dir", m.cfg.UserDataDir))
		m.allocatorCtx, m.allocatorCancel = chromedp.NewExecAllocator(ctx, allocatorOptions(m.cfg, m.persona)...)
	}

	m.browserCtx, m.browserCancel = chromedp.NewContext(m.allocatorCtx,
		chromedp.WithLogf(m.logger.Sugar().Debugf),
		chromedp.WithErrorf(m.logger.Sugar().Warnf))

	probeCtx, cancel := context.WithTimeout(m.browserCtx, launchTimeout)
	defer cancel()
	if err := chromedp.Run(probeCtx, chromedp.Navigate("about:blank")); err != nil {
		m.browserCancel()
		m.allocatorCancel()
		return fmt.Errorf("browser did not respond: %w", err)
	}
	m.logger.Info("Browser is responsive.")
	return nil
}

// launchFlags are the Chrome switches on top of chromedp's defaults.
// User supplied args win over the built-in ones.
func launchFlags(cfg config.BrowserConfig) map[string]interface{} {
	flags := map[string]interface{}{
		"headless":               cfg.Headless,
		"enable-automation":      false,
		"disable-blink-features": "AutomationControlled",
		"disable-extensions":     true,
		"disable-gpu":            cfg.Headless,
		"lang":                   "zh-TW",
	}
	if runtime.GOOS == "linux" {
		flags["no-sandbox"] = true
		flags["disable-dev-shm-usage"] = true
	}
	for _, arg := range cfg.Args {
		name, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if name == "" {
			continue
		}
		if hasValue {
			flags[name] = value
		} else {
			flags[name] = true
		}
	}
	return flags
}

func allocatorOptions(cfg config.BrowserConfig, persona schemas.Persona) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	flags := launchFlags(cfg)
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts = append(opts, chromedp.Flag(name, flags[name]))
	}

	opts = append(opts,
		chromedp.UserAgent(persona.UserAgent),
		chromedp.WindowSize(int(persona.Width), int(persona.Height)))
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}
	return opts
}

// NewSession opens a new tab with the persona applied.
func (m *Manager) NewSession(ctx context.Context) (*Session, error) {
	if err := m.browserCtx.Err(); err != nil {
		return nil, fmt.Errorf("browser is closed: %w", err)
	}
	tabCtx, cancel := chromedp.NewContext(m.browserCtx)

	s := newSession(tabCtx, cancel, m.cfg, m.network, m.persona, m.logger)
	if err := s.init(ctx); err != nil {
		cancel()
		return nil, err
	}

	m.wg.Add(1)
	s.onClose = m.wg.Done
	m.logger.Info("New session created.", zap.String("session_id", s.ID()))
	return s, nil
}

// Shutdown waits for open sessions up to the ctx deadline, then closes the
// browser. A remote browser is only disconnected.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("Browser manager shutdown initiated.")

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("Shutdown deadline exceeded. Forcing browser termination.", zap.Error(ctx.Err()))
	}

	if m.browserCancel != nil {
		m.browserCancel()
	}
	if m.allocatorCancel != nil {
		m.allocatorCancel()
		<-m.allocatorCtx.Done()
	}
	return nil
}
