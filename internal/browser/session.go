// internal/browser/session.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/fleetwatch/api/schemas"
	"github.com/xkilldash9x/fleetwatch/internal/browser/stealth"
	"github.com/xkilldash9x/fleetwatch/internal/config"
	"github.com/xkilldash9x/fleetwatch/internal/humanoid"
)

// ErrSessionClosed is returned by calls on a closed Session.
var ErrSessionClosed = errors.New("browser session is closed")

// Session is one browser tab driven with chromedp. Actions are paced by a
// rate limiter and, when enabled, by human-like pauses and typing. A
// Session is used by one goroutine at a time.
type Session struct {
	id      string
	logger  *zap.Logger
	persona schemas.Persona

	limiter        *rate.Limiter
	human          *humanoid.Humanoid
	elementTimeout time.Duration
	navTimeout     time.Duration

	mu      sync.Mutex
	tabCtx  context.Context
	cancels []context.CancelFunc
	closed  bool
	onClose func()
}

func newSession(tabCtx context.Context, cancel context.CancelFunc, cfg config.BrowserConfig, network config.NetworkConfig, persona schemas.Persona, logger *zap.Logger) *Session {
	id := uuid.New().String()
	l := logger.Named("session").With(zap.String("session_id", id))
	return &Session{
		id:             id,
		logger:         l,
		persona:        persona,
		limiter:        newLimiter(cfg.ActionsPerSecond),
		human:          humanoid.New(cfg.Humanoid, l),
		elementTimeout: cfg.ElementTimeout,
		navTimeout:     network.NavigationTimeout,
		tabCtx:         tabCtx,
		cancels:        []context.CancelFunc{cancel},
	}
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

func (s *Session) init(ctx context.Context) error {
	if err := s.run(ctx, s.navTimeout, stealth.Apply(s.persona, s.logger)); err != nil {
		return fmt.Errorf("failed to apply stealth profile: %w", err)
	}
	return nil
}

func (s *Session) tab() (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.tabCtx, nil
}

// scope derives a context from the current tab that also ends when ctx does
// or after timeout, if positive.
func (s *Session) scope(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	tab, err := s.tab()
	if err != nil {
		return nil, nil, err
	}
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(tab, timeout)
	} else {
		runCtx, cancel = context.WithCancel(tab)
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() { stop(); cancel() }, nil
}

func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	runCtx, cancel, err := s.scope(ctx, timeout)
	if err != nil {
		return err
	}
	defer cancel()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		// Report the caller's cancellation rather than chromedp's wrapping of it.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// Navigate loads url and waits for the load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating.", zap.String("url", url))
	if err := s.run(ctx, s.navTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return s.human.CognitivePause(ctx)
}

// WaitVisible blocks until selector is visible.
func (s *Session) WaitVisible(ctx context.Context, selector string) error {
	return s.run(ctx, s.elementTimeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// Exists reports whether selector matches right now.
func (s *Session) Exists(ctx context.Context, selector string) (bool, error) {
	quoted, err := json.MarshalToString(selector)
	if err != nil {
		return false, err
	}
	var found bool
	if err := s.run(ctx, s.elementTimeout, chromedp.Evaluate("document.querySelector("+quoted+") !== null", &found)); err != nil {
		return false, err
	}
	return found, nil
}

// Click waits for selector to be visible and clicks it.
func (s *Session) Click(ctx context.Context, selector string) error {
	if err := s.human.CognitivePause(ctx); err != nil {
		return err
	}
	return s.run(ctx, s.elementTimeout, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

// Fill replaces the value of an input. With humanoid timing enabled the
// text is typed key by key.
func (s *Session) Fill(ctx context.Context, selector, value string) error {
	prepare := chromedp.Tasks{
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SetValue(selector, "", chromedp.ByQuery),
		chromedp.Focus(selector, chromedp.ByQuery),
	}
	if !s.human.Enabled() {
		return s.run(ctx, s.elementTimeout, prepare, chromedp.SendKeys(selector, value, chromedp.ByQuery))
	}

	if err := s.run(ctx, s.elementTimeout, prepare); err != nil {
		return err
	}
	typeCtx, cancel, err := s.scope(ctx, 0)
	if err != nil {
		return err
	}
	defer cancel()
	return s.human.Type(typeCtx, value, func(ctx context.Context, key string) error {
		return chromedp.Run(ctx, chromedp.KeyEvent(key))
	})
}

// Text returns the rendered text of selector.
func (s *Session) Text(ctx context.Context, selector string) (string, error) {
	var out string
	if err := s.run(ctx, s.elementTimeout, chromedp.Text(selector, &out, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return out, nil
}

// OuterHTML returns the markup of selector.
func (s *Session) OuterHTML(ctx context.Context, selector string) (string, error) {
	var out string
	if err := s.run(ctx, s.elementTimeout, chromedp.OuterHTML(selector, &out, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return out, nil
}

// ClickAndFollowTab clicks selector, waits for the tab it opens and moves
// the session onto it. The old tab stays open until Close.
func (s *Session) ClickAndFollowTab(ctx context.Context, selector string) error {
	tab, err := s.tab()
	if err != nil {
		return err
	}
	opened := chromedp.WaitNewTarget(tab, func(info *target.Info) bool {
		return info.Type == "page"
	})

	if err := s.Click(ctx, selector); err != nil {
		return err
	}

	timer := time.NewTimer(s.navTimeout)
	defer timer.Stop()
	var id target.ID
	select {
	case id = <-opened:
	case <-timer.C:
		return fmt.Errorf("no tab opened by %s within %s", selector, s.navTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	newCtx, cancel := chromedp.NewContext(tab, chromedp.WithTargetID(id))
	s.mu.Lock()
	s.tabCtx = newCtx
	s.cancels = append(s.cancels, cancel)
	s.mu.Unlock()

	s.logger.Info("Switched to new tab.", zap.String("target_id", string(id)))
	if err := s.init(ctx); err != nil {
		return err
	}
	return s.WaitVisible(ctx, "body")
}

// Sleep waits for d unless ctx ends first.
func (s *Session) Sleep(ctx context.Context, d time.Duration) error {
	return humanoid.Sleep(ctx, d)
}

// Close closes every tab the session opened. It is safe to call twice.
func (s *Session) Close(context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancels := s.cancels
	s.cancels = nil
	s.mu.Unlock()

	for i := len(cancels) - 1; i >= 0; i-- {
		cancels[i]()
	}
	if s.onClose != nil {
		s.onClose()
	}
	s.logger.Debug("Session closed.")
	return nil
}
