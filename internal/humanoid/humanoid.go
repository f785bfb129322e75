// -- internal/humanoid/humanoid.go --
package humanoid

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/fleetwatch/internal/config"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Humanoid produces human-like timing for typing and between page actions.
// A disabled Humanoid never waits.
type Humanoid struct {
	cfg    config.HumanoidConfig
	logger *zap.Logger
	sleep  Sleeper

	mu sync.Mutex
	// fatigueLevel ranges from 0.0 (rested) to 1.0 (exhausted).
	fatigueLevel float64
	rng          *rand.Rand
}

// Option configures a Humanoid.
type Option func(*Humanoid)

// WithRand replaces the time seeded source. Tests use a fixed seed.
func WithRand(rng *rand.Rand) Option {
	return func(h *Humanoid) { h.rng = rng }
}

// WithSleeper replaces the context aware timer.
func WithSleeper(s Sleeper) Option {
	return func(h *Humanoid) { h.sleep = s }
}

// New creates a Humanoid for one browser session.
func New(cfg config.HumanoidConfig, logger *zap.Logger, opts ...Option) *Humanoid {
	h := &Humanoid{
		cfg:    cfg,
		logger: logger.Named("humanoid"),
		sleep:  Sleep,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enabled reports whether pauses are applied at all.
func (h *Humanoid) Enabled() bool { return h.cfg.Enabled }

// Sleep blocks for d unless ctx ends first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Humanoid) normal(mean, stdDev float64) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rng.NormFloat64()*stdDev + mean
}
