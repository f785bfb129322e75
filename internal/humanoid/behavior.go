package humanoid

import (
	"context"
	"math"
	"time"
)

const (
	// fatigue gained per typed character.
	fatiguePerKey = 0.01
	// fatigue recovered per second of pause.
	fatigueRecoveryRate = 0.05
)

// CognitiveDelay draws the pause a user takes before acting on what they see.
// Fatigue makes it longer.
func (h *Humanoid) CognitiveDelay() time.Duration {
	if !h.cfg.Enabled {
		return 0
	}
	h.mu.Lock()
	factor := 1.0 + h.fatigueLevel
	h.mu.Unlock()

	ms := factor * h.normal(h.cfg.CognitiveMeanMs, h.cfg.CognitiveStdDevMs)
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms * float64(time.Millisecond))
}

// CognitivePause waits for a CognitiveDelay.
func (h *Humanoid) CognitivePause(ctx context.Context) error {
	d := h.CognitiveDelay()
	if d <= 0 {
		return nil
	}
	h.recoverFatigue(d)
	return h.sleep(ctx, d)
}

func (h *Humanoid) updateFatigue(intensity float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fatigueLevel = math.Min(1.0, h.fatigueLevel+intensity)
}

func (h *Humanoid) recoverFatigue(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fatigueLevel = math.Max(0.0, h.fatigueLevel-fatigueRecoveryRate*d.Seconds())
}

// Fatigue returns the current fatigue level in [0, 1].
func (h *Humanoid) Fatigue() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fatigueLevel
}
