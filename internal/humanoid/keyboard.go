// -- internal/humanoid/keyboard.go --
package humanoid

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	minKeyHoldMs = 20.0
	// floor for the inter-key delay, as a share of the configured mean.
	minKeyPauseShare = 0.5
)

// Common digrams and trigrams are typed faster than the rest.
var commonNgrams = map[string]bool{
	"th": true, "he": true, "in": true, "er": true, "an": true, "re": true,
	"es": true, "on": true, "st": true, "nt": true, "co": true, "om": true,
	"the": true, "and": true, "ing": true, "ion": true, "com": true,
}

// KeySender delivers one key to the focused element.
type KeySender func(ctx context.Context, key string) error

// Type sends text one key at a time with human key hold and flight times.
// Text is never altered: there is no typo simulation, since a mistyped
// password locks the lobby after a few attempts.
func (h *Humanoid) Type(ctx context.Context, text string, send KeySender) error {
	runes := []rune(text)
	h.logger.Debug("Typing.", zap.Int("keys", len(runes)))
	for i, r := range runes {
		if i > 0 {
			if err := h.sleep(ctx, h.KeyPause(runes, i)); err != nil {
				return err
			}
		}
		if err := send(ctx, string(r)); err != nil {
			return fmt.Errorf("humanoid: send key %d: %w", i, err)
		}
		if err := h.sleep(ctx, h.KeyHold()); err != nil {
			return err
		}
		h.updateFatigue(fatiguePerKey)
	}
	return nil
}

// KeyHold draws how long a key stays pressed.
func (h *Humanoid) KeyHold() time.Duration {
	if !h.cfg.Enabled {
		return 0
	}
	ms := math.Max(minKeyHoldMs, h.normal(h.cfg.KeyHoldMeanMs, h.cfg.KeyHoldStdDevMs))
	return time.Duration(ms * float64(time.Millisecond))
}

// KeyPause draws the flight time before runes[i]. Familiar letter sequences
// are quicker and fatigue slows every key down.
func (h *Humanoid) KeyPause(runes []rune, i int) time.Duration {
	if !h.cfg.Enabled {
		return 0
	}
	factor := ngramFactor(runes, i)

	h.mu.Lock()
	fatigue := 1.0 + h.fatigueLevel*0.3
	h.mu.Unlock()

	mean := h.cfg.KeyPauseMeanMs * factor * fatigue
	floor := h.cfg.KeyPauseMeanMs * minKeyPauseShare * factor
	ms := math.Max(floor, h.normal(mean, h.cfg.KeyPauseStdDevMs))
	return time.Duration(ms * float64(time.Millisecond))
}

func ngramFactor(runes []rune, i int) float64 {
	if i <= 0 || i >= len(runes) {
		return 1.0
	}
	if i >= 2 && commonNgrams[strings.ToLower(string(runes[i-2:i+1]))] {
		return 0.55
	}
	if commonNgrams[strings.ToLower(string(runes[i-1:i+1]))] {
		return 0.7
	}
	return 1.0
}
