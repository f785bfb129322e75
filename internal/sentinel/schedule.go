package sentinel

import (
	"fmt"
	"math"
	"time"
)

// DefaultRefreshPeriod is the nominal time between two cycles.
const DefaultRefreshPeriod = 15 * time.Minute

// Delay computes the jittered wait before the next cycle from a nominal period
// and a uniform draw r in [0,1). With half = floor(P/2) in milliseconds, draws
// below 0.5 shorten the period by r*half and the rest lengthen it by r*half.
// The split is on r, not on the sign of the resulting offset, so the delay
// jumps from 0.75P to 1.25P at the median draw.
func Delay(period time.Duration, r float64) (time.Duration, error) {
	if period <= 0 {
		return 0, fmt.Errorf("%w: non-positive period %s", ErrTimeComputation, period)
	}
	if math.IsNaN(r) || r < 0 || r >= 1 {
		return 0, fmt.Errorf("%w: random draw %v outside [0,1)", ErrTimeComputation, r)
	}

	periodMs := period.Milliseconds()
	half := float64(periodMs / 2)

	var ms float64
	if r < 0.5 {
		ms = float64(periodMs) - r*half
	} else {
		ms = float64(periodMs) + r*half
	}
	return time.Duration(math.Round(ms)) * time.Millisecond, nil
}

// NextWake returns the absolute wake time now+Delay. The sum is checked on the
// millisecond epoch scale and fails instead of wrapping.
func NextWake(now time.Time, period time.Duration, r float64) (time.Time, error) {
	d, err := Delay(period, r)
	if err != nil {
		return time.Time{}, err
	}

	nowMs := now.UnixMilli()
	delayMs := d.Milliseconds()
	if nowMs > math.MaxInt64-delayMs {
		return time.Time{}, fmt.Errorf("%w: %d ms after %s overflows", ErrTimeComputation, delayMs, now.Format(time.RFC3339))
	}
	return time.UnixMilli(nowMs + delayMs).In(now.Location()), nil
}

// untilWake returns how long to sleep before wake, never negative.
func untilWake(now, wake time.Time) time.Duration {
	d := wake.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
