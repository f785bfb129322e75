package sentinel

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelay_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		r    float64
		want time.Duration
	}{
		{"low draw shortens", 0.2, 810000 * time.Millisecond},
		{"high draw lengthens", 0.8, 1260000 * time.Millisecond},
		{"zero draw is nominal", 0, 15 * time.Minute},
		{"median draw jumps up", 0.5, 1125000 * time.Millisecond},
		{"below median", 0.4, 720000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Delay(15*time.Minute, tt.r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDelay_Bounds(t *testing.T) {
	periods := []time.Duration{time.Millisecond, 3 * time.Millisecond, time.Second, 15 * time.Minute, 7*time.Hour + 13*time.Millisecond}

	for _, p := range periods {
		pMs := p.Milliseconds()
		half := pMs / 2
		for i := 0; i < 1000; i++ {
			r := float64(i) / 1000
			got, err := Delay(p, r)
			require.NoError(t, err)

			var want float64
			if r < 0.5 {
				want = float64(pMs) - r*float64(half)
			} else {
				want = float64(pMs) + r*float64(half)
			}
			assert.Equal(t, int64(math.Round(want)), got.Milliseconds(), "P=%s r=%v", p, r)
			assert.GreaterOrEqual(t, got, p/2)
			assert.LessOrEqual(t, got, p*3/2)
		}
	}
}

func TestDelay_InvalidInput(t *testing.T) {
	for _, r := range []float64{-0.1, 1, 1.5, math.NaN()} {
		_, err := Delay(time.Minute, r)
		assert.ErrorIs(t, err, ErrTimeComputation, "r=%v", r)
	}
	for _, p := range []time.Duration{0, -time.Second} {
		_, err := Delay(p, 0.3)
		assert.ErrorIs(t, err, ErrTimeComputation, "period=%s", p)
	}
}

func TestNextWake(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	wake, err := NextWake(now, 15*time.Minute, 0.2)
	require.NoError(t, err)
	assert.Equal(t, now.Add(810*time.Second), wake)

	wake, err = NextWake(now, 15*time.Minute, 0.8)
	require.NoError(t, err)
	assert.Equal(t, now.Add(1260*time.Second), wake)
}

func TestNextWake_Overflow(t *testing.T) {
	now := time.UnixMilli(math.MaxInt64 - 1000)

	_, err := NextWake(now, 15*time.Minute, 0.2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeComputation)
}

func TestUntilWake(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 5*time.Second, untilWake(now, now.Add(5*time.Second)))
	assert.Equal(t, time.Duration(0), untilWake(now, now.Add(-time.Minute)))
	assert.Equal(t, time.Duration(0), untilWake(now, now))
}
