// File: internal/config/humanoid_config.go
// This file defines HumanoidConfig, the knobs for the human-like timing used
// while typing credentials and between page actions.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// HumanoidConfig controls typing cadence and cognitive pauses.
type HumanoidConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Key hold (dwell) time.
	KeyHoldMeanMs   float64 `mapstructure:"key_hold_mean_ms" yaml:"key_hold_mean_ms"`
	KeyHoldStdDevMs float64 `mapstructure:"key_hold_std_dev_ms" yaml:"key_hold_std_dev_ms"`

	// Inter-key (flight) time.
	KeyPauseMeanMs   float64 `mapstructure:"key_pause_mean_ms" yaml:"key_pause_mean_ms"`
	KeyPauseStdDevMs float64 `mapstructure:"key_pause_std_dev_ms" yaml:"key_pause_std_dev_ms"`

	// Pause before clicks and after page loads.
	CognitiveMeanMs   float64 `mapstructure:"cognitive_mean_ms" yaml:"cognitive_mean_ms"`
	CognitiveStdDevMs float64 `mapstructure:"cognitive_std_dev_ms" yaml:"cognitive_std_dev_ms"`
}

func setHumanoidDefaults(v *viper.Viper) {
	v.SetDefault("browser.humanoid.enabled", true)
	v.SetDefault("browser.humanoid.key_hold_mean_ms", 65.0)
	v.SetDefault("browser.humanoid.key_hold_std_dev_ms", 20.0)
	v.SetDefault("browser.humanoid.key_pause_mean_ms", 70.0)
	v.SetDefault("browser.humanoid.key_pause_std_dev_ms", 28.0)
	v.SetDefault("browser.humanoid.cognitive_mean_ms", 350.0)
	v.SetDefault("browser.humanoid.cognitive_std_dev_ms", 120.0)
}

// Validate rejects negative timings.
func (h HumanoidConfig) Validate() error {
	if !h.Enabled {
		return nil
	}
	for name, val := range map[string]float64{
		"key_hold_mean_ms":     h.KeyHoldMeanMs,
		"key_hold_std_dev_ms":  h.KeyHoldStdDevMs,
		"key_pause_mean_ms":    h.KeyPauseMeanMs,
		"key_pause_std_dev_ms": h.KeyPauseStdDevMs,
		"cognitive_mean_ms":    h.CognitiveMeanMs,
		"cognitive_std_dev_ms": h.CognitiveStdDevMs,
	} {
		if val < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}
