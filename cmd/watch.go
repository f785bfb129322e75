package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/fleetwatch/internal/config"
	"github.com/xkilldash9x/fleetwatch/internal/observability"
	"github.com/xkilldash9x/fleetwatch/internal/sentinel"
)

// minPeriodWarning is the refresh period below which a watch is likely to be
// noticed by the game's bot detection.
const minPeriodWarning = time.Minute

func newWatchCmd() *cobra.Command {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Logs in and watches the tracked planets until interrupted",
		Long: `Logs in once, then refreshes the empire overview at a jittered interval
around the refresh period. Fleets on planets under attack are sent away.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			if err := applyWatchFlags(cmd, cfg); err != nil {
				return err
			}
			if err := cfg.ValidateGame(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if period := cfg.Sentinel().RefreshPeriod; period < minPeriodWarning {
				logger.Warn("Refresh period is very short.", zap.Duration("period", period))
			}

			components, err := newComponentFactory().Create(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			err = components.NewSentinel(cfg, logger).Run(ctx)
			if sentinel.IsShutdown(err) {
				logger.Info("Watch stopped.")
			} else {
				logger.Error("Watch failed.", zap.Error(err))
			}
			return err
		},
	}

	watchCmd.Flags().Duration("period", 0, "refresh period, overrides sentinel.refresh_period (e.g. 15m)")
	watchCmd.Flags().Bool("headless", false, "run the browser without a window, overrides browser.headless")
	return watchCmd
}

// applyWatchFlags copies explicitly set flags over the loaded config.
func applyWatchFlags(cmd *cobra.Command, cfg config.Interface) error {
	if cmd.Flags().Changed("period") {
		period, err := cmd.Flags().GetDuration("period")
		if err != nil {
			return err
		}
		if period <= 0 {
			return fmt.Errorf("--period must be a positive duration, got %s", period)
		}
		cfg.SetSentinelRefreshPeriod(period)
	}
	if cmd.Flags().Changed("headless") {
		headless, err := cmd.Flags().GetBool("headless")
		if err != nil {
			return err
		}
		cfg.SetBrowserHeadless(headless)
	}
	return nil
}
