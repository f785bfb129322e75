package cmd

import (
	"fmt"
	"io"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/fleetwatch/api/schemas"
	"github.com/xkilldash9x/fleetwatch/internal/observability"
)

func newSnapshotCmd() *cobra.Command {
	var resume bool

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Prints the empire overview once as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			if err := cfg.ValidateGame(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			components, err := newComponentFactory().Create(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			if resume {
				err = components.Game.ResumePlay(ctx)
			} else {
				logger.Info("Logging in.", observability.Account(cfg.Account().Email))
				err = components.Game.Login(ctx, cfg.Account().Email, cfg.Account().Password)
			}
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}

			overview, err := components.Game.EmpireOverview(ctx, cfg.Planets())
			if err != nil {
				return fmt.Errorf("fetch overview: %w", err)
			}
			logger.Info("Snapshot taken.", zap.Int("planets", len(overview.Planets)), zap.Int("events", len(overview.Events)))
			return writeOverview(cmd.OutOrStdout(), overview)
		},
	}

	snapshotCmd.Flags().BoolVar(&resume, "resume", false, "reuse the session in browser.user_data_dir instead of logging in")
	return snapshotCmd
}

func writeOverview(w io.Writer, overview *schemas.EmpireOverview) error {
	enc := json.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(overview); err != nil {
		return fmt.Errorf("failed to encode overview: %w", err)
	}
	return nil
}
