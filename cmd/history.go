package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/fleetwatch/api/schemas"
	"github.com/xkilldash9x/fleetwatch/internal/observability"
)

type historyReader interface {
	RecentCycles(ctx context.Context, limit int) ([]schemas.CycleSummary, error)
}

func newHistoryCmd() *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Lists the most recent watch cycles from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}

			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}

			reader, cleanup, err := openHistory(ctx, cfg.Database(), observability.GetLogger())
			if err != nil {
				return err
			}
			if cleanup != nil {
				defer cleanup()
			}

			cycles, err := reader.RecentCycles(ctx, limit)
			if err != nil {
				return err
			}
			if len(cycles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No cycles recorded yet.")
				return nil
			}
			return writeHistory(cmd.OutOrStdout(), cycles)
		},
	}

	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of cycles to show")
	return historyCmd
}

func writeHistory(w io.Writer, cycles []schemas.CycleSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tNEXT WAKE\tPLANETS\tEVENTS\tHOSTILE\tSAVES\tCYCLE")
	for _, c := range cycles {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			c.StartedAt.Local().Format(time.DateTime),
			c.NextWake.Local().Format(time.TimeOnly),
			c.PlanetCount, c.EventCount, c.HostileCount, c.FleetSaves, c.ID)
	}
	return tw.Flush()
}
