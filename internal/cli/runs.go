package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/tracklens/internal/adapters/sqlite"
)

func newRunsCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded import runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Ingest.LedgerPath == "" {
				return errors.New("cli: no import ledger configured (ingest.ledger_path)")
			}
			db, err := sqlite.NewAdapter(a.cfg.Ingest.LedgerPath)
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := db.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tINDEX\tREAD\tINDEXED\tSKIPPED\tFAILED\tSOURCE")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
					r.ID, r.StartedAt.Format(time.RFC3339), r.Status, r.Index,
					r.Read, r.Indexed, r.Skipped, r.Failed, r.Source)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to show, 0 for all")
	return cmd
}
