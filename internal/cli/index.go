package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/tracklens/internal/adapters/sqlite"
	"github.com/ewilliams-labs/tracklens/internal/core/ports"
	"github.com/ewilliams-labs/tracklens/internal/ingest"
)

func newIndexCommand(a *app) *cobra.Command {
	var (
		csvPath  string
		recreate bool
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Load the tracks CSV into the index",
		Long: `Create the track index when it is absent and bulk-load a dataset file.

An existing index is left untouched unless --recreate is given, in which case
it is deleted and rebuilt from the file. Rows with missing or unparsable audio
features are skipped and counted. Every run is recorded in the import ledger.

Examples:
  tracklens index --csv dataset.csv
  tracklens index --csv dataset.csv --recreate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			client, err := a.engine(nil)
			if err != nil {
				return err
			}

			var ledger ports.ImportLedger
			if path := a.cfg.Ingest.LedgerPath; path != "" {
				db, err := sqlite.NewAdapter(path)
				if err != nil {
					return err
				}
				defer db.Close()
				ledger = db
			}

			pipeline := ingest.NewPipeline(client, ledger, a.logger, nil, ingest.Options{
				Workers:   a.cfg.Ingest.Workers,
				BatchSize: a.cfg.Ingest.BatchSize,
			})

			// The dataset must be readable before the index is touched.
			f, err := os.Open(csvPath)
			if err != nil {
				return fmt.Errorf("cli: open dataset: %w", err)
			}
			defer f.Close()

			existed, err := pipeline.EnsureIndex(ctx, recreate)
			if err != nil {
				return err
			}
			if existed {
				fmt.Fprintf(out, "index %q already exists, skipping import (use --recreate to rebuild)\n", client.Name())
				return nil
			}

			run, runErr := pipeline.Run(ctx, csvPath, f)
			fmt.Fprintf(out, "run %s: read %d, indexed %d, skipped %d, failed %d\n",
				run.ID, run.Read, run.Indexed, run.Skipped, run.Failed)
			if runErr != nil {
				return runErr
			}

			count, err := pipeline.Verify(ctx)
			if err != nil {
				return fmt.Errorf("cli: verify import: %w", err)
			}
			fmt.Fprintf(out, "index %q now holds %d documents\n", client.Name(), count)
			if count != run.Indexed {
				a.logger.Warn("document count differs from indexed records",
					zap.Int("count", count),
					zap.Int("indexed", run.Indexed))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "path to the tracks CSV dataset")
	cmd.Flags().BoolVar(&recreate, "recreate", false, "delete and rebuild an existing index")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}
