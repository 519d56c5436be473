package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/tracklens/internal/ingest"
)

func newProfileCommand(a *app) *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Compare observed feature ranges in a dataset with the normalization table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(csvPath)
			if err != nil {
				return fmt.Errorf("cli: open dataset: %w", err)
			}
			defer f.Close()

			profiles, err := ingest.Profile(f)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FEATURE\tCOUNT\tMIN\tMAX\tMEAN\tSTDDEV\tRANGE\t")
			for _, p := range profiles {
				flag := ""
				if p.OutOfRange() {
					flag = "out of range"
				}
				fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t[%g, %g]\t%s\n",
					p.Feature, p.Count, p.Min, p.Max, p.Mean, p.StdDev,
					p.Configured.Min, p.Configured.Max, flag)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "path to the tracks CSV dataset")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}
