package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newSimilarCommand(a *app) *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "similar TRACK_ID",
		Short: "Print the tracks closest to a track in audio-feature space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.catalog(nil)
			if err != nil {
				return err
			}
			res, err := svc.FindSimilar(cmd.Context(), args[0], size)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVar(&size, "size", 10, "number of similar tracks")
	return cmd
}

func newSearchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search SONG",
		Short: "Resolve a song title with phrase, partial and fuzzy matching",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.catalog(nil)
			if err != nil {
				return err
			}
			res, err := svc.SmartSongSearch(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}
