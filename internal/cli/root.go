// Package cli wires configuration, logging and the adapters into the
// tracklens command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/tracklens/internal/adapters/elastic"
	"github.com/ewilliams-labs/tracklens/internal/config"
	"github.com/ewilliams-labs/tracklens/internal/core/services"
	"github.com/ewilliams-labs/tracklens/internal/logging"
	"github.com/ewilliams-labs/tracklens/internal/metrics"
)

// Version is stamped at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// DefaultConfigPath is read when --config is not given. It may be absent.
const DefaultConfigPath = "tracklens.yaml"

// app is the state shared by every command once the root pre-run has loaded
// the configuration.
type app struct {
	configPath string
	cfg        config.Config
	logger     *zap.Logger
}

// NewRootCommand builds the tracklens command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "tracklens",
		Short: "tracklens - music search and similarity over Elasticsearch",
		Long: `tracklens serves song search, attribute filtering, audio-feature
similarity and genre analytics over a track index in Elasticsearch, and
bulk-loads that index from the Spotify tracks CSV dataset.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", DefaultConfigPath, "path to the YAML config file")

	root.AddCommand(
		newServeCommand(a),
		newIndexCommand(a),
		newRunsCommand(a),
		newProfileCommand(a),
		newSimilarCommand(a),
		newSearchCommand(a),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) engine(rec *metrics.Recorder) (*elastic.Client, error) {
	return elastic.NewClient(a.cfg.Elasticsearch, a.logger, rec)
}

func (a *app) catalog(rec *metrics.Recorder) (*services.Catalog, error) {
	client, err := a.engine(rec)
	if err != nil {
		return nil, err
	}
	return services.NewCatalog(client, a.logger, rec), nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cli: encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
