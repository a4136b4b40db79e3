package cmd

import (
	"github.com/spf13/cobra"

	"github.com/campaignkit/docweave/internal/config"
	"github.com/campaignkit/docweave/internal/log"
)

var (
	configPath string
	verbose    bool
)

func Root() *cobra.Command {
	cmd := cobra.Command{
		Use:           "docweave",
		Short:         "Render constrained rich-text markup into Google Docs",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	pflags := cmd.PersistentFlags()

	pflags.StringVar(&configPath, "config", "docweave.yaml", "Path to the configuration file.")
	pflags.BoolVar(&verbose, "verbose", false, "Enable verbose logging.")

	cmd.AddCommand(renderCmd())
	cmd.AddCommand(parseCmd())

	return &cmd
}

// setup loads the configuration and initializes the process logger.
func setup() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.LogEnabled || verbose {
		log.Set(cfg.LogVerbose || verbose, cfg.LogPath)
	}
	return cfg, nil
}
