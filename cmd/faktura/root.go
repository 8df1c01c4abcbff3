package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nurpe/faktura/internal/config"
	"github.com/nurpe/faktura/internal/logger"
)

var version = "dev"

// app carries what every subcommand needs after config has loaded.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "faktura",
		Short:         "Contacts and CHF invoices for Swiss small businesses",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			a.log = logger.New(cfg.Environment,
				logger.WithLevel(cfg.Log.Level),
				logger.WithFormat(cfg.Log.Format),
			)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}

	root.AddCommand(
		newServeCommand(a),
		newMigrateCommand(a),
		newTokenCommand(a),
	)
	return root
}
