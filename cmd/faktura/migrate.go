package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nurpe/faktura/internal/db"
)

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *a.cfg
			cfg.DB.AutoMigrate = false

			database, err := db.New(&cfg, a.log)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			if sqlDB, err := database.DB(); err == nil {
				defer sqlDB.Close()
			}

			if err := db.Migrate(database.WithContext(cmd.Context())); err != nil {
				return err
			}
			a.log.Info().Str("driver", database.Dialector.Name()).Msg("migrations applied")
			return nil
		},
	}
}
