package main

import (
	"errors"

	"github.com/spf13/cobra"

	consentStore "portfolio/internal/consent/store"
	"portfolio/internal/platform/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the consent store schema to DATABASE_URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Postgres.URL == "" {
			return errors.New("migrate requires DATABASE_URL")
		}
		db, err := postgres.Open(cmd.Context(), cfg.Postgres)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := postgres.Migrate(db, consentStore.Migrations, consentStore.MigrationsDir); err != nil {
			return err
		}
		log.Info("migrations applied")
		return nil
	},
}
