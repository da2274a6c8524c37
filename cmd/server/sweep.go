package main

import (
	"github.com/spf13/cobra"

	consentService "portfolio/internal/consent/service"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired consent records once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		in, err := openStore(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer in.Close()

		n, err := consentService.NewSweeper(in.store, cfg.Consent.SweepInterval, log).SweepOnce(cmd.Context())
		if err != nil {
			return err
		}
		log.Info("expired consent records removed", "count", n)
		return nil
	},
}
