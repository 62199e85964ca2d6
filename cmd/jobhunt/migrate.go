package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jobhunt-app/jobhunt/internal/config"
	"github.com/jobhunt-app/jobhunt/internal/resource"
	"github.com/jobhunt-app/jobhunt/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long:  "Create every table the resource catalog implies. Safe to re-run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		st, err := store.Open(cfg.Database.URL, resource.Catalog(), logger)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(context.Background()); err != nil {
			return err
		}
		fmt.Println("Migrations complete.")
		return nil
	},
}
