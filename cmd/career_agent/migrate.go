package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-extractor/internal/db"
)

var migrateCommand = &cobra.Command{
	Use:   "migrate",
	Short: "Create the session tables in the configured database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if a.cfg.Store.Kind == db.StoreMemory {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "memory store: nothing to migrate")
			return nil
		}
		opts := a.cfg.StoreOptions()
		opts.Migrate = true
		_, closeStore, err := db.Open(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		closeStore()
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", a.cfg.Store.Kind)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCommand)
}
