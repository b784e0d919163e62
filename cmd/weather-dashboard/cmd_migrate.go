package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-dashboard/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema for DB_DRIVER=postgres or sqlite",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.DBDriver == config.DriverMemory {
			return errors.New("migrate needs DB_DRIVER=postgres or sqlite")
		}

		st, err := openSQLStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		return st.Migrate(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
