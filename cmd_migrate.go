package main

import (
	"github.com/spf13/cobra"

	"timetable_backend/internals/configs"
	database "timetable_backend/internals/databases"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the timetable tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.LoadEnv()
			lg := configs.NewLogger(cfg)
			defer func() { _ = lg.Sync() }()

			db, err := database.ConnectDB(cfg, lg)
			if err != nil {
				return err
			}
			defer func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}()

			if err := database.Migrate(db.WithContext(cmd.Context())); err != nil {
				return err
			}
			lg.Info("migration finished")
			return nil
		},
	}
}
