package main

import (
	"github.com/spf13/cobra"

	"timetable_backend/internals/configs"
	database "timetable_backend/internals/databases"
	"timetable_backend/internals/seeds"
)

func newSeedCmd() *cobra.Command {
	var (
		file    string
		migrate bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load school master data (terms, time slots, teachers, class groups, rooms) from JSON",
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

			db = db.WithContext(cmd.Context())
			if migrate {
				if err := database.Migrate(db); err != nil {
					return err
				}
			}
			return seeds.RunAllSeeds(db, lg, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", seeds.DefaultSchoolsFile, "Seed file (JSON array of schools)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Run AutoMigrate first")
	return cmd
}
