package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"timetable_backend/internals/configs"
	database "timetable_backend/internals/databases"
	routes "timetable_backend/internals/route"
)

type serveOptions struct {
	port    string
	migrate bool
}

func newServeCmd() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.port, "port", "", "Listen port (default: $PORT or 3000)")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "Run AutoMigrate before serving")
	return cmd
}

func runServe(ctx context.Context, opts serveOptions) error {
	cfg := configs.LoadEnv()
	if opts.port != "" {
		cfg.Port = opts.port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lg := configs.NewLogger(cfg)
	defer func() { _ = lg.Sync() }()

	// DB connect + pool + warm-up
	db, err := database.ConnectDB(cfg, lg)
	if err != nil {
		return err
	}
	database.TunePool(db, lg)
	if opts.migrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
		lg.Info("migration finished")
	}
	database.WarmUp(db, lg)

	app := routes.NewApp(cfg, db, lg)

	// Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	errCh := make(chan error, 1)
	go func() {
		lg.Info("listening", zap.String("port", cfg.Port))
		errCh <- app.Listen("0.0.0.0:" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// graceful shutdown + tutup pool DB
	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(shutdownCtx)

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
