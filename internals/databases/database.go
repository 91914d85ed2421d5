package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"timetable_backend/internals/configs"
	"timetable_backend/internals/features/timetable/model"
)

// ConnectDB opens PostgreSQL with the statement_timeout baked into the DSN.
// PreferSimpleProtocol keeps it working behind PgBouncer transaction pooling.
func ConnectDB(cfg configs.Config, lg *zap.Logger) (*gorm.DB, error) {
	lg.Info("connecting to PostgreSQL", zap.String("host", cfg.DBHost), zap.String("db", cfg.DBName))

	level := gormLogger.Warn
	if !cfg.IsProduction() {
		level = gormLogger.Info
	}
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true,
	}), Config(lg, level))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	lg.Info("database connected")
	return db, nil
}

// Config is the gorm configuration shared by every dialect. TranslateError
// turns driver constraint failures into gorm.ErrDuplicatedKey and
// gorm.ErrForeignKeyViolated.
func Config(lg *zap.Logger, level gormLogger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:         configs.NewGormLogger(lg, level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

func TunePool(db *gorm.DB, lg *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		lg.Warn("pool tune failed", zap.Error(err))
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// WarmUp pings in the background so the pool has a live connection before
// the first request.
func WarmUp(db *gorm.DB, lg *zap.Logger) {
	go func() {
		time.Sleep(500 * time.Millisecond)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := Ping(ctx, db); err != nil {
			lg.Warn("warm-up ping failed", zap.Error(err))
		}
	}()
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Migrate creates or alters every timetable table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}
