package config

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// PrepareSchema runs the SQL migrations when a migrations path is configured
// and falls back to gorm AutoMigrate otherwise.
func PrepareSchema(db *gorm.DB, cfg *DatabaseConfig, log zerolog.Logger) error {
	if cfg.MigrationsPath == "" {
		log.Warn().Msg("No migrations path configured, using AutoMigrate")
		return AutoMigrate(db)
	}
	return RunMigrations(db, cfg.MigrationsPath, log)
}

func RunMigrations(db *gorm.DB, migrationsPath string, log zerolog.Logger) error {
	log.Info().Str("path", migrationsPath).Msg("Running database migrations")

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	log.Info().
		Uint("version", version).
		Bool("dirty", dirty).
		Msg("Migrations completed")

	return nil
}
