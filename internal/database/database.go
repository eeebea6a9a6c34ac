package database

import (
	"fmt"

	"github.com/mx-space/landing/internal/config"
	"github.com/mx-space/landing/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance.
var DB *gorm.DB

// Connect opens a MySQL connection and optionally runs auto-migration.
func Connect(cfg *config.AppConfig, autoMigrate bool) (*gorm.DB, error) {
	db, err := openDB(cfg, resolveLogLevel(cfg))
	if err != nil {
		return nil, err
	}

	if autoMigrate {
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}

	DB = db
	return db, nil
}

// EnsureSchema applies database migration in a short-lived setup connection.
func EnsureSchema(cfg *config.AppConfig) error {
	db, err := openDB(cfg, resolveLogLevel(cfg))
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("resolve sql db: %w", err)
	}
	defer sqlDB.Close()

	if err := Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func resolveLogLevel(cfg *config.AppConfig) logger.LogLevel {
	if cfg.IsProduction() {
		return logger.Warn
	}
	return logger.Silent
}

func openDB(cfg *config.AppConfig, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:               cfg.DSN,
		DefaultStringSize: 191,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return db, nil
}

// Migrate runs GORM auto-migration for the persisted models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.UserModel{},
		&models.UserSession{},
		&models.OptionModel{},
	)
}
