// Package database holds the process wide GORM handle for the listings
// database.
package database

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"realty_backend/pkg/config"
)

var ErrNotConnected = errors.New("database not connected")

var DB *gorm.DB

// InitDB opens the postgres connection described by cfg and sizes its pool.
// The simple protocol keeps it usable behind pgbouncer style poolers.
func InitDB(cfg config.DatabaseConfig) error {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	DB = db
	log.Printf("Database connected (max open %d, max idle %d)", cfg.MaxOpenConns, cfg.MaxIdleConns)
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// Ping checks that the database answers. It returns ErrNotConnected before
// InitDB has succeeded.
func Ping(ctx context.Context) error {
	if DB == nil {
		return ErrNotConnected
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate brings the tables of the given models up to date.
func Migrate(models ...interface{}) error {
	if DB == nil {
		return ErrNotConnected
	}
	for _, m := range models {
		if err := DB.AutoMigrate(m); err != nil {
			return fmt.Errorf("migrate %T: %w", m, err)
		}
	}
	log.Printf("Migrated %d tables", len(models))
	return nil
}
