// Package database opens the relational store shared by gorm repositories and sqlx report queries.
package database

import (
	"errors"
	"fmt"

	"github.com/frahmantamala/kudos-points/internal"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects with the pgx stdlib driver (or sqlite for local runs) and layers gorm on the same pool.
func Open(cfg internal.DatabaseConfig) (*gorm.DB, *sqlx.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.Source), gormCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
	default:
		conn, cerr := sqlx.Connect("pgx", cfg.Source)
		if cerr != nil {
			return nil, nil, fmt.Errorf("failed to open db connection: %w", cerr)
		}
		db, err = gorm.Open(postgres.New(postgres.Config{Conn: conn.DB}), gormCfg)
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("failed to open gorm: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	x, err := SQLX(db)
	if err != nil {
		return nil, nil, err
	}
	return db, x, nil
}

// SQLX wraps gorm's pool for hand-written report queries with the right bindvar style.
func SQLX(db *gorm.DB) (*sqlx.DB, error) {
	if db == nil {
		return nil, errors.New("nil gorm db")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(sqlDB, DriverName(db)), nil
}

// DriverName maps the gorm dialect to the database/sql driver name sqlx expects.
func DriverName(db *gorm.DB) string {
	if db.Dialector.Name() == "sqlite" {
		return "sqlite3"
	}
	return "pgx"
}
