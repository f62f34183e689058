// Package dbtest opens throwaway sqlite databases with the full ledger schema for tests.
package dbtest

import (
	"fmt"
	"sync/atomic"

	"github.com/frahmantamala/kudos-points/internal/core/datamodel"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// Open returns a migrated in-memory database private to the caller.
func Open() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:kudos_test_%d?mode=memory&cache=shared", seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// one connection keeps every statement and transaction on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(datamodel.Models()...); err != nil {
		return nil, err
	}
	return db, nil
}

// Close releases the underlying connection.
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// DryRunPostgres builds statements with the postgres dialect without connecting, for asserting
// clauses sqlite leaves out such as FOR UPDATE.
func DryRunPostgres() (*gorm.DB, error) {
	return gorm.Open(postgres.Open("host=localhost user=kudos dbname=kudos sslmode=disable"), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DryRun:               true,
		DisableAutomaticPing: true,
	})
}
