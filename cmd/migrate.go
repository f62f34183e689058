package cmd

import (
	"context"
	"log"

	"github.com/frahmantamala/kudos-points/internal/core/database"
	"github.com/frahmantamala/kudos-points/internal/core/datamodel"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
	}
	migrateRollback bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "sql migrations directory")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	// sql migrations target postgres; local sqlite files get the gorm schema instead
	if cfg.Database.Driver == "sqlite" {
		if migrateRollback {
			log.Fatal("rollback is not supported for sqlite")
		}
		db, x, err := database.Open(cfg.Database)
		if err != nil {
			log.Fatalf("failed to open sqlite: %v", err)
		}
		defer x.Close()
		if err := db.WithContext(ctx).AutoMigrate(datamodel.Models()...); err != nil {
			log.Fatalf("automigrate: %v", err)
		}
		return nil
	}

	db, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
	if err != nil {
		log.Fatalf("goose: failed to open DB: %v\n", err)
	}
	defer db.Close()
	goose.SetTableName("schema_migrations")

	command := "up"
	if migrateRollback {
		command = "down"
	}

	if err := goose.RunContext(ctx, command, db, migrateDir); err != nil {
		log.Fatalf("goose %s: %v", command, err)
	}

	return nil
}
