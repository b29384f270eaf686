package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/catalog/config"
	"github.com/shashiranjanraj/catalog/database/seeders"
	"github.com/shashiranjanraj/catalog/internal/bootstrap"
	"github.com/shashiranjanraj/catalog/pkg/database"
	"github.com/shashiranjanraj/catalog/pkg/migration"
)

var errMongoStore = errors.New("PRODUCT_STORE is mongo: schema migrations apply to the sql store only")

// withSQL opens the configured SQL database for fn and closes it afterwards.
func withSQL(fn func(db *gorm.DB) error) error {
	if config.ProductStore() != "sql" {
		return errMongoStore
	}
	db, err := bootstrap.OpenSQL()
	if err != nil {
		return err
	}
	defer database.Close(db) //nolint:errcheck
	return fn(db)
}

func runner(cmd *cobra.Command, db *gorm.DB) *migration.Runner {
	r := migration.New(db)
	r.SetOutput(cmd.OutOrStdout())
	return r
}

// catalog migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run pending SQL migrations, or create the Mongo indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if config.ProductStore() == "mongo" {
			fmt.Fprintln(cmd.OutOrStdout(), "Creating Mongo indexes…")
			return bootstrap.EnsureMongoIndexes(ctx)
		}
		return withSQL(func(db *gorm.DB) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Running migrations…")
			return runner(cmd, db).Run(ctx)
		})
	},
}

// catalog migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of SQL migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSQL(func(db *gorm.DB) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Rolling back last batch…")
			return runner(cmd, db).Rollback(cmd.Context())
		})
	},
}

// catalog migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each SQL migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSQL(func(db *gorm.DB) error {
			return runner(cmd, db).PrintStatus(cmd.Context())
		})
	},
}

// catalog seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the demo products",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := bootstrap.Boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close() //nolint:errcheck

		if err := migrateSQL(ctx, cmd, app); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
		return seeders.RunAll(ctx, app.Service, cmd.OutOrStdout())
	},
}

// migrateSQL brings a SQL store up to date before it is written to.
func migrateSQL(ctx context.Context, cmd *cobra.Command, app *bootstrap.App) error {
	if app.DB == nil {
		return nil
	}
	return runner(cmd, app.DB).Run(ctx)
}
