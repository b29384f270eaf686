package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Registers the SQL store's migrations and the demo seeders.
	_ "github.com/shashiranjanraj/catalog/database/migrations"
	_ "github.com/shashiranjanraj/catalog/database/seeders"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "catalog",
	Short:         "Product catalogue service",
	Long:          "catalog serves the product API and manages its store, cache and exports.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	// Catalogue
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(tokenIssueCmd)
}
