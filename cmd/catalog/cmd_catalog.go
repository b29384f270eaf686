package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/internal/bootstrap"
	"github.com/shashiranjanraj/catalog/pkg/auth"
	"github.com/shashiranjanraj/catalog/pkg/storage"
)

var (
	exportDiskFlag string
	exportDirFlag  string

	tokenRoleFlag    string
	tokenSubjectFlag string
	tokenTTLFlag     time.Duration
)

func init() {
	exportCmd.Flags().StringVar(&exportDiskFlag, "disk", "", "storage disk to write to (default STORAGE_DISK)")
	exportCmd.Flags().StringVar(&exportDirFlag, "dir", "exports", "directory on the disk")

	tokenIssueCmd.Flags().StringVar(&tokenRoleFlag, "role", "", "role carried by the token: admin or user")
	tokenIssueCmd.Flags().StringVar(&tokenSubjectFlag, "subject", "catalog-cli", "token subject")
	tokenIssueCmd.Flags().DurationVar(&tokenTTLFlag, "ttl", auth.DefaultTTL, "token lifetime")
	_ = tokenIssueCmd.MarkFlagRequired("role")
}

// catalog stats
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the product statistics snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := bootstrap.Boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close() //nolint:errcheck

		stats, err := app.Service.GetProductStats(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

// catalog cache:clear
var cacheClearCmd = &cobra.Command{
	Use:   "cache:clear",
	Short: "Drop the cached product statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := bootstrap.Boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close() //nolint:errcheck

		if err := app.Service.ClearStatsCache(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Statistics cache cleared (%s).\n", app.Cache.Driver())
		return nil
	},
}

// catalog export
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every product and the statistics as JSON to a storage disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := bootstrap.Boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close() //nolint:errcheck

		disks, err := storage.New(ctx)
		if err != nil {
			return err
		}
		disk, err := disks.Disk(exportDiskFlag)
		if err != nil {
			return err
		}

		path, err := app.Service.ExportCatalog(ctx, disk, exportDirFlag, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", disk.URL(path))
		return nil
	},
}

// catalog token:issue
var tokenIssueCmd = &cobra.Command{
	Use:   "token:issue",
	Short: "Issue a bearer token carrying a role",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, ok := models.ParseRole(tokenRoleFlag)
		if !ok {
			return fmt.Errorf("unknown role %q: want admin or user", tokenRoleFlag)
		}
		token, err := auth.GenerateToken(tokenSubjectFlag, string(role), tokenTTLFlag)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
