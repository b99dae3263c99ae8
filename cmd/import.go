package cmd

import (
	"context"
	"fmt"

	"catalog-manager/core/config"
	"catalog-manager/core/database"
	"catalog-manager/core/logger"
	"catalog-manager/core/manifest"
	"catalog-manager/core/storage"
	"catalog-manager/feature/catalog"
	"catalog-manager/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importType string

// importCmd imports a package file straight from disk, without the HTTP
// staging step.
var importCmd = &cobra.Command{
	Use:   "import <package.zip>",
	Short: "Import a sync package",
	Long:  `Imports a manifest package file into the local catalog and prints the per-entity report.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, logg, err := newSyncService()
		if err != nil {
			return err
		}
		defer logg.Sync()

		typ := manifest.EntityType(importType)
		report, err := svc.ImportPackageFile(context.Background(), args[0], typ)
		if err != nil {
			return err
		}

		for _, res := range report.Results {
			if res.Error != nil {
				fmt.Printf("%-8s %s (%s)\n", res.Action, res.Key, res.Error)
				continue
			}
			fmt.Printf("%-8s %s\n", res.Action, res.Key)
		}
		fmt.Printf("added %d, updated %d, skipped %d, failed %d\n",
			report.Added, report.Updated, report.Skipped, report.Failed)
		if !report.Ok() {
			return fmt.Errorf("%d entities failed to import", report.Failed)
		}
		return nil
	},
}

// newSyncService wires the sync service for one-shot CLI runs.
func newSyncService() (*sync.Service, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	store := catalog.NewStore(db, logg)
	if err := store.AutoMigrate(); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return sync.NewService(store, client, cfg.Storage.Bucket, cfg.Server, logg), logg, nil
}

func init() {
	importCmd.Flags().StringVarP(&importType, "type", "t", string(manifest.TypeGame),
		"entity type of the package (Game, Tool, Server, Redistributable)")
	RootCmd.AddCommand(importCmd)
}
