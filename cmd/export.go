package cmd

import (
	"context"
	"fmt"
	"os"

	"catalog-manager/core/manifest"
	"catalog-manager/feature/sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	exportType string
	exportOut  string
)

// exportCmd writes an entity's sync package to a file.
var exportCmd = &cobra.Command{
	Use:   "export <id-or-name>",
	Short: "Export an entity as a sync package",
	Long:  `Exports a catalog entity and its payloads as a zip package. Redistributables are addressed by name, everything else by id.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, logg, err := newSyncService()
		if err != nil {
			return err
		}
		defer logg.Sync()

		out := exportOut
		if out == "" {
			out = args[0] + ".zip"
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		defer f.Close()

		ctx := context.Background()
		switch manifest.EntityType(exportType) {
		case manifest.TypeGame, manifest.TypeTool, manifest.TypeServer:
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid entity id %q", args[0])
			}
			switch manifest.EntityType(exportType) {
			case manifest.TypeGame:
				err = svc.ExportGame(ctx, id, f)
			case manifest.TypeTool:
				err = svc.ExportTool(ctx, id, f)
			default:
				err = svc.ExportServer(ctx, id, f)
			}
			if err != nil {
				return exportFailed(out, err)
			}
		case manifest.TypeRedistributable:
			if err := svc.ExportRedistributable(ctx, args[0], f); err != nil {
				return exportFailed(out, err)
			}
		default:
			return fmt.Errorf("unknown entity type %q", exportType)
		}

		fmt.Printf("wrote %s\n", out)
		return nil
	},
}

func exportFailed(out string, err error) error {
	os.Remove(out)
	if err == sync.ErrNotFound {
		return fmt.Errorf("entity not found")
	}
	return err
}

func init() {
	exportCmd.Flags().StringVarP(&exportType, "type", "t", string(manifest.TypeGame),
		"entity type to export (Game, Tool, Server, Redistributable)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (defaults to <id>.zip)")
	RootCmd.AddCommand(exportCmd)
}
