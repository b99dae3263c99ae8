package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"catalog-manager/core/config"
	"catalog-manager/core/database"
	"catalog-manager/core/logger"
	"catalog-manager/core/storage"
	"catalog-manager/feature/archive"
	"catalog-manager/feature/catalog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for archive upload command
	archiveGameId     string
	archiveRedistId   string
	archiveVersion    string
	archiveChangelog  string
	archiveYesConfirm bool
)

// archiveCmd is the parent command for archive operations.
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage versioned install archives",
}

var archiveUploadCmd = &cobra.Command{
	Use:   "upload <archive.zip>",
	Short: "Upload a new archive version for a game or redistributable",
	Long: `Uploads a zip archive as a new version for one owner.

When the owner already has an archive, the stored prior version is rebuilt
to the new full content and the upload is reduced to a patch holding only
added and changed entries. Rebuilding mutates the stored object, so it asks
for confirmation unless --yes is given.

Examples:
  # First version for a game
  archive upload game.zip --game 1b4e28ba-... --version 1.0

  # Follow-up version, non-interactive
  archive upload game-v2.zip --game 1b4e28ba-... --version 2.0 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runArchiveUpload,
}

func runArchiveUpload(cmd *cobra.Command, args []string) error {
	if (archiveGameId == "") == (archiveRedistId == "") {
		return fmt.Errorf("exactly one of --game or --redistributable is required")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logg.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	store := catalog.NewStore(db, logg)
	if err := store.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	svc := archive.NewService(store, client, cfg.Storage.Bucket, cfg.Server, logg)

	req := archive.UploadRequest{
		ObjectKey: uuid.NewString(),
		Version:   archiveVersion,
		Changelog: archiveChangelog,
	}
	if archiveGameId != "" {
		id, err := uuid.Parse(archiveGameId)
		if err != nil {
			return fmt.Errorf("invalid game id %q: %w", archiveGameId, err)
		}
		req.GameId = &id
	} else {
		id, err := uuid.Parse(archiveRedistId)
		if err != nil {
			return fmt.Errorf("invalid redistributable id %q: %w", archiveRedistId, err)
		}
		req.RedistributableId = &id
	}

	ctx := context.Background()
	last, err := store.LatestArchive(ctx, req.GameId, req.RedistributableId)
	if err != nil {
		return err
	}
	if last != nil {
		fmt.Printf("Prior version %s exists; its stored archive will be rebuilt in place.\n", last.Version)
		if !confirmUpload() {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := os.MkdirAll(cfg.Server.WorkDir, 0o755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	if err := stageFile(args[0], cfg.Server.StagedPath(req.ObjectKey)); err != nil {
		return err
	}

	row, err := svc.Upload(ctx, req)
	if err != nil {
		return err
	}
	logg.Info("archive uploaded",
		zap.String("object_key", row.ObjectKey),
		zap.String("version", row.Version),
		zap.Int64("compressed_size", row.CompressedSize))
	return nil
}

// stageFile copies a local archive into the staging directory, where the
// upload flow expects to find it.
func stageFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to stage archive: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to stage archive: %w", err)
	}
	return out.Close()
}

func confirmUpload() bool {
	if archiveYesConfirm {
		fmt.Println("Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("Type 'yes' to rebuild the prior version: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}

func init() {
	archiveCmd.AddCommand(archiveUploadCmd)

	archiveUploadCmd.Flags().StringVar(&archiveGameId, "game", "", "Owning game id")
	archiveUploadCmd.Flags().StringVar(&archiveRedistId, "redistributable", "", "Owning redistributable id")
	archiveUploadCmd.Flags().StringVarP(&archiveVersion, "version", "v", "", "Archive version label")
	archiveUploadCmd.Flags().StringVar(&archiveChangelog, "changelog", "", "Changelog text for this version")
	archiveUploadCmd.Flags().BoolVar(&archiveYesConfirm, "yes", false, "Auto-confirm the in-place rebuild (non-interactive)")

	RootCmd.AddCommand(archiveCmd)
}
