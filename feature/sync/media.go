package sync

import (
	"bytes"
	"context"
	"fmt"
	"hash/crc32"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"catalog-manager/core/manifest"
	"catalog-manager/core/storage"
	"catalog-manager/feature/catalog"
	"catalog-manager/feature/catalog/models"
)

// MediaRecord pairs a manifest media record with the manifest of the game
// that owns it. Media never travels alone; the owner pointer is how batch
// suppression recognizes the game.
type MediaRecord struct {
	Media manifest.Media
	Owner *manifest.Game
}

// MediaImporter imports media metadata and, when the record names a
// SourceUrl, fetches the binary and stores it under media/<FileId>.
//
// When the owning game is queued in the same batch the importer skips: the
// game importer reconciles the media rows itself.
type MediaImporter struct {
	store  *catalog.Store
	client storage.Client
	bucket string
	http   *http.Client
	logger *zap.Logger
}

func NewMediaImporter(store *catalog.Store, client storage.Client, bucket string, httpClient *http.Client, logger *zap.Logger) *MediaImporter {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &MediaImporter{store: store, client: client, bucket: bucket, http: httpClient, logger: logger}
}

func (i *MediaImporter) Name() string {
	return "Media"
}

func (i *MediaImporter) Key(record any) string {
	return "Media/" + record.(*MediaRecord).Media.Id.String()
}

func (i *MediaImporter) Display(record any) string {
	rec := record.(*MediaRecord)
	if rec.Owner != nil {
		return rec.Owner.Title + " " + rec.Media.Type
	}
	return rec.Media.Type
}

func (i *MediaImporter) CanImport(ctx context.Context, batch *ImportContext, record any) (bool, error) {
	rec := record.(*MediaRecord)
	if rec.Media.Id == uuid.Nil {
		return false, invalidError("media record has no id")
	}
	if rec.Owner == nil {
		return false, invalidError("media record has no owning game")
	}
	if batch.InQueue(rec.Owner, "Game") {
		// The game importer owns the write this batch.
		return false, nil
	}
	existing, err := catalog.FindById[models.Media](ctx, i.store, rec.Media.Id)
	if err != nil {
		return false, storageError("media lookup failed", err)
	}
	if existing == nil {
		return true, nil
	}
	return rec.Media.UpdatedOn.After(existing.ImportedOn), nil
}

func (i *MediaImporter) Exists(ctx context.Context, record any) (bool, error) {
	existing, err := catalog.FindById[models.Media](ctx, i.store, record.(*MediaRecord).Media.Id)
	if err != nil {
		return false, storageError("media lookup failed", err)
	}
	return existing != nil, nil
}

func (i *MediaImporter) Add(ctx context.Context, _ *ImportContext, record any) error {
	rec := record.(*MediaRecord)
	game, err := catalog.FindById[models.Game](ctx, i.store, rec.Owner.Id)
	if err != nil {
		return storageError("game lookup failed", err)
	}
	if game == nil {
		return notFoundError("owning game is not in the catalog")
	}

	m := &models.Media{
		Base:   models.Base{Id: rec.Media.Id, CreatedOn: rec.Media.CreatedOn},
		GameId: game.Id,
	}
	applyMedia(m, rec.Media, time.Now().UTC())
	if m.SourceUrl != "" {
		if err := i.download(ctx, m); err != nil {
			return err
		}
	}
	return catalog.Save(ctx, i.store, m)
}

func (i *MediaImporter) Update(ctx context.Context, _ *ImportContext, record any) error {
	rec := record.(*MediaRecord)
	m, err := catalog.FindById[models.Media](ctx, i.store, rec.Media.Id)
	if err != nil {
		return storageError("media lookup failed", err)
	}
	if m == nil {
		return notFoundError("media vanished during import")
	}

	refetch := m.SourceUrl != "" && rec.Media.Crc32 != m.Crc32
	applyMedia(m, rec.Media, time.Now().UTC())
	if refetch {
		if err := i.download(ctx, m); err != nil {
			return err
		}
	}
	return catalog.Save(ctx, i.store, m)
}

// download fetches the media binary from its source url, stores it under the
// media prefix, and records the fetched checksum and mime type.
func (i *MediaImporter) download(ctx context.Context, m *models.Media) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.SourceUrl, nil)
	if err != nil {
		return invalidError("bad media source url")
	}
	resp, err := i.http.Do(req)
	if err != nil {
		return storageError("media download failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return storageError("media download failed", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return storageError("media download failed", err)
	}

	m.Crc32 = fmt.Sprintf("%08X", crc32.ChecksumIEEE(body))
	if m.MimeType == "" {
		m.MimeType = resp.Header.Get("Content-Type")
	}

	key := storage.MediaPrefix + m.FileId.String()
	_, err = i.client.PutObject(ctx, i.bucket, key, bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: m.MimeType})
	if err != nil {
		return storageError("failed to store media binary", err)
	}
	i.logger.Debug("stored media binary", zap.String("key", key), zap.Int("size", len(body)))
	return nil
}
