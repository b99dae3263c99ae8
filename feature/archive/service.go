package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"catalog-manager/core/server"
	"catalog-manager/core/storage"
	"catalog-manager/feature/catalog"
	"catalog-manager/feature/catalog/models"
)

// UploadRequest describes one staged archive upload. Exactly one owner must
// be set. ObjectKey names the staged file and becomes the object key of the
// uploaded version (or of the patch, when a prior version exists).
type UploadRequest struct {
	ObjectKey         string     `json:"object_key"`
	GameId            *uuid.UUID `json:"game_id,omitempty"`
	RedistributableId *uuid.UUID `json:"redistributable_id,omitempty"`
	Version           string     `json:"version"`
	Changelog         string     `json:"changelog"`
}

// Service owns archive versioning: storing fresh archives, and patching when
// a prior version of the owner's archive exists.
type Service struct {
	store  *catalog.Store
	client storage.Client
	bucket string
	srvCfg server.Config
	logger *zap.Logger

	mu    gosync.Mutex
	locks map[string]*gosync.Mutex
}

func NewService(store *catalog.Store, client storage.Client, bucket string, srvCfg server.Config, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		client: client,
		bucket: bucket,
		srvCfg: srvCfg,
		logger: logger,
		locks:  map[string]*gosync.Mutex{},
	}
}

// lock serializes patch operations against one base archive. Locks are tiny
// and uploads are rare, so entries are never evicted.
func (s *Service) lock(objectKey string) func() {
	s.mu.Lock()
	m, ok := s.locks[objectKey]
	if !ok {
		m = &gosync.Mutex{}
		s.locks[objectKey] = m
	}
	s.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// Upload ingests a staged archive for an owner at a version.
//
// With no prior archive the staged file is stored whole. With a prior
// archive the patch engine rebuilds the prior version's object to the new
// full content and reduces the staged file to the delta, which is stored
// under the request's object key; already-synced clients then fetch only the
// delta. A new Archive row is recorded either way.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*models.Archive, error) {
	if (req.GameId == nil) == (req.RedistributableId == nil) {
		return nil, fmt.Errorf("exactly one archive owner is required")
	}
	stagedPath := s.srvCfg.StagedPath(req.ObjectKey)
	if stagedPath == "" {
		return nil, fmt.Errorf("invalid object key %q", req.ObjectKey)
	}
	if _, err := os.Stat(stagedPath); err != nil {
		return nil, fmt.Errorf("staged archive %s is not available: %w", req.ObjectKey, err)
	}

	last, err := s.store.LatestArchive(ctx, req.GameId, req.RedistributableId)
	if err != nil {
		return nil, err
	}

	archive := &models.Archive{
		Base:              models.Base{Id: uuid.New(), CreatedOn: time.Now().UTC(), UpdatedOn: time.Now().UTC()},
		GameId:            req.GameId,
		RedistributableId: req.RedistributableId,
		ObjectKey:         req.ObjectKey,
		Version:           req.Version,
		Changelog:         req.Changelog,
	}

	if last == nil {
		size, err := fileSize(stagedPath)
		if err != nil {
			return nil, err
		}
		key := storage.ArchivePrefix + req.ObjectKey
		if _, err := s.client.FPutObject(ctx, s.bucket, key, stagedPath, minio.PutObjectOptions{ContentType: "application/zip"}); err != nil {
			return nil, fmt.Errorf("failed to store archive: %w", err)
		}
		archive.CompressedSize = size
		s.logger.Info("stored fresh archive", zap.String("key", key), zap.Int64("size", size))
	} else {
		res, err := s.patchAgainst(ctx, last, stagedPath, req.ObjectKey)
		if err != nil {
			return nil, err
		}
		archive.CompressedSize = res.PatchSize

		last.CompressedSize = res.OriginalSize
		if err := catalog.Save(ctx, s.store, last); err != nil {
			return nil, err
		}
		s.logger.Info("patched archive",
			zap.String("base_key", last.ObjectKey),
			zap.String("patch_key", req.ObjectKey),
			zap.Int("added", res.Added),
			zap.Int("changed", res.Changed),
			zap.Int64("patch_size", res.PatchSize))
	}

	if err := catalog.Save(ctx, s.store, archive); err != nil {
		return nil, err
	}
	if err := os.Remove(stagedPath); err != nil {
		s.logger.Warn("failed to remove staged archive", zap.String("path", stagedPath), zap.Error(err))
	}
	return archive, nil
}

// patchAgainst stages the prior version locally, runs the patch engine, and
// writes back both the rebuilt base object and the delta object.
func (s *Service) patchAgainst(ctx context.Context, last *models.Archive, stagedPath, patchKey string) (*PatchResult, error) {
	unlock := s.lock(last.ObjectKey)
	defer unlock()

	workDir, err := os.MkdirTemp(s.srvCfg.WorkDir, "patch-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create patch workspace: %w", err)
	}
	defer os.RemoveAll(workDir)

	basePath := filepath.Join(workDir, "base.zip")
	baseKey := storage.ArchivePrefix + last.ObjectKey
	if err := s.client.FGetObject(ctx, s.bucket, baseKey, basePath, minio.GetObjectOptions{}); err != nil {
		return nil, fmt.Errorf("failed to stage base archive %s: %w", last.ObjectKey, err)
	}

	res, err := Patch(basePath, stagedPath)
	if err != nil {
		return nil, err
	}

	if _, err := s.client.FPutObject(ctx, s.bucket, baseKey, basePath, minio.PutObjectOptions{ContentType: "application/zip"}); err != nil {
		return nil, fmt.Errorf("failed to store rebuilt base archive: %w", err)
	}
	if _, err := s.client.FPutObject(ctx, s.bucket, storage.ArchivePrefix+patchKey, stagedPath, minio.PutObjectOptions{ContentType: "application/zip"}); err != nil {
		return nil, fmt.Errorf("failed to store patch archive: %w", err)
	}
	return res, nil
}

// Download streams a stored archive by object key.
func (s *Service) Download(ctx context.Context, objectKey string) (*models.Archive, string, error) {
	archive, err := s.store.ArchiveByObjectKey(ctx, objectKey)
	if err != nil {
		return nil, "", err
	}
	if archive == nil {
		return nil, "", nil
	}
	return archive, storage.ArchivePrefix + archive.ObjectKey, nil
}
