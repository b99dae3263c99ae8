package sync

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"catalog-manager/core/manifest"
	"catalog-manager/core/server"
	"catalog-manager/core/storage"
	"catalog-manager/feature/catalog"
	"catalog-manager/feature/catalog/models"
)

// Service orchestrates package import and export.
type Service struct {
	store  *catalog.Store
	client storage.Client
	bucket string
	srvCfg server.Config
	logger *zap.Logger
}

func NewService(store *catalog.Store, client storage.Client, bucket string, srvCfg server.Config, logger *zap.Logger) *Service {
	return &Service{store: store, client: client, bucket: bucket, srvCfg: srvCfg, logger: logger}
}

// ImportStaged imports a previously uploaded package by its staging key and
// removes the staged file once the batch has run.
func (s *Service) ImportStaged(ctx context.Context, objectKey string, typ manifest.EntityType) (*Report, error) {
	path := s.srvCfg.StagedPath(objectKey)
	if path == "" {
		return nil, fmt.Errorf("invalid object key %q", objectKey)
	}
	report, err := s.ImportPackageFile(ctx, path, typ)
	if err == nil {
		if rmErr := os.Remove(path); rmErr != nil {
			s.logger.Warn("failed to remove staged package", zap.String("path", path), zap.Error(rmErr))
		}
	}
	return report, err
}

// ImportPackageFile opens the package at path and runs one import batch for
// the entity graph its manifest declares. A batch error (unreadable package,
// bad manifest) is returned; per-entity failures land in the report.
func (s *Service) ImportPackageFile(ctx context.Context, path string, typ manifest.EntityType) (*Report, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("unknown entity type %q", typ)
	}

	pkg, err := OpenPackage(path)
	if err != nil {
		return nil, err
	}
	defer pkg.Close()

	mr, err := pkg.Manifest()
	if err != nil {
		return nil, err
	}
	defer mr.Close()

	lib, err := s.store.DefaultLibrary(ctx)
	if err != nil {
		s.logger.Warn("library unavailable, importing without registration", zap.Error(err))
		lib = nil
	}
	batch := NewImportContext(lib)

	switch typ {
	case manifest.TypeGame:
		rec, err := manifest.Decode[manifest.Game](mr)
		if err != nil {
			return nil, err
		}
		return s.importGame(ctx, batch, rec, pkg), nil
	case manifest.TypeTool:
		rec, err := manifest.Decode[manifest.Tool](mr)
		if err != nil {
			return nil, err
		}
		return s.importTool(ctx, batch, rec, pkg), nil
	case manifest.TypeServer:
		rec, err := manifest.Decode[manifest.Server](mr)
		if err != nil {
			return nil, err
		}
		return s.importServer(ctx, batch, rec, pkg), nil
	case manifest.TypeRedistributable:
		rec, err := manifest.Decode[manifest.Redistributable](mr)
		if err != nil {
			return nil, err
		}
		return s.importRedistributable(ctx, batch, rec, pkg), nil
	}
	return nil, fmt.Errorf("unknown entity type %q", typ)
}

// importGame runs the fixed, dependency-ordered import sequence for one game
// package: lookup entities first, then multiplayer modes, the game itself,
// media, and finally the binary payloads. The game is queued up front when
// eligible so the owned-entity importers yield to it.
func (s *Service) importGame(ctx context.Context, batch *ImportContext, rec *manifest.Game, pkg *Package) *Report {
	report := &Report{}
	gameImp := NewGameImporter(s.store, s.logger)

	eligible, gameErr := gameImp.CanImport(ctx, batch, rec)
	var gameItem *ImportItem
	if gameErr == nil && eligible {
		gameItem = &ImportItem{Key: gameImp.Key(rec), Name: rec.Title, Type: gameImp.Name(), Record: rec}
		batch.Enqueue(gameItem)
	}

	runNames := func(imp Importer, names []string) {
		for _, name := range names {
			nameRec := manifest.NameRecord{Name: name, CreatedOn: rec.CreatedOn, UpdatedOn: rec.UpdatedOn}
			report.record(runImporter(ctx, batch, imp, nameRec, s.logger))
		}
	}
	if rec.Engine != "" {
		runNames(NewEngineImporter(s.store), []string{rec.Engine})
	}
	runNames(NewTagImporter(s.store), rec.Tags)
	runNames(NewGenreImporter(s.store), rec.Genres)
	runNames(NewDeveloperImporter(s.store), rec.Developers)
	runNames(NewPublisherImporter(s.store), rec.Publishers)
	runNames(NewCollectionImporter(s.store), rec.Collections)
	runNames(NewPlatformImporter(s.store), rec.Platforms)

	modeImp := NewMultiplayerModeImporter(s.store)
	for idx := range rec.MultiplayerModes {
		record := &ModeRecord{Mode: rec.MultiplayerModes[idx], Owner: rec}
		report.record(runImporter(ctx, batch, modeImp, record, s.logger))
	}

	report.record(s.runGame(ctx, batch, gameImp, gameItem, rec, eligible, gameErr))

	mediaImp := NewMediaImporter(s.store, s.client, s.bucket, nil, s.logger)
	for idx := range rec.Media {
		record := &MediaRecord{Media: rec.Media[idx], Owner: rec}
		report.record(runImporter(ctx, batch, mediaImp, record, s.logger))
	}

	s.storeArchivePayloads(ctx, pkg, rec.Archives, report)
	s.storeMediaPayloads(ctx, pkg, mediaImp, rec.Media, report)
	s.storeScriptContents(ctx, pkg, rec.Scripts, report)
	return report
}

// runGame finishes the game's own import. Its eligibility was decided during
// batch planning, so this mirrors runImporter minus the enqueue.
func (s *Service) runGame(ctx context.Context, batch *ImportContext, imp *GameImporter, item *ImportItem, rec *manifest.Game, eligible bool, planErr error) EntityResult {
	res := EntityResult{Key: imp.Key(rec), Name: rec.Title, Type: imp.Name()}
	if planErr != nil {
		res.Action = ActionFailed
		res.Error = asImportError(planErr)
		return res
	}
	if !eligible {
		res.Action = ActionSkipped
		return res
	}

	exists, err := imp.Exists(ctx, rec)
	if err == nil {
		if exists {
			res.Action = ActionUpdated
			err = imp.Update(ctx, batch, rec)
		} else {
			res.Action = ActionAdded
			err = imp.Add(ctx, batch, rec)
		}
	}
	if err != nil {
		res.Action = ActionFailed
		res.Error = asImportError(err)
		s.logger.Warn("entity import failed", zap.String("key", res.Key), zap.Error(res.Error))
		return res
	}
	item.Processed = true
	return res
}

func (s *Service) importTool(ctx context.Context, batch *ImportContext, rec *manifest.Tool, pkg *Package) *Report {
	report := &Report{}
	report.record(runImporter(ctx, batch, NewToolImporter(s.store, s.logger), rec, s.logger))
	s.storeArchivePayloads(ctx, pkg, rec.Archives, report)
	s.storeScriptContents(ctx, pkg, rec.Scripts, report)
	return report
}

func (s *Service) importServer(ctx context.Context, batch *ImportContext, rec *manifest.Server, pkg *Package) *Report {
	report := &Report{}
	report.record(runImporter(ctx, batch, NewServerImporter(s.store), rec, s.logger))
	s.storeScriptContents(ctx, pkg, rec.Scripts, report)

	// Working files land under the server's own directory.
	dest := filepath.Join(s.srvCfg.ServerFilesDir, rec.Id.String())
	if err := pkg.ExtractDir(manifest.FilesPrefix, dest); err != nil {
		report.record(EntityResult{
			Key:    "ServerFiles/" + rec.Id.String(),
			Name:   rec.Name,
			Type:   "ServerFiles",
			Action: ActionFailed,
			Error:  asImportError(err),
		})
	}
	return report
}

func (s *Service) importRedistributable(ctx context.Context, batch *ImportContext, rec *manifest.Redistributable, pkg *Package) *Report {
	report := &Report{}
	report.record(runImporter(ctx, batch, NewRedistributableImporter(s.store), rec, s.logger))
	s.storeArchivePayloads(ctx, pkg, rec.Archives, report)
	s.storeScriptContents(ctx, pkg, rec.Scripts, report)
	return report
}

// storeArchivePayloads moves archive binaries from the package into object
// storage. A manifest archive whose payload is neither in the package nor
// already in storage fails that archive only; the rest of the batch stands.
func (s *Service) storeArchivePayloads(ctx context.Context, pkg *Package, archives []manifest.Archive, report *Report) {
	for _, a := range archives {
		res := EntityResult{Key: "Archive/" + a.ObjectKey, Name: a.Version, Type: "Archive"}
		entry := manifest.ArchivesPrefix + a.ObjectKey
		key := storage.ArchivePrefix + a.ObjectKey

		if !pkg.HasEntry(entry) {
			if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
				res.Action = ActionFailed
				res.Error = notFoundError("archive payload " + a.ObjectKey + " is missing from the package")
				report.record(res)
			}
			continue
		}
		if err := s.storeEntry(ctx, pkg, entry, key, "application/zip"); err != nil {
			res.Action = ActionFailed
			res.Error = storageError("failed to store archive payload", err)
			report.record(res)
		}
	}
}

func (s *Service) storeMediaPayloads(ctx context.Context, pkg *Package, imp *MediaImporter, media []manifest.Media, report *Report) {
	for _, m := range media {
		entry := manifest.MediaPrefix + m.FileId.String()
		key := storage.MediaPrefix + m.FileId.String()

		if !pkg.HasEntry(entry) {
			if err := s.resolveMissingMedia(ctx, imp, m, key); err != nil {
				report.record(EntityResult{
					Key:    "MediaFile/" + m.FileId.String(),
					Name:   m.Type,
					Type:   "MediaFile",
					Action: ActionFailed,
					Error:  asImportError(err),
				})
			}
			continue
		}
		if err := s.storeEntry(ctx, pkg, entry, key, m.MimeType); err != nil {
			report.record(EntityResult{
				Key:    "MediaFile/" + m.FileId.String(),
				Name:   m.Type,
				Type:   "MediaFile",
				Action: ActionFailed,
				Error:  storageError("failed to store media payload", err),
			})
		}
	}
}

// resolveMissingMedia covers media whose binary did not travel in the
// package: the object may already be in storage from an earlier sync, or the
// record names a source url to fetch from. The game importer writes only the
// metadata row when it owns the media this batch, so the fetch happens here.
func (s *Service) resolveMissingMedia(ctx context.Context, imp *MediaImporter, m manifest.Media, key string) error {
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err == nil {
		return nil
	}
	if m.SourceUrl == "" {
		return notFoundError("media payload " + m.FileId.String() + " is missing from the package")
	}

	row, err := catalog.FindById[models.Media](ctx, s.store, m.Id)
	if err != nil {
		return storageError("media lookup failed", err)
	}
	if row == nil {
		// The owning game was skipped this batch; keep what we have.
		return nil
	}
	if err := imp.download(ctx, row); err != nil {
		return err
	}
	return catalog.Save(ctx, s.store, row)
}

// storeScriptContents reads script bodies from the package and persists them
// on the already-imported script rows. A package without script entries is a
// metadata-only sync; nothing to do.
func (s *Service) storeScriptContents(ctx context.Context, pkg *Package, scripts []manifest.Script, report *Report) {
	for _, sc := range scripts {
		entry := manifest.ScriptsPrefix + sc.Id.String()
		if !pkg.HasEntry(entry) {
			continue
		}
		rd, err := pkg.Entry(entry)
		if err == nil {
			var body []byte
			body, err = io.ReadAll(rd)
			rd.Close()
			if err == nil {
				err = s.saveScriptContents(ctx, sc.Id, string(body))
			}
		}
		if err != nil {
			report.record(EntityResult{
				Key:    "ScriptContents/" + sc.Id.String(),
				Name:   sc.Name,
				Type:   "ScriptContents",
				Action: ActionFailed,
				Error:  asImportError(err),
			})
		}
	}
}

func (s *Service) saveScriptContents(ctx context.Context, id uuid.UUID, contents string) error {
	script, err := catalog.FindById[models.Script](ctx, s.store, id)
	if err != nil {
		return storageError("script lookup failed", err)
	}
	if script == nil {
		// The owning entity was skipped this batch; keep what we have.
		return nil
	}
	script.Contents = contents
	return catalog.Save(ctx, s.store, script)
}

func (s *Service) storeEntry(ctx context.Context, pkg *Package, entry, key, contentType string) error {
	rd, err := pkg.Entry(entry)
	if err != nil {
		return err
	}
	defer rd.Close()
	_, err = s.client.PutObject(ctx, s.bucket, key, rd, -1, minio.PutObjectOptions{ContentType: contentType})
	return err
}
