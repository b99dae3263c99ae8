package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"catalog-manager/core/manifest"
	"catalog-manager/core/reconcile"
	"catalog-manager/feature/catalog"
	"catalog-manager/feature/catalog/models"
)

// GameImporter imports the central game record. It reconciles every declared
// relationship in one pass: the lookup many-to-manys follow the manifest's
// name lists, the owned collections (modes, media, archives, scripts) are
// matched by their natural keys and synchronized create/update/remove.
type GameImporter struct {
	store  *catalog.Store
	logger *zap.Logger
}

func NewGameImporter(store *catalog.Store, logger *zap.Logger) *GameImporter {
	return &GameImporter{store: store, logger: logger}
}

func (i *GameImporter) Name() string {
	return "Game"
}

func (i *GameImporter) Key(record any) string {
	return "Game/" + record.(*manifest.Game).Id.String()
}

func (i *GameImporter) Display(record any) string {
	return record.(*manifest.Game).Title
}

func (i *GameImporter) CanImport(ctx context.Context, _ *ImportContext, record any) (bool, error) {
	rec := record.(*manifest.Game)
	if rec.Id == uuid.Nil {
		return false, invalidError("game record has no id")
	}
	if rec.Title == "" {
		return false, invalidError("game record has no title")
	}
	existing, err := catalog.FindById[models.Game](ctx, i.store, rec.Id)
	if err != nil {
		return false, storageError("game lookup failed", err)
	}
	if existing == nil {
		return true, nil
	}
	return rec.UpdatedOn.After(existing.ImportedOn), nil
}

func (i *GameImporter) Exists(ctx context.Context, record any) (bool, error) {
	existing, err := catalog.FindById[models.Game](ctx, i.store, record.(*manifest.Game).Id)
	if err != nil {
		return false, storageError("game lookup failed", err)
	}
	return existing != nil, nil
}

func (i *GameImporter) Add(ctx context.Context, batch *ImportContext, record any) error {
	rec := record.(*manifest.Game)
	game := &models.Game{Base: models.Base{Id: rec.Id}}
	return i.write(ctx, batch, game, rec)
}

func (i *GameImporter) Update(ctx context.Context, batch *ImportContext, record any) error {
	rec := record.(*manifest.Game)
	game, err := i.store.GameById(ctx, rec.Id)
	if err != nil {
		return storageError("game lookup failed", err)
	}
	if game == nil {
		return notFoundError("game vanished during import")
	}
	return i.write(ctx, batch, game, rec)
}

func (i *GameImporter) write(ctx context.Context, batch *ImportContext, game *models.Game, rec *manifest.Game) error {
	now := time.Now().UTC()

	game.CreatedOn = rec.CreatedOn
	game.UpdatedOn = rec.UpdatedOn
	game.ImportedOn = now
	game.Title = rec.Title
	game.SortTitle = rec.SortTitle
	game.Description = rec.Description
	game.Notes = rec.Notes
	game.ReleasedOn = rec.ReleasedOn

	if err := i.applyEngine(ctx, game, rec, now); err != nil {
		return err
	}
	i.applyRelations(ctx, game, rec, now)

	if err := i.store.SaveGame(ctx, game); err != nil {
		return storageError("failed to save game", err)
	}
	if err := i.store.AddToLibrary(ctx, batch.Library(), game); err != nil {
		return storageError("failed to register game in library", err)
	}
	return nil
}

func (i *GameImporter) applyEngine(ctx context.Context, game *models.Game, rec *manifest.Game, now time.Time) error {
	if rec.Engine == "" {
		game.EngineId = nil
		game.Engine = nil
		return nil
	}
	eng, err := catalog.FindByName[models.Engine](ctx, i.store, rec.Engine)
	if err != nil {
		return storageError("engine lookup failed", err)
	}
	if eng == nil {
		eng = &models.Engine{Name: rec.Engine}
		eng.CreatedOn = rec.CreatedOn
		eng.UpdatedOn = rec.UpdatedOn
		eng.ImportedOn = now
		if err := catalog.Save(ctx, i.store, eng); err != nil {
			return storageError("failed to save engine", err)
		}
	}
	game.EngineId = &eng.Id
	game.Engine = eng
	return nil
}

// applyRelations reconciles every relation on the game against the manifest.
// The result slices are the full membership the store replaces the relations
// with, so order inside each slice is not significant.
func (i *GameImporter) applyRelations(ctx context.Context, game *models.Game, rec *manifest.Game, now time.Time) {
	game.Collections, _ = reconcile.SyncNames(game.Collections, rec.Collections,
		func(c models.Collection) string { return c.Name },
		nameFactory(ctx, i.store, rec, now, func(n string) *models.Collection { return &models.Collection{Name: n} }))
	game.Developers, _ = reconcile.SyncNames(game.Developers, rec.Developers,
		func(c models.Company) string { return c.Name },
		nameFactory(ctx, i.store, rec, now, func(n string) *models.Company { return &models.Company{Name: n} }))
	game.Publishers, _ = reconcile.SyncNames(game.Publishers, rec.Publishers,
		func(c models.Company) string { return c.Name },
		nameFactory(ctx, i.store, rec, now, func(n string) *models.Company { return &models.Company{Name: n} }))
	game.Genres, _ = reconcile.SyncNames(game.Genres, rec.Genres,
		func(g models.Genre) string { return g.Name },
		nameFactory(ctx, i.store, rec, now, func(n string) *models.Genre { return &models.Genre{Name: n} }))
	game.Tags, _ = reconcile.SyncNames(game.Tags, rec.Tags,
		func(t models.Tag) string { return t.Name },
		nameFactory(ctx, i.store, rec, now, func(n string) *models.Tag { return &models.Tag{Name: n} }))
	game.Platforms, _ = reconcile.SyncNames(game.Platforms, rec.Platforms,
		func(p models.Platform) string { return p.Name },
		nameFactory(ctx, i.store, rec, now, func(n string) *models.Platform { return &models.Platform{Name: n} }))

	game.MultiplayerModes, _ = reconcile.Sync(game.MultiplayerModes, rec.MultiplayerModes,
		func(l models.MultiplayerMode, r manifest.MultiplayerMode) bool {
			return l.NetworkProtocol == r.NetworkProtocol && l.Type == r.Type
		},
		func(l *models.MultiplayerMode, r manifest.MultiplayerMode) {
			applyMode(l, r, rec, now)
		},
		func(r manifest.MultiplayerMode) models.MultiplayerMode {
			var l models.MultiplayerMode
			l.GameId = game.Id
			l.CreatedOn = rec.CreatedOn
			applyMode(&l, r, rec, now)
			return l
		})

	game.Media, _ = reconcile.Sync(game.Media, rec.Media,
		func(l models.Media, r manifest.Media) bool { return l.Id == r.Id },
		func(l *models.Media, r manifest.Media) { applyMedia(l, r, now) },
		func(r manifest.Media) models.Media {
			l := models.Media{Base: models.Base{Id: r.Id, CreatedOn: r.CreatedOn}, GameId: game.Id}
			applyMedia(&l, r, now)
			return l
		})

	game.Archives, _ = reconcile.Sync(game.Archives, rec.Archives,
		func(l models.Archive, r manifest.Archive) bool { return l.Id == r.Id },
		func(l *models.Archive, r manifest.Archive) { applyArchive(l, r, now) },
		func(r manifest.Archive) models.Archive {
			l := models.Archive{Base: models.Base{Id: r.Id, CreatedOn: r.CreatedOn}, GameId: &game.Id}
			applyArchive(&l, r, now)
			return l
		})

	game.Scripts, _ = reconcile.Sync(game.Scripts, rec.Scripts,
		func(l models.Script, r manifest.Script) bool { return l.Id == r.Id },
		func(l *models.Script, r manifest.Script) { applyScript(l, r, now) },
		func(r manifest.Script) models.Script {
			l := models.Script{Base: models.Base{Id: r.Id, CreatedOn: r.CreatedOn}, GameId: &game.Id}
			applyScript(&l, r, now)
			return l
		})
}

// nameFactory resolves a lookup member by name, falling back to a fresh model
// inheriting the owning manifest's clocks. The lookup importers run earlier in
// the batch, so the find normally hits.
func nameFactory[T any](ctx context.Context, store *catalog.Store, rec *manifest.Game, now time.Time, build func(string) *T) func(string) T {
	return func(name string) T {
		if existing, err := catalog.FindByName[T](ctx, store, name); err == nil && existing != nil {
			return *existing
		}
		m := build(name)
		b := meta(m)
		b.CreatedOn = rec.CreatedOn
		b.UpdatedOn = rec.UpdatedOn
		b.ImportedOn = now
		return *m
	}
}

func applyMode(l *models.MultiplayerMode, r manifest.MultiplayerMode, rec *manifest.Game, now time.Time) {
	l.Type = r.Type
	l.NetworkProtocol = r.NetworkProtocol
	l.Description = r.Description
	l.MinPlayers = r.MinPlayers
	l.MaxPlayers = r.MaxPlayers
	l.Spectators = r.Spectators
	// Modes carry no clocks of their own; the owning game's travel with them.
	l.UpdatedOn = rec.UpdatedOn
	l.ImportedOn = now
}

func applyMedia(l *models.Media, r manifest.Media, now time.Time) {
	l.FileId = r.FileId
	l.Type = r.Type
	l.SourceUrl = r.SourceUrl
	l.MimeType = r.MimeType
	l.Crc32 = r.Crc32
	l.UpdatedOn = r.UpdatedOn
	l.ImportedOn = now
}

func applyArchive(l *models.Archive, r manifest.Archive, now time.Time) {
	l.ObjectKey = r.ObjectKey
	l.Version = r.Version
	l.Changelog = r.Changelog
	l.CompressedSize = r.CompressedSize
	l.UpdatedOn = r.UpdatedOn
	l.ImportedOn = now
}

func applyScript(l *models.Script, r manifest.Script, now time.Time) {
	l.Type = r.Type
	l.Name = r.Name
	l.RequiresAdmin = r.RequiresAdmin
	l.UpdatedOn = r.UpdatedOn
	l.ImportedOn = now
}
