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

// ToolImporter imports standalone tools. A tool's manifest references its
// associated games by id; references to games the catalog does not have are
// dropped with a warning rather than failing the tool.
type ToolImporter struct {
	store  *catalog.Store
	logger *zap.Logger
}

func NewToolImporter(store *catalog.Store, logger *zap.Logger) *ToolImporter {
	return &ToolImporter{store: store, logger: logger}
}

func (i *ToolImporter) Name() string {
	return "Tool"
}

func (i *ToolImporter) Key(record any) string {
	return "Tool/" + record.(*manifest.Tool).Id.String()
}

func (i *ToolImporter) Display(record any) string {
	return record.(*manifest.Tool).Name
}

func (i *ToolImporter) CanImport(ctx context.Context, _ *ImportContext, record any) (bool, error) {
	rec := record.(*manifest.Tool)
	if rec.Id == uuid.Nil {
		return false, invalidError("tool record has no id")
	}
	if rec.Name == "" {
		return false, invalidError("tool record has no name")
	}
	existing, err := catalog.FindById[models.Tool](ctx, i.store, rec.Id)
	if err != nil {
		return false, storageError("tool lookup failed", err)
	}
	if existing == nil {
		return true, nil
	}
	return rec.UpdatedOn.After(existing.ImportedOn), nil
}

func (i *ToolImporter) Exists(ctx context.Context, record any) (bool, error) {
	existing, err := catalog.FindById[models.Tool](ctx, i.store, record.(*manifest.Tool).Id)
	if err != nil {
		return false, storageError("tool lookup failed", err)
	}
	return existing != nil, nil
}

func (i *ToolImporter) Add(ctx context.Context, _ *ImportContext, record any) error {
	rec := record.(*manifest.Tool)
	tool := &models.Tool{Base: models.Base{Id: rec.Id}}
	return i.write(ctx, tool, rec)
}

func (i *ToolImporter) Update(ctx context.Context, _ *ImportContext, record any) error {
	rec := record.(*manifest.Tool)
	tool, err := i.store.ToolById(ctx, rec.Id)
	if err != nil {
		return storageError("tool lookup failed", err)
	}
	if tool == nil {
		return notFoundError("tool vanished during import")
	}
	return i.write(ctx, tool, rec)
}

func (i *ToolImporter) write(ctx context.Context, tool *models.Tool, rec *manifest.Tool) error {
	now := time.Now().UTC()
	tool.CreatedOn = rec.CreatedOn
	tool.UpdatedOn = rec.UpdatedOn
	tool.ImportedOn = now
	tool.Name = rec.Name
	tool.Description = rec.Description

	games, err := i.resolveGames(ctx, rec)
	if err != nil {
		return err
	}
	tool.Games, _ = reconcile.Sync(tool.Games, games,
		func(l models.Game, r models.Game) bool { return l.Id == r.Id },
		func(*models.Game, models.Game) {},
		func(r models.Game) models.Game { return r })

	tool.Archives = syncArchives(tool.Archives, rec.Archives, now,
		func(a *models.Archive) { a.ToolId = &tool.Id })
	tool.Scripts = syncScripts(tool.Scripts, rec.Scripts, now,
		func(s *models.Script) { s.ToolId = &tool.Id })

	if err := i.store.SaveTool(ctx, tool); err != nil {
		return storageError("failed to save tool", err)
	}
	return nil
}

func (i *ToolImporter) resolveGames(ctx context.Context, rec *manifest.Tool) ([]models.Game, error) {
	games := make([]models.Game, 0, len(rec.Games))
	for _, id := range rec.Games {
		game, err := catalog.FindById[models.Game](ctx, i.store, id)
		if err != nil {
			return nil, storageError("game lookup failed", err)
		}
		if game == nil {
			i.logger.Warn("tool references unknown game",
				zap.String("tool", rec.Name), zap.String("game_id", id.String()))
			continue
		}
		games = append(games, *game)
	}
	return games, nil
}
