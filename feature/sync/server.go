package sync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"catalog-manager/core/manifest"
	"catalog-manager/feature/catalog"
	"catalog-manager/feature/catalog/models"
)

// ServerImporter imports dedicated game server definitions. A server that
// references a game requires the game to be in the catalog already; game
// packages therefore import before server packages.
type ServerImporter struct {
	store *catalog.Store
}

func NewServerImporter(store *catalog.Store) *ServerImporter {
	return &ServerImporter{store: store}
}

func (i *ServerImporter) Name() string {
	return "Server"
}

func (i *ServerImporter) Key(record any) string {
	return "Server/" + record.(*manifest.Server).Id.String()
}

func (i *ServerImporter) Display(record any) string {
	return record.(*manifest.Server).Name
}

func (i *ServerImporter) CanImport(ctx context.Context, _ *ImportContext, record any) (bool, error) {
	rec := record.(*manifest.Server)
	if rec.Id == uuid.Nil {
		return false, invalidError("server record has no id")
	}
	if rec.Name == "" {
		return false, invalidError("server record has no name")
	}
	existing, err := catalog.FindById[models.Server](ctx, i.store, rec.Id)
	if err != nil {
		return false, storageError("server lookup failed", err)
	}
	if existing == nil {
		return true, nil
	}
	return rec.UpdatedOn.After(existing.ImportedOn), nil
}

func (i *ServerImporter) Exists(ctx context.Context, record any) (bool, error) {
	existing, err := catalog.FindById[models.Server](ctx, i.store, record.(*manifest.Server).Id)
	if err != nil {
		return false, storageError("server lookup failed", err)
	}
	return existing != nil, nil
}

func (i *ServerImporter) Add(ctx context.Context, _ *ImportContext, record any) error {
	rec := record.(*manifest.Server)
	srv := &models.Server{Base: models.Base{Id: rec.Id}}
	return i.write(ctx, srv, rec)
}

func (i *ServerImporter) Update(ctx context.Context, _ *ImportContext, record any) error {
	rec := record.(*manifest.Server)
	srv, err := i.store.ServerById(ctx, rec.Id)
	if err != nil {
		return storageError("server lookup failed", err)
	}
	if srv == nil {
		return notFoundError("server vanished during import")
	}
	return i.write(ctx, srv, rec)
}

func (i *ServerImporter) write(ctx context.Context, srv *models.Server, rec *manifest.Server) error {
	now := time.Now().UTC()
	srv.CreatedOn = rec.CreatedOn
	srv.UpdatedOn = rec.UpdatedOn
	srv.ImportedOn = now
	srv.Name = rec.Name
	srv.Path = rec.Path
	srv.Arguments = rec.Arguments
	srv.WorkingDirectory = rec.WorkingDirectory
	srv.Host = rec.Host
	srv.Port = rec.Port
	srv.Autostart = rec.Autostart

	if rec.GameId != uuid.Nil {
		game, err := catalog.FindById[models.Game](ctx, i.store, rec.GameId)
		if err != nil {
			return storageError("game lookup failed", err)
		}
		if game == nil {
			return notFoundError("referenced game is not in the catalog")
		}
		srv.GameId = &game.Id
	} else {
		srv.GameId = nil
	}

	srv.Scripts = syncScripts(srv.Scripts, rec.Scripts, now,
		func(s *models.Script) { s.ServerId = &srv.Id })

	if err := i.store.SaveServer(ctx, srv); err != nil {
		return storageError("failed to save server", err)
	}
	return nil
}
