package sync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"catalog-manager/core/manifest"
	"catalog-manager/feature/catalog"
	"catalog-manager/feature/catalog/models"
)

// ModeRecord pairs a multiplayer mode with the manifest of its owning game.
type ModeRecord struct {
	Mode  manifest.MultiplayerMode
	Owner *manifest.Game
}

// MultiplayerModeImporter imports one mode against an already-cataloged game.
// Modes have no id; the natural key is (NetworkProtocol, Type) within the
// owning game. Like media, the importer yields to the game importer when the
// game is queued in the same batch.
type MultiplayerModeImporter struct {
	store *catalog.Store
}

func NewMultiplayerModeImporter(store *catalog.Store) *MultiplayerModeImporter {
	return &MultiplayerModeImporter{store: store}
}

func (i *MultiplayerModeImporter) Name() string {
	return "MultiplayerMode"
}

func (i *MultiplayerModeImporter) Key(record any) string {
	rec := record.(*ModeRecord)
	owner := uuid.Nil
	if rec.Owner != nil {
		owner = rec.Owner.Id
	}
	return "MultiplayerMode/" + owner.String() + "/" + rec.Mode.NetworkProtocol + "+" + rec.Mode.Type
}

func (i *MultiplayerModeImporter) Display(record any) string {
	rec := record.(*ModeRecord)
	return rec.Mode.NetworkProtocol + " " + rec.Mode.Type
}

func (i *MultiplayerModeImporter) CanImport(ctx context.Context, batch *ImportContext, record any) (bool, error) {
	rec := record.(*ModeRecord)
	if rec.Owner == nil {
		return false, invalidError("mode record has no owning game")
	}
	if rec.Mode.Type == "" {
		return false, invalidError("mode record has no type")
	}
	if batch.InQueue(rec.Owner, "Game") {
		return false, nil
	}
	existing, err := i.find(ctx, rec)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return true, nil
	}
	// Modes inherit the owning manifest's clock.
	return rec.Owner.UpdatedOn.After(existing.ImportedOn), nil
}

func (i *MultiplayerModeImporter) Exists(ctx context.Context, record any) (bool, error) {
	existing, err := i.find(ctx, record.(*ModeRecord))
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

func (i *MultiplayerModeImporter) Add(ctx context.Context, _ *ImportContext, record any) error {
	rec := record.(*ModeRecord)
	game, err := catalog.FindById[models.Game](ctx, i.store, rec.Owner.Id)
	if err != nil {
		return storageError("game lookup failed", err)
	}
	if game == nil {
		return notFoundError("owning game is not in the catalog")
	}

	mode := &models.MultiplayerMode{GameId: game.Id}
	mode.CreatedOn = rec.Owner.CreatedOn
	applyMode(mode, rec.Mode, rec.Owner, time.Now().UTC())
	return catalog.Save(ctx, i.store, mode)
}

func (i *MultiplayerModeImporter) Update(ctx context.Context, _ *ImportContext, record any) error {
	rec := record.(*ModeRecord)
	mode, err := i.find(ctx, rec)
	if err != nil {
		return err
	}
	if mode == nil {
		return notFoundError("mode vanished during import")
	}
	applyMode(mode, rec.Mode, rec.Owner, time.Now().UTC())
	return catalog.Save(ctx, i.store, mode)
}

func (i *MultiplayerModeImporter) find(ctx context.Context, rec *ModeRecord) (*models.MultiplayerMode, error) {
	modes, err := i.store.ModesForGame(ctx, rec.Owner.Id)
	if err != nil {
		return nil, storageError("mode lookup failed", err)
	}
	for idx := range modes {
		if modes[idx].NetworkProtocol == rec.Mode.NetworkProtocol && modes[idx].Type == rec.Mode.Type {
			return &modes[idx], nil
		}
	}
	return nil, nil
}
