package sync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"catalog-manager/core/manifest"
	"catalog-manager/feature/catalog"
	"catalog-manager/feature/catalog/models"
)

// RedistributableImporter imports shared runtime dependencies. The manifest
// carries no id for them; the match is by case-sensitive name, so two servers
// exporting "DirectX 9.0c" converge on one local row.
type RedistributableImporter struct {
	store *catalog.Store
}

func NewRedistributableImporter(store *catalog.Store) *RedistributableImporter {
	return &RedistributableImporter{store: store}
}

func (i *RedistributableImporter) Name() string {
	return "Redistributable"
}

func (i *RedistributableImporter) Key(record any) string {
	return "Redistributable/" + record.(*manifest.Redistributable).Name
}

func (i *RedistributableImporter) Display(record any) string {
	return record.(*manifest.Redistributable).Name
}

func (i *RedistributableImporter) CanImport(ctx context.Context, _ *ImportContext, record any) (bool, error) {
	rec := record.(*manifest.Redistributable)
	if rec.Name == "" {
		return false, invalidError("redistributable record has no name")
	}
	existing, err := i.store.RedistributableByName(ctx, rec.Name)
	if err != nil {
		return false, storageError("redistributable lookup failed", err)
	}
	if existing == nil {
		return true, nil
	}
	return rec.UpdatedOn.After(existing.ImportedOn), nil
}

func (i *RedistributableImporter) Exists(ctx context.Context, record any) (bool, error) {
	existing, err := i.store.RedistributableByName(ctx, record.(*manifest.Redistributable).Name)
	if err != nil {
		return false, storageError("redistributable lookup failed", err)
	}
	return existing != nil, nil
}

func (i *RedistributableImporter) Add(ctx context.Context, _ *ImportContext, record any) error {
	rec := record.(*manifest.Redistributable)
	redist := &models.Redistributable{Name: rec.Name}
	// Assigned up front so owned archives and scripts can reference it.
	redist.Id = uuid.New()
	redist.CreatedOn = rec.CreatedOn
	return i.write(ctx, redist, rec)
}

func (i *RedistributableImporter) Update(ctx context.Context, _ *ImportContext, record any) error {
	rec := record.(*manifest.Redistributable)
	redist, err := i.store.RedistributableByName(ctx, rec.Name)
	if err != nil {
		return storageError("redistributable lookup failed", err)
	}
	if redist == nil {
		return notFoundError("redistributable vanished during import")
	}
	return i.write(ctx, redist, rec)
}

func (i *RedistributableImporter) write(ctx context.Context, redist *models.Redistributable, rec *manifest.Redistributable) error {
	now := time.Now().UTC()
	redist.UpdatedOn = rec.UpdatedOn
	redist.ImportedOn = now
	redist.Description = rec.Description
	redist.Notes = rec.Notes

	redist.Archives = syncArchives(redist.Archives, rec.Archives, now,
		func(a *models.Archive) { a.RedistributableId = &redist.Id })
	redist.Scripts = syncScripts(redist.Scripts, rec.Scripts, now,
		func(s *models.Script) { s.RedistributableId = &redist.Id })

	if err := i.store.SaveRedistributable(ctx, redist); err != nil {
		return storageError("failed to save redistributable", err)
	}
	return nil
}
