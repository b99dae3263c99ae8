package sync

import (
	"context"
	"time"

	"catalog-manager/core/manifest"
	"catalog-manager/feature/catalog"
	"catalog-manager/feature/catalog/models"
)

// lookupImporter handles the name-keyed lookup entities (collections,
// companies, engines, genres, platforms, tags). All six behave identically:
// match by case-sensitive name, inherit the owning manifest's clocks.
type lookupImporter[T any] struct {
	typeName string
	store    *catalog.Store
	find     func(ctx context.Context, name string) (*T, error)
	create   func(name string) *T
}

func (i *lookupImporter[T]) Name() string {
	return i.typeName
}

func (i *lookupImporter[T]) Key(record any) string {
	return i.typeName + "/" + record.(manifest.NameRecord).Name
}

func (i *lookupImporter[T]) Display(record any) string {
	return record.(manifest.NameRecord).Name
}

func (i *lookupImporter[T]) CanImport(ctx context.Context, _ *ImportContext, record any) (bool, error) {
	rec := record.(manifest.NameRecord)
	if rec.Name == "" {
		return false, invalidError("empty name")
	}
	existing, err := i.find(ctx, rec.Name)
	if err != nil {
		return false, storageError("lookup failed", err)
	}
	if existing == nil {
		return true, nil
	}
	return rec.UpdatedOn.After(meta(existing).ImportedOn), nil
}

func (i *lookupImporter[T]) Exists(ctx context.Context, record any) (bool, error) {
	existing, err := i.find(ctx, record.(manifest.NameRecord).Name)
	if err != nil {
		return false, storageError("lookup failed", err)
	}
	return existing != nil, nil
}

func (i *lookupImporter[T]) Add(ctx context.Context, _ *ImportContext, record any) error {
	rec := record.(manifest.NameRecord)
	m := i.create(rec.Name)
	b := meta(m)
	b.CreatedOn = rec.CreatedOn
	b.UpdatedOn = rec.UpdatedOn
	b.ImportedOn = time.Now().UTC()
	return catalog.Save(ctx, i.store, m)
}

func (i *lookupImporter[T]) Update(ctx context.Context, _ *ImportContext, record any) error {
	rec := record.(manifest.NameRecord)
	existing, err := i.find(ctx, rec.Name)
	if err != nil {
		return storageError("lookup failed", err)
	}
	if existing == nil {
		return notFoundError("entity vanished during import")
	}
	b := meta(existing)
	b.UpdatedOn = rec.UpdatedOn
	b.ImportedOn = time.Now().UTC()
	return catalog.Save(ctx, i.store, existing)
}

// meta reaches the Base fields of any catalog model.
func meta(m any) *models.Base {
	return m.(models.Entity).Meta()
}

func newLookupImporter[T any](typeName string, store *catalog.Store, create func(name string) *T) *lookupImporter[T] {
	return &lookupImporter[T]{
		typeName: typeName,
		store:    store,
		find: func(ctx context.Context, name string) (*T, error) {
			return catalog.FindByName[T](ctx, store, name)
		},
		create: create,
	}
}

func NewCollectionImporter(store *catalog.Store) Importer {
	return newLookupImporter("Collection", store, func(name string) *models.Collection {
		return &models.Collection{Name: name}
	})
}

// Developers and publishers share the company table; only the queue type
// differs.

func NewDeveloperImporter(store *catalog.Store) Importer {
	return newLookupImporter("Developer", store, func(name string) *models.Company {
		return &models.Company{Name: name}
	})
}

func NewPublisherImporter(store *catalog.Store) Importer {
	return newLookupImporter("Publisher", store, func(name string) *models.Company {
		return &models.Company{Name: name}
	})
}

func NewEngineImporter(store *catalog.Store) Importer {
	return newLookupImporter("Engine", store, func(name string) *models.Engine {
		return &models.Engine{Name: name}
	})
}

func NewGenreImporter(store *catalog.Store) Importer {
	return newLookupImporter("Genre", store, func(name string) *models.Genre {
		return &models.Genre{Name: name}
	})
}

func NewPlatformImporter(store *catalog.Store) Importer {
	return newLookupImporter("Platform", store, func(name string) *models.Platform {
		return &models.Platform{Name: name}
	})
}

func NewTagImporter(store *catalog.Store) Importer {
	return newLookupImporter("Tag", store, func(name string) *models.Tag {
		return &models.Tag{Name: name}
	})
}
