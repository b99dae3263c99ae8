package sync

import (
	"catalog-manager/feature/catalog/models"
)

// ImportItem tracks one manifest record moving through a batch.
type ImportItem struct {
	// Key is the stable identity string for the record, e.g. "Game/<uuid>"
	// or "Tag/Strategy".
	Key string

	// Name is the human-readable display name, used in reports and logs.
	Name string

	// Type is the owning importer's name.
	Type string

	// Record is the manifest record the item was built from.
	Record any

	// Processed flips to true once the record has been written (or
	// confirmed up to date). A queued, unprocessed item signals to
	// dependent importers that the owner is handled later in this batch.
	Processed bool
}

// ImportContext scopes one import batch. It carries the target library and
// the queue of items the batch has committed to process, so importers can
// suppress writes for entities whose owner is imported in the same pass.
//
// A context is created per batch and never reused.
type ImportContext struct {
	library *models.Library
	items   []*ImportItem
}

func NewImportContext(library *models.Library) *ImportContext {
	return &ImportContext{library: library}
}

// Library returns the library imported entities are registered with. May be
// nil when no library could be resolved; importers treat that as "skip
// registration", not as an error.
func (c *ImportContext) Library() *models.Library {
	return c.library
}

// Enqueue registers an item with the batch.
func (c *ImportContext) Enqueue(item *ImportItem) {
	c.items = append(c.items, item)
}

// InQueue reports whether the given manifest record is queued under the
// named importer type. Records are matched by identity, not by value: the
// owner pointer handed to a nested importer is the same pointer the owning
// importer was queued with.
func (c *ImportContext) InQueue(record any, importerType string) bool {
	for _, item := range c.items {
		if item.Type == importerType && item.Record == record {
			return true
		}
	}
	return false
}

// Items returns the batch queue in enqueue order.
func (c *ImportContext) Items() []*ImportItem {
	return c.items
}
