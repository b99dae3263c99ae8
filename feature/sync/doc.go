// Package sync implements manifest-based catalog synchronization.
//
// Import takes a package (a zip with a _manifest.yml plus script, media, and
// archive payloads), deserializes the manifest, and reconciles the described
// entity graph against the local catalog. Export is the inverse: it
// serializes an entity graph and its payloads into one transportable package.
//
// # Import pipeline
//
// Each entity type has an Importer that knows how to test existence, decide
// eligibility, and create or update its entity from the manifest record.
// Importers run in a fixed, dependency-ordered sequence: lookup types
// (engine, tags, genres, companies, collections, platforms, multiplayer
// modes) before the owning game, the game before media and the entities that
// reference it. The ordering is load-bearing and lives in one place
// (Service.importGame).
//
// Eligibility follows the watermark rule: a record is imported iff no local
// entity exists or the record's UpdatedOn is after the local ImportedOn
// receipt timestamp. ImportedOn is stamped to the local clock on every
// successful add or update.
//
// An ImportContext scopes one batch. Importers whose entity is owned by
// another (media and multiplayer modes belong to a game) consult the context
// and skip their own write when the owner is already queued in the same
// batch; the owner's importer reconciles the nested records itself. This
// prevents duplicate writes inside one synchronization pass. The context is
// never shared across batches.
//
// A failed entity is reported and skipped; the batch continues. Every record
// produces exactly one EntityResult, aggregated into a Report.
package sync
