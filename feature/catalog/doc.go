// Package catalog implements the local catalog store.
//
// It defines the persisted entity models (games, tools, game servers,
// redistributables, and their lookup/relation types) and a GORM-backed Store
// exposing typed access to them. Entities are keyed by stable UUIDs; lookup
// entities (collections, companies, engines, genres, platforms, tags) are
// additionally matched by their case-sensitive natural name.
//
// Every entity carries two clocks: UpdatedOn is authored by whoever produced
// the record (possibly a remote server), while ImportedOn is the local receipt
// watermark stamped on every successful import. The sync feature compares the
// two to decide import eligibility.
//
// # Components
//
//   - models: GORM entity definitions and relation tables.
//   - Store: typed CRUD, relation replacement, and library membership.
//   - Service/Handler: read-only HTTP surface for browsing the catalog.
package catalog
