// Package reconcile provides the generic relation-set synchronization used by
// every importer that owns a related collection (a game's genres, tags,
// publishers, a tool's games, and so on).
//
// Given the current local members L of a relation and the remote members R
// declared by a manifest, Sync makes L match R exactly:
//
//   - members found in both are updated in place,
//   - members only in R are created and added,
//   - members only in L are removed.
//
// The comparator, updater, and factory are supplied per relation, so the same
// algorithm serves string-name lookups (genres, tags) and composite-keyed
// records (multiplayer modes keyed by network protocol + type) alike.
//
// Sync is idempotent: running it twice with the same R produces no further
// change. When two remote members both match one local member the first match
// by list order wins; that input is considered malformed.
//
// # Usage
//
//	game.Tags, res = reconcile.Sync(game.Tags, rec.Tags,
//	    func(l models.Tag, name string) bool { return l.Name == name },
//	    func(l *models.Tag, name string) {},
//	    func(name string) models.Tag { return models.Tag{Name: name} })
package reconcile
