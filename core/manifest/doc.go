// Package manifest defines the wire format for catalog synchronization.
//
// A manifest is a YAML snapshot of one entity and its declared relationships:
// a game, tool, game server, or redistributable together with its lookup
// names (genres, tags, companies, ...) and nested media, archive, and script
// records. Manifests travel inside zip packages under the fixed filename
// "_manifest.yml", next to the binary payloads the records point at:
//
//	_manifest.yml
//	Scripts/<scriptId>
//	Media/<fileId>
//	Archives/<objectKey>
//	Files/<relative path>      (game server packages only)
//
// Field names are PascalCase on the wire; decoding is case-insensitive.
package manifest
