// Package archive stores versioned install archives and computes minimal
// patches between versions.
//
// Archives are zip containers, content-addressed in object storage by an
// opaque object key. When a new version of an entity's archive is uploaded
// and a prior version exists, the patch engine compares the two by per-entry
// CRC32: the base archive is rebuilt to carry the union of both entry sets
// with changed entries replaced, and the uploaded file is replaced on disk
// by a patch archive holding only the added and changed entries. Clients
// holding the previous version download just the patch.
//
// Entry payloads move between archives without recompression (raw copies),
// so patching large archives is I/O bound, not CPU bound.
//
// Concurrent uploads against the same base archive would race on the file
// being rebuilt; the service serializes them with a per-object-key lock.
package archive
