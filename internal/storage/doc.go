// Package storage persists chunked documentation in a local SQLite catalog.
//
// The catalog plays the downstream-index role for the chunking pipeline:
// chunks are keyed by their deterministic v5 UUID, and every write is an
// upsert (ON CONFLICT ... DO UPDATE), so re-ingesting an unchanged document
// rewrites the same rows instead of accumulating duplicates. Documents are
// tracked with a content hash so the indexer can skip unchanged files.
//
// # Schema
//
//   - documents: one row per ingested markdown file (hash, type, counts)
//   - chunks: one row per chunk, TEXT primary key = deterministic UUID
//   - chunks_fts: FTS5 index over chunk content for keyword lookup
//
// # Drivers
//
// Two interchangeable SQLite drivers are selected at build time:
//
//   - Default (pure Go): modernc.org/sqlite, no C toolchain required
//   - cgo_sqlite tag: github.com/mattn/go-sqlite3, faster on large catalogs
//
// Both run the same migrations; migrations are versioned and ordered with
// semantic versions (see migrations.go).
package storage
