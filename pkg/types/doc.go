// Package types defines the shared data structures for document chunking.
//
// The central type is Chunk: one retrievable text fragment cut from a
// structured markdown document (a data-schema dictionary or a workflow
// description), carrying a deterministic identifier, a cleaned content body,
// a section tag and a family-specific metadata payload.
//
// # Chunk Identity
//
// Chunk IDs are v5 UUIDs derived from (source_file, section key, index), so
// chunking the same document twice produces identical IDs. Downstream
// consumers rely on this for idempotent upserts into a search index.
//
// # Metadata
//
// Each document family has a closed metadata shape:
//   - SchemaMeta: schema identity, enum/method presence, field and link counts
//   - WorkflowMeta: workflow identity, JS/SQL/delivery flags, activity count
//
// Subdivided sections additionally carry a 0-based "part" index. The Map
// methods flatten a chunk with its metadata into the string-keyed form
// expected by an index upsert payload.
package types
