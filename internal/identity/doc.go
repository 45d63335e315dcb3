// Package identity derives deterministic chunk identifiers.
//
// IDs are v5 UUIDs computed from "{source_file}:{section}:{index}" under a
// single fixed namespace shared by the whole system. Determinism is the
// contract: re-ingesting an unchanged document produces identical IDs, so
// the downstream index upsert is idempotent.
package identity
