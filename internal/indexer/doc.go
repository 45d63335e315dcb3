// Package indexer walks a documentation tree, chunks each markdown file,
// and upserts the result into the storage catalog.
//
// Files are classified as schema dictionaries or workflow exports by marker
// scoring, then handed to the matching chunk builder. Ingestion runs in
// concurrent batches (errgroup), each batch in its own transaction, and a
// per-document content hash lets unchanged files be skipped on re-runs.
package indexer
