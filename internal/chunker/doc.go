// Package chunker cuts structured markdown documentation into semantically
// bounded chunks for embedding and retrieval.
//
// Two builders share one contract (the Chunker interface): SchemaChunker
// for the data-schema dictionary and WorkflowChunker for workflow
// documentation. Both walk a document's tree structure (summary, typed
// sections, leaf items), enforce per-section token budgets by subdividing
// oversized sections, and assign every chunk a deterministic v5 UUID so
// repeated ingestion of an unchanged document is idempotent downstream.
//
// # Basic Usage
//
//	c := chunker.NewSchema(chunker.DefaultConfig())
//	chunks, err := c.ChunkFile("Dictionnaire_donnees.md")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, chunk := range chunks {
//	    fmt.Printf("%s %s %s\n", chunk.ID, chunk.Section, chunk.Metadata.Kind())
//	}
//
// # Budgets and Subdivision
//
// Each section type has a fixed token budget (estimated with the chars/4
// heuristic). Tables are subdivided on row boundaries, never mid-row, with
// the column header repeated per part; scripts are subdivided on line
// boundaries with a small overlap. An atomic leaf that cannot be split
// further (one enumeration, one table row, one very long line) may exceed
// its budget; it is emitted oversized rather than truncated.
//
// # Failure Semantics
//
// A document missing an expected block skips that chunk type silently.
// Empty input yields an empty slice. A document with no recognizable
// structure at all yields one fallback chunk of cleaned raw content under
// the generic "content" section. Only an unreadable file is a hard error.
package chunker
