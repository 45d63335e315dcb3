// Package mcp implements the Model Context Protocol (MCP) server for docchunk.
//
// The MCP server exposes four tools to AI assistants:
//   - index_docs: Ingest a documentation tree into the chunk catalog
//   - chunk_document: Chunk a single markdown file and return the chunks
//   - search_chunks: Full-text search over indexed chunks
//   - get_status: Catalog statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// # Tool: index_docs
//
// Ingest a directory of markdown documentation:
//
//	Request:
//	{
//	  "name": "index_docs",
//	  "arguments": {
//	    "path": "/path/to/docs",
//	    "force_reindex": false
//	  }
//	}
//
//	Response:
//	{
//	  "indexed": true,
//	  "documents_indexed": 412,
//	  "documents_skipped": 38,
//	  "chunks_created": 1847,
//	  "duration_ms": 950
//	}
//
// # Tool: chunk_document
//
// Chunk one file without persisting, useful for previewing how a document
// will be segmented:
//
//	Request:
//	{
//	  "name": "chunk_document",
//	  "arguments": {
//	    "path": "/path/to/docs/nms_recipient.md",
//	    "doc_type": "auto"
//	  }
//	}
//
// The response carries each chunk's content, deterministic ID, and flattened
// metadata map.
//
// # Tool: search_chunks
//
// Keyword search backed by the SQLite FTS5 index:
//
//	Request:
//	{
//	  "name": "search_chunks",
//	  "arguments": {
//	    "query": "delivery tracking",
//	    "limit": 10,
//	    "filters": {"doc_type": "workflow"}
//	  }
//	}
//
// # Error Handling
//
// The server returns standard JSON-RPC error responses:
//
//	{
//	  "error": {
//	    "code": -32602,
//	    "message": "Invalid params",
//	    "data": {"param": "path", "reason": "path does not exist"}
//	  }
//	}
//
// # Logging
//
// The server logs to stderr (stdout is reserved for MCP protocol):
//
//	log.SetOutput(os.Stderr)
package mcp
