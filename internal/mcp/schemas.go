package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// indexDocsTool returns the tool definition for index_docs
func indexDocsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_docs",
		Description: "Index a directory of markdown documentation (schema dictionaries and workflow exports) into the searchable chunk catalog",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the documentation root (scanned recursively for .md files)",
				},
				"force_reindex": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, re-chunk all files ignoring content hashes (full rebuild)",
					"default":     false,
				},
				"workers": map[string]interface{}{
					"type":        "integer",
					"description": "Number of concurrent ingestion batches (default: number of CPUs)",
					"minimum":     1,
				},
			},
			Required: []string{"path"},
		},
	}
}

// chunkDocumentTool returns the tool definition for chunk_document
func chunkDocumentTool() mcp.Tool {
	return mcp.Tool{
		Name:        "chunk_document",
		Description: "Chunk a single markdown document and return the chunks without persisting them",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the markdown file",
				},
				"doc_type": map[string]interface{}{
					"type":        "string",
					"description": "Document family; auto detects from content markers",
					"enum":        []string{"auto", "schema", "workflow"},
					"default":     "auto",
				},
			},
			Required: []string{"path"},
		},
	}
}

// searchChunksTool returns the tool definition for search_chunks
func searchChunksTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_chunks",
		Description: "Full-text search over the indexed documentation chunks",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (keywords; matched against chunk content)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"filters": map[string]interface{}{
					"type":        "object",
					"description": "Optional filters to narrow search",
					"properties": map[string]interface{}{
						"doc_type": map[string]interface{}{
							"type":        "string",
							"description": "Filter by document family",
							"enum":        []string{"schema", "workflow"},
						},
						"section": map[string]interface{}{
							"type":        "string",
							"description": "Filter by section tag (summary, fields, links, indexes, enumeration, method, activities, script, content)",
						},
						"source_file": map[string]interface{}{
							"type":        "string",
							"description": "Filter by source file name",
						},
					},
				},
			},
			Required: []string{"query"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query catalog statistics: document and chunk counts, size, last ingestion time",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
