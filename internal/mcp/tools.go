package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/campaigndocs/docchunk-mcp/internal/indexer"
	"github.com/campaigndocs/docchunk-mcp/internal/storage"
	"github.com/campaigndocs/docchunk-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery    = -32004 // Query parameter is empty
)

// handleIndexDocs handles the index_docs tool invocation
func (s *Server) handleIndexDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validateDir(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	forceReindex, _ := args["force_reindex"].(bool)
	workers := getIntDefault(args, "workers", 0)

	config := &indexer.Config{
		Workers:      workers,
		ForceReindex: forceReindex,
	}

	stats, err := s.indexer.IndexDir(ctx, path, config)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed":           true,
		"documents_indexed": stats.DocumentsIndexed,
		"documents_skipped": stats.DocumentsSkipped,
		"documents_failed":  stats.DocumentsFailed,
		"chunks_created":    stats.ChunksCreated,
		"duration_ms":       stats.Duration.Milliseconds(),
	}

	if len(stats.ErrorMessages) > 0 {
		// Include first few errors
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleChunkDocument handles the chunk_document tool invocation
func (s *Server) handleChunkDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validateFile(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	docTypeArg := getStringDefault(args, "doc_type", "auto")
	if docTypeArg != "auto" && docTypeArg != string(types.DocSchema) && docTypeArg != string(types.DocWorkflow) {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid doc_type", map[string]interface{}{
			"param":   "doc_type",
			"value":   docTypeArg,
			"allowed": []string{"auto", "schema", "workflow"},
		})
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read document", map[string]interface{}{
			"error": err.Error(),
		})
	}
	content := string(data)
	sourceFile := filepath.Base(path)

	docType := types.DocType(docTypeArg)
	if docTypeArg == "auto" {
		docType = indexer.ClassifyDocument(content)
	}

	var chunks []types.Chunk
	switch docType {
	case types.DocSchema:
		chunks, err = s.schema.ChunkContent(content, sourceFile)
	default:
		chunks, err = s.workflow.ChunkContent(content, sourceFile)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "chunking failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	chunkMaps := make([]map[string]interface{}, 0, len(chunks))
	for _, c := range chunks {
		chunkMaps = append(chunkMaps, c.Map())
	}

	response := map[string]interface{}{
		"source_file": sourceFile,
		"doc_type":    string(docType),
		"chunk_count": len(chunks),
		"chunks":      chunkMaps,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchChunks handles the search_chunks tool invocation
func (s *Server) handleSearchChunks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || strings.TrimSpace(query) == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	var filters *storage.SearchFilters
	if f, ok := args["filters"].(map[string]interface{}); ok {
		filters = &storage.SearchFilters{
			DocType:    getStringDefault(f, "doc_type", ""),
			Section:    getStringDefault(f, "section", ""),
			SourceFile: getStringDefault(f, "source_file", ""),
		}
	}

	results, err := s.storage.SearchText(ctx, query, limit, filters)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	hits := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		hits = append(hits, map[string]interface{}{
			"id":          r.Chunk.ID,
			"source_file": r.Chunk.SourceFile,
			"doc_type":    r.Chunk.DocType,
			"section":     r.Chunk.Section,
			"token_count": r.Chunk.TokenCount,
			"score":       r.BM25Score,
			"content":     r.Chunk.Content,
		})
	}

	response := map[string]interface{}{
		"query":   query,
		"count":   len(hits),
		"results": hits,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.storage.GetStatus(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"documents_count": status.DocumentsCount,
		"chunks_count":    status.ChunksCount,
		"schema_chunks":   status.SchemaChunks,
		"workflow_chunks": status.WorkflowChunks,
		"catalog_size_mb": fmt.Sprintf("%.2f", status.CatalogSizeMB),
	}
	if !status.LastIndexedAt.IsZero() {
		response["last_indexed_at"] = status.LastIndexedAt.Format("2006-01-02T15:04:05Z07:00")
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validateDir checks that a path is an absolute, readable directory that
// contains at least one markdown file
func validateDir(path string) error {
	info, err := statAbs(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}

	hasMarkdown := false
	_ = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() && strings.HasSuffix(strings.ToLower(p), ".md") {
			hasMarkdown = true
		}
		return nil
	})
	if !hasMarkdown {
		return ErrNoMarkdownFiles
	}

	return nil
}

// validateFile checks that a path is an absolute, readable markdown file
func validateFile(path string) error {
	info, err := statAbs(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return ErrIsDirectory
	}
	if !strings.HasSuffix(strings.ToLower(path), ".md") {
		return ErrNotMarkdown
	}
	return nil
}

func statAbs(path string) (os.FileInfo, error) {
	if path == "" {
		return nil, ErrPathRequired
	}
	if !filepath.IsAbs(path) {
		return nil, ErrPathNotAbsolute
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, ErrPathNotFound
	}
	if err != nil {
		return nil, ErrPathNotReadable
	}
	return info, nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
	ErrIsDirectory     = errors.New("path is a directory, not a file")
	ErrNotMarkdown     = errors.New("file is not a markdown document")
	ErrNoMarkdownFiles = errors.New("directory does not contain markdown files")
)
