package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/campaigndocs/docchunk-mcp/internal/chunker"
	"github.com/campaigndocs/docchunk-mcp/internal/indexer"
	"github.com/campaigndocs/docchunk-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "docchunk-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBPath is the default location for the catalog database
	DefaultDBPath = "~/.docchunk"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	storage  storage.Storage
	indexer  *indexer.Indexer
	schema   *chunker.SchemaChunker
	workflow *chunker.WorkflowChunker
}

// NewServer creates a new MCP server instance
func NewServer(dbPath string) (*Server, error) {
	// Expand home directory if needed
	if dbPath == "" || dbPath == DefaultDBPath {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".docchunk")
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dbFile := filepath.Join(dbPath, "docchunk.db")

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Create indexer
	idx := indexer.New(store)

	// Create MCP server
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	cfg := chunker.DefaultConfig()
	s := &Server{
		mcp:      mcpServer,
		storage:  store,
		indexer:  idx,
		schema:   chunker.NewSchema(cfg),
		workflow: chunker.NewWorkflow(cfg),
	}

	// Register tools
	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.storage.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(indexDocsTool(), s.handleIndexDocs)
	s.mcp.AddTool(chunkDocumentTool(), s.handleChunkDocument)
	s.mcp.AddTool(searchChunksTool(), s.handleSearchChunks)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)

	return nil
}
