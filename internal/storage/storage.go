package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/campaigndocs/docchunk-mcp/pkg/types"
)

// Storage defines the interface for the local chunk catalog: the downstream
// store that chunk ingestion upserts into, keyed by deterministic chunk IDs
type Storage interface {
	// Document operations
	UpsertDocument(ctx context.Context, doc *Document) error
	GetDocument(ctx context.Context, sourceFile string) (*Document, error)
	ListDocuments(ctx context.Context) ([]*Document, error)
	DeleteDocument(ctx context.Context, sourceFile string) error

	// Chunk operations
	UpsertChunk(ctx context.Context, chunk *Chunk) error
	GetChunk(ctx context.Context, id string) (*Chunk, error)
	ListChunksByDocument(ctx context.Context, sourceFile string) ([]*Chunk, error)
	DeleteChunksByDocument(ctx context.Context, sourceFile string) error

	// Search operations
	SearchText(ctx context.Context, query string, limit int, filters *SearchFilters) ([]TextResult, error)

	// Status operations
	GetStatus(ctx context.Context) (*CatalogStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Document represents one ingested markdown documentation file
type Document struct {
	SourceFile  string // Base name of the file, primary key
	DocType     string
	ContentHash [32]byte
	SizeBytes   int64
	ChunkCount  int
	IndexedAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Chunk is a persisted chunk row. ID is the deterministic v5 UUID, so
// upserting the same document twice rewrites the same rows.
type Chunk struct {
	ID         string
	SourceFile string
	DocType    string
	Section    string
	Content    string
	TokenCount int
	Position   int    // Emission order within the document
	Metadata   string // JSON-encoded family-specific payload
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SearchFilters narrows full-text search results
type SearchFilters struct {
	DocType    string // Restrict to one document family
	Section    string // Restrict to one section tag
	SourceFile string // Restrict to one document
}

// TextResult is one full-text search hit
type TextResult struct {
	Chunk     *Chunk
	BM25Score float64
}

// CatalogStatus contains aggregate statistics about the catalog
type CatalogStatus struct {
	DocumentsCount int
	ChunksCount    int
	SchemaChunks   int
	WorkflowChunks int
	CatalogSizeMB  float64
	LastIndexedAt  time.Time
}

// FromTypesChunk converts a builder chunk to its storage row, serializing
// the metadata payload to JSON. position is the chunk's emission order
// within its document.
func FromTypesChunk(c types.Chunk, position, tokenCount int) (*Chunk, error) {
	meta, err := json.Marshal(c.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chunk metadata: %w", err)
	}
	return &Chunk{
		ID:         c.ID,
		SourceFile: c.SourceFile,
		DocType:    string(c.DocType),
		Section:    string(c.Section),
		Content:    c.Content,
		TokenCount: tokenCount,
		Position:   position,
		Metadata:   string(meta),
	}, nil
}
