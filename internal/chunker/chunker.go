package chunker

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/campaigndocs/docchunk-mcp/internal/identity"
	"github.com/campaigndocs/docchunk-mcp/internal/textutil"
	"github.com/campaigndocs/docchunk-mcp/pkg/types"
)

// Per-section token budgets. These are design constants, not configuration:
// they were tuned against the real documentation corpus and changing them
// changes chunk identity boundaries. The fields, activities and script
// budgets drive subdivision; the summary and enumeration budgets are met by
// construction (summaries render a fixed handful of lines, the workflow
// description is capped) and pinned by the chunker tests.
const (
	maxSchemaSummaryTokens   = 300
	maxFieldsTokens          = 600
	maxEnumTokens            = 400
	maxWorkflowSummaryTokens = 400
	maxActivitiesTokens      = 600
	maxScriptTokens          = 800
)

// Chunker cuts one structured markdown document into an ordered sequence of
// chunks. Implementations are stateless across calls and safe for concurrent
// use on different documents.
type Chunker interface {
	// ChunkContent chunks raw markdown supplied as a string. sourceFile is
	// the document's logical name, used for provenance and ID derivation.
	// Empty content yields an empty slice and no error.
	ChunkContent(content, sourceFile string) ([]types.Chunk, error)

	// ChunkFile reads path and delegates to ChunkContent with the file's
	// base name as the source label. A read failure is a hard error.
	ChunkFile(path string) ([]types.Chunk, error)
}

// Config is the advisory construction surface shared by the builders.
type Config struct {
	// ChunkSize is the target fragment size hint in estimated tokens
	ChunkSize int
	// ChunkOverlap is reserved for future sliding-window chunking
	ChunkOverlap int
}

// DefaultConfig returns the default chunking configuration
func DefaultConfig() Config {
	return Config{ChunkSize: 512, ChunkOverlap: 50}
}

// withDefaults fills zero-valued fields with defaults
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = def.ChunkSize
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = def.ChunkOverlap
	}
	return c
}

// readDocument reads a markdown document from disk and returns its content
// and base name
func readDocument(path string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read document: %w", err)
	}
	return string(data), filepath.Base(path), nil
}

// fallbackChunk wraps an unrecognizable document's cleaned raw content in a
// single generic chunk so chunking never silently drops a whole document
func fallbackChunk(content, sourceFile string, docType types.DocType) types.Chunk {
	return types.Chunk{
		ID:         identity.ChunkID(sourceFile, string(types.SectionContent), 0),
		Content:    textutil.CleanContent(content),
		DocType:    docType,
		SourceFile: sourceFile,
		Section:    types.SectionContent,
		Metadata:   &types.GenericMeta{ChunkType: string(types.SectionContent)},
	}
}
