package indexer

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/campaigndocs/docchunk-mcp/internal/chunker"
	"github.com/campaigndocs/docchunk-mcp/internal/storage"
	"github.com/campaigndocs/docchunk-mcp/internal/textutil"
	"github.com/campaigndocs/docchunk-mcp/pkg/types"
)

// Indexer coordinates the ingestion pipeline: classify -> chunk -> upsert
type Indexer struct {
	schema   *chunker.SchemaChunker
	workflow *chunker.WorkflowChunker
	storage  storage.Storage
}

// Config contains configuration for the indexer
type Config struct {
	Workers      int  // Number of concurrent batches (default: runtime.NumCPU())
	BatchSize    int  // Number of files to commit per transaction (default: 20)
	ForceReindex bool // Re-chunk all files, ignoring content hashes
}

// Statistics contains statistics about one ingestion run
type Statistics struct {
	DocumentsIndexed int
	DocumentsSkipped int
	DocumentsFailed  int
	ChunksCreated    int
	Duration         time.Duration
	ErrorMessages    []string
}

// New creates a new Indexer instance
func New(store storage.Storage) *Indexer {
	cfg := chunker.DefaultConfig()
	return &Indexer{
		schema:   chunker.NewSchema(cfg),
		workflow: chunker.NewWorkflow(cfg),
		storage:  store,
	}
}

// IndexDir ingests every markdown file under rootPath
func (idx *Indexer) IndexDir(ctx context.Context, rootPath string, config *Config) (*Statistics, error) {
	if config == nil {
		config = &Config{}
	}
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 20
	}

	startTime := time.Now()
	stats := &Statistics{ErrorMessages: make([]string, 0)}

	files, err := discoverFiles(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to discover documents: %w", err)
	}

	var (
		indexed int32
		skipped int32
		failed  int32
		chunks  int32
	)
	var mu sync.Mutex // Protects stats.ErrorMessages

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < len(files); i += batchSize {
		end := i + batchSize
		if end > len(files) {
			end = len(files)
		}
		batch := files[i:end]

		g.Go(func() error {
			return idx.indexBatch(gctx, batch, config, &indexed, &skipped, &failed, &chunks, &mu, stats)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.DocumentsIndexed = int(indexed)
	stats.DocumentsSkipped = int(skipped)
	stats.DocumentsFailed = int(failed)
	stats.ChunksCreated = int(chunks)
	stats.Duration = time.Since(startTime)

	return stats, nil
}

// discoverFiles finds all markdown files under rootPath
func discoverFiles(rootPath string) ([]string, error) {
	var files []string

	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != rootPath {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(strings.ToLower(path), ".md") {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// indexBatch ingests a batch of files within one transaction
func (idx *Indexer) indexBatch(ctx context.Context, files []string, config *Config,
	indexed, skipped, failed, chunks *int32, mu *sync.Mutex, stats *Statistics) error {

	tx, err := idx.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, filePath := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := idx.indexFile(ctx, tx, filePath, config, indexed, skipped, chunks); err != nil {
			atomic.AddInt32(failed, 1)
			mu.Lock()
			stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", filePath, err))
			mu.Unlock()
			// Keep going with the other files in the batch
			continue
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// indexFile ingests a single markdown file
func (idx *Indexer) indexFile(ctx context.Context, store storage.Storage, filePath string,
	config *Config, indexed, skipped, chunks *int32) error {

	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	content := string(data)
	sourceFile := filepath.Base(filePath)
	hash := sha256.Sum256(data)

	// Skip unchanged documents unless a full rebuild was requested
	existing, err := store.GetDocument(ctx, sourceFile)
	if err != nil && err != storage.ErrNotFound {
		return err
	}
	if existing != nil && existing.ContentHash == hash && !config.ForceReindex {
		atomic.AddInt32(skipped, 1)
		return nil
	}

	docType := ClassifyDocument(content)

	var docChunks []types.Chunk
	switch docType {
	case types.DocSchema:
		docChunks, err = idx.schema.ChunkContent(content, sourceFile)
	default:
		docChunks, err = idx.workflow.ChunkContent(content, sourceFile)
	}
	if err != nil {
		return fmt.Errorf("failed to chunk document: %w", err)
	}

	// A changed document may have lost chunks; clear before re-upserting so
	// stale rows don't survive under old IDs
	if existing != nil {
		if err := store.DeleteChunksByDocument(ctx, sourceFile); err != nil {
			return fmt.Errorf("failed to delete old chunks: %w", err)
		}
	}

	doc := &storage.Document{
		SourceFile:  sourceFile,
		DocType:     string(docType),
		ContentHash: hash,
		SizeBytes:   int64(len(data)),
		ChunkCount:  len(docChunks),
	}
	if err := store.UpsertDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	for i, c := range docChunks {
		row, err := storage.FromTypesChunk(c, i, textutil.EstimateTokens(c.Content))
		if err != nil {
			return err
		}
		if err := store.UpsertChunk(ctx, row); err != nil {
			return fmt.Errorf("failed to upsert chunk: %w", err)
		}
	}

	atomic.AddInt32(indexed, 1)
	atomic.AddInt32(chunks, int32(len(docChunks)))

	return nil
}

// Schema dictionaries and workflow documents carry distinct markers; a file
// with neither set still chunks (the builders fall back to one generic
// chunk), so misclassification never loses a document
var (
	schemaSignals   = []string{"### Champs", "## Énumérations", "## Méthodes", "Nom interne :"}
	workflowSignals = []string{"**Nom interne**", "*Script:", "{urn:", "**Activit"}
)

// ClassifyDocument decides which document family a markdown file belongs to
func ClassifyDocument(content string) types.DocType {
	schemaScore := 0
	for _, s := range schemaSignals {
		if strings.Contains(content, s) {
			schemaScore++
		}
	}
	workflowScore := 0
	for _, s := range workflowSignals {
		if strings.Contains(content, s) {
			workflowScore++
		}
	}

	if schemaScore > workflowScore {
		return types.DocSchema
	}
	return types.DocWorkflow
}
