package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction and exposes the full Storage surface on it
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error   { return t.tx.Commit() }
func (t *sqliteTx) Rollback() error { return t.tx.Rollback() }

func (t *sqliteTx) UpsertDocument(ctx context.Context, doc *Document) error {
	return t.storage.upsertDocumentWithQuerier(ctx, t.tx, doc)
}

func (t *sqliteTx) GetDocument(ctx context.Context, sourceFile string) (*Document, error) {
	return t.storage.getDocumentWithQuerier(ctx, t.tx, sourceFile)
}

func (t *sqliteTx) ListDocuments(ctx context.Context) ([]*Document, error) {
	return t.storage.listDocumentsWithQuerier(ctx, t.tx)
}

func (t *sqliteTx) DeleteDocument(ctx context.Context, sourceFile string) error {
	return t.storage.deleteDocumentWithQuerier(ctx, t.tx, sourceFile)
}

func (t *sqliteTx) UpsertChunk(ctx context.Context, chunk *Chunk) error {
	return t.storage.upsertChunkWithQuerier(ctx, t.tx, chunk)
}

func (t *sqliteTx) GetChunk(ctx context.Context, id string) (*Chunk, error) {
	return t.storage.getChunkWithQuerier(ctx, t.tx, id)
}

func (t *sqliteTx) ListChunksByDocument(ctx context.Context, sourceFile string) ([]*Chunk, error) {
	return t.storage.listChunksByDocumentWithQuerier(ctx, t.tx, sourceFile)
}

func (t *sqliteTx) DeleteChunksByDocument(ctx context.Context, sourceFile string) error {
	return t.storage.deleteChunksByDocumentWithQuerier(ctx, t.tx, sourceFile)
}

func (t *sqliteTx) SearchText(ctx context.Context, query string, limit int, filters *SearchFilters) ([]TextResult, error) {
	return t.storage.searchTextWithQuerier(ctx, t.tx, query, limit, filters)
}

func (t *sqliteTx) GetStatus(ctx context.Context) (*CatalogStatus, error) {
	return t.storage.getStatusWithQuerier(ctx, t.tx)
}

func (t *sqliteTx) Close() error { return nil }

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	return nil, errors.New("nested transactions are not supported")
}

// Document operations

func (s *SQLiteStorage) upsertDocumentWithQuerier(ctx context.Context, q querier, doc *Document) error {
	query := `
		INSERT INTO documents (source_file, doc_type, content_hash, size_bytes, chunk_count, indexed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_file) DO UPDATE SET
			doc_type = excluded.doc_type,
			content_hash = excluded.content_hash,
			size_bytes = excluded.size_bytes,
			chunk_count = excluded.chunk_count,
			indexed_at = excluded.indexed_at,
			updated_at = excluded.updated_at
	`
	now := time.Now()
	if doc.IndexedAt.IsZero() {
		doc.IndexedAt = now
	}
	_, err := q.ExecContext(ctx, query,
		doc.SourceFile, doc.DocType, doc.ContentHash[:], doc.SizeBytes,
		doc.ChunkCount, doc.IndexedAt, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	doc.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertDocument(ctx context.Context, doc *Document) error {
	return s.upsertDocumentWithQuerier(ctx, s.db, doc)
}

func (s *SQLiteStorage) getDocumentWithQuerier(ctx context.Context, q querier, sourceFile string) (*Document, error) {
	query := `
		SELECT source_file, doc_type, content_hash, size_bytes, chunk_count, indexed_at, created_at, updated_at
		FROM documents
		WHERE source_file = ?
	`
	var doc Document
	var hash []byte
	var indexedAt sql.NullTime
	err := q.QueryRowContext(ctx, query, sourceFile).Scan(
		&doc.SourceFile, &doc.DocType, &hash, &doc.SizeBytes,
		&doc.ChunkCount, &indexedAt, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	copy(doc.ContentHash[:], hash)
	if indexedAt.Valid {
		doc.IndexedAt = indexedAt.Time
	}
	return &doc, nil
}

func (s *SQLiteStorage) GetDocument(ctx context.Context, sourceFile string) (*Document, error) {
	return s.getDocumentWithQuerier(ctx, s.db, sourceFile)
}

func (s *SQLiteStorage) listDocumentsWithQuerier(ctx context.Context, q querier) ([]*Document, error) {
	query := `
		SELECT source_file, doc_type, content_hash, size_bytes, chunk_count, indexed_at, created_at, updated_at
		FROM documents
		ORDER BY source_file
	`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var docs []*Document
	for rows.Next() {
		var doc Document
		var hash []byte
		var indexedAt sql.NullTime
		if err := rows.Scan(&doc.SourceFile, &doc.DocType, &hash, &doc.SizeBytes,
			&doc.ChunkCount, &indexedAt, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		copy(doc.ContentHash[:], hash)
		if indexedAt.Valid {
			doc.IndexedAt = indexedAt.Time
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStorage) ListDocuments(ctx context.Context) ([]*Document, error) {
	return s.listDocumentsWithQuerier(ctx, s.db)
}

func (s *SQLiteStorage) deleteDocumentWithQuerier(ctx context.Context, q querier, sourceFile string) error {
	_, err := q.ExecContext(ctx, "DELETE FROM documents WHERE source_file = ?", sourceFile)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) DeleteDocument(ctx context.Context, sourceFile string) error {
	return s.deleteDocumentWithQuerier(ctx, s.db, sourceFile)
}

// Chunk operations

func (s *SQLiteStorage) upsertChunkWithQuerier(ctx context.Context, q querier, chunk *Chunk) error {
	query := `
		INSERT INTO chunks (id, source_file, doc_type, section, content, token_count, position, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_file = excluded.source_file,
			doc_type = excluded.doc_type,
			section = excluded.section,
			content = excluded.content,
			token_count = excluded.token_count,
			position = excluded.position,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`
	now := time.Now()
	_, err := q.ExecContext(ctx, query,
		chunk.ID, chunk.SourceFile, chunk.DocType, chunk.Section, chunk.Content,
		chunk.TokenCount, chunk.Position, chunk.Metadata, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert chunk: %w", err)
	}
	chunk.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertChunk(ctx context.Context, chunk *Chunk) error {
	return s.upsertChunkWithQuerier(ctx, s.db, chunk)
}

const chunkColumns = "id, source_file, doc_type, section, content, token_count, position, metadata, created_at, updated_at"

func scanChunk(row interface{ Scan(...interface{}) error }) (*Chunk, error) {
	var c Chunk
	err := row.Scan(&c.ID, &c.SourceFile, &c.DocType, &c.Section, &c.Content,
		&c.TokenCount, &c.Position, &c.Metadata, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStorage) getChunkWithQuerier(ctx context.Context, q querier, id string) (*Chunk, error) {
	row := q.QueryRowContext(ctx, "SELECT "+chunkColumns+" FROM chunks WHERE id = ?", id)
	chunk, err := scanChunk(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

func (s *SQLiteStorage) GetChunk(ctx context.Context, id string) (*Chunk, error) {
	return s.getChunkWithQuerier(ctx, s.db, id)
}

func (s *SQLiteStorage) listChunksByDocumentWithQuerier(ctx context.Context, q querier, sourceFile string) ([]*Chunk, error) {
	query := "SELECT " + chunkColumns + " FROM chunks WHERE source_file = ? ORDER BY position"
	rows, err := q.QueryContext(ctx, query, sourceFile)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var chunks []*Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

func (s *SQLiteStorage) ListChunksByDocument(ctx context.Context, sourceFile string) ([]*Chunk, error) {
	return s.listChunksByDocumentWithQuerier(ctx, s.db, sourceFile)
}

func (s *SQLiteStorage) deleteChunksByDocumentWithQuerier(ctx context.Context, q querier, sourceFile string) error {
	_, err := q.ExecContext(ctx, "DELETE FROM chunks WHERE source_file = ?", sourceFile)
	if err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) DeleteChunksByDocument(ctx context.Context, sourceFile string) error {
	return s.deleteChunksByDocumentWithQuerier(ctx, s.db, sourceFile)
}

// Search operations

func (s *SQLiteStorage) searchTextWithQuerier(ctx context.Context, q querier, query string, limit int, filters *SearchFilters) ([]TextResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("search query cannot be empty")
	}
	if limit <= 0 {
		limit = 10
	}

	sqlQuery := `
		SELECT ` + prefixColumns("c", chunkColumns) + `, bm25(chunks_fts) AS score
		FROM chunks_fts
		JOIN chunks c ON c.rowid = chunks_fts.rowid
		WHERE chunks_fts MATCH ?
	`
	args := []interface{}{ftsQuote(query)}

	if filters != nil {
		if filters.DocType != "" {
			sqlQuery += " AND c.doc_type = ?"
			args = append(args, filters.DocType)
		}
		if filters.Section != "" {
			sqlQuery += " AND c.section = ?"
			args = append(args, filters.Section)
		}
		if filters.SourceFile != "" {
			sqlQuery += " AND c.source_file = ?"
			args = append(args, filters.SourceFile)
		}
	}

	sqlQuery += " ORDER BY score LIMIT ?"
	args = append(args, limit)

	rows, err := q.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("full-text search failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []TextResult
	for rows.Next() {
		var c Chunk
		var score float64
		if err := rows.Scan(&c.ID, &c.SourceFile, &c.DocType, &c.Section, &c.Content,
			&c.TokenCount, &c.Position, &c.Metadata, &c.CreatedAt, &c.UpdatedAt, &score); err != nil {
			return nil, err
		}
		results = append(results, TextResult{Chunk: &c, BM25Score: score})
	}
	return results, rows.Err()
}

func (s *SQLiteStorage) SearchText(ctx context.Context, query string, limit int, filters *SearchFilters) ([]TextResult, error) {
	return s.searchTextWithQuerier(ctx, s.db, query, limit, filters)
}

// ftsQuote wraps each search term in double quotes so FTS5 treats the input
// as plain terms rather than query syntax
func ftsQuote(query string) string {
	terms := strings.Fields(query)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

// prefixColumns qualifies a comma-separated column list with a table alias
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}

// Status operations

func (s *SQLiteStorage) getStatusWithQuerier(ctx context.Context, q querier) (*CatalogStatus, error) {
	status := &CatalogStatus{}

	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&status.DocumentsCount); err != nil {
		return nil, err
	}
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&status.ChunksCount); err != nil {
		return nil, err
	}
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE doc_type = 'schema'").Scan(&status.SchemaChunks); err != nil {
		return nil, err
	}
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE doc_type = 'workflow'").Scan(&status.WorkflowChunks); err != nil {
		return nil, err
	}

	var lastIndexed sql.NullTime
	if err := q.QueryRowContext(ctx, "SELECT MAX(indexed_at) FROM documents").Scan(&lastIndexed); err != nil {
		return nil, err
	}
	if lastIndexed.Valid {
		status.LastIndexedAt = lastIndexed.Time
	}

	var pageCount, pageSize int64
	if err := q.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		if err := q.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err == nil {
			status.CatalogSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
		}
	}

	return status, nil
}

func (s *SQLiteStorage) GetStatus(ctx context.Context) (*CatalogStatus, error) {
	return s.getStatusWithQuerier(ctx, s.db)
}
