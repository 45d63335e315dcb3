package indexer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campaigndocs/docchunk-mcp/internal/storage"
	"github.com/campaigndocs/docchunk-mcp/pkg/types"
)

const schemaDoc = "# Destinataires (nms:recipient)\n\n" +
	"Nom interne : `nms:recipient`\n\n" +
	"Libellé : **Destinataires**\n\n" +
	"Description : **Table des profils destinataires de la plateforme**\n\n" +
	"### Champs\n\n" +
	"| Champ | Type | Description |\n" +
	"|-------|------|-------------|\n" +
	"| `email` | string | Adresse email du destinataire |\n" +
	"| `firstName` | string | Prenom du destinataire |\n"

const workflowDoc = "### Nettoyage (cleanup)\n\n" +
	"| **Propriété** | **Valeur** |\n" +
	"|---------------|------------|\n" +
	"| **Nom interne** | `cleanup` |\n\n" +
	"**Description:** Purge quotidienne des logs de la plateforme.\n\n" +
	"**Activités (2):**\n\n" +
	"| Activité | Type | Description |\n" +
	"|----------|------|-------------|\n" +
	"| {urn:query} | Requete | Selection |\n" +
	"| {urn:end} | Fin | Fin |\n"

func setupTestDocs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.md"), []byte(schemaDoc), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "workflows.md"), []byte(workflowDoc), 0644))

	// Files in hidden directories and non-markdown files are ignored
	hidden := filepath.Join(dir, ".git")
	require.NoError(t, os.MkdirAll(hidden, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(hidden, "ignored.md"), []byte(schemaDoc), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("plain text"), 0644))

	return dir
}

func newTestIndexer(t *testing.T) (*Indexer, storage.Storage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return New(store), store
}

func TestIndexDir(t *testing.T) {
	idx, store := newTestIndexer(t)
	dir := setupTestDocs(t)
	ctx := context.Background()

	stats, err := idx.IndexDir(ctx, dir, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.DocumentsIndexed)
	assert.Equal(t, 0, stats.DocumentsSkipped)
	assert.Equal(t, 0, stats.DocumentsFailed)
	assert.Greater(t, stats.ChunksCreated, 0)
	assert.Empty(t, stats.ErrorMessages)

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	schema, err := store.GetDocument(ctx, "schema.md")
	require.NoError(t, err)
	assert.Equal(t, "schema", schema.DocType)
	assert.Greater(t, schema.ChunkCount, 0)

	wf, err := store.GetDocument(ctx, "workflows.md")
	require.NoError(t, err)
	assert.Equal(t, "workflow", wf.DocType)

	// Chunks land with document order preserved
	chunks, err := store.ListChunksByDocument(ctx, "schema.md")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.Equal(t, i, c.Position)
		assert.Greater(t, c.TokenCount, 0)
		assert.Contains(t, c.Metadata, "chunk_type")
	}
}

func TestIndexDir_SkipsUnchanged(t *testing.T) {
	idx, _ := newTestIndexer(t)
	dir := setupTestDocs(t)
	ctx := context.Background()

	_, err := idx.IndexDir(ctx, dir, nil)
	require.NoError(t, err)

	stats, err := idx.IndexDir(ctx, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.DocumentsIndexed)
	assert.Equal(t, 2, stats.DocumentsSkipped)
}

func TestIndexDir_ReindexesChangedFile(t *testing.T) {
	idx, store := newTestIndexer(t)
	dir := setupTestDocs(t)
	ctx := context.Background()

	_, err := idx.IndexDir(ctx, dir, nil)
	require.NoError(t, err)

	changed := strings.Replace(schemaDoc, "Prenom du destinataire", "Prenom modifie", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.md"), []byte(changed), 0644))

	stats, err := idx.IndexDir(ctx, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DocumentsIndexed)
	assert.Equal(t, 1, stats.DocumentsSkipped)

	// Same deterministic IDs, updated content
	chunks, err := store.ListChunksByDocument(ctx, "schema.md")
	require.NoError(t, err)
	found := false
	for _, c := range chunks {
		if strings.Contains(c.Content, "Prenom modifie") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestIndexDir_ForceReindex(t *testing.T) {
	idx, _ := newTestIndexer(t)
	dir := setupTestDocs(t)
	ctx := context.Background()

	_, err := idx.IndexDir(ctx, dir, nil)
	require.NoError(t, err)

	stats, err := idx.IndexDir(ctx, dir, &Config{ForceReindex: true})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.DocumentsIndexed)
	assert.Equal(t, 0, stats.DocumentsSkipped)
}

func TestIndexDir_Idempotent(t *testing.T) {
	idx, store := newTestIndexer(t)
	dir := setupTestDocs(t)
	ctx := context.Background()

	_, err := idx.IndexDir(ctx, dir, nil)
	require.NoError(t, err)
	first, err := store.ListChunksByDocument(ctx, "schema.md")
	require.NoError(t, err)

	_, err = idx.IndexDir(ctx, dir, &Config{ForceReindex: true})
	require.NoError(t, err)
	second, err := store.ListChunksByDocument(ctx, "schema.md")
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestClassifyDocument(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    types.DocType
	}{
		{"schema markers", schemaDoc, types.DocSchema},
		{"workflow markers", workflowDoc, types.DocWorkflow},
		{"no markers defaults to workflow", "plain notes", types.DocWorkflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDocument(tt.content))
		})
	}
}
