package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchemaDoc = "# Destinataires (nms:recipient)\n\n" +
	"Nom interne : `nms:recipient`\n\n" +
	"Libellé : **Destinataires**\n\n" +
	"Description : **Table des profils destinataires de la plateforme**\n\n" +
	"### Champs\n\n" +
	"| Champ | Type | Description |\n" +
	"|-------|------|-------------|\n" +
	"| `email` | string | Adresse email du destinataire |\n" +
	"| `firstName` | string | Prenom du destinataire |\n"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	server, err := NewServer(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.storage.Close() })
	return server
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestServer_Initialization(t *testing.T) {
	server := newTestServer(t)

	assert.NotNil(t, server.mcp)
	assert.NotNil(t, server.storage)
	assert.NotNil(t, server.indexer)
	assert.NotNil(t, server.schema)
	assert.NotNil(t, server.workflow)
}

func TestHandleIndexDocs(t *testing.T) {
	server := newTestServer(t)

	docsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "schema.md"), []byte(testSchemaDoc), 0644))

	result, err := server.handleIndexDocs(context.Background(), callRequest(map[string]interface{}{
		"path": docsDir,
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, `"documents_indexed": 1`)
	assert.Contains(t, text, `"chunks_created"`)
}

func TestHandleIndexDocs_MissingPath(t *testing.T) {
	server := newTestServer(t)

	_, err := server.handleIndexDocs(context.Background(), callRequest(map[string]interface{}{}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleIndexDocs_NoMarkdown(t *testing.T) {
	server := newTestServer(t)

	emptyDir := t.TempDir()
	_, err := server.handleIndexDocs(context.Background(), callRequest(map[string]interface{}{
		"path": emptyDir,
	}))
	require.Error(t, err)
}

func TestHandleChunkDocument(t *testing.T) {
	server := newTestServer(t)

	docsDir := t.TempDir()
	docPath := filepath.Join(docsDir, "schema.md")
	require.NoError(t, os.WriteFile(docPath, []byte(testSchemaDoc), 0644))

	result, err := server.handleChunkDocument(context.Background(), callRequest(map[string]interface{}{
		"path": docPath,
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, `"doc_type": "schema"`)
	assert.Contains(t, text, `"source_file": "schema.md"`)
	assert.Contains(t, text, `"chunk_type"`)
}

func TestHandleChunkDocument_InvalidDocType(t *testing.T) {
	server := newTestServer(t)

	docsDir := t.TempDir()
	docPath := filepath.Join(docsDir, "schema.md")
	require.NoError(t, os.WriteFile(docPath, []byte(testSchemaDoc), 0644))

	_, err := server.handleChunkDocument(context.Background(), callRequest(map[string]interface{}{
		"path":     docPath,
		"doc_type": "spreadsheet",
	}))
	require.Error(t, err)
}

func TestHandleSearchChunks(t *testing.T) {
	server := newTestServer(t)

	docsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "schema.md"), []byte(testSchemaDoc), 0644))

	_, err := server.handleIndexDocs(context.Background(), callRequest(map[string]interface{}{
		"path": docsDir,
	}))
	require.NoError(t, err)

	result, err := server.handleSearchChunks(context.Background(), callRequest(map[string]interface{}{
		"query": "email",
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, `"query": "email"`)
	assert.Contains(t, text, "schema.md")
}

func TestHandleSearchChunks_EmptyQuery(t *testing.T) {
	server := newTestServer(t)

	_, err := server.handleSearchChunks(context.Background(), callRequest(map[string]interface{}{
		"query": "  ",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
}

func TestHandleSearchChunks_LimitOutOfRange(t *testing.T) {
	server := newTestServer(t)

	_, err := server.handleSearchChunks(context.Background(), callRequest(map[string]interface{}{
		"query": "email",
		"limit": float64(500),
	}))
	require.Error(t, err)
}

func TestHandleGetStatus(t *testing.T) {
	server := newTestServer(t)

	result, err := server.handleGetStatus(context.Background(), callRequest(map[string]interface{}{}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, `"documents_count": 0`)
	assert.Contains(t, text, `"chunks_count": 0`)
}
