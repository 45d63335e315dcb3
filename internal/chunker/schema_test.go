package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campaigndocs/docchunk-mcp/internal/identity"
	"github.com/campaigndocs/docchunk-mcp/internal/textutil"
	"github.com/campaigndocs/docchunk-mcp/pkg/types"
)

// tick replaces ~ with backticks so fixtures can live in raw string literals
func tick(s string) string {
	return strings.ReplaceAll(s, "~", "`")
}

const schemaFixtureRaw = `# Dictionnaire des schemas

Documentation de reference des schemas de donnees.

# Destinataires (nms:recipient)

Nom interne : ~nms:recipient~

Libellé : **Destinataires**

Description : **Table des profils destinataires de la plateforme**

Ce schema étend ~nms:xtk~ et porte les profils marketing.

### Champs

| Champ | Type | Description |
|-------|------|-------------|
| ~email~ | string | Adresse email du destinataire |
| ~firstName~ | string | Prenom du destinataire |
| ~lastName~ | string | Nom du destinataire |

### Liens

| Lien | Cible | Description |
|------|-------|-------------|
| ~folder~ -> ~xtk:folder~ | Dossier | Dossier parent |

### Index

| Index | Champs |
|-------|--------|
| email_idx | email |

### Clés
email, id

## Énumérations

### gender

| Valeur | Libellé |
|--------|---------|
| 0 | Inconnu |
| 1 | Homme |
| 2 | Femme |

## Méthodes

### Subscribe

Methode SOAP pour abonner un destinataire a un service d information.
`

func TestSchemaChunker_ChunkContent(t *testing.T) {
	c := NewSchema(DefaultConfig())
	chunks, err := c.ChunkContent(tick(schemaFixtureRaw), "schema.md")

	require.NoError(t, err)
	require.Len(t, chunks, 6)

	sections := make([]types.Section, 0, len(chunks))
	for _, ch := range chunks {
		sections = append(sections, ch.Section)
	}
	assert.Equal(t, []types.Section{
		types.SectionSummary,
		types.SectionFields,
		types.SectionLinks,
		types.SectionIndexes,
		types.SectionEnumeration,
		types.SectionMethod,
	}, sections)

	for _, ch := range chunks {
		assert.NoError(t, ch.Validate())
		assert.Equal(t, types.DocSchema, ch.DocType)
		assert.Equal(t, "schema.md", ch.SourceFile)
	}
}

func TestSchemaChunker_SummaryMetadata(t *testing.T) {
	c := NewSchema(DefaultConfig())
	chunks, err := c.ChunkContent(tick(schemaFixtureRaw), "schema.md")
	require.NoError(t, err)

	summary := chunks[0]
	assert.Equal(t, identity.ChunkID("schema.md", "recipient_summary", 0), summary.ID)
	assert.Contains(t, summary.Content, "# Schema: Destinataires (nms:recipient)")
	assert.Contains(t, summary.Content, tick("**Nom interne**: ~nms:recipient~"))
	assert.Contains(t, summary.Content, tick("**Etend**: ~nms:xtk~"))
	assert.Contains(t, summary.Content, "3 champs")

	meta, ok := summary.Metadata.(*types.SchemaMeta)
	require.True(t, ok)
	assert.Equal(t, "recipient", meta.InternalName)
	assert.Equal(t, "nms", meta.Namespace)
	assert.Equal(t, "Destinataires", meta.Label)
	assert.Equal(t, 3, meta.FieldsCount)
	assert.Equal(t, 1, meta.LinksCount)
	assert.True(t, meta.HasEnumerations)
	assert.True(t, meta.HasMethods)
	assert.Equal(t, "summary", meta.ChunkType)
	assert.Nil(t, meta.Part)
}

func TestSchemaChunker_FieldsSinglePart(t *testing.T) {
	c := NewSchema(DefaultConfig())
	chunks, err := c.ChunkContent(tick(schemaFixtureRaw), "schema.md")
	require.NoError(t, err)

	fields := chunks[1]
	assert.Equal(t, identity.ChunkID("schema.md", "recipient_fields", 0), fields.ID)
	assert.Contains(t, fields.Content, tick("### Champs du schema ~nms:recipient~"))
	assert.Contains(t, fields.Content, tick("| ~email~ |"))

	meta := fields.Metadata.(*types.SchemaMeta)
	assert.Equal(t, "fields", meta.ChunkType)
	// Table fits the budget: single chunk, no part index
	assert.Nil(t, meta.Part)
}

func TestSchemaChunker_FieldsSubdivision(t *testing.T) {
	var b strings.Builder
	b.WriteString("# Large (nms:large)\n\nNom interne : `nms:large`\n\n")
	b.WriteString("### Champs\n\n| Champ | Type | Description |\n|-------|------|-------------|\n")
	for i := 0; i < 80; i++ {
		fmt.Fprintf(&b, "| `field%03d` | string | Une description suffisamment longue pour peser dans le budget de la table |\n", i)
	}

	c := NewSchema(DefaultConfig())
	chunks, err := c.ChunkContent(b.String(), "large.md")
	require.NoError(t, err)

	var fieldChunks []types.Chunk
	for _, ch := range chunks {
		if ch.Section == types.SectionFields {
			fieldChunks = append(fieldChunks, ch)
		}
	}
	require.Greater(t, len(fieldChunks), 1)

	totalRows := 0
	for i, ch := range fieldChunks {
		assert.Equal(t, identity.ChunkID("large.md", "large_fields", i), ch.ID)
		assert.Contains(t, ch.Content, "| Champ | Type | Description |")

		meta := ch.Metadata.(*types.SchemaMeta)
		require.NotNil(t, meta.Part)
		assert.Equal(t, i, *meta.Part)

		totalRows += strings.Count(ch.Content, "| `field")
	}
	assert.Equal(t, 80, totalRows)
}

func TestSchemaChunker_Enumerations(t *testing.T) {
	c := NewSchema(DefaultConfig())
	chunks, err := c.ChunkContent(tick(schemaFixtureRaw), "schema.md")
	require.NoError(t, err)

	var enum *types.Chunk
	for i := range chunks {
		if chunks[i].Section == types.SectionEnumeration {
			enum = &chunks[i]
		}
	}
	require.NotNil(t, enum)

	assert.Equal(t, identity.ChunkID("schema.md", "recipient_enum_gender", 0), enum.ID)
	assert.Contains(t, enum.Content, tick("### Enumeration ~gender~ du schema ~recipient~"))
	assert.Contains(t, enum.Content, "| 2 | Femme |")

	meta := enum.Metadata.(*types.SchemaMeta)
	assert.Equal(t, "gender", meta.EnumerationName)
	assert.Equal(t, "enumeration", meta.ChunkType)
}

func TestSchemaChunker_Methods(t *testing.T) {
	c := NewSchema(DefaultConfig())
	chunks, err := c.ChunkContent(tick(schemaFixtureRaw), "schema.md")
	require.NoError(t, err)

	var method *types.Chunk
	for i := range chunks {
		if chunks[i].Section == types.SectionMethod {
			method = &chunks[i]
		}
	}
	require.NotNil(t, method)

	assert.Equal(t, identity.ChunkID("schema.md", "recipient_method_Subscribe", 0), method.ID)
	assert.Contains(t, method.Content, tick("### Methode SOAP ~Subscribe~ du schema ~recipient~"))

	meta := method.Metadata.(*types.SchemaMeta)
	assert.Equal(t, "Subscribe", meta.MethodName)
}

func TestSchemaChunker_SummaryAndEnumUnderBudget(t *testing.T) {
	c := NewSchema(DefaultConfig())
	chunks, err := c.ChunkContent(tick(schemaFixtureRaw), "schema.md")
	require.NoError(t, err)

	for _, ch := range chunks {
		switch ch.Section {
		case types.SectionSummary:
			assert.LessOrEqual(t, textutil.EstimateTokens(ch.Content), maxSchemaSummaryTokens)
		case types.SectionEnumeration:
			assert.LessOrEqual(t, textutil.EstimateTokens(ch.Content), maxEnumTokens)
		}
	}
}

func TestSchemaChunker_EmptyInput(t *testing.T) {
	c := NewSchema(DefaultConfig())

	chunks, err := c.ChunkContent("", "empty.md")
	require.NoError(t, err)
	assert.NotNil(t, chunks)
	assert.Empty(t, chunks)

	chunks, err = c.ChunkContent("   \n\n  ", "blank.md")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSchemaChunker_FallbackChunk(t *testing.T) {
	c := NewSchema(DefaultConfig())
	content := "Notes sans structure reconnaissable.\n\nJuste du texte libre."

	chunks, err := c.ChunkContent(content, "notes.md")
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	fb := chunks[0]
	assert.Equal(t, identity.ChunkID("notes.md", "content", 0), fb.ID)
	assert.Equal(t, types.SectionContent, fb.Section)
	assert.Equal(t, types.DocSchema, fb.DocType)
	assert.Contains(t, fb.Content, "texte libre")

	_, ok := fb.Metadata.(*types.GenericMeta)
	assert.True(t, ok)
}

func TestSchemaChunker_DeterministicIDs(t *testing.T) {
	c := NewSchema(DefaultConfig())
	content := tick(schemaFixtureRaw)

	first, err := c.ChunkContent(content, "schema.md")
	require.NoError(t, err)
	second, err := c.ChunkContent(content, "schema.md")
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}
