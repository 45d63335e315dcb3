package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/campaigndocs/docchunk-mcp/internal/identity"
	"github.com/campaigndocs/docchunk-mcp/internal/textutil"
	"github.com/campaigndocs/docchunk-mcp/pkg/types"
)

// Document markers for the data-schema dictionary. The dictionary is
// authored in French; the markers below are the file format, not a
// localization concern.
var (
	schemaHeaderPat = regexp.MustCompile(`^# [^#]`)
	internalNamePat = regexp.MustCompile("Nom interne\\s*:\\s*`([^`]+)`")
	schemaLabelPat  = regexp.MustCompile(`Libellé\s*:\s*\*\*([^*]+)\*\*`)
	descriptionPat  = regexp.MustCompile(`Description\s*:\s*\*\*([^*]+)\*\*`)
	extendsPat      = regexp.MustCompile("étend\\s+`([^`]+)`")
	enumSectionPat  = regexp.MustCompile(`(?m)^## Énumérations`)
	methSectionPat  = regexp.MustCompile(`(?m)^## Méthodes`)
	fieldRowPat     = regexp.MustCompile("(?m)^\\|\\s*`[^`]+`\\s*\\|")
	linkRowPat      = regexp.MustCompile("(?m)^\\|\\s*`[^`]+`\\s*->\\s*`[^`]+`")
	fieldsTablePat  = regexp.MustCompile("(?m)^### Champs[ \\t]*\\n(?:[ \\t]*\\n)*\\|[^\\n]+\\n\\|[-:| ]+\\n(?:\\|[^\\n]+\\n?)*")
	linksTablePat   = regexp.MustCompile("(?m)^### Liens[ \\t]*\\n(?:[ \\t]*\\n)*\\|[^\\n]+\\n\\|[-:| ]+\\n(?:\\|[^\\n]+\\n?)*")
	indexTablePat   = regexp.MustCompile("(?m)^### Index[ \\t]*\\n(?:[ \\t]*\\n)*\\|[^\\n]+\\n\\|[-:| ]+\\n(?:\\|[^\\n]+\\n?)*")
	keysBlockPat    = regexp.MustCompile("(?m)^### Clés[ \\t]*\\n(?:[ \\t]*\\n)*([^\\n#]+)")
	subsectionPat   = regexp.MustCompile(`^### (\w+)\s*$`)
)

// introSections are dictionary front-matter headers that are not schemas
var introSections = []string{
	"dictionnaire", "documentation", "table des",
	"introduction", "statistiques", "explications",
}

// minSchemaLen filters out header-only segments that carry no schema body
const minSchemaLen = 200

// SchemaChunker cuts a data-schema dictionary document into hierarchical
// chunks: one summary per schema, the fields table (subdivided on row
// boundaries when over budget), links, indexes, and one chunk per
// enumeration and per SOAP method.
type SchemaChunker struct {
	cfg Config
}

// NewSchema creates a schema document chunker
func NewSchema(cfg Config) *SchemaChunker {
	return &SchemaChunker{cfg: cfg.withDefaults()}
}

// ChunkFile reads a schema dictionary file and chunks it
func (c *SchemaChunker) ChunkFile(path string) ([]types.Chunk, error) {
	content, name, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	return c.ChunkContent(content, name)
}

// ChunkContent chunks a schema dictionary supplied as raw markdown
func (c *SchemaChunker) ChunkContent(content, sourceFile string) ([]types.Chunk, error) {
	if strings.TrimSpace(content) == "" {
		return []types.Chunk{}, nil
	}

	chunks := make([]types.Chunk, 0)
	for _, seg := range textutil.SplitByHeaders(content, schemaHeaderPat) {
		label := strings.TrimSpace(strings.TrimPrefix(seg.Header, "#"))
		body := strings.TrimSpace(seg.Body)
		if label == "" || len(body) < minSchemaLen || isIntroSection(label) {
			continue
		}
		chunks = append(chunks, c.chunkSchema(label, body, sourceFile)...)
	}

	// Nothing recognizable: emit the cleaned raw content instead of nothing
	if len(chunks) == 0 {
		chunks = append(chunks, fallbackChunk(content, sourceFile, types.DocSchema))
	}

	return chunks, nil
}

// isIntroSection reports whether a top-level header is dictionary
// front matter rather than a schema
func isIntroSection(header string) bool {
	lower := strings.ToLower(header)
	for _, p := range introSections {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// chunkSchema emits the chunk sequence for a single schema, in document
// order: summary, fields, links, indexes, enumerations, methods
func (c *SchemaChunker) chunkSchema(label, body, sourceFile string) []types.Chunk {
	base := extractSchemaMeta(body)
	base.SchemaLabel = label
	name := base.InternalName
	if name == "" {
		name = label
	}

	var chunks []types.Chunk

	if summary := buildSchemaSummary(label, body, base); summary != "" {
		m := base
		m.ChunkType = string(types.SectionSummary)
		chunks = append(chunks, types.Chunk{
			ID:         identity.ChunkID(sourceFile, name+"_summary", 0),
			Content:    textutil.CleanContent(summary),
			DocType:    types.DocSchema,
			SourceFile: sourceFile,
			Section:    types.SectionSummary,
			Metadata:   &m,
		})
	}

	chunks = append(chunks, c.fieldChunks(body, name, sourceFile, base)...)

	if links := extractLinks(body, name); links != "" {
		m := base
		m.ChunkType = string(types.SectionLinks)
		chunks = append(chunks, types.Chunk{
			ID:         identity.ChunkID(sourceFile, name+"_links", 0),
			Content:    links,
			DocType:    types.DocSchema,
			SourceFile: sourceFile,
			Section:    types.SectionLinks,
			Metadata:   &m,
		})
	}

	if indexes := extractIndexes(body, name); indexes != "" {
		m := base
		m.ChunkType = string(types.SectionIndexes)
		chunks = append(chunks, types.Chunk{
			ID:         identity.ChunkID(sourceFile, name+"_indexes", 0),
			Content:    indexes,
			DocType:    types.DocSchema,
			SourceFile: sourceFile,
			Section:    types.SectionIndexes,
			Metadata:   &m,
		})
	}

	chunks = append(chunks, c.enumChunks(body, name, sourceFile, base)...)
	chunks = append(chunks, c.methodChunks(body, name, sourceFile, base)...)

	return chunks
}

// extractSchemaMeta pulls the schema's identity and aggregate stats out of
// its markdown body
func extractSchemaMeta(content string) types.SchemaMeta {
	meta := types.SchemaMeta{Namespace: "pre"}

	if m := internalNamePat.FindStringSubmatch(content); m != nil {
		if ns, name, ok := strings.Cut(m[1], ":"); ok {
			meta.Namespace = ns
			meta.InternalName = name
		} else {
			meta.InternalName = m[1]
		}
	}
	if m := schemaLabelPat.FindStringSubmatch(content); m != nil {
		meta.Label = strings.TrimSpace(m[1])
	}
	if m := descriptionPat.FindStringSubmatch(content); m != nil {
		meta.Description = strings.TrimSpace(m[1])
	}

	meta.HasEnumerations = enumSectionPat.MatchString(content)
	meta.HasMethods = methSectionPat.MatchString(content)
	meta.FieldsCount = len(fieldRowPat.FindAllString(content, -1))
	meta.LinksCount = len(linkRowPat.FindAllString(content, -1))

	return meta
}

// buildSchemaSummary renders the summary chunk body: identity, description
// and aggregate stats. Stays well under the summary budget by construction.
func buildSchemaSummary(label, content string, meta types.SchemaMeta) string {
	parts := []string{fmt.Sprintf("# Schema: %s", label)}

	if meta.InternalName != "" {
		parts = append(parts, fmt.Sprintf("**Nom interne**: `%s:%s`", meta.Namespace, meta.InternalName))
	}
	if meta.Label != "" {
		parts = append(parts, fmt.Sprintf("**Libelle**: %s", meta.Label))
	}
	if meta.Description != "" {
		parts = append(parts, fmt.Sprintf("**Description**: %s", meta.Description))
	}

	var stats []string
	if meta.FieldsCount > 0 {
		stats = append(stats, fmt.Sprintf("%d champs", meta.FieldsCount))
	}
	if meta.LinksCount > 0 {
		stats = append(stats, fmt.Sprintf("%d liens", meta.LinksCount))
	}
	if meta.HasEnumerations {
		stats = append(stats, "enumerations")
	}
	if meta.HasMethods {
		stats = append(stats, "methodes SOAP")
	}
	if len(stats) > 0 {
		parts = append(parts, "**Contient**: "+strings.Join(stats, ", "))
	}

	if m := extendsPat.FindStringSubmatch(content); m != nil {
		parts = append(parts, fmt.Sprintf("**Etend**: `%s`", m[1]))
	}

	return strings.Join(parts, "\n\n")
}

// fieldChunks extracts the fields table and subdivides it on row boundaries
// when its estimate exceeds the fields budget. Parts carry a 0-based part
// index; a table that fits yields a single chunk without one.
func (c *SchemaChunker) fieldChunks(body, schemaName, sourceFile string, base types.SchemaMeta) []types.Chunk {
	block := fieldsTablePat.FindString(body)
	if block == "" {
		return nil
	}

	// Drop the "### Champs" title line; the context header replaces it
	_, table, _ := strings.Cut(block, "\n")
	ctx := fmt.Sprintf("### Champs du schema `%s:%s`\n\n", base.Namespace, schemaName)

	parts := textutil.SplitTableRows(strings.TrimSpace(table), ctx, maxFieldsTokens)

	chunks := make([]types.Chunk, 0, len(parts))
	for i, part := range parts {
		m := base
		m.ChunkType = string(types.SectionFields)
		if len(parts) > 1 {
			p := i
			m.Part = &p
		}
		chunks = append(chunks, types.Chunk{
			ID:         identity.ChunkID(sourceFile, schemaName+"_fields", i),
			Content:    textutil.CleanContent(part),
			DocType:    types.DocSchema,
			SourceFile: sourceFile,
			Section:    types.SectionFields,
			Metadata:   &m,
		})
	}
	return chunks
}

// extractLinks returns the relations table with schema context, or ""
func extractLinks(body, schemaName string) string {
	block := linksTablePat.FindString(body)
	if block == "" {
		return ""
	}
	_, table, _ := strings.Cut(block, "\n")
	ctx := fmt.Sprintf("### Relations du schema `%s`\n\n", schemaName)
	return textutil.CleanContent(ctx + strings.TrimSpace(table))
}

// extractIndexes returns the index table and key list with schema context, or ""
func extractIndexes(body, schemaName string) string {
	var parts []string

	if block := indexTablePat.FindString(body); block != "" {
		_, table, _ := strings.Cut(block, "\n")
		parts = append(parts, "### Index\n"+strings.TrimSpace(table))
	}
	if m := keysBlockPat.FindStringSubmatch(body); m != nil {
		parts = append(parts, "### Cles\n"+m[1])
	}
	if len(parts) == 0 {
		return ""
	}

	ctx := fmt.Sprintf("### Index et cles du schema `%s`\n\n", schemaName)
	return textutil.CleanContent(ctx + strings.Join(parts, "\n\n"))
}

// enumChunks emits one chunk per enumeration found under "## Énumérations"
func (c *SchemaChunker) enumChunks(body, schemaName, sourceFile string, base types.SchemaMeta) []types.Chunk {
	section := sectionBody(body, "Énumérations")
	if section == "" {
		return nil
	}

	var chunks []types.Chunk
	for idx, sub := range splitSubsections(section) {
		content := fmt.Sprintf("### Enumeration `%s` du schema `%s`\n\n%s", sub.name, schemaName, sub.body)

		m := base
		m.ChunkType = string(types.SectionEnumeration)
		m.EnumerationName = sub.name
		chunks = append(chunks, types.Chunk{
			ID:         identity.ChunkID(sourceFile, schemaName+"_enum_"+sub.name, idx),
			Content:    textutil.CleanContent(content),
			DocType:    types.DocSchema,
			SourceFile: sourceFile,
			Section:    types.SectionEnumeration,
			Metadata:   &m,
		})
	}
	return chunks
}

// methodChunks emits one chunk per SOAP method found under "## Méthodes"
func (c *SchemaChunker) methodChunks(body, schemaName, sourceFile string, base types.SchemaMeta) []types.Chunk {
	section := sectionBody(body, "Méthodes")
	if section == "" {
		return nil
	}

	var chunks []types.Chunk
	for idx, sub := range splitSubsections(section) {
		content := fmt.Sprintf("### Methode SOAP `%s` du schema `%s`\n\n%s", sub.name, schemaName, sub.body)

		m := base
		m.ChunkType = string(types.SectionMethod)
		m.MethodName = sub.name
		chunks = append(chunks, types.Chunk{
			ID:         identity.ChunkID(sourceFile, schemaName+"_method_"+sub.name, idx),
			Content:    textutil.CleanContent(content),
			DocType:    types.DocSchema,
			SourceFile: sourceFile,
			Section:    types.SectionMethod,
			Metadata:   &m,
		})
	}
	return chunks
}

// sectionBody returns the lines following "## <title>" up to the next
// level-1 or level-2 header, or "" when the section is absent
func sectionBody(content, title string) string {
	lines := strings.Split(content, "\n")
	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "## "+title {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return ""
	}

	end := len(lines)
	for i := start; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "## ") || strings.HasPrefix(lines[i], "# ") {
			end = i
			break
		}
	}
	return strings.Join(lines[start:end], "\n")
}

// subsection is one "### name" item inside an enumerations or methods section
type subsection struct {
	name string
	body string
}

// splitSubsections cuts a section body at "### <word>" headers
func splitSubsections(section string) []subsection {
	var subs []subsection
	var cur []string
	name := ""

	flush := func() {
		if name != "" {
			subs = append(subs, subsection{name: name, body: strings.TrimSpace(strings.Join(cur, "\n"))})
		}
	}

	for _, line := range strings.Split(section, "\n") {
		if m := subsectionPat.FindStringSubmatch(line); m != nil {
			flush()
			name = m[1]
			cur = nil
			continue
		}
		cur = append(cur, line)
	}
	flush()

	return subs
}
