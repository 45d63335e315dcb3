package types

// DocType identifies the document family a chunk was cut from
type DocType string

const (
	DocSchema   DocType = "schema"
	DocWorkflow DocType = "workflow"
)

// Section identifies the structural role of a chunk within its source document
type Section string

const (
	// Schema document sections
	SectionSummary     Section = "summary"
	SectionFields      Section = "fields"
	SectionLinks       Section = "links"
	SectionIndexes     Section = "indexes"
	SectionEnumeration Section = "enumeration"
	SectionMethod      Section = "method"

	// Workflow document sections (summary is shared)
	SectionActivities Section = "activities"
	SectionScript     Section = "script"

	// SectionContent is the fallback tag for documents with no recognizable structure
	SectionContent Section = "content"
)

// Chunk represents one retrievable document fragment with identity, content
// and metadata. It is the unit handed to the embedding/indexing pipeline.
type Chunk struct {
	// ID is a deterministic v5 UUID derived from (source_file, section key, index).
	// Re-chunking an unchanged document yields the same IDs, which makes the
	// downstream index upsert idempotent.
	ID string

	// Content is the cleaned text body, never empty
	Content string

	DocType    DocType
	SourceFile string
	Section    Section

	// Metadata is the document-family-specific payload (SchemaMeta or
	// WorkflowMeta, GenericMeta for fallback chunks)
	Metadata Metadata
}

// Validate checks structural validity of the chunk
func (c *Chunk) Validate() error {
	if c.ID == "" {
		return ErrMissingID
	}
	if c.Content == "" {
		return ErrEmptyContent
	}
	if c.SourceFile == "" {
		return ErrMissingSourceFile
	}
	switch c.DocType {
	case DocSchema, DocWorkflow:
	default:
		return ErrInvalidDocType
	}
	if c.Metadata == nil {
		return ErrMissingMetadata
	}
	return nil
}

// Map flattens the chunk into a single map for serialization toward an
// index upsert payload, metadata keys merged at the top level.
func (c *Chunk) Map() map[string]any {
	result := map[string]any{
		"id":          c.ID,
		"content":     c.Content,
		"doc_type":    string(c.DocType),
		"source_file": c.SourceFile,
		"section":     string(c.Section),
	}
	if c.Metadata != nil {
		for k, v := range c.Metadata.Map() {
			result[k] = v
		}
	}
	return result
}
