package types

// Metadata is the per-document-family payload attached to every chunk.
// The two families carry different closed field sets, so they are modeled
// as distinct structs rather than an open map.
type Metadata interface {
	// Kind returns the chunk_type tag mirroring the chunk's section
	Kind() string
	// Map flattens the payload to string-keyed scalars for indexing
	Map() map[string]any
}

// SchemaMeta is the metadata payload for data-schema chunks
type SchemaMeta struct {
	InternalName    string `json:"internal_name"`
	Namespace       string `json:"namespace"`
	Label           string `json:"label"`
	Description     string `json:"description"`
	SchemaLabel     string `json:"schema_label"`
	HasEnumerations bool   `json:"has_enumerations"`
	HasMethods      bool   `json:"has_methods"`
	FieldsCount     int    `json:"fields_count"`
	LinksCount      int    `json:"links_count"`

	ChunkType string `json:"chunk_type"`

	// Part is the 0-based position of a subdivided section fragment.
	// Nil when the section fit in one chunk.
	Part *int `json:"part,omitempty"`

	// Set only on enumeration / method chunks
	EnumerationName string `json:"enumeration_name,omitempty"`
	MethodName      string `json:"method_name,omitempty"`
}

func (m *SchemaMeta) Kind() string { return m.ChunkType }

func (m *SchemaMeta) Map() map[string]any {
	result := map[string]any{
		"internal_name":    m.InternalName,
		"namespace":        m.Namespace,
		"label":            m.Label,
		"description":      m.Description,
		"schema_label":     m.SchemaLabel,
		"has_enumerations": m.HasEnumerations,
		"has_methods":      m.HasMethods,
		"fields_count":     m.FieldsCount,
		"links_count":      m.LinksCount,
		"chunk_type":       m.ChunkType,
	}
	if m.Part != nil {
		result["part"] = *m.Part
	}
	if m.EnumerationName != "" {
		result["enumeration_name"] = m.EnumerationName
	}
	if m.MethodName != "" {
		result["method_name"] = m.MethodName
	}
	return result
}

// WorkflowMeta is the metadata payload for workflow chunks
type WorkflowMeta struct {
	WorkflowName    string `json:"workflow_name"`
	WorkflowLabel   string `json:"workflow_label"`
	HasJS           bool   `json:"has_js"`
	HasSQL          bool   `json:"has_sql"`
	HasDelivery     bool   `json:"has_delivery"`
	ActivitiesCount int    `json:"activities_count"`

	ChunkType string `json:"chunk_type"`

	// Part is the 0-based position of a subdivided section fragment
	Part *int `json:"part,omitempty"`

	// Set only on script chunks: the script's declared name and its
	// 0-based position among the workflow's scripts
	ScriptName  string `json:"script_name,omitempty"`
	ScriptIndex *int   `json:"script_index,omitempty"`
}

func (m *WorkflowMeta) Kind() string { return m.ChunkType }

func (m *WorkflowMeta) Map() map[string]any {
	result := map[string]any{
		"workflow_name":    m.WorkflowName,
		"workflow_label":   m.WorkflowLabel,
		"has_js":           m.HasJS,
		"has_sql":          m.HasSQL,
		"has_delivery":     m.HasDelivery,
		"activities_count": m.ActivitiesCount,
		"chunk_type":       m.ChunkType,
	}
	if m.Part != nil {
		result["part"] = *m.Part
	}
	if m.ScriptName != "" {
		result["script_name"] = m.ScriptName
	}
	if m.ScriptIndex != nil {
		result["script_index"] = *m.ScriptIndex
	}
	return result
}

// GenericMeta is the payload for fallback chunks emitted when a document
// has no recognizable structure
type GenericMeta struct {
	ChunkType string `json:"chunk_type"`
}

func (m *GenericMeta) Kind() string { return m.ChunkType }

func (m *GenericMeta) Map() map[string]any {
	return map[string]any{"chunk_type": m.ChunkType}
}
