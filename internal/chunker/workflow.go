package chunker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/campaigndocs/docchunk-mcp/internal/identity"
	"github.com/campaigndocs/docchunk-mcp/internal/textutil"
	"github.com/campaigndocs/docchunk-mcp/pkg/types"
)

// Document markers for workflow documentation files
var (
	workflowHeaderPat = regexp.MustCompile(`^### `)
	wfNamePat         = regexp.MustCompile("\\*\\*Nom interne\\*\\*[:\\s|]*`([^`]+)`")
	wfSQLPat          = regexp.MustCompile(`(?i)\|\s*O\s*\|.*SQL`)
	wfActivityRowPat  = regexp.MustCompile(`(?m)^\|\s*\{urn:`)
	scriptPat         = regexp.MustCompile("(?s)\\*Script:\\s*([^*]+)\\*\\s*```javascript(.*?)```")
)

// minWorkflowLen filters out header-only segments
const minWorkflowLen = 100

// scriptOverlapLines is the number of trailing lines repeated at the start
// of the next part when a script is subdivided, so no statement loses its
// immediate context at a cut point
const scriptOverlapLines = 3

// WorkflowChunker cuts a workflow documentation file into hierarchical
// chunks: one summary per workflow, the activities table (subdivided on row
// boundaries when over budget) and one or more chunks per embedded script.
type WorkflowChunker struct {
	cfg Config
}

// NewWorkflow creates a workflow document chunker
func NewWorkflow(cfg Config) *WorkflowChunker {
	return &WorkflowChunker{cfg: cfg.withDefaults()}
}

// ChunkFile reads a workflow documentation file and chunks it
func (c *WorkflowChunker) ChunkFile(path string) ([]types.Chunk, error) {
	content, name, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	return c.ChunkContent(content, name)
}

// ChunkContent chunks workflow documentation supplied as raw markdown
func (c *WorkflowChunker) ChunkContent(content, sourceFile string) ([]types.Chunk, error) {
	if strings.TrimSpace(content) == "" {
		return []types.Chunk{}, nil
	}

	chunks := make([]types.Chunk, 0)
	for _, seg := range textutil.SplitByHeaders(content, workflowHeaderPat) {
		label := strings.TrimSpace(strings.TrimPrefix(seg.Header, "###"))
		body := strings.TrimSpace(seg.Body)
		if label == "" || len(body) < minWorkflowLen {
			continue
		}
		chunks = append(chunks, c.chunkWorkflow(label, body, sourceFile)...)
	}

	if len(chunks) == 0 {
		chunks = append(chunks, fallbackChunk(content, sourceFile, types.DocWorkflow))
	}

	return chunks, nil
}

// chunkWorkflow emits the chunk sequence for a single workflow, in document
// order: summary, activities, scripts
func (c *WorkflowChunker) chunkWorkflow(label, body, sourceFile string) []types.Chunk {
	base := extractWorkflowMeta(body)
	base.WorkflowLabel = label
	name := base.WorkflowName
	if name == "" {
		name = label
	}

	var chunks []types.Chunk

	if summary := buildWorkflowSummary(body); summary != "" {
		m := base
		m.ChunkType = string(types.SectionSummary)
		chunks = append(chunks, types.Chunk{
			ID:         identity.ChunkID(sourceFile, name+"_summary", 0),
			Content:    summary,
			DocType:    types.DocWorkflow,
			SourceFile: sourceFile,
			Section:    types.SectionSummary,
			Metadata:   &m,
		})
	}

	chunks = append(chunks, c.activityChunks(body, name, sourceFile, base)...)
	chunks = append(chunks, c.scriptChunks(body, name, sourceFile, base)...)

	return chunks
}

// extractWorkflowMeta pulls workflow identity and content flags out of the
// markdown body
func extractWorkflowMeta(content string) types.WorkflowMeta {
	meta := types.WorkflowMeta{}

	if m := wfNamePat.FindStringSubmatch(content); m != nil {
		meta.WorkflowName = m[1]
	}

	meta.HasJS = strings.Contains(content, "```javascript") ||
		(strings.Contains(content, "| O |") && strings.Contains(content, "JavaScript"))
	meta.HasSQL = wfSQLPat.MatchString(content)

	lower := strings.ToLower(content)
	meta.HasDelivery = strings.Contains(lower, "delivery") || strings.Contains(lower, "diffusion")

	meta.ActivitiesCount = len(wfActivityRowPat.FindAllString(content, -1))

	return meta
}

// maxSummaryDescLen caps the free-text description inside the summary so a
// verbose workflow description cannot blow the summary budget
const maxSummaryDescLen = 500

// buildWorkflowSummary renders the summary chunk body: header, properties
// table, characteristics and a capped description
func buildWorkflowSummary(content string) string {
	var parts []string

	if header, _, ok := strings.Cut(content, "\n"); ok && strings.HasPrefix(header, "### ") {
		parts = append(parts, header)
	} else if strings.HasPrefix(content, "### ") {
		parts = append(parts, content)
	}

	if props := between(content, "| **Propri", "**Caract", "**Activit", "**Scripts"); props != "" {
		parts = append(parts, props)
	}
	if carac := between(content, "**Caract", "**Description", "**Activit"); carac != "" {
		parts = append(parts, carac)
	}
	if desc := between(content, "**Description:**", "**Activit", "**Scripts"); desc != "" {
		desc = strings.TrimSpace(strings.TrimPrefix(desc, "**Description:**"))
		if len(desc) > maxSummaryDescLen {
			parts = append(parts, "**Description:** "+truncateRunes(desc, maxSummaryDescLen)+"...")
		} else {
			parts = append(parts, "**Description:** "+desc)
		}
	}

	return textutil.CleanContent(strings.Join(parts, "\n\n"))
}

// truncateRunes cuts s to at most max bytes without splitting a rune; the
// corpus is French, so multi-byte runes at the cut point are the common case
func truncateRunes(s string, max int) string {
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// between returns the trimmed substring starting at the first occurrence of
// start and ending before the earliest following stop marker (or end of
// text). Returns "" when start is absent.
func between(content, start string, stops ...string) string {
	from := strings.Index(content, start)
	if from < 0 {
		return ""
	}
	rest := content[from:]

	end := len(rest)
	for _, stop := range stops {
		if i := strings.Index(rest[len(start):], stop); i >= 0 && i+len(start) < end {
			end = i + len(start)
		}
	}
	return strings.TrimSpace(rest[:end])
}

// activityChunks extracts the activities table and subdivides it on row
// boundaries when its estimate exceeds the activities budget
func (c *WorkflowChunker) activityChunks(body, wfName, sourceFile string, base types.WorkflowMeta) []types.Chunk {
	block := between(body, "**Activit", "**Scripts", "\n## ", "\n### ")
	if block == "" || !strings.Contains(block, "|") {
		return nil
	}

	ctx := fmt.Sprintf("### Activites du workflow `%s`\n\n", wfName)

	// Separate the "**Activités ...**" lead-in from the table itself; the
	// lead-in rides along with the context header on every part
	lines := strings.Split(strings.TrimSpace(block), "\n")
	tableStart := 0
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "|") {
			tableStart = i
			break
		}
	}
	if lead := strings.TrimSpace(strings.Join(lines[:tableStart], "\n")); lead != "" {
		ctx += lead + "\n\n"
	}
	table := strings.Join(lines[tableStart:], "\n")

	parts := textutil.SplitTableRows(table, ctx, maxActivitiesTokens)

	chunks := make([]types.Chunk, 0, len(parts))
	for i, part := range parts {
		m := base
		m.ChunkType = string(types.SectionActivities)
		if len(parts) > 1 {
			p := i
			m.Part = &p
		}
		chunks = append(chunks, types.Chunk{
			ID:         identity.ChunkID(sourceFile, wfName+"_activities", i),
			Content:    textutil.CleanContent(part),
			DocType:    types.DocWorkflow,
			SourceFile: sourceFile,
			Section:    types.SectionActivities,
			Metadata:   &m,
		})
	}
	return chunks
}

// scriptChunks emits one or more chunks per embedded JavaScript script, in
// document order. Scripts over the script budget are subdivided by lines
// with a small overlap; every part repeats the script's name and position.
func (c *WorkflowChunker) scriptChunks(body, wfName, sourceFile string, base types.WorkflowMeta) []types.Chunk {
	var chunks []types.Chunk

	for idx, m := range scriptPat.FindAllStringSubmatch(body, -1) {
		scriptName := strings.TrimSpace(m[1])
		code := strings.TrimSpace(m[2])

		content := fmt.Sprintf("### Script JavaScript: %s\n**Workflow**: `%s`\n\n```javascript\n%s\n```",
			scriptName, wfName, code)

		sectionKey := fmt.Sprintf("%s_script_%d", wfName, idx)
		scriptIdx := idx

		if textutil.EstimateTokens(content) <= maxScriptTokens {
			meta := base
			meta.ChunkType = string(types.SectionScript)
			meta.ScriptName = scriptName
			meta.ScriptIndex = &scriptIdx
			chunks = append(chunks, types.Chunk{
				ID:         identity.ChunkID(sourceFile, sectionKey, 0),
				Content:    textutil.CleanContent(content),
				DocType:    types.DocWorkflow,
				SourceFile: sourceFile,
				Section:    types.SectionScript,
				Metadata:   &meta,
			})
			continue
		}

		for part, partContent := range splitScriptLines(content, maxScriptTokens) {
			meta := base
			meta.ChunkType = string(types.SectionScript)
			meta.ScriptName = scriptName
			meta.ScriptIndex = &scriptIdx
			p := part
			meta.Part = &p
			chunks = append(chunks, types.Chunk{
				ID:         identity.ChunkID(sourceFile, sectionKey, part),
				Content:    textutil.CleanContent(partContent),
				DocType:    types.DocWorkflow,
				SourceFile: sourceFile,
				Section:    types.SectionScript,
				Metadata:   &meta,
			})
		}
	}

	return chunks
}

// splitScriptLines cuts script content into parts that each fit maxTokens,
// splitting only at line boundaries and repeating the last few lines of a
// part at the start of the next. A single line over the budget becomes its
// own oversized part.
func splitScriptLines(content string, maxTokens int) []string {
	lines := strings.Split(content, "\n")

	var parts []string
	var cur []string
	curTokens := 0

	for _, line := range lines {
		lineTokens := textutil.EstimateTokens(line)

		if curTokens+lineTokens > maxTokens && len(cur) > 0 {
			parts = append(parts, strings.Join(cur, "\n"))

			if len(cur) > scriptOverlapLines {
				cur = append([]string(nil), cur[len(cur)-scriptOverlapLines:]...)
			} else {
				cur = nil
			}
			curTokens = 0
			for _, l := range cur {
				curTokens += textutil.EstimateTokens(l)
			}
		}

		cur = append(cur, line)
		curTokens += lineTokens
	}

	if len(cur) > 0 {
		parts = append(parts, strings.Join(cur, "\n"))
	}

	return parts
}
