package textutil

import (
	"regexp"
	"strings"

	"github.com/campaigndocs/docchunk-mcp/pkg/types"
)

const (
	// TokensPerChar is the chars-per-token heuristic used for budgeting.
	// It is deliberately an approximation: budgets are soft targets, not
	// tokenizer-exact limits.
	TokensPerChar = 4

	// DefaultMinTokens is the threshold below which a chunk is merged
	// into its predecessor
	DefaultMinTokens = 100
)

var (
	multiBlankLines = regexp.MustCompile(`\n{3,}`)
	trailingSpaces  = regexp.MustCompile(`[ \t]+\n`)
)

// EstimateTokens approximates the token count of text as ceil(len/4).
// Deterministic and pure; rounding up avoids undercounting short fragments.
func EstimateTokens(text string) int {
	return (len(text) + TokensPerChar - 1) / TokensPerChar
}

// CleanContent normalizes text for indexing: trailing whitespace is
// stripped per line, runs of 3+ newlines collapse to a single blank line,
// and the whole text is trimmed. Stripping must run before the collapse:
// a blank line that carries spaces would otherwise survive it and break
// idempotence. Idempotent.
func CleanContent(text string) string {
	text = trailingSpaces.ReplaceAllString(text, "\n")
	text = multiBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Segment is one header-delimited slice of a markdown document.
// Body includes the header line itself.
type Segment struct {
	Header string
	Body   string
}

// SplitByHeaders segments markdown at lines matching headerPat (typically an
// ATX header prefix such as ^#{1,4} ). Each segment runs until the next
// matching header or end of input. When no line matches, the whole text is
// returned as a single untitled segment.
func SplitByHeaders(content string, headerPat *regexp.Regexp) []Segment {
	var segments []Segment
	var current []string
	header := ""

	for _, line := range strings.Split(content, "\n") {
		if headerPat.MatchString(line) {
			if len(current) > 0 {
				segments = append(segments, Segment{Header: header, Body: strings.Join(current, "\n")})
			}
			header = strings.TrimSpace(line)
			current = []string{line}
			continue
		}
		current = append(current, line)
	}

	if len(current) > 0 {
		segments = append(segments, Segment{Header: header, Body: strings.Join(current, "\n")})
	}

	return segments
}

// MergeSmallChunks folds any chunk whose estimated token count is under
// minTokens into the immediately preceding chunk, in a single left-to-right
// pass. The first chunk has no predecessor and is left standing even when
// under the threshold. Order is preserved; the merged chunk keeps the
// predecessor's identity, section and metadata.
func MergeSmallChunks(chunks []types.Chunk, minTokens int) []types.Chunk {
	if len(chunks) == 0 {
		return chunks
	}
	if minTokens <= 0 {
		minTokens = DefaultMinTokens
	}

	merged := make([]types.Chunk, 0, len(chunks))
	merged = append(merged, chunks[0])

	for _, chunk := range chunks[1:] {
		if EstimateTokens(chunk.Content) < minTokens {
			last := &merged[len(merged)-1]
			last.Content = last.Content + "\n\n" + chunk.Content
			continue
		}
		merged = append(merged, chunk)
	}

	return merged
}

// SplitTableRows subdivides a markdown table into parts that each fit
// maxTokens, splitting only at row boundaries. The table's first two lines
// (column header and separator) are repeated at the start of every part,
// prefixed by contextHeader. A single data row that alone exceeds the budget
// is emitted as its own oversized part rather than truncated.
//
// A table that fits the budget comes back as a single part.
func SplitTableRows(table, contextHeader string, maxTokens int) []string {
	full := contextHeader + table
	if EstimateTokens(full) <= maxTokens {
		return []string{full}
	}

	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	if len(lines) <= 2 {
		return []string{full}
	}

	headerLines := lines[:2]
	dataLines := lines[2:]

	prefix := contextHeader + strings.Join(headerLines, "\n")

	var parts []string
	current := prefix
	rowsInPart := 0

	for _, row := range dataLines {
		candidate := current + "\n" + row
		if EstimateTokens(candidate) > maxTokens && rowsInPart > 0 {
			parts = append(parts, current)
			current = prefix + "\n" + row
			rowsInPart = 1
			continue
		}
		current = candidate
		rowsInPart++
	}

	if rowsInPart > 0 {
		parts = append(parts, current)
	}

	return parts
}
