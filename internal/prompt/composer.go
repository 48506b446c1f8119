package prompt

import (
	"fmt"
	"sort"
	"strings"

	"clinic-assistant/internal/knowledge"
	"clinic-assistant/internal/vectorindex"
)

// Compose merges a base persona prompt with knowledge entries into the final
// system prompt. It is a pure function: no I/O, no input mutation.
//
// With no entries the base prompt is returned unchanged. Otherwise a
// structured knowledge section is appended: entries grouped by category,
// categories ordered lexicographically (case-insensitive) so the output is
// deterministic regardless of input order, and each entry rendered as
// "Title: content [Source: fileName]" with an optional Tags line.
func Compose(basePrompt string, entries []knowledge.Entry) string {
	if len(entries) == 0 {
		return basePrompt
	}

	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\nADDITIONAL KNOWLEDGE BASE:\n")
	b.WriteString("When referencing information from these sources, please cite them by mentioning [Source: filename] at the end of relevant statements.\n")

	grouped := make(map[string][]knowledge.Entry)
	headers := make(map[string]string)
	for _, entry := range entries {
		key := strings.ToLower(entry.Category)
		grouped[key] = append(grouped[key], entry)
		if _, ok := headers[key]; !ok {
			headers[key] = strings.ToUpper(entry.Category)
		}
	}

	keys := make([]string, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		b.WriteString("\n")
		b.WriteString(headers[key])
		b.WriteString(":\n")
		for _, entry := range grouped[key] {
			sourceInfo := ""
			if entry.FileName != "" {
				sourceInfo = fmt.Sprintf(" [Source: %s]", entry.FileName)
			}
			b.WriteString(fmt.Sprintf("- %s: %s%s\n", entry.Title, entry.Content, sourceInfo))
			if len(entry.Tags) > 0 {
				b.WriteString(fmt.Sprintf("  Tags: %s\n", strings.Join(entry.Tags, ", ")))
			}
		}
	}

	return b.String()
}

// ComposeWithContext merges a base persona prompt with retrieval-ranked
// chunks instead of flat knowledge entries. Chunks are rendered in rank
// order with their document name as the citation source. Pure like Compose;
// with no chunks the base prompt is returned unchanged.
func ComposeWithContext(basePrompt string, chunks []vectorindex.ScoredChunk) string {
	if len(chunks) == 0 {
		return basePrompt
	}

	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\nRELEVANT CLINIC DOCUMENTS:\n")
	b.WriteString("When referencing information from these documents, please cite them by mentioning [Source: document name] at the end of relevant statements.\n\n")

	for _, chunk := range chunks {
		b.WriteString(fmt.Sprintf("- %s (page %d): %s\n", chunk.DocumentName, chunk.Metadata.PageNumber, chunk.Content))
	}

	return b.String()
}
