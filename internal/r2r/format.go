package r2r

import (
	"fmt"
	"strings"
)

// FormatSearchResults renders chunks for display or for inclusion in a
// sampling prompt. limit <= 0 formats every chunk.
func FormatSearchResults(resp *SearchResponse, limit int) string {
	chunks := resp.Results.ChunkSearchResults
	if len(chunks) == 0 {
		return "No results found"
	}
	if limit > 0 && len(chunks) > limit {
		chunks = chunks[:limit]
	}

	var b strings.Builder
	for i, chunk := range chunks {
		text := chunk.Text
		if len(text) > 200 {
			text = text[:200] + "..."
		}
		fmt.Fprintf(&b, "Result %d:\n  Score: %.3f\n  Text: %s\n  Document: %s\n\n",
			i+1, chunk.Score, text, chunk.DocumentID)
	}
	return strings.TrimRight(b.String(), "\n")
}

// ExtractCitations returns the leading text of each citation source.
func ExtractCitations(resp *RAGResponse) []string {
	sources := make([]string, 0, len(resp.Citations))
	for _, c := range resp.Citations {
		text := c.Text
		if len(text) > 100 {
			text = text[:100]
		}
		sources = append(sources, text)
	}
	return sources
}
