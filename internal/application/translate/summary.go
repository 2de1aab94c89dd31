package translate

import "strings"

// summaryLimit is the hard character cap for a term summary.
const summaryLimit = 160

// sentenceDelimiters are tried in order; the first one present cuts the text.
var sentenceDelimiters = []string{". ", "。", "…", "!", "?"}

// pickSummary derives a one-line summary from article contents: the first
// sentence of the first non-empty content, capped at summaryLimit characters
// with an ellipsis.  Returns "" when no content carries text.
func pickSummary(contents []string) string {
	for _, text := range contents {
		if text == "" {
			continue
		}
		cleaned := strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
		if cleaned == "" {
			continue
		}
		for _, delim := range sentenceDelimiters {
			if idx := strings.Index(cleaned, delim); idx >= 0 {
				cleaned = cleaned[:idx]
				break
			}
		}
		if runes := []rune(cleaned); len(runes) > summaryLimit {
			return string(runes[:summaryLimit-1]) + "…"
		}
		return cleaned
	}
	return ""
}
