package ai

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed prompts/caption.txt
var captionPrompt string

// maxCaptionImageSize is the longest image edge sent to a vision model;
// larger inputs only cost more without improving captions.
const maxCaptionImageSize = 800

// buildCaptionPrompt combines the embedded system prompt with the event
// context and its highlight vocabulary.
func buildCaptionPrompt(eventType string, highlightVocab []string) string {
	var b strings.Builder
	b.WriteString(captionPrompt)
	if eventType != "" {
		fmt.Fprintf(&b, "\nEvent context: %s\n", eventType)
	}
	if len(highlightVocab) > 0 {
		fmt.Fprintf(&b, "Allowed event highlight tags: %s\n", strings.Join(highlightVocab, ", "))
	}
	return b.String()
}

// filterHighlights drops highlight tags outside the allowed vocabulary.
func filterHighlights(tags, vocab []string) []string {
	if len(vocab) == 0 {
		return tags
	}
	allowed := make(map[string]struct{}, len(vocab))
	for _, v := range vocab {
		allowed[v] = struct{}{}
	}
	var out []string
	for _, t := range tags {
		if _, ok := allowed[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
