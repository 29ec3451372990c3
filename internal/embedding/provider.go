// Package embedding provides adapters for external text-embedding APIs. Each
// adapter implements the knowledge.Embedder contract: one outbound call per
// invocation, no caching, no internal retries. Vectors produced under
// different models (or model versions) are not comparable; the model is a
// configuration detail and embeddings carry no version tag.
package embedding

// DefaultMaxInputChars bounds the text submitted to the embedding model, to
// stay under provider token limits.
const DefaultMaxInputChars = 8000

// Truncate silently cuts text to its leading limit runes. This is documented
// behavior, not an error: oversized content is embedded from its prefix. A
// non-positive limit disables truncation.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	return string(runes[:limit])
}
