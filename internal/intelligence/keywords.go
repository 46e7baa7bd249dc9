package intelligence

import "strings"

// Shared keyword sets used by the heuristic extractors. These are fixed
// lexicons, not configuration.

var imageKeywords = []string{
	"image", "picture", "photo", "draw", "illustration", "render", "visualize", "sketch",
}

// countKeywords returns how many entries of set occur in text (case
// insensitive substring match, one count per keyword).
func countKeywords(text string, set []string) int {
	lower := strings.ToLower(text)
	count := 0
	for _, kw := range set {
		if strings.Contains(lower, kw) {
			count++
		}
	}
	return count
}

// containsAny reports whether any keyword of set occurs in text.
func containsAny(text string, set []string) bool {
	return countKeywords(text, set) > 0
}

// avgSentenceLength returns the mean number of words per sentence in text.
func avgSentenceLength(text string) float64 {
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	if len(sentences) == 0 {
		return 0
	}
	words := 0
	n := 0
	for _, s := range sentences {
		fields := strings.Fields(s)
		if len(fields) == 0 {
			continue
		}
		words += len(fields)
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(words) / float64(n)
}
