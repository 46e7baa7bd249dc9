// Package intelligence implements the heuristic conversation-intelligence
// pipeline: pattern extraction, style and preference analysis, contextual
// reasoning and workflow suggestions.
package intelligence

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Completion responses rarely arrive as clean JSON. Parsing is layered:
// locate the JSON substring, attempt a strict parse, repair common damage and
// retry, and only then let the caller fall back to positional extraction or
// static defaults. Each layer is independently testable.

var errNoJSON = errors.New("no JSON payload found")

// extractArray returns the first balanced [...] substring of text.
func extractArray(text string) (string, error) {
	return extractBalanced(text, '[', ']')
}

// extractObject returns the first balanced {...} substring of text.
func extractObject(text string) (string, error) {
	return extractBalanced(text, '{', '}')
}

func extractBalanced(text string, open, close byte) (string, error) {
	start := strings.IndexByte(text, open)
	if start < 0 {
		return "", errNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}

	return "", errNoJSON
}

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	smartQuoteRe    = regexp.MustCompile("[“”‘’]")
)

// repairJSON applies string-level fixes for the damage completion models
// most often produce: trailing commas and typographic quotes.
func repairJSON(raw string) string {
	repaired := trailingCommaRe.ReplaceAllString(raw, "$1")
	repaired = smartQuoteRe.ReplaceAllString(repaired, `"`)
	return repaired
}

// parseArray locates the first JSON array in text and decodes it into v,
// retrying once after repair.
func parseArray(text string, v any) error {
	raw, err := extractArray(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}
	return json.Unmarshal([]byte(repairJSON(raw)), v)
}

// parseObject locates the first JSON object in text and decodes it into v,
// retrying once after repair.
func parseObject(text string, v any) error {
	raw, err := extractObject(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}
	return json.Unmarshal([]byte(repairJSON(raw)), v)
}

// clamp01 clamps a confidence or strength value to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// wordOverlap reports whether a and b share any word longer than 3 characters.
func wordOverlap(a, b string) bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(a)) {
		w = strings.Trim(w, ".,!?;:\"'()")
		if len(w) > 3 {
			words[w] = true
		}
	}
	for _, w := range strings.Fields(strings.ToLower(b)) {
		w = strings.Trim(w, ".,!?;:\"'()")
		if len(w) > 3 && words[w] {
			return true
		}
	}
	return false
}

// truncate shortens s to max bytes, appending an ellipsis when cut.
// truncate shortens s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
