package services

import (
	"regexp"
	"strings"
)

// Model output is free text; extraction is best-effort by construction and
// lives here, out of the request path, so it stays independently testable.

var productTypeRe = regexp.MustCompile(`(?im)^\s*product type\s*:\s*(.+)$`)

const (
	displayNameMaxRunes = 30
	displayNameFallback = "Unnamed scan"
)

// ExtractDisplayName derives a short label for scan history from the model
// output. Fallback chain: labeled "Product Type:" line, then a truncation of
// the text, then a fixed placeholder. Never returns an empty string.
func ExtractDisplayName(output string) string {
	trimmed := strings.TrimSpace(output)

	if m := productTypeRe.FindStringSubmatch(trimmed); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			return name
		}
	}

	runes := []rune(trimmed)
	if len(runes) > displayNameMaxRunes {
		return string(runes[:displayNameMaxRunes]) + "..."
	}
	if trimmed != "" {
		return trimmed
	}
	return displayNameFallback
}

// OverallPass is the coarse pass/fail heuristic: the response mentions
// "friendly" (as in "vegan-friendly"), case-insensitive. It is a keyword
// check, not a classifier.
func OverallPass(output string) bool {
	return strings.Contains(strings.ToLower(output), "friendly")
}
