// internal/service/explore/normalize.go

package explore

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizeText folds a name, label, or query for matching: trim, strip
// accents, lower-case, and map the Turkish dotless ı to i so "Üsküdar",
// "KINALI", and queries typed on non-Turkish keyboards all compare equal.
func normalizeText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	// The chain is stateful, so build one per call.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "ı", "i")
}

// normalizeKey folds a category key for comparison. Keys are plain ASCII
// identifiers, so a simple case fold is enough.
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
