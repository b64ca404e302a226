// Package engine implements community discovery, query planning, and the
// two-phase fan-out search over the reddit client.
package engine

import (
	"regexp"
	"strings"
)

var (
	andToken   = regexp.MustCompile(`\bAND\b`)
	parens     = regexp.MustCompile(`[()]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// SanitizeQuery normalizes a free-text boolean query into the simplified
// OR-only, quote-aware syntax the search backend tolerates: explicit AND
// tokens are dropped (space-separated terms imply AND), parentheses are
// flattened, and whitespace is collapsed. Idempotent.
func SanitizeQuery(query string) string {
	query = andToken.ReplaceAllString(query, "")
	query = parens.ReplaceAllString(query, "")
	return strings.TrimSpace(whitespace.ReplaceAllString(query, " "))
}
