package search

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeQuery applies NFKC and trims surrounding whitespace. Full-width
// letters and non-breaking spaces typed into a search box fold to their plain
// forms, so "　Ｍｅｓｓｉ" and "Messi" issue the same lookup.
func NormalizeQuery(raw string) string {
	return strings.TrimSpace(norm.NFKC.String(raw))
}
