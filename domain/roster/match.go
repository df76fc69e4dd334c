// Package roster resolves a free-text player query against a list of known names.
package roster

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Fold normalizes a name for comparison: NFKC, case folded, trimmed
func Fold(s string) string {
	return strings.TrimSpace(folder.String(norm.NFKC.String(s)))
}

// BestMatch returns the index of the candidate that best matches query.
// An exact case-insensitive name wins outright; otherwise the candidate
// containing the query that sorts first by folded name is chosen.
func BestMatch(candidates []string, query string) (int, bool) {
	q := Fold(query)
	if q == "" {
		return -1, false
	}

	var partial []int
	for i, name := range candidates {
		folded := Fold(name)
		if folded == q {
			return i, true
		}
		if strings.Contains(folded, q) {
			partial = append(partial, i)
		}
	}
	if len(partial) == 0 {
		return -1, false
	}

	sort.SliceStable(partial, func(a, b int) bool {
		return Fold(candidates[partial[a]]) < Fold(candidates[partial[b]])
	})
	return partial[0], true
}

// EscapeLike escapes the LIKE wildcards in s using backslash
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
