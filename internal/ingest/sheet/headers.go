// Package sheet turns spreadsheet-shaped workout data into programs.
//
// A sheet is a 2-D grid of cell strings. The header row is located, its
// labels are matched against candidate names for each semantic field, and
// every row below it becomes a Record. Records are then grouped into days.
package sheet

import "strings"

// NormalizeHeader lower-cases a header and collapses whitespace runs.
func NormalizeHeader(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ResolveColumn returns the index of the header that best matches one of the
// candidates. Candidates are tried in priority order, first for an exact
// match of the normalized header and then for a substring match.
func ResolveColumn(headers, candidates []string) (int, bool) {
	if len(candidates) == 0 {
		return -1, false
	}
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	for _, c := range candidates {
		c = NormalizeHeader(c)
		for i, h := range normalized {
			if h == c {
				return i, true
			}
		}
	}
	for _, c := range candidates {
		c = NormalizeHeader(c)
		if c == "" {
			continue
		}
		for i, h := range normalized {
			if strings.Contains(h, c) {
				return i, true
			}
		}
	}
	return -1, false
}
