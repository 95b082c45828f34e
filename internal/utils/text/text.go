// Package text holds string normalization helpers shared by the filter,
// the mapper and the XNAT client.
package text

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns s with Unicode case folding applied, for caseless comparison.
// A new Caser is created per call since Casers are not safe for concurrent use.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Squash trims s and collapses inner runs of whitespace to a single space.
func Squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Dedupe returns values in first-seen order without empty strings or
// caseless duplicates. The first spelling seen is kept.
func Dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		key := Fold(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
