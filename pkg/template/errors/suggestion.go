package errors

import (
	"fmt"
	"strings"
)

// SuggestMissingField builds a suggestion for a missing required field.
func SuggestMissingField(field, example string) string {
	return fmt.Sprintf("Add '%s' (example: %s)", field, example)
}

// SuggestEntryKind suggests the closest field-entry or validator kind
// when an unknown one is declared.
func SuggestEntryKind(unknown string, valid []string) string {
	if len(valid) == 0 {
		return ""
	}

	minDistance := 1000
	var bestMatch string
	for _, kind := range valid {
		dist := levenshteinDistance(unknown, kind)
		if dist < minDistance {
			minDistance = dist
			bestMatch = kind
		}
	}

	// Only suggest a specific kind when the edit distance is small
	if minDistance < 5 {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}

	return fmt.Sprintf("Valid kinds: %s", strings.Join(valid, ", "))
}

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
