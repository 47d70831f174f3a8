// Package strings provides string list helpers shared by configuration and
// request parsing.
package strings

import (
	"strings"
)

// SplitList splits raw on sep, trims each element and drops empties and
// duplicates. Order of first occurrence is preserved.
//
// Example:
//
//	SplitList(" kafka-1:9092,kafka-2:9092,,kafka-1:9092", ",")
//	// Returns: []string{"kafka-1:9092", "kafka-2:9092"}
func SplitList(raw, sep string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return dedupe(strings.Split(raw, sep), strings.TrimSpace)
}

// DedupeAndTrimUpper trims and upper-cases each element, dropping empties
// and duplicates. Membership numbers compare this way.
//
// Example:
//
//	DedupeAndTrimUpper([]string{" ab123", "AB123", "cd456 "})
//	// Returns: []string{"AB123", "CD456"}
func DedupeAndTrimUpper(values []string) []string {
	return dedupe(values, func(v string) string {
		return strings.ToUpper(strings.TrimSpace(v))
	})
}

func dedupe(values []string, normalize func(string) string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		n := normalize(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			result = append(result, n)
		}
	}

	return result
}
