// Package diag holds the typo/nesting/hyphen suggestion logic shared by the
// argument map's extraneity audit and the lazy graph's reference-target
// validation, so both diagnostics read consistently.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/latticeforge/chz/internal/wildcard"
)

// BestMatch finds the candidate (from paths) that best approximates key and
// returns a "Did you mean %q?" hint, or "" if nothing reaches the
// suggestion threshold.
func BestMatch(key string, paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	bestScore := -1.0
	bestPath := ""
	for _, p := range sorted {
		score, _ := wildcard.Approx(key, p)
		if score > bestScore {
			bestScore = score
			bestPath = p
		}
	}
	if bestScore < wildcard.ApproxThreshold {
		return ""
	}
	return fmt.Sprintf("\nDid you mean %q?", bestPath)
}

// NestingHint checks whether prefixing key with a wildcard ("..."+key) would
// match one of paths, suggesting the user got the nesting depth wrong.
func NestingHint(key string, paths []string) string {
	m := wildcard.Compile("..." + key)
	for _, p := range paths {
		if m.Match(p) {
			return fmt.Sprintf("\nDid you get the nesting wrong, maybe you meant %q?", p)
		}
	}
	return ""
}

// HyphenHint flags keys that look like they were meant to be CLI flags but
// allow_hyphens was not set on the entrypoint.
func HyphenHint(key string) string {
	if strings.HasPrefix(key, "--") {
		return "\nDid you mean to use allow_hyphens=true in your entrypoint?"
	}
	return ""
}

// ValidParentHint reports whether some strict prefix of key (split on ".")
// is itself a known parameter path, which usually means the user addressed
// a field of it incorrectly.
func ValidParentHint(key string, known map[string]bool) string {
	parts := strings.Split(key, ".")
	for i := len(parts) - 1; i >= 1; i-- {
		parent := strings.Join(parts[:i], ".")
		if known[parent] {
			return fmt.Sprintf(" (parent key %q is valid)", parent)
		}
	}
	return ""
}
