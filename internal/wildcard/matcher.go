// Package wildcard compiles blueprint argument keys containing "..." path
// wildcards into structural matchers, and scores how close a key is to a
// candidate parameter path for typo suggestions.
package wildcard

import (
	"regexp"
	"strings"
	"sync"
)

const ellipsis = "..."

// Matcher is a compiled wildcard key. It accepts a concrete, dot-separated
// parameter path iff the path matches the pattern the key was compiled from.
type Matcher struct {
	key string
	re  *regexp.Regexp
}

// Key returns the original wildcard key this matcher was compiled from.
func (m *Matcher) Key() string { return m.key }

// Match reports whether path satisfies the compiled wildcard key.
func (m *Matcher) Match(path string) bool { return m.re.MatchString(path) }

// IsWildcard reports whether key contains the "..." token and therefore
// requires compilation rather than exact comparison.
func IsWildcard(key string) bool { return strings.Contains(key, ellipsis) }

var (
	cacheMu sync.Mutex
	cache   = map[string]*Matcher{}
)

// Compile translates a wildcard key into a structural matcher. Compiled
// matchers are cached per key, since the same key is typically matched
// against many candidate paths over the lifetime of a Blueprint.
func Compile(key string) *Matcher {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if m, ok := cache[key]; ok {
		return m
	}
	m := &Matcher{key: key, re: compileRegexp(key)}
	cache[key] = m
	return m
}

// compileRegexp translates a key into an anchored pattern. The "..." token
// stands for one or more whole path segments, and its dots double as the
// separators toward any adjacent literal text: "...name" is any segments
// then a final "name" segment, "a...c" is an "a" segment, at least one
// segment in between, then a "c" segment. Everything outside the token is
// escaped literally; full-match semantics.
func compileRegexp(key string) *regexp.Regexp {
	parts := strings.Split(key, ellipsis)
	var sb strings.Builder
	sb.WriteString("^")
	for i, part := range parts {
		if i > 0 {
			leading := parts[i-1] == "" && i == 1
			trailing := part == "" && i == len(parts)-1
			switch {
			case leading && trailing:
				sb.WriteString(`.+`)
			case leading:
				sb.WriteString(`(?:[^.]+\.)+`)
			case trailing:
				sb.WriteString(`(?:\.[^.]+)+`)
			default:
				sb.WriteString(`\.(?:[^.]+\.)+`)
			}
		}
		sb.WriteString(regexp.QuoteMeta(part))
	}
	sb.WriteString("$")
	return regexp.MustCompile(sb.String())
}

// Approx scores how well key (which may or may not contain wildcards)
// approximates candidate, for use in "did you mean" suggestions. The score
// is a SequenceMatcher-style ratio: twice the length of the longest common
// subsequence between key's literal content (with "..." tokens elided) and
// candidate, divided by the sum of their lengths. 1.0 is an exact match, 0.0
// shares no characters in order. Scores below ApproxThreshold should
// suppress the suggestion.
func Approx(key, candidate string) (score float64, best string) {
	literal := literalOf(key)
	if literal == "" || candidate == "" {
		return 0, candidate
	}
	lcs := lcsLen(literal, candidate)
	score = 2 * float64(lcs) / float64(len(literal)+len(candidate))
	return score, candidate
}

// literalOf strips "..." tokens out of a wildcard key, leaving the literal
// segments joined back together, so approximate matching only considers
// content the user could plausibly have mistyped.
func literalOf(key string) string {
	parts := strings.Split(key, ellipsis)
	kept := parts[:0:0]
	for _, part := range parts {
		if part = strings.Trim(part, "."); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ".")
}

// lcsLen computes the length of the longest common subsequence of a and b.
func lcsLen(a, b string) int {
	n, m := len(a), len(b)
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[m]
}

// ApproxThreshold is the minimum Approx score for a suggestion to be worth
// surfacing to the user.
const ApproxThreshold = 0.1
