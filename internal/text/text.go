// Package text provides small text-normalization helpers shared by the
// clustering, scoring, and profile packages. All functions are pure.
package text

import "strings"

// stopwords are high-frequency terms excluded from token sets so that
// overlap measures reflect content words, not glue.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true,
	"has": true, "have": true, "i": true, "in": true, "is": true, "it": true,
	"its": true, "my": true, "of": true, "on": true, "or": true, "our": true,
	"so": true, "that": true, "the": true, "their": true, "they": true,
	"this": true, "to": true, "was": true, "we": true, "were": true,
	"with": true, "you": true, "your": true,
}

// Normalize lowercases s and maps every non-alphanumeric rune to a space.
func Normalize(s string) string {
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return ' '
	}, s)
}

// Tokens returns the normalized, stopword-filtered tokens of s, in order.
func Tokens(s string) []string {
	fields := strings.Fields(Normalize(s))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if stopwords[f] || len(f) < 2 {
			continue
		}
		out = append(out, f)
	}
	return out
}

// TokenSet returns the distinct normalized tokens of s.
func TokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range Tokens(s) {
		set[tok] = true
	}
	return set
}

// Jaccard computes set overlap between two token sets: |a∩b| / |a∪b|.
// Two empty sets are defined to have zero similarity.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Truncate shortens a string to maxLen runes, adding "..." if truncated.
// Uses rune-aware slicing to avoid breaking UTF-8 characters.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// FirstSentence returns the text up to the first sentence terminator,
// or the whole string if none is found.
func FirstSentence(s string) string {
	s = strings.TrimSpace(s)
	for i, r := range s {
		if r == '.' || r == '!' || r == '?' {
			return strings.TrimSpace(s[:i])
		}
	}
	return s
}

// ContainsAnyFold reports whether s contains any of the needles,
// case-insensitively.
func ContainsAnyFold(s string, needles []string) bool {
	lower := strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
