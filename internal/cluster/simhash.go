package cluster

import "strings"

// SimHash calculates a similarity hash for near-duplicate prefiltering.
// Uses a simple word trigram approach over normalized text.
func SimHash(text string) uint64 {
	text = strings.ToLower(text)
	text = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ' ' {
			return r
		}
		return ' '
	}, text)

	var hash uint64
	words := strings.Fields(text)

	for i := 0; i < len(words)-2; i++ {
		trigram := words[i] + " " + words[i+1] + " " + words[i+2]
		var h uint64 = 5381
		for _, c := range trigram {
			h = ((h << 5) + h) + uint64(c)
		}
		hash |= (1 << (h % 64))
	}

	return hash
}

// SimilarityScore calculates how similar two SimHash values are.
// Returns 0.0 to 1.0 (1.0 = identical bits).
func SimilarityScore(hash1, hash2 uint64) float64 {
	xor := hash1 ^ hash2
	diff := 0
	for xor != 0 {
		diff++
		xor &= xor - 1
	}
	return float64(64-diff) / 64.0
}
