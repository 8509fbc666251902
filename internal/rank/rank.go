// Package rank orders final entities and applies the result cap.
package rank

import (
	"sort"

	"github.com/sightlinehq/sightline/internal/signal"
)

// Rank sorts entities by score descending, breaking ties by evidence
// count descending and then ID ascending for full determinism, and
// truncates to cap. The input is never mutated; a new slice is
// returned. A cap of zero or less means no cap.
func Rank(entities []signal.Entity, cap int) []signal.Entity {
	out := make([]signal.Entity, len(entities))
	copy(out, entities)

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if len(a.Evidence) != len(b.Evidence) {
			return len(a.Evidence) > len(b.Evidence)
		}
		return a.ID < b.ID
	})

	if cap > 0 && len(out) > cap {
		out = out[:cap]
	}
	return out
}
