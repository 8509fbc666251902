// Package synthesis normalizes surviving clusters into signal entities.
// The rule-based synthesizer is the deterministic default; a generative
// synthesizer can delegate to an external text model but always falls
// back to the rules on failure.
package synthesis

import (
	"context"
	"fmt"

	"github.com/sightlinehq/sightline/internal/profile"
	"github.com/sightlinehq/sightline/internal/signal"
	"github.com/sightlinehq/sightline/internal/text"
)

// Synthesizer turns scored clusters into entities. Implementations must
// never produce an entity with empty evidence; such clusters are
// dropped instead.
type Synthesizer interface {
	Synthesize(ctx context.Context, scored []signal.ScoredCluster, p profile.Profile) []signal.Entity
}

// Rules is the deterministic rule-based synthesizer: title from the
// cluster's most specific member, verbatim quotes as evidence, category
// via keyword rules.
type Rules struct{}

// NewRules returns the rule-based synthesizer.
func NewRules() *Rules {
	return &Rules{}
}

// Synthesize maps each cluster to an entity. Clusters with no usable
// evidence are skipped.
func (r *Rules) Synthesize(_ context.Context, scored []signal.ScoredCluster, _ profile.Profile) []signal.Entity {
	entities := make([]signal.Entity, 0, len(scored))
	for _, sc := range scored {
		ev := evidenceFromMembers(sc.Cluster.Members)
		if len(ev) == 0 {
			continue
		}
		entities = append(entities, signal.Entity{
			ID:          signal.ClusterID(sc.Cluster),
			Category:    classifyCategory(sc.Cluster.Text()),
			Title:       titleFrom(sc.Cluster),
			Rationale:   rationaleFrom(sc.Cluster),
			Evidence:    ev,
			Score:       sc.Composite,
			Synthesized: false,
		})
	}
	return entities
}

// evidenceFromMembers copies member quotes verbatim.
func evidenceFromMembers(members []signal.RawRecord) []signal.Evidence {
	ev := make([]signal.Evidence, 0, len(members))
	for _, m := range members {
		if m.Text == "" {
			continue
		}
		ev = append(ev, signal.Evidence{
			Quote:      m.Text,
			SourceName: m.SourceName,
			SourceURL:  m.SourceURL,
		})
	}
	return ev
}

// titleFrom extracts a short title from the most specific member: the
// one with the most digits and outcome language.
func titleFrom(c signal.EvidenceCluster) string {
	best := c.Members[0].Text
	bestScore := -1
	for _, m := range c.Members {
		s := 0
		for _, r := range m.Text {
			if r >= '0' && r <= '9' {
				s++
			}
		}
		if text.ContainsAnyFold(m.Text, fearWords) || text.ContainsAnyFold(m.Text, desireWords) {
			s += 2
		}
		if s > bestScore {
			bestScore = s
			best = m.Text
		}
	}
	return text.Truncate(text.FirstSentence(best), 80)
}

// rationaleFrom summarizes why the cluster matters.
func rationaleFrom(c signal.EvidenceCluster) string {
	n := c.DistinctSourceCount()
	if n > 1 {
		return fmt.Sprintf("Reported independently by %d sources; corroborated signals are more likely to reflect real demand.", n)
	}
	return "Single-source signal from " + c.Members[0].SourceName + "; treat as an early indicator."
}

var (
	fearWords = []string{
		"worried", "afraid", "scared", "risk", "scam", "lost", "mistake",
		"regret", "warning", "avoid", "burned",
	}
	desireWords = []string{
		"want", "wish", "looking for", "need", "hoping", "recommend",
		"love to", "searching",
	}
)

// classifyCategory assigns fear/desire/pain-point from keyword rules.
// Pain point is the default: most raw complaints are pain points.
func classifyCategory(body string) signal.Category {
	if text.ContainsAnyFold(body, fearWords) {
		return signal.CategoryFear
	}
	if text.ContainsAnyFold(body, desireWords) {
		return signal.CategoryDesire
	}
	return signal.CategoryPainPoint
}
