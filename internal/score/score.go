// Package score computes the multi-factor confidence breakdown for
// evidence clusters and the weighted composite. Every factor is a pure
// function of the cluster, the profile, and the scorer's fixed clock:
// no I/O, no randomness, identical inputs always score identically.
package score

import (
	"math"
	"strings"
	"time"

	"github.com/sightlinehq/sightline/internal/profile"
	"github.com/sightlinehq/sightline/internal/signal"
	"github.com/sightlinehq/sightline/internal/text"
)

// Recency decay shape: full score inside the grace window, then
// exponential decay with the given half-life, floored so old evidence
// stays weakly useful.
const (
	recencyGrace    = 14 * 24 * time.Hour
	recencyHalfLife = 23 * 24 * time.Hour
	recencyFloor    = 0.25
)

// Scorer scores clusters against a profile. Now is fixed at
// construction so a batch scores consistently and tests are
// reproducible.
type Scorer struct {
	Now time.Time
}

// New returns a scorer pinned to the given time.
func New(now time.Time) *Scorer {
	return &Scorer{Now: now}
}

// Score computes the factor breakdown and weighted composite for one
// cluster.
func (s *Scorer) Score(c signal.EvidenceCluster, p profile.Profile) signal.ScoredCluster {
	breakdown := signal.ScoreBreakdown{
		Recency:      s.recency(c),
		Authority:    authority(c, p),
		Specificity:  specificity(c),
		Verification: verification(c),
		ProfileFit:   profileFit(c, p),
	}
	return signal.ScoredCluster{
		Cluster:   c,
		Breakdown: breakdown,
		Composite: Composite(breakdown, p.Weights),
	}
}

// ScoreAll scores a batch, preserving cluster order.
func (s *Scorer) ScoreAll(clusters []signal.EvidenceCluster, p profile.Profile) []signal.ScoredCluster {
	out := make([]signal.ScoredCluster, 0, len(clusters))
	for _, c := range clusters {
		out = append(out, s.Score(c, p))
	}
	return out
}

// Composite is the weighted sum of the breakdown. The weight vector is
// validated at configuration load, never here.
func Composite(b signal.ScoreBreakdown, w profile.Weights) float64 {
	return b.Recency*w.Recency +
		b.Authority*w.Authority +
		b.Specificity*w.Specificity +
		b.Verification*w.Verification +
		b.ProfileFit*w.ProfileFit
}

// recency scores 1.0 for evidence newer than the grace window, then
// decays exponentially, never below the floor.
func (s *Scorer) recency(c signal.EvidenceCluster) float64 {
	age := s.Now.Sub(c.LatestCapturedAt())
	if age <= recencyGrace {
		return 1.0
	}
	halfLives := float64(age-recencyGrace) / float64(recencyHalfLife)
	score := math.Pow(0.5, halfLives)
	if score < recencyFloor {
		return recencyFloor
	}
	return score
}

// tierBase maps platform tiers to their authority baseline. Tier 3
// (generic social) is penalized below the others.
var tierBase = map[signal.PlatformTier]float64{
	signal.TierReview:       1.0,
	signal.TierProfessional: 0.8,
	signal.TierSocial:       0.55,
}

// authority scores from the strongest member after applying the
// profile's per-source multiplier to each tier base, with a bonus per
// additional distinct source. A boosted source can lift a penalized
// tier toward the ceiling; a down-weighted source scores below its
// tier base.
func authority(c signal.EvidenceCluster, p profile.Profile) float64 {
	if len(c.Members) == 0 {
		return 0
	}
	var best float64
	for _, m := range c.Members {
		base, ok := tierBase[m.Tier]
		if !ok {
			base = tierBase[signal.TierSocial]
		}
		if weighted := base * p.SourceWeight(m.SourceName); weighted > best {
			best = weighted
		}
	}
	best = math.Min(best, 1.0)
	bonus := 0.1 * float64(c.DistinctSourceCount()-1)
	return math.Min(best+bonus, 1.0)
}

// outcomeWords signal concrete results rather than vague sentiment.
var outcomeWords = []string{
	"increased", "decreased", "saved", "grew", "doubled", "reduced",
	"cancelled", "switched", "refund", "charged", "waited", "fixed",
	"resolved", "hired", "signed", "lost", "won",
}

// genericWords signal low-information complaint language.
var genericWords = []string{
	"bad", "terrible", "awful", "great", "nice", "good", "horrible",
	"amazing", "worst", "best", "love", "hate",
}

// specificity rewards concrete quantities and outcome language and
// penalizes purely generic sentiment.
func specificity(c signal.EvidenceCluster) float64 {
	body := c.Text()
	score := 0.3

	if strings.ContainsAny(body, "0123456789") {
		score += 0.25
	}
	if strings.ContainsAny(body, "$€£%") {
		score += 0.15
	}
	if text.ContainsAnyFold(body, outcomeWords) {
		score += 0.25
	}

	// Generic-only text drops toward the floor.
	if text.ContainsAnyFold(body, genericWords) && score <= 0.3 {
		score = 0.15
	}
	return math.Min(score, 1.0)
}

// verification rewards attributable evidence: a named author beats
// anonymous text, and independent corroboration adds on top.
func verification(c signal.EvidenceCluster) float64 {
	score := 0.3
	for _, m := range c.Members {
		if strings.TrimSpace(m.Author) != "" {
			score = 0.9
			break
		}
	}
	if n := c.DistinctSourceCount(); n > 1 {
		score += 0.05 * float64(n-1)
	}
	return math.Min(score, 1.0)
}

// profileFit measures overlap between cluster text and the profile
// vocabulary, weighted by term importance.
func profileFit(c signal.EvidenceCluster, p profile.Profile) float64 {
	if len(p.Vocabulary) == 0 {
		return 0.5
	}
	tokens := text.TokenSet(c.Text())

	var matched, total float64
	for term, weight := range p.Vocabulary {
		total += weight
		if tokens[term] {
			matched += weight
		}
	}
	if total == 0 {
		return 0.5
	}
	// Scale so matching a third of the weighted vocabulary already
	// counts as a strong fit; full overlap is rare in short quotes.
	fit := 3 * matched / total
	return math.Min(fit, 1.0)
}
