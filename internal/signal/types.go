// Package signal defines the data model that flows through the pipeline:
// raw records from source adapters, evidence clusters, scored clusters,
// and the final ranked signal entities.
package signal

import "time"

// PlatformTier ranks source platforms by editorial trust.
type PlatformTier int

const (
	// TierReview covers trusted review and forum platforms.
	TierReview PlatformTier = 1
	// TierProfessional covers professional and news platforms.
	TierProfessional PlatformTier = 2
	// TierSocial covers generic social platforms.
	TierSocial PlatformTier = 3
)

// Valid reports whether t is one of the three declared tiers.
func (t PlatformTier) Valid() bool {
	return t >= TierReview && t <= TierSocial
}

// RawRecord is a single item returned by a source adapter.
// Immutable once created; owned by the evidence buffer until clustering.
type RawRecord struct {
	Text       string
	SourceName string
	SourceURL  string // optional; must be well-formed when present
	Author     string // optional; empty for anonymous text
	CapturedAt time.Time
	Tier       PlatformTier
}

// EvidenceCluster groups raw records judged to describe the same
// underlying fact. Members is never empty; singleton clusters are valid.
type EvidenceCluster struct {
	Members []RawRecord
}

// DistinctSourceCount returns the number of distinct source names
// contributing to the cluster.
func (c EvidenceCluster) DistinctSourceCount() int {
	seen := make(map[string]bool, len(c.Members))
	for _, m := range c.Members {
		seen[m.SourceName] = true
	}
	return len(seen)
}

// EarliestCapturedAt returns the oldest capture time among members.
func (c EvidenceCluster) EarliestCapturedAt() time.Time {
	if len(c.Members) == 0 {
		return time.Time{}
	}
	earliest := c.Members[0].CapturedAt
	for _, m := range c.Members[1:] {
		if m.CapturedAt.Before(earliest) {
			earliest = m.CapturedAt
		}
	}
	return earliest
}

// LatestCapturedAt returns the newest capture time among members.
func (c EvidenceCluster) LatestCapturedAt() time.Time {
	if len(c.Members) == 0 {
		return time.Time{}
	}
	latest := c.Members[0].CapturedAt
	for _, m := range c.Members[1:] {
		if m.CapturedAt.After(latest) {
			latest = m.CapturedAt
		}
	}
	return latest
}

// BestTier returns the most trusted (lowest-numbered) tier among members.
func (c EvidenceCluster) BestTier() PlatformTier {
	if len(c.Members) == 0 {
		return TierSocial
	}
	best := c.Members[0].Tier
	for _, m := range c.Members[1:] {
		if m.Tier < best {
			best = m.Tier
		}
	}
	return best
}

// Text returns the concatenated member texts, used for topic and
// vocabulary matching.
func (c EvidenceCluster) Text() string {
	var out string
	for i, m := range c.Members {
		if i > 0 {
			out += " "
		}
		out += m.Text
	}
	return out
}

// ScoreBreakdown holds the individual confidence factors, each in [0,1].
type ScoreBreakdown struct {
	Recency      float64 `json:"recency"`
	Authority    float64 `json:"authority"`
	Specificity  float64 `json:"specificity"`
	Verification float64 `json:"verification"`
	ProfileFit   float64 `json:"profile_fit"`
}

// ScoredCluster is an evidence cluster plus its score breakdown and the
// weighted composite. Composite is a pure function of Breakdown and the
// profile's weight vector.
type ScoredCluster struct {
	Cluster   EvidenceCluster
	Breakdown ScoreBreakdown
	Composite float64
}

// Category classifies what kind of buying signal an entity represents.
type Category string

const (
	CategoryFear      Category = "fear"
	CategoryDesire    Category = "desire"
	CategoryPainPoint Category = "pain_point"
)

// Evidence is a single supporting quote attached to an entity.
type Evidence struct {
	Quote      string `json:"quote"`
	SourceName string `json:"source_name"`
	SourceURL  string `json:"source_url,omitempty"`
}

// Entity is the final output unit: a ranked, deduplicated, explainable
// signal. Immutable after creation; superseded, not mutated, by the next
// pipeline run.
type Entity struct {
	ID          string     `json:"id"`
	Category    Category   `json:"category"`
	Title       string     `json:"title"`
	Rationale   string     `json:"rationale"`
	Evidence    []Evidence `json:"evidence"`
	Score       float64    `json:"score"`
	Synthesized bool       `json:"synthesized"`
}
