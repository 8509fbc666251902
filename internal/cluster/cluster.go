// Package cluster groups near-duplicate raw records into evidence
// clusters: the same underlying fact reported by multiple sources, or
// phrased differently by one.
package cluster

import (
	"sort"

	"github.com/sightlinehq/sightline/internal/signal"
	"github.com/sightlinehq/sightline/internal/text"
)

// simhashPrefilter skips the Jaccard comparison for pairs whose hashes
// disagree on more than 20% of bits; such pairs cannot be duplicates.
const simhashPrefilter = 0.80

// Clusterer groups records whose token-set overlap meets the similarity
// threshold. Grouping is single-link: a record joins a cluster if it is
// similar enough to any member.
type Clusterer struct {
	// Similarity is the minimum token-set Jaccard overlap, in (0,1].
	Similarity float64
}

// New returns a clusterer with the given similarity threshold.
func New(similarity float64) *Clusterer {
	return &Clusterer{Similarity: similarity}
}

// member pairs a record with its precomputed similarity inputs.
type member struct {
	record signal.RawRecord
	tokens map[string]bool
	hash   uint64
}

// Cluster groups records into evidence clusters. Empty input yields
// empty output. The output order is deterministic for a given input set
// regardless of input order: distinct-source count descending, earliest
// capture ascending, then cluster ID.
func (c *Clusterer) Cluster(records []signal.RawRecord) []signal.EvidenceCluster {
	if len(records) == 0 {
		return nil
	}

	// Canonicalize input order so grouping never depends on which
	// source completed first.
	sorted := make([]signal.RawRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.CapturedAt.Equal(b.CapturedAt) {
			return a.CapturedAt.Before(b.CapturedAt)
		}
		if a.SourceName != b.SourceName {
			return a.SourceName < b.SourceName
		}
		return a.Text < b.Text
	})

	members := make([]member, len(sorted))
	for i, r := range sorted {
		members[i] = member{
			record: r,
			tokens: text.TokenSet(r.Text),
			hash:   SimHash(r.Text),
		}
	}

	var groups [][]member
	for _, m := range members {
		placed := false
		for gi, group := range groups {
			if c.belongs(m, group) {
				groups[gi] = append(group, m)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []member{m})
		}
	}

	clusters := make([]signal.EvidenceCluster, 0, len(groups))
	for _, group := range groups {
		ec := signal.EvidenceCluster{Members: make([]signal.RawRecord, 0, len(group))}
		for _, m := range group {
			ec.Members = append(ec.Members, m.record)
		}
		clusters = append(clusters, ec)
	}

	sort.Slice(clusters, func(i, j int) bool {
		a, b := clusters[i], clusters[j]
		if da, db := a.DistinctSourceCount(), b.DistinctSourceCount(); da != db {
			return da > db
		}
		if ea, eb := a.EarliestCapturedAt(), b.EarliestCapturedAt(); !ea.Equal(eb) {
			return ea.Before(eb)
		}
		return signal.ClusterID(a) < signal.ClusterID(b)
	})
	return clusters
}

// belongs reports whether m is similar enough to any group member.
func (c *Clusterer) belongs(m member, group []member) bool {
	for _, other := range group {
		if SimilarityScore(m.hash, other.hash) < simhashPrefilter {
			continue
		}
		if text.Jaccard(m.tokens, other.tokens) >= c.Similarity {
			return true
		}
	}
	return false
}
