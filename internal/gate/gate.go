// Package gate drops clusters that score below the relevance threshold
// or whose dominant topic does not fit the business's offering. Every
// rejection records a reason so filtering decisions can be audited.
package gate

import (
	"fmt"

	"github.com/sightlinehq/sightline/internal/profile"
	"github.com/sightlinehq/sightline/internal/signal"
	"github.com/sightlinehq/sightline/internal/text"
)

// Rejection records why one cluster was dropped.
type Rejection struct {
	ClusterID string
	Reason    string
}

// Result is the gate's output: survivors in their original order plus
// the audit trail of rejections.
type Result struct {
	Survivors  []signal.ScoredCluster
	Rejections []Rejection
}

// minTopicOverlap is the fraction of a cluster's content tokens that
// must appear in the profile's offer topics for the category-fit check.
const minTopicOverlap = 0.10

// Filter applies the threshold and category-fit checks. Survivors are a
// new slice preserving scorer order; inputs are never mutated.
func Filter(scored []signal.ScoredCluster, p profile.Profile) Result {
	res := Result{Survivors: make([]signal.ScoredCluster, 0, len(scored))}
	for _, sc := range scored {
		id := signal.ClusterID(sc.Cluster)

		if sc.Composite < p.Threshold {
			res.Rejections = append(res.Rejections, Rejection{
				ClusterID: id,
				Reason:    fmt.Sprintf("composite score %.3f below threshold %.2f", sc.Composite, p.Threshold),
			})
			continue
		}

		if reason := categoryFit(sc.Cluster, p); reason != "" {
			res.Rejections = append(res.Rejections, Rejection{ClusterID: id, Reason: reason})
			continue
		}

		res.Survivors = append(res.Survivors, sc)
	}
	return res
}

// categoryFit checks that the cluster's dominant topic belongs to the
// business's offering. A complaint about an unrelated product category
// must not validate demand for this one. Returns an empty string when
// the cluster fits, otherwise the rejection reason.
func categoryFit(c signal.EvidenceCluster, p profile.Profile) string {
	if len(p.OfferTopics) == 0 {
		return ""
	}
	tokens := text.TokenSet(c.Text())
	if len(tokens) == 0 {
		return "cluster has no content tokens"
	}

	topics := make(map[string]bool, len(p.OfferTopics))
	for _, t := range p.OfferTopics {
		topics[t] = true
	}

	hits := 0
	for tok := range tokens {
		if topics[tok] {
			hits++
		}
	}
	overlap := float64(hits) / float64(len(tokens))
	if overlap < minTopicOverlap {
		return fmt.Sprintf("dominant topic outside business category (%d/%d tokens match offering)", hits, len(tokens))
	}
	return ""
}
