package gate

import (
	"strings"
	"testing"
	"time"

	"github.com/sightlinehq/sightline/internal/profile"
	"github.com/sightlinehq/sightline/internal/signal"
)

func scored(body string, composite float64) signal.ScoredCluster {
	return signal.ScoredCluster{
		Cluster: signal.EvidenceCluster{Members: []signal.RawRecord{{
			Text:       body,
			SourceName: "yelp",
			CapturedAt: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
			Tier:       signal.TierReview,
		}}},
		Composite: composite,
	}
}

func profileWith(threshold float64, topics ...string) profile.Profile {
	return profile.Profile{
		Category:    profile.CategoryLocalService,
		Threshold:   threshold,
		OfferTopics: topics,
	}
}

func TestFilterDropsBelowThreshold(t *testing.T) {
	p := profileWith(0.35, "plumber", "appointment", "scheduling")
	in := []signal.ScoredCluster{
		scored("plumber appointment scheduling", 0.6),
		scored("plumber appointment delayed", 0.2),
	}

	res := Filter(in, p)
	if len(res.Survivors) != 1 {
		t.Fatalf("got %d survivors, want 1", len(res.Survivors))
	}
	if len(res.Rejections) != 1 {
		t.Fatalf("got %d rejections, want 1", len(res.Rejections))
	}
	if !strings.Contains(res.Rejections[0].Reason, "below threshold") {
		t.Errorf("rejection reason = %q", res.Rejections[0].Reason)
	}
}

func TestFilterDropsCategoryMismatch(t *testing.T) {
	p := profileWith(0.35, "plumbing", "pipes", "drains")
	in := []signal.ScoredCluster{
		scored("competitor support team never answers tickets about billing", 0.9),
	}

	res := Filter(in, p)
	if len(res.Survivors) != 0 {
		t.Fatalf("off-category cluster survived")
	}
	if len(res.Rejections) != 1 || !strings.Contains(res.Rejections[0].Reason, "outside business category") {
		t.Errorf("rejections = %+v", res.Rejections)
	}
}

func TestFilterThresholdMonotonicity(t *testing.T) {
	in := []signal.ScoredCluster{
		scored("plumber appointment one", 0.2),
		scored("plumber appointment two", 0.4),
		scored("plumber appointment three", 0.6),
		scored("plumber appointment four", 0.8),
	}

	prev := len(in) + 1
	for _, threshold := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
		p := profileWith(threshold, "plumber", "appointment")
		n := len(Filter(in, p).Survivors)
		if n > prev {
			t.Fatalf("raising threshold to %v increased survivors from %d to %d", threshold, prev, n)
		}
		prev = n
	}
}

func TestFilterPreservesOrderAndDoesNotMutate(t *testing.T) {
	p := profileWith(0.35, "plumber", "appointment")
	in := []signal.ScoredCluster{
		scored("plumber appointment alpha", 0.9),
		scored("plumber appointment beta", 0.5),
		scored("plumber appointment gamma", 0.7),
	}
	inputCopy := make([]signal.ScoredCluster, len(in))
	copy(inputCopy, in)

	res := Filter(in, p)
	if len(res.Survivors) != 3 {
		t.Fatalf("got %d survivors, want 3", len(res.Survivors))
	}
	for i, sc := range res.Survivors {
		if sc.Composite != in[i].Composite {
			t.Error("survivors not in scorer order")
			break
		}
	}
	for i := range in {
		if in[i].Composite != inputCopy[i].Composite {
			t.Error("Filter mutated its input")
			break
		}
	}
}

func TestFilterEmptyTopicsSkipsCategoryCheck(t *testing.T) {
	p := profileWith(0.35)
	res := Filter([]signal.ScoredCluster{scored("anything at all", 0.5)}, p)
	if len(res.Survivors) != 1 {
		t.Error("cluster rejected despite no configured topics")
	}
}
