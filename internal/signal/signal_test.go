package signal

import (
	"testing"
	"time"
)

func mkRecord(source, body string, tier PlatformTier, captured time.Time) RawRecord {
	return RawRecord{
		Text:       body,
		SourceName: source,
		CapturedAt: captured,
		Tier:       tier,
	}
}

func TestClusterIDIgnoresMemberOrder(t *testing.T) {
	now := time.Now()
	a := mkRecord("yelp", "waited weeks for an appointment", TierReview, now)
	b := mkRecord("reddit", "appointment took forever to get", TierSocial, now)

	id1 := ClusterID(EvidenceCluster{Members: []RawRecord{a, b}})
	id2 := ClusterID(EvidenceCluster{Members: []RawRecord{b, a}})
	if id1 != id2 {
		t.Errorf("ClusterID depends on member order: %s != %s", id1, id2)
	}
	if len(id1) != 16 {
		t.Errorf("ClusterID length = %d, want 16 hex chars", len(id1))
	}
}

func TestClusterIDDistinguishesContent(t *testing.T) {
	now := time.Now()
	a := EvidenceCluster{Members: []RawRecord{mkRecord("yelp", "slow service", TierReview, now)}}
	b := EvidenceCluster{Members: []RawRecord{mkRecord("yelp", "fast service", TierReview, now)}}
	if ClusterID(a) == ClusterID(b) {
		t.Error("different clusters produced the same ID")
	}
}

func TestClusterDerivedFields(t *testing.T) {
	early := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	c := EvidenceCluster{Members: []RawRecord{
		mkRecord("yelp", "one", TierReview, late),
		mkRecord("reddit", "two", TierSocial, early),
		mkRecord("yelp", "three", TierReview, late),
	}}

	if got := c.DistinctSourceCount(); got != 2 {
		t.Errorf("DistinctSourceCount() = %d, want 2", got)
	}
	if got := c.EarliestCapturedAt(); !got.Equal(early) {
		t.Errorf("EarliestCapturedAt() = %v, want %v", got, early)
	}
	if got := c.LatestCapturedAt(); !got.Equal(late) {
		t.Errorf("LatestCapturedAt() = %v, want %v", got, late)
	}
	if got := c.BestTier(); got != TierReview {
		t.Errorf("BestTier() = %v, want %v", got, TierReview)
	}
}

func TestTierValid(t *testing.T) {
	for tier, want := range map[PlatformTier]bool{0: false, 1: true, 2: true, 3: true, 4: false} {
		if got := tier.Valid(); got != want {
			t.Errorf("Tier(%d).Valid() = %v, want %v", tier, got, want)
		}
	}
}
