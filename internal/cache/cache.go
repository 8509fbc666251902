// Package cache stores ranked pipeline results with a per-write TTL.
// The cache never decides freshness policy itself: Get returns entries
// regardless of staleness and the caller checks Fresh.
package cache

import (
	"fmt"
	"time"

	"github.com/sightlinehq/sightline/internal/signal"
)

// Aggregate is the sentinel source for the whole-run entry, as opposed
// to a per-source short-circuit entry.
const Aggregate = "aggregate"

// Key identifies one cache entry. Runs for different businesses or
// profile versions never contend.
type Key struct {
	BusinessID     string
	ProfileVersion string
	// Source is a source name for per-source entries, or Aggregate.
	Source string
}

// String renders the key for storage and logs.
func (k Key) String() string {
	return k.BusinessID + "|" + k.ProfileVersion + "|" + k.Source
}

// Entry is one cached result. Per-source entries carry Records;
// aggregate entries carry Entities. Both forms carry the diversity map.
type Entry struct {
	Key             Key                `json:"key"`
	Entities        []signal.Entity    `json:"entities,omitempty"`
	Records         []signal.RawRecord `json:"records,omitempty"`
	SourceDiversity map[string]int     `json:"source_diversity,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	ExpiresAt       time.Time          `json:"expires_at"`
}

// Fresh reports whether the entry is still inside its TTL.
func (e Entry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Validate checks the entry's TTL invariant before a write.
func (e Entry) Validate() error {
	if !e.ExpiresAt.After(e.CreatedAt) {
		return fmt.Errorf("cache entry expires_at %v not after created_at %v", e.ExpiresAt, e.CreatedAt)
	}
	return nil
}

// Layer is the cache contract. Get reports ok=false only on a miss;
// stale entries are still returned as hits.
type Layer interface {
	Get(key Key) (Entry, bool)
	Put(key Key, entry Entry) error
	Invalidate(key Key)
}
