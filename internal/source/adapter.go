// Package source defines the adapter contract the pipeline consumes and
// ships reference adapters for RSS feeds and HTML review listings.
//
// Concrete scraping clients live outside the core; anything that can
// return raw records for a query can plug in here.
package source

import (
	"context"

	"github.com/sightlinehq/sightline/internal/signal"
)

// Query describes what an adapter should fetch.
type Query struct {
	BusinessID string
	// Terms are the search terms derived from the business profile.
	Terms []string
	// Limit caps how many records the adapter should return; zero means
	// adapter default.
	Limit int
}

// Adapter is the outbound contract: one per data source. Fetch must
// respect ctx and may return an empty slice without error.
type Adapter interface {
	// Name identifies the source; it becomes RawRecord.SourceName.
	Name() string
	// Tier is the platform trust tier (1 most trusted, 3 least).
	Tier() signal.PlatformTier
	Fetch(ctx context.Context, q Query) ([]signal.RawRecord, error)
}

// Static is a fixed-response adapter used in tests and demos.
type Static struct {
	SourceName string
	SourceTier signal.PlatformTier
	Records    []signal.RawRecord
	Err        error
}

func (s *Static) Name() string              { return s.SourceName }
func (s *Static) Tier() signal.PlatformTier { return s.SourceTier }

func (s *Static) Fetch(ctx context.Context, q Query) ([]signal.RawRecord, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]signal.RawRecord, len(s.Records))
	copy(out, s.Records)
	for i := range out {
		out[i].SourceName = s.SourceName
		out[i].Tier = s.SourceTier
	}
	return out, nil
}
