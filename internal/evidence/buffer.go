// Package evidence accumulates raw records across sources into a
// bounded working set before clustering.
package evidence

import (
	"github.com/sightlinehq/sightline/internal/logging"
	"github.com/sightlinehq/sightline/internal/signal"
)

// Buffer collects records for one pipeline run. It rejects records from
// origins that were not registered for the run and tracks per-source
// counts for the diversity audit. Not safe for concurrent use; the
// orchestrator owns it and feeds it from a single goroutine.
type Buffer struct {
	limit   int
	allowed map[string]bool
	records []signal.RawRecord
	counts  map[string]int
	blocked int
}

// NewBuffer creates a buffer bounded at limit records, accepting only
// the named sources.
func NewBuffer(limit int, sources []string) *Buffer {
	allowed := make(map[string]bool, len(sources))
	for _, s := range sources {
		allowed[s] = true
	}
	return &Buffer{
		limit:   limit,
		allowed: allowed,
		counts:  make(map[string]int),
	}
}

// Add appends records to the working set, skipping empty text, unknown
// origins, and anything past the limit. Returns how many were kept.
func (b *Buffer) Add(records []signal.RawRecord) int {
	added := 0
	for _, r := range records {
		if r.Text == "" {
			continue
		}
		if !b.allowed[r.SourceName] {
			b.blocked++
			logging.Debug("rejected record from unregistered origin", "source", r.SourceName)
			continue
		}
		if len(b.records) >= b.limit {
			b.blocked++
			continue
		}
		b.records = append(b.records, r)
		b.counts[r.SourceName]++
		added++
	}
	return added
}

// Records returns a copy of the working set.
func (b *Buffer) Records() []signal.RawRecord {
	out := make([]signal.RawRecord, len(b.records))
	copy(out, b.records)
	return out
}

// SourceCounts returns a copy of the per-source record counts.
func (b *Buffer) SourceCounts() map[string]int {
	out := make(map[string]int, len(b.counts))
	for k, v := range b.counts {
		out[k] = v
	}
	return out
}

// DistinctSources returns how many distinct sources contributed at
// least one record.
func (b *Buffer) DistinctSources() int {
	return len(b.counts)
}

// Blocked returns how many records were rejected or dropped at the cap.
func (b *Buffer) Blocked() int {
	return b.blocked
}

// Len returns the current working-set size.
func (b *Buffer) Len() int {
	return len(b.records)
}
