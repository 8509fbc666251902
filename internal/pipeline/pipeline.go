// Package pipeline wires the stages together: profile classification,
// concurrent source fan-out, evidence buffering, clustering, scoring,
// gating, synthesis, ranking, and caching, streamed incrementally to
// the caller.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sightlinehq/sightline/internal/cache"
	"github.com/sightlinehq/sightline/internal/cluster"
	"github.com/sightlinehq/sightline/internal/config"
	"github.com/sightlinehq/sightline/internal/evidence"
	"github.com/sightlinehq/sightline/internal/gate"
	"github.com/sightlinehq/sightline/internal/logging"
	"github.com/sightlinehq/sightline/internal/profile"
	"github.com/sightlinehq/sightline/internal/rank"
	"github.com/sightlinehq/sightline/internal/score"
	"github.com/sightlinehq/sightline/internal/signal"
	"github.com/sightlinehq/sightline/internal/source"
	"github.com/sightlinehq/sightline/internal/synthesis"
)

// Stage marks what kind of update the consumer received.
type Stage string

const (
	// StagePartial is a superseding snapshot emitted while sources are
	// still in flight. Consumers replace, never append.
	StagePartial Stage = "partial"
	// StageComplete is the final snapshot for the run.
	StageComplete Stage = "complete"
	// StageError is the final update for a run abandoned by
	// cancellation. It never carries entities.
	StageError Stage = "error"
)

// Update is one streamed pipeline result.
type Update struct {
	RunID           string
	Stage           Stage
	Entities        []signal.Entity
	SourceDiversity map[string]int
	Warnings        []string
}

// Pipeline executes runs. Construct once, reuse across runs; the cache
// layer is the only shared mutable state.
type Pipeline struct {
	cfg        config.Config
	classifier *profile.Classifier
	trust      *source.TrustList
	cache      cache.Layer
	synth      synthesis.Synthesizer
}

// New builds a pipeline from validated configuration. A nil synth gets
// the rule-based synthesizer; a nil cacheLayer gets a bounded memory
// layer.
func New(cfg config.Config, cacheLayer cache.Layer, synth synthesis.Synthesizer) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cacheLayer == nil {
		mem, err := cache.NewMemory(cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create memory cache: %w", err)
		}
		cacheLayer = mem
	}
	if synth == nil {
		synth = synthesis.NewRules()
	}
	classifier := profile.NewClassifier()
	classifier.Threshold = cfg.Threshold
	classifier.Weights = cfg.Weights

	return &Pipeline{
		cfg:        cfg,
		classifier: classifier,
		trust:      source.NewTrustList(cfg.TrustedDomains),
		cache:      cacheLayer,
		synth:      synth,
	}, nil
}

// batch is one adapter's outcome: records, a failure, or a cache hit.
type batch struct {
	source    string
	records   []signal.RawRecord
	err       error
	fromCache bool
}

// Run executes one pipeline run and streams updates until the channel
// closes. Only a ConfigurationError is returned synchronously; every
// other failure degrades to fewer sources or fewer entities and is
// reported through warnings. Cancelling ctx abandons in-flight adapter
// calls; the run emits one final StageError update with no entities
// and closes the channel.
//
// Concurrent runs for the same business should be coalesced by the
// caller; the pipeline does not deduplicate in-flight runs.
func (p *Pipeline) Run(ctx context.Context, businessID string, in profile.Input, adapters []source.Adapter) (<-chan Update, error) {
	if err := p.validate(adapters); err != nil {
		return nil, err
	}

	prof := p.classifier.Classify(in)
	runID := uuid.NewString()

	updates := make(chan Update, len(adapters)+1)
	go p.execute(ctx, runID, businessID, prof, adapters, updates)
	return updates, nil
}

// validate enforces the startup invariants: adapter tiers and the
// weight vector. Violations are fatal before any run work begins.
func (p *Pipeline) validate(adapters []source.Adapter) error {
	if err := p.classifier.Weights.Validate(); err != nil {
		return &config.ConfigurationError{Field: "weights", Reason: err.Error()}
	}
	for _, a := range adapters {
		if !a.Tier().Valid() {
			return &config.ConfigurationError{
				Field:  "adapter " + a.Name(),
				Reason: fmt.Sprintf("invalid tier %d", a.Tier()),
			}
		}
	}
	return nil
}

func (p *Pipeline) execute(ctx context.Context, runID, businessID string, prof profile.Profile, adapters []source.Adapter, updates chan<- Update) {
	defer close(updates)

	log := logging.WithPrefix("pipeline")
	if log != nil {
		log.Info("run started", "run", runID, "business", businessID,
			"category", prof.Category, "adapters", len(adapters))
	}

	names := make([]string, 0, len(adapters))
	for _, a := range adapters {
		names = append(names, a.Name())
	}
	buf := evidence.NewBuffer(p.cfg.BufferLimit, names)

	query := source.Query{
		BusinessID: businessID,
		Terms:      prof.OfferTopics,
		Limit:      p.cfg.BufferLimit,
	}

	batches := make(chan batch, len(adapters))
	var g errgroup.Group
	g.SetLimit(p.cfg.MaxConcurrentFetches)

	fired := 0
	for _, a := range adapters {
		if prof.SourceWeight(a.Name()) <= 0 {
			logging.Debug("adapter excluded for category",
				"source", a.Name(), "category", prof.Category)
			continue
		}
		fired++
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			batches <- p.fetchSource(ctx, a, businessID, prof.Version, query)
			return nil // never fail the group - failures reported per-source
		})
	}
	go func() {
		_ = g.Wait()
		close(batches)
	}()

	var warnings []string
	now := time.Now()
	received := 0
	for b := range batches {
		received++
		if b.err != nil {
			warnings = append(warnings, fmt.Sprintf("source %s failed: %v", b.source, b.err))
			logging.Warn("source failed", "run", runID, "source", b.source, "error", b.err)
			continue
		}
		buf.Add(b.records)
		logging.Debug("source complete", "run", runID, "source", b.source,
			"records", len(b.records), "cached", b.fromCache)

		if ctx.Err() != nil {
			p.emitCancelled(runID, updates, warnings)
			return
		}
		// Emit a superseding snapshot while later sources are in flight.
		if received < fired {
			entities := p.snapshot(ctx, buf.Records(), prof, now)
			updates <- Update{
				RunID:           runID,
				Stage:           StagePartial,
				Entities:        entities,
				SourceDiversity: buf.SourceCounts(),
				Warnings:        append([]string(nil), warnings...),
			}
		}
	}

	if ctx.Err() != nil {
		p.emitCancelled(runID, updates, warnings)
		return
	}

	entities := p.snapshot(ctx, buf.Records(), prof, now)
	diversity := buf.SourceCounts()

	if buf.DistinctSources() < 2 {
		warnings = append(warnings, "low source diversity: fewer than 2 distinct trusted sources contributed")
	}
	if len(entities) == 0 {
		warnings = append(warnings, "no signals survived relevance filtering")
	}

	p.storeAggregate(businessID, prof.Version, entities, diversity)

	updates <- Update{
		RunID:           runID,
		Stage:           StageComplete,
		Entities:        entities,
		SourceDiversity: diversity,
		Warnings:        warnings,
	}
	if log != nil {
		log.Info("run complete", "run", runID, "entities", len(entities),
			"sources", buf.DistinctSources(), "warnings", len(warnings))
	}
}

// emitCancelled closes out an abandoned run. Entities computed so far
// are discarded; only the accumulated warnings travel with the error.
func (p *Pipeline) emitCancelled(runID string, updates chan<- Update, warnings []string) {
	logging.Warn("run cancelled", "run", runID)
	updates <- Update{
		RunID:    runID,
		Stage:    StageError,
		Warnings: append(warnings, "run cancelled before completion"),
	}
}

// fetchSource resolves one adapter: cache short-circuit first, then a
// fetch bounded by its own timeout, then the trust filter.
func (p *Pipeline) fetchSource(ctx context.Context, a source.Adapter, businessID, profileVersion string, q source.Query) batch {
	key := cache.Key{BusinessID: businessID, ProfileVersion: profileVersion, Source: a.Name()}
	if entry, ok := p.cache.Get(key); ok && entry.Fresh(time.Now()) {
		return batch{source: a.Name(), records: entry.Records, fromCache: true}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.FetchTimeout)
	defer cancel()

	records, err := a.Fetch(fetchCtx, q)
	if err != nil {
		return batch{source: a.Name(), err: err}
	}

	records = p.trust.Filter(records)

	entry := cache.Entry{
		Records:   records,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(p.cfg.CacheTTL),
	}
	if err := p.cache.Put(key, entry); err != nil {
		logging.Warn("per-source cache write failed", "source", a.Name(), "error", err)
	}

	return batch{source: a.Name(), records: records}
}

// snapshot runs the synchronous stages over the current working set.
// Runs once per completed source batch, not per record.
func (p *Pipeline) snapshot(ctx context.Context, records []signal.RawRecord, prof profile.Profile, now time.Time) []signal.Entity {
	clusters := cluster.New(p.cfg.Similarity).Cluster(records)
	scored := score.New(now).ScoreAll(clusters, prof)
	gated := gate.Filter(scored, prof)
	for _, rej := range gated.Rejections {
		logging.Debug("cluster rejected", "cluster", rej.ClusterID, "reason", rej.Reason)
	}
	entities := p.synth.Synthesize(ctx, gated.Survivors, prof)
	return rank.Rank(entities, p.cfg.ResultCap)
}

// storeAggregate caches the final ranked list for the run key.
func (p *Pipeline) storeAggregate(businessID, profileVersion string, entities []signal.Entity, diversity map[string]int) {
	key := cache.Key{BusinessID: businessID, ProfileVersion: profileVersion, Source: cache.Aggregate}
	entry := cache.Entry{
		Entities:        entities,
		SourceDiversity: diversity,
		CreatedAt:       time.Now(),
		ExpiresAt:       time.Now().Add(p.cfg.CacheTTL),
	}
	if err := p.cache.Put(key, entry); err != nil {
		logging.Warn("aggregate cache write failed", "business", businessID, "error", err)
	}
}

// Cached returns the aggregate entry for a business/profile pair so
// callers can serve stale-but-present results while a refresh runs.
func (p *Pipeline) Cached(businessID string, in profile.Input) (cache.Entry, bool) {
	prof := p.classifier.Classify(in)
	return p.cache.Get(cache.Key{
		BusinessID:     businessID,
		ProfileVersion: prof.Version,
		Source:         cache.Aggregate,
	})
}

// Classify exposes the pipeline's profile classification for callers
// that want to inspect it without running.
func (p *Pipeline) Classify(in profile.Input) profile.Profile {
	return p.classifier.Classify(in)
}
