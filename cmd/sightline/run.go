package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sightlinehq/sightline/internal/cache"
	"github.com/sightlinehq/sightline/internal/config"
	"github.com/sightlinehq/sightline/internal/pipeline"
	"github.com/sightlinehq/sightline/internal/profile"
	"github.com/sightlinehq/sightline/internal/signal"
	"github.com/sightlinehq/sightline/internal/source"
	"github.com/sightlinehq/sightline/internal/synthesis"
)

func newRunCmd() *cobra.Command {
	var (
		businessID string
		desc       string
		valueProp  string
		feeds      []string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a pipeline run and stream updates to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			p, cleanup, err := buildPipeline(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			adapters := make([]source.Adapter, 0, len(feeds))
			for i, feedURL := range feeds {
				name := fmt.Sprintf("feed-%d", i+1)
				rss := source.NewRSS(name, signal.TierProfessional, feedURL, cfg.FetchTimeout)
				adapters = append(adapters, source.NewRateLimited(rss, 1, 2))
			}
			if len(adapters) == 0 {
				return fmt.Errorf("no sources configured; pass --feed at least once")
			}

			in := profile.Input{Description: desc, ValueProposition: valueProp}
			updates, err := p.Run(cmd.Context(), businessID, in, adapters)
			if err != nil {
				return err
			}

			for u := range updates {
				printUpdate(u)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&businessID, "business", "", "business identifier")
	cmd.Flags().StringVar(&desc, "description", "", "business description")
	cmd.Flags().StringVar(&valueProp, "value-prop", "", "business value proposition")
	cmd.Flags().StringArrayVar(&feeds, "feed", nil, "RSS/Atom feed URL (repeatable)")
	cmd.MarkFlagRequired("business")
	cmd.MarkFlagRequired("description")
	return cmd
}

// buildPipeline assembles the cache layer and synthesizer from config.
// The cleanup func closes the sqlite store when one was opened and is
// safe to call either way.
func buildPipeline(cfg config.Config) (*pipeline.Pipeline, func() error, error) {
	var layer cache.Layer
	cleanup := func() error { return nil }
	if cfg.CachePath != "" {
		store, err := cache.Open(cfg.CachePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open cache store: %w", err)
		}
		layer = store
		cleanup = store.Close
	}

	var synth synthesis.Synthesizer
	if cfg.Synthesis.Endpoint != "" {
		provider := synthesis.NewHTTPProvider(synthesis.OpenAICompatible(
			"generative", cfg.Synthesis.Endpoint, cfg.Synthesis.APIKey, cfg.Synthesis.Model))
		synth = synthesis.NewGenerative(provider, cfg.Synthesis.Timeout)
	}

	p, err := pipeline.New(cfg, layer, synth)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return p, cleanup, nil
}

func printUpdate(u pipeline.Update) {
	fmt.Printf("[%s] run=%s entities=%d\n", u.Stage, u.RunID, len(u.Entities))
	for _, w := range u.Warnings {
		fmt.Fprintf(os.Stderr, "  warning: %s\n", w)
	}
	if u.Stage != pipeline.StageComplete {
		return
	}
	for i, e := range u.Entities {
		fmt.Printf("%2d. [%s] %.2f %s\n", i+1, e.Category, e.Score, e.Title)
		fmt.Printf("    %s\n", e.Rationale)
		for _, ev := range e.Evidence {
			fmt.Printf("    - %s: %q\n", ev.SourceName, truncateQuote(ev.Quote))
		}
	}
	fmt.Printf("sources: %v (at %s)\n", u.SourceDiversity, time.Now().Format(time.RFC3339))
}

func truncateQuote(q string) string {
	runes := []rune(q)
	if len(runes) <= 100 {
		return q
	}
	return string(runes[:97]) + "..."
}
