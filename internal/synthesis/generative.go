package synthesis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sightlinehq/sightline/internal/logging"
	"github.com/sightlinehq/sightline/internal/profile"
	"github.com/sightlinehq/sightline/internal/signal"
)

// Generative delegates synthesis to a text-generation provider, per
// cluster, with a hard timeout. Any failure on any cluster — transport
// error, timeout, malformed or empty output — falls back to the
// rule-based synthesizer for that cluster. A provider outage therefore
// degrades quality, never output.
type Generative struct {
	provider Provider
	fallback *Rules
	timeout  time.Duration
}

// NewGenerative wraps a provider with the mandatory rule-based fallback.
func NewGenerative(p Provider, timeout time.Duration) *Generative {
	return &Generative{provider: p, fallback: NewRules(), timeout: timeout}
}

// generated is the structured result expected from the provider.
type generated struct {
	Category  string `json:"category"`
	Title     string `json:"title"`
	Rationale string `json:"rationale"`
}

// Synthesize produces one entity per cluster with usable evidence.
func (g *Generative) Synthesize(ctx context.Context, scored []signal.ScoredCluster, p profile.Profile) []signal.Entity {
	entities := make([]signal.Entity, 0, len(scored))
	for _, sc := range scored {
		ev := evidenceFromMembers(sc.Cluster.Members)
		if len(ev) == 0 {
			continue
		}
		entity, err := g.synthesizeOne(ctx, sc, ev, p)
		if err != nil {
			logging.Warn("generative synthesis failed, using rules",
				"provider", g.provider.Name(), "error", err)
			fallback := g.fallback.Synthesize(ctx, []signal.ScoredCluster{sc}, p)
			entities = append(entities, fallback...)
			continue
		}
		entities = append(entities, entity)
	}
	return entities
}

func (g *Generative) synthesizeOne(ctx context.Context, sc signal.ScoredCluster, ev []signal.Evidence, p profile.Profile) (signal.Entity, error) {
	if !g.provider.Available() {
		return signal.Entity{}, fmt.Errorf("provider unavailable")
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.provider.Generate(callCtx, buildPrompt(sc, p))
	if err != nil {
		return signal.Entity{}, err
	}

	parsed, err := parseGenerated(raw)
	if err != nil {
		return signal.Entity{}, err
	}

	return signal.Entity{
		ID:          signal.ClusterID(sc.Cluster),
		Category:    parsed.category(),
		Title:       parsed.Title,
		Rationale:   parsed.Rationale,
		Evidence:    ev,
		Score:       sc.Composite,
		Synthesized: true,
	}, nil
}

func buildPrompt(sc signal.ScoredCluster, p profile.Profile) string {
	var b strings.Builder
	b.WriteString("You summarize customer evidence into one buying signal for a ")
	b.WriteString(string(p.Category))
	b.WriteString(" business.\n")
	b.WriteString("Respond with JSON only: {\"category\": \"fear|desire|pain_point\", \"title\": \"...\", \"rationale\": \"1-3 sentences\"}\n\nEvidence:\n")
	for _, m := range sc.Cluster.Members {
		b.WriteString("- [")
		b.WriteString(m.SourceName)
		b.WriteString("] ")
		b.WriteString(m.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// parseGenerated extracts and validates the structured result. Models
// sometimes wrap JSON in prose or fences; take the outermost braces.
func parseGenerated(raw string) (generated, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return generated{}, fmt.Errorf("no JSON object in output")
	}

	var out generated
	if err := json.Unmarshal([]byte(raw[start:end+1]), &out); err != nil {
		return generated{}, fmt.Errorf("malformed output: %w", err)
	}
	if strings.TrimSpace(out.Title) == "" || strings.TrimSpace(out.Rationale) == "" {
		return generated{}, fmt.Errorf("empty title or rationale")
	}
	return out, nil
}

func (g generated) category() signal.Category {
	switch signal.Category(strings.TrimSpace(strings.ToLower(g.Category))) {
	case signal.CategoryFear:
		return signal.CategoryFear
	case signal.CategoryDesire:
		return signal.CategoryDesire
	default:
		return signal.CategoryPainPoint
	}
}
