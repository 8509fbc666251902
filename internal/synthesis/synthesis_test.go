package synthesis

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sightlinehq/sightline/internal/profile"
	"github.com/sightlinehq/sightline/internal/signal"
)

func scoredCluster(composite float64, records ...signal.RawRecord) signal.ScoredCluster {
	return signal.ScoredCluster{
		Cluster:   signal.EvidenceCluster{Members: records},
		Composite: composite,
	}
}

func rec(source, body, author string) signal.RawRecord {
	return signal.RawRecord{
		Text:       body,
		SourceName: source,
		SourceURL:  "https://yelp.com/biz/1",
		Author:     author,
		CapturedAt: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		Tier:       signal.TierReview,
	}
}

func testProfile() profile.Profile {
	return profile.Profile{Category: profile.CategoryLocalService}
}

func TestRulesSynthesize(t *testing.T) {
	in := []signal.ScoredCluster{
		scoredCluster(0.7,
			rec("yelp", "Waited 3 weeks for an appointment. Never again.", "Jane"),
			rec("reddit", "Appointment took weeks to get", "")),
	}

	entities := NewRules().Synthesize(context.Background(), in, testProfile())
	if len(entities) != 1 {
		t.Fatalf("got %d entities, want 1", len(entities))
	}

	e := entities[0]
	if e.ID == "" {
		t.Error("entity ID is empty")
	}
	if e.Title == "" || len(e.Title) > 80 {
		t.Errorf("title = %q", e.Title)
	}
	if e.Rationale == "" {
		t.Error("rationale is empty")
	}
	if len(e.Evidence) != 2 {
		t.Fatalf("got %d evidence items, want 2", len(e.Evidence))
	}
	if e.Evidence[0].Quote != "Waited 3 weeks for an appointment. Never again." {
		t.Errorf("quote not verbatim: %q", e.Evidence[0].Quote)
	}
	if e.Score != 0.7 {
		t.Errorf("score = %v, want composite 0.7", e.Score)
	}
	if e.Synthesized {
		t.Error("rule-based entity marked as synthesized")
	}
}

func TestRulesSkipsEmptyEvidence(t *testing.T) {
	in := []signal.ScoredCluster{
		{Cluster: signal.EvidenceCluster{Members: []signal.RawRecord{{SourceName: "yelp"}}}},
	}
	entities := NewRules().Synthesize(context.Background(), in, testProfile())
	if len(entities) != 0 {
		t.Fatalf("got %d entities from empty-evidence cluster, want 0", len(entities))
	}
}

func TestRulesCategoryRules(t *testing.T) {
	tests := []struct {
		body string
		want signal.Category
	}{
		{"I am worried this is a scam and I will regret it", signal.CategoryFear},
		{"Looking for a reliable plumber, wish someone did same-day", signal.CategoryDesire},
		{"Invoices keep arriving with the wrong amounts", signal.CategoryPainPoint},
	}
	for _, tt := range tests {
		in := []signal.ScoredCluster{scoredCluster(0.5, rec("yelp", tt.body, ""))}
		entities := NewRules().Synthesize(context.Background(), in, testProfile())
		if len(entities) != 1 {
			t.Fatalf("got %d entities", len(entities))
		}
		if entities[0].Category != tt.want {
			t.Errorf("category for %q = %s, want %s", tt.body, entities[0].Category, tt.want)
		}
	}
}

// failingProvider always errors, exercising the mandatory fallback.
type failingProvider struct{}

func (failingProvider) Name() string    { return "failing" }
func (failingProvider) Available() bool { return true }
func (failingProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("provider exploded")
}

func TestGenerativeFallsBackOnProviderFailure(t *testing.T) {
	g := NewGenerative(failingProvider{}, time.Second)
	in := []signal.ScoredCluster{
		scoredCluster(0.6, rec("yelp", "Waited 3 weeks for an appointment", "Jane")),
	}

	entities := g.Synthesize(context.Background(), in, testProfile())
	if len(entities) != 1 {
		t.Fatalf("got %d entities, want 1 via fallback", len(entities))
	}
	if entities[0].Synthesized {
		t.Error("fallback entity marked as synthesized")
	}
	if len(entities[0].Evidence) == 0 {
		t.Error("fallback entity has empty evidence")
	}
}

// staticProvider returns a canned response.
type staticProvider struct{ response string }

func (staticProvider) Name() string    { return "static" }
func (staticProvider) Available() bool { return true }
func (s staticProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return s.response, nil
}

func TestGenerativeParsesStructuredResult(t *testing.T) {
	g := NewGenerative(staticProvider{
		response: "Here you go:\n{\"category\": \"desire\", \"title\": \"Same-day plumber demand\", \"rationale\": \"Multiple reviewers want faster scheduling.\"}",
	}, time.Second)
	in := []signal.ScoredCluster{
		scoredCluster(0.6, rec("yelp", "Wish a plumber could come same day", "Jane")),
	}

	entities := g.Synthesize(context.Background(), in, testProfile())
	if len(entities) != 1 {
		t.Fatalf("got %d entities", len(entities))
	}
	e := entities[0]
	if !e.Synthesized {
		t.Error("generative entity not marked as synthesized")
	}
	if e.Category != signal.CategoryDesire {
		t.Errorf("category = %s, want desire", e.Category)
	}
	if e.Title != "Same-day plumber demand" {
		t.Errorf("title = %q", e.Title)
	}
	if len(e.Evidence) != 1 || e.Evidence[0].Quote == "" {
		t.Error("evidence not carried through")
	}
}

func TestGenerativeFallsBackOnMalformedOutput(t *testing.T) {
	for _, response := range []string{
		"no json here",
		"{\"category\": \"desire\"}", // missing title/rationale
		"{broken json",
	} {
		g := NewGenerative(staticProvider{response: response}, time.Second)
		in := []signal.ScoredCluster{
			scoredCluster(0.6, rec("yelp", "Wish a plumber could come same day", "Jane")),
		}
		entities := g.Synthesize(context.Background(), in, testProfile())
		if len(entities) != 1 {
			t.Fatalf("response %q: got %d entities, want 1 via fallback", response, len(entities))
		}
		if entities[0].Synthesized {
			t.Errorf("response %q: fallback entity marked as synthesized", response)
		}
	}
}

func TestHTTPProviderGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		w.Write([]byte(`{"choices": [{"message": {"content": "generated text"}}]}`))
	}))
	defer server.Close()

	p := NewHTTPProvider(OpenAICompatible("test", server.URL, "test-key", "test-model"))
	out, err := p.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if out != "generated text" {
		t.Errorf("Generate() = %q", out)
	}
}

func TestHTTPProviderErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := NewHTTPProvider(OpenAICompatible("test", server.URL, "test-key", "test-model"))
	if _, err := p.Generate(context.Background(), "prompt"); err == nil {
		t.Error("expected error for HTTP 503")
	}
}

func TestHTTPProviderUnavailableWithoutKey(t *testing.T) {
	p := NewHTTPProvider(OpenAICompatible("test", "https://example.com", "", "model"))
	if p.Available() {
		t.Error("provider without API key reports available")
	}
	if _, err := p.Generate(context.Background(), "prompt"); err == nil ||
		!strings.Contains(err.Error(), "not configured") {
		t.Errorf("Generate() error = %v", err)
	}
}
