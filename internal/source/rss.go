package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/sightlinehq/sightline/internal/signal"
	"github.com/sightlinehq/sightline/internal/text"
)

// RSS fetches records from an RSS/Atom feed, e.g. a review platform's
// recent-reviews feed or a forum's search feed.
type RSS struct {
	SourceName string
	SourceTier signal.PlatformTier
	URL        string
	client     *http.Client
}

// NewRSS creates an RSS adapter with the given HTTP client timeout.
func NewRSS(name string, tier signal.PlatformTier, feedURL string, timeout time.Duration) *RSS {
	return &RSS{
		SourceName: name,
		SourceTier: tier,
		URL:        feedURL,
		client:     &http.Client{Timeout: timeout},
	}
}

func (r *RSS) Name() string              { return r.SourceName }
func (r *RSS) Tier() signal.PlatformTier { return r.SourceTier }

// Fetch retrieves and parses the feed, converting items to raw records.
// Respects context cancellation.
func (r *RSS) Fetch(ctx context.Context, q Query) ([]signal.RawRecord, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Sightline/1.0 (+https://github.com/sightlinehq/sightline)")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	parser := gofeed.NewParser()
	feed, err := parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	now := time.Now()
	records := make([]signal.RawRecord, 0, len(feed.Items))
	for _, item := range feed.Items {
		rec := r.convertItem(item, now)
		if rec.Text == "" {
			continue
		}
		if !matchesTerms(rec.Text, q.Terms) {
			continue
		}
		records = append(records, rec)
		if q.Limit > 0 && len(records) >= q.Limit {
			break
		}
	}
	return records, nil
}

func (r *RSS) convertItem(item *gofeed.Item, fetchTime time.Time) signal.RawRecord {
	captured := fetchTime
	if item.PublishedParsed != nil {
		captured = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		captured = *item.UpdatedParsed
	}

	author := ""
	if item.Author != nil {
		author = item.Author.Name
	}

	body := item.Title
	if item.Description != "" {
		body += ". " + text.Truncate(item.Description, 500)
	}

	return signal.RawRecord{
		Text:       body,
		SourceName: r.SourceName,
		SourceURL:  item.Link,
		Author:     author,
		CapturedAt: captured,
		Tier:       r.SourceTier,
	}
}

// matchesTerms reports whether body mentions at least one query term.
// An empty term list matches everything.
func matchesTerms(body string, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	return text.ContainsAnyFold(body, terms)
}
