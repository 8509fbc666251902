package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sightlinehq/sightline/internal/signal"
)

// HTML scrapes records from a review-listing page using CSS selectors.
// One instance per page layout; the selectors describe where each review
// and its fields live.
type HTML struct {
	SourceName string
	SourceTier signal.PlatformTier
	PageURL    string
	// ItemSelector matches one element per review.
	ItemSelector string
	// TextSelector, AuthorSelector, and LinkSelector are evaluated
	// relative to each item. Empty selectors are skipped.
	TextSelector   string
	AuthorSelector string
	LinkSelector   string
	client         *http.Client
}

// NewHTML creates an HTML adapter with the given HTTP client timeout.
func NewHTML(name string, tier signal.PlatformTier, pageURL string, timeout time.Duration) *HTML {
	return &HTML{
		SourceName:   name,
		SourceTier:   tier,
		PageURL:      pageURL,
		ItemSelector: ".review",
		TextSelector: ".review-text",
		client:       &http.Client{Timeout: timeout},
	}
}

func (h *HTML) Name() string              { return h.SourceName }
func (h *HTML) Tier() signal.PlatformTier { return h.SourceTier }

// Fetch downloads the page and extracts one record per matched item.
func (h *HTML) Fetch(ctx context.Context, q Query) ([]signal.RawRecord, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.PageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Sightline/1.0 (+https://github.com/sightlinehq/sightline)")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	now := time.Now()
	var records []signal.RawRecord
	doc.Find(h.ItemSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		rec := h.convertItem(sel, now)
		if rec.Text == "" || !matchesTerms(rec.Text, q.Terms) {
			return true
		}
		records = append(records, rec)
		return q.Limit <= 0 || len(records) < q.Limit
	})
	return records, nil
}

func (h *HTML) convertItem(sel *goquery.Selection, fetchTime time.Time) signal.RawRecord {
	body := sel.Text()
	if h.TextSelector != "" {
		body = sel.Find(h.TextSelector).Text()
	}

	author := ""
	if h.AuthorSelector != "" {
		author = strings.TrimSpace(sel.Find(h.AuthorSelector).Text())
	}

	link := h.PageURL
	if h.LinkSelector != "" {
		if href, ok := sel.Find(h.LinkSelector).Attr("href"); ok {
			link = h.resolveLink(href)
		}
	}

	return signal.RawRecord{
		Text:       strings.TrimSpace(body),
		SourceName: h.SourceName,
		SourceURL:  link,
		Author:     author,
		CapturedAt: fetchTime,
		Tier:       h.SourceTier,
	}
}

// resolveLink makes relative hrefs absolute against the page URL.
func (h *HTML) resolveLink(href string) string {
	base, err := url.Parse(h.PageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
