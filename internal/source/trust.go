package source

import (
	"net/url"
	"strings"

	"github.com/sightlinehq/sightline/internal/logging"
	"github.com/sightlinehq/sightline/internal/signal"
)

// TrustList is the closed allow-list of domains records may cite.
// A record with a URL outside the list is dropped before it reaches the
// deduplicator; adapters are not trusted to cite real pages.
type TrustList struct {
	domains []string
}

// NewTrustList builds a trust list from configured domains. Entries are
// normalized to lowercase without a www prefix.
func NewTrustList(domains []string) *TrustList {
	normalized := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		d = strings.TrimPrefix(d, "www.")
		if d != "" {
			normalized = append(normalized, d)
		}
	}
	return &TrustList{domains: normalized}
}

// Allows reports whether rawURL resolves to a trusted domain or one of
// its subdomains. Records without a URL are allowed; the URL check only
// defends against fabricated citations.
func (t *TrustList) Allows(rawURL string) bool {
	if rawURL == "" {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	for _, d := range t.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Filter returns the records whose URLs pass the allow-list, logging a
// debug note for each drop.
func (t *TrustList) Filter(records []signal.RawRecord) []signal.RawRecord {
	out := make([]signal.RawRecord, 0, len(records))
	for _, r := range records {
		if !t.Allows(r.SourceURL) {
			logging.Debug("dropped record from untrusted domain",
				"source", r.SourceName, "url", r.SourceURL)
			continue
		}
		out = append(out, r)
	}
	return out
}
