package profile

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/sightlinehq/sightline/internal/text"
)

// categoryKeywords maps each profile category to the description terms
// that indicate it. Matching is done on normalized tokens.
var categoryKeywords = map[Category][]string{
	CategoryLocalService: {
		"local", "neighborhood", "plumber", "electrician", "salon",
		"restaurant", "clinic", "dentist", "repair", "cleaning",
		"landscaping", "hvac", "contractor", "shop", "store",
	},
	CategoryRegionalAgency: {
		"agency", "consulting", "consultancy", "firm", "studio",
		"regional", "b2b", "clients", "services", "marketing",
		"design", "accounting", "legal", "staffing",
	},
	CategoryNationalPlatform: {
		"platform", "saas", "software", "app", "api", "nationwide",
		"national", "subscription", "marketplace", "startup",
		"enterprise", "cloud", "users",
	},
}

// defaultSourceWeights holds per-category source multipliers. Sources
// not listed default to 1.0; zero excludes the source for the category.
var defaultSourceWeights = map[Category]map[string]float64{
	CategoryLocalService: {
		"google-reviews": 1.5,
		"yelp":           1.3,
		"news":           0.5,
	},
	CategoryRegionalAgency: {
		"linkedin":       1.3,
		"clutch":         1.5,
		"google-reviews": 1.0,
	},
	CategoryNationalPlatform: {
		"g2":       1.5,
		"capterra": 1.3,
		"news":     1.2,
		"yelp":     0.3,
	},
}

// Classifier maps a business description to a profile. Classification is
// a fixed keyword-table lookup, deterministic for a given input.
type Classifier struct {
	// Threshold is the relevance threshold assigned to produced
	// profiles.
	Threshold float64
	// Weights is the weight vector assigned to produced profiles.
	Weights Weights
}

// NewClassifier returns a classifier with default threshold and weights.
func NewClassifier() *Classifier {
	return &Classifier{Threshold: 0.35, Weights: DefaultWeights()}
}

// Classify scores the description against each category's keyword table
// and returns the best-matching profile. Ties and zero matches fall back
// to local-service with low confidence.
func (c *Classifier) Classify(in Input) Profile {
	tokens := text.TokenSet(in.Description + " " + in.ValueProposition)

	best := CategoryLocalService
	bestHits, totalHits := 0, 0
	// Iterate categories in fixed order so ties resolve the same way
	// every run.
	for _, cat := range []Category{CategoryLocalService, CategoryRegionalAgency, CategoryNationalPlatform} {
		hits := 0
		for _, kw := range categoryKeywords[cat] {
			if tokens[kw] {
				hits++
			}
		}
		totalHits += hits
		if hits > bestHits {
			best = cat
			bestHits = hits
		}
	}

	confidence := 0.25
	if totalHits > 0 {
		confidence = float64(bestHits) / float64(totalHits)
		if confidence < 0.25 {
			confidence = 0.25
		}
	}

	return Profile{
		Category:      best,
		Confidence:    confidence,
		Version:       version(in),
		Vocabulary:    ExtractVocabulary(in.ValueProposition),
		SourceWeights: defaultSourceWeights[best],
		Weights:       c.Weights,
		Threshold:     c.Threshold,
		OfferTopics:   offerTopics(in),
	}
}

// ExtractVocabulary builds the weighted term set used by the profile-fit
// factor. Terms that repeat in the value proposition weigh more, capped
// at 1.0.
func ExtractVocabulary(valueProp string) map[string]float64 {
	counts := make(map[string]int)
	for _, tok := range text.Tokens(valueProp) {
		counts[tok]++
	}
	vocab := make(map[string]float64, len(counts))
	for tok, n := range counts {
		w := 0.5 + 0.25*float64(n-1)
		if w > 1.0 {
			w = 1.0
		}
		vocab[tok] = w
	}
	return vocab
}

// offerTopics picks the distinct content tokens of the description and
// value proposition, sorted for determinism.
func offerTopics(in Input) []string {
	set := text.TokenSet(in.Description + " " + in.ValueProposition)
	topics := make([]string, 0, len(set))
	for tok := range set {
		topics = append(topics, tok)
	}
	sort.Strings(topics)
	return topics
}

// version derives a stable profile version from the classification
// inputs so cache keys change when the inputs do.
func version(in Input) string {
	h := sha256.Sum256([]byte(in.Description + "\x00" + in.ValueProposition))
	return hex.EncodeToString(h[:8])
}
