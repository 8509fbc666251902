// Package profile classifies a business description into a profile
// category and derives the weighted vocabulary, source weights, and
// scoring weights the pipeline uses for that category.
package profile

import (
	"fmt"
	"math"
)

// Category is the business profile category.
type Category string

const (
	CategoryLocalService     Category = "local-service"
	CategoryRegionalAgency   Category = "regional-agency"
	CategoryNationalPlatform Category = "national-platform"
)

// Weights is the per-factor weight vector used for the composite score.
// The vector must sum to 1.0; this is checked once at configuration load,
// never at score time.
type Weights struct {
	Recency      float64 `yaml:"recency"`
	Authority    float64 `yaml:"authority"`
	Specificity  float64 `yaml:"specificity"`
	Verification float64 `yaml:"verification"`
	ProfileFit   float64 `yaml:"profile_fit"`
}

// DefaultWeights returns the default weight vector.
func DefaultWeights() Weights {
	return Weights{
		Recency:      0.25,
		Authority:    0.25,
		Specificity:  0.20,
		Verification: 0.15,
		ProfileFit:   0.15,
	}
}

// Validate checks that the weights are non-negative and sum to 1.0
// within a small tolerance.
func (w Weights) Validate() error {
	factors := map[string]float64{
		"recency":      w.Recency,
		"authority":    w.Authority,
		"specificity":  w.Specificity,
		"verification": w.Verification,
		"profile_fit":  w.ProfileFit,
	}
	sum := 0.0
	for name, v := range factors {
		if v < 0 {
			return fmt.Errorf("weight %s is negative: %v", name, v)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("weights sum to %v, want 1.0", sum)
	}
	return nil
}

// Input is the caller-supplied business description the classifier
// works from.
type Input struct {
	Description      string
	ValueProposition string
}

// Profile is the classifier's output: everything downstream stages need
// to weight and gate evidence for this business.
type Profile struct {
	Category   Category
	Confidence float64
	// Version changes whenever classification inputs change; it is part
	// of the cache key so stale profiles never serve new runs.
	Version string
	// Vocabulary maps terms from the value proposition to importance
	// weights, used by the profile-fit factor.
	Vocabulary map[string]float64
	// SourceWeights maps source names to multipliers. Zero excludes a
	// source for this category; missing means 1.0.
	SourceWeights map[string]float64
	Weights       Weights
	Threshold     float64
	// OfferTopics are the topic words the relevance gate checks cluster
	// text against for category fit.
	OfferTopics []string
}

// SourceWeight returns the multiplier for a source, defaulting to 1.0.
func (p Profile) SourceWeight(name string) float64 {
	if w, ok := p.SourceWeights[name]; ok {
		return w
	}
	return 1.0
}
