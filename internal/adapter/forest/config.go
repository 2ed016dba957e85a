package forest

import (
	"fmt"

	"semrel/internal/domain"
)

const (
	KindRandomForest = "random_forest"
	KindExtraTrees   = "extra_trees"
)

// Config holds the ensemble hyperparameters.
type Config struct {
	Kind            string
	Trees           int
	MaxFeatures     int // 0 = all features
	MaxDepth        int // 0 = unlimited
	MinSamplesSplit int
	MinSamplesLeaf  int
	Bootstrap       bool
	Seed            int64
	Workers         int
}

// DefaultConfig mirrors the baseline run: many shallow-feature trees grown
// to purity on bootstrap samples.
func DefaultConfig() Config {
	return Config{
		Kind:            KindRandomForest,
		Trees:           1000,
		MaxFeatures:     2,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
		Seed:            3,
		Workers:         4,
	}
}

// Validate reports the first invalid field as *domain.ConfigurationError.
func (c Config) Validate() error {
	switch {
	case c.Kind != KindRandomForest && c.Kind != KindExtraTrees:
		return &domain.ConfigurationError{Field: "regressor.kind", Reason: fmt.Sprintf("unknown kind %q", c.Kind)}
	case c.Trees < 1:
		return &domain.ConfigurationError{Field: "regressor.trees", Reason: "must be at least 1"}
	case c.MaxFeatures < 0:
		return &domain.ConfigurationError{Field: "regressor.max_features", Reason: "must not be negative"}
	case c.MaxDepth < 0:
		return &domain.ConfigurationError{Field: "regressor.max_depth", Reason: "must not be negative"}
	case c.MinSamplesSplit < 2:
		return &domain.ConfigurationError{Field: "regressor.min_samples_split", Reason: "must be at least 2"}
	case c.MinSamplesLeaf < 1:
		return &domain.ConfigurationError{Field: "regressor.min_samples_leaf", Reason: "must be at least 1"}
	case c.Workers < 0:
		return &domain.ConfigurationError{Field: "regressor.workers", Reason: "must not be negative"}
	}
	return nil
}
