package port

import (
	"context"

	"semrel/internal/domain"
)

// BundleSource fetches the external signals of a pair. A missing or
// incomplete bundle is reported as *domain.MissingDataError.
type BundleSource interface {
	Bundle(ctx context.Context, pair domain.SentencePair) (domain.SignalBundle, error)
}

// ComplexityService computes the logical-form complexity of a sentence.
type ComplexityService interface {
	Complexity(ctx context.Context, tokens []string) (float64, error)
}
