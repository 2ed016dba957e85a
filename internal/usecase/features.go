package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"semrel/internal/adapter/external"
	"semrel/internal/adapter/similarity"
	"semrel/internal/domain"
	"semrel/internal/port"
)

// SchemaVersion must be bumped whenever the feature columns or their
// computation change, so cached matrices are rebuilt.
const SchemaVersion = 1

// BaseColumns are the feature columns in build order.
var BaseColumns = []string{
	"CDSM",
	"WORDS",
	"SYN_OVER",
	"SYN_DIST",
	"LENGTH",
	"ENTAILMENT",
	"PROVER",
	"DOM_NV",
	"REL_NV",
	"WRD_NV",
	"MOD_NV",
	"WORDS2",
	"DRS_COMPLEXITY",
}

// FeatureBuilder assembles the feature vector of a sentence pair.
type FeatureBuilder struct {
	composer        *similarity.Composer
	synsets         *similarity.SynsetSimilarity
	bundles         port.BundleSource
	adapter         *external.Adapter
	composedProduct bool
	skipMissing     bool
	schema          domain.Schema
	logger          *slog.Logger
}

// FeatureOptions selects optional behavior of a FeatureBuilder.
type FeatureOptions struct {
	// ComposedProduct appends the element-wise product of the composed
	// sentence vectors, one column per embedding dimension.
	ComposedProduct bool
	// SkipMissing drops pairs without a complete signal bundle instead of
	// failing the whole matrix.
	SkipMissing bool
}

// NewFeatureBuilder creates a new feature builder.
func NewFeatureBuilder(
	composer *similarity.Composer,
	synsets *similarity.SynsetSimilarity,
	bundles port.BundleSource,
	adapter *external.Adapter,
	opts FeatureOptions,
	logger *slog.Logger,
) *FeatureBuilder {
	if logger == nil {
		logger = slog.Default()
	}

	columns := append([]string(nil), BaseColumns...)
	if opts.ComposedProduct {
		for i := 0; i < composer.Dimension(); i++ {
			columns = append(columns, fmt.Sprintf("CDSM_PROD_%03d", i))
		}
	}

	return &FeatureBuilder{
		composer:        composer,
		synsets:         synsets,
		bundles:         bundles,
		adapter:         adapter,
		composedProduct: opts.ComposedProduct,
		skipMissing:     opts.SkipMissing,
		schema:          domain.Schema{Version: SchemaVersion, Columns: columns},
		logger:          logger,
	}
}

// Schema returns the columns Build produces.
func (b *FeatureBuilder) Schema() domain.Schema {
	return b.schema
}

// Build computes the feature vector of pair in schema order.
func (b *FeatureBuilder) Build(ctx context.Context, pair domain.SentencePair) (domain.FeatureVector, error) {
	bundle, err := b.bundles.Bundle(ctx, pair)
	if err != nil {
		return nil, err
	}
	ext, err := b.adapter.Columns(bundle)
	if err != nil {
		return nil, err
	}

	v := make(domain.FeatureVector, 0, b.schema.Len())
	v = append(v,
		b.composer.CosineDistance(pair.A, pair.B),
		similarity.WordOverlap(pair.A, pair.B),
		b.synsets.Overlap(pair.A, pair.B),
		b.synsets.Distance(pair.A, pair.B),
		similarity.SentenceLengths(pair.A, pair.B),
		ext.Prediction,
		ext.Prover,
		ext.DomainNovelty,
		ext.RelationNovelty,
		ext.WordNetNovelty,
		ext.ModelNovelty,
		ext.WordOverlap,
		ext.ComplexityDiff,
	)
	if b.composedProduct {
		v = append(v, b.composer.PairwiseProduct(pair.A, pair.B)...)
	}

	if len(v) != b.schema.Len() {
		return nil, &domain.SchemaMismatchError{Expected: b.schema.Columns, Got: make([]string, len(v))}
	}
	return v, nil
}

// BuildStats summarizes a BuildMatrix call.
type BuildStats struct {
	Rows       int
	Skipped    int
	SkippedIDs []int
}

// BuildMatrix builds one row per pair, in order. progress, when set, is
// called after each pair.
func (b *FeatureBuilder) BuildMatrix(ctx context.Context, pairs []domain.SentencePair, progress func()) (domain.Matrix, BuildStats, error) {
	m := domain.Matrix{Columns: b.schema.Columns}
	var stats BuildStats

	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return domain.Matrix{}, stats, err
		}

		v, err := b.Build(ctx, pair)
		if err != nil {
			var missing *domain.MissingDataError
			if b.skipMissing && errors.As(err, &missing) {
				b.logger.Warn("skipping pair", "pair_id", pair.ID, "error", err)
				stats.Skipped++
				stats.SkippedIDs = append(stats.SkippedIDs, pair.ID)
				if progress != nil {
					progress()
				}
				continue
			}
			return domain.Matrix{}, stats, fmt.Errorf("pair %d: %w", pair.ID, err)
		}

		m.Append(pair.ID, v, pair.Relatedness)
		stats.Rows++
		if progress != nil {
			progress()
		}
	}

	return m, stats, nil
}
