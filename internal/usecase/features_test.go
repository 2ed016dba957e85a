package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semrel/internal/adapter/embedding"
	"semrel/internal/adapter/external"
	"semrel/internal/adapter/labels"
	"semrel/internal/adapter/similarity"
	"semrel/internal/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// senseStub gives every known word one synset directly under "entity".
type senseStub map[string]string

func (s senseStub) NounSenses(lemma string) []domain.Synset {
	id, ok := s[lemma]
	if !ok {
		return nil
	}
	return []domain.Synset{{ID: id, Lemmas: []string{lemma}, Hypernyms: []string{"entity"}}}
}

func (s senseStub) PathSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	return 1.0 / 3.0
}

type bundleStub map[int]domain.SignalBundle

func (b bundleStub) Bundle(ctx context.Context, pair domain.SentencePair) (domain.SignalBundle, error) {
	bundle, ok := b[pair.ID]
	if !ok {
		return domain.SignalBundle{}, &domain.MissingDataError{PairID: pair.ID, Reason: "no bundle"}
	}
	return bundle, nil
}

func testBundle(id int) domain.SignalBundle {
	return domain.SignalBundle{
		PairID:          id,
		Prediction:      "entailment",
		Prover:          "proof",
		DomainNovelty:   -1,
		RelationNovelty: -1,
		WordNetNovelty:  0.5,
		ModelNovelty:    1,
		WordOverlap:     0.75,
		ComplexityA:     5,
		ComplexityB:     8,
	}
}

func newTestBuilder(t *testing.T, bundles bundleStub, opts FeatureOptions) *FeatureBuilder {
	t.Helper()
	table := embedding.NewTable(2)
	require.NoError(t, table.Add("cat", []float32{1, 0}))
	require.NoError(t, table.Add("sat", []float32{0, 1}))
	require.NoError(t, table.Add("dog", []float32{1, 1}))

	inventory := senseStub{"cat": "cat-n", "dog": "dog-n"}
	return NewFeatureBuilder(
		similarity.NewComposer(table, false, true),
		similarity.NewSynsetSimilarity(inventory, 5),
		bundles,
		external.NewAdapter(
			labels.NewRegistry("prediction", []string{"neutral", "entailment", "contradiction"}, true),
			labels.NewRegistry("prover", []string{"unknown", "proof", "inconsistent"}, true),
		),
		opts,
		quietLogger(),
	)
}

func pair(id int, a, b []string) domain.SentencePair {
	return domain.SentencePair{ID: id, A: a, B: b, RawA: a, RawB: b, Relatedness: 3.5, Labeled: true}
}

func column(t *testing.T, b *FeatureBuilder, v domain.FeatureVector, name string) float64 {
	t.Helper()
	for i, c := range b.Schema().Columns {
		if c == name {
			return v[i]
		}
	}
	t.Fatalf("no column %s", name)
	return 0
}

func TestFeatureBuilder_SchemaOrder(t *testing.T) {
	b := newTestBuilder(t, bundleStub{}, FeatureOptions{})

	schema := b.Schema()
	assert.Equal(t, SchemaVersion, schema.Version)
	assert.Equal(t, BaseColumns, schema.Columns)
	assert.Equal(t, 13, schema.Len())
}

func TestFeatureBuilder_Build(t *testing.T) {
	b := newTestBuilder(t, bundleStub{1: testBundle(1)}, FeatureOptions{})

	v, err := b.Build(context.Background(), pair(1, []string{"the", "cat", "sat"}, []string{"cat", "sat"}))
	require.NoError(t, err)
	require.Len(t, v, len(BaseColumns))

	assert.InDelta(t, 0.0, column(t, b, v, "CDSM"), 1e-9)
	assert.InDelta(t, 2.0/3.0, column(t, b, v, "WORDS"), 1e-9)
	assert.Equal(t, 1.0, column(t, b, v, "SYN_OVER"))
	assert.Equal(t, 1.0, column(t, b, v, "SYN_DIST"))
	assert.Equal(t, 0.5, column(t, b, v, "LENGTH"))
	assert.Equal(t, 1.0, column(t, b, v, "ENTAILMENT"))
	assert.Equal(t, 1.0, column(t, b, v, "PROVER"))
	assert.Equal(t, -1.0, column(t, b, v, "DOM_NV"))
	assert.Equal(t, -1.0, column(t, b, v, "REL_NV"))
	assert.Equal(t, 0.5, column(t, b, v, "WRD_NV"))
	assert.Equal(t, 1.0, column(t, b, v, "MOD_NV"))
	assert.Equal(t, 0.75, column(t, b, v, "WORDS2"))
	assert.Equal(t, 3.0, column(t, b, v, "DRS_COMPLEXITY"))
}

func TestFeatureBuilder_WordOverlapOfArticleSwap(t *testing.T) {
	b := newTestBuilder(t, bundleStub{1: testBundle(1)}, FeatureOptions{})

	v, err := b.Build(context.Background(), pair(1, []string{"the", "cat", "sat"}, []string{"a", "cat", "sat"}))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, column(t, b, v, "WORDS"), 1e-9)
	assert.Equal(t, 0.0, column(t, b, v, "LENGTH"))
}

func TestFeatureBuilder_EmptySentence(t *testing.T) {
	b := newTestBuilder(t, bundleStub{2: testBundle(2)}, FeatureOptions{})

	v, err := b.Build(context.Background(), pair(2, []string{}, []string{"cat"}))
	require.NoError(t, err)

	assert.Equal(t, 1.0, column(t, b, v, "LENGTH"))
	assert.Equal(t, 1.0, column(t, b, v, "CDSM"))
	assert.Equal(t, 0.0, column(t, b, v, "WORDS"))
	assert.Equal(t, 0.0, column(t, b, v, "SYN_DIST"))
	for i, x := range v {
		assert.False(t, math.IsNaN(x), "column %d is NaN", i)
	}
}

func TestFeatureBuilder_Deterministic(t *testing.T) {
	b := newTestBuilder(t, bundleStub{1: testBundle(1)}, FeatureOptions{ComposedProduct: true})
	p := pair(1, []string{"the", "dog", "sat"}, []string{"cat", "sat"})

	first, err := b.Build(context.Background(), p)
	require.NoError(t, err)
	second, err := b.Build(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFeatureBuilder_ComposedProduct(t *testing.T) {
	b := newTestBuilder(t, bundleStub{1: testBundle(1)}, FeatureOptions{ComposedProduct: true})

	schema := b.Schema()
	require.Equal(t, len(BaseColumns)+2, schema.Len())
	assert.Equal(t, "CDSM_PROD_000", schema.Columns[13])
	assert.Equal(t, "CDSM_PROD_001", schema.Columns[14])
	assert.NotEqual(t, domain.Schema{Version: SchemaVersion, Columns: BaseColumns}.Fingerprint(), schema.Fingerprint())

	v, err := b.Build(context.Background(), pair(1, []string{"cat", "sat"}, []string{"dog"}))
	require.NoError(t, err)
	require.Len(t, v, schema.Len())
	assert.Equal(t, []float64{1, 1}, []float64(v[13:]))
}

func TestFeatureBuilder_MissingBundle(t *testing.T) {
	b := newTestBuilder(t, bundleStub{}, FeatureOptions{})

	_, err := b.Build(context.Background(), pair(4, []string{"cat"}, []string{"cat"}))

	var missing *domain.MissingDataError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, 4, missing.PairID)
}

func TestBuildMatrix(t *testing.T) {
	pairs := []domain.SentencePair{
		pair(1, []string{"cat"}, []string{"cat", "sat"}),
		pair(2, []string{"dog"}, []string{"cat"}),
		pair(3, []string{"dog"}, []string{"dog"}),
	}
	bundles := bundleStub{1: testBundle(1), 3: testBundle(3)}

	t.Run("missing bundle aborts", func(t *testing.T) {
		b := newTestBuilder(t, bundles, FeatureOptions{})
		_, _, err := b.BuildMatrix(context.Background(), pairs, nil)

		var missing *domain.MissingDataError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, 2, missing.PairID)
	})

	t.Run("skip missing", func(t *testing.T) {
		b := newTestBuilder(t, bundles, FeatureOptions{SkipMissing: true})
		calls := 0
		m, stats, err := b.BuildMatrix(context.Background(), pairs, func() { calls++ })
		require.NoError(t, err)

		assert.Equal(t, []int{1, 3}, m.PairIDs)
		assert.Equal(t, []float64{3.5, 3.5}, m.Targets)
		assert.Equal(t, BaseColumns, m.Columns)
		assert.Equal(t, 2, stats.Rows)
		assert.Equal(t, []int{2}, stats.SkippedIDs)
		assert.Equal(t, 3, calls)
	})

	t.Run("cancelled", func(t *testing.T) {
		b := newTestBuilder(t, bundles, FeatureOptions{SkipMissing: true})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := b.BuildMatrix(ctx, pairs, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFeatureBuilder_StrictLabelsRejectUnknownPrediction(t *testing.T) {
	bundle := testBundle(1)
	bundle.Prediction = "maybe"
	b := newTestBuilder(t, bundleStub{1: bundle}, FeatureOptions{SkipMissing: true})

	_, _, err := b.BuildMatrix(context.Background(), []domain.SentencePair{pair(1, []string{"cat"}, []string{"cat"})}, nil)
	assert.ErrorContains(t, err, "maybe")
}
