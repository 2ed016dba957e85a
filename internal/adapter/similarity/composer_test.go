package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semrel/internal/adapter/embedding"
)

func newTestTable(t *testing.T) *embedding.Table {
	t.Helper()
	table := embedding.NewTable(3)
	vectors := map[string][]float32{
		"cat":         {1, 0, 0},
		"sat":         {0, 1, 0},
		"dog":         {1, 1, 0},
		"mat":         {0, 0, 1},
		"cat_sat":     {0, 0, 2},
		"the_cat_sat": {3, 0, 0},
	}
	for token, vec := range vectors {
		require.NoError(t, table.Add(token, vec))
	}
	return table
}

func TestComposer_NGramTokens(t *testing.T) {
	c := NewComposer(newTestTable(t), true, true)
	sentence := []string{"the", "cat", "sat", "down"}

	assert.Equal(t, []string{"", "cat_sat", ""}, c.BigramTokens(sentence))
	assert.Equal(t, []string{"the_cat_sat", ""}, c.TrigramTokens(sentence))
	assert.Empty(t, c.TrigramTokens([]string{"cat", "sat"}))

	off := NewComposer(newTestTable(t), false, false)
	assert.Nil(t, off.BigramTokens(sentence))
	assert.Nil(t, off.TrigramTokens(sentence))
}

func TestComposer_Compose(t *testing.T) {
	table := newTestTable(t)

	unigrams := NewComposer(table, false, false)
	assert.Equal(t, []float64{1, 1, 0}, unigrams.Compose([]string{"the", "cat", "sat"}))

	withBigrams := NewComposer(table, true, false)
	assert.Equal(t, []float64{1, 1, 2}, withBigrams.Compose([]string{"the", "cat", "sat"}))

	withTrigrams := NewComposer(table, false, true)
	assert.Equal(t, []float64{4, 1, 0}, withTrigrams.Compose([]string{"the", "cat", "sat"}))
}

func TestComposer_ComposeOutOfVocabulary(t *testing.T) {
	c := NewComposer(newTestTable(t), true, true)
	assert.Equal(t, []float64{0, 0, 0}, c.Compose([]string{"zebra", "unicorn"}))
	assert.Equal(t, []float64{0, 0, 0}, c.Compose(nil))
}

func TestComposer_PairwiseProduct(t *testing.T) {
	c := NewComposer(newTestTable(t), false, false)
	got := c.PairwiseProduct([]string{"dog", "mat"}, []string{"cat", "mat"})
	assert.Equal(t, []float64{1, 0, 1}, got)
	assert.Len(t, got, c.Dimension())
}

func TestComposer_CosineDistance(t *testing.T) {
	c := NewComposer(newTestTable(t), false, false)

	assert.InDelta(t, 1.0, c.CosineDistance([]string{"cat"}, []string{"mat"}), 1e-9)
	assert.InDelta(t, 1-1/1.4142135623730951, c.CosineDistance([]string{"cat"}, []string{"dog"}), 1e-9)
}

func TestComposer_CosineSelfDistanceIsZero(t *testing.T) {
	c := NewComposer(newTestTable(t), false, false)

	sentences := [][]string{
		{"cat"},
		{"dog"},
		{"dog", "mat"},
		{"the", "cat", "sat", "on", "the", "mat"},
		{"dog", "sat", "unknownword"},
	}
	for _, s := range sentences {
		assert.Equal(t, 0.0, c.CosineDistance(s, s), "%v", s)
	}
	assert.Equal(t, 0.0, cosineDistance([]float64{0.1, 0.7, 1e-3}, []float64{0.1, 0.7, 1e-3}))
}

func TestComposer_CosineDistanceZeroVector(t *testing.T) {
	c := NewComposer(newTestTable(t), false, false)
	assert.Equal(t, 1.0, c.CosineDistance([]string{"zebra"}, []string{"cat"}))
	assert.Equal(t, 1.0, c.CosineDistance([]string{"cat"}, nil))
	assert.Equal(t, 1.0, c.CosineDistance(nil, nil))
}

func TestCosineDistance_Range(t *testing.T) {
	tests := []struct {
		a, b []float64
		want float64
	}{
		{[]float64{1, 0}, []float64{-1, 0}, 2},
		{[]float64{1, 2}, []float64{2, 4}, 0},
		{[]float64{1, 0}, []float64{0, 1}, 1},
	}
	for _, tc := range tests {
		got := cosineDistance(tc.a, tc.b)
		assert.InDelta(t, tc.want, got, 1e-9)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 2.0)
	}
}
