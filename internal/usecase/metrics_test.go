package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMSE(t *testing.T) {
	assert.Equal(t, 0.0, MSE([]float64{1, 2}, []float64{1, 2}))
	assert.Equal(t, 2.5, MSE([]float64{1, 2}, []float64{2, 4}))
	assert.Equal(t, 0.0, MSE(nil, nil))
}

func TestPearson(t *testing.T) {
	assert.InDelta(t, 1.0, Pearson([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-12)
	assert.InDelta(t, -1.0, Pearson([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-12)
	assert.Equal(t, 0.0, Pearson([]float64{1, 1, 1}, []float64{1, 2, 3}))
}

func TestSpearman(t *testing.T) {
	assert.InDelta(t, 1.0, Spearman([]float64{1, 2, 3, 4}, []float64{1, 10, 100, 1000}), 1e-12)
	assert.InDelta(t, -1.0, Spearman([]float64{1, 2, 3}, []float64{9, 5, 1}), 1e-12)
}

func TestRanks_Ties(t *testing.T) {
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, ranks([]float64{10, 20, 20, 30}))
	assert.Equal(t, []float64{3, 1, 2}, ranks([]float64{5, 1, 3}))
}
