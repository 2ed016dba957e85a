package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semrel/internal/adapter/forest"
	"semrel/internal/domain"
)

func trainingMatrix() domain.Matrix {
	m := domain.Matrix{Columns: []string{"CDSM", "WORDS"}}
	for i := 0; i < 40; i++ {
		x := float64(i) / 40
		m.Append(i+1, domain.FeatureVector{x, 1 - x}, 1+4*x)
	}
	return m
}

func newTestTrainer(t *testing.T) *Trainer {
	t.Helper()
	cfg := forest.DefaultConfig()
	cfg.Trees = 20
	cfg.MaxFeatures = 0
	r, err := forest.New(cfg, quietLogger())
	require.NoError(t, err)
	return NewTrainer(r, quietLogger())
}

func TestTrainer_FitPredict(t *testing.T) {
	trainer := newTestTrainer(t)
	m := trainingMatrix()

	model, err := trainer.Fit(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, m.Columns, model.Columns())

	predicted, err := model.Predict(m)
	require.NoError(t, err)
	require.Len(t, predicted, m.Len())
	for _, p := range predicted {
		assert.GreaterOrEqual(t, p, 1.0)
		assert.LessOrEqual(t, p, 5.0)
	}

	eval, err := trainer.Evaluate(model, m)
	require.NoError(t, err)
	assert.Equal(t, 40, eval.Rows)
	assert.Greater(t, eval.Pearson, 0.9)
	assert.Greater(t, eval.Spearman, 0.9)
	assert.Greater(t, eval.R2, 0.8)
	assert.Less(t, eval.MSE, 0.2)
}

func TestTrainedModel_SwappedColumns(t *testing.T) {
	trainer := newTestTrainer(t)
	m := trainingMatrix()
	model, err := trainer.Fit(context.Background(), m)
	require.NoError(t, err)

	swapped := domain.Matrix{Columns: []string{"WORDS", "CDSM"}}
	for i, row := range m.Rows {
		swapped.Append(m.PairIDs[i], domain.FeatureVector{row[1], row[0]}, m.Targets[i])
	}

	_, err = model.Predict(swapped)
	var mismatch *domain.SchemaMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, []string{"CDSM", "WORDS"}, mismatch.Expected)

	_, err = trainer.Evaluate(model, swapped)
	assert.True(t, errors.As(err, &mismatch))
}

func TestTrainer_ShapeErrors(t *testing.T) {
	trainer := newTestTrainer(t)

	tests := []struct {
		name string
		m    domain.Matrix
	}{
		{"empty", domain.Matrix{Columns: []string{"CDSM"}}},
		{"targets", domain.Matrix{Columns: []string{"CDSM"}, PairIDs: []int{1}, Rows: [][]float64{{1}}}},
		{"row width", domain.Matrix{Columns: []string{"CDSM"}, PairIDs: []int{1}, Rows: [][]float64{{1, 2}}, Targets: []float64{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := trainer.Fit(context.Background(), tt.m)
			var cfgErr *domain.ConfigurationError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestTrainedModel_PredictEmpty(t *testing.T) {
	trainer := newTestTrainer(t)
	model, err := trainer.Fit(context.Background(), trainingMatrix())
	require.NoError(t, err)

	predicted, err := model.Predict(domain.Matrix{Columns: []string{"CDSM", "WORDS"}})
	require.NoError(t, err)
	assert.Empty(t, predicted)
}
