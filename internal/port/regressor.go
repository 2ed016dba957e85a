package port

import "context"

// Regressor fits a model on a feature matrix.
type Regressor interface {
	Fit(ctx context.Context, x [][]float64, y []float64) (Model, error)
}

// Model predicts continuous targets.
type Model interface {
	Predict(x [][]float64) []float64

	// Score returns the coefficient of determination on (x, y).
	Score(x [][]float64, y []float64) float64
}
