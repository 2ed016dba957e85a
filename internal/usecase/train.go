package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"semrel/internal/domain"
	"semrel/internal/port"
)

// Trainer fits and evaluates relatedness regressors.
type Trainer struct {
	regressor port.Regressor
	logger    *slog.Logger
}

func NewTrainer(regressor port.Regressor, logger *slog.Logger) *Trainer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Trainer{regressor: regressor, logger: logger}
}

// TrainedModel is a fitted model bound to the feature columns it was
// trained on.
type TrainedModel struct {
	columns []string
	model   port.Model
}

// NewTrainedModel binds a restored model to its columns.
func NewTrainedModel(columns []string, model port.Model) *TrainedModel {
	return &TrainedModel{columns: append([]string(nil), columns...), model: model}
}

func (m *TrainedModel) Columns() []string {
	return append([]string(nil), m.columns...)
}

func (m *TrainedModel) Model() port.Model {
	return m.model
}

// Predict returns one prediction per row. The matrix must carry exactly the
// training columns.
func (m *TrainedModel) Predict(x domain.Matrix) ([]float64, error) {
	if err := domain.CheckColumns(m.columns, x.Columns); err != nil {
		return nil, err
	}
	if x.Len() == 0 {
		return []float64{}, nil
	}
	return m.model.Predict(x.Rows), nil
}

// Fit trains on m. Shape problems are reported before any work starts.
func (t *Trainer) Fit(ctx context.Context, m domain.Matrix) (*TrainedModel, error) {
	if err := checkShape(m); err != nil {
		return nil, err
	}

	start := time.Now()
	model, err := t.regressor.Fit(ctx, m.Rows, m.Targets)
	if err != nil {
		return nil, fmt.Errorf("failed to fit regressor: %w", err)
	}
	t.logger.Info("model trained", "rows", m.Len(), "features", len(m.Columns), "duration_ms", time.Since(start).Milliseconds())

	return NewTrainedModel(m.Columns, model), nil
}

// Evaluation holds held-out metrics.
type Evaluation struct {
	Rows     int
	MSE      float64
	R2       float64
	Pearson  float64
	Spearman float64
}

// Evaluate scores model on m.
func (t *Trainer) Evaluate(model *TrainedModel, m domain.Matrix) (Evaluation, error) {
	if err := checkShape(m); err != nil {
		return Evaluation{}, err
	}
	predicted, err := model.Predict(m)
	if err != nil {
		return Evaluation{}, err
	}

	eval := Evaluation{
		Rows:     m.Len(),
		MSE:      MSE(m.Targets, predicted),
		R2:       model.model.Score(m.Rows, m.Targets),
		Pearson:  Pearson(m.Targets, predicted),
		Spearman: Spearman(m.Targets, predicted),
	}
	t.logger.Info("model evaluated",
		"rows", eval.Rows,
		"mse", eval.MSE,
		"r2", eval.R2,
		"pearson", eval.Pearson,
		"spearman", eval.Spearman)

	return eval, nil
}

func checkShape(m domain.Matrix) error {
	if m.Len() == 0 {
		return &domain.ConfigurationError{Field: "matrix", Reason: "no rows"}
	}
	if len(m.Targets) != m.Len() {
		return &domain.ConfigurationError{Field: "matrix", Reason: fmt.Sprintf("%d rows but %d targets", m.Len(), len(m.Targets))}
	}
	for i, row := range m.Rows {
		if len(row) != len(m.Columns) {
			return &domain.ConfigurationError{Field: "matrix", Reason: fmt.Sprintf("row %d has %d values for %d columns", i, len(row), len(m.Columns))}
		}
	}
	return nil
}
